package session

import (
	"bytes"
	"runtime"
	"strconv"
)

// goroutineID parses the current goroutine's id from the runtime
// stack header ("goroutine 123 [running]:"). The runtime deliberately
// hides goroutine identity, but confinement enforcement needs a
// stable per-goroutine key; the header format has been stable across
// every Go release to date.
func goroutineID() int64 {
	buf := make([]byte, 64)
	buf = buf[:runtime.Stack(buf, false)]
	buf = bytes.TrimPrefix(buf, []byte("goroutine "))
	if i := bytes.IndexByte(buf, ' '); i >= 0 {
		buf = buf[:i]
	}
	id, err := strconv.ParseInt(string(buf), 10, 64)
	if err != nil {
		return -1
	}
	return id
}

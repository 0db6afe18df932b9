//go:build darwin || linux

package inject

import (
	"time"

	"golang.org/x/sys/unix"
)

// sleep blocks in select(2) with a microsecond timeout. An interrupted
// wait finishes with time.Sleep for whatever is left.
func sleep(d time.Duration) {
	start := time.Now()
	tv := unix.NsecToTimeval(d.Nanoseconds())
	if _, err := unix.Select(0, nil, nil, nil, &tv); err == unix.EINTR {
		if rest := d - time.Since(start); rest > 0 {
			time.Sleep(rest)
		}
	}
}

//go:build !darwin && !linux

package inject

import "time"

func sleep(d time.Duration) {
	time.Sleep(d)
}

//go:build !unix

package util

import "errors"

func cpuSeconds() (float64, error) {
	return 0, errors.New("process cpu time is not supported on this platform")
}

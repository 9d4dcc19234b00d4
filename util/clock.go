package util

import (
	"fmt"
	"time"
)

const (
	WallClockName = "wall"
	CPUClockName  = "cpu"
)

// A Clock returns a monotonically increasing reading in seconds. Only differences between two
// readings are meaningful.
type Clock interface {
	Now() float64
	Name() string
}

// Seconds since the clock was created, read from the monotonic clock
type wallClock struct {
	start time.Time
}

func (c wallClock) Now() float64 { return time.Since(c.start).Seconds() }

func (wallClock) Name() string { return WallClockName }

// Process CPU time (user + system). Database time spent server side is not included.
type cpuClock struct{}

func (cpuClock) Now() float64 { return Try(cpuSeconds()) }

func (cpuClock) Name() string { return CPUClockName }

// Returns the clock with the given name ("wall" or "cpu")
func NewClock(name string) (Clock, error) {
	switch name {
	case "", WallClockName:
		return wallClock{start: time.Now()}, nil
	case CPUClockName:
		if _, err := cpuSeconds(); err != nil {
			return nil, fmt.Errorf("cpu clock unavailable: %w", err)
		}
		return cpuClock{}, nil
	default:
		return nil, fmt.Errorf("unknown clock %q", name)
	}
}

package util

import (
	"errors"
	"math/rand"
	"testing"
)

func TestRandomAlphabetic(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for _, length := range []int{0, 1, 20, 257} {
		s := RandomAlphabetic(rng, length)
		if len(s) != length {
			t.Fatalf("RandomAlphabetic(%d) has length %d", length, len(s))
		}
		for i := 0; i < len(s); i++ {
			c := s[i]
			if !(c >= 'a' && c <= 'z') && !(c >= 'A' && c <= 'Z') {
				t.Fatalf("RandomAlphabetic(%d) = %q contains %q", length, s, c)
			}
		}
	}
}

func TestTryPanicsOnError(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Try did not panic")
		}
	}()
	Try(0, errors.New("boom"))
}

func TestNewClock(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"", WallClockName, false},
		{"wall", WallClockName, false},
		{"cpu", CPUClockName, false},
		{"sundial", "", true},
	}

	for _, tt := range tests {
		c, err := NewClock(tt.name)
		if tt.wantErr {
			if err == nil {
				t.Errorf("NewClock(%q) expected error", tt.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("NewClock(%q) error: %v", tt.name, err)
			continue
		}
		if c.Name() != tt.want {
			t.Errorf("NewClock(%q).Name() = %q, want %q", tt.name, c.Name(), tt.want)
		}
		a := c.Now()
		b := c.Now()
		if b < a {
			t.Errorf("clock %q went backwards: %v then %v", tt.name, a, b)
		}
	}
}

func TestWallClockCountsFromCreation(t *testing.T) {
	c, err := NewClock(WallClockName)
	if err != nil {
		t.Fatal(err)
	}
	first := c.Now()
	if first < 0 || first >= 1 {
		t.Fatalf("first reading %v, want seconds since creation", first)
	}
	prev := first
	for i := 0; i < 1000; i++ {
		now := c.Now()
		if now < prev {
			t.Fatalf("reading %d went backwards: %v then %v", i, prev, now)
		}
		prev = now
	}
}

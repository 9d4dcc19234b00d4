package corpus

import (
	"math/rand"
	"testing"
)

func TestGenerateShape(t *testing.T) {
	tests := []struct {
		length    int
		strLength int
	}{
		{0, 20},
		{1, 20},
		{95, 20},
		{1000, 5},
		{10, 0},
	}

	for _, tt := range tests {
		c := Generate(tt.length, tt.strLength, rand.New(rand.NewSource(7)))
		if len(c) != tt.length {
			t.Fatalf("Generate(%d) returned %d records", tt.length, len(c))
		}
		for i, r := range c {
			if r.ID != int32(i) {
				t.Fatalf("record %d has id %d", i, r.ID)
			}
			if len(r.Str) != tt.strLength {
				t.Fatalf("record %d has string %q, want length %d", i, r.Str, tt.strLength)
			}
			for _, ch := range r.Str {
				if !(ch >= 'a' && ch <= 'z') && !(ch >= 'A' && ch <= 'Z') {
					t.Fatalf("record %d has non-alphabetic string %q", i, r.Str)
				}
			}
		}
	}
}

func TestGenerateUsesSignedRange(t *testing.T) {
	c := Generate(10000, 1, rand.New(rand.NewSource(42)))
	var negative, positive bool
	for _, r := range c {
		if r.Num < 0 {
			negative = true
		}
		if r.Num > 0 {
			positive = true
		}
	}
	if !negative || !positive {
		t.Errorf("values not spread over the signed range (negative=%v, positive=%v)", negative, positive)
	}
}

func TestAppendCSV(t *testing.T) {
	tests := []struct {
		r    Record
		want string
	}{
		{Record{0, 0, "abc"}, "0,0,abc\n"},
		{Record{7, -2147483648, "Z"}, "7,-2147483648,Z\n"},
		{Record{99999, 2147483647, ""}, "99999,2147483647,\n"},
	}

	for _, tt := range tests {
		got := string(AppendCSV(nil, tt.r))
		if got != tt.want {
			t.Errorf("AppendCSV(%+v) = %q, want %q", tt.r, got, tt.want)
		}
	}

	buf := AppendCSV(nil, Record{1, 2, "a"})
	buf = AppendCSV(buf, Record{3, 4, "b"})
	if string(buf) != "1,2,a\n3,4,b\n" {
		t.Errorf("consecutive appends = %q", buf)
	}
}

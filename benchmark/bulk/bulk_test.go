package bulk

import (
	"context"
	"math/rand"
	"strings"
	"testing"

	"insertbench/benchmark/benchtest"
	"insertbench/corpus"
)

func TestLoadChunkShape(t *testing.T) {
	tests := []struct {
		name      string
		length    int
		batchSize int
		want      []int // lines per chunk
	}{
		{"exact multiple", 100, 10, []int{10, 10, 10, 10, 10, 10, 10, 10, 10, 10}},
		{"trailing partial", 95, 10, []int{10, 10, 10, 10, 10, 10, 10, 10, 10, 5}},
		{"chunk larger than corpus", 7, 10000, []int{7}},
		{"empty corpus", 0, 10, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			conn := benchtest.NewConn()
			c := corpus.Generate(tt.length, 20, rand.New(rand.NewSource(1)))

			tx, _ := conn.Begin(ctx)
			if err := New().Load(ctx, tx, c, tt.batchSize); err != nil {
				t.Fatalf("Load: %v", err)
			}

			calls := conn.CallsOf("copy")
			if len(calls) != len(tt.want) {
				t.Fatalf("got %d chunks, want %d", len(calls), len(tt.want))
			}
			for i, call := range calls {
				if call.Rows != tt.want[i] {
					t.Errorf("chunk %d has %d lines, want %d", i, call.Rows, tt.want[i])
				}
			}
		})
	}
}

func TestLoadWireFormat(t *testing.T) {
	ctx := context.Background()
	conn := benchtest.NewConn()
	c := corpus.Corpus{
		{ID: 0, Num: -5, Str: "abc"},
		{ID: 1, Num: 7, Str: "DEF"},
		{ID: 2, Num: 0, Str: "g"},
	}

	tx, _ := conn.Begin(ctx)
	if err := New().Load(ctx, tx, c, 2); err != nil {
		t.Fatalf("Load: %v", err)
	}

	var got []string
	for _, call := range conn.CallsOf("copy") {
		got = append(got, call.Data)
	}
	want := []string{"0,-5,abc\n1,7,DEF\n", "2,0,g\n"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("chunks = %q, want %q", got, want)
	}
}

package benchmark

import (
	"fmt"

	"insertbench/benchmark/batched"
	"insertbench/benchmark/bulk"
	"insertbench/benchmark/single"
)

// Strategy names, in reporting order
var Names = []string{single.Name, batched.Name, bulk.Name}

// Returns the strategy with the given name
func New(name string) (Strategy, error) {
	switch name {
	case single.Name:
		return single.New(), nil
	case batched.Name:
		return batched.New(), nil
	case bulk.Name:
		return bulk.New(), nil
	default:
		return nil, fmt.Errorf("strategy '%s' not found", name)
	}
}

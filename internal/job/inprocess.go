// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package job

import (
	"context"
	"fmt"

	"github.com/specialistvlad/gridbind/internal/ctyconv"
	"github.com/specialistvlad/gridbind/internal/dag"
	"github.com/specialistvlad/gridbind/internal/schema"
	"github.com/specialistvlad/gridbind/internal/unit"
	"github.com/zclconf/go-cty/cty"
)

// DefaultMaxConcurrent is the worker count of the in_process executor when
// none is configured.
const DefaultMaxConcurrent = 4

type inProcessConfig struct {
	MaxConcurrent int `cty:"max_concurrent"`
}

// InProcess returns the in_process executor: a worker pool inside the
// current process. It is used by jobs that declare no executor.
func InProcess() *unit.Executor {
	s := schema.New(schema.Object(map[string]*schema.Field{
		"max_concurrent": schema.Int().
			WithDefault(cty.NumberIntVal(DefaultMaxConcurrent)).
			Describe("Number of nodes that may run at the same time."),
	}))
	return unit.NewExecutor("in_process", newInProcessRunner,
		unit.WithSchema(s),
		unit.WithDescription("Runs nodes concurrently in the current process."),
	)
}

func newInProcessRunner(_ context.Context, cfg cty.Value) (dag.Runner, error) {
	var c inProcessConfig
	if err := ctyconv.Decode(cfg, &c); err != nil {
		return nil, fmt.Errorf("decoding in_process config: %w", err)
	}
	if c.MaxConcurrent < 1 {
		return nil, fmt.Errorf("max_concurrent must be at least 1, got %d", c.MaxConcurrent)
	}
	return dag.NewPool(c.MaxConcurrent), nil
}

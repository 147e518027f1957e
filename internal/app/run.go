package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/gridbind/internal/ctxlog"
	"github.com/specialistvlad/gridbind/internal/job"
	"github.com/specialistvlad/gridbind/internal/repository"
	"github.com/specialistvlad/gridbind/internal/runconfig"
	"github.com/zclconf/go-cty/cty"
)

// Run loads the run configuration and executes j once.
func (a *App) Run(ctx context.Context, j *job.Job, opts ...job.RunOption) (*job.Result, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "job", j.Name())

	rc := runconfig.New()
	if len(a.config.RunConfigPaths) > 0 {
		loaded, err := runconfig.Load(ctx, a.config.RunConfigPaths...)
		if err != nil {
			return nil, fmt.Errorf("failed to load run configuration: %w", err)
		}
		rc = loaded
	}
	if a.config.WorkerCount > 0 && j.Executor() == nil && !rc.HasExecution() {
		rc.Execution = cty.ObjectVal(map[string]cty.Value{"max_concurrent": cty.NumberIntVal(int64(a.config.WorkerCount))})
	}

	if len(j.Ops()) == 0 {
		a.logger.Warn("No ops found in job, execution not required.", "job", j.Name())
	}
	res, err := j.Run(ctx, rc, opts...)
	if err != nil {
		return res, fmt.Errorf("execution failed: %w", err)
	}

	a.logger.Debug("App.Run method finished.", "job", j.Name(), "run_id", res.RunID)
	return res, nil
}

// RunJob executes the job of repo named name.
func (a *App) RunJob(ctx context.Context, repo *repository.Repository, name string, opts ...job.RunOption) (*job.Result, error) {
	j, ok := repo.Job(name)
	if !ok {
		return nil, fmt.Errorf("repository %q has no job %q", repo.Name(), name)
	}
	return a.Run(ctx, j, opts...)
}

package app

import (
	"github.com/specialistvlad/gridbind/internal/job"
	"github.com/specialistvlad/gridbind/internal/registry"
	"github.com/specialistvlad/gridbind/modules/console"
	"github.com/specialistvlad/gridbind/modules/env_vars"
	"github.com/specialistvlad/gridbind/modules/http_client"
	"github.com/specialistvlad/gridbind/modules/print"
	"github.com/specialistvlad/gridbind/modules/s3"
	"github.com/specialistvlad/gridbind/modules/socketio_client"
	"github.com/specialistvlad/gridbind/modules/socketio_request"
)

// executors registers the executors built into the job package.
type executors struct{}

func (executors) Register(r *registry.Registry) {
	r.Register(job.InProcess())
}

// coreModules is the definitive list of all modules that are compiled into
// the gridbind library.
var coreModules = []registry.Module{
	executors{},
	&env_vars.Module{},
	&print.Module{},
	&http_client.Module{},
	&s3.Module{},
	&socketio_client.Module{},
	&socketio_request.Module{},
	&console.Module{},
}

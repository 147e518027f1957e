package job

import (
	"github.com/specialistvlad/gridbind/internal/dag"
	"github.com/specialistvlad/gridbind/internal/unit"
)

// Job is an immutable, validated set of nodes ready to run.
type Job struct {
	name string

	graph *dag.Graph
	ops   map[string]*opNode
	// graphs holds every flattened graph by ID, parents before children.
	graphs     map[string]*graphNode
	graphOrder []string
	// top maps top-level aliases to their flattened scope entries.
	top map[string]scopeEntry

	resources     map[string]*unit.Resource
	resourceOrder []string
	loggers       []*unit.Logger
	executor      *unit.Executor
}

// opNode is one op after flattening.
type opNode struct {
	id     string
	alias  string
	op     *unit.Op
	parent *graphNode
	// inputs maps input names to the op ID whose output feeds them.
	inputs map[string]string
	uses   map[string]string
}

// graphNode is one graph after flattening.
type graphNode struct {
	id     string
	alias  string
	graph  *unit.Graph
	parent *graphNode
}

// scopeEntry is what a member looks like to its siblings: the op IDs it
// expands to and the op ID providing its output.
type scopeEntry struct {
	ops    []string
	output string
}

// Name returns the job's name.
func (j *Job) Name() string { return j.name }

// Graph returns the dependency graph of the job's ops and resources.
func (j *Job) Graph() *dag.Graph { return j.graph }

// Ops returns the flattened op IDs in sorted order.
func (j *Job) Ops() []string {
	ids := make([]string, 0, len(j.ops))
	for _, id := range j.graph.Nodes() {
		if _, ok := j.ops[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Resources returns the resource names in declaration order.
func (j *Job) Resources() []string {
	return append([]string(nil), j.resourceOrder...)
}

// Executor returns the executor of the job, or nil when the default is used.
func (j *Job) Executor() *unit.Executor { return j.executor }

func resourceNodeID(name string) string { return "resource:" + name }

// Package repository groups the jobs a program exposes.
package repository

import (
	"fmt"
	"sort"
	"sync"

	"github.com/specialistvlad/gridbind/internal/job"
	"github.com/specialistvlad/gridbind/internal/namespace"
)

// Repository is a named collection of jobs. It is safe for concurrent use.
type Repository struct {
	name string
	ns   *namespace.Namespace

	mu   sync.RWMutex
	jobs map[string]*job.Job
}

// New returns an empty repository.
func New(name string) *Repository {
	return &Repository{
		name: name,
		ns:   namespace.New(fmt.Sprintf("repository %q", name)),
		jobs: map[string]*job.Job{},
	}
}

// Name returns the repository name.
func (r *Repository) Name() string { return r.name }

// Add registers jobs. A job whose name is already taken fails with the
// *namespace.NameCollisionError of the namespace, unchanged; jobs before it
// stay registered.
func (r *Repository) Add(jobs ...*job.Job) error {
	for _, j := range jobs {
		if err := r.ns.Claim(j.Name(), "job"); err != nil {
			return err
		}
		r.mu.Lock()
		r.jobs[j.Name()] = j
		r.mu.Unlock()
	}
	return nil
}

// Job returns the job with the given name.
func (r *Repository) Job(name string) (*job.Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.jobs[name]
	return j, ok
}

// Jobs returns the job names in sorted order.
func (r *Repository) Jobs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.jobs))
	for name := range r.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

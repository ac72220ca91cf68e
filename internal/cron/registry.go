package cron

import (
	"context"
	"fmt"
)

// Job is one unit of scheduled maintenance.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry keeps jobs in registration order, keyed by unique name.
type Registry struct {
	jobs  []Job
	names map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{names: map[string]struct{}{}}
}

// Register adds jobs, rejecting nil entries and duplicate names.
func (r *Registry) Register(jobs ...Job) error {
	for _, job := range jobs {
		if job == nil {
			return fmt.Errorf("nil cron job")
		}
		name := job.Name()
		if _, dup := r.names[name]; dup {
			return fmt.Errorf("cron job %q already registered", name)
		}
		r.names[name] = struct{}{}
		r.jobs = append(r.jobs, job)
	}
	return nil
}

func (r *Registry) Jobs() []Job {
	return append([]Job(nil), r.jobs...)
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.jobs))
	for _, job := range r.jobs {
		names = append(names, job.Name())
	}
	return names
}

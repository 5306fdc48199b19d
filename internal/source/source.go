package source

import (
	"context"
	"fmt"
)

// Request carries all parameters required to execute one harvesting pull.
type Request struct {
	Name  string
	URL   string
	Limit int
}

// Source captures a single keyword-harvesting strategy (ranked trends feed,
// LLM extraction from news headlines, etc.). It returns raw candidate
// strings; cleanup and dedup belong to the harvester.
type Source interface {
	Name() string
	Fetch(ctx context.Context, req Request) ([]string, error)
}

// Registry keeps a mapping from source names to their implementations.
type Registry struct {
	sources map[string]Source
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: map[string]Source{}}
}

// Register adds or replaces a source implementation.
func (r *Registry) Register(src Source) {
	if r.sources == nil {
		r.sources = map[string]Source{}
	}
	r.sources[src.Name()] = src
}

// Resolve returns a source by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Source, error) {
	if src, ok := r.sources[name]; ok {
		return src, nil
	}
	return nil, fmt.Errorf("source %s is not registered", name)
}

package service

import (
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/jonny/stayhub/internal/domain/port/outbound"
)

// ActionRegistry maps action names to executors. Names are matched
// case-insensitively. It is populated at startup and only read afterwards.
type ActionRegistry struct {
	mu        sync.RWMutex
	executors map[string]outbound.ActionExecutor
	logger    *slog.Logger
}

// NewActionRegistry creates a registry holding the given executors.
func NewActionRegistry(logger *slog.Logger, executors ...outbound.ActionExecutor) *ActionRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &ActionRegistry{
		executors: make(map[string]outbound.ActionExecutor, len(executors)),
		logger:    logger,
	}
	for _, e := range executors {
		r.Register(e)
	}
	return r
}

// Register adds an executor under its name. The first registration of a name
// wins; later ones are ignored and reported false.
func (r *ActionRegistry) Register(e outbound.ActionExecutor) bool {
	key := strings.ToLower(e.Name())
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.executors[key]; exists {
		r.logger.Warn("duplicate action executor ignored", "action", e.Name())
		return false
	}
	r.executors[key] = e
	return true
}

// Lookup returns the executor registered under name.
func (r *ActionRegistry) Lookup(name string) (outbound.ActionExecutor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.executors[strings.ToLower(name)]
	return e, ok
}

// Actions returns the registered action names, sorted.
func (r *ActionRegistry) Actions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.executors))
	for _, e := range r.executors {
		names = append(names, e.Name())
	}
	slices.Sort(names)
	return names
}

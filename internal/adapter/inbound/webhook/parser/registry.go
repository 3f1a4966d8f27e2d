package parser

import (
	"errors"
	"net/http"
	"sync"

	"github.com/jonny/stayhub/internal/domain/port/inbound"
)

// ErrNoParser is returned when no registered parser accepts a request.
var ErrNoParser = errors.New("no parser found for request")

// Registry manages SMSParser instances and resolves the correct parser per request.
type Registry struct {
	mu      sync.RWMutex
	parsers []inbound.SMSParser
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a parser to the registry. Parsers are tried in registration order.
func (r *Registry) Register(p inbound.SMSParser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parsers = append(r.parsers, p)
}

// Resolve returns the first parser that can handle the given request.
func (r *Registry) Resolve(req *http.Request) (inbound.SMSParser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.parsers {
		if p.CanParse(req) {
			return p, nil
		}
	}
	return nil, ErrNoParser
}

// Gateways returns the gateway names of all registered parsers.
func (r *Registry) Gateways() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	gateways := make([]string, len(r.parsers))
	for i, p := range r.parsers {
		gateways[i] = p.Gateway()
	}
	return gateways
}

func isJSON(r *http.Request) bool {
	return mediaType(r.Header.Get("Content-Type")) == "application/json"
}

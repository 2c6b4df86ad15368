package datasource

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

// Router manages database adapters and connection pooling
type Router struct {
	factories map[string]AdapterFactory
	pool      map[string]Adapter
	mu        sync.RWMutex
}

// NewRouter creates a new adapter router
func NewRouter() *Router {
	return &Router{
		factories: make(map[string]AdapterFactory),
		pool:      make(map[string]Adapter),
	}
}

// RegisterAdapter registers an adapter factory for a database type
func (r *Router) RegisterAdapter(dbType string, factory AdapterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[dbType] = factory
}

// SupportedDatabases returns the registered database types, sorted
func (r *Router) SupportedDatabases() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.factories))
	for dbType := range r.factories {
		types = append(types, dbType)
	}
	sort.Strings(types)
	return types
}

// GetAdapter returns the pooled adapter for name, reconnecting when the
// pooled one fails its health check
func (r *Router) GetAdapter(ctx context.Context, name, dbType string, config ConnectionConfig) (Adapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if adapter, ok := r.pool[name]; ok {
		if err := adapter.HealthCheck(ctx); err == nil {
			return adapter, nil
		}
		log.Warn().Str("datasource", name).Msg("Pooled connection unhealthy, reconnecting")
		adapter.Close()
		delete(r.pool, name)
	}

	factory, ok := r.factories[dbType]
	if !ok {
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}

	adapter := factory()
	if err := adapter.Connect(ctx, config); err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	r.pool[name] = adapter
	return adapter, nil
}

// CloseConnection closes a specific connection
func (r *Router) CloseConnection(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if adapter, ok := r.pool[name]; ok {
		err := adapter.Close()
		delete(r.pool, name)
		return err
	}

	return nil
}

// CloseAll closes all connections
func (r *Router) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, adapter := range r.pool {
		adapter.Close()
		delete(r.pool, name)
	}
}

// PoolSize returns the current number of pooled connections
func (r *Router) PoolSize() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pool)
}

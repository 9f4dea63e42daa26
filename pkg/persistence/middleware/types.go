package middleware

import "github.com/aretw0/lattice/pkg/ports"

// Middleware allows wrapping a PageStore to add behavior.
type Middleware func(ports.PageStore) ports.PageStore

// Chain applies middlewares so that the first one listed is the outermost.
func Chain(store ports.PageStore, mws ...Middleware) ports.PageStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}

// Package modkit provides module wiring: shared deps, build options and the module contract
package modkit

import "inboxd/internal/modkit/module"

// Module is the contract every API module satisfies
type Module = module.Module

// Builder constructs a Module from shared deps and options
type Builder func(Deps, ...Option) Module

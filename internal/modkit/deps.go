package modkit

import (
	"inboxd/internal/platform/config"
	"inboxd/internal/platform/logger"
	"inboxd/internal/platform/metrics"
)

// Deps holds core dependencies passed to modules. The zero value is usable in tests
type Deps struct {
	Log     *logger.Logger
	Cfg     config.Conf
	Metrics *metrics.Registry
}

// Logger returns a child of Log (or of the root logger) tagged with component
func (d Deps) Logger(component string) *logger.Logger {
	if d.Log == nil {
		return logger.Named(component)
	}
	l := d.Log.With().Str("component", component).Logger()
	return &l
}

// Registry returns Metrics, or a private throwaway registry when none was wired
func (d Deps) Registry() *metrics.Registry {
	if d.Metrics == nil {
		return metrics.Nop()
	}
	return d.Metrics
}

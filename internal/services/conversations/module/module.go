// Package module wires conversations into the API using modkit
package module

import (
	modkit "inboxd/internal/modkit"
	"inboxd/internal/modkit/httpkit"
	str "inboxd/internal/platform/strings"
	"inboxd/internal/services/conversations/domain"
	convhttp "inboxd/internal/services/conversations/http"
	convsvc "inboxd/internal/services/conversations/service"
)

// Ports is what other modules and commands consume from conversations
type Ports struct {
	Reducer    domain.Reducer
	Projection domain.Projection
}

// Module implements the conversations module
type Module struct {
	b     modkit.Built
	svc   *convsvc.Svc
	ports Ports
}

// New constructs the conversations module. CORE_INBOX_SENTINEL_LOG turns on debug
// logging of the conversations the projection hides
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("conversations"), modkit.WithPrefix("/conversations")}, opts...)...)

	svc := convsvc.New(
		convsvc.WithLogger(deps.Logger(b.Name)),
		convsvc.WithSentinelLog(deps.Cfg.Prefix("CORE_INBOX_").MayBool("SENTINEL_LOG", false)),
	)
	convsvc.Instrument(deps.Registry(), svc)

	return &Module{b: b, svc: svc, ports: Ports{Reducer: svc, Projection: svc}}
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	prefix := str.MustPrefix(m.b.Prefix)
	convhttp.Describe(prefix)
	m.b.Mount(r, func(sub httpkit.Router) { convhttp.Register(sub, m.svc) })
	httpkit.MountUnder(r, convhttp.StatsPrefix(prefix), m.b.Mw, func(sub httpkit.Router) { convhttp.RegisterStats(sub, m.svc) })
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.b.Name, "module name") }

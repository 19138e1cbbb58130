// Package module wires meta endpoints into the API using a tiny module
package module

import (
	"time"

	modkit "inboxd/internal/modkit"
	"inboxd/internal/modkit/httpkit"
	str "inboxd/internal/platform/strings"

	metahttp "inboxd/internal/services/api/meta/http"
)

// Probes are readiness checks injected through modkit.WithPorts
type Probes map[string]metahttp.Probe

// Module implements the modkit.Module interface
type Module struct {
	b         modkit.Built
	service   string
	probes    Probes
	startedAt time.Time
}

// New constructs a meta module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	probes, _ := b.Ports.(Probes)
	return &Module{
		b:         b,
		service:   deps.Cfg.MayString("LOG_SERVICE", "inboxd"),
		probes:    probes,
		startedAt: time.Now(),
	}
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	metahttp.Describe(str.MustPrefix(m.b.Prefix))
	m.b.Mount(r, func(sub httpkit.Router) {
		metahttp.Register(sub, metahttp.Deps{
			ServiceName: m.service,
			StartedAt:   m.startedAt,
			Probes:      m.probes,
		})
	})
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return str.MustString(m.b.Name, "meta") }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }

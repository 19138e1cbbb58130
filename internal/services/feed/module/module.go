// Package module wires the recorded feed into the API using modkit
package module

import (
	"context"

	modkit "inboxd/internal/modkit"
	"inboxd/internal/modkit/httpkit"
	str "inboxd/internal/platform/strings"
	convdomain "inboxd/internal/services/conversations/domain"
	"inboxd/internal/services/feed/domain"
	feedhttp "inboxd/internal/services/feed/http"
	feedsvc "inboxd/internal/services/feed/service"
)

// Ports is what the process entrypoint consumes from the feed
type Ports struct {
	Controller domain.Controller
	Runner     domain.Runner
}

// Module implements the feed module
type Module struct {
	b         modkit.Built
	sim       *feedsvc.Simulator
	autostart bool
	maxStep   int
	ports     Ports
}

// New constructs the feed module. The reducer to feed comes in through
// modkit.WithPorts(convdomain.Reducer); without one the feed has no subscriber and
// Next reports Unavailable. Config: CORE_FEED_FILE, CORE_FEED_FORMAT, CORE_FEED_INTERVAL,
// CORE_FEED_AUTOSTART, CORE_FEED_MAX_STEP
func New(deps modkit.Deps, opts ...modkit.Option) (modkit.Module, error) {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("feed"), modkit.WithPrefix("/feed")}, opts...)...)
	cfg := deps.Cfg.Prefix("CORE_FEED_")
	log := deps.Logger(b.Name)

	file := cfg.MayString("FILE", "")
	format := feedsvc.Format(cfg.MayEnum("FORMAT", "", string(feedsvc.FormatJSON), string(feedsvc.FormatYAML)))
	events, err := feedsvc.LoadAs(file, format)
	if err != nil {
		return nil, err
	}
	log.Info().Str("file", str.FirstNonEmpty(file, "builtin")).Int("events", len(events)).Msg("recording loaded")

	sim := feedsvc.New(events,
		feedsvc.WithInterval(cfg.MayDuration("INTERVAL", feedsvc.DefaultInterval)),
		feedsvc.WithLogger(log),
	)
	feedsvc.Instrument(deps.Registry(), sim)

	if red, ok := b.Ports.(convdomain.Reducer); ok && red != nil {
		sim.Subscribe(func(ctx context.Context, e convdomain.Event) { red.Apply(ctx, e) })
	}

	m := &Module{
		b:         b,
		sim:       sim,
		autostart: cfg.MayBool("AUTOSTART", false),
		maxStep:   cfg.MayInt("MAX_STEP", feedhttp.DefaultMaxStep),
	}
	m.ports = Ports{Controller: sim, Runner: runner{m: m}}
	return m, nil
}

// runner starts streaming when autostart is on, then ticks until ctx ends
type runner struct{ m *Module }

func (r runner) Run(ctx context.Context) error {
	if r.m.autostart {
		if _, err := r.m.sim.Start(ctx); err != nil {
			return err
		}
	}
	return r.m.sim.Run(ctx)
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	feedhttp.Describe(str.MustPrefix(m.b.Prefix))
	m.b.Mount(r, func(sub httpkit.Router) { feedhttp.Register(sub, m.sim, m.maxStep) })
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.b.Name, "module name") }

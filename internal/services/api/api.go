// Package api provides the HTTP API for the application
package api

import (
	"context"

	"inboxd/internal/platform/config"
	perr "inboxd/internal/platform/errors"
	"inboxd/internal/platform/logger"
	"inboxd/internal/platform/metrics"
	phttp "inboxd/internal/platform/net/http"

	"inboxd/internal/modkit"
	"inboxd/internal/modkit/httpkit"
	"inboxd/internal/modkit/module"
	"inboxd/internal/modkit/swaggerkit"

	metamod "inboxd/internal/services/api/meta/module"
	convdomain "inboxd/internal/services/conversations/domain"
	convmod "inboxd/internal/services/conversations/module"
	feedmod "inboxd/internal/services/feed/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Logger         *logger.Logger
	Metrics        *metrics.Registry
	EnableSwagger  bool
	EnableProfiler bool
	CORSOrigins    []string
}

// Mount builds the modules, registers their ports and mounts them under /api/v1.
// The feed runner is returned for the caller to drive
func Mount(r phttp.Router, opt Options) (feedmod.Ports, error) {
	deps := modkit.Deps{
		Log:     opt.Logger,
		Cfg:     opt.Config,
		Metrics: opt.Metrics,
	}

	// conversations owns the reducer the feed delivers into
	conversations := convmod.New(deps)
	reducer := module.MustPortsOf[convmod.Ports](conversations).Reducer

	feed, err := feedmod.New(deps, modkit.WithPorts[convdomain.Reducer](reducer))
	if err != nil {
		return feedmod.Ports{}, err
	}
	feedPorts := module.MustPortsOf[feedmod.Ports](feed)

	meta := metamod.New(deps, modkit.WithPorts(metamod.Probes{
		"feed": func(context.Context) error {
			if feedPorts.Controller.Status().Total == 0 {
				return perr.Unavailablef("recording is empty")
			}
			return nil
		},
	}))

	mods := []module.Module{meta, conversations, feed}

	swaggerkit.Mount(r, opt.EnableSwagger)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

	httpkit.MountAPIV1(r, httpkit.CommonStack(opt.Logger, opt.CORSOrigins...), func(api httpkit.Router) {
		for _, m := range mods {
			module.Register(m.Name(), m.Ports())
			m.MountRoutes(api)
		}
	})
	return feedPorts, nil
}

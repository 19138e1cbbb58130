// Command inboxd-replay folds a recorded event file through a fresh reducer and
// prints the resulting projection as indented JSON on stdout. Logs go to stderr
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"inboxd/internal/platform/logger"
	convdomain "inboxd/internal/services/conversations/domain"
	convsvc "inboxd/internal/services/conversations/service"
	feedsvc "inboxd/internal/services/feed/service"
)

type options struct {
	file     string
	stats    bool
	every    bool
	logLevel string
}

func main() {
	var opt options
	flag.StringVar(&opt.file, "file", "", "recording to replay (.json, .yaml, .yml); empty replays the built-in one")
	flag.BoolVar(&opt.stats, "stats", false, "print reducer counters after the projection")
	flag.BoolVar(&opt.every, "every", false, "print the projection after every event, like a live render")
	flag.StringVar(&opt.logLevel, "log-level", "warn", "stderr log level")
	flag.Parse()

	if err := run(context.Background(), opt, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "inboxd-replay:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opt options, stdout, stderr io.Writer) error {
	log := logger.New(logger.Options{Level: opt.logLevel, Format: "console", Service: "inboxd-replay", Writer: stderr})

	events, err := feedsvc.Load(opt.file)
	if err != nil {
		return err
	}

	svc := convsvc.New(convsvc.WithLogger(log))
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")

	for i, e := range events {
		svc.Apply(ctx, e)
		if opt.every {
			if err := enc.Encode(frame{Event: i + 1, Conversations: svc.Conversations(ctx)}); err != nil {
				return err
			}
		}
	}
	if !opt.every {
		if err := enc.Encode(svc.Conversations(ctx)); err != nil {
			return err
		}
	}
	if opt.stats {
		return enc.Encode(svc.Stats(ctx))
	}
	return nil
}

// frame is one render in -every mode
type frame struct {
	Event         int                  `json:"event"`
	Conversations []convdomain.Summary `json:"conversations"`
}

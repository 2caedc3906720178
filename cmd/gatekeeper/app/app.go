// Package app builds the gatekeeper command.
package app

import (
	"context"

	"github.com/kart-io/gatekeeper/cmd/gatekeeper/app/options"
	"github.com/kart-io/gatekeeper/internal/gatekeeper"
	"github.com/kart-io/gatekeeper/pkg/app"
)

const description = `Gatekeeper access decision service.

Evaluates page and content access for CRM users against pattern-matched
restriction rules, serves navigation and content filtering, and records
denied attempts in an audit trail.`

// NewApp creates the gatekeeper application.
func NewApp() *app.App {
	opts := options.NewServerOptions()

	return app.NewApp(
		app.WithName(gatekeeper.Name),
		app.WithShortDescription("Access decision service"),
		app.WithDescription(description),
		app.WithOptions(opts),
		app.WithRunFunc(func() error {
			return run(opts)
		}),
	)
}

func run(opts *options.ServerOptions) error {
	cfg, err := opts.Config()
	if err != nil {
		return err
	}

	ctx := context.Background()
	server, err := cfg.NewServer(ctx)
	if err != nil {
		return err
	}

	return server.Run(ctx)
}

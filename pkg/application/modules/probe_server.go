package modules

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"pricetrack/pkg/probe"
)

// ReadyCheck is one named dependency reported by /ready.
type ReadyCheck struct {
	Name  string
	Check probe.ReadyFunc
}

// ProbeServer serves /healthz and /ready. An empty ListenAddress disables it.
type ProbeServer struct {
	Name          string
	Version       string
	ListenAddress string
	Checks        []ReadyCheck
}

func (p ProbeServer) Run(ctx context.Context, g *errgroup.Group) {
	if p.ListenAddress == "" {
		logger(ctx).Info("probe server disabled")
		return
	}

	probeServer := probe.NewServer(
		p.ListenAddress,
		probe.Options{
			Name:    p.Name,
			Version: p.Version,
		},
	).WithReady(p.ready)

	g.Go(func() error {
		if err := probeServer.Run(ctx); err != nil {
			return fmt.Errorf("probeServer.Run: %w", err)
		}

		return nil
	})
}

// ready runs the checks in order and names the first one that fails.
func (p ProbeServer) ready(ctx context.Context) error {
	for _, c := range p.Checks {
		if err := c.Check(ctx); err != nil {
			return fmt.Errorf("%s: %w", c.Name, err)
		}
	}

	return nil
}

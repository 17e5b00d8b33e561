package proxybackend

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/penguindev/penguin/internal/action"
	"github.com/penguindev/penguin/internal/broadcast"
	"github.com/penguindev/penguin/internal/plog"
)

const (
	pollerStartInterval = 250 * time.Millisecond
	pollerFactor        = 1.5
	pollerMaxInterval   = 3 * time.Second
)

// Poller probes a proxy target at an exponentially increasing interval
// until it responds, then publishes a Reload action and stops. A
// compare-and-swap guard on polling ensures overlapping gateway errors
// start at most one poller.
type Poller struct {
	target  Target
	client  *http.Client
	actions *broadcast.Broadcaster[action.Action]
	log     *plog.Logger

	polling atomic.Bool
}

// NewPoller returns a Poller that probes target using client and publishes
// to actions on recovery.
func NewPoller(target Target, client *http.Client, actions *broadcast.Broadcaster[action.Action], log *plog.Logger) *Poller {
	return &Poller{target: target, client: client, actions: actions, log: log}
}

// StartIfNotRunning begins polling in a background goroutine unless one is
// already in flight. It returns immediately either way.
func (p *Poller) StartIfNotRunning(ctx context.Context) {
	if !p.polling.CompareAndSwap(false, true) {
		return
	}

	go p.run(ctx)
}

func (p *Poller) run(ctx context.Context) {
	defer p.polling.Store(false)

	interval := pollerStartInterval

	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}

		if p.probe(ctx) {
			p.actions.Publish(action.NewReload())
			return
		}

		interval = time.Duration(float64(interval) * pollerFactor)
		if interval > pollerMaxInterval {
			interval = pollerMaxInterval
		}
	}
}

func (p *Poller) probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.target.String()+"/", nil)
	if err != nil {
		return false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return true
}

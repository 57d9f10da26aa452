package metrics

import (
	"context"

	"github.com/dando385/csync"
)

// Instrument wraps c so every Put, Take, and Close reports to m, without
// csync's core package taking a dependency on Prometheus itself — the same
// separation the teaching service keeps between its handlers and its
// middleware.Metrics wrapper.
func Instrument(m *Metrics, c csync.Chan) csync.Chan {
	return &instrumentedChan{Chan: c, m: m, kind: c.Kind().String()}
}

type instrumentedChan struct {
	csync.Chan
	m    *Metrics
	kind string
}

func (c *instrumentedChan) Put(ctx context.Context, v any) error {
	err := c.Chan.Put(ctx, v)
	if err == nil {
		c.m.ChannelPutsTotal.WithLabelValues(c.kind).Inc()
	}
	return err
}

func (c *instrumentedChan) Take(ctx context.Context) (any, error) {
	v, err := c.Chan.Take(ctx)
	if err == nil {
		c.m.ChannelTakesTotal.WithLabelValues(c.kind).Inc()
	}
	return v, err
}

func (c *instrumentedChan) Close() {
	c.Chan.Close()
	c.m.ChannelClosesTotal.WithLabelValues(c.kind).Inc()
}

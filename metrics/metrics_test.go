package metrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/dando385/csync"
)

func TestInstrumentCountsPutsAndTakes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	ch := Instrument(m, csync.NewSync())
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := ch.Put(ctx, "hello"); err != nil {
			t.Errorf("put failed: %v", err)
		}
	}()

	if _, err := ch.Take(ctx); err != nil {
		t.Fatalf("take failed: %v", err)
	}
	<-done

	if got := testutil.ToFloat64(m.ChannelPutsTotal.WithLabelValues("sync")); got != 1 {
		t.Errorf("expected 1 put recorded, got %v", got)
	}
	if got := testutil.ToFloat64(m.ChannelTakesTotal.WithLabelValues("sync")); got != 1 {
		t.Errorf("expected 1 take recorded, got %v", got)
	}
}

func TestInstrumentCountsCloseOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	bc, err := csync.NewBuffered(1)
	if err != nil {
		t.Fatalf("new buffered: %v", err)
	}
	ch := Instrument(m, bc)

	ch.Close()

	if got := testutil.ToFloat64(m.ChannelClosesTotal.WithLabelValues("buffered")); got != 1 {
		t.Errorf("expected 1 close recorded, got %v", got)
	}
}

func TestInstrumentDoesNotCountFailedPut(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	bc, err := csync.NewBuffered(1)
	if err != nil {
		t.Fatalf("new buffered: %v", err)
	}
	ch := Instrument(m, bc)
	ch.Close()

	if err := ch.Put(context.Background(), "late"); err == nil {
		t.Fatal("expected put on closed channel to fail")
	}

	if got := testutil.ToFloat64(m.ChannelPutsTotal.WithLabelValues("buffered")); got != 0 {
		t.Errorf("expected 0 puts recorded after failed put, got %v", got)
	}
}

func TestInstrumentPassesThroughUnderlyingBehavior(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	bc, err := csync.NewBuffered(2)
	if err != nil {
		t.Fatalf("new buffered: %v", err)
	}
	ch := Instrument(m, bc)
	ch.Prefer()

	if !ch.Preferred() {
		t.Fatal("expected wrapped channel to delegate Preferred/Prefer")
	}
	if ch.Kind() != csync.Buffered {
		t.Errorf("expected Kind to delegate to underlying channel, got %v", ch.Kind())
	}
}

func TestNewRegistersAllCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ActiveTasks.Set(3)
	if got := testutil.ToFloat64(m.ActiveTasks); got != 3 {
		t.Errorf("expected active tasks gauge to be 3, got %v", got)
	}

	count, err := testutil.GatherAndCount(reg)
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if count == 0 {
		t.Error("expected at least one metric family registered")
	}

	// Vec collectors only show up in a gather once they have a child.
	m.ChannelPutsTotal.WithLabelValues("sync")
	m.ChannelTakesTotal.WithLabelValues("sync")
	m.ChannelClosesTotal.WithLabelValues("sync")
	m.SelectOutcomesTotal.WithLabelValues("preferred")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) != 5 {
		t.Errorf("expected 5 metric families registered, got %d", len(families))
	}
}

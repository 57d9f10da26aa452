package csync

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSelectTimeoutRace(t *testing.T) {
	// A Timeout(50ms) channel and an empty Buffered(1) channel; select
	// returns TIMEOUT within ~the deadline when nothing else is ready, and
	// returns the buffered value instead once one is put before it fires.
	b, err := NewBuffered(1)
	if err != nil {
		t.Fatal(err)
	}
	timeoutCh := NewTimeout(50 * time.Millisecond)
	defer timeoutCh.Close()

	v, c, err := Select(context.Background(), b, timeoutCh)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if v != TIMEOUT || c != timeoutCh {
		t.Fatalf("select = %v from %v, want TIMEOUT from the timeout channel", v, c)
	}

	b2, err := NewBuffered(1)
	if err != nil {
		t.Fatal(err)
	}
	t2 := NewTimeout(time.Hour)
	defer t2.Close()
	if err := b2.Put(context.Background(), "x"); err != nil {
		t.Fatal(err)
	}
	v, c, err = Select(context.Background(), b2, t2)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if v != "x" || c != b2 {
		t.Fatalf("select = %v from %v, want x from the buffered channel", v, c)
	}
}

func TestSelectPreferenceDominance(t *testing.T) {
	// Two Sync channels, a preferred, producers continuously send "A"
	// on a and "B" on b; every select yields the value of the channel it
	// reports. Then, with a preferred and a non-preferred Buffered channel
	// both holding a value, the preferred channel must win every time.
	a := NewSync()
	b := NewSync()
	a.Prefer()

	stop := make(chan struct{})
	defer close(stop)
	go feed(a, "A", stop)
	go feed(b, "B", stop)

	const trials = 2000
	for i := 0; i < trials; i++ {
		v, c, err := Select(context.Background(), a, b)
		if err != nil {
			t.Fatalf("select: %v", err)
		}
		if c == a && v != "A" {
			t.Fatalf("trial %d: preferred channel yielded %v, want A", i, v)
		}
		if c == b && v != "B" {
			t.Fatalf("trial %d: non-preferred channel yielded %v, want B", i, v)
		}
	}

	pa, err := NewBuffered(1)
	if err != nil {
		t.Fatal(err)
	}
	pb, err := NewBuffered(1)
	if err != nil {
		t.Fatal(err)
	}
	pa.Prefer()
	if err := pb.Put(context.Background(), "B"); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 100; i++ {
		if err := pa.Put(context.Background(), "A"); err != nil {
			t.Fatal(err)
		}
		v, c, err := Select(context.Background(), pa, pb)
		if err != nil || c != pa || v != "A" {
			t.Fatalf("both ready, trial %d: select = %v from %v, %v; want A from the preferred channel", i, v, c, err)
		}
	}
}

func feed(c Chan, v string, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		_ = c.Put(ctx, v)
		cancel()
	}
}

func TestSelectNowaitCompleteness(t *testing.T) {
	c, err := NewBuffered(1)
	if err != nil {
		t.Fatal(err)
	}

	v, _, ok := SelectNowait([]Chan{c}, "none")
	if !ok || v != "none" {
		t.Fatalf("select-nowait on empty channel = %v, %v; want none, true", v, ok)
	}

	if err := c.Put(context.Background(), "v"); err != nil {
		t.Fatal(err)
	}
	v, got, ok := SelectNowait([]Chan{c}, "none")
	if !ok || v != "v" || got != c {
		t.Fatalf("select-nowait with ready channel = %v, %v, %v; want v, chan, true", v, got, ok)
	}
}

func TestSelectNowaitNoSentinel(t *testing.T) {
	c, err := NewBuffered(1)
	if err != nil {
		t.Fatal(err)
	}
	v, got, ok := SelectNowait([]Chan{c})
	if ok || v != nil || got != nil {
		t.Fatalf("select-nowait on empty channel without sentinel = %v, %v, %v; want nil, nil, false", v, got, ok)
	}
}

func TestSelectTimeoutZeroIsOneProbe(t *testing.T) {
	c, err := NewBuffered(1)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := SelectTimeout(0, c); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("select-timeout(0) on empty channel err = %v, want DeadlineExceeded", err)
	}

	if err := c.Put(context.Background(), 42); err != nil {
		t.Fatal(err)
	}
	v, _, err := SelectTimeout(0, c)
	if err != nil || v != 42 {
		t.Fatalf("select-timeout(0) on ready channel = %v, %v; want 42, nil", v, err)
	}
}

func TestSelectTimeoutNegativeIsInvalid(t *testing.T) {
	c, err := NewBuffered(1)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := SelectTimeout(-time.Second, c); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("select-timeout(negative) err = %v, want ErrInvalidArgument", err)
	}
}

func TestSelectEmptySetIsInvalid(t *testing.T) {
	if _, _, err := Select(context.Background()); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("select() err = %v, want ErrInvalidArgument", err)
	}
}

func TestSelectFDispatchIdentity(t *testing.T) {
	// selectf(c, (v -> v*2), :default, (-> -1)) returns -1 on an empty
	// channel and 42 when c holds 21.
	c, err := NewBuffered(1)
	if err != nil {
		t.Fatal(err)
	}

	double := func(v any) (any, error) { return v.(int) * 2, nil }
	defaultHandle := func() (any, error) { return -1, nil }

	got, err := SelectF(context.Background(), []Clause{{Ch: c, Handle: double}}, defaultHandle)
	if err != nil || got != -1 {
		t.Fatalf("selectf on empty channel = %v, %v; want -1, nil", got, err)
	}

	if err := c.Put(context.Background(), 21); err != nil {
		t.Fatal(err)
	}
	got, err = SelectF(context.Background(), []Clause{{Ch: c, Handle: double}}, defaultHandle)
	if err != nil || got != 42 {
		t.Fatalf("selectf on ready channel = %v, %v; want 42, nil", got, err)
	}
}

func TestSelectFDuplicateChannelCollapsesToLastHandler(t *testing.T) {
	c, err := NewBuffered(1)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Put(context.Background(), 10); err != nil {
		t.Fatal(err)
	}

	first := func(v any) (any, error) { return "first", nil }
	last := func(v any) (any, error) { return "last", nil }

	got, err := SelectF(context.Background(), []Clause{{Ch: c, Handle: first}, {Ch: c, Handle: last}}, nil)
	if err != nil || got != "last" {
		t.Fatalf("selectf with duplicate channel = %v, %v; want last, nil", got, err)
	}
}

func TestSelectFPropagatesHandlerError(t *testing.T) {
	c, err := NewBuffered(1)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Put(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	boom := errors.New("boom")
	_, err = SelectF(context.Background(), []Clause{{Ch: c, Handle: func(any) (any, error) { return nil, boom }}}, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("selectf handler error = %v, want boom", err)
	}
}

package goldfish

import (
	"context"
	"testing"
	"time"
)

func TestWatch(t *testing.T) {
	r := setup(t)
	WatchDelay = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fired := make(chan struct{}, 10)
	done := make(chan error)
	go func() {
		done <- r.Watch(ctx, func() { fired <- struct{}{} })
	}()

	// give the watcher time to register, then change the tree
	time.Sleep(100 * time.Millisecond)
	write(t, r, "sub/f.txt", "x")

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	select {
	case err := <-done:
		tassert(t, err == nil, "%v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

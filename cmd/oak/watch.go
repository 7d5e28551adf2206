package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/syncthing/notify"

	"oak/toolchain-go/pkg/driver"
)

// Editors often write a file in several steps; events closer together than
// this collapse into one rebuild.
const watchDebounce = 100 * time.Millisecond

func runWatch(args []string) int {
	var mode driver.TargetMode
	if len(args) > 0 && driver.TargetMode(args[0]).IsValid() {
		mode = driver.TargetMode(args[0])
		args = args[1:]
	}
	inv, err := resolveInvocation(mode, args)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := watchEntry(ctx, inv, func() { execute(inv) }); err != nil {
		fmt.Fprintf(stderr, "watch: %v\n", err)
		return 1
	}
	return 0
}

// watchEntry calls rebuild once, then again after every settled change to
// the entry file, until ctx is cancelled. The parent directory is watched
// so that editors which replace the file by rename are still seen.
func watchEntry(ctx context.Context, inv *invocation, rebuild func()) error {
	entry, err := filepath.Abs(inv.entry)
	if err != nil {
		return err
	}
	c := make(chan notify.EventInfo, 1)
	if err := notify.Watch(filepath.Dir(entry), c, notify.Write|notify.Create|notify.Rename); err != nil {
		return err
	}
	defer notify.Stop(c)

	fmt.Fprintf(stderr, "watching %s\n", entry)
	rebuild()

	var timer *time.Timer
	timeout := func() <-chan time.Time {
		if timer == nil {
			return nil
		}
		return timer.C
	}
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev := <-c:
			if filepath.Clean(ev.Path()) != entry {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(watchDebounce)
		case <-timeout():
			timer = nil
			rebuild()
		}
	}
}

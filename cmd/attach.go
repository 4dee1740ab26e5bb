package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/urfave/cli"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/subgrab/subgrab/internal/config"
	"github.com/subgrab/subgrab/internal/rpc"
)

const counterCycle = 300 * time.Millisecond

type attachedBar struct {
	bar       *mpb.Bar
	counter   *SpeedCounter
	completed int64
}

func newDownloadBar(p *mpb.Progress, name string, total int64) *mpb.Bar {
	barStyle := mpb.BarStyle().Lbound("╢").Filler("█").Tip("█").Padding("░").Rbound("╟")

	bar := p.New(0,
		barStyle,
		mpb.PrependDecorators(
			decor.Name(name, decor.WC{W: len(name) + 1, C: decor.DindentRight}),
			decor.OnComplete(
				decor.EwmaETA(decor.ET_STYLE_GO, 30, decor.WC{W: 4}), "Complete",
			),
		),
		mpb.AppendDecorators(
			decor.EwmaSpeed(decor.SizeB1024(0), "% .2f", 30),
		),
	)
	bar.SetTotal(total, false)
	bar.EnableTriggerComplete()
	return bar
}

func attach(ctx *cli.Context) error {
	cfg, err := config.New()
	if err != nil {
		printRuntimeErr(ctx, "attach", "load_config", err)
		return nil
	}

	resolveRPCSecret(cfg)

	dialCtx, cancel := context.WithTimeout(context.Background(), DEF_DIAL_TIMEOUT)
	client, err := rpc.Dial(dialCtx, cfg.RPCEndpoint(), cfg.RPCSecret)
	cancel()
	if err != nil {
		printRuntimeErr(ctx, "attach", "dial", err)
		return nil
	}
	defer client.Close()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println(">> Watching active downloads (ctrl-c to detach) <<")

	p := mpb.New()
	bars := make(map[string]*attachedBar)
	ticker := time.NewTicker(DEF_POLL_RATE)
	defer ticker.Stop()

	for {
		select {
		case <-sigCtx.Done():
			for _, ab := range bars {
				ab.counter.Stop()
				ab.bar.Abort(true)
			}
			return nil
		case <-ticker.C:
		}

		callCtx, cancel := context.WithTimeout(sigCtx, DEF_DIAL_TIMEOUT)
		active, err := client.TellActive(callCtx)
		cancel()
		if err != nil {
			printRuntimeErr(ctx, "attach", "tell_active", err)
			return nil
		}

		seen := make(map[string]bool, len(active))
		for i := range active {
			d := &active[i]
			seen[d.GID] = true
			ab := bars[d.GID]
			if ab == nil {
				counter := NewSpeedCounter(counterCycle)
				bar := newDownloadBar(p, filepath.Base(d.Name()), int64(d.TotalLength))
				counter.SetBar(bar)
				counter.Start()
				ab = &attachedBar{bar: bar, counter: counter}
				bars[d.GID] = ab
			}
			ab.bar.SetTotal(int64(d.TotalLength), false)
			if delta := int64(d.CompletedLength) - ab.completed; delta > 0 {
				ab.counter.IncrBy(int(delta))
				ab.completed = int64(d.CompletedLength)
			}
		}

		// Downloads gone from the active set are finished or removed.
		for gid, ab := range bars {
			if !seen[gid] {
				ab.counter.Stop()
				ab.bar.SetTotal(-1, true)
				delete(bars, gid)
			}
		}
	}
}

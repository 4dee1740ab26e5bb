package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli"

	"github.com/subgrab/subgrab/internal/config"
	"github.com/subgrab/subgrab/internal/journal"
)

func history(ctx *cli.Context) error {
	cfg, err := config.New()
	if err != nil {
		printRuntimeErr(ctx, "history", "load_config", err)
		return nil
	}

	jrn, err := journal.Open(cfg.JournalPath())
	if err != nil {
		printRuntimeErr(ctx, "history", "open_journal", err)
		return nil
	}
	defer jrn.Close()

	if id := ctx.Args().First(); id != "" {
		return printSessionEvents(ctx, jrn, id)
	}

	sessions, err := jrn.Sessions(historyLimit)
	if err != nil {
		printRuntimeErr(ctx, "history", "list_sessions", err)
		return nil
	}
	if len(sessions) == 0 {
		fmt.Println("No launcher sessions recorded yet")
		return nil
	}

	for _, s := range sessions {
		state := "ended " + humanize.Time(s.EndedAt)
		if s.EndedAt.IsZero() {
			state = "active"
		}
		version := s.DaemonVersion
		if version == "" {
			version = "unknown"
		}
		fmt.Printf("%s\tstarted %s\t%s\tdaemon %s\n",
			s.ID, humanize.Time(s.StartedAt), state, version)
	}
	fmt.Printf("\nUse \"subgrab history <session id>\" for the event log.\n")
	return nil
}

func printSessionEvents(ctx *cli.Context, jrn *journal.Journal, id string) error {
	events, err := jrn.Events(id, 0)
	if err != nil {
		printRuntimeErr(ctx, "history", "list_events", err)
		return nil
	}
	if len(events) == 0 {
		fmt.Printf("No events recorded for session %s\n", id)
		return nil
	}
	for _, e := range events {
		fmt.Printf("%s\t%s\t%s\n", e.At.Format("2006-01-02 15:04:05"), e.Kind, e.Detail)
	}
	return nil
}

package cmd

import "time"

const (
	DEF_DIAL_TIMEOUT = time.Second * 3
	DEF_POLL_RATE    = time.Second
	DEF_HISTORY_LIM  = 10
)

const DESCRIPTION = `
Subgrab boots and supervises a two-process download stack: it
prepares the working directories, launches the download daemon
with RPC enabled, waits until the daemon answers, then starts
the bot on top of it. Crashed processes are restarted with
backoff and every run is recorded in a local journal.
`

const (
	UpDescription = `The up command runs the whole stack in the foreground:
directories are created, the daemon is launched and probed
over RPC, and the bot is started once the daemon is ready.
The command blocks until interrupted.

Example:
        subgrab up --bot "python3 bot.py"

`
	StatusDescription = `The status command reports whether a launcher is running
(via its pidfile) and queries the daemon RPC endpoint for
its version and global transfer statistics.

Example:
        subgrab status

`
	AttachDescription = `The attach command connects to the running daemon and renders
a live progress bar for every active download until
interrupted.

Example:
        subgrab attach

`
	HistoryDescription = `The history command lists past launcher sessions from the
journal. Passing a session id prints the events recorded
during that session.

Example:
        subgrab history
        subgrab history <session id>

`
	StatsDescription = `The stats command prints a snapshot of host resources relevant
to downloading: load average, memory and free disk space on
the download filesystem.

Example:
        subgrab stats

`
)

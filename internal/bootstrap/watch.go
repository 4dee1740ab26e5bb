package bootstrap

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow coalesces the burst of write events editors produce into
// one restart.
const debounceWindow = 500 * time.Millisecond

// watchConf watches the daemon conf file and signals a change on the
// returned channel. Returns a nil channel (never ready) when watching is
// disabled or unavailable; the supervisor then simply never sees a conf
// event.
func (l *Launcher) watchConf() (<-chan struct{}, func()) {
	noop := func() {}
	if !l.cfg.WatchConf {
		return nil, noop
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		l.log.Warning("conf watch unavailable: %v", err)
		return nil, noop
	}
	// Watch the directory; editors replace the file, which drops a watch
	// placed on the path itself.
	if err := w.Add(filepath.Dir(l.cfg.ConfPath)); err != nil {
		l.log.Warning("conf watch unavailable: %v", err)
		w.Close()
		return nil, noop
	}

	changed := make(chan struct{}, 1)
	go func() {
		var debounce *time.Timer
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(l.cfg.ConfPath) {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(debounceWindow, func() {
					select {
					case changed <- struct{}{}:
					default:
					}
				})
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				l.log.Warning("conf watch error: %v", err)
			}
		}
	}()
	return changed, func() { w.Close() }
}

package source

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Watch calls fn after changes to the database file at path, including its
// -wal and -shm companions. Bursts of events within debounce collapse into one
// call. It blocks until ctx is done.
func Watch(ctx context.Context, path string, debounce time.Duration, fn func(event fsnotify.Event)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	if err := watcher.Add(dir); err != nil {
		return err
	}
	log.Debug().Str("dir", dir).Str("file", base).Msg("watching contact database")

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Err(err).Msg("contact database watcher error")
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasPrefix(filepath.Base(event.Name), base) {
				continue
			}
			if !(event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Rename) || event.Op.Has(fsnotify.Remove)) {
				continue
			}
			if debounce <= 0 {
				fn(event)
				continue
			}
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			ev := event
			timer = time.AfterFunc(debounce, func() { fn(ev) })
			mu.Unlock()
		}
	}
}

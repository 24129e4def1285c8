package session

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/zeebo/blake3"
)

// PollInterval is how often Watch checks the file when fsnotify is
// unavailable.
var PollInterval = 250 * time.Millisecond

// Watch follows a session file and sends the re-loaded session each time
// its content changes. The current content, if any, is sent first.
// The channel is closed when ctx is cancelled.
// Uses fsnotify with a polling fallback.
func Watch(ctx context.Context, path string) <-chan *Session {
	ch := make(chan *Session, 1)

	go func() {
		defer close(ch)

		w := &watcher{path: path, ch: ch}

		fw, err := fsnotify.NewWatcher()
		if err != nil {
			slog.Debug("fsnotify unavailable, polling", slog.Any("error", err))
			w.check(ctx)
			w.poll(ctx)
			return
		}
		defer fw.Close()

		// The store replaces files by rename, so watch the directory.
		if err := fw.Add(filepath.Dir(path)); err != nil {
			slog.Debug("watch failed, polling",
				slog.String("dir", filepath.Dir(path)),
				slog.Any("error", err))
			w.check(ctx)
			w.poll(ctx)
			return
		}

		// Read the current content only once events can no longer be missed.
		w.check(ctx)
		w.notify(ctx, fw)
	}()

	return ch
}

type watcher struct {
	path string
	ch   chan<- *Session
	last [32]byte
	seen bool
}

func (w *watcher) notify(ctx context.Context, fw *fsnotify.Watcher) {
	base := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.check(ctx)

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			slog.Debug("watch error", slog.String("path", w.path), slog.Any("error", err))
		}
	}
}

func (w *watcher) poll(ctx context.Context) {
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.check(ctx)
		}
	}
}

// check re-reads the file and emits it when the content differs from the
// last emitted version.
func (w *watcher) check(ctx context.Context) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return
	}

	sum := blake3.Sum256(data)
	if w.seen && sum == w.last {
		return
	}

	sess, err := decode(data, w.path)
	if err != nil {
		// Likely a partial write from another tool; the next event retries.
		slog.Debug("skipping unreadable session", slog.String("path", w.path), slog.Any("error", err))
		return
	}
	w.last, w.seen = sum, true

	select {
	case w.ch <- sess:
	case <-ctx.Done():
	}
}

// Package watch imports record files dropped into a hot folder.
//
// Files with a supported extension are imported once they stop changing,
// then moved to the done/ or failed/ subdirectory of the folder.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/rawrepo-update/internal/adapters/driven/codec"
	"github.com/custodia-labs/rawrepo-update/internal/core/ports/driving"
	"github.com/custodia-labs/rawrepo-update/internal/logger"
)

// Subdirectories receiving processed files.
const (
	DoneDir   = "done"
	FailedDir = "failed"
)

const defaultSettle = 500 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	UserID  string
	GroupID string

	// Settle is how long a file must be quiet before it is imported.
	Settle time.Duration
}

// Result reports the import of one file.
type Result struct {
	Path    string
	MovedTo string
	Summary *driving.ImportSummary
	Err     error
}

// Watcher imports files appearing in a directory.
type Watcher struct {
	dir      string
	importer driving.ImportService
	opts     Options
}

// New creates a watcher for dir.
func New(dir string, importer driving.ImportService, opts Options) *Watcher {
	if opts.Settle <= 0 {
		opts.Settle = defaultSettle
	}
	return &Watcher{dir: dir, importer: importer, opts: opts}
}

// Run watches the directory until ctx is cancelled. Files already present
// are imported first. onResult is called after each file and may be nil.
func (w *Watcher) Run(ctx context.Context, onResult func(Result)) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	pending := make(map[string]time.Time)
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("read %s: %w", w.dir, err)
	}
	for _, e := range entries {
		path := filepath.Join(w.dir, e.Name())
		if w.eligible(path) {
			pending[path] = time.Time{}
		}
	}

	ticker := time.NewTicker(w.opts.Settle / 2)
	defer ticker.Stop()

	logger.Info("watching %s", w.dir)
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if path, ok := w.handleEvent(ev); ok {
				pending[path] = time.Now()
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch %s: %v", w.dir, err)

		case now := <-ticker.C:
			for path, seen := range pending {
				if now.Sub(seen) < w.opts.Settle {
					continue
				}
				delete(pending, path)
				res := w.processFile(ctx, path)
				if onResult != nil {
					onResult(res)
				}
			}
		}
	}
}

// handleEvent returns the path to import for a create or write event.
func (w *Watcher) handleEvent(ev fsnotify.Event) (string, bool) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return "", false
	}
	if !w.eligible(ev.Name) {
		return "", false
	}
	return ev.Name, true
}

func (w *Watcher) eligible(path string) bool {
	if strings.HasPrefix(filepath.Base(path), ".") || !codec.IsSupported(path) {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// processFile imports path and moves it out of the folder.
func (w *Watcher) processFile(ctx context.Context, path string) Result {
	res := Result{Path: path}

	f, err := os.Open(path)
	if err != nil {
		res.Err = fmt.Errorf("open %s: %w", path, err)
		return res
	}
	res.Summary, res.Err = w.importer.Import(ctx, codec.NewReader(path, f), w.opts.UserID, w.opts.GroupID)
	f.Close()

	target := DoneDir
	if res.Err != nil || (res.Summary != nil && res.Summary.Failed > 0) {
		target = FailedDir
	}
	moved, err := moveInto(path, filepath.Join(w.dir, target))
	if err != nil {
		logger.Error("move %s: %v", path, err)
		if res.Err == nil {
			res.Err = err
		}
		return res
	}
	res.MovedTo = moved

	if res.Summary != nil {
		logger.Info("imported %s: %d processed, %d updated, %d failed",
			filepath.Base(path), res.Summary.Processed, res.Summary.Updated, res.Summary.Failed)
	}
	return res
}

func moveInto(path, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	target := filepath.Join(dir, filepath.Base(path))
	if err := os.Rename(path, target); err != nil {
		return "", err
	}
	return target, nil
}

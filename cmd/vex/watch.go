package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/recera/vex/cmd/vex/internal/template"
)

// watcher regenerates .vex files as they change on disk.
type watcher struct {
	proc     *template.Processor
	logger   *slog.Logger
	debounce time.Duration

	// onResult is called once per regenerated file
	onResult func(file string, err error)
}

func (w *watcher) run(ctx context.Context, dirs []string) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create file watcher")
	}
	defer fw.Close()

	for _, dir := range dirs {
		if err := w.addTree(fw, dir); err != nil {
			return err
		}
	}

	debounce := time.NewTimer(0)
	<-debounce.C // drain initial timer

	pending := map[string]struct{}{}
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(fw, event.Name); err != nil {
						w.logger.Warn("watch failed", "dir", event.Name, "error", err)
					}
					continue
				}
			}
			if !isVexEvent(event) {
				continue
			}
			pending[event.Name] = struct{}{}
			debounce.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)

		case <-debounce.C:
			w.flush(pending)
			pending = map[string]struct{}{}
		}
	}
}

// flush regenerates every pending file that still exists.
func (w *watcher) flush(pending map[string]struct{}) {
	files := make([]string, 0, len(pending))
	for f := range pending {
		files = append(files, f)
	}
	sort.Strings(files)

	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			w.logger.Debug("skipping removed file", "file", f)
			continue
		}
		res, err := w.proc.ProcessFile(f)
		if err == nil && !res.Written {
			w.logger.Debug("output unchanged", "file", f)
			continue
		}
		if w.onResult != nil {
			w.onResult(f, err)
		}
	}

	if w.proc.Cache != nil {
		if err := w.proc.Cache.Flush(); err != nil {
			w.logger.Warn("cache flush failed", "error", err)
		}
	}
}

func (w *watcher) addTree(fw *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if path != root && template.SkipDir(info.Name()) {
			return filepath.SkipDir
		}
		w.logger.Debug("watching", "dir", path)
		return fw.Add(path)
	})
}

func isVexEvent(event fsnotify.Event) bool {
	if !strings.HasSuffix(event.Name, ".vex") {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

// dirsOf returns the distinct directories holding files.
func dirsOf(files []string) []string {
	seen := map[string]bool{}
	var dirs []string
	for _, f := range files {
		d := filepath.Dir(f)
		if !seen[d] {
			seen[d] = true
			dirs = append(dirs, d)
		}
	}
	return dirs
}

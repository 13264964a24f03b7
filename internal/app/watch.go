package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"tldrscope/internal/domain"
	"tldrscope/internal/infra/telemetry"
)

const captureExt = ".tldr"

// Watch calls run once, then again after every debounced change to path.
// path may be a captured index file or the directory holding the
// captures. Errors from run are logged and watching continues; Watch
// returns when ctx is done.
func Watch(ctx context.Context, path string, debounce time.Duration, logger *zap.Logger, run func(context.Context) error) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("watch")
	if debounce <= 0 {
		debounce = time.Duration(domain.DefaultWatchDebounceMs) * time.Millisecond
	}

	dir, file, err := watchTarget(path)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return domain.E(domain.CodeInternal, "app.watch", "create watcher", err)
	}
	defer watcher.Close()
	// Editors often replace files on save, so watch the directory.
	if err := watcher.Add(dir); err != nil {
		return domain.E(domain.CodeInternal, "app.watch", "watch "+dir, err)
	}

	runOnce := func() {
		if err := run(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("watch run failed", telemetry.PathField(path), zap.Error(err))
		}
	}
	runOnce()

	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if err != nil {
				logger.Warn("watcher error", zap.Error(err))
			}
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !shouldRerun(event, file) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
				continue
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(debounce)
		case <-timerChan(timer):
			timer = nil
			logger.Info("input changed", telemetry.EventField(telemetry.EventWatchReload), telemetry.PathField(path))
			runOnce()
		}
	}
}

// watchTarget returns the directory to watch and, for a file path, the
// file name that triggers reruns. An empty name means any capture file.
func watchTarget(path string) (string, string, error) {
	if path == "" {
		return "", "", domain.E(domain.CodeInvalidArgument, "app.watch", "watch needs an input path", nil)
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", "", domain.E(domain.CodeInvalidArgument, "app.watch", "stat "+path, err)
	}
	if info.IsDir() {
		return path, "", nil
	}
	return filepath.Dir(path), filepath.Base(path), nil
}

func shouldRerun(event fsnotify.Event, file string) bool {
	if event.Name == "" || event.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(event.Name)
	if file != "" && base == file {
		return true
	}
	return strings.EqualFold(filepath.Ext(base), captureExt)
}

func timerChan(timer *time.Timer) <-chan time.Time {
	if timer == nil {
		return nil
	}
	return timer.C
}

package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// cleanupLockName guards against overlapping cleanup runs across
// processes. The lock file itself is never evicted.
const cleanupLockName = ".cleanup.lock"

// CleanupCache removes cache files whose age is at least maxAge. The
// boundary is inclusive, so CleanupCache(0) empties the cache while a
// huge maxAge removes nothing. Only final-named .epub files are
// touched; in-flight temp files and the lock file are skipped.
// Individual failures are logged and the aggregate returned.
func (s *Service) CleanupCache(ctx context.Context, maxAge time.Duration) error {
	lock := flock.New(filepath.Join(s.cacheDir, cleanupLockName))
	ok, err := lock.TryLock()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil // no cache directory yet, nothing to clean
		}
		return fmt.Errorf("unable to lock cache for cleanup: %w", err)
	}
	if !ok {
		s.log.Info("Cache cleanup already in progress, skipping")
		return nil
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			s.log.Warn("Unable to release cleanup lock", zap.Error(err))
		}
	}()

	entries, err := os.ReadDir(s.cacheDir)
	if err != nil {
		return fmt.Errorf("unable to read cache directory: %w", err)
	}

	now := time.Now()
	removed := 0
	var errs error
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".epub") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			s.log.Warn("Unable to stat cache entry", zap.String("name", entry.Name()), zap.Error(err))
			errs = multierr.Append(errs, err)
			continue
		}
		if now.Sub(info.ModTime()) < maxAge {
			continue
		}
		if err := os.Remove(filepath.Join(s.cacheDir, entry.Name())); err != nil {
			s.log.Warn("Unable to remove cache entry", zap.String("name", entry.Name()), zap.Error(err))
			errs = multierr.Append(errs, err)
			continue
		}
		removed++
	}

	s.log.Info("Cache cleanup finished",
		zap.Int("removed", removed),
		zap.Duration("max_age", maxAge))
	return errs
}

// Package service hands out extracted virtual books. Each book is
// sliced out of its omnibus container on first use and kept in a cache
// directory under a deterministic name, so repeated requests are served
// from disk and the slicer runs at most once per book.
package service

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"unbind/archive"
	"unbind/catalog"
	"unbind/config"
	"unbind/omnibus"
)

// Slicer carves a single work out of a container into a standalone
// EPUB at dstPath. Implemented by slicer.Slicer.
type Slicer interface {
	Extract(ctx context.Context, work omnibus.Work, srcPath, dstPath string) error
}

// Resource describes one extracted virtual book in the cache.
type Resource struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Open returns the cached EPUB for reading.
func (r *Resource) Open() (io.ReadCloser, error) {
	f, err := os.Open(r.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResourceAccess, err)
	}
	return f, nil
}

// Service resolves virtual book ids to extracted EPUB files backed by a
// cache directory. Safe for concurrent use.
type Service struct {
	store    *catalog.Store
	slicer   Slicer
	cacheDir string
	locks    keyedMutex
	log      *zap.Logger
}

// New creates a service slicing into cacheDir. The directory is created
// lazily on first extraction.
func New(store *catalog.Store, slicer Slicer, cacheDir string, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:    store,
		slicer:   slicer,
		cacheDir: cacheDir,
		log:      log.Named("service"),
	}
}

// Content returns the extracted EPUB for a virtual book, slicing it out
// of its container on a cache miss. Repeated calls for the same id
// return byte-identical content and run the slicer at most once while
// the cache entry survives.
func (s *Service) Content(ctx context.Context, virtualBookID string) (*Resource, error) {
	vb, om, err := s.resolve(virtualBookID)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.cacheDir, 0o777); err != nil {
		return nil, fmt.Errorf("%w: unable to create cache directory: %w", ErrExtraction, err)
	}

	src, srcTime, err := s.sourcePath(ctx, om)
	if err != nil {
		return nil, err
	}

	name := cacheName(om.Path, vb.ID)
	target := filepath.Join(s.cacheDir, name)
	if res, ok := cached(target, srcTime); ok {
		return res, nil
	}

	release := s.locks.lock(name)
	defer release()
	if res, ok := cached(target, srcTime); ok {
		return res, nil
	}

	s.log.Info("Extracting virtual book",
		zap.String("id", vb.ID),
		zap.String("title", vb.Title),
		zap.String("container", om.Path))

	if err := s.slice(ctx, vb.Work(), src, target); err != nil {
		return nil, err
	}
	res, ok := cached(target, srcTime)
	if !ok {
		return nil, fmt.Errorf("%w: extracted file missing: %s", ErrResourceAccess, target)
	}
	return res, nil
}

// ContentExists reports whether a fresh extracted copy is already
// cached. It never triggers extraction.
func (s *Service) ContentExists(ctx context.Context, virtualBookID string) bool {
	if ctx.Err() != nil {
		return false
	}
	vb, om, err := s.resolve(virtualBookID)
	if err != nil {
		return false
	}
	outer, _ := catalog.SplitURL(om.Path)
	info, err := os.Stat(outer)
	if err != nil {
		return false
	}
	return fresh(filepath.Join(s.cacheDir, cacheName(om.Path, vb.ID)), info.ModTime())
}

func (s *Service) resolve(virtualBookID string) (*catalog.VirtualBook, *catalog.Omnibus, error) {
	vb, err := s.store.VirtualBookByID(virtualBookID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	om, err := s.store.OmnibusByID(vb.OmnibusID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return vb, om, nil
}

// sourcePath resolves the container URL to a local EPUB file,
// materializing bundled containers into the cache first. The returned
// time is the on-disk container's mod-time, the reference point for
// cache staleness.
func (s *Service) sourcePath(ctx context.Context, om *catalog.Omnibus) (string, time.Time, error) {
	outer, inner := catalog.SplitURL(om.Path)
	info, err := os.Stat(outer)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: container missing: %w", ErrNotFound, err)
	}
	if inner == "" {
		return outer, info.ModTime(), nil
	}
	src, err := s.materialize(ctx, outer, inner, info.ModTime())
	if err != nil {
		return "", time.Time{}, err
	}
	return src, info.ModTime(), nil
}

// materialize copies an EPUB out of a zip bundle into the cache so the
// slicer can open it like any other container. The copy is refreshed
// when the bundle on disk is newer.
func (s *Service) materialize(ctx context.Context, bundle, entry string, bundleTime time.Time) (string, error) {
	name := materializedName(bundle, entry)
	target := filepath.Join(s.cacheDir, name)
	if fresh(target, bundleTime) {
		return target, nil
	}

	release := s.locks.lock(name)
	defer release()
	if fresh(target, bundleTime) {
		return target, nil
	}

	tmp := target + tempSuffix()
	if err := extractBundleEntry(ctx, bundle, entry, tmp); err != nil {
		os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	s.log.Info("Materialized bundled container",
		zap.String("bundle", bundle),
		zap.String("entry", entry))
	return target, nil
}

// slice runs the slicer against a temp file and renames the result into
// place, so readers and cleanup never observe a partial cache entry.
func (s *Service) slice(ctx context.Context, work omnibus.Work, src, target string) error {
	tmp := target + tempSuffix()
	if err := s.slicer.Extract(ctx, work, src, tmp); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	return nil
}

var errEntryDone = errors.New("entry copied")

func extractBundleEntry(ctx context.Context, bundle, entry, dst string) error {
	found := false
	err := archive.Walk(bundle, "", func(_ string, f *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if f.Name != entry {
			return nil
		}
		found = true
		if err := copyEntry(f, dst); err != nil {
			return err
		}
		return errEntryDone
	})
	switch {
	case errors.Is(err, errEntryDone):
		return nil
	case err != nil:
		return fmt.Errorf("%w: %s: %w", ErrExtraction, bundle, err)
	case !found:
		return fmt.Errorf("%w: no entry %q in %s", ErrNotFound, entry, bundle)
	}
	return nil
}

func copyEntry(f *zip.File, dst string) error {
	r, err := f.Open()
	if err != nil {
		return err
	}
	defer r.Close()
	w, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// cached returns the cache entry when it exists and is no older than
// the source container. A container replaced on disk after the slice
// was taken invalidates the entry.
func cached(path string, srcTime time.Time) (*Resource, bool) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil, false
	}
	if info.ModTime().Before(srcTime) {
		return nil, false
	}
	return &Resource{Path: path, Size: info.Size(), ModTime: info.ModTime()}, true
}

func fresh(path string, srcTime time.Time) bool {
	_, ok := cached(path, srcTime)
	return ok
}

// cacheName builds the deterministic cache file name for one virtual
// book from the cleaned container base name and the book id. The name
// is content independent; staleness is handled through mod-times.
func cacheName(containerURL, virtualBookID string) string {
	fsPath, inner := catalog.SplitURL(containerURL)
	base := filepath.Base(fsPath)
	if inner != "" {
		base = path.Base(inner)
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return config.CleanFileName(base) + "-" + virtualBookID + ".epub"
}

// materializedName is the cache file name for an EPUB pulled out of a
// zip bundle.
func materializedName(bundle, entry string) string {
	base := strings.TrimSuffix(filepath.Base(bundle), filepath.Ext(bundle))
	return config.CleanFileName(base) + "--" + config.CleanFileName(path.Base(entry))
}

func tempSuffix() string {
	return fmt.Sprintf(".%s.tmp", uuid.Must(uuid.NewV7()).String())
}

package catalog

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"unbind/archive"
	"unbind/epub"
	"unbind/omnibus"
)

// bundledContainerLimit caps how much of a bundled EPUB is read into
// memory.
const bundledContainerLimit = 512 << 20

// Scanner walks library roots, detects omnibus containers and keeps the
// catalog in sync with what is on disk.
type Scanner struct {
	store     *Store
	coversDir string
	splitter  *Splitter
	log       *zap.Logger
}

// NewScanner creates a Scanner persisting into store. Cover thumbnails
// are written under coversDir; pass an empty string to skip them.
func NewScanner(store *Store, coversDir string, log *zap.Logger) *Scanner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scanner{
		store:     store,
		coversDir: coversDir,
		splitter:  NewSplitter(log),
		log:       log.Named("scan"),
	}
}

// ScanResult aggregates counters of one scan run.
type ScanResult struct {
	Containers int // candidate containers inspected
	Catalogued int // omnibuses written or refreshed
	Unchanged  int // skipped, on-disk state matches the catalog
	Failures   int
}

// Scan walks the given roots. Unreadable paths and broken containers are
// logged and counted, never fatal; only cancellation stops the walk.
func (s *Scanner) Scan(ctx context.Context, roots []string) (ScanResult, error) {
	var res ScanResult
	for _, root := range roots {
		err := filepath.WalkDir(filepath.Clean(root), func(p string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				s.log.Warn("Unable to access path", zap.String("path", p), zap.Error(walkErr))
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			s.scanFile(ctx, p, &res)
			return nil
		})
		if err != nil {
			return res, err
		}
	}
	return res, nil
}

func (s *Scanner) scanFile(ctx context.Context, path string, res *ScanResult) {
	book, err := isBookFile(path)
	if err != nil {
		s.log.Warn("Unable to check file type", zap.String("path", path), zap.Error(err))
		res.Failures++
		return
	}
	if book {
		s.scanEpub(path, res)
		return
	}

	bundle, err := isArchiveFile(path)
	if err != nil {
		s.log.Warn("Unable to check archive type", zap.String("path", path), zap.Error(err))
		res.Failures++
		return
	}
	if bundle {
		s.scanBundle(ctx, path, res)
	}
}

func (s *Scanner) scanEpub(path string, res *ScanResult) {
	info, err := os.Stat(path)
	if err != nil {
		s.log.Warn("Unable to stat container", zap.String("path", path), zap.Error(err))
		res.Failures++
		return
	}
	res.Containers++
	if s.unchanged(path, info.ModTime(), info.Size()) {
		res.Unchanged++
		return
	}
	s.catalogContainer(path, func() (*epub.Book, error) {
		return epub.Open(path)
	}, info.ModTime(), info.Size(), res)
}

func (s *Scanner) scanBundle(ctx context.Context, path string, res *ScanResult) {
	info, err := os.Stat(path)
	if err != nil {
		s.log.Warn("Unable to stat bundle", zap.String("path", path), zap.Error(err))
		res.Failures++
		return
	}
	err = archive.Walk(path, "*.epub", func(arc string, f *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		url := JoinURL(arc, f.Name)
		res.Containers++
		if s.unchanged(url, info.ModTime(), info.Size()) {
			res.Unchanged++
			return nil
		}
		s.catalogContainer(url, func() (*epub.Book, error) {
			return openBundledContainer(f)
		}, info.ModTime(), info.Size(), res)
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.log.Warn("Unable to scan bundle", zap.String("path", path), zap.Error(err))
		res.Failures++
	}
}

func openBundledContainer(f *zip.File) (*epub.Book, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("unable to open bundle entry: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, bundledContainerLimit+1))
	if err != nil {
		return nil, fmt.Errorf("unable to read bundle entry: %w", err)
	}
	if len(data) > bundledContainerLimit {
		return nil, fmt.Errorf("bundle entry %s exceeds %d bytes", f.Name, bundledContainerLimit)
	}
	return epub.NewReader(bytes.NewReader(data), int64(len(data)))
}

// catalogContainer detects works in one container and stores the result.
// Panics from misbehaving inputs are absorbed per container, a poisoned
// file must not end the whole scan.
func (s *Scanner) catalogContainer(url string, open func() (*epub.Book, error), mtime time.Time, size int64, res *ScanResult) {
	log := s.log.With(zap.String("container", url))
	defer func(start time.Time) {
		if r := recover(); r != nil {
			log.Error("Scan of container ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.ByteString("stack", debug.Stack()))
			res.Failures++
		}
	}(time.Now())

	bk, err := open()
	if err != nil {
		log.Warn("Unable to open container", zap.Error(err))
		res.Failures++
		return
	}
	defer bk.Close()

	log.Debug("Container structure", zap.Stringer("dump", bk))

	works := omnibus.ExtractWorks(bk, s.log)
	if len(works) < 2 {
		// A single work is just a book. Drop any stale record.
		if err := s.store.DeleteOmnibusByPath(url); err != nil {
			log.Warn("Unable to drop stale omnibus record", zap.Error(err))
		}
		return
	}

	meta := bk.Metadata()
	om := Omnibus{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Path:      url,
		Title:     containerTitle(url, meta.Title),
		FileMtime: mtime,
		FileSize:  size,
		WorkCount: len(works),
		TocType:   omnibus.ClassifyToc(bk.TOC()),
	}

	blurb := s.splitter.Blurb(meta.Description, 2)
	books := make([]VirtualBook, 0, len(works))
	for i, w := range works {
		books = append(books, VirtualBook{
			ID:                uuid.Must(uuid.NewV7()).String(),
			Number:            i + 1,
			NumberSort:        numberSort(i + 1),
			Title:             w.Title,
			SortTitle:         omnibus.SortableTitle(w.Title),
			Href:              w.Href,
			WorkType:          w.Type,
			FileMtime:         mtime,
			FileSize:          size,
			Metadata:          w.Metadata,
			URL:               url,
			ShortDesc:         blurb,
			PositionInSection: w.Position,
		})
	}

	if err := s.store.ReplaceOmnibus(&om, books); err != nil {
		log.Error("Unable to store omnibus", zap.Error(err))
		res.Failures++
		return
	}
	s.writeCoverThumb(bk, om.ID, log)
	res.Catalogued++
	log.Info("Omnibus catalogued",
		zap.String("title", om.Title), zap.Int("works", len(works)), zap.Stringer("toc_type", om.TocType))
}

func (s *Scanner) unchanged(url string, mtime time.Time, size int64) bool {
	om, err := s.store.OmnibusByPath(url)
	if err != nil {
		return false
	}
	return om.FileSize == size && om.FileMtime.Unix() == mtime.Unix()
}

func (s *Scanner) writeCoverThumb(bk *epub.Book, id string, log *zap.Logger) {
	if s.coversDir == "" {
		return
	}

	var (
		thumb []byte
		err   error
	)
	if data, cerr := bk.Cover(); cerr == nil {
		thumb, err = Thumbnail(data)
	} else {
		thumb, err = DefaultThumbnail()
	}
	if err != nil {
		log.Warn("Unable to build cover thumbnail", zap.Error(err))
		return
	}

	if err := os.MkdirAll(s.coversDir, 0o755); err != nil {
		log.Warn("Unable to create covers directory", zap.Error(err))
		return
	}
	if err := os.WriteFile(filepath.Join(s.coversDir, id+".jpg"), thumb, 0o644); err != nil {
		log.Warn("Unable to write cover thumbnail", zap.Error(err))
	}
}

func containerTitle(url, metaTitle string) string {
	if t := strings.TrimSpace(metaTitle); t != "" {
		return t
	}
	name, inner := SplitURL(url)
	if inner != "" {
		name = inner
	}
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Package epub provides read only access to EPUB containers: package
// metadata, linear reading order and the navigation tree. It is not an
// editor, content is exposed as raw archive entries.
package epub

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"strings"
)

// Book is an opened EPUB container.
type Book struct {
	path   string
	zr     *zip.Reader
	closer io.Closer

	version    string
	opfPath    string
	opfRaw     []byte
	ncxPath    string
	navPath    string
	coverPath  string
	manifest   map[string]ManifestItem
	spine      []SpineItem
	spineIndex map[string]int
	toc        []TocEntry
	meta       Metadata

	files      map[string]*zip.File
	filesLower map[string]*zip.File
}

// Open opens an EPUB container file.
func Open(name string) (*Book, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("unable to open container: %w", err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("unable to stat container: %w", err)
	}
	bk, err := NewReader(f, fi.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	bk.path = name
	bk.closer = f
	return bk, nil
}

// NewReader opens an EPUB container from an in-memory or otherwise seekable
// source. The caller keeps ownership of ra.
func NewReader(ra io.ReaderAt, size int64) (*Book, error) {
	zr, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotEpub, err)
	}
	bk := &Book{zr: zr}
	if err := bk.init(); err != nil {
		return nil, err
	}
	return bk, nil
}

func (bk *Book) init() error {
	bk.files = make(map[string]*zip.File, len(bk.zr.File))
	bk.filesLower = make(map[string]*zip.File, len(bk.zr.File))
	for _, f := range bk.zr.File {
		if !isSafePath(f.Name) {
			continue
		}
		bk.files[f.Name] = f
		bk.filesLower[strings.ToLower(f.Name)] = f
	}

	// The mimetype entry is checked but not required, a surprising number of
	// otherwise fine containers omit or misplace it.
	if data, err := bk.readEntry("mimetype"); err == nil {
		if mt := strings.TrimSpace(string(data)); mt != "" && mt != mimetypeValue {
			return fmt.Errorf("%w: mimetype %q", ErrNotEpub, mt)
		}
	}
	if _, ok := bk.lookup(encryptionPath); ok {
		return ErrEncrypted
	}

	opf, err := bk.findRootFile()
	if err != nil {
		return err
	}
	bk.opfPath = opf
	if err := bk.parsePackage(); err != nil {
		return err
	}
	return bk.parseTOC()
}

// Close releases the underlying file when the book was opened from one.
func (bk *Book) Close() error {
	if bk.closer == nil {
		return nil
	}
	err := bk.closer.Close()
	bk.closer = nil
	return err
}

func (bk *Book) lookup(name string) (*zip.File, bool) {
	if f, ok := bk.files[name]; ok {
		return f, true
	}
	f, ok := bk.filesLower[strings.ToLower(name)]
	return f, ok
}

// Path returns the container location, empty for in-memory books.
func (bk *Book) Path() string { return bk.path }

// Version returns the declared EPUB version, defaulting to "2.0".
func (bk *Book) Version() string { return bk.version }

// PackagePath returns the archive path of the OPF package document.
func (bk *Book) PackagePath() string { return bk.opfPath }

// PackageDocument returns the raw bytes of the OPF package document.
func (bk *Book) PackageDocument() []byte { return bk.opfRaw }

// NCXPath returns the archive path of the NCX, empty when absent.
func (bk *Book) NCXPath() string { return bk.ncxPath }

// NavPath returns the archive path of the EPUB3 nav document, empty when absent.
func (bk *Book) NavPath() string { return bk.navPath }

// Metadata returns the document level metadata.
func (bk *Book) Metadata() Metadata {
	m := bk.meta
	m.Authors = append([]string(nil), bk.meta.Authors...)
	m.Subjects = append([]string(nil), bk.meta.Subjects...)
	return m
}

// TOC returns a deep copy of the navigation tree.
func (bk *Book) TOC() []TocEntry { return cloneTree(bk.toc) }

// Spine returns the linear reading order.
func (bk *Book) Spine() []SpineItem { return append([]SpineItem(nil), bk.spine...) }

// Manifest returns all published resources keyed by manifest id.
func (bk *Book) Manifest() map[string]ManifestItem {
	out := make(map[string]ManifestItem, len(bk.manifest))
	for k, v := range bk.manifest {
		out[k] = v
	}
	return out
}

// SpineIndex returns the reading order position of href (fragment ignored),
// or -1 when the document is not part of the spine.
func (bk *Book) SpineIndex(href string) int {
	p, _ := SplitFragment(href)
	if i, ok := bk.spineIndex[p]; ok {
		return i
	}
	return -1
}

// HasEntry reports whether the archive contains the named entry.
func (bk *Book) HasEntry(name string) bool {
	_, ok := bk.lookup(name)
	return ok
}

// ReadEntry returns the content of the named archive entry.
func (bk *Book) ReadEntry(name string) ([]byte, error) {
	return bk.readEntry(name)
}

// Entries lists all archive entry names in archive order.
func (bk *Book) Entries() []string {
	out := make([]string, 0, len(bk.zr.File))
	for _, f := range bk.zr.File {
		out = append(out, f.Name)
	}
	return out
}

// CoverPath returns the archive path of the declared cover image, empty when
// the package declares none.
func (bk *Book) CoverPath() string { return bk.coverPath }

// Cover returns the declared cover image bytes.
func (bk *Book) Cover() ([]byte, error) {
	if bk.coverPath == "" {
		return nil, ErrNoCover
	}
	return bk.readEntry(bk.coverPath)
}

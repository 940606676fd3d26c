// Package slicer carves a single work out of an omnibus EPUB and writes
// it as a standalone, self contained EPUB container.
//
// The slice is taken along spine boundaries: the work's anchor document
// opens the window and the next work's anchor closes it. Everything the
// window documents reference, directly or through stylesheets, is carried
// over, the package metadata is rewritten for the single work and the
// navigation documents are regenerated.
package slicer

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
	"github.com/google/uuid"
	fixzip "github.com/hidez8891/zip"
	"go.uber.org/zap"

	"unbind/epub"
	"unbind/omnibus"
)

// ErrWorkNotFound is returned when the work's anchor document is not part
// of the source container's spine.
var ErrWorkNotFound = errors.New("slicer: work not found in container")

// Slicer extracts standalone EPUB files from omnibus containers.
type Slicer struct {
	log *zap.Logger
}

// New creates a Slicer.
func New(log *zap.Logger) *Slicer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Slicer{log: log.Named("slicer")}
}

// Extract writes a standalone EPUB for the given work to dstPath. The
// output is produced in a staging file next to dstPath and finalized with
// data descriptors stripped, so a partial result never survives an error
// or cancellation.
func (s *Slicer) Extract(ctx context.Context, work omnibus.Work, srcPath, dstPath string) (err error) {
	log := s.log.With(zap.String("source", filepath.Base(srcPath)), zap.String("work", work.Title))

	if err = ctx.Err(); err != nil {
		return err
	}

	bk, err := epub.Open(srcPath)
	if err != nil {
		return fmt.Errorf("unable to open source container: %w", err)
	}
	defer bk.Close()

	window, err := s.spineWindow(bk, work)
	if err != nil {
		return err
	}
	keep := s.resourceClosure(bk, window)
	log.Debug("Resolved work boundaries",
		zap.Int("documents", len(window)),
		zap.Int("entries", len(keep)))

	opf, err := rewriteOPF(bk, work, keep)
	if err != nil {
		return err
	}

	tmpName := filepath.Join(filepath.Dir(dstPath), fmt.Sprintf(".%s.tmp", uuid.Must(uuid.NewV7())))
	err = s.writeStage(ctx, bk, work, keep, opf, tmpName)
	defer os.Remove(tmpName)
	if err != nil {
		return err
	}

	if err = copyZipWithoutDataDescriptors(tmpName, dstPath); err != nil {
		os.Remove(dstPath)
		return fmt.Errorf("unable to finalize output: %w", err)
	}
	log.Debug("Work extracted", zap.String("output", dstPath))
	return nil
}

// spineWindow locates the spine interval belonging to the work. The
// container is re-partitioned so that the following work's anchor closes
// the window; works anchored to fragments of a shared document fall into
// the same single document window.
func (s *Slicer) spineWindow(bk *epub.Book, work omnibus.Work) ([]epub.SpineItem, error) {
	spine := bk.Spine()
	start := bk.SpineIndex(work.Href)
	if start < 0 {
		return nil, fmt.Errorf("%w: %s", ErrWorkNotFound, work.Href)
	}

	end := len(spine)
	for _, w := range omnibus.ExtractWorks(bk, s.log) {
		idx := bk.SpineIndex(w.Href)
		if idx > start && idx < end {
			end = idx
		}
	}
	return spine[start:end], nil
}

// resourceClosure collects the archive entries the window documents need:
// the documents themselves, the designated cover and everything reachable
// through markup and stylesheet references. Content documents outside the
// window belong to other works and are not followed.
func (s *Slicer) resourceClosure(bk *epub.Book, window []epub.SpineItem) map[string]struct{} {
	keep := make(map[string]struct{}, 2*len(window))
	queue := make([]string, 0, len(window)+1)
	enqueue := func(name string) {
		if _, ok := keep[name]; ok {
			return
		}
		keep[name] = struct{}{}
		queue = append(queue, name)
	}

	for _, it := range window {
		enqueue(it.Href)
	}
	if cover := bk.CoverPath(); cover != "" && bk.HasEntry(cover) {
		enqueue(cover)
	}

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		var refs []string
		switch {
		case isMarkup(name):
			data, err := bk.ReadEntry(name)
			if err != nil {
				s.log.Debug("Skipping unreadable document", zap.String("entry", name), zap.Error(err))
				continue
			}
			refs = markupRefs(name, data)
		case isStylesheet(name):
			data, err := bk.ReadEntry(name)
			if err != nil {
				s.log.Debug("Skipping unreadable stylesheet", zap.String("entry", name), zap.Error(err))
				continue
			}
			refs = cssRefs(name, data)
		default:
			continue
		}

		for _, ref := range refs {
			if _, ok := keep[ref]; ok {
				continue
			}
			if !bk.HasEntry(ref) {
				continue
			}
			if bk.SpineIndex(ref) >= 0 {
				continue
			}
			enqueue(ref)
		}
	}
	return keep
}

// writeStage assembles the sliced container in name. The mimetype entry
// goes in first and uncompressed, rewritten XML documents follow, then
// the kept entries in their original archive order.
func (s *Slicer) writeStage(ctx context.Context, bk *epub.Book, work omnibus.Work, keep map[string]struct{}, opf *etree.Document, name string) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("unable to create staging file: %w", err)
	}
	zw := zip.NewWriter(f)

	closed := false
	defer func() {
		if !closed {
			zw.Close()
			f.Close()
		}
	}()

	if err := writeMimetype(zw); err != nil {
		return err
	}
	if err := writeContainerXML(zw, bk.PackagePath()); err != nil {
		return err
	}
	if err := writeXMLToZip(zw, bk.PackagePath(), opf); err != nil {
		return err
	}

	regenerated := map[string]struct{}{bk.PackagePath(): {}}
	if ncx := bk.NCXPath(); ncx != "" {
		if err := writeXMLToZip(zw, ncx, buildNCX(bk, work)); err != nil {
			return err
		}
		regenerated[ncx] = struct{}{}
	}
	if nav := bk.NavPath(); nav != "" {
		if err := writeXMLToZip(zw, nav, buildNavDoc(bk, work)); err != nil {
			return err
		}
		regenerated[nav] = struct{}{}
	}

	for _, entry := range bk.Entries() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry == "mimetype" || strings.HasPrefix(entry, "META-INF/") {
			continue
		}
		if _, ok := regenerated[entry]; ok {
			continue
		}
		if _, ok := keep[entry]; !ok {
			continue
		}
		data, err := bk.ReadEntry(entry)
		if err != nil {
			return fmt.Errorf("unable to read entry %s: %w", entry, err)
		}
		if err := writeDataToZip(zw, entry, data); err != nil {
			return err
		}
	}

	closed = true
	if err := zw.Close(); err != nil {
		f.Close()
		return fmt.Errorf("unable to finish staging archive: %w", err)
	}
	return f.Close()
}

func writeMimetype(zw *zip.Writer) error {
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:   "mimetype",
		Method: zip.Store,
	})
	if err != nil {
		return err
	}
	_, err = w.Write([]byte("application/epub+zip"))
	return err
}

func writeContainerXML(zw *zip.Writer, opfPath string) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	container := doc.CreateElement("container")
	container.CreateAttr("version", "1.0")
	container.CreateAttr("xmlns", "urn:oasis:names:tc:opendocument:xmlns:container")

	rootfiles := container.CreateElement("rootfiles")
	rootfile := rootfiles.CreateElement("rootfile")
	rootfile.CreateAttr("full-path", opfPath)
	rootfile.CreateAttr("media-type", "application/oebps-package+xml")

	return writeXMLToZip(zw, "META-INF/container.xml", doc)
}

func writeXMLToZip(zw *zip.Writer, name string, doc *etree.Document) error {
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return err
	}
	return writeDataToZip(zw, name, buf.Bytes())
}

func writeDataToZip(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// copyZipWithoutDataDescriptors rewrites the staged archive entry by
// entry with the data descriptor flag cleared.
func copyZipWithoutDataDescriptors(from, to string) error {
	out, err := os.Create(to)
	if err != nil {
		return fmt.Errorf("unable to create target file (%s): %w", to, err)
	}
	defer out.Close()

	r, err := fixzip.OpenReader(from)
	if err != nil {
		return fmt.Errorf("unable to read archive file (%s): %w", from, err)
	}
	defer r.Close()

	w := fixzip.NewWriter(out)
	defer w.Close()

	for _, file := range r.File {
		// unset data descriptor flag.
		file.Flags &= ^fixzip.FlagDataDescriptor

		if err := w.CopyFile(file); err != nil {
			return fmt.Errorf("unable to write target file (%s): %w", to, err)
		}
	}
	return nil
}

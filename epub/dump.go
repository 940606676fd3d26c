package epub

import (
	"fmt"
	"strconv"
	"strings"
)

type treeWriter struct {
	w *strings.Builder
}

func newTreeWriter() *treeWriter {
	return &treeWriter{
		w: &strings.Builder{},
	}
}

func (tw treeWriter) String() string {
	return tw.w.String()
}

func (tw treeWriter) line(depth int, format string, args ...any) {
	for range depth {
		tw.w.WriteString("  ")
	}
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

func encodeText(raw string) string {
	if raw == "" {
		return raw
	}
	return strconv.Quote(raw)
}

// String returns a readable tree of the parsed container structure. It exists
// solely for manual inspection during debugging.
func (bk *Book) String() string {
	if bk == nil {
		return "<nil Book>"
	}

	tw := newTreeWriter()

	meta := bk.Metadata()
	tw.line(0, "Container[%q] version[%s] package[%q]", bk.path, bk.version, bk.opfPath)
	tw.line(1, "Title: %s", encodeText(meta.Title))
	if len(meta.Authors) > 0 {
		tw.line(1, "Authors: %s", encodeText(strings.Join(meta.Authors, ", ")))
	}
	if bk.ncxPath != "" {
		tw.line(1, "NCX: %q", bk.ncxPath)
	}
	if bk.navPath != "" {
		tw.line(1, "Nav: %q", bk.navPath)
	}
	if bk.coverPath != "" {
		tw.line(1, "Cover: %q", bk.coverPath)
	}

	tw.line(1, "Manifest: %d items", len(bk.manifest))
	tw.line(1, "Spine: %d items", len(bk.spine))
	for i, it := range bk.spine {
		linear := ""
		if !it.Linear {
			linear = " linear=no"
		}
		tw.line(2, "Item[%d] %q (%s)%s", i, it.Href, it.MediaType, linear)
	}

	tw.line(1, "TOC: %d top level entries", len(bk.toc))
	dumpTocEntries(tw, bk.toc, 2)

	return tw.String()
}

func dumpTocEntries(tw *treeWriter, entries []TocEntry, depth int) {
	for _, e := range entries {
		tw.line(depth, "Entry[%s] -> %q", encodeText(e.Title), e.Href)
		dumpTocEntries(tw, e.Children, depth+1)
	}
}

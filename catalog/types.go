// Package catalog persists detected omnibuses and their virtual books in
// a SQLite database and keeps it current by scanning library roots.
package catalog

import (
	"fmt"
	"strings"
	"time"

	"unbind/omnibus"
)

// Omnibus is a catalogued source container. Path is the container URL:
// a plain file system path, or outer::inner for an EPUB living inside a
// zip bundle.
type Omnibus struct {
	ID        string
	Path      string
	Title     string
	FileMtime time.Time
	FileSize  int64
	WorkCount int
	TocType   omnibus.TocType
}

// VirtualBook is the durable record of one work detected inside an
// omnibus. Number is the work's ordinal across the whole container,
// PositionInSection the position the partitioning strategy assigned,
// which restarts per section in sectioned collections.
type VirtualBook struct {
	ID                string
	OmnibusID         string
	Number            int
	NumberSort        string
	Title             string
	SortTitle         string
	Href              string
	WorkType          omnibus.WorkType
	FileMtime         time.Time
	FileSize          int64
	Metadata          map[string]string
	URL               string
	ShortDesc         string
	PositionInSection int
}

// Work rebuilds the partitioning result this record was created from, in
// the shape the slicer consumes.
func (vb *VirtualBook) Work() omnibus.Work {
	return omnibus.Work{
		Title:    vb.Title,
		Href:     vb.Href,
		Position: vb.PositionInSection,
		Type:     vb.WorkType,
		Metadata: vb.Metadata,
	}
}

const urlSeparator = "::"

// JoinURL builds a container URL for an EPUB stored inside a zip bundle.
func JoinURL(outer, inner string) string {
	return outer + urlSeparator + inner
}

// SplitURL separates a container URL into the file system path and, for
// bundled containers, the archive entry name.
func SplitURL(url string) (path, inner string) {
	path, inner, _ = strings.Cut(url, urlSeparator)
	return path, inner
}

// numberSort renders an ordinal so that lexicographic order matches
// numeric order for catalogs of any realistic size.
func numberSort(n int) string {
	return fmt.Sprintf("%06d", n)
}

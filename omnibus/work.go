// Package omnibus detects multi-work ebook collections and partitions them
// into their constituent works. Classification is heuristic and total: any
// container yields a (possibly empty) ordered work list, never an error.
package omnibus

import (
	"unbind/epub"
)

// Work is one logical sub-work carved out of an omnibus container. Produced
// per extraction run, the catalog persists it as a virtual book.
type Work struct {
	Title    string
	Href     string
	Position int
	Type     WorkType
	Metadata map[string]string
}

// Container is the read side of an omnibus archive. *epub.Book satisfies it.
type Container interface {
	TOC() []epub.TocEntry
	Spine() []epub.SpineItem
	Metadata() epub.Metadata
}

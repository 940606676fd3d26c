package epub

// TocEntry is a single node of the container navigation tree. Title and Href
// may be empty, Children preserve document order. Href is an archive path,
// possibly with a fragment.
type TocEntry struct {
	Title    string
	Href     string
	Children []TocEntry
}

// Clone returns a deep copy of the entry.
func (e TocEntry) Clone() TocEntry {
	out := TocEntry{Title: e.Title, Href: e.Href}
	if len(e.Children) > 0 {
		out.Children = make([]TocEntry, len(e.Children))
		for i, c := range e.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}

// cloneTree deep copies a TOC forest.
func cloneTree(toc []TocEntry) []TocEntry {
	if len(toc) == 0 {
		return nil
	}
	out := make([]TocEntry, len(toc))
	for i, e := range toc {
		out[i] = e.Clone()
	}
	return out
}

// SpineItem is one element of the linear reading order. Href is an archive
// path resolved against the package document location.
type SpineItem struct {
	ID        string
	Href      string
	MediaType string
	Linear    bool
}

// ManifestItem describes a single published resource.
type ManifestItem struct {
	ID         string
	Href       string
	MediaType  string
	Properties string
}

// Metadata carries the document level description of the container. Empty
// fields were not present in the package document.
type Metadata struct {
	Title       string
	Authors     []string
	Language    string
	Publisher   string
	Description string
	Date        string
	Identifier  string
	Subjects    []string
}

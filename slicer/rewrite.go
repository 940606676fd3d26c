package slicer

import (
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"unbind/epub"
	"unbind/omnibus"
)

// rewriteOPF turns the omnibus package document into one describing the
// single work: title and creator come from the work, the omnibus title is
// preserved as calibre series metadata with the work's position as the
// series index, and manifest, spine and guide are filtered down to the
// kept entries.
func rewriteOPF(bk *epub.Book, work omnibus.Work, keep map[string]struct{}) (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(bk.PackageDocument()); err != nil {
		return nil, fmt.Errorf("unable to parse package document: %w", err)
	}
	pkg := doc.Root()
	if pkg == nil {
		return nil, errors.New("package document has no root element")
	}

	metadata := childByTag(pkg, "metadata")
	if metadata == nil {
		return nil, errors.New("package document has no metadata element")
	}

	if title := childByTag(metadata, "title"); title != nil {
		title.SetText(work.Title)
	} else {
		metadata.CreateElement("dc:title").SetText(work.Title)
	}

	if author := work.Metadata["author"]; author != "" {
		for _, el := range childrenByTag(metadata, "creator") {
			metadata.RemoveChild(el)
		}
		metadata.CreateElement("dc:creator").SetText(author)
	}

	removeNamedMeta(metadata, "calibre:series")
	removeNamedMeta(metadata, "calibre:series_index")
	if series := bk.Metadata().Title; series != "" {
		meta := metadata.CreateElement("meta")
		meta.CreateAttr("name", "calibre:series")
		meta.CreateAttr("content", series)
		meta = metadata.CreateElement("meta")
		meta.CreateAttr("name", "calibre:series_index")
		meta.CreateAttr("content", strconv.Itoa(work.Position))
	}

	manifest := childByTag(pkg, "manifest")
	if manifest == nil {
		return nil, errors.New("package document has no manifest element")
	}
	removedIDs := make(map[string]struct{})
	for _, item := range childrenByTag(manifest, "item") {
		href := item.SelectAttrValue("href", "")
		resolved := epub.ResolveHref(bk.PackagePath(), href)
		if resolved == "" {
			continue
		}
		if _, ok := keep[resolved]; ok {
			continue
		}
		if resolved == bk.NCXPath() || resolved == bk.NavPath() {
			continue
		}
		manifest.RemoveChild(item)
		if id := item.SelectAttrValue("id", ""); id != "" {
			removedIDs[id] = struct{}{}
		}
	}

	if spine := childByTag(pkg, "spine"); spine != nil {
		for _, ref := range childrenByTag(spine, "itemref") {
			if _, gone := removedIDs[ref.SelectAttrValue("idref", "")]; gone {
				spine.RemoveChild(ref)
			}
		}
	}

	if guide := childByTag(pkg, "guide"); guide != nil {
		for _, ref := range childrenByTag(guide, "reference") {
			resolved := epub.ResolveHref(bk.PackagePath(), ref.SelectAttrValue("href", ""))
			if _, ok := keep[resolved]; !ok {
				guide.RemoveChild(ref)
			}
		}
		if len(childrenByTag(guide, "reference")) == 0 {
			pkg.RemoveChild(guide)
		}
	}

	return doc, nil
}

// buildNCX regenerates the NCX for the sliced work. The work becomes the
// root navigation point and the matching branch of the omnibus TOC, acts
// of a play or chapters of a novel, is carried over beneath it.
func buildNCX(bk *epub.Book, work omnibus.Work) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	ncx := doc.CreateElement("ncx")
	ncx.CreateAttr("xmlns", "http://www.daisy.org/z3986/2005/ncx/")
	ncx.CreateAttr("version", "2005-1")

	sub := findTocEntry(bk.TOC(), work.Href)

	depth := 1
	if sub != nil {
		depth = max(depth, 1+tocDepth(sub.Children))
	}

	head := ncx.CreateElement("head")
	metaUID := head.CreateElement("meta")
	metaUID.CreateAttr("name", "dtb:uid")
	metaUID.CreateAttr("content", bk.Metadata().Identifier)
	metaDepth := head.CreateElement("meta")
	metaDepth.CreateAttr("name", "dtb:depth")
	metaDepth.CreateAttr("content", fmt.Sprintf("%d", depth))

	docTitle := ncx.CreateElement("docTitle")
	docTitle.CreateElement("text").SetText(work.Title)

	navMap := ncx.CreateElement("navMap")
	ncxDir := path.Dir(bk.NCXPath())

	playOrder := 0
	root := addNavPoint(navMap, work.Title, relativeHref(ncxDir, work.Href), &playOrder)
	if sub != nil {
		addNavTree(root, sub.Children, ncxDir, &playOrder)
	}
	return doc
}

func addNavPoint(parent *etree.Element, title, src string, playOrder *int) *etree.Element {
	*playOrder++
	navPoint := parent.CreateElement("navPoint")
	navPoint.CreateAttr("id", fmt.Sprintf("np-%d", *playOrder))
	navPoint.CreateAttr("playOrder", fmt.Sprintf("%d", *playOrder))

	navLabel := navPoint.CreateElement("navLabel")
	navLabel.CreateElement("text").SetText(title)

	content := navPoint.CreateElement("content")
	content.CreateAttr("src", src)
	return navPoint
}

func addNavTree(parent *etree.Element, entries []epub.TocEntry, ncxDir string, playOrder *int) {
	for _, e := range entries {
		if e.Href == "" || strings.TrimSpace(e.Title) == "" {
			continue
		}
		navPoint := addNavPoint(parent, e.Title, relativeHref(ncxDir, e.Href), playOrder)
		addNavTree(navPoint, e.Children, ncxDir, playOrder)
	}
}

// buildNavDoc regenerates the EPUB3 navigation document for the sliced
// work.
func buildNavDoc(bk *epub.Book, work omnibus.Work) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	html := doc.CreateElement("html")
	html.CreateAttr("xmlns", "http://www.w3.org/1999/xhtml")
	html.CreateAttr("xmlns:epub", "http://www.idpf.org/2007/ops")

	head := html.CreateElement("head")
	meta := head.CreateElement("meta")
	meta.CreateAttr("charset", "utf-8")
	head.CreateElement("title").SetText(work.Title)

	body := html.CreateElement("body")
	nav := body.CreateElement("nav")
	nav.CreateAttr("epub:type", "toc")
	nav.CreateAttr("id", "toc")
	nav.CreateAttr("role", "doc-toc")

	navDir := path.Dir(bk.NavPath())

	ol := nav.CreateElement("ol")
	li := ol.CreateElement("li")
	a := li.CreateElement("a")
	a.CreateAttr("href", relativeHref(navDir, work.Href))
	a.SetText(work.Title)

	if sub := findTocEntry(bk.TOC(), work.Href); sub != nil && len(sub.Children) > 0 {
		addNavList(li, sub.Children, navDir)
	}
	return doc
}

func addNavList(parent *etree.Element, entries []epub.TocEntry, dir string) {
	ol := parent.CreateElement("ol")
	for _, e := range entries {
		if e.Href == "" || strings.TrimSpace(e.Title) == "" {
			continue
		}
		li := ol.CreateElement("li")
		a := li.CreateElement("a")
		a.CreateAttr("href", relativeHref(dir, e.Href))
		a.SetText(e.Title)
		if len(e.Children) > 0 {
			addNavList(li, e.Children, dir)
		}
	}
}

// findTocEntry locates the TOC branch anchored at href, preferring an
// exact match over a fragmentless one.
func findTocEntry(entries []epub.TocEntry, href string) *epub.TocEntry {
	target, _ := epub.SplitFragment(href)
	var loose *epub.TocEntry

	var walk func(list []epub.TocEntry) *epub.TocEntry
	walk = func(list []epub.TocEntry) *epub.TocEntry {
		for i := range list {
			e := &list[i]
			if e.Href == href {
				return e
			}
			if loose == nil {
				if p, _ := epub.SplitFragment(e.Href); p == target {
					loose = e
				}
			}
			if found := walk(e.Children); found != nil {
				return found
			}
		}
		return nil
	}
	if found := walk(entries); found != nil {
		return found
	}
	return loose
}

func tocDepth(entries []epub.TocEntry) int {
	depth := 0
	for _, e := range entries {
		depth = max(depth, 1+tocDepth(e.Children))
	}
	return depth
}

// childByTag returns the first child element with the given local tag,
// ignoring namespace prefixes. Package documents in the wild declare dc
// and opf prefixes inconsistently.
func childByTag(parent *etree.Element, tag string) *etree.Element {
	for _, el := range parent.ChildElements() {
		if el.Tag == tag {
			return el
		}
	}
	return nil
}

func childrenByTag(parent *etree.Element, tag string) []*etree.Element {
	var out []*etree.Element
	for _, el := range parent.ChildElements() {
		if el.Tag == tag {
			out = append(out, el)
		}
	}
	return out
}

func removeNamedMeta(metadata *etree.Element, name string) {
	for _, el := range childrenByTag(metadata, "meta") {
		if el.SelectAttrValue("name", "") == name {
			metadata.RemoveChild(el)
		}
	}
}

// relativeTo expresses target as a path relative to dir, both slash
// separated archive paths.
func relativeTo(dir, target string) string {
	if dir == "." || dir == "" {
		return target
	}
	if rest, ok := strings.CutPrefix(target, dir+"/"); ok {
		return rest
	}
	return strings.Repeat("../", strings.Count(dir, "/")+1) + target
}

// relativeHref is relativeTo for hrefs which may carry a fragment.
func relativeHref(dir, href string) string {
	name, frag := epub.SplitFragment(href)
	if frag != "" {
		frag = "#" + frag
	}
	return relativeTo(dir, name) + frag
}

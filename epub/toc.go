package epub

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

type ncxNavPoint struct {
	Label   string        `xml:"navLabel>text"`
	Content struct {
		Src string `xml:"src,attr"`
	} `xml:"content"`
	Children []ncxNavPoint `xml:"navPoint"`
}

type ncxDocument struct {
	XMLName xml.Name      `xml:"ncx"`
	NavMap  []ncxNavPoint `xml:"navMap>navPoint"`
}

// parseTOC builds the navigation tree. EPUB3 nav documents win over NCX when
// both are present; a container with neither simply has an empty tree.
func (bk *Book) parseTOC() error {
	if bk.navPath != "" {
		toc, err := bk.parseNavDocument(bk.navPath)
		if err == nil && len(toc) > 0 {
			bk.toc = toc
			return nil
		}
	}
	if bk.ncxPath != "" {
		toc, err := bk.parseNCX(bk.ncxPath)
		if err != nil {
			return err
		}
		bk.toc = toc
	}
	return nil
}

func (bk *Book) parseNCX(name string) ([]TocEntry, error) {
	data, err := bk.readEntry(name)
	if err != nil {
		return nil, err
	}
	var ncx ncxDocument
	if err := xml.Unmarshal(data, &ncx); err != nil {
		return nil, fmt.Errorf("unable to parse NCX %s: %w", name, err)
	}
	return convertNavPoints(name, ncx.NavMap), nil
}

func convertNavPoints(base string, points []ncxNavPoint) []TocEntry {
	if len(points) == 0 {
		return nil
	}
	out := make([]TocEntry, 0, len(points))
	for _, p := range points {
		e := TocEntry{
			Title:    strings.TrimSpace(p.Label),
			Href:     rebaseHref(base, p.Content.Src),
			Children: convertNavPoints(base, p.Children),
		}
		out = append(out, e)
	}
	return out
}

// rebaseHref resolves href against the referencing document keeping the
// fragment, so entries addressing anchors inside a shared document stay
// distinguishable.
func rebaseHref(base, href string) string {
	p, frag := SplitFragment(href)
	resolved := ResolveHref(base, p)
	if resolved == "" {
		return ""
	}
	if frag != "" {
		return resolved + "#" + frag
	}
	return resolved
}

// parseNavDocument extracts the toc nav of an EPUB3 navigation document.
// Nav documents are XHTML, parsed leniently since real files rarely validate.
func (bk *Book) parseNavDocument(name string) ([]TocEntry, error) {
	data, err := bk.readEntry(name)
	if err != nil {
		return nil, err
	}
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unable to parse nav document %s: %w", name, err)
	}
	nav := findTocNav(doc)
	if nav == nil {
		return nil, nil
	}
	if ol := findChildElement(nav, "ol"); ol != nil {
		return bk.parseNavList(name, ol), nil
	}
	return nil, nil
}

// findTocNav returns the <nav epub:type="toc"> element, or the first <nav>
// when no node is explicitly typed.
func findTocNav(n *html.Node) *html.Node {
	var firstNav, tocNav *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if tocNav != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == "nav" {
			if firstNav == nil {
				firstNav = n
			}
			for _, a := range n.Attr {
				if strings.HasSuffix(a.Key, "type") && strings.Contains(a.Val, "toc") {
					tocNav = n
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	if tocNav != nil {
		return tocNav
	}
	return firstNav
}

func findChildElement(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			return c
		}
	}
	return nil
}

func (bk *Book) parseNavList(base string, ol *html.Node) []TocEntry {
	var out []TocEntry
	for li := ol.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		var e TocEntry
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "a":
				e.Title = strings.TrimSpace(textContent(c))
				for _, a := range c.Attr {
					if a.Key == "href" {
						e.Href = rebaseHref(base, a.Val)
					}
				}
			case "span":
				if e.Title == "" {
					e.Title = strings.TrimSpace(textContent(c))
				}
			case "ol":
				e.Children = bk.parseNavList(base, c)
			}
		}
		if e.Title == "" && e.Href == "" && len(e.Children) == 0 {
			continue
		}
		out = append(out, e)
	}
	return out
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

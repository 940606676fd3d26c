package epub

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// pkgDocument mirrors the parts of the OPF package document the reader needs.
type pkgDocument struct {
	XMLName  xml.Name `xml:"package"`
	Version  string   `xml:"version,attr"`
	Metadata struct {
		Titles       []string `xml:"http://purl.org/dc/elements/1.1/ title"`
		Creators     []string `xml:"http://purl.org/dc/elements/1.1/ creator"`
		Languages    []string `xml:"http://purl.org/dc/elements/1.1/ language"`
		Publishers   []string `xml:"http://purl.org/dc/elements/1.1/ publisher"`
		Descriptions []string `xml:"http://purl.org/dc/elements/1.1/ description"`
		Dates        []string `xml:"http://purl.org/dc/elements/1.1/ date"`
		Identifiers  []string `xml:"http://purl.org/dc/elements/1.1/ identifier"`
		Subjects     []string `xml:"http://purl.org/dc/elements/1.1/ subject"`
		Metas        []struct {
			Name     string `xml:"name,attr"`
			Content  string `xml:"content,attr"`
			Property string `xml:"property,attr"`
		} `xml:"meta"`
	} `xml:"metadata"`
	Manifest struct {
		Items []struct {
			ID         string `xml:"id,attr"`
			Href       string `xml:"href,attr"`
			MediaType  string `xml:"media-type,attr"`
			Properties string `xml:"properties,attr"`
		} `xml:"item"`
	} `xml:"manifest"`
	Spine struct {
		Toc      string `xml:"toc,attr"`
		ItemRefs []struct {
			IDRef  string `xml:"idref,attr"`
			Linear string `xml:"linear,attr"`
		} `xml:"itemref"`
	} `xml:"spine"`
}

// parsePackage reads the package document and fills in manifest, spine,
// metadata and navigation entry points.
func (bk *Book) parsePackage() error {
	data, err := bk.readEntry(bk.opfPath)
	if err != nil {
		return err
	}
	bk.opfRaw = data

	var pkg pkgDocument
	if err := xml.Unmarshal(data, &pkg); err != nil {
		return fmt.Errorf("unable to parse package document %s: %w", bk.opfPath, err)
	}
	bk.version = pkg.Version
	if bk.version == "" {
		bk.version = "2.0"
	}

	bk.manifest = make(map[string]ManifestItem, len(pkg.Manifest.Items))
	for _, it := range pkg.Manifest.Items {
		if it.ID == "" || it.Href == "" {
			continue
		}
		mi := ManifestItem{
			ID:         it.ID,
			Href:       ResolveHref(bk.opfPath, it.Href),
			MediaType:  it.MediaType,
			Properties: it.Properties,
		}
		bk.manifest[mi.ID] = mi
		if hasProperty(mi.Properties, "nav") {
			bk.navPath = mi.Href
		}
	}

	bk.spine = make([]SpineItem, 0, len(pkg.Spine.ItemRefs))
	bk.spineIndex = make(map[string]int)
	for _, ref := range pkg.Spine.ItemRefs {
		mi, ok := bk.manifest[ref.IDRef]
		if !ok {
			continue
		}
		si := SpineItem{
			ID:        mi.ID,
			Href:      mi.Href,
			MediaType: mi.MediaType,
			Linear:    ref.Linear != "no",
		}
		if _, dup := bk.spineIndex[si.Href]; !dup {
			bk.spineIndex[si.Href] = len(bk.spine)
		}
		bk.spine = append(bk.spine, si)
	}

	if ncx, ok := bk.manifest[pkg.Spine.Toc]; ok {
		bk.ncxPath = ncx.Href
	} else {
		for _, mi := range bk.manifest {
			if mi.MediaType == "application/x-dtbncx+xml" {
				bk.ncxPath = mi.Href
				break
			}
		}
	}

	bk.meta = Metadata{
		Title:       first(pkg.Metadata.Titles),
		Authors:     compact(pkg.Metadata.Creators),
		Language:    first(pkg.Metadata.Languages),
		Publisher:   first(pkg.Metadata.Publishers),
		Description: first(pkg.Metadata.Descriptions),
		Date:        first(pkg.Metadata.Dates),
		Identifier:  first(pkg.Metadata.Identifiers),
		Subjects:    compact(pkg.Metadata.Subjects),
	}

	// EPUB2 cover convention: <meta name="cover" content="item-id"/>.
	for _, m := range pkg.Metadata.Metas {
		if strings.EqualFold(m.Name, "cover") && m.Content != "" {
			if mi, ok := bk.manifest[m.Content]; ok {
				bk.coverPath = mi.Href
			}
		}
	}
	// EPUB3 convention: manifest item with the cover-image property.
	for _, mi := range bk.manifest {
		if hasProperty(mi.Properties, "cover-image") {
			bk.coverPath = mi.Href
			break
		}
	}
	return nil
}

func first(ss []string) string {
	for _, s := range ss {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

func compact(ss []string) []string {
	var out []string
	for _, s := range ss {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func hasProperty(properties, want string) bool {
	for _, p := range strings.Fields(properties) {
		if p == want {
			return true
		}
	}
	return false
}

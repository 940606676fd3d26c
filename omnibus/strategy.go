package omnibus

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"unbind/epub"
)

// strategyFunc builds the ordered work list for one structural family.
// shared carries the container level metadata merged into every work.
type strategyFunc func(toc []epub.TocEntry, shared map[string]string) []Work

// strategies maps every classifiable family to its partitioning algorithm.
// TocTypeUnknown has no entry, it goes straight to the spine fallback.
var strategies = map[TocType]strategyFunc{
	TocTypeShakespeare:    shakespeareWorks,
	TocTypeDelphiClassics: delphiWorks,
	TocTypeGeneric:        genericWorks,
}

// sharedMetadata flattens container metadata into work metadata keys.
// Enrichment is best effort, absent fields are skipped and extraction
// continues regardless.
func sharedMetadata(meta epub.Metadata, log *zap.Logger) map[string]string {
	out := make(map[string]string)
	put := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			out[key] = value
		} else {
			log.Debug("Omnibus metadata field is empty, skipping", zap.String("field", key))
		}
	}
	put("title", meta.Title)
	put("author", strings.Join(meta.Authors, ", "))
	put("description", meta.Description)
	put("language", meta.Language)
	put("publisher", meta.Publisher)
	return out
}

func cloneMetadata(shared map[string]string) map[string]string {
	out := make(map[string]string, len(shared)+1)
	for k, v := range shared {
		out[k] = v
	}
	return out
}

// shakespeareWorks emits one work per titled top level entry. Untitled
// entries are dropped, positions number the emitted works.
func shakespeareWorks(toc []epub.TocEntry, shared map[string]string) []Work {
	works := make([]Work, 0, len(toc))
	for _, e := range toc {
		title := NormalizeTitle(e.Title)
		if title == "" {
			continue
		}
		md := cloneMetadata(shared)
		md["author"] = "William Shakespeare"
		works = append(works, Work{
			Title:    title,
			Href:     e.Href,
			Position: len(works) + 1,
			Type:     ClassifyWorkType(title),
			Metadata: md,
		})
	}
	return works
}

// delphiWorks flattens the children of every top level section. Positions
// restart at one inside each section, untitled children get placeholder
// names.
func delphiWorks(toc []epub.TocEntry, shared map[string]string) []Work {
	var works []Work
	for _, section := range toc {
		sectionTitle := NormalizeTitle(section.Title)
		for i, child := range section.Children {
			position := i + 1
			title := NormalizeTitle(child.Title)
			if title == "" {
				title = fmt.Sprintf("Work %d", position)
			}
			md := cloneMetadata(shared)
			if sectionTitle != "" {
				md["section"] = sectionTitle
			}
			works = append(works, Work{
				Title:    title,
				Href:     child.Href,
				Position: position,
				Type:     ClassifyWorkType(title),
				Metadata: md,
			})
		}
	}
	return works
}

// genericWorks emits one work per top level entry, untitled entries get
// placeholder names instead of being dropped.
func genericWorks(toc []epub.TocEntry, shared map[string]string) []Work {
	works := make([]Work, 0, len(toc))
	for i, e := range toc {
		position := i + 1
		title := NormalizeTitle(e.Title)
		if title == "" {
			title = fmt.Sprintf("Work %d", position)
		}
		works = append(works, Work{
			Title:    title,
			Href:     e.Href,
			Position: position,
			Type:     ClassifyWorkType(title),
			Metadata: cloneMetadata(shared),
		})
	}
	return works
}

// spineWorks is the structure agnostic fallback, one work per reading order
// item. It keeps the guarantee that a container with a non-empty spine never
// partitions into nothing.
func spineWorks(spine []epub.SpineItem, shared map[string]string) []Work {
	works := make([]Work, 0, len(spine))
	for i, item := range spine {
		works = append(works, Work{
			Title:    fmt.Sprintf("Work %d", i+1),
			Href:     item.Href,
			Position: i + 1,
			Type:     WorkTypeOther,
			Metadata: cloneMetadata(shared),
		})
	}
	return works
}

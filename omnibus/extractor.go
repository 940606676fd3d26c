package omnibus

import (
	"go.uber.org/zap"

	"unbind/epub"
)

// ExtractWorks partitions an opened container into its ordered list of
// works: classify the navigation tree, run the matching strategy, fall back
// to the spine when classification fails or the strategy comes up empty.
// An empty result means "not an omnibus" and is an expected outcome, any
// internal failure is absorbed here and logged, never returned.
func ExtractWorks(c Container, log *zap.Logger) (works []Work) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("Panic while partitioning omnibus, treating as not an omnibus", zap.Any("panic", r))
			works = nil
		}
	}()

	toc := c.TOC()
	tocType := ClassifyToc(toc)
	shared := sharedMetadata(c.Metadata(), log)

	if strategy := strategies[tocType]; strategy != nil {
		works = strategy(toc, shared)
	}
	if len(works) == 0 {
		spine := c.Spine()
		log.Debug("Falling back to spine partitioning",
			zap.Stringer("structure", tocType), zap.Int("toc_entries", len(toc)), zap.Int("spine_items", len(spine)))
		works = spineWorks(spine, shared)
	}
	log.Debug("Partitioned omnibus", zap.Stringer("structure", tocType), zap.Int("works", len(works)))
	return works
}

// ExtractWorksFromFile opens an EPUB container and partitions it. Containers
// which cannot be opened or parsed yield an empty list, callers must treat
// that as "not an omnibus" rather than an error.
func ExtractWorksFromFile(name string, log *zap.Logger) []Work {
	bk, err := epub.Open(name)
	if err != nil {
		log.Warn("Unable to open omnibus container", zap.String("file", name), zap.Error(err))
		return nil
	}
	defer bk.Close()
	return ExtractWorks(bk, log)
}

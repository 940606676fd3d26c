package omnibus

// Literary type of a partitioned work, inferred from its title.
// ENUM(novel, shortStory, essay, play, poem, letter, delphiChapter, genericEntry, other)
type WorkType int

// Structural family of an omnibus navigation tree. Derived on every run,
// never read back from storage for decision making.
// ENUM(unknown, shakespeare, delphiClassics, generic)
type TocType int

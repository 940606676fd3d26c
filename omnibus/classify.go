package omnibus

import (
	"strings"

	"unbind/epub"
)

// workTypeRules are checked in order, first rule whose words are all present
// wins.
var workTypeRules = []struct {
	kind  WorkType
	words []string
}{
	{WorkTypePoem, []string{"sonnet"}},
	{WorkTypePoem, []string{"poem"}},
	{WorkTypePlay, []string{"play"}},
	{WorkTypePlay, []string{"act", "scene"}},
	{WorkTypeEssay, []string{"essay"}},
	{WorkTypeLetter, []string{"letter"}},
	{WorkTypeDelphiChapter, []string{"chapter"}},
	{WorkTypeShortStory, []string{"short", "story"}},
	{WorkTypeNovel, []string{"novel"}},
}

// knownPoemTitles catches famous poems whose titles carry none of the keyword
// markers. Omnibus collections list them by bare title.
var knownPoemTitles = map[string]struct{}{
	"the raven":              {},
	"annabel lee":            {},
	"the bells":              {},
	"lenore":                 {},
	"ulalume":                {},
	"eldorado":               {},
	"to helen":               {},
	"the conqueror worm":     {},
	"a dream within a dream": {},
	"ozymandias":             {},
	"kubla khan":             {},
	"the tyger":              {},
	"jabberwocky":            {},
	"invictus":               {},
	"the road not taken":     {},
}

// ClassifyWorkType infers the literary type of a work from its title. Total,
// any title yields a type, GenericEntry when nothing matches.
func ClassifyWorkType(title string) WorkType {
	lower := strings.ToLower(title)
	for _, rule := range workTypeRules {
		matched := true
		for _, w := range rule.words {
			if !strings.Contains(lower, w) {
				matched = false
				break
			}
		}
		if matched {
			return rule.kind
		}
	}
	if _, ok := knownPoemTitles[strings.TrimSpace(lower)]; ok {
		return WorkTypePoem
	}
	return WorkTypeGenericEntry
}

// knownPlayKeywords mark Shakespeare collections. Matching any of these in a
// first level entry overrides every structural check, since such collections
// can also satisfy the Delphi shape.
var knownPlayKeywords = []string{
	"hamlet",
	"macbeth",
	"othello",
	"romeo",
	"juliet",
	"lear",
	"tempest",
	"falstaff",
	"twelfth night",
	"midsummer",
	"merchant of venice",
	"much ado",
	"taming of the shrew",
	"julius caesar",
	"antony",
	"cleopatra",
	"coriolanus",
	"cymbeline",
	"winter's tale",
	"richard ii",
	"richard iii",
	"henry iv",
	"henry v",
	"henry vi",
	"henry viii",
	"titus andronicus",
	"merry wives",
	"pericles",
	"timon of athens",
	"two gentlemen of verona",
	"loves labours lost",
	"love's labour's lost",
	"measure for measure",
	"comedy of errors",
	"as you like it",
	"all's well",
	"troilus",
}

// ClassifyToc assigns a navigation tree to one of the known structural
// families. The Shakespeare keyword check runs before the shape checks on
// purpose, see knownPlayKeywords.
func ClassifyToc(toc []epub.TocEntry) TocType {
	if len(toc) == 0 {
		return TocTypeUnknown
	}
	for _, e := range toc {
		lower := strings.ToLower(e.Title)
		for _, kw := range knownPlayKeywords {
			if strings.Contains(lower, kw) {
				return TocTypeShakespeare
			}
		}
	}
	if kids := toc[0].Children; len(kids) > 0 {
		allLeaves := true
		for _, c := range kids {
			if len(c.Children) > 0 {
				allLeaves = false
				break
			}
		}
		if allLeaves {
			return TocTypeDelphiClassics
		}
	}
	if len(toc) > 1 {
		return TocTypeGeneric
	}
	return TocTypeUnknown
}

package omnibus

import (
	"testing"

	"unbind/epub"
)

func TestClassifyWorkType(t *testing.T) {
	cases := []struct {
		name  string
		title string
		want  WorkType
	}{
		{"sonnet", "Sonnet 18", WorkTypePoem},
		{"poem_word", "A Poem of Autumn", WorkTypePoem},
		{"play_word", "The Scottish Play", WorkTypePlay},
		{"act_and_scene", "Act I, Scene 2", WorkTypePlay},
		{"act_without_scene", "A Balancing Act", WorkTypeGenericEntry},
		{"essay", "Essay on Criticism", WorkTypeEssay},
		{"letter", "Letter to a Young Poet", WorkTypeLetter},
		{"chapter", "Chapter XII", WorkTypeDelphiChapter},
		{"short_story", "A Short Ghost Story", WorkTypeShortStory},
		{"story_without_short", "The Story of My Life", WorkTypeGenericEntry},
		{"novel", "A Novel Without a Hero", WorkTypeNovel},
		{"known_poem_raven", "The Raven", WorkTypePoem},
		{"known_poem_annabel", "Annabel Lee", WorkTypePoem},
		{"known_poem_case_insensitive", "ANNABEL LEE", WorkTypePoem},
		{"unmatched", "The Gold-Bug", WorkTypeGenericEntry},
		{"empty", "", WorkTypeGenericEntry},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyWorkType(tc.title); got != tc.want {
				t.Errorf("ClassifyWorkType(%q) = %v, want %v", tc.title, got, tc.want)
			}
		})
	}
}

func TestClassifyWorkTypeRuleOrder(t *testing.T) {
	// "poem" outranks "play" in the rule table, first match wins.
	if got := ClassifyWorkType("A Poem about a Play"); got != WorkTypePoem {
		t.Errorf("ClassifyWorkType = %v, want %v", got, WorkTypePoem)
	}
}

func leaf(title, href string) epub.TocEntry {
	return epub.TocEntry{Title: title, Href: href}
}

func section(title string, children ...epub.TocEntry) epub.TocEntry {
	return epub.TocEntry{Title: title, Children: children}
}

func TestClassifyToc(t *testing.T) {
	cases := []struct {
		name string
		toc  []epub.TocEntry
		want TocType
	}{
		{"empty", nil, TocTypeUnknown},
		{
			"shakespeare_keyword",
			[]epub.TocEntry{leaf("Hamlet, Prince of Denmark", "h.xhtml"), leaf("Macbeth", "m.xhtml")},
			TocTypeShakespeare,
		},
		{
			"delphi_first_section_all_leaves",
			[]epub.TocEntry{
				section("The Novels", leaf("First", "1.xhtml"), leaf("Second", "2.xhtml")),
				section("The Poems", leaf("Third", "3.xhtml")),
			},
			TocTypeDelphiClassics,
		},
		{
			"generic_flat_list",
			[]epub.TocEntry{leaf("One", "1.xhtml"), leaf("Two", "2.xhtml"), leaf("Three", "3.xhtml")},
			TocTypeGeneric,
		},
		{
			"single_leaf_unknown",
			[]epub.TocEntry{leaf("Everything", "all.xhtml")},
			TocTypeUnknown,
		},
		{
			"single_deep_tree_unknown",
			[]epub.TocEntry{section("Root", section("Inner", leaf("Leaf", "l.xhtml")))},
			TocTypeUnknown,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyToc(tc.toc); got != tc.want {
				t.Errorf("ClassifyToc = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestClassifyTocShakespearePriority(t *testing.T) {
	// Structurally a perfect Delphi shape, but the play keyword wins.
	toc := []epub.TocEntry{
		section("The Tragedy of Hamlet", leaf("Act I", "a1.xhtml"), leaf("Act II", "a2.xhtml")),
		section("Sonnets", leaf("Sonnet 1", "s1.xhtml")),
	}
	if got := ClassifyToc(toc); got != TocTypeShakespeare {
		t.Errorf("ClassifyToc = %v, want %v", got, TocTypeShakespeare)
	}
}

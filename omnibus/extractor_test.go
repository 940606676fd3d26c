package omnibus

import (
	"fmt"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"unbind/epub"
)

type fakeContainer struct {
	toc   []epub.TocEntry
	spine []epub.SpineItem
	meta  epub.Metadata
}

func (f fakeContainer) TOC() []epub.TocEntry    { return f.toc }
func (f fakeContainer) Spine() []epub.SpineItem { return f.spine }
func (f fakeContainer) Metadata() epub.Metadata { return f.meta }

type panickyContainer struct{ fakeContainer }

func (panickyContainer) TOC() []epub.TocEntry { panic("boom") }

func testLog(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller()))
}

func TestExtractWorksDelphi(t *testing.T) {
	c := fakeContainer{
		toc: []epub.TocEntry{
			section("The Novels (1838-1845)",
				leaf("1. The Narrative", "n1.xhtml"),
				leaf("2. The Journal", "n2.xhtml"),
				leaf("", "n3.xhtml"),
			),
			section("The Poems",
				leaf("The Raven", "p1.xhtml"),
				leaf("Annabel Lee", "p2.xhtml"),
				leaf("The Bells", "p3.xhtml"),
			),
		},
		meta: epub.Metadata{Title: "Delphi Complete Works", Authors: []string{"Edgar Allan Poe"}, Language: "en"},
	}
	works := ExtractWorks(c, testLog(t))

	if len(works) != 6 {
		t.Fatalf("expected 6 works, got %d", len(works))
	}
	wantPositions := []int{1, 2, 3, 1, 2, 3}
	for i, w := range works {
		if w.Position != wantPositions[i] {
			t.Errorf("works[%d].Position = %d, want %d", i, w.Position, wantPositions[i])
		}
	}
	for i := 0; i < 3; i++ {
		if works[i].Metadata["section"] != "The Novels" {
			t.Errorf("works[%d] section = %q, want %q", i, works[i].Metadata["section"], "The Novels")
		}
	}
	for i := 3; i < 6; i++ {
		if works[i].Metadata["section"] != "The Poems" {
			t.Errorf("works[%d] section = %q, want %q", i, works[i].Metadata["section"], "The Poems")
		}
	}
	if works[0].Title != "The Narrative" {
		t.Errorf("works[0].Title = %q", works[0].Title)
	}
	if works[2].Title != "Work 3" {
		t.Errorf("untitled child title = %q, want %q", works[2].Title, "Work 3")
	}
	if works[3].Type != WorkTypePoem {
		t.Errorf("The Raven type = %v, want %v", works[3].Type, WorkTypePoem)
	}
	if works[0].Metadata["author"] != "Edgar Allan Poe" {
		t.Errorf("container author not merged: %v", works[0].Metadata)
	}
}

func TestExtractWorksShakespeare(t *testing.T) {
	c := fakeContainer{
		toc: []epub.TocEntry{
			leaf("The Tragedy of Hamlet", "hamlet.xhtml"),
			leaf("", "blank.xhtml"),
			leaf("Macbeth", "macbeth.xhtml"),
		},
		meta: epub.Metadata{Title: "Complete Plays", Authors: []string{"Wm. Shakespeare, ed. Smith"}},
	}
	works := ExtractWorks(c, testLog(t))

	if len(works) != 2 {
		t.Fatalf("expected 2 works (untitled skipped), got %d", len(works))
	}
	if works[0].Position != 1 || works[1].Position != 2 {
		t.Errorf("positions = %d, %d, want 1, 2", works[0].Position, works[1].Position)
	}
	if works[1].Title != "Macbeth" || works[1].Href != "macbeth.xhtml" {
		t.Errorf("works[1] = %+v", works[1])
	}
	for _, w := range works {
		if w.Metadata["author"] != "William Shakespeare" {
			t.Errorf("%s: author = %q, want the canonical override", w.Title, w.Metadata["author"])
		}
	}
}

func TestExtractWorksGenericPoems(t *testing.T) {
	c := fakeContainer{
		toc: []epub.TocEntry{
			leaf("I. The Raven", "raven.xhtml"),
			leaf("II. Annabel Lee", "annabel.xhtml"),
		},
		meta: epub.Metadata{Title: "Selected Poems"},
	}
	works := ExtractWorks(c, testLog(t))

	if len(works) != 2 {
		t.Fatalf("expected 2 works, got %d", len(works))
	}
	if works[0].Title != "The Raven" || works[0].Position != 1 || works[0].Type != WorkTypePoem {
		t.Errorf("works[0] = %+v", works[0])
	}
	if works[1].Title != "Annabel Lee" || works[1].Position != 2 || works[1].Type != WorkTypePoem {
		t.Errorf("works[1] = %+v", works[1])
	}
}

func TestExtractWorksSpineFallback(t *testing.T) {
	spine := []epub.SpineItem{
		{ID: "a", Href: "a.xhtml"},
		{ID: "b", Href: "b.xhtml"},
		{ID: "c", Href: "c.xhtml"},
	}

	t.Run("empty_toc", func(t *testing.T) {
		c := fakeContainer{spine: spine, meta: epub.Metadata{Language: "en"}}
		works := ExtractWorks(c, testLog(t))
		if len(works) != 3 {
			t.Fatalf("expected 3 works from spine, got %d", len(works))
		}
		for i, w := range works {
			if w.Type != WorkTypeOther {
				t.Errorf("works[%d].Type = %v, want %v", i, w.Type, WorkTypeOther)
			}
			if w.Title != fmt.Sprintf("Work %d", i+1) {
				t.Errorf("works[%d].Title = %q", i, w.Title)
			}
			if w.Metadata["language"] != "en" {
				t.Errorf("works[%d] metadata not merged", i)
			}
		}
	})

	t.Run("single_deep_tree", func(t *testing.T) {
		c := fakeContainer{
			toc:   []epub.TocEntry{section("Root", section("Inner", leaf("Leaf", "l.xhtml")))},
			spine: spine,
		}
		works := ExtractWorks(c, testLog(t))
		if len(works) != 3 {
			t.Fatalf("expected spine fallback with 3 works, got %d", len(works))
		}
	})

	t.Run("empty_spine_and_toc", func(t *testing.T) {
		works := ExtractWorks(fakeContainer{}, testLog(t))
		if len(works) != 0 {
			t.Fatalf("expected no works for empty container, got %d", len(works))
		}
	})
}

func TestExtractWorksPanicAbsorbed(t *testing.T) {
	works := ExtractWorks(panickyContainer{}, testLog(t))
	if works != nil {
		t.Fatalf("expected nil works after panic, got %v", works)
	}
}

func TestExtractWorksFromFileUnreadable(t *testing.T) {
	name := filepath.Join(t.TempDir(), "does-not-exist.epub")
	if works := ExtractWorksFromFile(name, testLog(t)); len(works) != 0 {
		t.Fatalf("expected no works for missing file, got %d", len(works))
	}
}

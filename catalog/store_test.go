package catalog

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"unbind/omnibus"
)

func testLog(t *testing.T) *zap.Logger {
	t.Helper()
	return zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller()))
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:", testLog(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleOmnibus(path string) (Omnibus, []VirtualBook) {
	mtime := time.Unix(1700000000, 0)
	om := Omnibus{
		ID:        "om-1",
		Path:      path,
		Title:     "Collected Works",
		FileMtime: mtime,
		FileSize:  4096,
		WorkCount: 2,
		TocType:   omnibus.TocTypeGeneric,
	}
	books := []VirtualBook{
		{
			ID: "vb-1", Number: 1, NumberSort: numberSort(1),
			Title: "The Raven", SortTitle: "raven",
			Href: "OEBPS/raven.xhtml", WorkType: omnibus.WorkTypePoem,
			FileMtime: mtime, FileSize: 4096,
			Metadata: map[string]string{"author": "Edgar Allan Poe"},
			URL:      path, ShortDesc: "A poem.", PositionInSection: 1,
		},
		{
			ID: "vb-2", Number: 2, NumberSort: numberSort(2),
			Title: "Annabel Lee", SortTitle: "annabel lee",
			Href: "OEBPS/annabel.xhtml", WorkType: omnibus.WorkTypePoem,
			FileMtime: mtime, FileSize: 4096,
			URL: path, PositionInSection: 2,
		},
	}
	return om, books
}

func TestStoreRoundTrip(t *testing.T) {
	s := openTestStore(t)

	om, books := sampleOmnibus("/library/poe.epub")
	if err := s.ReplaceOmnibus(&om, books); err != nil {
		t.Fatalf("ReplaceOmnibus: %v", err)
	}

	t.Run("omnibus_by_path", func(t *testing.T) {
		got, err := s.OmnibusByPath("/library/poe.epub")
		if err != nil {
			t.Fatalf("OmnibusByPath: %v", err)
		}
		if got.Title != "Collected Works" || got.WorkCount != 2 || got.TocType != omnibus.TocTypeGeneric {
			t.Errorf("omnibus = %+v", got)
		}
		if got.FileMtime.Unix() != 1700000000 {
			t.Errorf("mtime = %v", got.FileMtime)
		}
	})

	t.Run("omnibus_by_id", func(t *testing.T) {
		got, err := s.OmnibusByID(om.ID)
		if err != nil {
			t.Fatalf("OmnibusByID: %v", err)
		}
		if got.Path != "/library/poe.epub" {
			t.Errorf("path = %q", got.Path)
		}
		if _, err := s.OmnibusByID("no-such"); !errors.Is(err, ErrNotFound) {
			t.Errorf("missing id: err = %v, want ErrNotFound", err)
		}
	})

	t.Run("virtual_books_ordered", func(t *testing.T) {
		got, err := s.VirtualBooks(om.ID)
		if err != nil {
			t.Fatalf("VirtualBooks: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("books = %d, want 2", len(got))
		}
		if got[0].Title != "The Raven" || got[1].Title != "Annabel Lee" {
			t.Errorf("order = %q, %q", got[0].Title, got[1].Title)
		}
	})

	t.Run("metadata_survives", func(t *testing.T) {
		got, err := s.VirtualBookByID("vb-1")
		if err != nil {
			t.Fatalf("VirtualBookByID: %v", err)
		}
		if got.Metadata["author"] != "Edgar Allan Poe" {
			t.Errorf("metadata = %v", got.Metadata)
		}
		if got.WorkType != omnibus.WorkTypePoem {
			t.Errorf("work type = %v", got.WorkType)
		}
	})

	t.Run("missing_book_typed_error", func(t *testing.T) {
		if _, err := s.VirtualBookByID("no-such"); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("missing_omnibus_typed_error", func(t *testing.T) {
		if _, err := s.OmnibusByPath("/nowhere.epub"); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestStoreReplaceKeepsOmnibusID(t *testing.T) {
	s := openTestStore(t)

	om, books := sampleOmnibus("/library/poe.epub")
	if err := s.ReplaceOmnibus(&om, books); err != nil {
		t.Fatal(err)
	}

	again, newBooks := sampleOmnibus("/library/poe.epub")
	again.ID = "om-other"
	newBooks = newBooks[:1]
	newBooks[0].ID = "vb-3"
	if err := s.ReplaceOmnibus(&again, newBooks); err != nil {
		t.Fatal(err)
	}

	if again.ID != "om-1" {
		t.Errorf("replacement allocated a new omnibus id: %s", again.ID)
	}
	got, err := s.VirtualBooks("om-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "vb-3" {
		t.Errorf("books after replace = %+v", got)
	}
	if _, err := s.VirtualBookByID("vb-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("stale book survived replace: %v", err)
	}
}

func TestStoreDeleteCascades(t *testing.T) {
	s := openTestStore(t)

	om, books := sampleOmnibus("/library/poe.epub")
	if err := s.ReplaceOmnibus(&om, books); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteOmnibusByPath("/library/poe.epub"); err != nil {
		t.Fatal(err)
	}

	if _, err := s.OmnibusByPath("/library/poe.epub"); !errors.Is(err, ErrNotFound) {
		t.Errorf("omnibus survived delete: %v", err)
	}
	if _, err := s.VirtualBookByID("vb-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("virtual book survived cascade: %v", err)
	}

	// Unknown paths delete cleanly.
	if err := s.DeleteOmnibusByPath("/library/none.epub"); err != nil {
		t.Errorf("delete of unknown path: %v", err)
	}
}

func TestStoreNaturalOrdering(t *testing.T) {
	s := openTestStore(t)

	for i, title := range []string{"Volume 10", "Volume 2", "Volume 1"} {
		om, books := sampleOmnibus("/lib/" + title + ".epub")
		om.ID = titleID(i)
		om.Title = title
		for j := range books {
			books[j].ID = title + "-" + books[j].ID
		}
		if err := s.ReplaceOmnibus(&om, books); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.Omnibuses()
	if err != nil {
		t.Fatal(err)
	}
	var titles []string
	for _, om := range got {
		titles = append(titles, om.Title)
	}
	want := []string{"Volume 1", "Volume 2", "Volume 10"}
	for i := range want {
		if titles[i] != want[i] {
			t.Fatalf("order = %v, want %v", titles, want)
		}
	}
}

func titleID(i int) string {
	return string(rune('a' + i))
}

func TestNumberSort(t *testing.T) {
	if numberSort(7) >= numberSort(10) {
		t.Error("zero padding broken")
	}
	if numberSort(99) >= numberSort(100) {
		t.Error("zero padding broken for three digits")
	}
}

func TestURLHelpers(t *testing.T) {
	url := JoinURL("/lib/bundle.zip", "books/inner.epub")
	if url != "/lib/bundle.zip::books/inner.epub" {
		t.Fatalf("url = %q", url)
	}
	outer, inner := SplitURL(url)
	if outer != "/lib/bundle.zip" || inner != "books/inner.epub" {
		t.Errorf("split = %q, %q", outer, inner)
	}

	outer, inner = SplitURL("/lib/plain.epub")
	if outer != "/lib/plain.epub" || inner != "" {
		t.Errorf("plain split = %q, %q", outer, inner)
	}
}

package commands

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"unbind/catalog"
	"unbind/config"
	"unbind/omnibus"
	"unbind/state"
)

func setupTestEnvForOutputPath(t *testing.T, transliterate bool, template string) *state.LocalEnv {
	t.Helper()
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.Output.FileNameTransliterate = transliterate
	cfg.Output.NameTemplate = template

	return &state.LocalEnv{
		Log: logger,
		Cfg: cfg,
	}
}

func setupTestRecordsForPath(t *testing.T) (*catalog.VirtualBook, *catalog.Omnibus) {
	t.Helper()
	vb := &catalog.VirtualBook{
		ID:       "vb-1",
		Number:   3,
		Title:    "The Raven",
		WorkType: omnibus.WorkTypePoem,
		Metadata: map[string]string{"author": "Edgar Allan Poe"},
	}
	om := &catalog.Omnibus{
		ID:    "om-1",
		Title: "Collected Poe",
	}
	return vb, om
}

func TestBuildOutputPath_NoTemplate(t *testing.T) {
	vb, om := setupTestRecordsForPath(t)
	env := setupTestEnvForOutputPath(t, false, "")

	result := buildOutputPath(vb, om, "/output", env)
	expected := filepath.Join("/output", "The Raven.epub")

	if result != expected {
		t.Errorf("buildOutputPath() = %q, want %q", result, expected)
	}
}

func TestBuildOutputPath_WithTemplate(t *testing.T) {
	vb, om := setupTestRecordsForPath(t)
	env := setupTestEnvForOutputPath(t, false, `{{.Omnibus}} - {{printf "%02d" .Number}} - {{.Title}}`)

	result := buildOutputPath(vb, om, "/output", env)
	expected := filepath.Join("/output", "Collected Poe - 03 - The Raven.epub")

	if result != expected {
		t.Errorf("buildOutputPath() = %q, want %q", result, expected)
	}
}

func TestBuildOutputPath_TemplateSubdirs(t *testing.T) {
	vb, om := setupTestRecordsForPath(t)
	env := setupTestEnvForOutputPath(t, false, "{{.Author}}/{{.Omnibus}}/{{.Title}}")

	result := buildOutputPath(vb, om, "/output", env)
	expected := filepath.Join("/output", "Edgar Allan Poe", "Collected Poe", "The Raven.epub")

	if result != expected {
		t.Errorf("buildOutputPath() = %q, want %q", result, expected)
	}
}

func TestBuildOutputPath_BrokenTemplateFallsBack(t *testing.T) {
	vb, om := setupTestRecordsForPath(t)
	env := setupTestEnvForOutputPath(t, false, "{{.Title")

	result := buildOutputPath(vb, om, "/output", env)
	expected := filepath.Join("/output", "The Raven.epub")

	if result != expected {
		t.Errorf("buildOutputPath() = %q, want %q", result, expected)
	}
}

func TestBuildOutputPath_Transliterate(t *testing.T) {
	vb, om := setupTestRecordsForPath(t)
	vb.Title = "Книга"
	env := setupTestEnvForOutputPath(t, true, "")

	result := buildOutputPath(vb, om, "/output", env)
	expected := filepath.Join("/output", "kniga.epub")

	if result != expected {
		t.Errorf("buildOutputPath() = %q, want %q", result, expected)
	}
}

func TestBuildDefaultFileName(t *testing.T) {
	tests := []struct {
		name          string
		title         string
		id            string
		transliterate bool
		expected      string
	}{
		{"simple title", "The Raven", "vb-1", false, "The Raven.epub"},
		{"separator stripped", "Poems/Early", "vb-1", false, "PoemsEarly.epub"},
		{"untitled falls back to id", "", "vb-9", false, "vb-9.epub"},
		{"transliterate", "Книга", "vb-1", true, "kniga.epub"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnvForOutputPath(t, tt.transliterate, "")
			vb := &catalog.VirtualBook{ID: tt.id, Title: tt.title}

			result := buildDefaultFileName(vb, env)
			if result != tt.expected {
				t.Errorf("buildDefaultFileName() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestSplitAndCleanPath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected []string
	}{
		{"simple path", "author/book", []string{"author", "book"}},
		{"single segment", "book", []string{"book"}},
		{"with trailing slash", "author/book/", []string{"author", "book"}},
		{"three levels", "genre/author/book", []string{"genre", "author", "book"}},
		{"empty path", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := splitAndCleanPath(tt.path)
			if len(result) != len(tt.expected) {
				t.Errorf("splitAndCleanPath() length = %d, want %d", len(result), len(tt.expected))
				return
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("splitAndCleanPath()[%d] = %q, want %q", i, result[i], tt.expected[i])
				}
			}
		})
	}
}

func TestCleanPathSegment(t *testing.T) {
	tests := []struct {
		name          string
		segment       string
		transliterate bool
		expected      string
	}{
		{"simple segment", "author", false, "author"},
		{"with spaces", "My Book", false, "My Book"},
		{"transliterate cyrillic", "Автор", true, "avtor"},
		{"special chars", "book:name", false, "bookname"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnvForOutputPath(t, tt.transliterate, "")

			result := cleanPathSegment(tt.segment, env)
			if result != tt.expected {
				t.Errorf("cleanPathSegment() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestAssemblePathWithSubdirs(t *testing.T) {
	tests := []struct {
		name          string
		outDir        string
		expandedName  string
		transliterate bool
		expected      string
	}{
		{
			"simple template",
			"/output",
			"author/book",
			false,
			filepath.Join("/output", "author", "book.epub"),
		},
		{
			"single level",
			"/output",
			"book",
			false,
			filepath.Join("/output", "book.epub"),
		},
		{
			"with transliterate",
			"/output",
			"Автор/Книга",
			true,
			filepath.Join("/output", "avtor", "kniga.epub"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnvForOutputPath(t, tt.transliterate, "")

			result := assemblePathWithSubdirs(tt.outDir, tt.expandedName, env)
			if result != tt.expected {
				t.Errorf("assemblePathWithSubdirs() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestAssemblePathWithSubdirs_EmptyPath(t *testing.T) {
	env := setupTestEnvForOutputPath(t, false, "")

	result := assemblePathWithSubdirs("/output", "", env)
	expected := "/output"

	if result != expected {
		t.Errorf("assemblePathWithSubdirs() with empty path = %q, want %q", result, expected)
	}
}

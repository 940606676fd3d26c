package catalog

import (
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Splitter segments description text into sentences. A nil Splitter is
// usable and passes text through unsplit.
type Splitter struct {
	*sentences.DefaultSentenceTokenizer
}

// NewSplitter loads the English punkt model shipped with the tokenizer.
func NewSplitter(log *zap.Logger) *Splitter {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		log.Warn("Unable to load sentence tokenizer, descriptions will not be shortened", zap.Error(err))
		return nil
	}
	return &Splitter{tokenizer}
}

// Blurb renders the first n sentences of a description with markup
// stripped and whitespace collapsed. Descriptions in package documents
// frequently carry embedded HTML.
func (s *Splitter) Blurb(description string, n int) string {
	text := collapseSpace(stripMarkup(description))
	if text == "" || n <= 0 {
		return ""
	}
	if s == nil {
		return text
	}

	var b strings.Builder
	count := 0
	for _, sentence := range s.Tokenize(text) {
		t := strings.TrimSpace(sentence.Text)
		if t == "" {
			continue
		}
		if count > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(t)
		count++
		if count == n {
			break
		}
	}
	return b.String()
}

func stripMarkup(in string) string {
	if !strings.ContainsAny(in, "<&") {
		return in
	}
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(in))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}

func collapseSpace(in string) string {
	return strings.Join(strings.Fields(in), " ")
}

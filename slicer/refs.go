package slicer

import (
	"bytes"
	"path"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"golang.org/x/net/html"

	"unbind/epub"
)

// markupRefs extracts archive paths referenced by a content document:
// images, stylesheets, scripts and embedded media. The tokenizer is used
// directly so that sloppy markup, common in mass produced ebooks, does
// not abort the scan.
func markupRefs(base string, data []byte) []string {
	var refs []string
	z := html.NewTokenizer(bytes.NewReader(data))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return refs
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		name, hasAttr := z.TagName()
		if !hasAttr {
			continue
		}
		tag := string(name)
		for {
			key, val, more := z.TagAttr()
			if refAttr(tag, string(key)) {
				if resolved := resolveRef(base, string(val)); resolved != "" {
					refs = append(refs, resolved)
				}
			}
			if !more {
				break
			}
		}
	}
}

// refAttr reports whether the attribute carries a resource reference for
// the given tag. SVG image elements use href or xlink:href depending on
// the producer.
func refAttr(tag, key string) bool {
	switch tag {
	case "img", "script", "source", "audio", "video", "iframe", "embed":
		return key == "src"
	case "image":
		return key == "href" || key == "xlink:href"
	case "link":
		return key == "href"
	case "object":
		return key == "data"
	}
	return false
}

// cssRefs extracts archive paths referenced by a stylesheet, covering
// url() values in declarations and @import targets.
func cssRefs(base string, data []byte) []string {
	var refs []string
	add := func(raw string) {
		if resolved := resolveRef(base, raw); resolved != "" {
			refs = append(refs, resolved)
		}
	}

	input := parse.NewInput(bytes.NewReader(data))
	parser := css.NewParser(input, false)
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return refs
		case css.AtRuleGrammar, css.BeginAtRuleGrammar:
			if strings.EqualFold(string(data), "@import") {
				if target := tokensURL(parser.Values()); target != "" {
					add(target)
				}
			}
		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			for _, t := range parser.Values() {
				if t.TokenType == css.URLToken {
					add(urlTokenTarget(string(t.Data)))
				}
			}
		}
	}
}

// tokensURL returns the first URL carried by the token list, either as a
// quoted string or a url() function.
func tokensURL(tokens []css.Token) string {
	for _, t := range tokens {
		switch t.TokenType {
		case css.StringToken:
			return unquote(string(t.Data))
		case css.URLToken:
			return urlTokenTarget(string(t.Data))
		}
	}
	return ""
}

// urlTokenTarget strips the url( prefix and ) suffix from a URL token.
func urlTokenTarget(s string) string {
	s = strings.TrimSuffix(strings.TrimPrefix(s, "url("), ")")
	return unquote(strings.TrimSpace(s))
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// resolveRef turns an in-document reference into an archive path.
// External, data and fragment-only references yield an empty string.
func resolveRef(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "data:") {
		return ""
	}
	if strings.Contains(ref, "://") || strings.HasPrefix(ref, "//") {
		return ""
	}
	return epub.ResolveHref(base, ref)
}

func isStylesheet(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".css")
}

func isMarkup(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".xhtml", ".html", ".htm":
		return true
	}
	return false
}

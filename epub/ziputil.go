package epub

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
)

// maxEntrySize limits how many bytes a single archive entry may inflate to.
// EPUB content documents are small, so anything approaching this limit is
// either corrupted or a zip bomb.
const maxEntrySize = 256 << 20

// readEntry inflates a single archive entry honoring maxEntrySize.
func (bk *Book) readEntry(name string) ([]byte, error) {
	f, ok := bk.lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingEntry, name)
	}
	r, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("unable to open entry %s: %w", name, err)
	}
	defer r.Close()

	data, err := io.ReadAll(io.LimitReader(r, maxEntrySize+1))
	if err != nil {
		return nil, fmt.Errorf("unable to read entry %s: %w", name, err)
	}
	if len(data) > maxEntrySize {
		return nil, fmt.Errorf("%w: %s", ErrEntryTooLarge, name)
	}
	return stripBOM(data), nil
}

// stripBOM drops an UTF-8 byte order mark some producers insist on writing.
func stripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
}

// isSafePath rejects entry names which could escape the archive root when
// used to build file system paths.
func isSafePath(name string) bool {
	if strings.HasPrefix(name, "/") || strings.Contains(name, "..") {
		return false
	}
	return true
}

// ResolveHref turns an href relative to base (an archive path of the
// referencing document) into a clean archive path, dropping any fragment.
// Percent escapes are decoded, since hrefs are URLs while archive entries
// are not.
func ResolveHref(base, href string) string {
	href, _, _ = strings.Cut(href, "#")
	if href == "" {
		return ""
	}
	if u, err := url.PathUnescape(href); err == nil {
		href = u
	}
	if strings.HasPrefix(href, "/") {
		return path.Clean(href[1:])
	}
	return path.Clean(path.Join(path.Dir(base), href))
}

// SplitFragment separates an href into its archive path and fragment parts.
func SplitFragment(href string) (string, string) {
	p, frag, _ := strings.Cut(href, "#")
	return p, frag
}

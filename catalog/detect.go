package catalog

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
)

const sniffLen = 262

func sniff(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return head[:n], nil
}

// isBookFile reports whether path looks like an EPUB container. Producers
// disagree on whether the mimetype entry leads the archive, so plain zip
// content behind an .epub extension is accepted and left to the reader to
// judge.
func isBookFile(path string) (bool, error) {
	if !strings.EqualFold(filepath.Ext(path), ".epub") {
		return false, nil
	}
	head, err := sniff(path)
	if err != nil {
		return false, err
	}
	return filetype.IsType(head, matchers.TypeEpub) || filetype.IsType(head, matchers.TypeZip), nil
}

// isArchiveFile reports whether path is a zip bundle which may hold EPUB
// containers inside.
func isArchiveFile(path string) (bool, error) {
	if !strings.EqualFold(filepath.Ext(path), ".zip") {
		return false, nil
	}
	head, err := sniff(path)
	if err != nil {
		return false, err
	}
	return filetype.IsType(head, matchers.TypeZip), nil
}

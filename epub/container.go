package epub

import (
	"encoding/xml"
	"fmt"
	"strings"
)

const (
	containerPath  = "META-INF/container.xml"
	encryptionPath = "META-INF/encryption.xml"
	mimetypeValue  = "application/epub+zip"
)

type ocfContainer struct {
	XMLName   xml.Name `xml:"container"`
	RootFiles []struct {
		FullPath  string `xml:"full-path,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"rootfiles>rootfile"`
}

// findRootFile locates the package document path, first via
// META-INF/container.xml and, when that is absent or unusable, by scanning
// the archive for the first .opf entry. Plenty of real containers get the
// OCF part wrong while the package document itself is fine.
func (bk *Book) findRootFile() (string, error) {
	data, err := bk.readEntry(containerPath)
	if err == nil {
		var c ocfContainer
		if err := xml.Unmarshal(data, &c); err != nil {
			return "", fmt.Errorf("unable to parse %s: %w", containerPath, err)
		}
		for _, rf := range c.RootFiles {
			if rf.FullPath == "" {
				continue
			}
			if rf.MediaType != "" && rf.MediaType != "application/oebps-package+xml" {
				continue
			}
			if _, ok := bk.lookup(rf.FullPath); ok {
				return rf.FullPath, nil
			}
		}
	}
	for _, f := range bk.zr.File {
		if strings.HasSuffix(strings.ToLower(f.Name), ".opf") {
			return f.Name, nil
		}
	}
	return "", ErrNoRootFile
}

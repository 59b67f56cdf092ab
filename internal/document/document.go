package document

import (
	"path/filepath"
	"strings"
)

// Page is one unit of extracted source text.
type Page struct {
	Number int    // 1-based physical page, or 1 for non-paginated input
	Text   string // Raw extracted text (may be empty)
}

// Chunk is a bounded substring of a page, ready for persistence.
type Chunk struct {
	PageNumber int    // Page the text came from
	Text       string // Chunk text, verbatim from the page
	Index      int    // Emission order across the whole document, starting at 0
}

// FileType is the declared type of an uploaded document.
type FileType string

const (
	FileTypePDF      FileType = "pdf"
	FileTypeDOCX     FileType = "docx"
	FileTypeText     FileType = "txt"
	FileTypeMarkdown FileType = "md"
)

// ParseFileType normalizes a declared type. It accepts a bare type ("pdf"),
// an extension (".PDF") or a filename ("report.pdf"). Anything unrecognized
// is returned as-is (lowercased) and is handled as flat text.
func ParseFileType(s string) FileType {
	s = strings.ToLower(strings.TrimSpace(s))
	if ext := filepath.Ext(s); ext != "" {
		s = ext
	}
	s = strings.TrimPrefix(s, ".")
	switch s {
	case "markdown":
		return FileTypeMarkdown
	case "text":
		return FileTypeText
	}
	return FileType(s)
}

func (t FileType) String() string {
	return string(t)
}

package parser

import (
	"errors"

	"github.com/dgallion1/writingstuff/internal/document"
)

// ErrMalformedDocument means a structured format could not be parsed at all.
var ErrMalformedDocument = errors.New("malformed document")

// Parser converts raw document bytes into an ordered sequence of pages.
type Parser interface {
	Extract(data []byte) ([]document.Page, error)
}

// ForType returns the parser for a declared file type. Types without a
// dedicated parser are decoded as flat text.
func ForType(ft document.FileType) Parser {
	switch ft {
	case document.FileTypePDF:
		return &PDFParser{}
	case document.FileTypeDOCX:
		return &DOCXParser{}
	default:
		return &TextParser{}
	}
}

// Extract runs the parser for ft over data.
func Extract(data []byte, ft document.FileType) ([]document.Page, error) {
	return ForType(ft).Extract(data)
}

package parser

import (
	"strings"

	"github.com/dgallion1/writingstuff/internal/document"
	"golang.org/x/text/encoding/unicode"
)

// TextParser handles flat text. The whole input becomes page 1.
type TextParser struct{}

func (p *TextParser) Extract(data []byte) ([]document.Page, error) {
	return []document.Page{{Number: 1, Text: decodeText(data)}}, nil
}

// decodeText decodes UTF-8, dropping a leading BOM. Invalid sequences become
// U+FFFD instead of failing.
func decodeText(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	out, err := unicode.UTF8BOM.NewDecoder().Bytes(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "\uFFFD")
	}
	return string(out)
}

package parser

import (
	"bytes"
	"fmt"

	"github.com/dgallion1/writingstuff/internal/document"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser handles PDF files, one page per physical page.
type PDFParser struct{}

func (p *PDFParser) Extract(data []byte) (pages []document.Page, err error) {
	// ledongthuc/pdf panics on some corrupt inputs instead of returning errors.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("%w: pdf: %v", ErrMalformedDocument, r)
		}
	}()

	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: pdf: %v", ErrMalformedDocument, err)
	}

	numPages := reader.NumPage()
	pages = make([]document.Page, 0, numPages)
	for i := 1; i <= numPages; i++ {
		pages = append(pages, document.Page{
			Number: i,
			Text:   pageText(reader.Page(i)),
		})
	}
	return pages, nil
}

// pageText returns the plain text of a page, or "" when the page has no
// content or its text cannot be decoded. Pages are never dropped so that
// numbering stays aligned with the physical document.
func pageText(page pdflib.Page) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()

	if page.V.IsNull() || page.V.Key("Contents").IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}

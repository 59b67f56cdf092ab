package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dgallion1/writingstuff/internal/document"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Paragraph text is joined with newlines
// into a single page; Word has no stable notion of physical pages.
type DOCXParser struct{}

func (p *DOCXParser) Extract(data []byte) (pages []document.Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("%w: docx: %v", ErrMalformedDocument, r)
		}
	}()

	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: docx: %v", ErrMalformedDocument, err)
	}

	var paragraphs []string
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		if text := docxParagraphText(para); text != "" {
			paragraphs = append(paragraphs, text)
		}
	}

	return []document.Page{{Number: 1, Text: strings.Join(paragraphs, "\n")}}, nil
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

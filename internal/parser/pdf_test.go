package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/dgallion1/writingstuff/internal/document"
	"github.com/dgallion1/writingstuff/internal/testutil"
)

func TestPDFParser_OnePagePerPhysicalPage(t *testing.T) {
	data := testutil.PDF("Hello page one.", "", "Hello page three.")
	pages, err := (&PDFParser{}).Extract(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	for i, p := range pages {
		if p.Number != i+1 {
			t.Errorf("page %d: expected number %d, got %d", i, i+1, p.Number)
		}
	}
	if !strings.Contains(pages[0].Text, "Hello page one.") {
		t.Errorf("expected page 1 text, got %q", pages[0].Text)
	}
	if strings.TrimSpace(pages[1].Text) != "" {
		t.Errorf("expected empty page 2, got %q", pages[1].Text)
	}
	if !strings.Contains(pages[2].Text, "Hello page three.") {
		t.Errorf("expected page 3 text, got %q", pages[2].Text)
	}
}

func TestPDFParser_Corrupt(t *testing.T) {
	inputs := [][]byte{
		[]byte("this is not a pdf"),
		nil,
		[]byte("%PDF-1.4\ngarbage without a trailer"),
		testutil.PDF("ok")[:40],
	}
	for i, data := range inputs {
		pages, err := (&PDFParser{}).Extract(data)
		if !errors.Is(err, ErrMalformedDocument) {
			t.Errorf("input %d: expected ErrMalformedDocument, got %v", i, err)
		}
		if pages != nil {
			t.Errorf("input %d: expected no pages, got %d", i, len(pages))
		}
	}
}

func TestExtract_PDFByDeclaredType(t *testing.T) {
	pages, err := Extract(testutil.PDF("Alpha.", "Beta."), document.FileTypePDF)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
}

func TestDOCXParser_Paragraphs(t *testing.T) {
	data := testutil.DOCX("First paragraph.", "Second paragraph.")
	pages, err := (&DOCXParser{}).Extract(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 1 || pages[0].Number != 1 {
		t.Fatalf("expected a single page 1, got %+v", pages)
	}
	if !strings.Contains(pages[0].Text, "First paragraph.\nSecond paragraph.") {
		t.Errorf("expected paragraphs joined by newline, got %q", pages[0].Text)
	}
}

func TestDOCXParser_Corrupt(t *testing.T) {
	_, err := (&DOCXParser{}).Extract([]byte("PK not really a zip"))
	if !errors.Is(err, ErrMalformedDocument) {
		t.Errorf("expected ErrMalformedDocument, got %v", err)
	}
}

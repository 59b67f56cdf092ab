package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/writingstuff/internal/document"
	"github.com/dgallion1/writingstuff/internal/parser"
	"github.com/dgallion1/writingstuff/internal/testutil"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestChunkCmd_JSON(t *testing.T) {
	path := writeFile(t, "notes.txt", []byte("0123456789abcdefghij"))
	out, err := runRoot(t, "chunk", path, "--chunk-size", "10", "--overlap", "0", "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var chunks []document.Chunk
	if err := json.Unmarshal([]byte(out), &chunks); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(chunks) != 2 || chunks[0].Text != "0123456789" || chunks[1].Text != "abcdefghij" {
		t.Errorf("unexpected chunks %+v", chunks)
	}
}

func TestChunkCmd_TypeOverride(t *testing.T) {
	path := writeFile(t, "scan.bin", testutil.PDF("Hello from a PDF page."))
	out, err := runRoot(t, "chunk", path, "--type", "pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "page 1") || !strings.Contains(out, "Hello") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestChunkCmd_MalformedFails(t *testing.T) {
	path := writeFile(t, "broken.pdf", []byte("nope"))
	_, err := runRoot(t, "chunk", path)
	if !errors.Is(err, parser.ErrMalformedDocument) {
		t.Fatalf("expected ErrMalformedDocument, got %v", err)
	}
}

func TestChunkCmd_InvalidParams(t *testing.T) {
	path := writeFile(t, "a.txt", []byte("text"))
	if _, err := runRoot(t, "chunk", path, "--chunk-size", "10", "--overlap", "10"); err == nil {
		t.Fatal("expected error for overlap >= chunk size")
	}
}

func TestIngestCmd_SQLite(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATABASE_URL", "sqlite:"+filepath.Join(dir, "test.db"))
	t.Setenv("UPLOAD_DIR", filepath.Join(dir, "uploads"))

	good := writeFile(t, "good.txt", []byte("some words to store"))
	bad := writeFile(t, "bad.pdf", []byte("nope"))

	out, err := runRoot(t, "ingest", good, bad, "--user", "tester")
	if err == nil {
		t.Fatal("expected error for the malformed file")
	}
	if !strings.Contains(out, "good.txt: document") || !strings.Contains(out, ", 1 chunks") {
		t.Errorf("missing success line:\n%s", out)
	}
	if !strings.Contains(out, "bad.pdf: document") || !strings.Contains(out, "stored without chunks") {
		t.Errorf("missing failure line:\n%s", out)
	}
}

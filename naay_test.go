package naay

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/naayfmt/naay/plain"
)

func TestLoadsAndDumpsRoundTrip(t *testing.T) {
	text := "_naay_version: \"1.0\"\nserver:\n  host: example.com\n  port: \"8080\"\n"
	tree, err := Loads(text)
	if err != nil {
		t.Fatalf("Loads error: %v", err)
	}

	out, err := Dumps(tree)
	if err != nil {
		t.Fatalf("Dumps error: %v", err)
	}
	// Round-trip reproduces the same logical content, though the
	// dumper re-quotes only where the bare-scalar rule requires it.
	want := "_naay_version: 1.0\nserver:\n  host: example.com\n  port: 8080\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestLoadsRejectsMissingVersion(t *testing.T) {
	_, err := Loads("a: \"1\"\n")
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoadFileAndDumpFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.naay")
	text := "_naay_version: \"1.0\"\na: \"1\"\n"
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	tree, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}

	outPath := filepath.Join(dir, "out.naay")
	if err := DumpFile(outPath, tree); err != nil {
		t.Fatalf("DumpFile error: %v", err)
	}

	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want := "_naay_version: 1.0\na: 1\n"
	if string(got) != want {
		t.Errorf("got %q, want %q", string(got), want)
	}
}

func TestDecoderEncoder(t *testing.T) {
	text := "_naay_version: \"1.0\"\na: \"1\"\n"
	dec := NewDecoder(bytes.NewReader([]byte(text)))
	tree, err := dec.Decode()
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	if err := enc.Encode(tree); err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	want := "_naay_version: 1.0\na: 1\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestLoadsToPlain(t *testing.T) {
	text := "_naay_version: \"1.0\"\nname: alice\ntags:\n  - a\n  - b\n"
	tree, err := Loads(text)
	if err != nil {
		t.Fatalf("Loads error: %v", err)
	}
	m, ok := plain.FromNode(tree).(*plain.Map)
	if !ok {
		t.Fatalf("expected *plain.Map")
	}
	if v, _ := m.Get("name"); v != "alice" {
		t.Errorf("name = %v", v)
	}
}

func TestToPlain(t *testing.T) {
	text := "_naay_version: \"1.0\"\nname: alice\n"
	v, err := ToPlain(text)
	if err != nil {
		t.Fatalf("ToPlain error: %v", err)
	}
	m, ok := v.(*plain.Map)
	if !ok {
		t.Fatalf("expected *plain.Map, got %T", v)
	}
	if got, _ := m.Get("name"); got != "alice" {
		t.Errorf("name = %v", got)
	}
}

package dumper

import (
	"testing"

	"github.com/naayfmt/naay/internal/naayerr"
	"github.com/naayfmt/naay/node"
)

const (
	preambleKey     = "_naay_version"
	requiredVersion = "1.0"
)

func preamble() node.Pair {
	return node.Pair{Key: preambleKey, Value: node.Str(requiredVersion)}
}

func TestDumpMinimalDocument(t *testing.T) {
	root := node.Map()
	root.Value.Map = []node.Pair{preamble()}

	got, err := Dump(root, preambleKey, requiredVersion)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "_naay_version: 1.0\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDumpNestedMappingAndScalars(t *testing.T) {
	server := node.Map()
	server.Value.MapSet("host", node.Str("example.com"))
	server.Value.MapSet("port", node.Str("8080"))

	root := node.Map()
	root.Value.Map = []node.Pair{preamble()}
	root.Value.MapSet("server", server)

	got, err := Dump(root, preambleKey, requiredVersion)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "_naay_version: 1.0\nserver:\n  host: example.com\n  port: 8080\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDumpEmptyCollections(t *testing.T) {
	root := node.Map()
	root.Value.Map = []node.Pair{preamble()}
	root.Value.MapSet("items", node.Seq())
	root.Value.MapSet("meta", node.Map())

	got, err := Dump(root, preambleKey, requiredVersion)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "_naay_version: 1.0\nitems: []\nmeta: {}\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDumpBlockLiteralClip(t *testing.T) {
	banner := node.Str("line one\nline two\n")
	banner.IsBlockLiteral = true
	banner.Chomp = node.ChompClip

	root := node.Map()
	root.Value.Map = []node.Pair{preamble()}
	root.Value.MapSet("banner", banner)

	got, err := Dump(root, preambleKey, requiredVersion)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "_naay_version: 1.0\nbanner: |\n  line one\n  line two\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDumpCommentsAndAnchorAlias(t *testing.T) {
	defaults := node.Map()
	defaults.AnchorName = "d"
	defaults.Value.MapSet("retries", node.Str("3"))
	defaults.LeadingComments = []string{"# shared settings"}

	alias := &node.Node{Value: node.Value{Kind: node.KindMap, Map: []node.Pair{{Key: "retries", Value: node.Str("3")}}}, AliasOf: "d"}

	root := node.Map()
	root.Value.Map = []node.Pair{preamble()}
	root.Value.MapSet("defaults", defaults)
	root.Value.MapSet("service", alias)

	got, err := Dump(root, preambleKey, requiredVersion)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "_naay_version: 1.0\n# shared settings\ndefaults: &d\n  retries: 3\nservice: *d\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDumpSequenceBlock(t *testing.T) {
	root := node.Map()
	root.Value.Map = []node.Pair{preamble()}
	root.Value.MapSet("names", node.Seq(node.Str("alice"), node.Str("bob")))

	got, err := Dump(root, preambleKey, requiredVersion)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "_naay_version: 1.0\nnames:\n  - alice\n  - bob\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDumpKeyQuoting(t *testing.T) {
	root := node.Map()
	root.Value.Map = []node.Pair{preamble()}
	root.Value.MapSet("has space", node.Str("x"))

	got, err := Dump(root, preambleKey, requiredVersion)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "_naay_version: 1.0\n\"has space\": x\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDumpVersionMissing(t *testing.T) {
	root := node.Map()
	root.Value.MapSet("a", node.Str("1"))

	_, err := Dump(root, preambleKey, requiredVersion)
	if err == nil {
		t.Fatalf("expected error")
	}
	e, ok := err.(*naayerr.Error)
	if !ok || e.Kind != naayerr.KindVersionMissing {
		t.Fatalf("expected VersionMissing, got %v", err)
	}
}

func TestDumpVersionMismatch(t *testing.T) {
	root := node.Map()
	root.Value.Map = []node.Pair{{Key: preambleKey, Value: node.Str("9.9")}}

	_, err := Dump(root, preambleKey, requiredVersion)
	if err == nil {
		t.Fatalf("expected error")
	}
	e, ok := err.(*naayerr.Error)
	if !ok || e.Kind != naayerr.KindVersionMismatch {
		t.Fatalf("expected VersionMismatch, got %v", err)
	}
}

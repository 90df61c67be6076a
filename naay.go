// Package naay loads and dumps the naay configuration subset: a
// strict, indentation-based, comment-preserving text format with
// anchors, aliases, and a mandatory version preamble (spec §1-§2).
//
// Loads and Dumps are the two halves of a round trip:
//
//	tree, err := naay.Loads(text)
//	out, err := naay.Dumps(tree)
//
// The returned tree (*node.Node) carries comments and anchor/alias
// metadata; callers that only want the data should convert it with
// plain.FromNode.
package naay

import (
	"io"
	"os"

	"github.com/naayfmt/naay/dumper"
	"github.com/naayfmt/naay/internal/parser"
	"github.com/naayfmt/naay/node"
	"github.com/naayfmt/naay/plain"
)

const (
	// PreambleKey is the reserved first key every document's root
	// mapping must carry (spec §4.5).
	PreambleKey = "_naay_version"

	// RequiredVersion is the exact string the preamble value must
	// match (spec §4.5).
	RequiredVersion = "1.0"
)

// Loads parses text into a comment-annotated tree, enforcing every
// structural rule and the version gate (spec §4.1-§4.5).
func Loads(text string) (*node.Node, error) {
	return parser.Parse(text, PreambleKey, RequiredVersion)
}

// Dumps serializes tree back to text deterministically (spec §4.6).
func Dumps(tree *node.Node) (string, error) {
	return dumper.Dump(tree, PreambleKey, RequiredVersion)
}

// ToPlain parses text and strips it down to the metadata-free plain
// projection (spec §6): a string, []interface{}, or *plain.Map.
func ToPlain(text string) (interface{}, error) {
	tree, err := Loads(text)
	if err != nil {
		return nil, err
	}
	return plain.FromNode(tree), nil
}

// LoadFile reads and parses the file at path.
func LoadFile(path string) (*node.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Loads(string(data))
}

// DumpFile serializes tree and writes it to the file at path.
func DumpFile(path string, tree *node.Node) error {
	out, err := Dumps(tree)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(out), 0o644)
}

// Decoder reads one document from an underlying reader. It mirrors
// encoding/json's Decoder shape so callers can slot it into existing
// streaming pipelines, even though the subset has no multi-document
// framing (spec §6).
type Decoder struct {
	r io.Reader
}

// NewDecoder returns a Decoder that reads from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// Decode reads all of the underlying reader and parses it as a single
// document.
func (d *Decoder) Decode() (*node.Node, error) {
	data, err := io.ReadAll(d.r)
	if err != nil {
		return nil, err
	}
	return Loads(string(data))
}

// Encoder writes one document to an underlying writer.
type Encoder struct {
	w io.Writer
}

// NewEncoder returns an Encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode serializes tree and writes it to the underlying writer.
func (e *Encoder) Encode(tree *node.Node) error {
	out, err := Dumps(tree)
	if err != nil {
		return err
	}
	_, err = io.WriteString(e.w, out)
	return err
}

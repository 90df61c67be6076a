// Package dumper serializes a node.Node tree back to the subset's
// text form (spec §4.6): deterministic, order-preserving, re-emitting
// comments and anchors/aliases from metadata, and using the explicit
// inline-empty forms for empty collections.
package dumper

import (
	"strings"

	"github.com/naayfmt/naay/internal/naayerr"
	"github.com/naayfmt/naay/internal/scalar"
	"github.com/naayfmt/naay/node"
)

const indentWidth = 2

// Dump serializes root to text, enforcing the same version gate the
// loader enforces (spec §4.6: "the dumper emits VersionMissing /
// VersionMismatch" when the caller's tree lacks a valid preamble).
func Dump(root *node.Node, preambleKey, requiredVersion string) (string, error) {
	if err := checkVersion(root, preambleKey, requiredVersion); err != nil {
		return "", err
	}
	d := &dumper{}
	d.writeMappingBlock(root, 0)
	for _, c := range root.TrailingComments {
		d.sb.WriteString(c)
		d.sb.WriteString("\n")
	}
	return d.sb.String(), nil
}

func checkVersion(root *node.Node, preambleKey, requiredVersion string) error {
	if root == nil || root.Value.Kind != node.KindMap || len(root.Value.Map) == 0 {
		return naayerr.New(naayerr.KindVersionMissing, naayerr.Position{}, "root value is not a mapping with a preamble entry")
	}
	first := root.Value.Map[0]
	if first.Key != preambleKey {
		return naayerr.New(naayerr.KindVersionMissing, naayerr.Position{}, "first root key is not "+preambleKey)
	}
	if first.Value.Value.Kind != node.KindStr || first.Value.Value.Str != requiredVersion {
		return naayerr.New(naayerr.KindVersionMismatch, naayerr.Position{}, "preamble value does not match "+requiredVersion)
	}
	return nil
}

type dumper struct {
	sb strings.Builder
}

func (d *dumper) writeIndent(n int) {
	d.sb.WriteString(strings.Repeat(" ", n))
}

func (d *dumper) writeLeadingComments(comments []string, indent int) {
	for _, c := range comments {
		d.writeIndent(indent)
		d.sb.WriteString(c)
		d.sb.WriteString("\n")
	}
}

func (d *dumper) writeTrailingComment(n *node.Node) {
	if n.TrailingComment != "" {
		d.sb.WriteString(" ")
		d.sb.WriteString(n.TrailingComment)
	}
}

// writeMappingBlock writes every pair of m (Kind must be KindMap) as
// block-form mapping entries at indent.
func (d *dumper) writeMappingBlock(m *node.Node, indent int) {
	for _, pair := range m.Value.Map {
		d.writeLeadingComments(pair.Value.LeadingComments, indent)
		d.writeIndent(indent)
		d.sb.WriteString(encodeKey(pair.Key))
		d.sb.WriteString(":")
		d.writeValueAfterIntroducer(pair.Value, indent)
	}
}

// writeSequenceBlock writes every item of s (Kind must be KindSeq) as
// block-form sequence items at indent.
func (d *dumper) writeSequenceBlock(s *node.Node, indent int) {
	for _, item := range s.Value.Seq {
		d.writeLeadingComments(item.LeadingComments, indent)
		d.writeIndent(indent)
		d.sb.WriteString("-")
		d.writeValueAfterIntroducer(item, indent)
	}
}

// writeValueAfterIntroducer is called once the cursor sits right
// after a "key:" or "-" introducer (no trailing space written yet). It
// decides whether the value continues inline or opens a new indented
// block, and emits the anchor prefix and trailing comment as needed.
func (d *dumper) writeValueAfterIntroducer(n *node.Node, indent int) {
	anchor := ""
	if n.AnchorName != "" {
		anchor = "&" + n.AnchorName
	}

	switch {
	case n.AliasOf != "":
		d.sb.WriteString(" ")
		d.sb.WriteString("*" + n.AliasOf)
		d.writeTrailingComment(n)
		d.sb.WriteString("\n")

	case n.Value.Kind == node.KindStr:
		if strings.Contains(n.Value.Str, "\n") || n.IsBlockLiteral {
			d.sb.WriteString(" ")
			if anchor != "" {
				d.sb.WriteString(anchor + " ")
			}
			d.sb.WriteString(pipeIndicator(n.Chomp))
			d.writeTrailingComment(n)
			d.sb.WriteString("\n")
			d.writePipeBody(n.Value.Str, indent+indentWidth)
		} else {
			d.sb.WriteString(" ")
			if anchor != "" {
				d.sb.WriteString(anchor + " ")
			}
			d.sb.WriteString(encodeScalar(n.Value.Str))
			d.writeTrailingComment(n)
			d.sb.WriteString("\n")
		}

	case n.Value.Kind == node.KindSeq:
		if len(n.Value.Seq) == 0 {
			d.sb.WriteString(" ")
			if anchor != "" {
				d.sb.WriteString(anchor + " ")
			}
			d.sb.WriteString("[]")
			d.writeTrailingComment(n)
			d.sb.WriteString("\n")
			return
		}
		if anchor != "" {
			d.sb.WriteString(" ")
			d.sb.WriteString(anchor)
		}
		d.writeTrailingComment(n)
		d.sb.WriteString("\n")
		d.writeSequenceBlock(n, indent+indentWidth)

	case n.Value.Kind == node.KindMap:
		if len(n.Value.Map) == 0 {
			d.sb.WriteString(" ")
			if anchor != "" {
				d.sb.WriteString(anchor + " ")
			}
			d.sb.WriteString("{}")
			d.writeTrailingComment(n)
			d.sb.WriteString("\n")
			return
		}
		if anchor != "" {
			d.sb.WriteString(" ")
			d.sb.WriteString(anchor)
		}
		d.writeTrailingComment(n)
		d.sb.WriteString("\n")
		d.writeMappingBlock(n, indent+indentWidth)
	}
}

func pipeIndicator(c node.Chomping) string {
	switch c {
	case node.ChompStrip:
		return "|-"
	case node.ChompKeep:
		return "|+"
	default:
		return "|"
	}
}

func (d *dumper) writePipeBody(value string, indent int) {
	for _, line := range splitBodyLines(value) {
		if line == "" {
			d.sb.WriteString("\n")
			continue
		}
		d.writeIndent(indent)
		d.sb.WriteString(line)
		d.sb.WriteString("\n")
	}
}

// splitBodyLines recovers the content lines from a decoded block
// literal value, dropping the single artifact empty element that
// strings.Split leaves after a trailing "\n" (spec §4.2 chomping).
func splitBodyLines(raw string) []string {
	if raw == "" {
		return nil
	}
	endsNL := strings.HasSuffix(raw, "\n")
	lines := strings.Split(raw, "\n")
	if endsNL {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// encodeKey renders a mapping key, quoting it if it contains
// whitespace or any of ": # ?" (spec §4.3), or fails the general
// bare-scalar rule.
func encodeKey(k string) string {
	if k == "" || strings.ContainsAny(k, " \t:#?") || !scalar.IsBareSafe(k) {
		return scalar.EncodeDoubleQuoted(k)
	}
	return k
}

// encodeScalar renders a single-line (non-newline) scalar value, bare
// when safe, double-quoted otherwise (spec §4.6).
func encodeScalar(s string) string {
	if scalar.IsBareSafe(s) {
		return s
	}
	return scalar.EncodeDoubleQuoted(s)
}

// Package naayerr carries the stable error kinds the loader and dumper
// report, along with the line/column position where each was detected.
package naayerr

import "fmt"

// Kind identifies a fatal condition from the loader or dumper. These
// identifiers are stable across releases; callers may switch on them.
type Kind string

const (
	KindIndentTabs          Kind = "IndentTabs"
	KindIndentOdd           Kind = "IndentOdd"
	KindIndentMix           Kind = "IndentMix"
	KindUnexpectedChar      Kind = "UnexpectedChar"
	KindUnterminatedQuote   Kind = "UnterminatedQuote"
	KindBadEscape           Kind = "BadEscape"
	KindFlowMappingMulti    Kind = "FlowMappingMulti"
	KindFlowUnsupported     Kind = "FlowUnsupported"
	KindFoldedUnsupported   Kind = "FoldedUnsupported"
	KindDuplicateKey        Kind = "DuplicateKey"
	KindAnchorOnScalar      Kind = "AnchorOnScalar"
	KindAliasUnresolved     Kind = "AliasUnresolved"
	KindAliasForward        Kind = "AliasForward"
	KindMergeTargetNotMap   Kind = "MergeTargetNotMap"
	KindVersionMissing      Kind = "VersionMissing"
	KindVersionMismatch     Kind = "VersionMismatch"
	KindBlockLiteralIndent  Kind = "BlockLiteralIndent"
	KindNotUTF8             Kind = "NotUtf8"
)

// Position is a 1-based line/column location in the source text.
type Position struct {
	Line   int
	Column int
}

// Error is the concrete error type returned by every loader and dumper
// operation. It is never wrapped or aggregated: the first fatal
// condition is reported and parsing stops.
type Error struct {
	Kind     Kind
	Position Position
	Message  string
}

func New(kind Kind, pos Position, message string) *Error {
	return &Error{Kind: kind, Position: pos, Message: message}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at line %d, column %d: %s", e.Kind, e.Position.Line, e.Position.Column, e.Message)
}

// Is allows errors.Is(err, naayerr.New(kind, Position{}, "")) style
// matching on Kind alone, ignoring position and message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Package node defines the comment-annotated tree model shared by the
// parser and the dumper (spec §3). A Value is a tagged variant with
// exactly three shapes: string, ordered sequence, or insertion-ordered
// mapping. A Node wraps a Value with the metadata needed for a
// faithful round-trip: leading/trailing comments and anchor/alias
// identity.
package node

// Kind identifies which shape a Value holds.
type Kind int

const (
	KindStr Kind = iota
	KindSeq
	KindMap
)

// Pair is one entry of a Map value, keeping insertion order explicit
// rather than relying on Go map iteration order.
type Pair struct {
	Key   string
	Value *Node
}

// Value is the tagged variant described in spec §3. Exactly one of
// the three fields is meaningful, selected by Kind.
type Value struct {
	Kind Kind
	Str  string
	Seq  []*Node
	Map  []Pair
}

// MapGet returns the value for key and whether it was present.
func (v *Value) MapGet(key string) (*Node, bool) {
	for _, p := range v.Map {
		if p.Key == key {
			return p.Value, true
		}
	}
	return nil, false
}

// MapSet inserts or replaces the entry for key, preserving the
// position of an existing key and appending new keys at the end.
func (v *Value) MapSet(key string, n *Node) {
	for i, p := range v.Map {
		if p.Key == key {
			v.Map[i].Value = n
			return
		}
	}
	v.Map = append(v.Map, Pair{Key: key, Value: n})
}

// MapDelete removes key if present.
func (v *Value) MapDelete(key string) {
	for i, p := range v.Map {
		if p.Key == key {
			v.Map = append(v.Map[:i], v.Map[i+1:]...)
			return
		}
	}
}

// Chomping is the trailing-newline policy of a block literal scalar.
type Chomping int

const (
	ChompClip Chomping = iota
	ChompStrip
	ChompKeep
)

// Node wraps a Value with optional round-trip metadata (spec §3).
type Node struct {
	Value Value

	// LeadingComments are full-line comments (including the leading
	// "#") that appeared immediately before this node at the node's
	// own indentation.
	LeadingComments []string

	// TrailingComment is an inline comment on the same logical line
	// as this node's introducing entry, if any.
	TrailingComment string

	// AnchorName is set when the node was introduced with "&name".
	AnchorName string

	// AliasOf is set when this node was written as "*name". Value
	// holds the resolved snapshot for consumers; the dumper re-emits
	// an alias reference instead of the resolved subtree.
	AliasOf string

	// IsBlockLiteral and Chomp apply only to KindStr nodes that were
	// parsed from (or should dump as) a pipe block literal.
	IsBlockLiteral bool
	Chomp          Chomping

	// TrailingComments holds comments attached to the synthetic
	// trailing slot on the root (spec §4.3: "comments at end-of-file
	// after everything attach to a synthetic trailing slot on the
	// root").
	TrailingComments []string
}

// Str builds a plain string node.
func Str(s string) *Node {
	return &Node{Value: Value{Kind: KindStr, Str: s}}
}

// Seq builds a plain sequence node.
func Seq(items ...*Node) *Node {
	return &Node{Value: Value{Kind: KindSeq, Seq: items}}
}

// Map builds a plain, empty mapping node ready for MapSet.
func Map() *Node {
	return &Node{Value: Value{Kind: KindMap}}
}

// IsEmptyCollection reports whether n is an empty Seq or empty Map,
// the two shapes the dumper writes in the inline "[]"/"{}" forms
// (spec §4.6).
func (n *Node) IsEmptyCollection() bool {
	if n == nil {
		return false
	}
	switch n.Value.Kind {
	case KindSeq:
		return len(n.Value.Seq) == 0
	case KindMap:
		return len(n.Value.Map) == 0
	default:
		return false
	}
}

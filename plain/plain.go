// Package plain provides the metadata-free projection of a node.Node
// tree (spec §6, §9): a view built only from the three value shapes,
// with every comment, anchor, and alias identity stripped away. It
// exists for callers that only care about the data, not the
// round-trip metadata.
package plain

import "github.com/naayfmt/naay/node"

// Map is an insertion-ordered string-keyed map, since the subset's
// mapping order is part of its value (spec §3) and a plain Go map
// would discard it.
type Map struct {
	keys []string
	vals map[string]interface{}
}

// NewMap returns an empty ordered map.
func NewMap() *Map {
	return &Map{vals: make(map[string]interface{})}
}

// Set inserts or replaces the entry for key, preserving the position
// of an existing key.
func (m *Map) Set(key string, v interface{}) {
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = v
}

// Get returns the value for key and whether it was present.
func (m *Map) Get(key string) (interface{}, bool) {
	v, ok := m.vals[key]
	return v, ok
}

// Keys returns the map's keys in insertion order.
func (m *Map) Keys() []string {
	return m.keys
}

// Len returns the number of entries.
func (m *Map) Len() int {
	return len(m.keys)
}

// FromNode converts a tree into its plain projection: a string, a
// []interface{}, or a *Map, recursively. Comments, anchor names, and
// alias identity are discarded; an alias node contributes its
// resolved value like any other node (spec §9).
func FromNode(n *node.Node) interface{} {
	switch n.Value.Kind {
	case node.KindStr:
		return n.Value.Str
	case node.KindSeq:
		out := make([]interface{}, len(n.Value.Seq))
		for i, item := range n.Value.Seq {
			out[i] = FromNode(item)
		}
		return out
	default:
		out := NewMap()
		for _, pair := range n.Value.Map {
			out.Set(pair.Key, FromNode(pair.Value))
		}
		return out
	}
}

// ToNode builds a bare tree (no comments, no anchors) from a plain
// value, for callers that construct data with the plain view and then
// want to dump it. v must be a string, a []interface{}, a *Map, or nil
// (treated as an empty string).
func ToNode(v interface{}) *node.Node {
	switch t := v.(type) {
	case nil:
		return node.Str("")
	case string:
		return node.Str(t)
	case []interface{}:
		items := make([]*node.Node, len(t))
		for i, item := range t {
			items[i] = ToNode(item)
		}
		return node.Seq(items...)
	case *Map:
		m := node.Map()
		for _, k := range t.keys {
			val, _ := t.Get(k)
			m.Value.MapSet(k, ToNode(val))
		}
		return m
	default:
		return node.Str("")
	}
}

package node

import "testing"

func TestValueMapSetPreservesPosition(t *testing.T) {
	v := &Value{Kind: KindMap}
	v.MapSet("a", Str("1"))
	v.MapSet("b", Str("2"))
	v.MapSet("a", Str("updated"))

	if len(v.Map) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(v.Map))
	}
	if v.Map[0].Key != "a" || v.Map[0].Value.Value.Str != "updated" {
		t.Errorf("expected key a updated in place, got %+v", v.Map[0])
	}
	if v.Map[1].Key != "b" {
		t.Errorf("expected key b to remain second, got %+v", v.Map[1])
	}
}

func TestValueMapGetAndDelete(t *testing.T) {
	v := &Value{Kind: KindMap}
	v.MapSet("a", Str("1"))

	if n, ok := v.MapGet("a"); !ok || n.Value.Str != "1" {
		t.Fatalf("expected to find key a, got %+v, %v", n, ok)
	}
	if _, ok := v.MapGet("missing"); ok {
		t.Fatalf("expected missing key to be absent")
	}

	v.MapDelete("a")
	if _, ok := v.MapGet("a"); ok {
		t.Fatalf("expected key a to be removed")
	}
}

func TestIsEmptyCollection(t *testing.T) {
	tests := []struct {
		name string
		n    *Node
		want bool
	}{
		{"empty_seq", Seq(), true},
		{"nonempty_seq", Seq(Str("x")), false},
		{"empty_map", Map(), true},
		{"str", Str(""), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.n.IsEmptyCollection(); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

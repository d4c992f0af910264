package model

import (
	"encoding/json"
	"testing"
)

func TestRecord_UnmarshalKeepsOrder(t *testing.T) {
	var r Record
	if err := json.Unmarshal([]byte(`{"z": 1, "a": {"nested": true}, "m": "x", "z": 2}`), &r); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := []string{"z", "a", "m"}
	got := r.Keys()
	if len(got) != len(want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("keys = %v, want %v", got, want)
		}
	}

	out, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != `{"z":2,"a":{"nested":true},"m":"x"}` {
		t.Errorf("Marshal = %s", out)
	}
}

func TestRecord_UnmarshalRejectsNonObjects(t *testing.T) {
	for _, input := range []string{`[1,2]`, `"text"`, `3`, `null`, `true`} {
		var r Record
		if err := json.Unmarshal([]byte(input), &r); err == nil {
			t.Errorf("expected error for %s", input)
		}
	}
}

func TestRecord_KeyString(t *testing.T) {
	var r Record
	if err := json.Unmarshal([]byte(`{"s":"1","i":1,"f":1.0,"b":true,"n":null,"o":{"k": [1, 2]},"esc":"a\"b"}`), &r); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	tests := []struct {
		field string
		want  string
	}{
		{"s", "1"},
		{"i", "1"},
		{"f", "1.0"},
		{"b", "true"},
		{"n", NullKey},
		{"missing", NullKey},
		{"o", `{"k":[1,2]}`},
		{"esc", `a"b`},
	}
	for _, tt := range tests {
		if got := r.KeyString(tt.field); got != tt.want {
			t.Errorf("KeyString(%q) = %q, want %q", tt.field, got, tt.want)
		}
	}

	if r.KeyRaw("s") == r.KeyRaw("i") {
		t.Errorf("KeyRaw should distinguish string and number")
	}
	if r.KeyRaw("missing") != "null" {
		t.Errorf("KeyRaw(missing) = %q", r.KeyRaw("missing"))
	}
}

func TestRecord_MergeIncomingWins(t *testing.T) {
	base := NewRecord("id", "1", "x", "a", "shared", "base")
	incoming := NewRecord("ref", "1", "shared", "incoming", "y", "b")

	merged := base.Merge(incoming)
	want := `{"id":"1","x":"a","shared":"incoming","ref":"1","y":"b"}`
	if merged.String() != want {
		t.Errorf("Merge = %s, want %s", merged, want)
	}
	if base.String() != `{"id":"1","x":"a","shared":"base"}` {
		t.Errorf("Merge mutated base: %s", base)
	}
}

func TestRecord_Equal(t *testing.T) {
	a := NewRecord("a", 1, "b", "x")
	if !a.Equal(NewRecord("a", 1, "b", "x")) {
		t.Error("identical records should be equal")
	}
	if a.Equal(NewRecord("b", "x", "a", 1)) {
		t.Error("field order should matter")
	}
	if a.Equal(NewRecord("a", "1", "b", "x")) {
		t.Error("value types should matter")
	}
}

func TestDataset_Summary(t *testing.T) {
	d := Dataset{ID: 1, Name: "n", RecordCount: 1, Content: []Record{NewRecord("a", 1)}}
	s := d.Summary()
	if s.Content != nil || s.Name != "n" || d.Content == nil {
		t.Errorf("unexpected summary %+v (original %+v)", s, d)
	}
}

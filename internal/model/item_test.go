package model

import (
	"encoding/json"
	"testing"
)

func TestItemIDUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want ItemID
	}{
		{"number", `{"id":1,"title":"A","description":"B"}`, "1"},
		{"string", `{"id":"a-b","title":"A","description":"B"}`, "a-b"},
		{"null", `{"id":null,"title":"A","description":"B"}`, ""},
		{"large number", `{"id":12345678901234,"title":"A","description":"B"}`, "12345678901234"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var it Item
			if err := json.Unmarshal([]byte(tt.in), &it); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if it.ID != tt.want {
				t.Errorf("ID = %q, want %q", it.ID, tt.want)
			}
		})
	}
}

func TestItemIDUnmarshalRejectsObjects(t *testing.T) {
	var it Item
	if err := json.Unmarshal([]byte(`{"id":{"x":1}}`), &it); err == nil {
		t.Error("expected an error for an object id")
	}
}

func TestItemInputBlank(t *testing.T) {
	tests := []struct {
		in   ItemInput
		want bool
	}{
		{ItemInput{"A", "B"}, false},
		{ItemInput{"", "B"}, true},
		{ItemInput{"A", ""}, true},
		{ItemInput{"  ", "B"}, true},
	}
	for _, tt := range tests {
		if got := tt.in.Blank(); got != tt.want {
			t.Errorf("%+v.Blank() = %v, want %v", tt.in, got, tt.want)
		}
	}
}

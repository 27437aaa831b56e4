package prefs

import (
	"reflect"
	"testing"
)

func TestCanonical(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{name: "int", in: 42, want: float64(42)},
		{name: "int64", in: int64(42), want: float64(42)},
		{name: "float32", in: float32(1.5), want: float64(1.5)},
		{name: "float64 passthrough", in: 1.5, want: 1.5},
		{name: "bool passthrough", in: true, want: true},
		{name: "string passthrough", in: "x", want: "x"},
		{
			name: "nested slice",
			in:   []any{1, "a", []any{int64(2)}},
			want: []any{float64(1), "a", []any{float64(2)}},
		},
		{
			name: "nested map",
			in:   map[string]any{"n": uint(3), "m": map[string]any{"k": int32(4)}},
			want: map[string]any{"n": float64(3), "m": map[string]any{"k": float64(4)}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Canonical(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Canonical(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDiff(t *testing.T) {
	tests := []struct {
		name     string
		old, new map[string]any
		want     []string
	}{
		{
			name: "no changes",
			old:  map[string]any{"a": 1, "b": "x"},
			new:  map[string]any{"a": 1, "b": "x"},
			want: nil,
		},
		{
			name: "numeric representation does not count as a change",
			old:  map[string]any{"peer-port": 51413},
			new:  map[string]any{"peer-port": float64(51413)},
			want: nil,
		},
		{
			name: "value change",
			old:  map[string]any{"peer-port": 51413},
			new:  map[string]any{"peer-port": 51414},
			want: []string{"peer-port"},
		},
		{
			name: "added key counts",
			old:  map[string]any{},
			new:  map[string]any{"dht-enabled": true},
			want: []string{"dht-enabled"},
		},
		{
			name: "removed key counts",
			old:  map[string]any{"dht-enabled": true},
			new:  map[string]any{},
			want: []string{"dht-enabled"},
		},
		{
			name: "result is sorted",
			old:  map[string]any{"b": 1, "a": 1, "c": 1},
			new:  map[string]any{"b": 2, "a": 2, "c": 2},
			want: []string{"a", "b", "c"},
		},
		{
			name: "type change counts",
			old:  map[string]any{"encryption": "preferred"},
			new:  map[string]any{"encryption": 1},
			want: []string{"encryption"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Diff(tt.old, tt.new); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Diff = %v, want %v", got, tt.want)
			}
		})
	}
}

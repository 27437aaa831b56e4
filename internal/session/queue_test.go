package session

import (
	"reflect"
	"testing"
)

func idSet(ids ...int) map[int]bool {
	set := make(map[int]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func TestQueueMoves(t *testing.T) {
	tests := []struct {
		name     string
		move     func([]int, map[int]bool) []int
		order    []int
		selected []int
		want     []int
	}{
		{
			name:     "top single",
			move:     moveTop,
			order:    []int{1, 2, 3, 4},
			selected: []int{3},
			want:     []int{3, 1, 2, 4},
		},
		{
			name:     "top keeps relative order",
			move:     moveTop,
			order:    []int{1, 2, 3, 4},
			selected: []int{4, 2},
			want:     []int{2, 4, 1, 3},
		},
		{
			name:     "bottom single",
			move:     moveBottom,
			order:    []int{1, 2, 3, 4},
			selected: []int{2},
			want:     []int{1, 3, 4, 2},
		},
		{
			name:     "up single",
			move:     moveUp,
			order:    []int{1, 2, 3, 4},
			selected: []int{3},
			want:     []int{1, 3, 2, 4},
		},
		{
			name:     "up stops at edge",
			move:     moveUp,
			order:    []int{1, 2, 3},
			selected: []int{1},
			want:     []int{1, 2, 3},
		},
		{
			name:     "up contiguous block",
			move:     moveUp,
			order:    []int{1, 2, 3, 4},
			selected: []int{2, 3},
			want:     []int{2, 3, 1, 4},
		},
		{
			name:     "down single",
			move:     moveDown,
			order:    []int{1, 2, 3, 4},
			selected: []int{2},
			want:     []int{1, 3, 2, 4},
		},
		{
			name:     "down stops at edge",
			move:     moveDown,
			order:    []int{1, 2, 3},
			selected: []int{3},
			want:     []int{1, 2, 3},
		},
		{
			name:     "down contiguous block",
			move:     moveDown,
			order:    []int{1, 2, 3, 4},
			selected: []int{2, 3},
			want:     []int{1, 4, 2, 3},
		},
		{
			name:     "empty selection",
			move:     moveTop,
			order:    []int{1, 2, 3},
			selected: nil,
			want:     []int{1, 2, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.move(tt.order, idSet(tt.selected...))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			assertPermutation(t, tt.order, got)
		})
	}
}

func assertPermutation(t *testing.T, before, after []int) {
	t.Helper()
	if len(before) != len(after) {
		t.Fatalf("length changed: before %v, after %v", before, after)
	}
	seen := make(map[int]int)
	for _, id := range before {
		seen[id]++
	}
	for _, id := range after {
		seen[id]--
	}
	for id, n := range seen {
		if n != 0 {
			t.Errorf("id %d count off by %d", id, n)
		}
	}
}

func TestPositionLocked(t *testing.T) {
	s := &Session{order: []int{5, 9, 2}}
	if got := s.positionLocked(9); got != 1 {
		t.Errorf("positionLocked(9) = %d, want 1", got)
	}
	if got := s.positionLocked(7); got != -1 {
		t.Errorf("positionLocked(7) = %d, want -1", got)
	}
}

func TestRemoveFromOrder(t *testing.T) {
	s := &Session{order: []int{1, 2, 3}}
	s.removeFromOrderLocked(2)
	if want := []int{1, 3}; !reflect.DeepEqual(s.order, want) {
		t.Errorf("order = %v, want %v", s.order, want)
	}
	s.removeFromOrderLocked(42)
	if want := []int{1, 3}; !reflect.DeepEqual(s.order, want) {
		t.Errorf("order after missing id = %v, want %v", s.order, want)
	}
}

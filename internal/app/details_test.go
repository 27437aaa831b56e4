package app

import "testing"

func TestDetailsKey(t *testing.T) {
	tests := []struct {
		name string
		ids  []int
		want string
	}{
		{name: "single", ids: []int{7}, want: "7"},
		{name: "sorted", ids: []int{3, 1, 2}, want: "1 2 3"},
		{name: "order independent", ids: []int{2, 1, 3}, want: "1 2 3"},
		{name: "empty", ids: nil, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detailsKey(tt.ids); got != tt.want {
				t.Errorf("detailsKey(%v) = %q, want %q", tt.ids, got, tt.want)
			}
		})
	}
}

func TestShowDetailsOpensThenFocuses(t *testing.T) {
	a, _, frontend := newTestApp(t)

	a.ShowDetails([]int{2, 1})
	if got := frontend.emitted("details-open"); len(got) != 1 {
		t.Fatalf("details-open events = %d, want 1", len(got))
	}
	if a.openDetailsCount() != 1 {
		t.Fatalf("registry size = %d, want 1", a.openDetailsCount())
	}

	// Same set in a different order focuses rather than reopening.
	a.ShowDetails([]int{1, 2})
	if got := frontend.emitted("details-open"); len(got) != 1 {
		t.Errorf("details-open events = %d, want still 1", len(got))
	}
	focus := frontend.emitted("details-focus")
	if len(focus) != 1 || focus[0].payload != "1 2" {
		t.Errorf("details-focus events = %v, want one for key \"1 2\"", focus)
	}

	// A different set opens its own window.
	a.ShowDetails([]int{3})
	if got := frontend.emitted("details-open"); len(got) != 2 {
		t.Errorf("details-open events = %d, want 2", len(got))
	}
	if a.openDetailsCount() != 2 {
		t.Errorf("registry size = %d, want 2", a.openDetailsCount())
	}
}

func TestCloseDetailsAllowsReopen(t *testing.T) {
	a, _, frontend := newTestApp(t)

	a.ShowDetails([]int{5})
	a.CloseDetails("5")
	if a.openDetailsCount() != 0 {
		t.Fatalf("registry size = %d, want 0 after close", a.openDetailsCount())
	}
	a.ShowDetails([]int{5})
	if got := frontend.emitted("details-open"); len(got) != 2 {
		t.Errorf("details-open events = %d, want 2 after reopen", len(got))
	}
}

func TestShowDetailsEmptySelection(t *testing.T) {
	a, _, frontend := newTestApp(t)
	a.ShowDetails(nil)
	if len(frontend.emitted("details-open")) != 0 {
		t.Error("no window should open for an empty selection")
	}
}

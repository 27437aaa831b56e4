package app

import (
	"sort"
	"strconv"
	"strings"
)

// detailsKey canonicalizes a selection into a registry key: the ids
// sorted ascending and joined with single spaces, so the same set of
// torrents always maps to the same details window regardless of
// selection order.
func detailsKey(ids []int) string {
	sorted := append([]int(nil), ids...)
	sort.Ints(sorted)
	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, " ")
}

// ShowDetails opens a details window for the given torrents, or
// focuses the one already showing exactly that set.
func (a *App) ShowDetails(ids []int) {
	if len(ids) == 0 {
		return
	}
	key := detailsKey(ids)

	if !a.details.PutIfAbsent(key, append([]int(nil), ids...)) {
		a.front().EmitEvent("details-focus", key)
		return
	}
	a.front().EmitEvent("details-open", map[string]any{
		"key": key,
		"ids": ids,
	})
}

// CloseDetails is bound to the frontend: it drops a details window
// from the registry once the frontend has torn it down.
func (a *App) CloseDetails(key string) {
	a.details.Delete(key)
}

func (a *App) openDetailsCount() int {
	return a.details.Len()
}

package session

// Queue order is the slice s.order of torrent ids; a torrent's queue
// position is its index. Every move keeps the slice a permutation of
// the managed ids, and any reorder is followed by recomputeQueueLocked
// so slot grants track the new order.

func (s *Session) positionLocked(id int) int {
	for i, v := range s.order {
		if v == id {
			return i
		}
	}
	return -1
}

func (s *Session) removeFromOrderLocked(id int) {
	i := s.positionLocked(id)
	if i < 0 {
		return
	}
	s.order = append(s.order[:i], s.order[i+1:]...)
}

func moveTop(order []int, ids map[int]bool) []int {
	picked := make([]int, 0, len(ids))
	rest := make([]int, 0, len(order))
	for _, id := range order {
		if ids[id] {
			picked = append(picked, id)
		} else {
			rest = append(rest, id)
		}
	}
	return append(picked, rest...)
}

func moveBottom(order []int, ids map[int]bool) []int {
	picked := make([]int, 0, len(ids))
	rest := make([]int, 0, len(order))
	for _, id := range order {
		if ids[id] {
			picked = append(picked, id)
		} else {
			rest = append(rest, id)
		}
	}
	return append(rest, picked...)
}

// moveUp swaps each selected id with its predecessor, scanning top to
// bottom so a contiguous selected block keeps its internal order and
// stops at the top edge.
func moveUp(order []int, ids map[int]bool) []int {
	out := make([]int, len(order))
	copy(out, order)
	for i := 1; i < len(out); i++ {
		if ids[out[i]] && !ids[out[i-1]] {
			out[i-1], out[i] = out[i], out[i-1]
		}
	}
	return out
}

func moveDown(order []int, ids map[int]bool) []int {
	out := make([]int, len(order))
	copy(out, order)
	for i := len(out) - 2; i >= 0; i-- {
		if ids[out[i]] && !ids[out[i+1]] {
			out[i+1], out[i] = out[i], out[i+1]
		}
	}
	return out
}

func (s *Session) moveQueueLocked(method string, ids []int) {
	set := make(map[int]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	switch method {
	case "queue-move-top":
		s.order = moveTop(s.order, set)
	case "queue-move-up":
		s.order = moveUp(s.order, set)
	case "queue-move-down":
		s.order = moveDown(s.order, set)
	case "queue-move-bottom":
		s.order = moveBottom(s.order, set)
	}
	s.recomputeQueueLocked()
}

// recomputeQueueLocked walks the queue top to bottom handing download
// slots to started, incomplete, non-stalled torrents until the
// configured queue size is exhausted. Everything else started is
// marked queued. Seeding torrents and forced starts never consume a
// slot. Returns true when any torrent's queued flag flipped.
func (s *Session) recomputeQueueLocked() bool {
	size := s.settings.queueSize
	used := 0
	changed := false
	for _, id := range s.order {
		t := s.torrents[id]
		if t == nil || t.stopped || t.verifying {
			continue
		}
		var want bool
		switch {
		case t.forced, t.complete():
			want = false
		case size <= 0:
			want = false
		case t.stalledLocked():
			// Stalled torrents run but do not hold a slot.
			want = false
		case used < size:
			want = false
			used++
		default:
			want = true
		}
		if t.queued != want {
			t.queued = want
			changed = true
		}
		s.applyQueueStateLocked(t)
	}
	return changed
}

func (t *Torrent) stalledLocked() bool {
	min := t.s.settings.stalledMinutes
	if min <= 0 || t.lastProgress.IsZero() || t.complete() {
		return false
	}
	return timeSince(t.lastProgress).Minutes() >= float64(min)
}

// applyQueueStateLocked pushes the queued/running decision down to the
// engine. Queued torrents keep their peers but stop moving payload.
func (s *Session) applyQueueStateLocked(t *Torrent) {
	if t.stopped {
		return
	}
	if t.queued {
		t.t.DisallowDataDownload()
		return
	}
	t.t.AllowDataDownload()
	t.t.AllowDataUpload()
	t.t.SetMaxEstablishedConns(s.settings.peerLimitPerTorrent)
	if t.hasInfo() {
		t.t.DownloadAll()
	}
}

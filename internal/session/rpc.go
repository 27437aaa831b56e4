package session

import "fmt"

// Args carries the named arguments of an Exec call. Values follow
// JSON decoding conventions, so numbers may arrive as float64.
type Args map[string]any

// Exec runs a named torrent method against the ids in args["ids"],
// or against every torrent when ids is absent. Unknown methods are a
// caller bug and return an error rather than panicking, since method
// names can cross process boundaries.
func (s *Session) Exec(method string, args Args) error {
	ids, err := s.resolveIDs(args["ids"])
	if err != nil {
		return fmt.Errorf("session: %s: %w", method, err)
	}

	switch method {
	case "torrent-start":
		for _, id := range ids {
			if err := s.StartTorrent(id, false); err != nil {
				return err
			}
		}
	case "torrent-start-now":
		for _, id := range ids {
			if err := s.StartTorrent(id, true); err != nil {
				return err
			}
		}
	case "torrent-stop":
		for _, id := range ids {
			if err := s.StopTorrent(id); err != nil {
				return err
			}
		}
	case "torrent-verify":
		for _, id := range ids {
			if err := s.VerifyTorrent(id); err != nil {
				return err
			}
		}
	case "torrent-reannounce":
		for _, id := range ids {
			if err := s.ReannounceTorrent(id); err != nil {
				return err
			}
		}
	case "queue-move-top", "queue-move-up", "queue-move-down", "queue-move-bottom":
		s.mu.Lock()
		s.moveQueueLocked(method, ids)
		s.mu.Unlock()
		s.emit(Event{Type: QueuePositionsChanged})
	default:
		return fmt.Errorf("session: unknown method %q", method)
	}
	return nil
}

// resolveIDs normalizes the ids argument: absent means all torrents,
// otherwise a list of integer ids in any of the numeric shapes JSON
// decoding produces.
func (s *Session) resolveIDs(v any) ([]int, error) {
	if v == nil {
		s.mu.Lock()
		all := make([]int, len(s.order))
		copy(all, s.order)
		s.mu.Unlock()
		return all, nil
	}
	switch ids := v.(type) {
	case []int:
		return ids, nil
	case int:
		return []int{ids}, nil
	case float64:
		return []int{int(ids)}, nil
	case []any:
		out := make([]int, 0, len(ids))
		for _, raw := range ids {
			switch n := raw.(type) {
			case int:
				out = append(out, n)
			case float64:
				out = append(out, int(n))
			default:
				return nil, fmt.Errorf("bad id %v (%T)", raw, raw)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("bad ids %v (%T)", v, v)
	}
}

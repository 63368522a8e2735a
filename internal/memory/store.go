package memory

import "sort"

// boundaryMargin keeps scores admitted through Add strictly below the ban
// line, so a stored entry is never observably at the boundary.
const boundaryMargin = 0.01

// Store holds three independent text-to-score mappings gated by a shared
// ban threshold. A Store is not safe for concurrent use; the owning
// service serializes access.
type Store struct {
	banThreshold float64
	items        map[Category]map[string]float64
	// order remembers first insertion per category so lookups that break
	// ties do so on "first inserted wins" rather than map iteration order.
	order map[Category][]string
}

// NewStore creates an empty store with the given ban threshold.
func NewStore(banThreshold float64) *Store {
	s := &Store{
		banThreshold: banThreshold,
		items:        make(map[Category]map[string]float64, len(Categories)),
		order:        make(map[Category][]string, len(Categories)),
	}
	for _, c := range Categories {
		s.items[c] = make(map[string]float64)
	}
	return s
}

// BanThreshold returns the score cutoff shared by all categories.
func (s *Store) BanThreshold() float64 {
	return s.banThreshold
}

// IsBanned reports whether a score is at or above the ban line. The
// boundary value itself is banned.
func (s *Store) IsBanned(score float64) bool {
	return score >= s.banThreshold
}

// Add inserts or overwrites an entry, refusing banned scores and unknown
// categories. Admitted scores are clamped to banThreshold-0.01 so no entry
// ever sits on the boundary. Returns whether the entry was stored.
func (s *Store) Add(cat Category, text string, score float64) bool {
	if s.IsBanned(score) {
		return false
	}
	m, ok := s.items[cat]
	if !ok {
		return false
	}
	clamped := score
	if max := s.banThreshold - boundaryMargin; clamped > max {
		clamped = max
	}
	if _, exists := m[text]; !exists {
		s.order[cat] = append(s.order[cat], text)
	}
	m[text] = clamped
	return true
}

// Put inserts or overwrites an entry without the ban check or clamp. This
// is the operator-override path: recording an item with a banned score
// pins it as banned even if the network would currently allow it.
func (s *Store) Put(cat Category, text string, score float64) bool {
	m, ok := s.items[cat]
	if !ok {
		return false
	}
	if _, exists := m[text]; !exists {
		s.order[cat] = append(s.order[cat], text)
	}
	m[text] = score
	return true
}

// Get returns the stored score for text, if present.
func (s *Store) Get(cat Category, text string) (float64, bool) {
	score, ok := s.items[cat][text]
	return score, ok
}

// Allowed returns a copy of the entries below the ban line. The filter is
// defensive: Add alone keeps the invariant, but Put and restored snapshots
// may carry banned scores.
func (s *Store) Allowed(cat Category) map[string]float64 {
	out := make(map[string]float64)
	for text, score := range s.items[cat] {
		if !s.IsBanned(score) {
			out[text] = score
		}
	}
	return out
}

// AllowedTexts returns allowed entries in first-inserted order.
func (s *Store) AllowedTexts(cat Category) []string {
	var out []string
	for _, text := range s.order[cat] {
		if score, ok := s.items[cat][text]; ok && !s.IsBanned(score) {
			out = append(out, text)
		}
	}
	return out
}

// Remove deletes an entry if present; removing an absent entry is a no-op.
func (s *Store) Remove(cat Category, text string) {
	m, ok := s.items[cat]
	if !ok {
		return
	}
	if _, exists := m[text]; !exists {
		return
	}
	delete(m, text)
	texts := s.order[cat]
	for i, t := range texts {
		if t == text {
			s.order[cat] = append(texts[:i], texts[i+1:]...)
			break
		}
	}
}

// Len returns the total number of entries across all categories.
func (s *Store) Len() int {
	n := 0
	for _, m := range s.items {
		n += len(m)
	}
	return n
}

// Snapshot captures the whole store as a serializable value.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		Words:     copyScores(s.items[CategoryWords]),
		Phrases:   copyScores(s.items[CategoryPhrases]),
		GameIdeas: copyScores(s.items[CategoryGameIdeas]),
	}
}

// Restore replaces the store's contents with a snapshot. Snapshots carry
// no insertion order, so entries are replayed in lexicographic text order
// to keep tie-breaking deterministic across restarts.
func (s *Store) Restore(snap Snapshot) {
	for _, c := range Categories {
		s.items[c] = make(map[string]float64)
		s.order[c] = nil
	}
	restore := func(cat Category, scores map[string]float64) {
		texts := make([]string, 0, len(scores))
		for text := range scores {
			texts = append(texts, text)
		}
		sort.Strings(texts)
		for _, text := range texts {
			s.Put(cat, text, scores[text])
		}
	}
	restore(CategoryWords, snap.Words)
	restore(CategoryPhrases, snap.Phrases)
	restore(CategoryGameIdeas, snap.GameIdeas)
}

func copyScores(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

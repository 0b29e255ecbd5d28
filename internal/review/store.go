// AngelaMos | 2026
// store.go

package review

import (
	"slices"
)

// Store is the review list behind one open review view. It keeps reviews in
// arrival order and recomputes the visible results on every change.
// Not safe for concurrent use.
type Store struct {
	reviews    []Review
	filter     Filter
	sort       SortKey
	results    []Review
	generation uint64
}

func NewStore(reviews []Review, f Filter, key SortKey) *Store {
	s := &Store{filter: f.normalized(), sort: key}
	s.Replace(reviews)
	return s
}

// Replace swaps the whole review set and starts a new generation. Later
// duplicates of an id are dropped.
func (s *Store) Replace(reviews []Review) {
	s.generation++
	seen := make(map[int64]struct{}, len(reviews))
	s.reviews = make([]Review, 0, len(reviews))

	for _, r := range reviews {
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		s.reviews = append(s.reviews, r)
	}

	s.recompute()
}

func (s *Store) SetFilter(f Filter) {
	s.filter = f.normalized()
	s.recompute()
}

func (s *Store) SetSort(key SortKey) {
	s.sort = key
	s.recompute()
}

// Insert adds a newly submitted review as the latest arrival, or replaces the
// review with the same id.
func (s *Store) Insert(r Review) {
	if i := s.indexOf(r.ID); i >= 0 {
		s.reviews[i] = r
	} else {
		s.reviews = append(s.reviews, r)
	}
	s.recompute()
}

func (s *Store) Get(id int64) (Review, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.reviews[i], true
	}
	return Review{}, false
}

func (s *Store) Results() []Review {
	return slices.Clone(s.results)
}

func (s *Store) Filter() Filter {
	return s.filter
}

func (s *Store) Sort() SortKey {
	return s.sort
}

// Generation changes every time the review set is replaced wholesale.
func (s *Store) Generation() uint64 {
	return s.generation
}

func (s *Store) Len() int {
	return len(s.reviews)
}

func (s *Store) incrementHelpful(id int64) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.reviews[i].HelpfulCount++
	s.recompute()
	return true
}

func (s *Store) indexOf(id int64) int {
	return slices.IndexFunc(s.reviews, func(r Review) bool {
		return r.ID == id
	})
}

func (s *Store) recompute() {
	s.results = View(s.reviews, s.filter, s.sort)
}

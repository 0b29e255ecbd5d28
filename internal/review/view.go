// AngelaMos | 2026
// view.go

package review

import (
	"cmp"
	"slices"
	"strings"
)

type SortKey int

const (
	SortNewest SortKey = iota
	SortOldest
	SortHelpful
	SortRatingHigh
	SortRatingLow
)

var sortNames = [...]string{
	SortNewest:     "newest",
	SortOldest:     "oldest",
	SortHelpful:    "helpful",
	SortRatingHigh: "rating_high",
	SortRatingLow:  "rating_low",
}

func (k SortKey) String() string {
	if k < SortNewest || k > SortRatingLow {
		return sortNames[SortNewest]
	}
	return sortNames[k]
}

// ParseSortKey falls back to newest for anything it does not know.
func ParseSortKey(s string) SortKey {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range sortNames {
		if s == name {
			return SortKey(k)
		}
	}
	return SortNewest
}

func (k SortKey) compare(a, b Review) int {
	switch k {
	case SortOldest:
		return a.CreatedAt.Compare(b.CreatedAt)
	case SortHelpful:
		return cmp.Compare(b.HelpfulCount, a.HelpfulCount)
	case SortRatingHigh:
		return cmp.Compare(b.Rating, a.Rating)
	case SortRatingLow:
		return cmp.Compare(a.Rating, b.Rating)
	default:
		return b.CreatedAt.Compare(a.CreatedAt)
	}
}

// Filter is the pair of review controls. Rating 0 means any rating.
type Filter struct {
	Rating       int
	VerifiedOnly bool
}

// NormalizeRating turns an out-of-range rating filter into "no filter".
func NormalizeRating(rating int) int {
	if rating < MinRating || rating > MaxRating {
		return 0
	}
	return rating
}

func (f Filter) normalized() Filter {
	f.Rating = NormalizeRating(f.Rating)
	return f
}

func (f Filter) Matches(r Review) bool {
	if f.Rating != 0 && r.Rating != f.Rating {
		return false
	}
	return !f.VerifiedOnly || r.VerifiedPurchase
}

// View filters reviews and sorts them by key. Equal keys keep their arrival
// order. The input slice is not modified.
func View(reviews []Review, f Filter, key SortKey) []Review {
	f = f.normalized()

	out := make([]Review, 0, len(reviews))
	for _, r := range reviews {
		if f.Matches(r) {
			out = append(out, r)
		}
	}

	slices.SortStableFunc(out, key.compare)
	return out
}

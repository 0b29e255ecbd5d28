// AngelaMos | 2026
// view_test.go

package review

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var t0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func ids(reviews []Review) []int64 {
	out := make([]int64, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, r.ID)
	}
	return out
}

func TestView_ScenarioB(t *testing.T) {
	reviews := []Review{
		{ID: 1, Rating: 5, HelpfulCount: 2, CreatedAt: t0},
		{ID: 2, Rating: 3, HelpfulCount: 9, CreatedAt: t0},
	}

	assert.Equal(t, []int64{2, 1}, ids(View(reviews, Filter{}, SortHelpful)))
	assert.Equal(t, []int64{1, 2}, ids(View(reviews, Filter{}, SortRatingHigh)))
	assert.Equal(t, []int64{2, 1}, ids(View(reviews, Filter{}, SortRatingLow)))
}

func TestView_StableOnEqualKeys(t *testing.T) {
	reviews := []Review{
		{ID: 1, Rating: 4, CreatedAt: t0},
		{ID: 2, Rating: 4, CreatedAt: t0},
		{ID: 3, Rating: 4, CreatedAt: t0},
	}

	for _, key := range []SortKey{SortNewest, SortOldest, SortHelpful, SortRatingHigh, SortRatingLow} {
		assert.Equal(t, []int64{1, 2, 3}, ids(View(reviews, Filter{}, key)), key.String())
	}
}

func TestView_ChronologicalKeys(t *testing.T) {
	reviews := []Review{
		{ID: 1, Rating: 3, CreatedAt: t0.Add(time.Hour)},
		{ID: 2, Rating: 3, CreatedAt: t0},
		{ID: 3, Rating: 3, CreatedAt: t0.Add(2 * time.Hour)},
		{ID: 4, Rating: 3, CreatedAt: t0.Add(time.Hour)},
	}

	assert.Equal(t, []int64{3, 1, 4, 2}, ids(View(reviews, Filter{}, SortNewest)))
	assert.Equal(t, []int64{2, 1, 4, 3}, ids(View(reviews, Filter{}, SortOldest)))
}

func TestView_Filter(t *testing.T) {
	reviews := []Review{
		{ID: 1, Rating: 5, VerifiedPurchase: true, CreatedAt: t0},
		{ID: 2, Rating: 5, CreatedAt: t0},
		{ID: 3, Rating: 2, VerifiedPurchase: true, CreatedAt: t0},
	}

	cases := []struct {
		name   string
		filter Filter
		want   []int64
	}{
		{"none", Filter{}, []int64{1, 2, 3}},
		{"rating", Filter{Rating: 5}, []int64{1, 2}},
		{"verified", Filter{VerifiedOnly: true}, []int64{1, 3}},
		{"both", Filter{Rating: 5, VerifiedOnly: true}, []int64{1}},
		{"out of range rating is ignored", Filter{Rating: 9}, []int64{1, 2, 3}},
		{"negative rating is ignored", Filter{Rating: -1}, []int64{1, 2, 3}},
		{"no match", Filter{Rating: 1}, []int64{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ids(View(reviews, tc.filter, SortNewest)))
		})
	}
}

func TestView_DoesNotMutateInput(t *testing.T) {
	reviews := []Review{
		{ID: 1, HelpfulCount: 1, CreatedAt: t0},
		{ID: 2, HelpfulCount: 5, CreatedAt: t0},
	}

	_ = View(reviews, Filter{}, SortHelpful)
	assert.Equal(t, []int64{1, 2}, ids(reviews))
}

func TestParseSortKey(t *testing.T) {
	assert.Equal(t, SortHelpful, ParseSortKey("helpful"))
	assert.Equal(t, SortRatingHigh, ParseSortKey(" Rating_High "))
	assert.Equal(t, SortOldest, ParseSortKey("oldest"))
	assert.Equal(t, SortNewest, ParseSortKey(""))
	assert.Equal(t, SortNewest, ParseSortKey("random"))
}

func TestNormalizeRating(t *testing.T) {
	assert.Equal(t, 0, NormalizeRating(0))
	assert.Equal(t, 1, NormalizeRating(1))
	assert.Equal(t, 5, NormalizeRating(5))
	assert.Equal(t, 0, NormalizeRating(6))
}

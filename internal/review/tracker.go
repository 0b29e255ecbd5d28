// AngelaMos | 2026
// tracker.go

package review

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/carterperez-dev/templates/resource-directory/internal/core"
)

// ErrAlreadyVoted is returned by a HelpfulWriter that has already recorded a
// vote by this voter for this review.
var ErrAlreadyVoted = errors.New("already voted")

type HelpfulWriter interface {
	PostHelpful(ctx context.Context, voterID string, reviewID int64) error
}

// Ledger is the set of reviews voted on in one view session.
type Ledger struct {
	ids map[int64]struct{}
}

func NewLedger() Ledger {
	return Ledger{ids: make(map[int64]struct{})}
}

func (l Ledger) Has(id int64) bool {
	_, ok := l.ids[id]
	return ok
}

func (l Ledger) IDs() []int64 {
	ids := make([]int64, 0, len(l.ids))
	for id := range l.ids {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (l Ledger) add(id int64)    { l.ids[id] = struct{}{} }
func (l Ledger) remove(id int64) { delete(l.ids, id) }

type Vote struct {
	Applied bool
}

type Tracker struct {
	voter  string
	writer HelpfulWriter
	ledger Ledger
}

func NewTracker(voterID string, writer HelpfulWriter) *Tracker {
	return &Tracker{
		voter:  voterID,
		writer: writer,
		ledger: NewLedger(),
	}
}

// Voted must be called with the session lock held.
func (t *Tracker) Voted(id int64) bool {
	return t.ledger.Has(id)
}

// Ledger must be called with the session lock held.
func (t *Tracker) Ledger() []int64 {
	return t.ledger.IDs()
}

// MarkHelpful records one helpful vote for id. mu guards both store and the
// ledger; the caller must not hold it. The ledger entry is taken before the
// write starts and mu is released while the writer runs, so a second vote for
// the same id returns immediately with Applied false.
//
// When the write fails the ledger entry is removed and the count is left
// untouched, so the vote can be retried. When the store was replaced while the
// write ran, the refetched rows already carry the server count and no local
// increment is applied.
func (t *Tracker) MarkHelpful(
	ctx context.Context,
	mu sync.Locker,
	store *Store,
	id int64,
) (Vote, error) {
	mu.Lock()
	if t.ledger.Has(id) {
		mu.Unlock()
		return Vote{}, nil
	}
	if _, ok := store.Get(id); !ok {
		mu.Unlock()
		return Vote{}, fmt.Errorf("mark helpful %d: %w", id, core.ErrNotFound)
	}
	t.ledger.add(id)
	generation := store.Generation()
	mu.Unlock()

	err := t.writer.PostHelpful(ctx, t.voter, id)

	mu.Lock()
	defer mu.Unlock()

	switch {
	case err == nil:
		if store.Generation() == generation {
			store.incrementHelpful(id)
		}
		return Vote{Applied: true}, nil
	case errors.Is(err, ErrAlreadyVoted):
		return Vote{}, nil
	default:
		t.ledger.remove(id)
		return Vote{}, fmt.Errorf("mark helpful %d: %w", id, err)
	}
}

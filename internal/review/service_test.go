// AngelaMos | 2026
// service_test.go

package review

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/resource-directory/internal/core"
	"github.com/carterperez-dev/templates/resource-directory/internal/session"
)

type fakeRepo struct {
	mu        sync.Mutex
	reviews   []Review
	fetchErr  error
	voteErr   error
	lastFetch ListParams
	nextID    int64
	statuses  map[int64]Status
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		reviews: []Review{
			{ID: 1, TargetID: "sku-1", UserName: "Ana", Rating: 5, HelpfulCount: 2, VerifiedPurchase: true, CreatedAt: t0, Status: StatusApproved},
			{ID: 2, TargetID: "sku-1", UserName: "Bo", Rating: 3, HelpfulCount: 9, CreatedAt: t0.Add(time.Hour), Status: StatusApproved},
			{ID: 3, TargetID: "sku-2", UserName: "Cy", Rating: 1, CreatedAt: t0, Status: StatusApproved},
		},
		nextID:   100,
		statuses: make(map[int64]Status),
	}
}

func (f *fakeRepo) FetchReviews(_ context.Context, p ListParams) ([]Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastFetch = p
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}

	var out []Review
	for _, r := range f.reviews {
		if r.TargetID == p.TargetID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRepo) SubmitReview(_ context.Context, sub Submission) (Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	r := Review{
		ID:        f.nextID,
		TargetID:  sub.TargetID,
		UserID:    sub.UserID,
		UserName:  sub.UserName,
		Rating:    sub.Rating,
		Title:     sub.Title,
		Body:      sub.Body,
		Images:    sub.Images,
		CreatedAt: t0.Add(24 * time.Hour),
		Status:    StatusPending,
	}
	f.reviews = append(f.reviews, r)
	return r, nil
}

func (f *fakeRepo) PostHelpful(_ context.Context, _ string, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.voteErr != nil {
		return f.voteErr
	}
	for i := range f.reviews {
		if f.reviews[i].ID == id {
			f.reviews[i].HelpfulCount++
			return nil
		}
	}
	return core.ErrNotFound
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id int64, status Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, r := range f.reviews {
		if r.ID == id {
			f.statuses[id] = status
			return nil
		}
	}
	return core.ErrNotFound
}

func (f *fakeRepo) ListByStatus(_ context.Context, status Status, _ int) ([]Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []Review
	for _, r := range f.reviews {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out, nil
}

func newTestService(t *testing.T) (*Service, *fakeRepo) {
	t.Helper()

	repo := newFakeRepo()
	store := session.NewStore[*ViewSession](session.Config{MaxPerOwner: 3})
	return NewService(repo, nil, store, Limits{Default: 20, Max: 100}), repo
}

func TestService_OpenAppliesFilterLocally(t *testing.T) {
	svc, repo := newTestService(t)

	_, snap, err := svc.Open(t.Context(), "u1", OpenParams{
		TargetID:     "sku-1",
		Rating:       5,
		VerifiedOnly: true,
		Sort:         SortHelpful,
		Limit:        500,
	})
	require.NoError(t, err)

	assert.Equal(t, []int64{1}, ids(snap.Results))
	assert.Equal(t, 2, snap.Total)
	assert.Equal(t, 100, repo.lastFetch.Limit)
	assert.Equal(t, SortHelpful, repo.lastFetch.Sort)
}

func TestService_FilterAndSortChanges(t *testing.T) {
	svc, _ := newTestService(t)

	id, _, err := svc.Open(t.Context(), "u1", OpenParams{TargetID: "sku-1", Rating: 5})
	require.NoError(t, err)

	snap, err := svc.SetFilter("u1", id, Filter{Rating: 3})
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids(snap.Results))

	snap, err = svc.SetFilter("u1", id, Filter{Rating: 11})
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Filter.Rating)

	snap, err = svc.SetSort("u1", id, SortRatingHigh)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids(snap.Results))
}

func TestService_OpenFailureIsUnavailable(t *testing.T) {
	svc, repo := newTestService(t)
	repo.fetchErr = errors.New("timeout")

	_, _, err := svc.Open(t.Context(), "u1", OpenParams{TargetID: "sku-1"})
	assert.ErrorIs(t, err, core.ErrUnavailable)
	assert.Zero(t, svc.OpenSessions())
}

func TestService_EmptyFeedIsNotAnError(t *testing.T) {
	svc, _ := newTestService(t)

	_, snap, err := svc.Open(t.Context(), "u1", OpenParams{TargetID: "sku-none"})
	require.NoError(t, err)
	assert.Empty(t, snap.Results)
}

func TestService_ReloadFailureKeepsList(t *testing.T) {
	svc, repo := newTestService(t)

	id, _, err := svc.Open(t.Context(), "u1", OpenParams{TargetID: "sku-1"})
	require.NoError(t, err)

	repo.mu.Lock()
	repo.fetchErr = errors.New("timeout")
	repo.mu.Unlock()

	_, err = svc.Reload(t.Context(), "u1", id)
	assert.ErrorIs(t, err, core.ErrUnavailable)

	snap, err := svc.Get("u1", id)
	require.NoError(t, err)
	assert.Len(t, snap.Results, 2)
}

func TestService_MarkHelpful(t *testing.T) {
	svc, repo := newTestService(t)

	id, _, err := svc.Open(t.Context(), "u1", OpenParams{TargetID: "sku-1", Sort: SortHelpful})
	require.NoError(t, err)

	vote, snap, err := svc.MarkHelpful(t.Context(), "u1", id, 1)
	require.NoError(t, err)
	assert.True(t, vote.Applied)
	assert.Equal(t, []int64{1}, snap.Voted)

	vote, _, err = svc.MarkHelpful(t.Context(), "u1", id, 1)
	require.NoError(t, err)
	assert.False(t, vote.Applied)

	assert.Equal(t, 3, repo.reviews[0].HelpfulCount)

	_, _, err = svc.MarkHelpful(t.Context(), "u1", id, 999)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestService_MarkHelpfulFailure(t *testing.T) {
	svc, repo := newTestService(t)

	id, _, err := svc.Open(t.Context(), "u1", OpenParams{TargetID: "sku-1"})
	require.NoError(t, err)

	repo.mu.Lock()
	repo.voteErr = errors.New("db down")
	repo.mu.Unlock()

	_, _, err = svc.MarkHelpful(t.Context(), "u1", id, 2)
	require.ErrorIs(t, err, core.ErrUnavailable)

	snap, err := svc.Get("u1", id)
	require.NoError(t, err)
	assert.Empty(t, snap.Voted)
	for _, r := range snap.Results {
		if r.ID == 2 {
			assert.Equal(t, 9, r.HelpfulCount)
		}
	}
}

func TestService_SubmitInsertsIntoView(t *testing.T) {
	svc, _ := newTestService(t)

	id, _, err := svc.Open(t.Context(), "u1", OpenParams{TargetID: "sku-1"})
	require.NoError(t, err)

	created, snap, err := svc.Submit(t.Context(), "u1", id, Submission{
		TargetID: "sku-other",
		UserName: "Me",
		Rating:   4,
		Body:     "Nice",
	})
	require.NoError(t, err)

	assert.Equal(t, "sku-1", created.TargetID)
	assert.Equal(t, "u1", created.UserID)
	assert.Equal(t, []int64{created.ID, 2, 1}, ids(snap.Results))
}

func TestService_ViewsAreOwnerScoped(t *testing.T) {
	svc, _ := newTestService(t)

	id, _, err := svc.Open(t.Context(), "u1", OpenParams{TargetID: "sku-1"})
	require.NoError(t, err)

	_, _, err = svc.MarkHelpful(t.Context(), "u2", id, 1)
	assert.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, svc.Discard("u1", id))
	_, err = svc.Get("u1", id)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestService_Moderation(t *testing.T) {
	svc, repo := newTestService(t)

	require.NoError(t, svc.UpdateStatus(t.Context(), 2, StatusRejected))
	assert.Equal(t, StatusRejected, repo.statuses[2])

	assert.ErrorIs(t, svc.UpdateStatus(t.Context(), 404, StatusApproved), core.ErrNotFound)

	approved, err := svc.ListByStatus(t.Context(), StatusApproved, 0)
	require.NoError(t, err)
	assert.Len(t, approved, 3)
}

// gatedWriter records the vote on the repository, then waits for release.
type gatedWriter struct {
	repo     *fakeRepo
	recorded chan struct{}
	release  chan struct{}
}

func (g *gatedWriter) PostHelpful(ctx context.Context, voterID string, id int64) error {
	err := g.repo.PostHelpful(ctx, voterID, id)
	close(g.recorded)
	<-g.release
	return err
}

func TestService_ReloadDuringVoteMatchesRepository(t *testing.T) {
	repo := newFakeRepo()
	writer := &gatedWriter{
		repo:     repo,
		recorded: make(chan struct{}),
		release:  make(chan struct{}),
	}
	store := session.NewStore[*ViewSession](session.Config{MaxPerOwner: 3})
	svc := NewService(repo, writer, store, Limits{Default: 20, Max: 100})

	id, _, err := svc.Open(t.Context(), "u1", OpenParams{TargetID: "sku-1"})
	require.NoError(t, err)

	type result struct {
		vote Vote
		err  error
	}
	done := make(chan result, 1)
	go func() {
		vote, _, err := svc.MarkHelpful(context.Background(), "u1", id, 1)
		done <- result{vote, err}
	}()

	<-writer.recorded
	_, err = svc.Reload(t.Context(), "u1", id)
	require.NoError(t, err)

	close(writer.release)
	res := <-done
	require.NoError(t, res.err)
	assert.True(t, res.vote.Applied)

	snap, err := svc.Get("u1", id)
	require.NoError(t, err)

	var local int
	for _, r := range snap.Results {
		if r.ID == 1 {
			local = r.HelpfulCount
		}
	}
	assert.Equal(t, 3, local)
	assert.Equal(t, repo.reviews[0].HelpfulCount, local)
	assert.Equal(t, []int64{1}, snap.Voted)
}

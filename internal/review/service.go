// AngelaMos | 2026
// service.go

package review

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/carterperez-dev/templates/resource-directory/internal/core"
	"github.com/carterperez-dev/templates/resource-directory/internal/session"
)

// ViewSession is one open review feed. mu guards store and tracker.
type ViewSession struct {
	mu       sync.Mutex
	targetID string
	limit    int
	store    *Store
	tracker  *Tracker
}

// Snapshot is a consistent copy of a view.
type Snapshot struct {
	TargetID string
	Filter   Filter
	Sort     SortKey
	Results  []Review
	Voted    []int64
	Total    int
}

func (v *ViewSession) snapshotLocked() Snapshot {
	return Snapshot{
		TargetID: v.targetID,
		Filter:   v.store.Filter(),
		Sort:     v.store.Sort(),
		Results:  v.store.Results(),
		Voted:    v.tracker.Ledger(),
		Total:    v.store.Len(),
	}
}

func (v *ViewSession) snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

type Limits struct {
	Default int
	Max     int
}

func (l Limits) clamp(n int) int {
	if n <= 0 {
		n = l.Default
	}
	if l.Max > 0 && n > l.Max {
		n = l.Max
	}
	return n
}

type Service struct {
	repo     Repository
	votes    HelpfulWriter
	sessions *session.Store[*ViewSession]
	limits   Limits
	tracer   trace.Tracer
}

// NewService reads and submits reviews through repo and records helpful
// votes through votes, which usually wraps repo.
func NewService(
	repo Repository,
	votes HelpfulWriter,
	sessions *session.Store[*ViewSession],
	limits Limits,
) *Service {
	if votes == nil {
		votes = repo
	}
	if limits.Default <= 0 {
		limits.Default = 50
	}

	return &Service{
		repo:     repo,
		votes:    votes,
		sessions: sessions,
		limits:   limits,
		tracer:   otel.Tracer("review"),
	}
}

type OpenParams struct {
	TargetID     string
	Rating       int
	VerifiedOnly bool
	Sort         SortKey
	Limit        int
}

func (s *Service) fetch(ctx context.Context, params ListParams) ([]Review, error) {
	reviews, err := s.repo.FetchReviews(ctx, params)
	if err != nil {
		core.CollaboratorErrorsTotal.WithLabelValues("fetch_reviews").Inc()
		return nil, core.UnavailableError("review feed", err)
	}
	return reviews, nil
}

func (s *Service) Open(
	ctx context.Context,
	userID string,
	params OpenParams,
) (string, Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "review.Open")
	defer span.End()

	filter := Filter{Rating: params.Rating, VerifiedOnly: params.VerifiedOnly}.normalized()
	limit := s.limits.clamp(params.Limit)

	// Filters are applied locally, so later filter changes see the same set.
	reviews, err := s.fetch(ctx, ListParams{
		TargetID: params.TargetID,
		Sort:     params.Sort,
		Limit:    limit,
	})
	if err != nil {
		core.SetSpanError(ctx, err)
		return "", Snapshot{}, err
	}

	span.SetAttributes(
		attribute.String("review.target_id", params.TargetID),
		attribute.Int("review.count", len(reviews)),
	)

	view := &ViewSession{
		targetID: params.TargetID,
		limit:    limit,
		store:    NewStore(reviews, filter, params.Sort),
		tracker:  NewTracker(userID, s.votes),
	}
	id := s.sessions.Put(userID, view)

	return id, view.snapshot(), nil
}

func (s *Service) Get(userID, viewID string) (Snapshot, error) {
	view, err := s.sessions.Get(userID, viewID)
	if err != nil {
		return Snapshot{}, err
	}
	return view.snapshot(), nil
}

func (s *Service) Discard(userID, viewID string) error {
	return s.sessions.Delete(userID, viewID)
}

func (s *Service) SetFilter(userID, viewID string, f Filter) (Snapshot, error) {
	view, err := s.sessions.Get(userID, viewID)
	if err != nil {
		return Snapshot{}, err
	}

	view.mu.Lock()
	defer view.mu.Unlock()

	view.store.SetFilter(f)
	return view.snapshotLocked(), nil
}

func (s *Service) SetSort(userID, viewID string, key SortKey) (Snapshot, error) {
	view, err := s.sessions.Get(userID, viewID)
	if err != nil {
		return Snapshot{}, err
	}

	view.mu.Lock()
	defer view.mu.Unlock()

	view.store.SetSort(key)
	return view.snapshotLocked(), nil
}

// Reload refetches the target and replaces the view's reviews. A failed
// fetch leaves the current list in place.
func (s *Service) Reload(
	ctx context.Context,
	userID, viewID string,
) (Snapshot, error) {
	view, err := s.sessions.Get(userID, viewID)
	if err != nil {
		return Snapshot{}, err
	}

	view.mu.Lock()
	params := ListParams{
		TargetID: view.targetID,
		Sort:     view.store.Sort(),
		Limit:    view.limit,
	}
	view.mu.Unlock()

	reviews, err := s.fetch(ctx, params)
	if err != nil {
		return Snapshot{}, err
	}

	view.mu.Lock()
	defer view.mu.Unlock()

	view.store.Replace(reviews)
	return view.snapshotLocked(), nil
}

func (s *Service) MarkHelpful(
	ctx context.Context,
	userID, viewID string,
	reviewID int64,
) (Vote, Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "review.MarkHelpful")
	defer span.End()

	view, err := s.sessions.Get(userID, viewID)
	if err != nil {
		return Vote{}, Snapshot{}, err
	}

	vote, err := view.tracker.MarkHelpful(ctx, &view.mu, view.store, reviewID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return Vote{}, Snapshot{}, core.NotFoundError("review")
		}
		core.HelpfulVotesTotal.WithLabelValues("failed").Inc()
		core.CollaboratorErrorsTotal.WithLabelValues("post_helpful").Inc()
		core.SetSpanError(ctx, err)
		return Vote{}, Snapshot{}, core.UnavailableError("helpful vote", err)
	}

	outcome := "duplicate"
	if vote.Applied {
		outcome = "applied"
	}
	core.HelpfulVotesTotal.WithLabelValues(outcome).Inc()
	span.SetAttributes(attribute.Bool("vote.applied", vote.Applied))

	return vote, view.snapshot(), nil
}

// Submit creates a review for the view's target and shows it in the view
// right away, ordered like every other review.
func (s *Service) Submit(
	ctx context.Context,
	userID, viewID string,
	sub Submission,
) (Review, Snapshot, error) {
	view, err := s.sessions.Get(userID, viewID)
	if err != nil {
		return Review{}, Snapshot{}, err
	}

	view.mu.Lock()
	sub.TargetID = view.targetID
	view.mu.Unlock()
	sub.UserID = userID

	created, err := s.repo.SubmitReview(ctx, sub)
	if err != nil {
		core.CollaboratorErrorsTotal.WithLabelValues("submit_review").Inc()
		return Review{}, Snapshot{}, core.UnavailableError("review submission", err)
	}

	view.mu.Lock()
	defer view.mu.Unlock()

	view.store.Insert(created)
	return created, view.snapshotLocked(), nil
}

func (s *Service) UpdateStatus(
	ctx context.Context,
	reviewID int64,
	status Status,
) error {
	if err := s.repo.UpdateStatus(ctx, reviewID, status); err != nil {
		return fmt.Errorf("moderate review: %w", err)
	}
	return nil
}

func (s *Service) ListByStatus(
	ctx context.Context,
	status Status,
	limit int,
) ([]Review, error) {
	reviews, err := s.repo.ListByStatus(ctx, status, s.limits.clamp(limit))
	if err != nil {
		return nil, fmt.Errorf("moderation queue: %w", err)
	}
	return reviews, nil
}

func (s *Service) OpenSessions() int {
	return s.sessions.Len()
}

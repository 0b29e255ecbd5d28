// AngelaMos | 2026
// service.go

package palette

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/carterperez-dev/templates/resource-directory/internal/catalog"
	"github.com/carterperez-dev/templates/resource-directory/internal/core"
	"github.com/carterperez-dev/templates/resource-directory/internal/entitlement"
	"github.com/carterperez-dev/templates/resource-directory/internal/session"
)

type ViewerResolver interface {
	ResolveViewer(ctx context.Context, userID string) (entitlement.Viewer, error)
}

// Session serializes every operation on one palette.
type Session struct {
	mu   sync.Mutex
	ctrl *Controller
}

func (s *Session) snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Snapshot()
}

type Service struct {
	source   catalog.Source
	viewers  ViewerResolver
	sessions *session.Store[*Session]
	tracer   trace.Tracer
}

func NewService(
	source catalog.Source,
	viewers ViewerResolver,
	sessions *session.Store[*Session],
) *Service {
	return &Service{
		source:   source,
		viewers:  viewers,
		sessions: sessions,
		tracer:   otel.Tracer("palette"),
	}
}

func (s *Service) resolveViewer(
	ctx context.Context,
	userID string,
) (entitlement.Viewer, error) {
	viewer, err := s.viewers.ResolveViewer(ctx, userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return entitlement.Viewer{}, core.UnauthorizedError("unknown viewer")
		}
		return entitlement.Viewer{}, fmt.Errorf("resolve viewer: %w", err)
	}
	return viewer, nil
}

func (s *Service) fetchCatalog(ctx context.Context) (*catalog.Catalog, error) {
	resources, err := s.source.FetchCatalog(ctx)
	if err != nil {
		core.CollaboratorErrorsTotal.WithLabelValues("fetch_catalog").Inc()
		return nil, core.UnavailableError("resource directory", err)
	}

	cat, err := catalog.New(resources)
	if err != nil {
		core.CollaboratorErrorsTotal.WithLabelValues("fetch_catalog").Inc()
		return nil, core.UnavailableError("resource directory", err)
	}

	return cat, nil
}

// Open fetches the directory, resolves the caller's entitlements and returns
// an open palette with an empty query.
func (s *Service) Open(
	ctx context.Context,
	userID string,
) (string, Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "palette.Open")
	defer span.End()

	viewer, err := s.resolveViewer(ctx, userID)
	if err != nil {
		return "", Snapshot{}, err
	}

	cat, err := s.fetchCatalog(ctx)
	if err != nil {
		core.SetSpanError(ctx, err)
		return "", Snapshot{}, err
	}

	span.SetAttributes(
		attribute.Int("catalog.size", cat.Len()),
		attribute.String("viewer.role", viewer.Role.String()),
		attribute.String("viewer.plan", viewer.Plan.String()),
	)

	ctrl := NewController(cat, viewer)
	ctrl.Open()

	sess := &Session{ctrl: ctrl}
	id := s.sessions.Put(userID, sess)

	return id, ctrl.Snapshot(), nil
}

func (s *Service) Get(userID, sessionID string) (Snapshot, error) {
	sess, err := s.sessions.Get(userID, sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	return sess.snapshot(), nil
}

func (s *Service) Discard(userID, sessionID string) error {
	return s.sessions.Delete(userID, sessionID)
}

func (s *Service) SetQuery(
	ctx context.Context,
	userID, sessionID, query string,
) (Snapshot, error) {
	sess, err := s.sessions.Get(userID, sessionID)
	if err != nil {
		return Snapshot{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.ctrl.SetQuery(query) && catalog.Searchable(query) {
		snap := sess.ctrl.Snapshot()
		result := "hit"
		if len(snap.Results) == 0 {
			result = "miss"
		}
		core.PaletteSearchesTotal.WithLabelValues(result).Inc()
		core.AddSpanEvent(ctx, "palette.search",
			attribute.Int("results", len(snap.Results)),
		)
		return snap, nil
	}

	return sess.ctrl.Snapshot(), nil
}

func (s *Service) HandleKey(
	userID, sessionID string,
	key Key,
) (Snapshot, *Navigation, error) {
	sess, err := s.sessions.Get(userID, sessionID)
	if err != nil {
		return Snapshot{}, nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	nav, committed := sess.ctrl.HandleKey(key)
	if !committed {
		return sess.ctrl.Snapshot(), nil, nil
	}

	core.PaletteNavigationsTotal.WithLabelValues(nav.Type.String()).Inc()
	return sess.ctrl.Snapshot(), &nav, nil
}

// RefreshViewer re-reads the caller's role and plan, so a downgrade takes
// effect on the very next render.
func (s *Service) RefreshViewer(
	ctx context.Context,
	userID, sessionID string,
) (Snapshot, error) {
	sess, err := s.sessions.Get(userID, sessionID)
	if err != nil {
		return Snapshot{}, err
	}

	viewer, err := s.resolveViewer(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.ctrl.SetViewer(viewer)
	return sess.ctrl.Snapshot(), nil
}

// ReloadCatalog refetches the directory without holding the session lock.
// The result is dropped if the palette was reopened or closed meanwhile.
func (s *Service) ReloadCatalog(
	ctx context.Context,
	userID, sessionID string,
) (Snapshot, bool, error) {
	ctx, span := s.tracer.Start(ctx, "palette.ReloadCatalog")
	defer span.End()

	sess, err := s.sessions.Get(userID, sessionID)
	if err != nil {
		return Snapshot{}, false, err
	}

	sess.mu.Lock()
	epoch := sess.ctrl.Epoch()
	sess.mu.Unlock()

	cat, err := s.fetchCatalog(ctx)
	if err != nil {
		core.SetSpanError(ctx, err)
		return Snapshot{}, false, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	applied := sess.ctrl.ApplyCatalog(epoch, cat)
	span.SetAttributes(attribute.Bool("catalog.applied", applied))

	return sess.ctrl.Snapshot(), applied, nil
}

func (s *Service) OpenSessions() int {
	return s.sessions.Len()
}

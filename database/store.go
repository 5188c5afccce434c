package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tooldesk/tooldesk/backend/models"
)

// ErrNoSnapshot is returned by a Persister that has nothing saved yet.
var ErrNoSnapshot = errors.New("no snapshot")

// Persister stores and loads the whole record store at once.
type Persister interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snapshot *Snapshot) error
}

// Snapshot is the serialized form of every collection and counter.
type Snapshot struct {
	Users             []models.User               `json:"users"`
	WebApps           []models.WebApp             `json:"webApps"`
	Categories        []models.Category           `json:"categories"`
	Subcategories     []models.Subcategory        `json:"subcategories"`
	Requisitions      []models.ProjectRequisition `json:"requisitions"`
	AnalyticsEvents   []models.AnalyticsEvent     `json:"analyticsEvents"`
	NextUserID        int                         `json:"nextUserId"`
	NextAppID         int                         `json:"nextAppId"`
	NextCategoryID    int                         `json:"nextCategoryId"`
	NextSubcategoryID int                         `json:"nextSubcategoryId"`
	NextRequisitionID int                         `json:"nextRequisitionId"`
	NextAnalyticsID   int                         `json:"nextAnalyticsId"`
}

// Store holds every entity in memory and writes the full snapshot through its
// Persister after each mutation. One Store must own a snapshot at a time: the
// mutex only serializes goroutines of this process.
type Store struct {
	mu        sync.RWMutex
	persister Persister
	logger    zerolog.Logger
	now       func() time.Time

	users         *table[models.User]
	apps          *table[models.WebApp]
	categories    *table[models.Category]
	subcategories *table[models.Subcategory]
	requisitions  *table[models.ProjectRequisition]
	events        *table[models.AnalyticsEvent]
}

// NewStore builds a store and loads whatever the persister holds. A missing or
// unreadable snapshot is logged and the store starts empty.
func NewStore(ctx context.Context, persister Persister) *Store {
	s := &Store{
		persister:     persister,
		logger:        log.With().Str("component", "store").Logger(),
		now:           func() time.Time { return time.Now().UTC() },
		users:         newTable(identity[models.User]),
		apps:          newTable(models.WebApp.Clone),
		categories:    newTable(identity[models.Category]),
		subcategories: newTable(identity[models.Subcategory]),
		requisitions:  newTable(models.ProjectRequisition.Clone),
		events:        newTable(identity[models.AnalyticsEvent]),
	}

	snapshot, err := persister.Load(ctx)
	switch {
	case errors.Is(err, ErrNoSnapshot):
		s.logger.Info().Msg("No snapshot found, starting with an empty store")
	case err != nil:
		s.logger.Warn().Err(err).Msg("Could not load snapshot, starting with an empty store")
	default:
		s.restore(snapshot)
		s.logger.Info().
			Int("apps", s.apps.len()).
			Int("categories", s.categories.len()).
			Int("subcategories", s.subcategories.len()).
			Int("requisitions", s.requisitions.len()).
			Int("analyticsEvents", s.events.len()).
			Msg("Loaded snapshot")
	}

	return s
}

func identity[T any](v T) T { return v }

func (s *Store) restore(snapshot *Snapshot) {
	s.users.restore(snapshot.Users, func(u models.User) int { return u.ID }, snapshot.NextUserID)
	s.apps.restore(snapshot.WebApps, func(a models.WebApp) int { return a.ID }, snapshot.NextAppID)
	s.categories.restore(snapshot.Categories, func(c models.Category) int { return c.ID }, snapshot.NextCategoryID)
	s.subcategories.restore(snapshot.Subcategories, func(c models.Subcategory) int { return c.ID }, snapshot.NextSubcategoryID)
	s.requisitions.restore(snapshot.Requisitions, func(r models.ProjectRequisition) int { return r.ID }, snapshot.NextRequisitionID)
	s.events.restore(snapshot.AnalyticsEvents, func(e models.AnalyticsEvent) int { return e.ID }, snapshot.NextAnalyticsID)
}

// snapshotLocked must be called with s.mu held.
func (s *Store) snapshotLocked() *Snapshot {
	return &Snapshot{
		Users:             s.users.all(),
		WebApps:           s.apps.all(),
		Categories:        s.categories.all(),
		Subcategories:     s.subcategories.all(),
		Requisitions:      s.requisitions.all(),
		AnalyticsEvents:   s.events.all(),
		NextUserID:        s.users.nextID,
		NextAppID:         s.apps.nextID,
		NextCategoryID:    s.categories.nextID,
		NextSubcategoryID: s.subcategories.nextID,
		NextRequisitionID: s.requisitions.nextID,
		NextAnalyticsID:   s.events.nextID,
	}
}

// persistLocked writes the full state. A failed write leaves the in-memory
// mutation applied; the next successful write catches the snapshot up. The
// write outlives the caller's cancellation once the mutation is applied.
func (s *Store) persistLocked(ctx context.Context) error {
	if err := s.persister.Save(context.WithoutCancel(ctx), s.snapshotLocked()); err != nil {
		s.logger.Error().Err(err).Msg("Failed to persist snapshot")
		return fmt.Errorf("persist snapshot: %w", err)
	}
	return nil
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func insertRow[T any](ctx context.Context, s *Store, t *table[T], build func(id int, now time.Time) T) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := t.allocate()
	row := build(id, s.now())
	t.insert(id, row)
	return t.clone(row), s.persistLocked(ctx)
}

func getRow[T any](s *Store, t *table[T], id int) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return t.get(id)
}

func listRows[T any](s *Store, t *table[T]) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return t.all()
}

func updateRow[T any](ctx context.Context, s *Store, t *table[T], id int, mutate func(row *T, now time.Time)) (T, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := t.get(id)
	if !ok {
		var zero T
		return zero, false, nil
	}
	mutate(&row, s.now())
	t.insert(id, row)
	return t.clone(row), true, s.persistLocked(ctx)
}

func deleteRow[T any](ctx context.Context, s *Store, t *table[T], id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !t.remove(id) {
		return false, nil
	}
	return true, s.persistLocked(ctx)
}

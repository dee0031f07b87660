package services

import (
	"context"
	"errors"
	"internhub/database"
	"internhub/models"
	"internhub/repository"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, e Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
	return n.err
}

func (n *recordingNotifier) kinds() []EventKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]EventKind, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.Kind)
	}
	return out
}

type recordingAudit struct {
	mu      sync.Mutex
	entries []AuditEntry
	err     error
}

func (a *recordingAudit) Record(_ context.Context, e AuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
	return a.err
}

func (a *recordingAudit) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.Action)
	}
	return out
}

type env struct {
	t        *testing.T
	db       *gorm.DB
	repo     *repository.InternshipRepository
	svc      *InternshipService
	notifier *recordingNotifier
	audit    *recordingAudit

	it, finance           models.Sector
	admin                 Actor
	student, otherStudent Actor
	instrA, instrB        Actor
	financeInstr          Actor
}

var fixedNow = time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

func newEnv(t *testing.T, opts Options) *env {
	t.Helper()
	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "svc.db")+"?_busy_timeout=5000")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	e := &env{
		t:        t,
		db:       db,
		repo:     repository.NewInternshipRepository(db),
		notifier: &recordingNotifier{},
		audit:    &recordingAudit{},
	}
	if opts.Clock == nil {
		opts.Clock = func() time.Time { return fixedNow }
	}
	e.svc = NewInternshipService(e.repo, repository.NewUserRepository(db), repository.NewSectorRepository(db), e.notifier, e.audit, opts)

	e.it = models.Sector{Name: "IT"}
	e.finance = models.Sector{Name: "Finance"}
	require.NoError(t, db.Create(&e.it).Error)
	require.NoError(t, db.Create(&e.finance).Error)

	e.admin = e.user("admin", models.RoleAdmin)
	e.student = e.user("student", models.RoleStudent)
	e.otherStudent = e.user("other", models.RoleStudent)
	e.instrA = e.user("instr-a", models.RoleInstructor, e.it)
	e.instrB = e.user("instr-b", models.RoleInstructor, e.it)
	e.financeInstr = e.user("instr-fin", models.RoleInstructor, e.finance)
	return e
}

// user creates an account and resolves it the way the HTTP layer does.
func (e *env) user(name string, role models.Role, sectors ...models.Sector) Actor {
	e.t.Helper()
	u := models.User{FirstName: name, LastName: "Test", Email: name + "@example.com", Password: "x", Role: role, Sectors: sectors}
	require.NoError(e.t, e.db.Create(&u).Error)
	actor, err := e.svc.ResolveActor(context.Background(), u.ID)
	require.NoError(e.t, err)
	return actor
}

func (e *env) details(sector models.Sector) models.InternshipDetails {
	return models.InternshipDetails{
		Title:       "Backend intern",
		CompanyName: "Acme",
		StartDate:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
		SectorID:    sector.ID,
	}
}

func (e *env) draft(owner Actor, sector models.Sector) *models.Internship {
	e.t.Helper()
	in, err := e.svc.CreateDraft(context.Background(), owner, e.details(sector))
	require.NoError(e.t, err)
	return in
}

func (e *env) submitted(owner Actor, sector models.Sector) *models.Internship {
	e.t.Helper()
	in := e.draft(owner, sector)
	in, err := e.svc.Submit(context.Background(), owner, in.ID)
	require.NoError(e.t, err)
	return in
}

func (e *env) reload(id uint) *models.Internship {
	e.t.Helper()
	in, err := e.repo.FindByID(context.Background(), id)
	require.NoError(e.t, err)
	return in
}

// flakyStore fails FindByID for one id with an infrastructure error.
type flakyStore struct {
	InternshipStore
	failOn uint
}

var errConnectionLost = errors.New("driver: bad connection")

func (s flakyStore) FindByID(ctx context.Context, id uint) (*models.Internship, error) {
	if id == s.failOn {
		return nil, errConnectionLost
	}
	return s.InternshipStore.FindByID(ctx, id)
}

// racingStore runs before() right ahead of every Save, standing in for a
// concurrent request that commits between our load and our write.
type racingStore struct {
	InternshipStore
	before func(ctx context.Context, in *models.Internship)
}

func (s racingStore) Save(ctx context.Context, in *models.Internship) error {
	s.before(ctx, in)
	return s.InternshipStore.Save(ctx, in)
}

// withStore rebuilds the service over store, keeping the env's collaborators.
func (e *env) withStore(store InternshipStore) *InternshipService {
	return NewInternshipService(store, repository.NewUserRepository(e.db), repository.NewSectorRepository(e.db),
		e.notifier, e.audit, Options{Clock: func() time.Time { return fixedNow }})
}

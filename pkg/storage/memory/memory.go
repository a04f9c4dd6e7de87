// Package memory provides an in-process implementation of the storage
// contracts. The original system kept its data in global mutable
// collections; here the same data lives behind the explicit Storage
// interface so the engine receives it by injection and can be tested
// without a database. Transactions take a snapshot of the state and swap it
// back in on commit.
package memory

import (
	"context"
	"sort"
	"sync"

	"biomarker/pkg/domain"
	"biomarker/pkg/storage"

	"github.com/riverqueue/river"
)

// state holds every collection of the store. It is never shared between a
// committed store and an open transaction; Begin deep-copies it.
type state struct {
	biomarkers map[domain.BiomarkerID]domain.Biomarker
	ranges     map[domain.BiomarkerID][]domain.ReferenceRange
	users      map[domain.UserID]domain.User
	sessions   map[domain.SessionID]domain.Session
	bioAges    map[domain.UserID][]domain.BioAgeResult
	jobs       []river.JobArgs
}

func newState() *state {
	return &state{
		biomarkers: map[domain.BiomarkerID]domain.Biomarker{},
		ranges:     map[domain.BiomarkerID][]domain.ReferenceRange{},
		users:      map[domain.UserID]domain.User{},
		sessions:   map[domain.SessionID]domain.Session{},
		bioAges:    map[domain.UserID][]domain.BioAgeResult{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.biomarkers {
		c.biomarkers[k] = v
	}
	for k, v := range s.ranges {
		c.ranges[k] = append([]domain.ReferenceRange(nil), v...)
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.sessions {
		v.Measurements = append([]domain.Measurement(nil), v.Measurements...)
		c.sessions[k] = v
	}
	for k, v := range s.bioAges {
		c.bioAges[k] = append([]domain.BioAgeResult(nil), v...)
	}
	c.jobs = append([]river.JobArgs(nil), s.jobs...)

	return c
}

// Store is the in-memory storage.Storage implementation. A single mutex
// guards the state, which also serializes bio-age appends per user as the
// history invariant requires.
type Store struct {
	mu    sync.RWMutex
	state *state

	// txMu serializes transactions; memory transactions are exclusive.
	txMu sync.Mutex
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{state: newState()}
}

// Seed methods stand in for the external administrative process that
// provisions users and catalog data in a real deployment.

// SeedBiomarker adds a biomarker definition to the catalog.
func (s *Store) SeedBiomarker(b domain.Biomarker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.biomarkers[b.ID] = b
}

// SeedRange adds a reference range to the catalog.
func (s *Store) SeedRange(r domain.ReferenceRange) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ranges[r.BiomarkerID] = append(s.state.ranges[r.BiomarkerID], r)
}

// SeedUser adds a user record.
func (s *Store) SeedUser(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.users[u.ID] = u
}

// Jobs returns the background jobs recorded so far, in insertion order.
func (s *Store) Jobs() []river.JobArgs {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]river.JobArgs(nil), s.state.jobs...)
}

// Close releases nothing for the memory store; it exists to satisfy
// storage.Storage.
func (s *Store) Close() error { return nil }

// Begin starts an exclusive transaction over a snapshot of the state.
func (s *Store) Begin(_ context.Context) (storage.TxStorage, error) {
	s.txMu.Lock()
	s.mu.RLock()
	work := s.state.clone()
	s.mu.RUnlock()

	return &tx{parent: s, state: work}, nil
}

// WithTx is a helper that starts a transaction, executes the provided callback
// with a transactional storage handle, and commits if the callback returns nil.
// If the callback returns an error, the transaction is rolled back.
func (s *Store) WithTx(ctx context.Context, cb func(storage storage.AllStorage) error) error {
	t, err := s.Begin(ctx)
	if err != nil {
		return err
	}

	if err := cb(t); err != nil {
		_ = t.Rollback()

		return err
	}

	return t.Commit()
}

func (s *Store) Biomarkers(_ context.Context) ([]domain.Biomarker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.biomarkerList(), nil
}

func (s *Store) BiomarkerByID(_ context.Context, id domain.BiomarkerID) (*domain.Biomarker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.biomarkerByID(id), nil
}

func (s *Store) RangesByBiomarker(_ context.Context, id domain.BiomarkerID) ([]domain.ReferenceRange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]domain.ReferenceRange(nil), s.state.ranges[id]...), nil
}

func (s *Store) Users(_ context.Context) ([]storage.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.userRecords(), nil
}

func (s *Store) UserByID(_ context.Context, id domain.UserID) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.userByID(id), nil
}

func (s *Store) SessionsByUser(_ context.Context, userID domain.UserID) ([]domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.sessionsByUser(userID), nil
}

func (s *Store) SessionByID(_ context.Context,
	userID domain.UserID,
	id domain.SessionID) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.sessionByID(userID, id), nil
}

func (s *Store) LatestMeasurements(_ context.Context, userID domain.UserID) ([]domain.Measurement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.latestMeasurements(userID), nil
}

func (s *Store) StoreSession(_ context.Context, session domain.Session) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.storeSession(session), nil
}

func (s *Store) BioAgeHistory(_ context.Context, userID domain.UserID) ([]domain.BioAgeResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]domain.BioAgeResult(nil), s.state.bioAges[userID]...), nil
}

func (s *Store) AppendBioAge(_ context.Context, result domain.BioAgeResult) (*domain.BioAgeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.appendBioAge(result), nil
}

func (s *Store) AddJob(_ context.Context, args river.JobArgs, _ *river.InsertOpts) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.addJob(args), nil
}

// tx is a transactional view over a cloned state. Commit swaps the clone
// into the parent store; Rollback simply discards it.
type tx struct {
	parent *Store
	state  *state
	done   bool
}

func (t *tx) Commit() error {
	if t.done {
		return storage.ErrNotInTx
	}
	t.done = true

	t.parent.mu.Lock()
	t.parent.state = t.state
	t.parent.mu.Unlock()
	t.parent.txMu.Unlock()

	return nil
}

func (t *tx) Rollback() error {
	if t.done {
		return storage.ErrNotInTx
	}
	t.done = true
	t.parent.txMu.Unlock()

	return nil
}

func (t *tx) Biomarkers(_ context.Context) ([]domain.Biomarker, error) {
	return t.state.biomarkerList(), nil
}

func (t *tx) BiomarkerByID(_ context.Context, id domain.BiomarkerID) (*domain.Biomarker, error) {
	return t.state.biomarkerByID(id), nil
}

func (t *tx) RangesByBiomarker(_ context.Context, id domain.BiomarkerID) ([]domain.ReferenceRange, error) {
	return append([]domain.ReferenceRange(nil), t.state.ranges[id]...), nil
}

func (t *tx) Users(_ context.Context) ([]storage.UserRecord, error) {
	return t.state.userRecords(), nil
}

func (t *tx) UserByID(_ context.Context, id domain.UserID) (*domain.User, error) {
	return t.state.userByID(id), nil
}

func (t *tx) SessionsByUser(_ context.Context, userID domain.UserID) ([]domain.Session, error) {
	return t.state.sessionsByUser(userID), nil
}

func (t *tx) SessionByID(_ context.Context,
	userID domain.UserID,
	id domain.SessionID) (*domain.Session, error) {
	return t.state.sessionByID(userID, id), nil
}

func (t *tx) LatestMeasurements(_ context.Context, userID domain.UserID) ([]domain.Measurement, error) {
	return t.state.latestMeasurements(userID), nil
}

func (t *tx) StoreSession(_ context.Context, session domain.Session) (*domain.Session, error) {
	return t.state.storeSession(session), nil
}

func (t *tx) BioAgeHistory(_ context.Context, userID domain.UserID) ([]domain.BioAgeResult, error) {
	return append([]domain.BioAgeResult(nil), t.state.bioAges[userID]...), nil
}

func (t *tx) AppendBioAge(_ context.Context, result domain.BioAgeResult) (*domain.BioAgeResult, error) {
	return t.state.appendBioAge(result), nil
}

func (t *tx) AddJob(_ context.Context, args river.JobArgs, _ *river.InsertOpts) (bool, error) {
	return t.state.addJob(args), nil
}

// state query/mutation helpers. Callers hold whatever lock applies.

func (s *state) biomarkerList() []domain.Biomarker {
	out := make([]domain.Biomarker, 0, len(s.biomarkers))
	for _, b := range s.biomarkers {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

func (s *state) biomarkerByID(id domain.BiomarkerID) *domain.Biomarker {
	b, ok := s.biomarkers[id]
	if !ok {
		return nil
	}

	return &b
}

func (s *state) userRecords() []storage.UserRecord {
	counts := map[domain.UserID]int{}
	for _, sess := range s.sessions {
		counts[sess.UserID]++
	}

	out := make([]storage.UserRecord, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, storage.UserRecord{User: u, SessionCount: counts[u.ID]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].User.SEQN < out[j].User.SEQN })

	return out
}

func (s *state) userByID(id domain.UserID) *domain.User {
	u, ok := s.users[id]
	if !ok {
		return nil
	}

	return &u
}

func (s *state) sessionsByUser(userID domain.UserID) []domain.Session {
	var out []domain.Session
	for _, sess := range s.sessions {
		if sess.UserID != userID {
			continue
		}
		sess.Measurements = append([]domain.Measurement(nil), sess.Measurements...)
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}

		return out[i].Date.Before(out[j].Date)
	})

	return out
}

func (s *state) sessionByID(userID domain.UserID, id domain.SessionID) *domain.Session {
	sess, ok := s.sessions[id]
	if !ok || sess.UserID != userID {
		return nil
	}
	sess.Measurements = append([]domain.Measurement(nil), sess.Measurements...)

	return &sess
}

func (s *state) latestMeasurements(userID domain.UserID) []domain.Measurement {
	latest := map[domain.BiomarkerID]domain.Measurement{}
	for _, sess := range s.sessionsByUser(userID) {
		for _, m := range sess.Measurements {
			latest[m.BiomarkerID] = m
		}
	}

	out := make([]domain.Measurement, 0, len(latest))
	for _, m := range latest {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BiomarkerID < out[j].BiomarkerID })

	return out
}

func (s *state) storeSession(session domain.Session) *domain.Session {
	session.Measurements = append([]domain.Measurement(nil), session.Measurements...)
	s.sessions[session.ID] = session

	return &session
}

func (s *state) appendBioAge(result domain.BioAgeResult) *domain.BioAgeResult {
	s.bioAges[result.UserID] = append(s.bioAges[result.UserID], result)

	return &result
}

func (s *state) addJob(args river.JobArgs) bool {
	s.jobs = append(s.jobs, args)

	return true
}

var _ storage.Storage = (*Store)(nil)
var _ storage.TxStorage = (*tx)(nil)

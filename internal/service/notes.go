package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/and161185/notepad/internal/collection"
	"github.com/and161185/notepad/internal/errs"
	"github.com/and161185/notepad/internal/model"
	"github.com/and161185/notepad/internal/repository"
	"github.com/and161185/notepad/internal/session"
)

// tombstone marks an id whose deletion was confirmed; nothing may re-add it.
const tombstone = math.MaxUint64

// Session is the part of the session controller the note service depends on.
type Session interface {
	Current() (token string, gen uint64, ok bool)
	Expire(gen uint64) (bool, error)
	Subscribe(fn session.Listener) (cancel func())
}

// NoteService keeps the collection in sync with the remote API. Local state
// changes only after the server confirmed an operation, and only if the
// session that issued the request is still the current one.
type NoteService struct {
	repo    repository.NoteRepository
	sess    Session
	coll    *collection.Store
	log     *zap.Logger
	timeout time.Duration
	onError func(error)

	mu      sync.Mutex
	gen     uint64                // generation the bookkeeping below belongs to
	seq     uint64                // request issue counter within gen
	marks   map[string]uint64     // id -> seq of the newest applied result
	latest  map[string]model.Note // id -> newest applied create/update result
	listSeq uint64                // seq of the newest applied list

	flight singleflight.Group

	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	unsubscribe func()
}

// ticket identifies one issued request.
type ticket struct {
	token string
	gen   uint64
	seq   uint64
}

// NoteOption configures a NoteService.
type NoteOption func(*NoteService)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) NoteOption {
	return func(s *NoteService) {
		if l != nil {
			s.log = l
		}
	}
}

// WithSyncTimeout bounds background fetches triggered by session changes.
func WithSyncTimeout(d time.Duration) NoteOption {
	return func(s *NoteService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithErrorHandler receives errors from background fetches.
func WithErrorHandler(fn func(error)) NoteOption {
	return func(s *NoteService) { s.onError = fn }
}

// NewNoteService wires the service to sess: every session change clears the
// collection, and logins/restores start a background fetch.
func NewNoteService(repo repository.NoteRepository, sess Session, coll *collection.Store, opts ...NoteOption) *NoteService {
	s := &NoteService{
		repo:    repo,
		sess:    sess,
		coll:    coll,
		log:     zap.NewNop(),
		timeout: 30 * time.Second,
		marks:   make(map[string]uint64),
		latest:  make(map[string]model.Note),
	}
	for _, o := range opts {
		o(s)
	}
	if s.onError == nil {
		s.onError = func(err error) { s.log.Warn("background sync failed", zap.Error(err)) }
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.unsubscribe = sess.Subscribe(s.onSessionChange)
	return s
}

// Notes returns the current collection.
func (s *NoteService) Notes() []model.Note { return s.coll.Snapshot() }

// Wait blocks until background fetches have finished.
func (s *NoteService) Wait() { s.wg.Wait() }

// Close detaches from the session and waits for background work.
func (s *NoteService) Close() {
	s.unsubscribe()
	s.cancel()
	s.wg.Wait()
}

// Refresh fetches all notes and replaces the collection. Concurrent calls in
// the same session share one request.
func (s *NoteService) Refresh(ctx context.Context) ([]model.Note, error) {
	t, err := s.begin()
	if err != nil {
		return nil, err
	}
	v, err, _ := s.flight.Do(fmt.Sprintf("list:%d", t.gen), func() (any, error) {
		return s.refresh(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.Note), nil
}

func (s *NoteService) refresh(ctx context.Context, t ticket) ([]model.Note, error) {
	notes, err := s.repo.List(ctx, t.token)
	if err != nil {
		return nil, s.failed(t, "list", "", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.currentLocked(t) {
		return nil, s.stale(t, "list")
	}
	if t.seq < s.listSeq {
		// a newer list already landed
		return s.coll.Snapshot(), nil
	}
	merged := s.mergeLocked(notes, t.seq)
	s.coll.ReplaceAll(merged)
	s.listSeq = t.seq
	s.log.Debug("notes refreshed", zap.Int("count", len(merged)), zap.Uint64("generation", t.gen))
	return merged, nil
}

// mergeLocked combines a fetched list with local results of requests issued
// after the list request.
func (s *NoteService) mergeLocked(fetched []model.Note, listSeq uint64) []model.Note {
	local := s.coll.Snapshot()
	byID := make(map[string]model.Note, len(local))
	for _, n := range local {
		byID[n.ID] = n
	}

	out := make([]model.Note, 0, len(fetched))
	seen := make(map[string]bool, len(fetched))
	for _, n := range fetched {
		seen[n.ID] = true
		if m := s.marks[n.ID]; m > listSeq {
			if m == tombstone {
				continue
			}
			if l, ok := byID[n.ID]; ok {
				n = l
			} else if l, ok := s.latest[n.ID]; ok {
				// confirmed while the list was in flight, before the note was loaded
				n = l
			}
		}
		out = append(out, n)
	}
	for _, l := range local {
		if !seen[l.ID] && s.marks[l.ID] > listSeq && s.marks[l.ID] != tombstone {
			out = append(out, l)
		}
	}
	return out
}

// Create stores a new note and appends the server's copy to the collection.
func (s *NoteService) Create(ctx context.Context, title, content string) (model.Note, error) {
	t, err := s.begin()
	if err != nil {
		return model.Note{}, err
	}
	n, err := s.repo.Create(ctx, t.token, title, content)
	if err != nil {
		return model.Note{}, s.failed(t, "create", "", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.currentLocked(t) {
		return n, s.stale(t, "create")
	}
	if err := s.coll.Append(n); err != nil {
		return model.Note{}, fmt.Errorf("create note: %w", err)
	}
	s.markLocked(n, t.seq)
	return n, nil
}

// Update replaces a note. When the note no longer exists server-side it is
// removed locally and ErrNotFound is returned.
func (s *NoteService) Update(ctx context.Context, id, title, content string) (model.Note, error) {
	t, err := s.begin()
	if err != nil {
		return model.Note{}, err
	}
	n, err := s.repo.Update(ctx, t.token, id, title, content)
	if errors.Is(err, errs.ErrNotFound) {
		s.mu.Lock()
		current := s.currentLocked(t)
		if current && t.seq >= s.marks[id] {
			s.coll.RemoveByID(id)
			s.marks[id] = tombstone
			delete(s.latest, id)
		}
		s.mu.Unlock()
		if !current {
			return model.Note{}, s.stale(t, "update")
		}
	}
	if err != nil {
		return model.Note{}, s.failed(t, "update", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.currentLocked(t) {
		return n, s.stale(t, "update")
	}
	if t.seq < s.marks[id] {
		s.log.Debug("update superseded", zap.String("id", id), zap.Uint64("seq", t.seq))
		return n, nil
	}
	n.ID = id
	s.coll.ReplaceByID(id, n)
	s.markLocked(n, t.seq)
	return n, nil
}

// Delete removes a note. Deleting a note that is already gone succeeds.
func (s *NoteService) Delete(ctx context.Context, id string) error {
	t, err := s.begin()
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, t.token, id); err != nil {
		return s.failed(t, "delete", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.currentLocked(t) {
		return s.stale(t, "delete")
	}
	s.coll.RemoveByID(id)
	s.marks[id] = tombstone
	delete(s.latest, id)
	return nil
}

// begin snapshots the session and issues a sequence number.
func (s *NoteService) begin() (ticket, error) {
	token, gen, ok := s.sess.Current()
	if !ok {
		return ticket{}, errs.ErrNotAuthenticated
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen < s.gen {
		// the session changed between the snapshot and the lock
		return ticket{}, fmt.Errorf("begin: %w", errs.ErrSessionChanged)
	}
	s.resetLocked(gen)
	s.seq++
	return ticket{token: token, gen: gen, seq: s.seq}, nil
}

func (s *NoteService) currentLocked(t ticket) bool {
	_, gen, ok := s.sess.Current()
	return ok && gen == t.gen && s.gen == t.gen
}

// resetLocked moves the bookkeeping forward to gen. Generations only grow.
func (s *NoteService) resetLocked(gen uint64) {
	if gen <= s.gen {
		return
	}
	s.gen, s.seq, s.listSeq = gen, 0, 0
	s.marks = make(map[string]uint64)
	s.latest = make(map[string]model.Note)
}

func (s *NoteService) markLocked(n model.Note, seq uint64) {
	if seq > s.marks[n.ID] {
		s.marks[n.ID] = seq
		s.latest[n.ID] = n
	}
}

// failed applies the error policy: a rejected token ends the session that sent it.
func (s *NoteService) failed(t ticket, op, id string, err error) error {
	fields := []zap.Field{zap.String("op", op), zap.Uint64("generation", t.gen), zap.Error(err)}
	if id != "" {
		fields = append(fields, zap.String("id", id))
	}
	switch {
	case errors.Is(err, errs.ErrUnauthorized):
		s.log.Warn("token rejected", fields...)
		if _, xerr := s.sess.Expire(t.gen); xerr != nil {
			s.log.Error("forced logout incomplete", zap.Error(xerr))
			return errors.Join(err, xerr)
		}
	case errors.Is(err, errs.ErrNetwork):
		s.log.Warn("request failed", fields...)
	default:
		s.log.Info("request rejected", fields...)
	}
	return err
}

func (s *NoteService) stale(t ticket, op string) error {
	s.log.Debug("response discarded", zap.String("op", op), zap.Uint64("generation", t.gen))
	return fmt.Errorf("%s: %w", op, errs.ErrSessionChanged)
}

func (s *NoteService) onSessionChange(ch session.Change) {
	s.mu.Lock()
	s.resetLocked(ch.Generation)
	s.coll.Clear()
	s.mu.Unlock()

	if ch.State != model.Authenticated {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
		defer cancel()
		_, err := s.Refresh(ctx)
		if err == nil || errors.Is(err, errs.ErrSessionChanged) || errors.Is(err, errs.ErrNotAuthenticated) {
			// the session moved on before the fetch completed
			return
		}
		if s.ctx.Err() != nil {
			return
		}
		s.onError(err)
	}()
}

package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// UntitledLayout formats the timestamp of default note titles.
const UntitledLayout = "1/2/2006, 3:04:05 PM"

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the logger for the service and the draft controllers it creates.
func WithLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithServiceClock sets the time source for default titles, optimistic
// timestamps and debounce timers.
func WithServiceClock(clock Clock) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithDraftOptions passes options to every draft controller the service creates.
func WithDraftOptions(opts ...DraftOption) ServiceOption {
	return func(s *Service) {
		s.draftOpts = append(s.draftOpts, opts...)
	}
}

// WithReconcileTimeout bounds the list refresh that follows a background save.
func WithReconcileTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.reconcileTimeout = d
		}
	}
}

// Service is the workspace: it follows the session store, selects the
// repository for the current session, owns the notes collection and routes
// edits through a DraftController.
//
// Mutations are applied to the local collection first and then reconciled
// with a full List from the repository; the listed collection always wins.
type Service struct {
	sessions         SessionStore
	factory          RepositoryFactory
	clock            Clock
	logger           *zap.Logger
	draftOpts        []DraftOption
	reconcileTimeout time.Duration

	mu          sync.RWMutex
	started     bool
	session     *Session
	repo        Repository
	drafts      *DraftController
	notes       []Note
	epoch       uint64 // bumped on every session switch
	seq         uint64 // last reconcile issued
	reconciled  *time.Time
	unsubscribe func()
}

// NewService creates a workspace bound to a session store. factory builds the
// repository for each session that is established.
func NewService(sessions SessionStore, factory RepositoryFactory, opts ...ServiceOption) *Service {
	s := &Service{
		sessions:         sessions,
		factory:          factory,
		clock:            RealClock{},
		logger:           zap.NewNop(),
		reconcileTimeout: DefaultSaveTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the persisted session and follows later changes of the store.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.unsubscribe == nil {
		s.unsubscribe = s.sessions.Subscribe(func(sess *Session) {
			if err := s.switchTo(context.Background(), sess); err != nil {
				s.logger.Warn("failed to follow session change", zap.Error(err))
			}
		})
	}
	s.mu.Unlock()

	return s.switchTo(ctx, s.sessions.Load())
}

// Close stops following the session store and flushes every unsaved draft.
func (s *Service) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	drafts := s.drafts
	s.mu.Unlock()

	if drafts == nil {
		return nil
	}
	err := drafts.FlushAll(ctx)
	drafts.Close()
	drafts.Wait()
	return err
}

// SetSession switches the workspace to sess and persists it. The session is
// kept even when the first listing fails; that error is returned.
func (s *Service) SetSession(ctx context.Context, sess Session) error {
	switchErr := s.switchTo(ctx, &sess)
	if err := s.sessions.Set(sess); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return switchErr
}

// EnterGuest starts a local-only session.
func (s *Service) EnterGuest(ctx context.Context) error {
	return s.SetSession(ctx, GuestSession())
}

// Logout clears the persisted session, the collection and all drafts.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.switchTo(ctx, nil); err != nil {
		return err
	}
	if err := s.sessions.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Session returns the current session, or nil when logged out.
func (s *Service) Session() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil
	}
	cp := *s.session
	return &cp
}

// Mode reports how notes are currently stored.
func (s *Service) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Mode()
}

// Drafts exposes the controller of the current session (nil when logged out).
func (s *Service) Drafts() *DraftController {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.drafts
}

func (s *Service) switchTo(ctx context.Context, sess *Session) error {
	if sess != nil && sess.Mode() == ModeLoggedOut {
		sess = nil
	}

	s.mu.Lock()
	if s.started && s.session.SameAs(sess) {
		s.mu.Unlock()
		return nil
	}
	s.started = true

	if s.drafts != nil {
		s.drafts.Reset()
	}
	s.epoch++
	s.session = nil
	s.repo = nil
	s.drafts = nil
	s.notes = nil

	if sess == nil {
		s.mu.Unlock()
		s.logger.Info("logged out")
		return nil
	}

	repo, err := s.factory(*sess)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to open repository for %s: %w", sess.Name, err)
	}
	cp := *sess
	s.session = &cp
	s.repo = repo
	s.drafts = s.newDrafts(repo, s.epoch)
	s.mu.Unlock()

	s.logger.Info("session established",
		zap.String("user", sess.Name), zap.String("mode", string(sess.Mode())))

	notes, err := s.Refresh(ctx)
	if err != nil {
		return err
	}
	if len(notes) > 0 {
		_, err = s.Open(notes[0].ID)
	}
	return err
}

func (s *Service) newDrafts(repo Repository, epoch uint64) *DraftController {
	opts := []DraftOption{
		WithClock(s.clock),
		WithDraftLogger(s.logger),
	}
	opts = append(opts, s.draftOpts...)
	opts = append(opts, WithSaveHook(func(n Note) { s.afterSave(epoch, n) }))
	return NewDraftController(repo, opts...)
}

// current returns the repository of the active session.
func (s *Service) current() (Repository, *DraftController, uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.repo == nil {
		return nil, nil, 0, ErrNoSession
	}
	return s.repo, s.drafts, s.epoch, nil
}

// Refresh replaces the collection with the repository listing. A listing that
// returns after a newer one was issued, or after the session changed, is
// dropped.
func (s *Service) Refresh(ctx context.Context) ([]Note, error) {
	repo, _, epoch, err := s.current()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	notes, err := repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	if notes == nil {
		notes = []Note{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch || seq != s.seq {
		s.logger.Debug("dropping stale listing", zap.Uint64("seq", seq))
		return cloneNotes(s.notes), nil
	}
	s.notes = notes
	now := s.clock.Now()
	s.reconciled = &now
	return cloneNotes(notes), nil
}

// Notes returns a copy of the collection in repository order.
func (s *Service) Notes() []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneNotes(s.notes)
}

// Note returns the collection entry for id.
func (s *Service) Note(id string) (Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, n := range s.notes {
		if n.ID == id {
			return n, nil
		}
	}
	return Note{}, fmt.Errorf("note %s: %w", id, ErrNotFound)
}

// Open makes the note with id the active edit context.
func (s *Service) Open(id string) (Draft, error) {
	_, drafts, _, err := s.current()
	if err != nil {
		return Draft{}, err
	}
	n, err := s.Note(id)
	if err != nil {
		return Draft{}, err
	}
	return drafts.Open(n), nil
}

// Current returns the active draft.
func (s *Service) Current() (Draft, bool) {
	_, drafts, _, err := s.current()
	if err != nil {
		return Draft{}, false
	}
	return drafts.Current()
}

// Create adds a note and opens it. An empty title becomes "Untitled - <time>".
func (s *Service) Create(ctx context.Context, title, content string) (Note, error) {
	n, err := s.Insert(ctx, title, content)
	if err != nil {
		return Note{}, err
	}
	if _, drafts, _, err := s.current(); err == nil {
		drafts.Open(n)
	}
	return n, nil
}

// Insert adds a note without changing the active one.
func (s *Service) Insert(ctx context.Context, title, content string) (Note, error) {
	repo, _, epoch, err := s.current()
	if err != nil {
		return Note{}, err
	}
	if title == "" {
		title = "Untitled - " + s.clock.Now().Format(UntitledLayout)
	}

	n, err := repo.Create(ctx, title, content)
	if err != nil {
		return Note{}, fmt.Errorf("failed to create note: %w", err)
	}

	s.apply(epoch, func(notes []Note) []Note {
		return append([]Note{n}, notes...)
	})
	s.reconcile(ctx)
	return n, nil
}

// Delete removes a note. When it was the active one, the first remaining
// note is opened.
func (s *Service) Delete(ctx context.Context, id string) error {
	repo, drafts, epoch, err := s.current()
	if err != nil {
		return err
	}

	if err := repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete note %s: %w", id, err)
	}
	wasActive := drafts.ActiveID() == id
	drafts.Discard(id)

	s.apply(epoch, func(notes []Note) []Note {
		out := notes[:0:0]
		for _, n := range notes {
			if n.ID != id {
				out = append(out, n)
			}
		}
		return out
	})
	s.reconcile(ctx)

	if wasActive {
		if notes := s.Notes(); len(notes) > 0 {
			drafts.Open(notes[0])
		}
	}
	return nil
}

// Edit replaces title and content of the active draft.
func (s *Service) Edit(title, content string) error {
	_, drafts, _, err := s.current()
	if err != nil {
		return err
	}
	return drafts.Edit(title, content)
}

// SetTitle replaces the title of the active draft.
func (s *Service) SetTitle(title string) error {
	_, drafts, _, err := s.current()
	if err != nil {
		return err
	}
	return drafts.SetTitle(title)
}

// SetContent replaces the content of the active draft.
func (s *Service) SetContent(content string) error {
	_, drafts, _, err := s.current()
	if err != nil {
		return err
	}
	return drafts.SetContent(content)
}

// Save persists the active draft immediately.
func (s *Service) Save(ctx context.Context) error {
	_, drafts, _, err := s.current()
	if err != nil {
		return err
	}
	return drafts.Save(ctx)
}

// Flush saves the active draft if it has unsaved edits.
func (s *Service) Flush(ctx context.Context) error {
	_, drafts, _, err := s.current()
	if err != nil {
		return err
	}
	return drafts.Flush(ctx)
}

// Wait blocks until background saves of the current session have resolved.
func (s *Service) Wait() {
	if _, drafts, _, err := s.current(); err == nil {
		drafts.Wait()
	}
}

// afterSave applies a successful save to the collection and reconciles.
func (s *Service) afterSave(epoch uint64, saved Note) {
	s.mu.RLock()
	stale := epoch != s.epoch
	s.mu.RUnlock()
	if stale {
		return
	}

	now := s.clock.Now()
	s.apply(epoch, func(notes []Note) []Note {
		for i := range notes {
			if notes[i].ID == saved.ID {
				notes[i].Title = saved.Title
				notes[i].Content = saved.Content
				notes[i].UpdatedAt = now
			}
		}
		return notes
	})

	ctx, cancel := context.WithTimeout(context.Background(), s.reconcileTimeout)
	defer cancel()
	s.reconcile(ctx)
}

// apply mutates the collection optimistically unless the session changed.
func (s *Service) apply(epoch uint64, fn func([]Note) []Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return
	}
	s.notes = fn(s.notes)
}

// reconcile refreshes the collection; failures keep the optimistic state.
func (s *Service) reconcile(ctx context.Context) {
	if _, err := s.Refresh(ctx); err != nil && !errors.Is(err, ErrNoSession) {
		s.logger.Warn("reconcile failed, keeping local state", zap.Error(err))
	}
}

func cloneNotes(notes []Note) []Note {
	if notes == nil {
		return nil
	}
	out := make([]Note, len(notes))
	copy(out, notes)
	return out
}

package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"go.uber.org/zap"
)

// SaveStatus is the persistence state of a draft buffer.
type SaveStatus string

const (
	StatusSaved   SaveStatus = "saved"
	StatusPending SaveStatus = "pending"
	StatusSaving  SaveStatus = "saving"
)

const (
	// DefaultDebounce is the quiet period after the last edit before autosave.
	DefaultDebounce = 1500 * time.Millisecond
	// DefaultSaveTimeout bounds a single background save call.
	DefaultSaveTimeout = 30 * time.Second
)

// Draft is a snapshot of the edit buffer of one note.
type Draft struct {
	NoteID  string     `json:"note_id"`
	Title   string     `json:"title"`
	Content string     `json:"content"`
	Status  SaveStatus `json:"status"`
}

// buffer is the mutable edit state of one note. Buffers are keyed by note ID
// so a save resolving late can only ever touch the note it was issued for.
type buffer struct {
	draft    Draft
	attached bool // buffer belongs to the active note

	timer Timer
	gen   uint64 // invalidates timers that were stopped too late

	inFlight bool
	dirty    bool          // edited while a save was in flight
	done     chan struct{} // closed when the in-flight save resolves
}

// DraftOption configures a DraftController.
type DraftOption func(*DraftController)

// WithDebounce sets the autosave quiet period.
func WithDebounce(d time.Duration) DraftOption {
	return func(c *DraftController) {
		if d > 0 {
			c.debounce = d
		}
	}
}

// WithClock injects the time source used for debounce timers.
func WithClock(clock Clock) DraftOption {
	return func(c *DraftController) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithDraftLogger sets the logger for save failures and transitions.
func WithDraftLogger(logger *zap.Logger) DraftOption {
	return func(c *DraftController) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSaveTimeout bounds saves issued from timers and background flushes.
func WithSaveTimeout(d time.Duration) DraftOption {
	return func(c *DraftController) {
		if d > 0 {
			c.saveTimeout = d
		}
	}
}

// WithFlushOnLeave controls whether a pending draft is saved in the background
// when another note is opened. Enabled by default.
func WithFlushOnLeave(enabled bool) DraftOption {
	return func(c *DraftController) {
		c.flushOnLeave = enabled
	}
}

// WithSaveHook registers a callback invoked after every successful save.
func WithSaveHook(fn func(Note)) DraftOption {
	return func(c *DraftController) {
		c.onSaved = fn
	}
}

// DraftController owns the edit buffer of the active note and debounces its
// persistence through Repository.Update.
//
// State machine per note:
//
//	saved   --edit-->        pending (timer restarted)
//	pending --timer/Save-->  saving
//	saving  --ok-->          saved   (pending if edited meanwhile)
//	saving  --error-->       pending (text kept)
//
// At most one Update per note is outstanding. An edit arriving while saving
// marks the buffer dirty and the debounce is re-armed once the call resolves.
type DraftController struct {
	repo         Repository
	clock        Clock
	logger       *zap.Logger
	debounce     time.Duration
	saveTimeout  time.Duration
	flushOnLeave bool
	onSaved      func(Note)

	mu        sync.Mutex
	buffers   map[string]*buffer
	active    string
	listeners map[int]func(Draft)
	nextID    int

	bg sync.WaitGroup
}

// NewDraftController creates a controller saving through repo.
func NewDraftController(repo Repository, opts ...DraftOption) *DraftController {
	c := &DraftController{
		repo:         repo,
		clock:        RealClock{},
		logger:       zap.NewNop(),
		debounce:     DefaultDebounce,
		saveTimeout:  DefaultSaveTimeout,
		flushOnLeave: true,
		buffers:      make(map[string]*buffer),
		listeners:    make(map[int]func(Draft)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open makes note the active edit context with status saved.
// If a buffer for the same note survives from earlier (a save still in flight
// or a failed save), it is re-attached so newer text is never replaced by the
// stored version.
func (c *DraftController) Open(note Note) Draft {
	c.mu.Lock()
	var changed []Draft
	if d, ok := c.leaveLocked(); ok {
		changed = append(changed, d)
	}

	b, ok := c.buffers[note.ID]
	if !ok {
		b = &buffer{draft: Draft{
			NoteID:  note.ID,
			Title:   note.Title,
			Content: note.Content,
			Status:  StatusSaved,
		}}
		c.buffers[note.ID] = b
	}
	b.attached = true
	c.active = note.ID
	d := b.draft
	changed = append(changed, d)
	c.mu.Unlock()

	c.notify(changed...)
	return d
}

// Close leaves the active note without opening another one.
func (c *DraftController) Close() {
	c.mu.Lock()
	d, ok := c.leaveLocked()
	c.mu.Unlock()
	if ok {
		c.notify(d)
	}
}

// Discard drops the buffer of id without saving it, e.g. after the note was
// deleted. The result of a save still in flight for id is ignored.
func (c *DraftController) Discard(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok := c.buffers[id]
	if !ok {
		return
	}
	c.dropLocked(b)
	if c.active == id {
		c.active = ""
	}
}

// Reset cancels every timer and drops all buffers. Used when the session
// changes; in-flight saves resolve into nothing.
func (c *DraftController) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, b := range c.buffers {
		c.dropLocked(b)
	}
	c.active = ""
}

// dropLocked removes b. A Save waiting on its in-flight call is released and
// finds the buffer gone; the call's own result is ignored by resolve.
func (c *DraftController) dropLocked(b *buffer) {
	c.stopTimerLocked(b)
	delete(c.buffers, b.draft.NoteID)
	if b.inFlight {
		b.inFlight = false
		close(b.done)
		b.done = nil
	}
}

// Edit replaces title and content of the active draft.
func (c *DraftController) Edit(title, content string) error {
	return c.edit(func(d *Draft) {
		d.Title = title
		d.Content = content
	})
}

// SetTitle replaces the title of the active draft.
func (c *DraftController) SetTitle(title string) error {
	return c.edit(func(d *Draft) { d.Title = title })
}

// SetContent replaces the content of the active draft.
func (c *DraftController) SetContent(content string) error {
	return c.edit(func(d *Draft) { d.Content = content })
}

func (c *DraftController) edit(apply func(d *Draft)) error {
	c.mu.Lock()
	b, err := c.activeLocked()
	if err != nil {
		c.mu.Unlock()
		return err
	}

	apply(&b.draft)
	b.draft.Status = StatusPending
	if b.inFlight {
		b.dirty = true
	} else {
		c.armLocked(b)
	}
	d := b.draft
	c.mu.Unlock()

	c.notify(d)
	return nil
}

// Save cancels the debounce timer and persists the active draft now. If a
// save for the same note is already in flight it waits for that call first.
func (c *DraftController) Save(ctx context.Context) error {
	c.mu.Lock()
	b, err := c.activeLocked()
	if err != nil {
		c.mu.Unlock()
		return err
	}
	id := b.draft.NoteID

	for {
		c.stopTimerLocked(b)
		if !b.inFlight {
			break
		}
		done := b.done
		c.mu.Unlock()

		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}

		c.mu.Lock()
		if b = c.buffers[id]; b == nil {
			c.mu.Unlock()
			return fmt.Errorf("failed to save note %s: %w", id, ErrNoActiveNote)
		}
	}

	d := c.beginLocked(b)
	c.mu.Unlock()
	c.notify(d)

	err = c.persist(ctx, d)
	c.resolve(b, d, err)
	if err != nil {
		return fmt.Errorf("failed to save note %s: %w", id, err)
	}
	return nil
}

// Flush saves the active draft if it has unsaved edits.
func (c *DraftController) Flush(ctx context.Context) error {
	d, ok := c.Current()
	if !ok || d.Status == StatusSaved {
		return nil
	}
	return c.Save(ctx)
}

// FlushAll saves the active draft and every left note whose background save
// failed. Used on shutdown so no pending text is abandoned.
func (c *DraftController) FlushAll(ctx context.Context) error {
	var errs []error
	if err := c.Flush(ctx); err != nil {
		errs = append(errs, err)
	}
	c.Wait()

	type flight struct {
		b *buffer
		d Draft
	}
	var flights []flight
	c.mu.Lock()
	for _, b := range c.buffers {
		if b.attached || b.inFlight || b.draft.Status != StatusPending {
			continue
		}
		flights = append(flights, flight{b: b, d: c.beginLocked(b)})
	}
	c.mu.Unlock()

	for _, f := range flights {
		c.notify(f.d)
		err := c.persist(ctx, f.d)
		c.resolve(f.b, f.d, err)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to save note %s: %w", f.d.NoteID, err))
		}
	}
	return errors.Join(errs...)
}

// Wait blocks until all background saves have resolved.
func (c *DraftController) Wait() {
	c.bg.Wait()
}

// Current returns the active draft.
func (c *DraftController) Current() (Draft, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, err := c.activeLocked()
	if err != nil {
		return Draft{}, false
	}
	return b.draft, true
}

// Lookup returns the buffer of any note, active or not.
func (c *DraftController) Lookup(id string) (Draft, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.buffers[id]
	if !ok {
		return Draft{}, false
	}
	return b.draft, true
}

// ActiveID returns the ID of the open note, or "".
func (c *DraftController) ActiveID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// OnChange registers fn for every draft transition.
func (c *DraftController) OnChange(fn func(Draft)) (cancel func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *DraftController) activeLocked() (*buffer, error) {
	if c.active == "" {
		return nil, ErrNoActiveNote
	}
	b, ok := c.buffers[c.active]
	if !ok {
		return nil, ErrNoActiveNote
	}
	return b, nil
}

// leaveLocked detaches the active buffer. A buffer that still has unsaved
// text is flushed in the background when flushOnLeave is set.
func (c *DraftController) leaveLocked() (Draft, bool) {
	if c.active == "" {
		return Draft{}, false
	}
	b, ok := c.buffers[c.active]
	c.active = ""
	if !ok {
		return Draft{}, false
	}

	b.attached = false
	c.stopTimerLocked(b)

	switch {
	case b.inFlight:
		// resolve decides once the call returns.
	case b.draft.Status == StatusPending && c.flushOnLeave:
		d := c.beginLocked(b)
		c.goSave(b, d)
		return d, true
	default:
		delete(c.buffers, b.draft.NoteID)
	}
	return b.draft, true
}

func (c *DraftController) armLocked(b *buffer) {
	c.stopTimerLocked(b)
	id, gen := b.draft.NoteID, b.gen
	b.timer = c.clock.AfterFunc(c.debounce, func() {
		c.fire(id, gen)
	})
}

func (c *DraftController) stopTimerLocked(b *buffer) {
	b.gen++
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}

func (c *DraftController) fire(id string, gen uint64) {
	c.mu.Lock()
	b, ok := c.buffers[id]
	if !ok || b.gen != gen || !b.attached {
		c.mu.Unlock()
		return
	}
	b.timer = nil
	if b.inFlight || b.draft.Status != StatusPending {
		c.mu.Unlock()
		return
	}
	d := c.beginLocked(b)
	c.goSave(b, d)
	c.mu.Unlock()

	c.notify(d)
}

// beginLocked marks b as saving and returns the snapshot to persist.
func (c *DraftController) beginLocked(b *buffer) Draft {
	b.inFlight = true
	b.dirty = false
	b.done = make(chan struct{})
	b.draft.Status = StatusSaving
	return b.draft
}

func (c *DraftController) goSave(b *buffer, d Draft) {
	c.bg.Add(1)
	lifecycle.Go(context.Background(), func(ctx context.Context) error {
		defer c.bg.Done()
		ctx, cancel := context.WithTimeout(ctx, c.saveTimeout)
		defer cancel()

		c.resolve(b, d, c.persist(ctx, d))
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		c.logger.Error("autosave panic", zap.String("note_id", d.NoteID), zap.Error(err))
	}))
}

func (c *DraftController) persist(ctx context.Context, d Draft) error {
	c.logger.Debug("saving draft", zap.String("note_id", d.NoteID))
	return c.repo.Update(ctx, d.NoteID, d.Title, d.Content)
}

// resolve applies the outcome of a save to the buffer it was issued for.
func (c *DraftController) resolve(b *buffer, saved Draft, err error) {
	c.mu.Lock()
	if c.buffers[saved.NoteID] != b || !b.inFlight {
		// Discarded or reset while the call was outstanding.
		c.mu.Unlock()
		if err == nil && c.onSaved != nil {
			c.onSaved(Note{ID: saved.NoteID, Title: saved.Title, Content: saved.Content})
		}
		return
	}

	b.inFlight = false
	close(b.done)
	b.done = nil
	dirty := b.dirty
	b.dirty = false

	if err != nil {
		c.logger.Warn("autosave failed, draft kept",
			zap.String("note_id", saved.NoteID), zap.Error(err))
		b.draft.Status = StatusPending
	} else if !dirty {
		b.draft.Status = StatusSaved
	}

	var flush bool
	switch {
	case b.attached && dirty:
		c.armLocked(b)
	case !b.attached && b.draft.Status == StatusPending && c.flushOnLeave && dirty:
		flush = true
	case !b.attached && b.draft.Status == StatusSaved:
		delete(c.buffers, saved.NoteID)
	}

	d := b.draft
	if flush {
		d = c.beginLocked(b)
		c.goSave(b, d)
	}
	c.mu.Unlock()

	c.notify(d)
	if err == nil && c.onSaved != nil {
		c.onSaved(Note{ID: saved.NoteID, Title: saved.Title, Content: saved.Content})
	}
}

func (c *DraftController) notify(drafts ...Draft) {
	c.mu.Lock()
	fns := make([]func(Draft), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, d := range drafts {
		for _, fn := range fns {
			fn(d)
		}
	}
}

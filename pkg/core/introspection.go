package core

import (
	"cmp"
	"slices"
	"time"

	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	Mode           Mode       `json:"mode"`
	User           string     `json:"user,omitempty"`
	RepositoryType string     `json:"repository_type"`
	NoteCount      int        `json:"note_count"`
	Epoch          uint64     `json:"epoch"`
	ReconcileSeq   uint64     `json:"reconcile_seq"`
	LastReconcile  *time.Time `json:"last_reconcile,omitempty"`
	Drafts         any        `json:"drafts,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	repoType := "none"
	if s.repo != nil {
		repoType = "repository"
		if comp, ok := s.repo.(introspection.Component); ok {
			repoType = comp.ComponentType()
		}
	}

	st := ServiceState{
		Mode:           s.session.Mode(),
		RepositoryType: repoType,
		NoteCount:      len(s.notes),
		Epoch:          s.epoch,
		ReconcileSeq:   s.seq,
		LastReconcile:  s.reconciled,
	}
	if s.session != nil {
		st.User = s.session.Name
	}
	if s.drafts != nil {
		st.Drafts = s.drafts.State()
	}
	return st
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "workspace"
}

// DraftControllerState exposes the edit buffers.
type DraftControllerState struct {
	Active   string  `json:"active,omitempty"`
	Debounce string  `json:"debounce"`
	InFlight int     `json:"in_flight"`
	Buffers  []Draft `json:"buffers"`
}

// State implements introspection.Introspectable.
func (c *DraftController) State() any {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := DraftControllerState{
		Active:   c.active,
		Debounce: c.debounce.String(),
		Buffers:  make([]Draft, 0, len(c.buffers)),
	}
	for _, b := range c.buffers {
		if b.inFlight {
			st.InFlight++
		}
		st.Buffers = append(st.Buffers, b.draft)
	}
	slices.SortFunc(st.Buffers, func(a, b Draft) int { return cmp.Compare(a.NoteID, b.NoteID) })
	return st
}

// ComponentType implements introspection.Component.
func (c *DraftController) ComponentType() string {
	return "draft-controller"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
var _ introspection.Introspectable = (*DraftController)(nil)
var _ introspection.Component = (*DraftController)(nil)

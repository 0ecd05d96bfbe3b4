// Package editor models the admin table's row-editing lifecycle as a small
// state machine: Viewing → Editing → Saving → Success|Error → Viewing.
// Every user action is a typed command consumed by a single Apply function,
// so the transitions are testable without any HTTP plumbing.
package editor

import (
	"sync"
	"time"
)

// Status is the transient per-row save badge.
type Status string

const (
	// StatusNone means no badge is displayed.
	StatusNone Status = ""
	// StatusSaving marks an in-flight save; it blocks duplicate submits
	// of the same row at the view level.
	StatusSaving Status = "saving"
	// StatusSuccess displays briefly after a confirmed save.
	StatusSuccess Status = "success"
	// StatusError displays briefly after a failed save.
	StatusError Status = "error"
)

const (
	// SuccessBadgeWindow is how long the success badge stays visible.
	SuccessBadgeWindow = 2 * time.Second
	// ErrorBadgeWindow is how long the error badge stays visible.
	ErrorBadgeWindow = 3 * time.Second
)

// Form is the scratch buffer for the row being edited. It covers the
// writable fields of both entity kinds; unused fields stay blank.
type Form struct {
	Name           string
	Price          string
	Description    string
	ImageURL       string
	DownloadURL    string
	AppName        string
	PurchaseURL    string
	Specifications string
	IsAvailable    bool
}

type badge struct {
	status    Status
	expiresAt time.Time
}

// State tracks which row is in edit mode and the per-row badges. At most
// one row is editable at a time; starting an edit on another row silently
// abandons the previous scratch buffer.
type State struct {
	mu        sync.Mutex
	editingID string
	form      Form
	badges    map[string]badge
}

// NewState returns a State with every row in Viewing mode.
func NewState() *State {
	return &State{badges: make(map[string]badge)}
}

// Command is a user action applied to the state.
type Command interface {
	apply(s *State, now time.Time)
}

// StartEdit loads a row's committed values into the scratch buffer and
// enters Editing mode, abandoning any other unsaved edit.
type StartEdit struct {
	ID   string
	Form Form
}

func (c StartEdit) apply(s *State, now time.Time) {
	s.editingID = c.ID
	s.form = c.Form
}

// CancelEdit discards the scratch buffer with no remote call.
type CancelEdit struct{}

func (CancelEdit) apply(s *State, now time.Time) {
	s.editingID = ""
	s.form = Form{}
}

// UpdateForm replaces the scratch buffer with the submitted values while
// staying in Editing mode.
type UpdateForm struct {
	Form Form
}

func (c UpdateForm) apply(s *State, now time.Time) {
	if s.editingID != "" {
		s.form = c.Form
	}
}

// BeginSave marks the row as saving.
type BeginSave struct {
	ID string
}

func (c BeginSave) apply(s *State, now time.Time) {
	s.badges[c.ID] = badge{status: StatusSaving}
}

// FinishSave records the save outcome: success shows a 2-second badge,
// failure a 3-second badge. Either way the edit is abandoned and the row
// returns to Viewing.
type FinishSave struct {
	ID  string
	Err error
}

func (c FinishSave) apply(s *State, now time.Time) {
	if c.Err != nil {
		s.badges[c.ID] = badge{status: StatusError, expiresAt: now.Add(ErrorBadgeWindow)}
	} else {
		s.badges[c.ID] = badge{status: StatusSuccess, expiresAt: now.Add(SuccessBadgeWindow)}
	}
	if s.editingID == c.ID {
		s.editingID = ""
		s.form = Form{}
	}
}

// Apply runs a command against the state at the given time.
func (s *State) Apply(cmd Command, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cmd.apply(s, now)
}

// EditingID returns the id of the row in Editing mode, if any.
func (s *State) EditingID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editingID
}

// FormFor returns the scratch buffer when id is the row being edited.
func (s *State) FormFor(id string) (Form, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editingID != id || id == "" {
		return Form{}, false
	}
	return s.form, true
}

// Status returns the badge currently visible on the row. Expired badges
// are dropped.
func (s *State) Status(id string, now time.Time) Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.badges[id]
	if !ok {
		return StatusNone
	}
	if b.status != StatusSaving && now.After(b.expiresAt) {
		delete(s.badges, id)
		return StatusNone
	}
	return b.status
}

// Registry hands out one editor State per admin session.
type Registry struct {
	mu      sync.Mutex
	editors map[string]*State
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{editors: make(map[string]*State)}
}

// Get returns the editor for the session, creating it on first use.
func (r *Registry) Get(sessionID string) *State {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.editors[sessionID]
	if !ok {
		st = NewState()
		r.editors[sessionID] = st
	}
	return st
}

// Drop forgets the session's editor, typically on logout.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.editors, sessionID)
}

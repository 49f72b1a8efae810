package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/oksasatya/go-ddd-todo/internal/application"
	"github.com/oksasatya/go-ddd-todo/internal/domain/entity"
)

// FakeIndexer keeps indexed tasks in memory and matches on title substrings.
type FakeIndexer struct {
	mu      sync.Mutex
	docs    map[string]entity.Task
	Err     error
	Deleted []string // "task:<id>" or "list:<id>"
}

func NewFakeIndexer() *FakeIndexer {
	return &FakeIndexer{docs: make(map[string]entity.Task)}
}

func (f *FakeIndexer) Has(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.docs[id]
	return ok
}

func (f *FakeIndexer) IndexTask(_ context.Context, t entity.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.docs[t.ID] = t
	return nil
}

func (f *FakeIndexer) DeleteTask(_ context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	if t, ok := f.docs[id]; ok && t.UserID == userID {
		delete(f.docs, id)
	}
	f.Deleted = append(f.Deleted, "task:"+id)
	return nil
}

func (f *FakeIndexer) DeleteList(_ context.Context, userID, listID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	for id, t := range f.docs {
		if t.UserID == userID && t.ListID == listID {
			delete(f.docs, id)
		}
	}
	f.Deleted = append(f.Deleted, "list:"+listID)
	return nil
}

func (f *FakeIndexer) Search(_ context.Context, userID, q string, size int) ([]application.TaskHit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	out := make([]application.TaskHit, 0)
	q = strings.ToLower(q)
	for _, t := range f.docs {
		if t.UserID != userID || !strings.Contains(strings.ToLower(t.Title), q) {
			continue
		}
		out = append(out, application.TaskHit{ID: t.ID, Title: t.Title, ListID: t.ListID, Completed: t.Completed, Score: 1})
		if len(out) == size {
			break
		}
	}
	return out, nil
}

// FakePublisher records every published body as JSON.
type FakePublisher struct {
	mu       sync.Mutex
	Messages []json.RawMessage
	Err      error
}

func (p *FakePublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	p.Messages = append(p.Messages, b)
	return nil
}

// Events decodes the recorded messages as domain events.
func (p *FakePublisher) Events() []application.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]application.Event, 0, len(p.Messages))
	for _, m := range p.Messages {
		var ev application.Event
		_ = json.Unmarshal(m, &ev)
		out = append(out, ev)
	}
	return out
}

// FakeSessions is an in-memory SessionStore that ignores TTLs.
type FakeSessions struct {
	mu       sync.Mutex
	states   map[string]application.SignInState
	sessions map[string]map[string]bool // user id -> live sids
	Err      error
}

func NewFakeSessions() *FakeSessions {
	return &FakeSessions{states: make(map[string]application.SignInState), sessions: make(map[string]map[string]bool)}
}

func (s *FakeSessions) SaveState(_ context.Context, state string, st application.SignInState, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.states[state] = st
	return nil
}

func (s *FakeSessions) TakeState(_ context.Context, state string) (application.SignInState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return application.SignInState{}, false, s.Err
	}
	st, ok := s.states[state]
	delete(s.states, state)
	return st, ok, nil
}

// States lists the pending sign-in states.
func (s *FakeSessions) States() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.states))
	for k := range s.states {
		out = append(out, k)
	}
	return out
}

func (s *FakeSessions) SaveSession(_ context.Context, u *entity.User, sid string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if s.sessions[u.ID] == nil {
		s.sessions[u.ID] = make(map[string]bool)
	}
	s.sessions[u.ID][sid] = true
	return nil
}

func (s *FakeSessions) HasSession(_ context.Context, userID, sid string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	return s.sessions[userID][sid], nil
}

func (s *FakeSessions) DeleteSession(_ context.Context, userID, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	delete(s.sessions[userID], sid)
	return nil
}

// Live counts the user's open sessions.
func (s *FakeSessions) Live(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions[userID])
}

// FakeProvider accepts exactly one code.
type FakeProvider struct {
	Code     string
	Identity application.ExternalIdentity

	LastVerifier string
}

func (p *FakeProvider) AuthCodeURL(state, verifier string) string {
	p.LastVerifier = verifier
	return "https://accounts.example.test/auth?state=" + state
}

func (p *FakeProvider) Exchange(_ context.Context, code, verifier string) (*application.ExternalIdentity, error) {
	if code != p.Code || verifier != p.LastVerifier {
		return nil, errors.New("bad code")
	}
	id := p.Identity
	return &id, nil
}

// FakeAvatars pretends to copy images into a bucket.
type FakeAvatars struct {
	Err   error
	Calls int
}

func (a *FakeAvatars) Mirror(_ context.Context, userID, srcURL string) (string, error) {
	a.Calls++
	if a.Err != nil {
		return "", a.Err
	}
	return "https://storage.example.test/avatars/" + userID, nil
}

var (
	_ application.TaskIndexer      = (*FakeIndexer)(nil)
	_ application.EventPublisher   = (*FakePublisher)(nil)
	_ application.SessionStore     = (*FakeSessions)(nil)
	_ application.IdentityProvider = (*FakeProvider)(nil)
	_ application.AvatarMirror     = (*FakeAvatars)(nil)
)

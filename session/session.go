package session

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/quorik/updraft"
	"github.com/quorik/updraft/types"
)

// ErrNoManager indicates that no *Manager was registered in the service
// context the dispatcher was built with.
var ErrNoManager = errors.New("session: manager not registered in context")

// Manager derives per-chat-and-user sessions from updates, all sharing
// one backing store.
type Manager struct {
	store  Store
	prefix string
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithPrefix namespaces every key the manager writes.
func WithPrefix(prefix string) ManagerOption {
	return func(m *Manager) {
		m.prefix = prefix
	}
}

// NewManager creates a manager over the given store.
func NewManager(store Store, opts ...ManagerOption) *Manager {
	m := &Manager{store: store}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Session returns the session an update belongs to. The boolean is false
// when the update carries neither a chat nor a user to key on.
func (m *Manager) Session(update *types.Update) (*Session, bool) {
	chatID, hasChat := update.GetChatID()
	userID, hasUser := update.GetUserID()
	if !hasChat && !hasUser {
		return nil, false
	}
	key := m.prefix
	if hasChat {
		key += "chat:" + strconv.FormatInt(chatID, 10) + ":"
	}
	if hasUser {
		key += "user:" + strconv.FormatInt(userID, 10) + ":"
	}
	return &Session{store: m.store, base: key}, true
}

// Session is a named slice of a store scoped to one chat/user pair.
// Values are encoded as JSON.
type Session struct {
	store Store
	base  string
}

// Get decodes the value stored under name into out. The boolean reports
// whether the value exists.
func (s *Session) Get(ctx context.Context, name string, out any) (bool, error) {
	data, ok, err := s.store.Get(ctx, s.base+name)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, errors.Wrapf(err, "decode session value %q", name)
	}
	return true, nil
}

// Set encodes value and stores it under name.
func (s *Session) Set(ctx context.Context, name string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "encode session value %q", name)
	}
	return s.store.Set(ctx, s.base+name, data)
}

// Expire sets the remaining lifetime of the value stored under name.
func (s *Session) Expire(ctx context.Context, name string, ttl time.Duration) error {
	return s.store.Expire(ctx, s.base+name, ttl)
}

// Remove deletes the value stored under name.
func (s *Session) Remove(ctx context.Context, name string) error {
	return s.store.Remove(ctx, s.base+name)
}

// Extract is an updraft.Extractor yielding the update's session. It
// requires a *Manager registered in the dispatcher's service context and
// yields nothing for updates without a chat or user.
func Extract(_ context.Context, in updraft.Input) (*Session, bool, error) {
	manager, ok := updraft.Lookup[*Manager](in.Context)
	if !ok {
		return nil, false, ErrNoManager
	}
	session, ok := manager.Session(in.Update)
	if !ok {
		return nil, false, nil
	}
	return session, true, nil
}

package notification

import (
	"context"
	"fmt"
	"sync"

	"github.com/apetrei/examsched/core"
	"github.com/apetrei/examsched/core/resource"
)

// Fallback error messages, used when the server supplies none.
const (
	errFetchAll       = "could not load notifications"
	errFetchSettings  = "could not load notification settings"
	errUpdateSettings = "could not update notification settings"
	errMarkRead       = "could not mark notification as read"
	errMarkAllRead    = "could not mark notifications as read"
	errSend           = "could not send notification"
)

// Store synchronizes the user's notifications and maintains the unread
// count: recomputed wholesale on fetch, adjusted incrementally on the
// mark-as-read operations, always only after server confirmation.
type Store struct {
	*resource.Store[Notification]

	mu       sync.RWMutex
	unread   int
	settings *Settings
}

func NewStore(api core.APIClient) *Store {
	return &Store{
		Store: resource.NewStore(api, resource.Options[Notification]{
			Path: "/api/notifications",
			ID:   func(n Notification) int { return n.ID },
			Messages: resource.Messages{
				FetchAll: errFetchAll,
			},
		}),
	}
}

// FetchAll replaces the collection and recomputes the unread count.
func (s *Store) FetchAll(ctx context.Context) ([]Notification, error) {
	items, err := s.Store.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	unread := 0
	for _, n := range items {
		if !n.Read {
			unread++
		}
	}
	s.mu.Lock()
	s.unread = unread
	s.mu.Unlock()
	return items, nil
}

// UnreadCount is the number of cached notifications not yet read.
func (s *Store) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unread
}

// MarkAsRead flags one notification as read. The local flag flips and the
// unread count drops (floored at zero) only once the server confirms, and
// only if the record was previously unread.
func (s *Store) MarkAsRead(ctx context.Context, id int) error {
	return s.Do(errMarkRead, func() error {
		if err := s.Client().Put(ctx, fmt.Sprintf("/api/notifications/%d/read", id), nil, nil); err != nil {
			return err
		}
		s.Each(func(n *Notification) {
			if n.ID == id && !n.Read {
				n.Read = true
				s.mu.Lock()
				if s.unread > 0 {
					s.unread--
				}
				s.mu.Unlock()
			}
		})
		return nil
	})
}

// MarkAllAsRead flags every notification as read and zeroes the unread
// count. Safe to call repeatedly.
func (s *Store) MarkAllAsRead(ctx context.Context) error {
	return s.Do(errMarkAllRead, func() error {
		if err := s.Client().Put(ctx, "/api/notifications/read-all", nil, nil); err != nil {
			return err
		}
		s.Each(func(n *Notification) { n.Read = true })
		s.mu.Lock()
		s.unread = 0
		s.mu.Unlock()
		return nil
	})
}

// Send publishes a notification to the targeted users; secretariat and
// administrators only, but the server is the one enforcing that.
func (s *Store) Send(ctx context.Context, in SendInput) (Notification, error) {
	if err := core.ValidateStruct(in); err != nil {
		return Notification{}, err
	}
	var created Notification
	err := s.Do(errSend, func() error {
		return s.Client().Post(ctx, "/api/notifications", in, &created)
	})
	if err != nil {
		return Notification{}, err
	}
	return created, nil
}

// FetchSettings loads the user's notification preferences.
func (s *Store) FetchSettings(ctx context.Context) (Settings, error) {
	var settings Settings
	err := s.Do(errFetchSettings, func() error {
		if err := s.Client().Get(ctx, "/api/notifications/settings", &settings); err != nil {
			return err
		}
		s.mu.Lock()
		s.settings = &settings
		s.mu.Unlock()
		return nil
	})
	if err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// UpdateSettings stores the server's returned preference set.
func (s *Store) UpdateSettings(ctx context.Context, upd SettingsUpdate) (Settings, error) {
	var settings Settings
	err := s.Do(errUpdateSettings, func() error {
		if err := s.Client().Put(ctx, "/api/notifications/settings", upd, &settings); err != nil {
			return err
		}
		s.mu.Lock()
		s.settings = &settings
		s.mu.Unlock()
		return nil
	})
	if err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// Settings returns the cached preferences, if fetched.
func (s *Store) Settings() (Settings, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings == nil {
		return Settings{}, false
	}
	return *s.settings, true
}

// Package cache keeps a client-side copy of the signed-in user's reminders in
// step with the gateway and pushes a fresh snapshot to every subscriber after
// each successful change.
//
// Reads (Refresh, FetchOne) return their errors. Writes (Add, Update, Remove)
// never do: a failed write leaves the cache untouched, publishes nothing and
// is reported to the ErrorHandler instead.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"reminders-lite/internal/model"
)

// Gateway is the remote reminder CRUD API.
type Gateway interface {
	List(ctx context.Context, sess model.Session) ([]model.Reminder, error)
	Get(ctx context.Context, sess model.Session, id int64) (model.Reminder, error)
	Create(ctx context.Context, sess model.Session, r model.Reminder) (model.Reminder, error)
	Update(ctx context.Context, sess model.Session, r model.Reminder) (model.Reminder, error)
	Delete(ctx context.Context, sess model.Session, id int64) error
}

type SessionSource interface {
	Current() (model.Session, error)
}

// Navigator moves the UI to a named view.
type Navigator interface {
	Navigate(route string)
}

// Notifier shows transient messages to the user.
type Notifier interface {
	Notify(message string)
}

// ErrorHandler receives failed writes. op is "add", "update" or "remove".
type ErrorHandler func(op string, err error)

const HomeRoute = "/home"

const (
	MsgAdded   = "ToDo added successfully"
	MsgUpdated = "ToDo updated successfully"
	MsgRemoved = "ToDo removed successfully"
)

type Options struct {
	Navigator Navigator
	Notifier  Notifier
	OnError   ErrorHandler
	Logger    *slog.Logger
	// SubscriberBuffer is the per-subscriber channel capacity; default 16.
	SubscriberBuffer int
}

type Service struct {
	gateway  Gateway
	sessions SessionSource
	nav      Navigator
	notifier Notifier
	onError  ErrorHandler
	logger   *slog.Logger

	mu        sync.Mutex
	reminders []model.Reminder
	subs      map[*Subscription]struct{}
	bufSize   int
}

func New(gw Gateway, sessions SessionSource, opts Options) *Service {
	s := &Service{
		gateway:  gw,
		sessions: sessions,
		nav:      opts.Navigator,
		notifier: opts.Notifier,
		onError:  opts.OnError,
		logger:   opts.Logger,
		subs:     make(map[*Subscription]struct{}),
		bufSize:  opts.SubscriberBuffer,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.bufSize <= 0 {
		s.bufSize = 16
	}
	if s.onError == nil {
		s.onError = func(op string, err error) {
			s.logger.Warn("reminder write failed", "op", op, "err", err)
		}
	}
	return s
}

// Refresh replaces the whole cache with the gateway's list for the current
// user. On error the cache is unchanged and nothing is published.
func (s *Service) Refresh(ctx context.Context) error {
	sess, err := s.sessions.Current()
	if err != nil {
		return err
	}
	reminders, err := s.gateway.List(ctx, sess)
	if err != nil {
		return fmt.Errorf("refresh reminders: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reminders = append([]model.Reminder(nil), reminders...)
	s.publishLocked()
	s.logger.Debug("reminders refreshed", "count", len(reminders))
	return nil
}

// FetchOne reads a single reminder for display. It does not touch the cache.
func (s *Service) FetchOne(ctx context.Context, id int64) (model.DisplayReminder, error) {
	sess, err := s.sessions.Current()
	if err != nil {
		return model.DisplayReminder{}, err
	}
	r, err := s.gateway.Get(ctx, sess, id)
	if err != nil {
		return model.DisplayReminder{}, fmt.Errorf("fetch reminder %d: %w", id, err)
	}
	return r.Display(), nil
}

func (s *Service) Add(ctx context.Context, title, deadline, body string) {
	sess, r, err := s.draft(0, title, deadline, body)
	if err != nil {
		s.onError("add", err)
		return
	}
	created, err := s.gateway.Create(ctx, sess, r)
	if err != nil {
		s.onError("add", err)
		return
	}

	s.mu.Lock()
	s.reminders = append(s.reminders, created)
	s.publishLocked()
	s.mu.Unlock()

	s.notify(MsgAdded)
}

// Update replaces the reminder with the given id. Navigation home is issued
// before the request is sent. If the acknowledged id is not cached the cache
// is left alone and nothing is published.
func (s *Service) Update(ctx context.Context, id int64, title, deadline, body string) {
	s.navigate(HomeRoute)

	sess, r, err := s.draft(id, title, deadline, body)
	if err != nil {
		s.onError("update", err)
		return
	}
	updated, err := s.gateway.Update(ctx, sess, r)
	if err != nil {
		s.onError("update", err)
		return
	}

	s.mu.Lock()
	idx := s.indexLocked(updated.ID)
	if idx >= 0 {
		s.reminders[idx] = updated
		s.publishLocked()
	}
	s.mu.Unlock()

	if idx < 0 {
		s.logger.Warn("updated reminder not in cache", "id", updated.ID)
	}
	s.notify(MsgUpdated)
}

// Remove fires navigation home and then deletes. Navigation does not wait for
// or depend on the delete's outcome.
func (s *Service) Remove(ctx context.Context, id int64) {
	s.navigate(HomeRoute)

	sess, err := s.sessions.Current()
	if err != nil {
		s.onError("remove", err)
		return
	}
	if err := s.gateway.Delete(ctx, sess, id); err != nil {
		s.onError("remove", err)
		return
	}

	s.mu.Lock()
	kept := make([]model.Reminder, 0, len(s.reminders))
	for _, r := range s.reminders {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	s.reminders = kept
	s.publishLocked()
	s.mu.Unlock()

	s.notify(MsgRemoved)
}

// Snapshot returns a copy of the cached reminders.
func (s *Service) Snapshot() []model.Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

func (s *Service) draft(id int64, title, deadline, body string) (model.Session, model.Reminder, error) {
	sess, err := s.sessions.Current()
	if err != nil {
		return model.Session{}, model.Reminder{}, err
	}
	ms, err := model.ParseDeadline(deadline)
	if err != nil {
		return model.Session{}, model.Reminder{}, err
	}
	return sess, model.Reminder{
		ID:       id,
		UserID:   sess.UserID,
		Title:    title,
		Body:     body,
		Deadline: ms,
	}, nil
}

func (s *Service) indexLocked(id int64) int {
	for i, r := range s.reminders {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func (s *Service) copyLocked() []model.Reminder {
	out := make([]model.Reminder, len(s.reminders))
	copy(out, s.reminders)
	return out
}

func (s *Service) navigate(route string) {
	if s.nav != nil {
		s.nav.Navigate(route)
	}
}

func (s *Service) notify(msg string) {
	if s.notifier != nil {
		s.notifier.Notify(msg)
	}
}

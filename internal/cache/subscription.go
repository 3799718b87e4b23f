package cache

import (
	"context"
	"errors"
	"sync"

	"reminders-lite/internal/model"
)

// Subscription receives one snapshot per successful cache change made after
// it was created. C is closed by Close, or by the service when the
// subscriber falls a full buffer behind.
type Subscription struct {
	C <-chan []model.Reminder

	ch      chan []model.Reminder
	service *Service
	once    sync.Once
}

// Subscribe registers a new subscriber. Snapshots are not replayed. A
// subscriber that lets its buffer fill up is dropped and its channel closed,
// so readers should treat a closed C as a signal to resubscribe.
func (s *Service) Subscribe() *Subscription {
	ch := make(chan []model.Reminder, s.bufSize)
	sub := &Subscription{C: ch, ch: ch, service: s}

	s.mu.Lock()
	s.subs[sub] = struct{}{}
	s.mu.Unlock()
	return sub
}

func (sub *Subscription) Close() {
	sub.service.mu.Lock()
	defer sub.service.mu.Unlock()
	sub.closeLocked()
}

func (sub *Subscription) closeLocked() {
	sub.once.Do(func() {
		delete(sub.service.subs, sub)
		close(sub.ch)
	})
}

// publishLocked hands every subscriber its own copy. Sends never block; a
// subscriber with a full buffer is dropped.
func (s *Service) publishLocked() {
	var lagging []*Subscription
	for sub := range s.subs {
		select {
		case sub.ch <- s.copyLocked():
		default:
			lagging = append(lagging, sub)
		}
	}
	for _, sub := range lagging {
		s.logger.Warn("dropping lagging reminder subscriber")
		sub.closeLocked()
	}
}

// Follow refreshes the cache for every change event until ctx ends or events
// is closed. Refresh failures are logged and do not stop the loop.
func (s *Service) Follow(ctx context.Context, events <-chan model.ChangeEvent) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return errors.New("change feed closed")
			}
			if err := s.Refresh(ctx); err != nil {
				s.logger.Warn("refresh after change failed", "op", ev.Op, "id", ev.ReminderID, "err", err)
				continue
			}
			s.logger.Debug("cache refreshed from change feed", "op", ev.Op, "id", ev.ReminderID)
		}
	}
}

// Subscribers reports the number of live subscriptions.
func (s *Service) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

package boltdb

import (
	"context"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/client/storage"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/models"
)

// subscription is a live query registered with Subscribe
type subscription struct {
	fn    func([]*models.Record)
	query storage.Query
}

// Subscribe registers a live query. fn receives the current results
// immediately and again after every commit touching q.Table.
func (s *Storage) Subscribe(q storage.Query, fn func([]*models.Record)) (func(), error) {
	initial, err := s.Query(context.Background(), q)
	if err != nil {
		return nil, err
	}

	s.subsMu.Lock()
	s.nextID++
	id := s.nextID
	s.subs[id] = &subscription{query: q, fn: fn}
	s.subsMu.Unlock()

	fn(initial)

	return func() {
		s.subsMu.Lock()
		delete(s.subs, id)
		s.subsMu.Unlock()
	}, nil
}

// notify перезапускает live-запросы по затронутым таблицам.
// Вызывается из commit hook, когда блокировка записи уже снята.
func (s *Storage) notify(touched map[string]struct{}) {
	s.subsMu.Lock()
	subs := make([]*subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		if _, ok := touched[sub.query.Table]; ok {
			subs = append(subs, sub)
		}
	}
	s.subsMu.Unlock()

	for _, sub := range subs {
		recs, err := s.Query(context.Background(), sub.query)
		if err != nil {
			s.logger.Error("Failed to refresh live query", "table", sub.query.Table, "error", err)
			continue
		}
		sub.fn(recs)
	}
}

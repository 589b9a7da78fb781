// Package favorites keeps each visitor's favorited records in memory.
// Favorites are never persisted and are dropped on sign-out.
package favorites

import (
	"sync"

	"github.com/HerbHall/lankaportal/pkg/content"
)

type idSet struct {
	ids   []string
	index map[string]struct{}
}

// Store holds favorites per user and collection in insertion order. It is
// safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	users map[string]map[content.CollectionName]*idSet
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{users: make(map[string]map[content.CollectionName]*idSet)}
}

// Add favorites id and reports whether it was not already present.
func (s *Store) Add(user string, c content.CollectionName, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cols, ok := s.users[user]
	if !ok {
		cols = make(map[content.CollectionName]*idSet)
		s.users[user] = cols
	}
	set, ok := cols[c]
	if !ok {
		set = &idSet{index: make(map[string]struct{})}
		cols[c] = set
	}
	if _, dup := set.index[id]; dup {
		return false
	}
	set.index[id] = struct{}{}
	set.ids = append(set.ids, id)
	return true
}

// Remove unfavorites id and reports whether it was present.
func (s *Store) Remove(user string, c content.CollectionName, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.users[user][c]
	if set == nil {
		return false
	}
	if _, ok := set.index[id]; !ok {
		return false
	}
	delete(set.index, id)
	for i, v := range set.ids {
		if v == id {
			set.ids = append(set.ids[:i], set.ids[i+1:]...)
			break
		}
	}
	return true
}

// IDs returns a copy of the favorited ids in insertion order.
func (s *Store) IDs(user string, c content.CollectionName) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set := s.users[user][c]
	if set == nil {
		return []string{}
	}
	return append([]string{}, set.ids...)
}

// Contains reports whether id is favorited.
func (s *Store) Contains(user string, c content.CollectionName, id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := s.users[user][c]
	if set == nil {
		return false
	}
	_, ok := set.index[id]
	return ok
}

// Clear drops every favorite of user.
func (s *Store) Clear(user string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, user)
}

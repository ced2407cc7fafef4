package store

import (
	"slices"
	"sync"

	"github.com/amishk599/avradar/internal/model"
)

var _ model.SubscriberStore = (*MemoryStore)(nil)

// MemoryStore keeps subscribers in memory. It is used in dry-run mode, where
// nothing should survive a restart.
type MemoryStore struct {
	mu  sync.Mutex
	ids []int64
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Add(chatID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.Contains(s.ids, chatID) {
		return false, nil
	}
	s.ids = append(s.ids, chatID)
	return true, nil
}

func (s *MemoryStore) Remove(chatID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.Index(s.ids, chatID)
	if i < 0 {
		return false, nil
	}
	s.ids = slices.Delete(s.ids, i, i+1)
	return true, nil
}

func (s *MemoryStore) Has(chatID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Contains(s.ids, chatID), nil
}

func (s *MemoryStore) List() ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.ids), nil
}

func (s *MemoryStore) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids), nil
}

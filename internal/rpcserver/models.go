package rpcserver

import (
	"sync"

	"github.com/nerrad567/edge-mapper/internal/model"
)

// modelStore is the thread-safe registry of known device models, keyed by
// canonical id, mirroring the registry's own locking discipline (spec
// §4.D/§4.H: CreateDeviceModel/UpdateDeviceModel/RemoveDeviceModel).
type modelStore struct {
	mu    sync.RWMutex
	byKey map[string]*model.DeviceModel
}

func newModelStore() *modelStore {
	return &modelStore{byKey: make(map[string]*model.DeviceModel)}
}

func (s *modelStore) Upsert(m *model.DeviceModel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byKey[m.Key()] = m
}

func (s *modelStore) Get(key string) (*model.DeviceModel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.byKey[key]
	return m, ok
}

func (s *modelStore) Remove(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byKey[key]; !ok {
		return false
	}
	delete(s.byKey, key)
	return true
}

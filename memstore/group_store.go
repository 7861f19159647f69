package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"github.com/domeliquid/lendingcore/core"
)

// GroupStore is an in-memory core.GroupStore keyed by group ID. Lookups
// by name scan every group, the way the teacher's GetGroupByName/
// DeleteGroup pair assumes names are unique; there is no name index.
type GroupStore struct {
	mu     sync.RWMutex
	groups map[uuid.UUID]*core.Group
}

func NewGroupStore() *GroupStore {
	return &GroupStore{groups: make(map[uuid.UUID]*core.Group)}
}

func (s *GroupStore) CreateGroup(ctx context.Context, group *core.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.groups[group.Id]; exists {
		return gorm.ErrDuplicatedKey
	}
	s.groups[group.Id] = cloneGroup(group)
	return nil
}

func (s *GroupStore) GetGroupById(ctx context.Context, id uuid.UUID) (*core.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cloneGroup(g), nil
}

func (s *GroupStore) GetGroupByName(ctx context.Context, name string) (*core.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.groups {
		if g.Name == name {
			return cloneGroup(g), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *GroupStore) DeleteGroup(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, g := range s.groups {
		if g.Name == name {
			delete(s.groups, id)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *GroupStore) UpdateGroup(ctx context.Context, name string, group *core.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, g := range s.groups {
		if g.Name == name {
			s.groups[id] = cloneGroup(group)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *GroupStore) GetAllGroups(ctx context.Context) ([]*core.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*core.Group, 0, len(s.groups))
	for _, g := range s.groups {
		out = append(out, cloneGroup(g))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id.String() < out[j].Id.String() })
	return out, nil
}

// ListTradeGroups returns every group that isn't paused — the active
// subset a dispatcher is allowed to route instructions into.
func (s *GroupStore) ListTradeGroups(ctx context.Context) ([]*core.Group, error) {
	all, err := s.GetAllGroups(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*core.Group, 0, len(all))
	for _, g := range all {
		if !g.IsPaused() {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *GroupStore) GetTradeGroupsMap(ctx context.Context) (map[uuid.UUID]*core.Group, error) {
	groups, err := s.ListTradeGroups(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]*core.Group, len(groups))
	for _, g := range groups {
		out[g.Id] = g
	}
	return out, nil
}

package core

import (
	"context"

	"github.com/facebookgo/clock"
	"github.com/gofrs/uuid"
)

type (
	GroupStore interface {
		CreateGroup(ctx context.Context, group *Group) error
		GetGroupById(ctx context.Context, id uuid.UUID) (*Group, error)
		GetGroupByName(ctx context.Context, name string) (*Group, error)
		DeleteGroup(ctx context.Context, name string) error
		UpdateGroup(ctx context.Context, name string, group *Group) error
		GetAllGroups(ctx context.Context) ([]*Group, error)
		ListTradeGroups(ctx context.Context) ([]*Group, error)
		GetTradeGroupsMap(ctx context.Context) (map[uuid.UUID]*Group, error)
	}

	// Group is the single administrative entity owning a collection of
	// Banks. Every bank carries a GroupId back-reference rather than the
	// group holding the banks inline, since the bank count is unbounded.
	Group struct {
		Id       uuid.UUID  `json:"id"`
		AdminKey string     `json:"adminKey"`
		Flags    GroupFlags `json:"flags"`

		Name        string `json:"name"`
		CreatedAt   int64  `json:"createdAt"`
		UpdatedAt   int64  `json:"updatedAt"`
		Description string `json:"description"`
	}
)

type GroupFlags uint8

const (
	// GroupPausedFlag halts every risk-relevant action across every
	// bank the group owns, independent of each bank's own operational
	// state — an admin-level kill switch.
	GroupPausedFlag GroupFlags = 1 << 0
)

func NewGroup(clk clock.Clock, adminKey string, name string, description string) *Group {
	return &Group{
		Id:          uuid.Must(uuid.NewV4()),
		AdminKey:    adminKey,
		Name:        name,
		CreatedAt:   clk.Now().Unix(),
		UpdatedAt:   clk.Now().Unix(),
		Description: description,
	}
}

func (g *Group) Update(clk clock.Clock, adminKey string, name string, description string) {
	g.AdminKey = adminKey
	g.Name = name
	g.Description = description
	g.UpdatedAt = clk.Now().Unix()
}

func (g *Group) SetPaused(clk clock.Clock, paused bool) {
	if paused {
		g.Flags |= GroupPausedFlag
	} else {
		g.Flags &= ^GroupPausedFlag
	}
	g.UpdatedAt = clk.Now().Unix()
}

func (g *Group) IsPaused() bool {
	return g.Flags&GroupPausedFlag != 0
}

// AssertActive rejects any action against this group's banks while
// the group-level pause is set, ahead of each individual bank's own
// AssertOperationalMode check.
func (g *Group) AssertActive() error {
	if g.IsPaused() {
		return ErrGroupPaused
	}
	return nil
}

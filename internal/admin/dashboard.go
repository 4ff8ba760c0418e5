package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/dyluth/kashi/pkg/market"
	"golang.org/x/sync/errgroup"
)

// ErrNotAdmin is returned when the viewer is not an administrator.
var ErrNotAdmin = errors.New("administrator access required")

// Client is the part of the API client used by the admin dashboard.
type Client interface {
	ToggleClient
	IsAdmin(ctx context.Context, userID string) (bool, error)
	AdminStatistics(ctx context.Context) (*market.Statistics, error)
	ListUsers(ctx context.Context) ([]market.AdminUser, error)
	ListAllItems(ctx context.Context) ([]market.AdminItem, error)
}

// Section selects which parts of the dashboard to load.
type Section int

const (
	SectionStats Section = 1 << iota
	SectionUsers
	SectionItems

	SectionAll = SectionStats | SectionUsers | SectionItems
)

// Dashboard is the administrator's view of the marketplace.
type Dashboard struct {
	Stats *market.Statistics
	Users []market.AdminUser
	Items []market.AdminItem
}

// RequireAdmin returns ErrNotAdmin unless viewer is an administrator.
func RequireAdmin(ctx context.Context, client Client, viewer string) error {
	if viewer == "" {
		return ErrNotAdmin
	}
	ok, err := client.IsAdmin(ctx, viewer)
	if err != nil {
		return fmt.Errorf("failed to check admin status: %w", err)
	}
	if !ok {
		return ErrNotAdmin
	}
	return nil
}

// LoadDashboard checks that viewer is an administrator, then fetches the
// requested sections concurrently. Any failure cancels the others.
func LoadDashboard(ctx context.Context, client Client, viewer string, sections Section) (*Dashboard, error) {
	if err := RequireAdmin(ctx, client, viewer); err != nil {
		return nil, err
	}

	d := &Dashboard{}
	g, gctx := errgroup.WithContext(ctx)

	if sections&SectionStats != 0 {
		g.Go(func() error {
			stats, err := client.AdminStatistics(gctx)
			if err != nil {
				return fmt.Errorf("failed to fetch statistics: %w", err)
			}
			d.Stats = stats
			return nil
		})
	}

	if sections&SectionUsers != 0 {
		g.Go(func() error {
			users, err := client.ListUsers(gctx)
			if err != nil {
				return fmt.Errorf("failed to fetch users: %w", err)
			}
			d.Users = users
			return nil
		})
	}

	if sections&SectionItems != 0 {
		g.Go(func() error {
			items, err := client.ListAllItems(gctx)
			if err != nil {
				return fmt.Errorf("failed to fetch items: %w", err)
			}
			d.Items = items
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}

// FindUser returns the row of userID, or nil.
func (d *Dashboard) FindUser(userID string) *market.AdminUser {
	for i := range d.Users {
		if d.Users[i].ID == userID {
			return &d.Users[i]
		}
	}
	return nil
}

// FindItem returns the row of itemID, or nil.
func (d *Dashboard) FindItem(itemID string) *market.AdminItem {
	for i := range d.Items {
		if d.Items[i].ItemID == itemID {
			return &d.Items[i]
		}
	}
	return nil
}

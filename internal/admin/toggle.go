package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/dyluth/kashi/pkg/market"
)

var (
	// ErrLocked is returned when toggling the switch of a sold item.
	ErrLocked = errors.New("sold items cannot be activated or deactivated")

	// ErrBusy is returned when the switch is disabled by a call in flight.
	ErrBusy = errors.New("toggle already in progress")
)

// Target is the kind of record a switch controls.
type Target string

const (
	TargetUser Target = "user"
	TargetItem Target = "item"
)

// Switch is the active toggle of one user or item in the admin tables.
type Switch struct {
	Target  Target
	ID      string
	On      bool // active
	Enabled bool
	Locked  bool // sold items cannot be toggled
}

// UserSwitch returns the switch of an admin user row.
func UserSwitch(u *market.AdminUser) *Switch {
	return &Switch{Target: TargetUser, ID: u.ID, On: bool(u.IsActive), Enabled: true}
}

// ItemSwitch returns the switch of an admin item row. Sold items are locked.
func ItemSwitch(i *market.AdminItem) *Switch {
	return &Switch{Target: TargetItem, ID: i.ItemID, On: bool(i.IsActive), Enabled: !bool(i.IsSold), Locked: bool(i.IsSold)}
}

// ToggleClient is the part of the API client that flips active flags.
type ToggleClient interface {
	ToggleUserActive(ctx context.Context, userID string) (*market.ToggleResult, error)
	ToggleItemActive(ctx context.Context, itemID string) (*market.ToggleResult, error)
}

// Toggle flips the switch optimistically and disables it for the duration of
// the call. On success it is re-enabled, adopting the server's new state when
// the answer carries one. On failure it is re-enabled and reverted.
func Toggle(ctx context.Context, client ToggleClient, sw *Switch) (*market.ToggleResult, error) {
	if sw.Locked {
		return nil, ErrLocked
	}
	if !sw.Enabled {
		return nil, ErrBusy
	}

	prev := sw.On
	sw.On = !prev
	sw.Enabled = false

	var (
		res *market.ToggleResult
		err error
	)
	switch sw.Target {
	case TargetUser:
		res, err = client.ToggleUserActive(ctx, sw.ID)
	case TargetItem:
		res, err = client.ToggleItemActive(ctx, sw.ID)
	default:
		err = fmt.Errorf("unknown toggle target %q", sw.Target)
	}

	sw.Enabled = true
	if err != nil {
		sw.On = prev
		return nil, fmt.Errorf("failed to toggle %s %s: %w", sw.Target, sw.ID, err)
	}

	if res.NewIsActive != nil {
		sw.On = bool(*res.NewIsActive)
	}
	return res, nil
}

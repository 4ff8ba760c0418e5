package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/dyluth/kashi/pkg/market"
)

// DefaultInterval is how often the offer is polled.
const DefaultInterval = 5 * time.Second

var (
	// ErrNoPendingOffer is returned when the buyer has no pending offer on the item.
	ErrNoPendingOffer = errors.New("no pending offer on this item")

	// ErrTimeout is returned when no decision arrives within the timeout.
	ErrTimeout = errors.New("timeout waiting for a decision")
)

// Client is the part of the API client used to follow an offer.
type Client interface {
	BuyerPendingItemIDs(ctx context.Context, buyerID string) ([]string, error)
	AcceptedTrades(ctx context.Context, userID string) ([]market.Trade, error)
}

// PollForDecision polls until the seller decides the buyer's pending offer on
// itemID and returns market.StatusAccepted or market.StatusRejected.
// Transport failures while polling are logged and retried on the next tick.
// A zero timeout waits until ctx is done.
func PollForDecision(ctx context.Context, client Client, buyerID, itemID string, interval, timeout time.Duration) (market.Status, error) {
	pending, err := isPending(ctx, client, buyerID, itemID)
	if err != nil {
		return "", fmt.Errorf("failed to query pending offers: %w", err)
	}
	if !pending {
		return "", ErrNoPendingOffer
	}

	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timeoutCh = time.After(timeout)
	}

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()

		case <-timeoutCh:
			return "", fmt.Errorf("%w after %v", ErrTimeout, timeout)

		case <-ticker.C:
			pending, err := isPending(ctx, client, buyerID, itemID)
			if err != nil {
				if market.IsTransport(err) {
					slog.Warn("failed to poll offer", slog.String("item_id", itemID), slog.Any("error", err))
					continue
				}
				return "", fmt.Errorf("failed to query pending offers: %w", err)
			}
			if pending {
				continue
			}

			return decision(ctx, client, buyerID, itemID)
		}
	}
}

func isPending(ctx context.Context, client Client, buyerID, itemID string) (bool, error) {
	ids, err := client.BuyerPendingItemIDs(ctx, buyerID)
	if err != nil {
		return false, err
	}
	return slices.Contains(ids, itemID), nil
}

// decision tells an accepted offer (now a bought trade) from a rejected one.
func decision(ctx context.Context, client Client, buyerID, itemID string) (market.Status, error) {
	trades, err := client.AcceptedTrades(ctx, buyerID)
	if err != nil {
		return "", fmt.Errorf("failed to query accepted trades: %w", err)
	}
	for _, t := range trades {
		if t.ItemID == itemID && t.Side == market.TradeBought {
			return market.StatusAccepted, nil
		}
	}
	return market.StatusRejected, nil
}

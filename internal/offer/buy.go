package offer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dyluth/kashi/pkg/market"
	"github.com/google/uuid"
)

var (
	// ErrNotAuthenticated is returned when no user is logged in.
	ErrNotAuthenticated = errors.New("you must be logged in to buy an item")

	// ErrItemNotFound is returned when the item is not in the fetched listing.
	ErrItemNotFound = errors.New("item not found")

	// ErrOwnListing is returned when the viewer tries to buy their own item.
	ErrOwnListing = errors.New("you cannot buy your own item")

	// ErrNotPurchasable is returned for items that are sold or inactive.
	ErrNotPurchasable = errors.New("item is not available for purchase")

	// ErrBusy is returned when the control is already busy or disabled.
	ErrBusy = errors.New("action already in progress")
)

// Server messages for duplicate offers, used when no structured status is sent.
const (
	msgDuplicatePending  = "Transaction with this buyerID and ItemID already exists."
	msgDuplicateRejected = "The seller has rejected your offer for this product."
)

// TransactionClient is the part of the API client used to create offers.
type TransactionClient interface {
	CreateTransaction(ctx context.Context, t *market.Transaction) (*market.CreateOfferResult, error)
}

// BuyResult is the outcome of a buy action.
type BuyResult struct {
	Transaction *market.Transaction

	// AlreadyExists is set when the server already had an offer for this
	// (buyer, item) pair; nothing new was created.
	AlreadyExists  bool
	ExistingStatus market.Status

	// Label is what the buy control shows afterwards.
	Label string
}

// Buyer creates offers.
type Buyer struct {
	client   TransactionClient
	notifier Notifier

	now   func() time.Time
	newID func() string
}

// NewBuyer creates a Buyer. A nil notifier disables seller notifications.
func NewBuyer(client TransactionClient, notifier Notifier) *Buyer {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Buyer{
		client:   client,
		notifier: notifier,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

// Buy makes an offer on itemID at its current price.
//
// Preconditions are checked before any network call, in order: a viewer is
// logged in, the item is in items, the viewer is not its seller, and the item
// is active and unsold.
// The control is busy for the duration of the call and restored on failure.
// A duplicate offer is not an error: the result carries AlreadyExists and a label.
// The seller notification is best-effort and never undoes the offer.
func (b *Buyer) Buy(ctx context.Context, viewer string, items []market.Item, itemID string, control *Control) (*BuyResult, error) {
	if viewer == "" {
		return nil, ErrNotAuthenticated
	}

	item := findItem(items, itemID)
	if item == nil {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}

	if item.Seller == viewer {
		return nil, ErrOwnListing
	}

	if !item.Purchasable(viewer) {
		return nil, fmt.Errorf("%w: %s", ErrNotPurchasable, itemID)
	}

	if control == nil {
		control = NewControl("BUY")
	}
	if !control.Begin() {
		return nil, ErrBusy
	}

	tx := &market.Transaction{
		TransactionID:   b.newID(),
		BuyerID:         viewer,
		SellerID:        item.Seller,
		ItemID:          item.ItemID,
		TransactionDate: market.NewTimestamp(b.now()),
		Price:           item.Price,
		Status:          market.StatusPending,
	}

	res, err := b.client.CreateTransaction(ctx, tx)
	if err != nil {
		control.Restore()
		return nil, fmt.Errorf("failed to create offer: %w", err)
	}

	if bool(res.TransactionExists) {
		status := DuplicateStatus(res)
		label := Label(status)
		control.Settle(label)
		return &BuyResult{AlreadyExists: true, ExistingStatus: status, Label: label}, nil
	}

	control.Settle(Label(market.StatusPending))

	if err := b.notifier.NotifySeller(ctx, item); err != nil {
		slog.Error("failed to notify seller",
			slog.String("item_id", item.ItemID),
			slog.String("transaction_id", tx.TransactionID),
			slog.Any("error", err))
	}

	return &BuyResult{Transaction: tx, Label: Label(market.StatusPending)}, nil
}

// DuplicateStatus decides the status of the earlier offer behind a duplicate
// answer. A structured existingStatus wins; otherwise the known server
// messages are matched. Anything unrecognised is treated as pending.
func DuplicateStatus(res *market.CreateOfferResult) market.Status {
	if res.ExistingStatus.Validate() == nil {
		return res.ExistingStatus
	}

	msg := strings.TrimSpace(res.Message)
	if strings.EqualFold(msg, msgDuplicateRejected) {
		return market.StatusRejected
	}
	// msgDuplicatePending and anything unknown
	return market.StatusPending
}

// Label is the buy control label for an existing offer in status s.
func Label(s market.Status) string {
	switch s {
	case market.StatusRejected:
		return "Rejected"
	case market.StatusAccepted:
		return "Sold"
	default:
		return "Pending"
	}
}

func findItem(items []market.Item, itemID string) *market.Item {
	for i := range items {
		if items[i].ItemID == itemID {
			return &items[i]
		}
	}
	return nil
}

package offer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dyluth/kashi/pkg/market"
)

// DecisionClient is the part of the API client used by sellers.
type DecisionClient interface {
	PendingOffers(ctx context.Context, sellerID string) ([]market.PendingOffer, error)
	UpdateTransactionStatus(ctx context.Context, transactionID string, status market.Status) error
}

// DecisionResult is the outcome of accepting or rejecting an offer.
type DecisionResult struct {
	Decision market.Status

	// Pending is the re-fetched list of offers still awaiting a decision.
	Pending []market.PendingOffer

	// NotifyErr is set when the buyer could not be emailed. The decision stands.
	NotifyErr error

	// RefreshErr is set when the pending list could not be re-fetched. The decision stands.
	RefreshErr error
}

// Seller reviews and decides pending offers.
type Seller struct {
	client   DecisionClient
	notifier Notifier
}

// NewSeller creates a Seller. A nil notifier disables buyer notifications.
func NewSeller(client DecisionClient, notifier Notifier) *Seller {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Seller{client: client, notifier: notifier}
}

// Pending returns the offers addressed to viewer that await a decision.
func (s *Seller) Pending(ctx context.Context, viewer string) ([]market.PendingOffer, error) {
	if viewer == "" {
		return nil, ErrNotAuthenticated
	}
	offers, err := s.client.PendingOffers(ctx, viewer)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending offers: %w", err)
	}
	return offers, nil
}

// Decide accepts or rejects offer.
//
// Both controls are made busy first. If the status update fails they are
// restored and the error returned. Once the update succeeds the buyer is
// emailed and the pending list re-fetched; failures of either are reported
// in the result without undoing the decision.
func (s *Seller) Decide(ctx context.Context, viewer string, offer *market.PendingOffer, decision market.Status, controls *DecisionControls) (*DecisionResult, error) {
	if viewer == "" {
		return nil, ErrNotAuthenticated
	}
	if !market.StatusPending.CanTransition(decision) {
		return nil, fmt.Errorf("invalid decision %q: must be accepted or rejected", decision)
	}

	if controls == nil {
		controls = NewDecisionControls()
	}
	if !controls.begin() {
		return nil, ErrBusy
	}

	if err := s.client.UpdateTransactionStatus(ctx, offer.TransactionID, decision); err != nil {
		controls.restore()
		return nil, fmt.Errorf("failed to %s offer: %w", verb(decision), err)
	}
	controls.settle(decisionLabel(decision))

	res := &DecisionResult{Decision: decision}

	if err := s.notifier.NotifyBuyer(ctx, offer, decision); err != nil {
		slog.Error("failed to notify buyer",
			slog.String("transaction_id", offer.TransactionID),
			slog.String("decision", string(decision)),
			slog.Any("error", err))
		res.NotifyErr = err
	}

	pending, err := s.client.PendingOffers(ctx, viewer)
	if err != nil {
		slog.Warn("failed to refresh pending offers", slog.Any("error", err))
		res.RefreshErr = err
	} else {
		res.Pending = pending
	}

	return res, nil
}

func decisionLabel(decision market.Status) string {
	if decision == market.StatusAccepted {
		return "Accepted"
	}
	return "Rejected"
}

func verb(decision market.Status) string {
	if decision == market.StatusAccepted {
		return "accept"
	}
	return "reject"
}

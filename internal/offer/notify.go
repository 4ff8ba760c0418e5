package offer

import (
	"context"
	"fmt"

	"github.com/dyluth/kashi/pkg/market"
	lru "github.com/hashicorp/golang-lru"
)

// DefaultEmailCacheSize bounds the number of cached user email addresses.
const DefaultEmailCacheSize = 256

// Notifier sends the offer notification emails.
type Notifier interface {
	NotifySeller(ctx context.Context, item *market.Item) error
	NotifyBuyer(ctx context.Context, offer *market.PendingOffer, decision market.Status) error
}

// MailClient is the part of the API client used to send notifications.
type MailClient interface {
	GetUserEmail(ctx context.Context, userID string) (string, error)
	SendMail(ctx context.Context, m *market.Mail) error
}

// Mailer notifies buyers and sellers through the API's mail endpoint.
// Email addresses are cached per userID.
type Mailer struct {
	client MailClient
	emails *lru.Cache
}

// NewMailer creates a mailer with an LRU address cache of the given size.
func NewMailer(client MailClient, cacheSize int) (*Mailer, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultEmailCacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create email cache: %w", err)
	}
	return &Mailer{client: client, emails: cache}, nil
}

// EmailFor returns the email address of userID.
func (m *Mailer) EmailFor(ctx context.Context, userID string) (string, error) {
	if v, ok := m.emails.Get(userID); ok {
		return v.(string), nil
	}

	email, err := m.client.GetUserEmail(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to look up email of user %s: %w", userID, err)
	}
	m.emails.Add(userID, email)
	return email, nil
}

// NotifySeller tells the seller of item that a new offer arrived.
func (m *Mailer) NotifySeller(ctx context.Context, item *market.Item) error {
	email, err := m.EmailFor(ctx, item.Seller)
	if err != nil {
		return err
	}

	mail := &market.Mail{
		RecipientEmail: email,
		Subject:        fmt.Sprintf("You have a new offer for %s!", item.Name),
		Body:           fmt.Sprintf("You have a new offer for your item, %s! Please check your offers in your profile.", item.Name),
	}
	if err := m.client.SendMail(ctx, mail); err != nil {
		return fmt.Errorf("failed to send offer notification: %w", err)
	}
	return nil
}

// NotifyBuyer tells the buyer of offer about the seller's decision.
func (m *Mailer) NotifyBuyer(ctx context.Context, offer *market.PendingOffer, decision market.Status) error {
	email := offer.BuyerEmail
	if email == "" {
		var err error
		if email, err = m.EmailFor(ctx, offer.BuyerID); err != nil {
			return err
		}
	}

	mail := &market.Mail{
		RecipientEmail: email,
		Subject:        fmt.Sprintf("Offer %s", decision),
		Body:           fmt.Sprintf("Your offer for the item %s has been %s.", offer.ItemName, decision),
	}
	if err := m.client.SendMail(ctx, mail); err != nil {
		return fmt.Errorf("failed to send decision notification: %w", err)
	}
	return nil
}

// NopNotifier sends nothing. Used when notifications are disabled.
type NopNotifier struct{}

func (NopNotifier) NotifySeller(context.Context, *market.Item) error { return nil }

func (NopNotifier) NotifyBuyer(context.Context, *market.PendingOffer, market.Status) error {
	return nil
}

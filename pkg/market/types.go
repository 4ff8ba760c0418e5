package market

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Item is a listing as returned by the Items and Items/seller endpoints.
type Item struct {
	ItemID         string    `json:"itemID"`
	Name           string    `json:"item_name"`
	Description    string    `json:"item_description"`
	Price          Price     `json:"price"`
	Image          string    `json:"image"`
	Seller         string    `json:"seller"`         // userID of the seller
	SellerUsername string    `json:"sellerUsername"` // filled in by the Items endpoint only
	IsActive       Flag      `json:"isActive"`
	IsSold         Flag      `json:"isSold"`
	CreationDate   Timestamp `json:"creationDate"`
}

// Purchasable reports whether viewer may make an offer on the item.
// An item is purchasable only when it is active, not sold, and not the viewer's own listing.
func (i *Item) Purchasable(viewer string) bool {
	return bool(i.IsActive) && !bool(i.IsSold) && i.Seller != viewer
}

// NewItem is the payload for creating a listing.
type NewItem struct {
	Name        string `json:"item_name"`
	Description string `json:"item_description"`
	Price       Price  `json:"price"`
	Seller      string `json:"seller"`
	Image       string `json:"image"`
	IsActive    bool   `json:"isActive"`
	IsSold      bool   `json:"isSold"`
}

// AdminItem is a row of the administrator's item table (Items/all).
type AdminItem struct {
	ItemID         string `json:"itemID"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Price          Price  `json:"price"`
	PosterUsername string `json:"poster_username"`
	PosterID       string `json:"poster_id"`
	IsActive       Flag   `json:"isActive"`
	IsSold         Flag   `json:"isSold"`
}

// AdminUser is a row of the administrator's user table (Users/all).
type AdminUser struct {
	ID           string    `json:"ID"`
	Username     string    `json:"username"`
	FullName     string    `json:"full_name"`
	PhoneNumber  string    `json:"phone_number"`
	ItemsForSale int       `json:"items_for_sale"`
	JoinDate     Timestamp `json:"join_date"`
	IsActive     Flag      `json:"isActive"`
}

// Profile is a user record as returned by Users/byid.
type Profile struct {
	UserID       string    `json:"userID"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	PhoneNumber  string    `json:"phone_number"`
	Picture      string    `json:"picture"`
	Email        string    `json:"email"`
	CreationDate Timestamp `json:"creationDate"`
	IsActive     Flag      `json:"isActive"`
}

// ProfileAttributes holds the editable profile fields. Empty fields are left untouched.
type ProfileAttributes struct {
	PhoneNumber string `json:"phone_number,omitempty"`
	Picture     string `json:"picture,omitempty"`
	Address     string `json:"address,omitempty"`
	Name        string `json:"name,omitempty"`
}

// Empty reports whether no attribute is set.
func (p ProfileAttributes) Empty() bool {
	return p == ProfileAttributes{}
}

// Statistics is the administrator dashboard summary.
type Statistics struct {
	TotalItems            int            `json:"total_items"`
	TotalUsers            int            `json:"total_users"`
	UserWithMostItems     ItemLeader     `json:"user_with_most_items"`
	UserWithMostPurchases PurchaseLeader `json:"user_with_most_purchases"`
}

// ItemLeader is the seller with the most listings.
type ItemLeader struct {
	Username  string `json:"username"`
	UserID    string `json:"userID"`
	ItemCount int    `json:"item_count"`
}

// PurchaseLeader is the buyer with the most accepted offers.
type PurchaseLeader struct {
	Username      string `json:"username"`
	UserID        string `json:"userID"`
	PurchaseCount int    `json:"purchase_count"`
}

// Status is the lifecycle state of an offer.
type Status string

const (
	// StatusPending is the initial state of every offer
	StatusPending Status = "pending"

	// StatusAccepted is terminal: the seller sold the item to this buyer
	StatusAccepted Status = "accepted"

	// StatusRejected is terminal: the seller declined the offer
	StatusRejected Status = "rejected"
)

// Validate checks if the Status is a valid enum value.
func (s Status) Validate() error {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return nil
	default:
		return fmt.Errorf("unknown offer status: %q", s)
	}
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// CanTransition reports whether an offer in state s may move to next.
// Only pending offers move, and only to accepted or rejected.
func (s Status) CanTransition(next Status) bool {
	return s == StatusPending && next.IsTerminal()
}

// ParseStatus parses a status case-insensitively.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if err := st.Validate(); err != nil {
		return "", err
	}
	return st, nil
}

// Transaction is a buyer's offer on a listing, as submitted to the transactions endpoint.
// The wire format keeps the capitalised ItemID key the API expects.
type Transaction struct {
	TransactionID   string    `json:"transactionID"`
	BuyerID         string    `json:"buyerID"`
	SellerID        string    `json:"sellerID"`
	ItemID          string    `json:"ItemID"`
	TransactionDate Timestamp `json:"transactionDate"`
	Price           Price     `json:"price"` // snapshot of the item price when the offer was made
	Status          Status    `json:"status"`
}

// Validate checks if the Transaction has valid field values.
func (t *Transaction) Validate() error {
	if _, err := uuid.Parse(t.TransactionID); err != nil {
		return fmt.Errorf("invalid transaction ID: not a valid UUID")
	}

	if t.BuyerID == "" {
		return fmt.Errorf("buyer ID cannot be empty")
	}

	if t.SellerID == "" {
		return fmt.Errorf("seller ID cannot be empty")
	}

	if t.BuyerID == t.SellerID {
		return fmt.Errorf("buyer and seller must differ")
	}

	if t.ItemID == "" {
		return fmt.Errorf("item ID cannot be empty")
	}

	if err := t.Status.Validate(); err != nil {
		return fmt.Errorf("invalid status: %w", err)
	}

	return nil
}

// CreateOfferResult is the in-band answer of the transactions endpoint.
// TransactionExists is set when the (buyer, item) pair already has an offer;
// this is a domain outcome, not a failure.
type CreateOfferResult struct {
	Message           string `json:"message"`
	TransactionExists Flag   `json:"transactionExists"`

	// ExistingStatus is the status of the earlier offer, when the API reports it.
	ExistingStatus Status `json:"existingStatus,omitempty"`
}

// PendingOffer is an offer awaiting the viewer's decision as seller (Users/pending_transactions).
type PendingOffer struct {
	TransactionID   string    `json:"transactionID"`
	ItemID          string    `json:"itemID"`
	ItemName        string    `json:"itemName"`
	ItemPrice       Price     `json:"itemPrice"`
	TransactionDate Timestamp `json:"transactionDate"`
	BuyerID         string    `json:"buyerOrSellerID"`
	BuyerName       string    `json:"buyerOrSellerName"`
	BuyerEmail      string    `json:"buyerEmail"`
}

// TradeSide tells whether the viewer bought or sold in a completed trade.
type TradeSide string

const (
	TradeBought TradeSide = "bought"
	TradeSold   TradeSide = "sold"
)

// Trade is an accepted offer involving the viewer (Users/byid_accepted_transactions).
type Trade struct {
	TransactionID   string    `json:"transactionID"`
	ItemID          string    `json:"itemID"`
	Side            TradeSide `json:"state"`
	ItemName        string    `json:"itemName"`
	ItemPrice       Price     `json:"itemPrice"`
	TransactionDate Timestamp `json:"transactionDate"`
	OtherUserID     string    `json:"buyerOrSellerID"`
	OtherUsername   string    `json:"buyerOrSellerName"`
}

// ToggleResult is the answer of the isActive_switch endpoints.
type ToggleResult struct {
	Message     string `json:"message"`
	NewIsActive *Flag  `json:"new_isActive,omitempty"`
}

// Mail is a notification handed to the mail endpoint.
type Mail struct {
	RecipientEmail string `json:"recipient_email"`
	Subject        string `json:"subject"`
	Body           string `json:"mail_body"`
}

// ImageUpload is a base64-encoded image for the Images endpoint.
type ImageUpload struct {
	ImageName         string `json:"imageName"`
	ImageBase64       string `json:"imageBase64"`
	DestinationFolder string `json:"destinationFolder"`
}

// Package profile validates new listings and profile edits, and assembles a
// user's profile page.
package profile

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dyluth/kashi/internal/imagestore"
	"github.com/dyluth/kashi/pkg/market"
)

// ValidationError reports which field of a form was rejected.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var (
	allowedText = regexp.MustCompile(`^[a-zA-Z0-9\s.,'"\\]+$`)
	hasLetter   = regexp.MustCompile(`[a-zA-Z]`)
	doubleSpace = regexp.MustCompile(`\s{2,}`)
	e164        = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)
)

// ValidateText checks a listing name or description: letters present, only
// letters, digits, whitespace and . , ' " \ allowed, no runs of whitespace.
func ValidateText(field, text string) error {
	text = strings.TrimSpace(text)
	switch {
	case text == "":
		return &ValidationError{Field: field, Message: "cannot be empty"}
	case !allowedText.MatchString(text):
		return &ValidationError{Field: field, Message: "contains characters that are not allowed"}
	case doubleSpace.MatchString(text):
		return &ValidationError{Field: field, Message: "cannot contain consecutive spaces"}
	case !hasLetter.MatchString(text):
		return &ValidationError{Field: field, Message: "must contain letters"}
	}
	return nil
}

// Listing is the new-item form.
type Listing struct {
	Name        string
	Description string
	Price       string
	Image       imagestore.Image
}

// Validate checks every field and returns the parsed price.
func (l *Listing) Validate() (market.Price, error) {
	if err := ValidateText("name", l.Name); err != nil {
		return 0, err
	}
	if err := ValidateText("description", l.Description); err != nil {
		return 0, err
	}

	price, err := market.ParsePrice(strings.TrimSpace(l.Price))
	if err != nil || price <= 0 || math.IsInf(float64(price), 0) || math.IsNaN(float64(price)) {
		return 0, &ValidationError{Field: "price", Message: "must be a number greater than 0"}
	}

	if _, _, err := imagestore.ContentType(l.Image); err != nil {
		return 0, &ValidationError{Field: "image", Message: err.Error()}
	}

	return price, nil
}

// ItemCreator is the part of the API client used to publish a listing.
type ItemCreator interface {
	CreateItem(ctx context.Context, item *market.NewItem) error
}

// Publish validates the listing, uploads its image and creates the item as
// active and unsold.
func Publish(ctx context.Context, client ItemCreator, images imagestore.Store, seller string, l *Listing) (*market.NewItem, error) {
	if seller == "" {
		return nil, fmt.Errorf("you must be logged in to sell an item")
	}

	price, err := l.Validate()
	if err != nil {
		return nil, err
	}

	url, err := images.Upload(ctx, imagestore.FolderItems, l.Image)
	if err != nil {
		return nil, err
	}

	item := &market.NewItem{
		Name:        strings.TrimSpace(l.Name),
		Description: strings.TrimSpace(l.Description),
		Price:       price,
		Seller:      seller,
		Image:       url,
		IsActive:    true,
		IsSold:      false,
	}
	if err := client.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	return item, nil
}

// Edit is the profile edit form. Empty fields are left unchanged.
type Edit struct {
	Name    string
	Address string
	Phone   string
	Photo   *imagestore.Image
}

// Validate checks the set fields; at least one must be set.
func (e *Edit) Validate() error {
	name := strings.TrimSpace(e.Name)
	address := strings.TrimSpace(e.Address)
	phone := strings.TrimSpace(e.Phone)

	if name == "" && address == "" && phone == "" && e.Photo == nil {
		return &ValidationError{Field: "profile", Message: "fill in at least one field to update your profile"}
	}

	if n := utf8.RuneCountInString(name); name != "" && (n < 2 || n > 50) {
		return &ValidationError{Field: "name", Message: "must be between 2 and 50 characters long"}
	}
	if n := utf8.RuneCountInString(address); address != "" && (n < 5 || n > 200) {
		return &ValidationError{Field: "address", Message: "must be between 5 and 200 characters long"}
	}
	if phone != "" && !e164.MatchString(phone) {
		return &ValidationError{Field: "phone", Message: "must follow the format +<country_code><number>"}
	}
	if e.Photo != nil {
		if _, _, err := imagestore.ContentType(*e.Photo); err != nil {
			return &ValidationError{Field: "photo", Message: err.Error()}
		}
	}

	return nil
}

// ProfileUpdater is the part of the API client used to save a profile edit.
type ProfileUpdater interface {
	UpdateProfile(ctx context.Context, userID string, attrs market.ProfileAttributes) error
}

// Apply validates the edit, uploads the photo if any and saves the changes.
func Apply(ctx context.Context, client ProfileUpdater, images imagestore.Store, userID string, e *Edit) (market.ProfileAttributes, error) {
	if err := e.Validate(); err != nil {
		return market.ProfileAttributes{}, err
	}

	attrs := market.ProfileAttributes{
		Name:        strings.TrimSpace(e.Name),
		Address:     strings.TrimSpace(e.Address),
		PhoneNumber: strings.TrimSpace(e.Phone),
	}

	if e.Photo != nil {
		url, err := images.Upload(ctx, imagestore.FolderProfiles, *e.Photo)
		if err != nil {
			return market.ProfileAttributes{}, err
		}
		attrs.Picture = url
	}

	if err := client.UpdateProfile(ctx, userID, attrs); err != nil {
		return market.ProfileAttributes{}, fmt.Errorf("failed to update profile: %w", err)
	}
	return attrs, nil
}

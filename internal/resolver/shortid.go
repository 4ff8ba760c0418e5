package resolver

import (
	"fmt"
	"strings"
)

// MinShortIDLength is the minimum required length for short ID prefixes.
// Set to 6 characters to balance usability with collision avoidance.
const MinShortIDLength = 6

// ResolveID resolves a short ID prefix against the IDs of an already fetched
// listing (items, offers or users). kind names the collection in errors.
//
// An exact match always wins, even when it is also a prefix of other IDs.
// Otherwise the prefix must be at least MinShortIDLength characters and match
// exactly one ID.
func ResolveID(kind, shortID string, ids []string) (string, error) {
	shortID = strings.TrimSpace(shortID)
	if shortID == "" {
		return "", fmt.Errorf("%s ID cannot be empty", kind)
	}

	for _, id := range ids {
		if id == shortID {
			return id, nil
		}
	}

	if len(shortID) < MinShortIDLength {
		return "", fmt.Errorf("short ID must be at least %d characters (got %d)", MinShortIDLength, len(shortID))
	}

	var matches []string
	for _, id := range ids {
		if strings.HasPrefix(id, shortID) {
			matches = append(matches, id)
		}
	}

	switch len(matches) {
	case 0:
		return "", &NotFoundError{Kind: kind, ShortID: shortID}
	case 1:
		return matches[0], nil
	default:
		return "", &AmbiguousError{Kind: kind, ShortID: shortID, Matches: matches}
	}
}

// NotFoundError indicates no ID matched the short ID.
type NotFoundError struct {
	Kind    string
	ShortID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %ss found matching '%s'", e.Kind, e.ShortID)
}

// AmbiguousError indicates multiple IDs matched the short ID.
type AmbiguousError struct {
	Kind    string
	ShortID string
	Matches []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous short ID '%s' matches %d %ss", e.ShortID, len(e.Matches), e.Kind)
}

// FormatAmbiguousError creates a user-friendly error message for ambiguous short IDs.
// Lists all matching IDs (up to 10, then "...and N more").
func FormatAmbiguousError(err *AmbiguousError) string {
	msg := fmt.Sprintf("Error: ambiguous short ID '%s' matches %d %ss:\n", err.ShortID, len(err.Matches), err.Kind)

	displayCount := len(err.Matches)
	if displayCount > 10 {
		displayCount = 10
	}

	for i := 0; i < displayCount; i++ {
		msg += fmt.Sprintf("  %s\n", err.Matches[i])
	}

	if len(err.Matches) > 10 {
		msg += fmt.Sprintf("  ...and %d more\n", len(err.Matches)-10)
	}

	msg += fmt.Sprintf("\nUse a longer prefix to uniquely identify the %s.", err.Kind)
	return msg
}

// IsNotFoundError checks if an error is a NotFoundError.
func IsNotFoundError(err error) bool {
	_, ok := err.(*NotFoundError)
	return ok
}

// IsAmbiguousError checks if an error is an AmbiguousError.
func IsAmbiguousError(err error) bool {
	_, ok := err.(*AmbiguousError)
	return ok
}

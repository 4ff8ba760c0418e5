package commands

import (
	"errors"
	"fmt"

	"github.com/dyluth/kashi/internal/printer"
	"github.com/dyluth/kashi/internal/resolver"
)

// resolveID resolves a possibly shortened ID among ids, turning resolver
// failures into printed errors. listHint is the command that lists the IDs.
func resolveID(kind, shortID string, ids []string, listHint string) (string, error) {
	fullID, err := resolver.ResolveID(kind, shortID, ids)
	if err == nil {
		return fullID, nil
	}

	var ambigErr *resolver.AmbiguousError
	switch {
	case resolver.IsNotFoundError(err):
		return "", printer.Error(
			fmt.Sprintf("%s with ID '%s' not found", kind, shortID),
			fmt.Sprintf("No %s matches that ID.", kind),
			[]string{fmt.Sprintf("List them:\n  %s", listHint)},
		)
	case errors.As(err, &ambigErr):
		fmt.Fprintln(printer.ErrOut, resolver.FormatAmbiguousError(ambigErr))
		return "", fmt.Errorf("ambiguous short ID")
	default:
		return "", printer.Error(fmt.Sprintf("invalid %s ID", kind), err.Error(), nil)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

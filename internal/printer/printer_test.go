package printer

import (
	"bytes"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/kashi/pkg/market"
)

// capture redirects Out and ErrOut for the duration of the test
func capture(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	prevOut, prevErr, prevNoColor := Out, ErrOut, color.NoColor
	Out, ErrOut = &out, &errOut
	color.NoColor = true
	t.Cleanup(func() {
		Out, ErrOut, color.NoColor = prevOut, prevErr, prevNoColor
	})
	return &out, &errOut
}

func TestError(t *testing.T) {
	t.Run("returns error with title", func(t *testing.T) {
		_, errOut := capture(t)
		err := Error("Test Error", "This is a test error", []string{})
		require.Error(t, err)
		require.Equal(t, "Test Error", err.Error())
		assert.Contains(t, errOut.String(), "This is a test error")
	})

	t.Run("single suggestion printed plainly", func(t *testing.T) {
		_, errOut := capture(t)
		err := Error("Test Error", "Explanation", []string{"Try this fix"})
		require.Equal(t, "Test Error", err.Error())
		assert.Contains(t, errOut.String(), "Try this fix")
		assert.NotContains(t, errOut.String(), "Either:")
	})

	t.Run("multiple suggestions are numbered", func(t *testing.T) {
		_, errOut := capture(t)
		err := Error("Test Error", "Explanation", []string{
			"First option",
			"Second option",
		})
		require.Equal(t, "Test Error", err.Error())
		assert.Contains(t, errOut.String(), "Either:\n  1. First option\n  2. Second option\n")
	})
}

func TestErrorWithContext(t *testing.T) {
	_, errOut := capture(t)
	context := map[string]string{
		"Item":  "a1b2c3",
		"Buyer": "alice",
	}
	err := ErrorWithContext("Test Error", "Explanation", context, []string{"Fix it"})
	require.Error(t, err)
	require.Equal(t, "Test Error", err.Error())
	assert.Contains(t, errOut.String(), "  Buyer: alice\n  Item: a1b2c3\n")
}

func TestToasts(t *testing.T) {
	out, _ := capture(t)

	Success("Offer sent\n")
	Warning("Seller was not notified\n")
	Info("%d items\n", 3)

	assert.Equal(t, "✓ Offer sent\n⚠️  Seller was not notified\n3 items\n", out.String())
}

func TestAPIError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"transport", &market.TransportError{Method: "GET", Path: "Items", Err: errors.New("refused")}, "Could not reach the marketplace"},
		{"not found", &market.StatusError{Path: "Users/byid", StatusCode: 404}, "could not find it"},
		{"status", &market.StatusError{Path: "Items", StatusCode: 500, Message: "boom"}, "refused the request"},
		{"malformed", &market.MalformedResponseError{Path: "Items", Err: errors.New("bad json")}, "does not understand"},
		{"other", errors.New("plain failure"), "plain failure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errOut := capture(t)
			err := APIError("Failed to load items", tt.err)
			require.Equal(t, "Failed to load items", err.Error())
			assert.Contains(t, errOut.String(), tt.want)
		})
	}
}

package printer

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/dyluth/kashi/pkg/market"
)

func init() {
	// Users can disable colors with NO_COLOR
	if os.Getenv("NO_COLOR") == "" {
		color.NoColor = false
	}
}

// Out and ErrOut receive toasts and formatted errors. Tests swap them.
var (
	Out    io.Writer = os.Stdout
	ErrOut io.Writer = os.Stderr
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
)

// Success prints a success toast in green with a checkmark prefix
func Success(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if !strings.HasPrefix(msg, "✓") {
		green.Fprintf(Out, "✓ %s", msg)
	} else {
		green.Fprint(Out, msg)
	}
}

// Info prints an informational message in the default color
func Info(format string, a ...any) {
	fmt.Fprintf(Out, format, a...)
}

// Warning prints a warning toast in yellow
func Warning(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if !strings.HasPrefix(msg, "⚠️") {
		yellow.Fprintf(Out, "⚠️  %s", msg)
	} else {
		yellow.Fprint(Out, msg)
	}
}

// Error prints an error toast with title, explanation, and suggestions to
// ErrOut and returns an error holding only the title, for Cobra.
func Error(title string, explanation string, suggestions []string) error {
	return ErrorWithContext(title, explanation, nil, suggestions)
}

// ErrorWithContext is Error with key/value details printed under the explanation.
func ErrorWithContext(title string, explanation string, context map[string]string, suggestions []string) error {
	red.Fprintf(ErrOut, "%s\n\n", title)

	if explanation != "" {
		fmt.Fprintf(ErrOut, "%s\n", explanation)
	}

	if len(context) > 0 {
		keys := make([]string, 0, len(context))
		for key := range context {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		fmt.Fprintf(ErrOut, "\n")
		for _, key := range keys {
			fmt.Fprintf(ErrOut, "  %s: %s\n", key, context[key])
		}
	}

	if len(suggestions) > 0 {
		fmt.Fprintf(ErrOut, "\n")
		if len(suggestions) == 1 {
			fmt.Fprintf(ErrOut, "%s\n", suggestions[0])
		} else {
			fmt.Fprintf(ErrOut, "Either:\n")
			for i, suggestion := range suggestions {
				fmt.Fprintf(ErrOut, "  %d. %s\n", i+1, suggestion)
			}
		}
	}

	// SilenceErrors keeps Cobra from printing this a second time
	return fmt.Errorf("%s", title)
}

// APIError turns a failed marketplace call into an error toast. action reads
// like "Failed to load items".
func APIError(action string, err error) error {
	switch {
	case market.IsTransport(err):
		return Error(action, fmt.Sprintf("Could not reach the marketplace: %v", err), []string{
			"Check your network connection and api.base_url, then try again.",
		})
	case market.IsNotFound(err):
		return Error(action, fmt.Sprintf("The marketplace could not find it: %v", err), nil)
	case market.IsStatus(err):
		return Error(action, fmt.Sprintf("The marketplace refused the request: %v", err), []string{
			"Try again in a moment.",
		})
	case market.IsMalformed(err):
		return Error(action, fmt.Sprintf("The marketplace sent an answer kashi does not understand: %v", err), []string{
			"Run with --verbose to see the API calls.",
		})
	default:
		return Error(action, err.Error(), nil)
	}
}

// Step prints a step message with emphasis (used in multi-step operations)
func Step(format string, a ...any) {
	cyan.Fprintf(Out, "→ %s", fmt.Sprintf(format, a...))
}

// Println prints a plain message
func Println(a ...any) {
	fmt.Fprintln(Out, a...)
}

// Printf prints a plain formatted message
func Printf(format string, a ...any) {
	fmt.Fprintf(Out, format, a...)
}

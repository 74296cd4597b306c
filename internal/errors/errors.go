package errors

import (
	"fmt"
	"os"

	"github.com/julianstephens/hotset/internal/logger"
)

// hints tell the user what to do next for the errors they can act on.
var hints = map[string]string{
	"conflict":              "Another device changed this day in the meantime. Run the command again.",
	"cross_day_transaction": "Neither day was changed.",
	"not_found":             "List sessions with 'hotset session list' or show one with 'hotset schedule <session>'.",
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Hint returns the follow-up advice for err, or "" when there is none.
func Hint(err error) string {
	return hints[Kind(err)]
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err, "kind", Kind(err))
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		if hint := Hint(err); hint != "" {
			fmt.Fprintf(os.Stderr, "       %s\n", hint)
		}
		os.Exit(1)
	}
}

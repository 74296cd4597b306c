package cli

import (
	"fmt"

	"github.com/charmbracelet/huh"
)

// confirmFunc is swapped out in tests.
var confirmFunc = func(title, description string) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	)
	if err := form.Run(); err != nil {
		return false, fmt.Errorf("interactive form error: %w", err)
	}
	return ok, nil
}

// Confirm asks before a change that is hard to undo. yes skips the prompt.
func Confirm(yes bool, title, description string) (bool, error) {
	if yes {
		return true, nil
	}
	return confirmFunc(title, description)
}

// SetConfirm replaces the prompt and returns a restore func. Test helper.
func SetConfirm(fn func(title, description string) (bool, error)) func() {
	prev := confirmFunc
	confirmFunc = fn
	return func() { confirmFunc = prev }
}

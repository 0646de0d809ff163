package interactive

import (
	"context"
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/trebuchet-org/catapult/internal/config"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// ConfirmerAdapter asks yes/no questions on the terminal
type ConfirmerAdapter struct {
	config *config.RuntimeConfig
	run    func(prompt promptui.Prompt) (string, error)
}

// NewConfirmerAdapter creates a new confirmer adapter
func NewConfirmerAdapter(cfg *config.RuntimeConfig) *ConfirmerAdapter {
	return &ConfirmerAdapter{
		config: cfg,
		run: func(p promptui.Prompt) (string, error) {
			return p.Run()
		},
	}
}

// Confirm returns true when the operator answers yes. --yes answers for
// them; non-interactive mode without --yes is an error.
func (c *ConfirmerAdapter) Confirm(ctx context.Context, prompt string) (bool, error) {
	if c.config.Yes {
		return true, nil
	}
	if c.config.NonInteractive {
		return false, fmt.Errorf("confirmation required in non-interactive mode, pass --yes")
	}

	_, err := c.run(promptui.Prompt{
		Label:     prompt,
		IsConfirm: true,
	})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, promptui.ErrAbort):
		return false, nil
	case errors.Is(err, promptui.ErrInterrupt):
		return false, fmt.Errorf("confirmation cancelled: %w", err)
	default:
		return false, fmt.Errorf("confirmation failed: %w", err)
	}
}

// Ensure the adapter implements the interface
var _ usecase.Confirmer = (*ConfirmerAdapter)(nil)

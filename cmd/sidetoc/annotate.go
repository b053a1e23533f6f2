package main

import (
	"fmt"

	"github.com/fwojciec/sidetoc"
)

// Run executes the label command.
func (c *LabelCmd) Run(deps *Dependencies) error {
	if err := deps.Annotations.SetLabel(deps.Ctx, c.Key, c.Label); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sidetoc.ErrorMessage(err))
		return err
	}

	if c.Label == "" {
		fmt.Fprintf(deps.Stdout, "Cleared label for %s\n", c.Key)
		return nil
	}
	fmt.Fprintf(deps.Stdout, "Labeled %s as %q\n", c.Key, c.Label)
	return nil
}

// Run executes the check command.
func (c *CheckCmd) Run(deps *Dependencies) error {
	checked, err := deps.Annotations.ToggleChecked(deps.Ctx, c.Key)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sidetoc.ErrorMessage(err))
		return err
	}

	state := "unchecked"
	if checked {
		state = "checked"
	}
	fmt.Fprintf(deps.Stdout, "%s %s\n", c.Key, state)
	return nil
}

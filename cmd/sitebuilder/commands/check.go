package commands

import (
	"fmt"

	"git.home.luguber.info/inful/sitebuilder/internal/check"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	Output string `short:"o" help:"Output directory to inspect (overrides config)"`
}

func (c *CheckCmd) Run(_ *Global, root *CLI) error {
	cfg, err := LoadConfig(root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	ApplyPathOverrides(cfg, "", "", c.Output)

	issues, err := check.Run(cfg.Output)
	if err != nil {
		return err
	}

	for _, issue := range issues {
		fmt.Println(issue.String())
	}

	if len(issues) > 0 {
		return fmt.Errorf("%d issue(s) found", len(issues))
	}
	fmt.Println("No issues found")
	return nil
}

package commands

import (
	"fmt"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/scaffold"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool   `help:"Overwrite existing files"`
	Title string `help:"Site title used in the scaffolded files" default:"My Site"`
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	fmt.Println("Initializing sitebuilder project")
	fmt.Printf("Writing configuration to %s\n", root.Config)

	if err := config.Init(root.Config, i.Title, i.Force); err != nil {
		return err
	}

	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}

	if err := scaffold.Write(".", cfg, i.Force); err != nil {
		return err
	}

	fmt.Println("initialized successfully")
	return nil
}

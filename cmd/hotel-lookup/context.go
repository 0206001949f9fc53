package main

import (
	"github.com/spf13/cobra"

	"hotel_lookup/internal/bootstrap"
	"hotel_lookup/internal/shared"
)

type commandContext struct {
	cfg     shared.Config
	verbose bool
}

func newCommandContext(cfg shared.Config) *commandContext {
	return &commandContext{cfg: cfg}
}

// withDeps builds the engine for one command run and releases it afterwards.
func (c *commandContext) withDeps(cmd *cobra.Command, fn func(*bootstrap.Deps) error) error {
	deps, err := bootstrap.Build(cmd.Context(), c.cfg)
	if err != nil {
		return err
	}
	defer deps.Close()
	return fn(deps)
}

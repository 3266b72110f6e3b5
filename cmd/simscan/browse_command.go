package main

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"simscan/internal/tui"
)

func newBrowseCommand(ctx *commandContext) *cobra.Command {
	var flags scanFlags
	cmd := &cobra.Command{
		Use:   "browse <root>",
		Short: "Scan root and browse the pair scores interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := flags.apply(cmd, cfg); err != nil {
				return err
			}
			// Log lines would tear the alternate screen.
			logger := ctx.logger(io.Discard)
			svc, store, err := buildService(cfg, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			summary, err := svc.Scan(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(tui.New(svc, summary), tea.WithAltScreen()).Run()
			return err
		},
	}
	flags.register(cmd)
	return cmd
}

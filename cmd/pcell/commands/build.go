package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/pcell/internal/adapters/telemetry/progrock"
	"go.trai.ch/pcell/internal/app"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the cells declared in the project file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}
			jobs, err := cmd.Flags().GetInt("jobs")
			if err != nil {
				return err
			}
			noSession, err := cmd.Flags().GetBool("no-session")
			if err != nil {
				return err
			}
			progress, err := cmd.Flags().GetBool("progress")
			if err != nil {
				return err
			}

			if progress {
				rec := progrock.NewConsole(cmd.ErrOrStderr())
				defer func() { _ = rec.Close() }()
				c.app.WithTracer(rec)
			}

			return c.app.Build(cmd.Context(), app.BuildOptions{
				ConfigPath: configPath,
				Jobs:       jobs,
				NoSession:  noSession,
			})
		},
	}
	cmd.Flags().IntP("jobs", "j", 0, "Maximum concurrent cell builds (0 = one per CPU)")
	cmd.Flags().Bool("no-session", false, "Skip the persisted layout store for this run")
	cmd.Flags().Bool("progress", false, "Render live build progress")
	return cmd
}

// ABOUTME: Root command and global flags for the mealstreak CLI
// ABOUTME: Wires every subcommand and validates verbose/quiet/format
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
)

const banner = `
███╗   ███╗███████╗ █████╗ ██╗     ███████╗████████╗██████╗ ███████╗ █████╗ ██╗  ██╗
████╗ ████║██╔════╝██╔══██╗██║     ██╔════╝╚══██╔══╝██╔══██╗██╔════╝██╔══██╗██║ ██╔╝
██╔████╔██║█████╗  ███████║██║     ███████╗   ██║   ██████╔╝█████╗  ███████║█████╔╝
██║╚██╔╝██║██╔══╝  ██╔══██║██║     ╚════██║   ██║   ██╔══██╗██╔══╝  ██╔══██║██╔═██╗
██║ ╚═╝ ██║███████╗██║  ██║███████╗███████║   ██║   ██║  ██║███████╗██║  ██║██║  ██╗
╚═╝     ╚═╝╚══════╝╚═╝  ╚═╝╚══════╝╚══════╝   ╚═╝   ╚═╝  ╚═╝╚══════╝╚═╝  ╚═╝╚═╝  ╚═╝`

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mealstreak",
		Short: "Track meal completions and streaks",
		Long: banner + `

Track which planned meals you actually ate and keep a running streak.

A day counts as complete when its meals satisfy the day rule
(anyMeal or allMeals). Completions live in a local SQLite database
or sync through Charm cloud across devices.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose && quiet {
				return fmt.Errorf("--verbose and --quiet are mutually exclusive")
			}
			switch outputFormat {
			case "auto", "table", "json":
			default:
				return fmt.Errorf("unknown format %q (want auto, table or json)", outputFormat)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only print errors and requested data")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, table or json")

	cmd.AddCommand(NewMarkCmd())
	cmd.AddCommand(NewListCmd())
	cmd.AddCommand(NewStreakCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewSyncCmd())
	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

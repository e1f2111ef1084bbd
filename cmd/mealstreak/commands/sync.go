// ABOUTME: Sync commands for Charm cloud synchronization
// ABOUTME: Provides status, now, keys, unlink and wipe
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/mealstreak/internal/app"
	"github.com/harper/mealstreak/internal/charm"
)

// NewSyncCmd creates the sync command group
func NewSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Manage Charm cloud synchronization",
		Long: `Manage synchronization with Charm cloud.

With MEALSTREAK_BACKEND=charm completions sync across devices linked
to the same Charm account via SSH keys. The charm account is the
signed-in user; unlinking every key signs you out.`,
	}

	cmd.AddCommand(newSyncStatusCmd())
	cmd.AddCommand(newSyncNowCmd())
	cmd.AddCommand(newSyncKeysCmd())
	cmd.AddCommand(newSyncUnlinkCmd())
	cmd.AddCommand(newSyncWipeCmd())

	return cmd
}

func requireCharm(a *app.App) (*charm.Client, error) {
	if a.Charm == nil {
		return nil, fmt.Errorf("sync needs the charm backend (MEALSTREAK_BACKEND=charm)")
	}
	return a.Charm, nil
}

func newSyncStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show backend, identity and record counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			session := a.Orchestrator.Session()

			if a.Charm == nil {
				fmt.Fprintf(out, "Backend: %s (no cloud sync)\n", a.Config.Backend)
				fmt.Fprintf(out, "User ID: %s\n", session.UserID)
				if a.SQLite != nil {
					n, err := a.SQLite.Count(cmd.Context(), session.UserID)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Completions: %d\n", n)
					if r, ok, err := a.SQLite.Bounds(cmd.Context(), session.UserID); err == nil && ok {
						fmt.Fprintf(out, "Span: %s\n", r)
					}
				}
				return nil
			}

			cfg := a.Charm.Config()
			if !session.Authenticated {
				fmt.Fprintln(out, "Status: Not connected")
				fmt.Fprintln(out, "Run 'mealstreak sync keys' to check your SSH keys")
				return nil
			}

			status := "Connected"
			if cfg.Offline {
				status = "Offline (local only)"
			}
			fmt.Fprintf(out, "Status: %s\n", status)
			fmt.Fprintf(out, "User ID: %s\n", session.UserID)
			fmt.Fprintf(out, "Host: %s\n", cfg.Host)
			fmt.Fprintf(out, "Database: %s\n", cfg.DBName)

			n, err := a.Charm.CountCompletions(session.UserID)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Completions: %d\n", n)
			return nil
		},
	}
}

func newSyncNowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "now",
		Short: "Force immediate sync with Charm cloud",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			client, err := requireCharm(a)
			if err != nil {
				return err
			}

			if !quiet {
				fmt.Fprintln(cmd.OutOrStdout(), "Syncing...")
			}
			if err := client.Sync(); err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}
			if a.Orchestrator.Session().Authenticated {
				if err := a.Reload(cmd.Context()); err != nil {
					return fmt.Errorf("reload after sync failed: %w", err)
				}
			}

			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Sync complete (current streak: %s)\n", pluralDays(a.Snapshot().Streak.CurrentStreak))
			}
			return nil
		},
	}
}

func newSyncKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List authorized SSH keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			client, err := requireCharm(a)
			if err != nil {
				return err
			}

			keys, err := client.AuthorizedKeys()
			if err != nil {
				return fmt.Errorf("failed to get authorized keys: %w", err)
			}
			if keys == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "No authorized keys found")
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Authorized SSH keys:")
			fmt.Fprintln(cmd.OutOrStdout(), keys)
			return nil
		},
	}
}

func newSyncUnlinkCmd() *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "unlink <key>",
		Short: "Unlink an authorized SSH key",
		Long: `Remove an SSH key from your Charm account.

Unlinking the key this device uses signs it out; its cached
completions are cleared on the next identity check.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				fmt.Fprintf(cmd.OutOrStdout(), "This will unlink %s from your account\n", args[0])
				fmt.Fprintln(cmd.OutOrStdout(), "Run with --confirm to proceed")
				return nil
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			client, err := requireCharm(a)
			if err != nil {
				return err
			}
			if err := client.UnlinkKey(args[0]); err != nil {
				return fmt.Errorf("failed to unlink key: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Key unlinked")
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirm, "confirm", false, "Confirm the unlink operation")

	return cmd
}

func newSyncWipeCmd() *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "wipe",
		Short: "Wipe all local data (nuclear option)",
		Long: `Completely wipe all local Charm data.

WARNING: This deletes all locally cached data. Your cloud data
remains intact and will be re-synced on next access.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				fmt.Fprintln(cmd.OutOrStdout(), "This will wipe ALL local data!")
				fmt.Fprintln(cmd.OutOrStdout(), "Run with --confirm to proceed")
				return nil
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			client, err := requireCharm(a)
			if err != nil {
				return err
			}
			if err := client.Reset(); err != nil {
				return fmt.Errorf("failed to wipe data: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Local data wiped successfully")
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirm, "confirm", false, "Confirm the wipe operation")

	return cmd
}

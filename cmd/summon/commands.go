package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/summon/internal/engine"
)

// LaunchFlags holds flags for the launch command
type LaunchFlags struct {
	Reindex bool
	NoWait  bool
}

// SearchFlags holds flags for the search command
type SearchFlags struct {
	Limit  int
	NoWait bool
}

// IndexFlags holds flags for the index command
type IndexFlags struct {
	Purge bool
}

// HistoryFlags holds flags for the history command
type HistoryFlags struct {
	Limit int
}

func bindLaunchFlags(cmd *cobra.Command, flags *LaunchFlags) {
	cmd.Flags().BoolVar(&flags.Reindex, "reindex", false, "rebuild the whole index before matching")
	cmd.Flags().BoolVar(&flags.NoWait, "no-wait", false, "do not wait for background indexing")
}

func createLaunchCommand(c *cli) *cobra.Command {
	flags := &LaunchFlags{}
	cmd := &cobra.Command{
		Use:   "launch <query...>",
		Short: "Launch the best match for a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.launch(cmd, args, flags)
		},
	}
	bindLaunchFlags(cmd, flags)
	return cmd
}

func (c *cli) launch(cmd *cobra.Command, args []string, flags *LaunchFlags) error {
	message, code := c.app.Engine().Launch(cmd.Context(), joinQuery(args), engine.LaunchOptions{
		ForceReindex: flags.Reindex,
		Wait:         !flags.NoWait,
	})
	c.exitCode = code
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), renderLaunch(message, code))
	return nil
}

func createSearchCommand(c *cli) *cobra.Command {
	flags := &SearchFlags{}
	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "List the programs matching a query, best first",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := joinQuery(args)
			results := c.app.Engine().Search(cmd.Context(), query, flags.Limit, !flags.NoWait)
			if len(results) == 0 {
				c.exitCode = engine.StatusFailed
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), renderResults(query, results))
			return nil
		},
	}
	cmd.Flags().IntVarP(&flags.Limit, "limit", "n", engine.DefaultLimit, "maximum number of results")
	cmd.Flags().BoolVar(&flags.NoWait, "no-wait", false, "do not wait for background indexing")
	return cmd
}

func createIndexCommand(c *cli) *cobra.Command {
	flags := &IndexFlags{}
	cmd := &cobra.Command{
		Use:         "index",
		Short:       "Collect every source now and rewrite the stored index",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationRebuild: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.Purge {
				if err := c.app.Purge(cmd.Context()); err != nil {
					return err
				}
			}
			if err := c.app.Engine().Index(cmd.Context()); err != nil {
				return err
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), renderStats(c.app.Engine().Stats(), false))
			return nil
		},
	}
	cmd.Flags().BoolVar(&flags.Purge, "purge", false, "drop the stored cache and usage stats first")
	return cmd
}

func createStatsCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show index state, catalog size and usage counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _ = fmt.Fprint(cmd.OutOrStdout(), renderStats(c.app.Engine().Stats(), true))
			return nil
		},
	}
}

func createHistoryCommand(c *cli) *cobra.Command {
	flags := &HistoryFlags{}
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent launch attempts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.Limit <= 0 {
				return errors.New("--limit must be positive")
			}
			events, err := c.app.Engine().History(cmd.Context(), flags.Limit)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), renderHistory(events))
			return nil
		},
	}
	cmd.Flags().IntVarP(&flags.Limit, "limit", "n", 20, "number of entries")
	return cmd
}

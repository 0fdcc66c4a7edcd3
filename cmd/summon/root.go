package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/summon/internal/app"
	"github.com/MrSnakeDoc/summon/internal/version"
)

// GlobalFlags holds the persistent flags shared by every command.
type GlobalFlags struct {
	ConfigPath  string
	LogLevel    string
	NoCache     bool
	NoAutoIndex bool
}

// annotationRebuild marks commands that index from scratch instead of
// starting from the stored snapshot.
const annotationRebuild = "summon/rebuild"

type cli struct {
	flags    GlobalFlags
	app      *app.App
	exitCode int
}

func (c *cli) rootCommand() *cobra.Command {
	launchFlags := &LaunchFlags{}

	root := &cobra.Command{
		Use:   "summon [query...]",
		Short: "Find and launch installed programs by name",
		Long: `summon indexes the programs installed on this machine and launches the
best match for a free-form query. Chinese names also match by pinyin.

Running summon with a query is the same as "summon launch".`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.HasParent() && len(args) == 0 {
				return nil
			}
			return c.open(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return c.launch(cmd, args, launchFlags)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.ConfigPath, "config", "", "config file (default <config dir>/summon/config.yaml)")
	pf.StringVar(&c.flags.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.BoolVar(&c.flags.NoCache, "no-cache", false, "do not read or write the program cache")
	pf.BoolVar(&c.flags.NoAutoIndex, "no-auto-index", false, "do not index in the background")

	bindLaunchFlags(root, launchFlags)

	root.AddCommand(
		createSearchCommand(c),
		createLaunchCommand(c),
		createIndexCommand(c),
		createStatsCommand(c),
		createHistoryCommand(c),
	)

	return root
}

func (c *cli) open(cmd *cobra.Command) error {
	if c.app != nil {
		return nil
	}
	a, err := app.New(cmd.Context(), app.Options{
		ConfigFile:  c.flags.ConfigPath,
		LogLevel:    c.flags.LogLevel,
		NoCache:     c.flags.NoCache,
		NoAutoIndex: c.flags.NoAutoIndex,
		Rebuild:     cmd.Annotations[annotationRebuild] == "true",
	})
	if err != nil {
		return err
	}
	c.app = a
	return nil
}

func (c *cli) close() {
	if c.app != nil {
		c.app.Close()
	}
}

func joinQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

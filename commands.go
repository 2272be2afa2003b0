package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/linht/docplug/document"
	"github.com/linht/docplug/plugins"
	"github.com/linht/docplug/population"
	"github.com/linht/docplug/primes"
)

func newRootCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "docplug [sub-command]",
		Short: "Load document plugins and run documents through them",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "path of the YAML config file")

	cmd.AddCommand(
		newServeCommand(&configPath),
		newPluginsCommand(&configPath),
		newTransformCommand(&configPath),
		newPopulationCommand(&configPath),
		newPrimesCommand(),
	)
	return cmd
}

// setup reads the config and installs the logger. A missing config file is an
// error only when required or when --config was given explicitly; otherwise
// the defaults apply with the built-in plugins configured.
func setup(cmd *cobra.Command, path string, required bool, logOut io.Writer) (*Config, error) {
	required = required || cmd.Flags().Changed("config")

	cfg, err := loadConfig(path)
	switch {
	case err == nil:
	case !required && errors.Is(err, os.ErrNotExist):
		cfg = defaultConfig()
		cfg.Plugins = builtinPlugins()
	default:
		return nil, err
	}

	slog.SetDefault(newLogger(cfg.Log.Level, cfg.Log.Format, logOut))
	return cfg, nil
}

func builtinPlugins() []string {
	return []string{
		plugins.TypeName(&plugins.CountWords{}),
		plugins.TypeName(&plugins.ReplaceText{}),
	}
}

func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(cmd, *configPath, true, os.Stdout)
			if err != nil {
				return err
			}
			return runServer(cfg)
		},
	}
}

func newPluginsCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "plugins",
		Short: "Load the configured plugin types and list the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(cmd, *configPath, false, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			failed := loadPlugins(cfg.Plugins)
			renderPlugins(cmd.OutOrStdout(), cfg.Plugins, failed)
			return nil
		},
	}
}

func renderPlugins(out io.Writer, configured []string, failed map[string]error) {
	status := make(map[string]string)
	for _, name := range plugins.Types() {
		status[name] = "available"
	}
	for _, name := range configured {
		if err, ok := failed[name]; ok {
			status[name] = "failed: " + err.Error()
		} else {
			status[name] = "loaded"
		}
	}

	types := make([]string, 0, len(status))
	for name := range status {
		types = append(types, name)
	}
	sort.Strings(types)

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Type", "Status"})
	table.SetBorder(false)
	table.SetColumnSeparator("|")
	table.SetAutoWrapText(false)
	for _, name := range types {
		table.Append([]string{name, status[name]})
	}
	table.Render()

	fmt.Fprintf(out, "\nRegistered: %s\n", strings.Join(plugins.NewRegistry().Names(), ", "))
}

func newTransformCommand(configPath *string) *cobra.Command {
	var find, replace, separator string

	cmd := &cobra.Command{
		Use:   "transform <plugin> <file>",
		Short: "Run a document file through a registered plugin",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(cmd, *configPath, false, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			loadPlugins(cfg.Plugins)

			doc, err := document.Read(args[1])
			if err != nil {
				return err
			}

			params := map[string]any{}
			if cmd.Flags().Changed("find") {
				params["find"] = find
			}
			if cmd.Flags().Changed("replace") {
				params["replace"] = replace
			}
			if cmd.Flags().Changed("separator") {
				params["separator"] = separator
			}

			result, err := transform(plugins.NewRegistry(), args[0], params, doc)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result)
			return nil
		},
	}
	cmd.Flags().StringVar(&find, "find", "", "text to find (replace_text)")
	cmd.Flags().StringVar(&replace, "replace", "", "replacement text (replace_text)")
	cmd.Flags().StringVar(&separator, "separator", " ", "word separator (count_words)")
	return cmd
}

func transform(reg *plugins.Registry, name string, params map[string]any, doc *document.Document) (any, error) {
	p, err := reg.Get(name)
	if err != nil {
		return nil, fmt.Errorf("plugin %q: %w", name, err)
	}
	if cfg, ok := p.(plugins.Configurable); ok && len(params) > 0 {
		if err := cfg.Configure(params); err != nil {
			return nil, err
		}
	}
	return p.Transform(doc)
}

func newPopulationCommand(configPath *string) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "population <city> <state>",
		Short: "Look up the population of a city",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(cmd, *configPath, false, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if file == "" {
				file = cfg.Population.File
			}

			adapter, err := population.NewAdapter(file)
			if err != nil {
				return err
			}
			n, err := adapter.Population(args[0], args[1])
			if err != nil {
				return err
			}
			if n == population.NotFound {
				return fmt.Errorf("no population for %s, %s", args[0], args[1])
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "population data file (defaults to population.file)")
	return cmd
}

func newPrimesCommand() *cobra.Command {
	var count, nth int

	cmd := &cobra.Command{
		Use:   "primes",
		Short: "Print prime numbers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if cmd.Flags().Changed("nth") {
				fmt.Fprintln(out, primes.Nth(nth))
				return nil
			}

			values := primes.First(count)
			parts := make([]string, len(values))
			for i, p := range values {
				parts[i] = strconv.Itoa(p)
			}
			fmt.Fprintln(out, strings.Join(parts, " "))
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "count", 10, "number of primes to print")
	cmd.Flags().IntVar(&nth, "nth", 0, "print only the prime at this zero-based position")
	return cmd
}

package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"context_bench/internal/bench"
	"context_bench/internal/mcp"
)

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r) + "..."
}

func serverNames(cfg *mcp.Config) string {
	names := cfg.ServerNames()
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

func (a *app) listCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List packages, scenarios or configs",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "packages",
			Short: "List available packages",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				pkgs := bench.NewLoader(a.bench.Paths.Scenarios).ListPackages()
				fmt.Fprint(a.out, "Available Packages:\n\n")
				if len(pkgs) == 0 {
					fmt.Fprintf(a.out, "No packages found in %s/ directory\n\n", a.bench.Paths.Scenarios)
					return nil
				}
				for _, p := range pkgs {
					fmt.Fprintf(a.out, "  %s\n    Language: %s\n    Scenarios: %d\n\n", p.PackageID, p.Language, len(p.Scenarios))
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "scenarios",
			Short: "List available scenarios grouped by package",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				listed := bench.NewLoader(a.bench.Paths.Scenarios).ListScenarios()
				fmt.Fprint(a.out, "Available Scenarios:\n\n")
				if len(listed) == 0 {
					fmt.Fprintf(a.out, "No scenarios found in %s/ directory\n\n", a.bench.Paths.Scenarios)
					return nil
				}
				current := ""
				for _, s := range listed {
					if s.PackageID != current {
						if current != "" {
							fmt.Fprintln(a.out)
						}
						current = s.PackageID
						fmt.Fprintf(a.out, "  %s\n", current)
					}
					fmt.Fprintf(a.out, "    %s\n      %s\n", s.FullID, preview(s.Item.Query, 80))
				}
				fmt.Fprintln(a.out)
				return nil
			},
		},
		&cobra.Command{
			Use:   "configs",
			Short: "List available MCP configs",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				dir := a.bench.Paths.Configs
				names, err := mcp.ListConfigs(dir)
				if err != nil {
					return err
				}
				fmt.Fprint(a.out, "Available Configurations:\n\n")
				if len(names) == 0 {
					fmt.Fprintf(a.out, "No configs found in %s/ directory\n\n", dir)
					return nil
				}
				for _, name := range names {
					cfg, err := mcp.LoadConfig(dir, name)
					if err != nil {
						return configError("%v", err)
					}
					fmt.Fprintf(a.out, "  %s\n    %s\n    MCP servers: %s\n\n", cfg.ConfigName, cfg.Description, serverNames(cfg))
				}
				return nil
			},
		},
	)
	return cmd
}

func (a *app) showCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show package or scenario details",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "package <id>",
			Short: "Show a package",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				pkg, err := bench.NewLoader(a.bench.Paths.Scenarios).LoadPackage(args[0])
				if err != nil {
					return configError("%v", err)
				}
				vars := make([]string, 0, len(pkg.EnvVars))
				for k := range pkg.EnvVars {
					vars = append(vars, k)
				}
				sort.Strings(vars)
				env := "none"
				if len(vars) > 0 {
					env = strings.Join(vars, ", ")
				}

				fmt.Fprintf(a.out, "Package: %s\n\n", pkg.PackageID)
				fmt.Fprintf(a.out, "Language: %s\n", pkg.Language)
				fmt.Fprintf(a.out, "Runtime: %s\n", pkg.Runtime.Version)
				fmt.Fprintf(a.out, "Environment Variables: %s\n", env)
				fmt.Fprintf(a.out, "\nScenarios (%d):\n\n", len(pkg.Scenarios))
				for _, s := range pkg.Scenarios {
					fmt.Fprintf(a.out, "  %s\n", s.ID)
					fmt.Fprintf(a.out, "    Query: %s\n", preview(s.Query, 100))
					fmt.Fprintf(a.out, "    Oracle: %s\n", s.Oracle)
					fmt.Fprintf(a.out, "    Sources: %d\n\n", len(s.Sources))
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "scenario <package:scenario>",
			Short: "Show a scenario",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				l := bench.NewLoader(a.bench.Paths.Scenarios)
				s, err := l.LoadScenario(args[0])
				if err != nil {
					return configError("%v", err)
				}
				fmt.Fprintf(a.out, "Scenario: %s\n\n", s.FullID())
				fmt.Fprintf(a.out, "Name: %s\n", s.Name)
				fmt.Fprintf(a.out, "Language: %s\n", s.Language())
				fmt.Fprintf(a.out, "\nQuery:\n%s\n", s.Query)
				fmt.Fprintf(a.out, "\nOracle: %s\n", s.Oracle)
				for _, src := range s.Sources {
					fmt.Fprintf(a.out, "  - %s\n", src)
				}
				if missing := bench.MissingEnv(s.Package, os.LookupEnv); len(missing) > 0 {
					fmt.Fprintf(a.out, "\nMissing environment variables: %s\n", strings.Join(missing, ", "))
				}
				return nil
			},
		},
	)
	return cmd
}

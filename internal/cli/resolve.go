package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mhersz/astrid/internal/config"
	"github.com/mhersz/astrid/internal/ir"
	"github.com/mhersz/astrid/internal/loader"
	"github.com/mhersz/astrid/internal/naming"
	"github.com/mhersz/astrid/internal/report"
	"github.com/mhersz/astrid/internal/resolve"
)

func ResolveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve an OpenAPI spec into the intermediate representation",
		RunE:  runResolve,
	}

	config.BindFlags(cmd)

	return cmd
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd)
	if err != nil {
		return err
	}
	naming.SetAdditionalInitialisms(cfg.Naming.AdditionalInitialisms)

	loaded, err := loader.LoadFile(cfg.Spec)
	if err != nil {
		return fmt.Errorf("loading spec: %w", err)
	}

	for _, w := range loaded.Warnings {
		cmd.PrintErrf("Warning: %s\n", w)
	}

	if cfg.Validate {
		violations, err := loaded.Validate()
		if err != nil {
			return fmt.Errorf("validating spec: %w", err)
		}
		for _, v := range violations {
			cmd.PrintErrf("Warning: %s\n", v)
		}
	}

	result, genErr := resolve.ResolveDocument(&loaded.Document.Model, cfg)
	if genErr != nil {
		return fmt.Errorf("resolving spec: %s", genErr.Error())
	}

	errs := result.Errors()
	report.WriteErrors(cmd.ErrOrStderr(), errs)

	warnings, errors := report.CountBySeverity(errs)
	endpoints := len(result.Endpoints())
	classes := len(result.Schemas.ClassNames())

	cmd.PrintErrf("Loaded OpenAPI %s: %s v%s\n", loaded.Version, result.Title, result.Version)
	cmd.PrintErrf("  Classes: %d\n", classes)
	cmd.PrintErrf("  Endpoints: %d\n", endpoints)
	if warnings > 0 || errors > 0 {
		cmd.PrintErrf("  Report: %d warning(s), %d error(s)\n", warnings, errors)
	}

	out, err := report.MarshalResult(result)
	if err != nil {
		return fmt.Errorf("rendering result: %w", err)
	}

	if cfg.Output == "" {
		cmd.Print(string(out))
	} else {
		if err := os.WriteFile(cfg.Output, out, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", cfg.Output, err)
		}
		cmd.PrintErrf("Written: %s\n", cfg.Output)
	}

	if hasFatal(errs) && endpoints == 0 {
		return fmt.Errorf("no endpoints could be resolved")
	}
	return nil
}

func hasFatal(errs []*ir.ParseError) bool {
	for _, err := range errs {
		if err.Level == ir.LevelError {
			return true
		}
	}
	return false
}

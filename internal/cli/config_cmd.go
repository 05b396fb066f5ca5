package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/tempo/internal/config"
)

// AddConfigCommand adds the config command and its subcommands to the root command.
func AddConfigCommand(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage TEMPO configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())

	root.AddCommand(cmd)
}

// newConfigInitCmd creates the config init command.
func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		Long: `Write the built-in defaults to the global config file
(~/.tempo/config.yaml). Refuses to overwrite an existing file unless
--force is given.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd.Context(), os.Stdout, force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config file")

	return cmd
}

// runConfigInit executes the config init command.
func runConfigInit(ctx context.Context, w io.Writer, force bool) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	tempoHome, err := getTempoHome()
	if err != nil {
		return err
	}
	path, err := config.GlobalConfigPath(tempoHome)
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}

	data, err := yaml.Marshal(config.DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}

	if err := os.MkdirAll(tempoHome, 0o750); err != nil {
		return fmt.Errorf("failed to create tempo home: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	_, _ = fmt.Fprintf(w, "Wrote default configuration to %s\n", path)
	return nil
}

// newConfigShowCmd creates the config show command.
func newConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long: `Show the configuration after merging defaults, the global config file,
and TEMPO_* environment variables.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd.Context(), cmd, os.Stdout)
		},
	}

	return cmd
}

// runConfigShow executes the config show command.
func runConfigShow(ctx context.Context, cmd *cobra.Command, w io.Writer) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	outputFormat := cmd.Flag("output").Value.String()

	tempoHome, err := getTempoHome()
	if err != nil {
		return err
	}
	cfg, err := config.Load(ctx, tempoHome)
	if err != nil {
		return err
	}

	if outputFormat == OutputJSON {
		return outputJSON(w, cfg)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, _ = w.Write(data)
	return nil
}

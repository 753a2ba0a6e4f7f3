package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/tagbalance/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/tagbalance.yaml
var configTemplate embed.FS

// templatePath is the path of the configuration template in configTemplate.
const templatePath = "templates/tagbalance.yaml"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new tagbalance configuration file",
		Long: `Initialize creates a new .tagbalance configuration file in the current directory.

The generated file documents every option:
- the language of labels and messages
- extra element names to count
- the number of files checked in parallel
- the default report format

Examples:
  # Create .tagbalance in current directory
  tagbalance init

  # Create config file at a specific path
  tagbalance init -o myconfig.yaml

  # Force overwrite existing file
  tagbalance init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	// The template must stay loadable by the config package.
	if _, err := config.ParseConfig(content); err != nil {
		return fmt.Errorf("invalid config template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to configure:")
	fmt.Fprintln(out, "  - the report language (en, ru)")
	fmt.Fprintln(out, "  - extra element names to count")
	fmt.Fprintln(out, "  - the default report format")

	return nil
}

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"tagbot/taglang/pkg/cli"
	"tagbot/taglang/pkg/config"
	"tagbot/taglang/pkg/tag/grammar"
	"tagbot/taglang/pkg/tag/parser"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "tag",
	Short: "Parse, check and serve tag programs",
	Long: `tag is the front end of the tag scripting language used by chat bots
to store small named programs.

It provides:
  - A grammar-driven parser producing a typed AST
  - Syntax checking with positions, context and suggestions
  - A snippet library backed by SQLite with retention
  - An HTTP API with metrics and health probes`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with the command's exit code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig reads the config file. A missing file is only an error when
// --config was given explicitly; otherwise built-in defaults apply.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, fs.ErrNotExist) && !configFlagChanged(cmd) {
		cfg = config.Default()
		if err := config.Validate(cfg); err != nil {
			return nil, cli.NewConfigError("", err.Error())
		}
		return cfg, nil
	}
	return nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
}

func configFlagChanged(cmd *cobra.Command) bool {
	if cmd == nil {
		return false
	}
	f := cmd.Flags().Lookup("config")
	return f != nil && f.Changed
}

// loadParser returns the parser for grammarFile, or for the embedded
// grammar when grammarFile is empty.
func loadParser(grammarFile string) (*parser.Parser, error) {
	if grammarFile == "" {
		return parser.Default()
	}
	g, err := grammar.LoadFile(grammarFile)
	if err != nil {
		return nil, err
	}
	return parser.New(g)
}

package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tagbot/taglang/pkg/cli"
	"tagbot/taglang/pkg/tag/grammar"
	"tagbot/taglang/pkg/tag/parser"
)

var grammarFlags struct {
	file string
	yaml bool
}

var grammarCmd = &cobra.Command{
	Use:   "grammar",
	Short: "Inspect and validate the tag grammar",
	Long: `Inspect and validate the grammar resource the parser is built from.

Subcommands:
  show   - Print the tokens, rules, keywords and tree names of a grammar
  check  - Load a grammar and confirm the AST builder covers it

Without --file the embedded grammar is used.

Examples:
  # Summarize the embedded grammar
  tag grammar show

  # Print the embedded grammar text
  tag grammar show --yaml

  # Validate a modified grammar before deploying it
  tag grammar check --file tag.yaml`,
}

var grammarShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a grammar summary",
	Args:  cobra.NoArgs,
	RunE:  runGrammarShow,
}

var grammarCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate a grammar",
	Args:  cobra.NoArgs,
	RunE:  runGrammarCheck,
}

func init() {
	rootCmd.AddCommand(grammarCmd)
	grammarCmd.AddCommand(grammarShowCmd)
	grammarCmd.AddCommand(grammarCheckCmd)

	grammarCmd.PersistentFlags().StringVarP(&grammarFlags.file, "file", "f", "", "grammar file (default: embedded grammar)")
	grammarShowCmd.Flags().BoolVar(&grammarFlags.yaml, "yaml", false, "print the grammar text instead of a summary")
}

func loadGrammar(path string) (*grammar.Grammar, error) {
	if path == "" {
		return grammar.Default()
	}
	return grammar.LoadFile(path)
}

func runGrammarShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if grammarFlags.yaml {
		data := grammar.EmbeddedYAML()
		if grammarFlags.file != "" {
			var err error
			if data, err = os.ReadFile(grammarFlags.file); err != nil {
				return fmt.Errorf("failed to read %s: %w", grammarFlags.file, err)
			}
		}
		_, err := out.Write(data)
		return err
	}

	g, err := loadGrammar(grammarFlags.file)
	if err != nil {
		return cli.NewCommandError("grammar show", err)
	}

	fmt.Fprintf(out, "Grammar: %s %s\n", g.Name, g.Version)
	fmt.Fprintf(out, "Source:  %s\n", g.Source)
	fmt.Fprintf(out, "Start:   %s\n", g.Start)
	fmt.Fprintf(out, "Ignore:  %s\n\n", strings.Join(g.Ignore, ", "))

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Tokens (%d):\n", len(g.Tokens))
	for _, t := range g.Tokens {
		fmt.Fprintf(tw, "  %s\t%s\n", t.Name, t.Pattern)
	}
	fmt.Fprintf(tw, "\nRules (%d):\n", len(g.Rules))
	for _, r := range g.Rules {
		fmt.Fprintf(tw, "  %s%s\t%s\n", ruleModifier(r), r.Name, r.Expr)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nKeywords: %s\n", strings.Join(g.Keywords(), ", "))
	fmt.Fprintf(out, "Trees:    %s\n", strings.Join(g.Trees(), ", "))
	return nil
}

func ruleModifier(r *grammar.Rule) string {
	switch {
	case r.Inline:
		return "_"
	case r.Expand:
		return "?"
	default:
		return ""
	}
}

func runGrammarCheck(cmd *cobra.Command, args []string) error {
	g, err := loadGrammar(grammarFlags.file)
	if err != nil {
		return cli.NewCommandError("grammar check", err)
	}
	if _, err := parser.New(g); err != nil {
		return cli.NewCommandError("grammar check", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.NewStyles(out).OK("Grammar %s %s is valid (%d tokens, %d rules, %d trees)",
		g.Name, g.Version, len(g.Tokens), len(g.Rules), len(g.Trees())))
	return nil
}

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"tagbot/taglang/pkg/cli"
)

var parseFlags struct {
	expr    string
	format  string
	grammar string
}

var parseCmd = &cobra.Command{
	Use:   "parse [file|-]",
	Short: "Parse a tag program and print its AST",
	Long: `Parse a tag program and print the resulting abstract syntax tree.

The program is read from the named file, from standard input when the
argument is "-" or missing, or from --expr.

Examples:
  # Parse a file
  tag parse greet.tag

  # Parse an expression given on the command line
  tag parse -e '1 + 2 * 3'

  # JSON output for other tools
  tag parse greet.tag --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

var treeFlags struct {
	expr    string
	grammar string
}

var treeCmd = &cobra.Command{
	Use:   "tree [file|-]",
	Short: "Print the concrete parse tree of a tag program",
	Long: `Print the concrete parse tree the grammar produces, before it is rewritten
into the AST. Useful when changing the grammar.

Examples:
  tag tree -e 'if x do say(x) end'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTree,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(treeCmd)

	parseCmd.Flags().StringVarP(&parseFlags.expr, "expr", "e", "", "parse this source instead of a file")
	parseCmd.Flags().StringVar(&parseFlags.format, "format", "tree", "output format: tree, json")
	parseCmd.Flags().StringVar(&parseFlags.grammar, "grammar", "", "grammar file (default: embedded grammar)")

	treeCmd.Flags().StringVarP(&treeFlags.expr, "expr", "e", "", "parse this source instead of a file")
	treeCmd.Flags().StringVar(&treeFlags.grammar, "grammar", "", "grammar file (default: embedded grammar)")
}

func runParse(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(parseFlags.format, cli.FormatTree, cli.FormatJSON)
	if err != nil {
		return err
	}
	name, src, err := readSource(cmd, args, parseFlags.expr)
	if err != nil {
		return err
	}
	p, err := loadParser(parseFlags.grammar)
	if err != nil {
		return cli.NewCommandError("parse", err)
	}

	node, err := p.ParseNamed(name, src)
	if err != nil {
		return cli.NewCommandError("parse", err)
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), node)
}

func runTree(cmd *cobra.Command, args []string) error {
	_, src, err := readSource(cmd, args, treeFlags.expr)
	if err != nil {
		return err
	}
	p, err := loadParser(treeFlags.grammar)
	if err != nil {
		return cli.NewCommandError("tree", err)
	}

	tree, err := p.ParseTree(src)
	if err != nil {
		return cli.NewCommandError("tree", err)
	}
	_, err = io.WriteString(cmd.OutOrStdout(), tree.Pretty())
	return err
}

// readSource returns the program named by args or expr, and the name error
// locations should report for it.
func readSource(cmd *cobra.Command, args []string, expr string) (name, src string, err error) {
	switch {
	case expr != "" && len(args) > 0:
		return "", "", cli.NewConfigError("expr", "give either a file or --expr, not both")
	case expr != "":
		return "<expr>", expr, nil
	case len(args) == 0 || args[0] == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", fmt.Errorf("failed to read standard input: %w", err)
		}
		return "<stdin>", string(data), nil
	default:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		return args[0], string(data), nil
	}
}

package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"tagbot/taglang/pkg/cli"
	"tagbot/taglang/pkg/tag/ast"
	tagerrors "tagbot/taglang/pkg/tag/errors"
	"tagbot/taglang/pkg/tag/parser"
)

// sourceExt is the extension check --dir looks for.
const sourceExt = ".tag"

var checkFlags struct {
	file     string
	dir      string
	format   string
	grammar  string
	progress bool
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check tag files for syntax errors",
	Long: `Parse tag files and report every syntax error with its position, the
offending text, what was expected and a suggested fix.

Examples:
  # Check a single file
  tag check --file greet.tag

  # Check every .tag file under a directory
  tag check --dir tags/

  # JSON output for CI/CD
  tag check --dir tags/ --format json`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&checkFlags.file, "file", "f", "", "tag file to check")
	checkCmd.Flags().StringVarP(&checkFlags.dir, "dir", "d", "", "directory of tag files (searched recursively)")
	checkCmd.Flags().StringVar(&checkFlags.format, "format", "text", "output format: text, json")
	checkCmd.Flags().StringVar(&checkFlags.grammar, "grammar", "", "grammar file (default: embedded grammar)")
	checkCmd.Flags().BoolVar(&checkFlags.progress, "progress", false, "show a progress bar on stderr")
}

// CheckResult is the outcome of checking one file.
type CheckResult struct {
	File   string       `json:"file"`
	Valid  bool         `json:"valid"`
	Nodes  int          `json:"nodes,omitempty"`
	Errors []CheckError `json:"errors,omitempty"`
}

// CheckError describes one problem found in a file.
type CheckError struct {
	Line       int      `json:"line,omitempty"`
	Column     int      `json:"column,omitempty"`
	Type       string   `json:"type,omitempty"`
	Message    string   `json:"message"`
	Lexeme     string   `json:"lexeme,omitempty"`
	Expected   []string `json:"expected,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
	Context    string   `json:"-"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	if checkFlags.file == "" && checkFlags.dir == "" {
		return cli.NewConfigError("", "either --file or --dir must be specified")
	}
	format, err := cli.ParseFormat(checkFlags.format, cli.FormatText, cli.FormatJSON)
	if err != nil {
		return err
	}

	files, err := collectFiles(checkFlags.file, checkFlags.dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return cli.NewCommandError("check", fmt.Errorf("no %s files found", sourceExt))
	}

	p, err := loadParser(checkFlags.grammar)
	if err != nil {
		return cli.NewCommandError("check", err)
	}

	var progress cli.ProgressReporter
	if checkFlags.progress {
		progress = cli.NewProgressReporter(cmd.ErrOrStderr(), "Checking")
		progress.Start(int64(len(files)))
	}

	results := make([]CheckResult, 0, len(files))
	invalid := 0
	for _, file := range files {
		result := checkFile(p, file)
		if !result.Valid {
			invalid++
		}
		results = append(results, result)
		if progress != nil {
			progress.Increment()
		}
	}
	if progress != nil {
		progress.Finish()
	}

	out := cmd.OutOrStdout()
	if format == cli.FormatJSON {
		if err := cli.NewFormatter(cli.FormatJSON).FormatTo(out, results); err != nil {
			return err
		}
	} else {
		writeCheckText(out, results)
	}

	if invalid > 0 {
		return cli.NewCommandError("check", fmt.Errorf("%d of %d file(s) have errors", invalid, len(results)))
	}
	return nil
}

// collectFiles returns file plus every .tag file under dir, in lexical order.
func collectFiles(file, dir string) ([]string, error) {
	var files []string
	if file != "" {
		files = append(files, file)
	}
	if dir == "" {
		return files, nil
	}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), sourceExt) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tag files: %w", err)
	}
	return files, nil
}

func checkFile(p *parser.Parser, path string) CheckResult {
	result := CheckResult{File: path, Valid: true}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, CheckError{Message: err.Error()})
		return result
	}

	node, err := p.ParseNamed(path, string(data))
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, toCheckError(err))
		return result
	}

	result.Nodes = ast.Count(node)
	return result
}

func toCheckError(err error) CheckError {
	e, ok := tagerrors.AsError(err)
	if !ok {
		return CheckError{Message: err.Error()}
	}
	return CheckError{
		Line:       e.Location.Line,
		Column:     e.Location.Column,
		Type:       string(e.Type),
		Message:    e.Message,
		Lexeme:     e.Lexeme,
		Expected:   e.Expected,
		Suggestion: e.Suggestion,
		Context:    e.Context,
	}
}

func writeCheckText(w io.Writer, results []CheckResult) {
	styles := cli.NewStyles(w)
	totalErrors := 0

	for _, result := range results {
		fmt.Fprintln(w, styles.Heading.Render("Checking "+result.File+"..."))

		if result.Valid {
			fmt.Fprintln(w, styles.OK("Syntax valid (%d nodes)", result.Nodes))
		}

		for _, e := range result.Errors {
			line := "Error: " + e.Message
			if e.Line > 0 {
				line += fmt.Sprintf(" (line %d", e.Line)
				if e.Column > 0 {
					line += fmt.Sprintf(", col %d", e.Column)
				}
				line += ")"
			}
			if e.Type != "" {
				line += fmt.Sprintf(" [%s]", e.Type)
			}
			fmt.Fprintln(w, styles.Fail("%s", line))
			if len(e.Expected) > 0 {
				fmt.Fprintln(w, styles.Muted.Render("  expected: "+strings.Join(e.Expected, ", ")))
			}
			if e.Context != "" {
				fmt.Fprint(w, e.Context)
			}
			if e.Suggestion != "" {
				fmt.Fprintf(w, "  suggestion: %s\n", e.Suggestion)
			}
			totalErrors++
		}

		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, styles.Heading.Render("Summary:"))
	fmt.Fprintf(w, "  %d file(s), %d error(s)\n", len(results), totalErrors)
}

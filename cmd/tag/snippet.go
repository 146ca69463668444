package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"tagbot/taglang/pkg/cli"
	"tagbot/taglang/pkg/config"
	"tagbot/taglang/pkg/snippets"
	"tagbot/taglang/pkg/snippets/retention"
	"tagbot/taglang/pkg/snippets/storage"
	"tagbot/taglang/pkg/telemetry/logging"
)

var snippetFlags struct {
	file   string
	expr   string
	owner  string
	ast    bool
	format string
	limit  int
	offset int
}

var snippetCmd = &cobra.Command{
	Use:   "snippet",
	Short: "Manage the snippet library",
	Long: `Store, inspect and remove named tag programs in the configured snippet store.

Subcommands:
  put     - Parse a program and store it under a name
  get     - Print a stored program, or its AST with --ast
  list    - List stored snippets
  delete  - Remove a snippet
  prune   - Apply the retention policy now

Examples:
  # Store a snippet owned by alice
  tag snippet put greet --file greet.tag --owner alice

  # Compile it and show the tree
  tag snippet get greet --ast

  # List alice's snippets as CSV
  tag snippet list --owner alice --format csv`,
}

var snippetPutCmd = &cobra.Command{
	Use:   "put NAME [file|-]",
	Short: "Store a snippet",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runSnippetPut,
}

var snippetGetCmd = &cobra.Command{
	Use:   "get NAME",
	Short: "Print a snippet",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnippetGet,
}

var snippetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List snippets",
	Args:  cobra.NoArgs,
	RunE:  runSnippetList,
}

var snippetDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a snippet",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnippetDelete,
}

var snippetPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove snippets outside the retention policy",
	Args:  cobra.NoArgs,
	RunE:  runSnippetPrune,
}

func init() {
	rootCmd.AddCommand(snippetCmd)
	snippetCmd.AddCommand(snippetPutCmd, snippetGetCmd, snippetListCmd, snippetDeleteCmd, snippetPruneCmd)

	snippetPutCmd.Flags().StringVarP(&snippetFlags.expr, "expr", "e", "", "store this source instead of a file")
	snippetPutCmd.Flags().StringVar(&snippetFlags.owner, "owner", "", "owner of the snippet")

	snippetGetCmd.Flags().BoolVar(&snippetFlags.ast, "ast", false, "compile the snippet and print its AST (records a use)")
	snippetGetCmd.Flags().StringVar(&snippetFlags.format, "format", "text", "output format: text, json, tree")

	snippetListCmd.Flags().StringVar(&snippetFlags.owner, "owner", "", "only list this owner's snippets")
	snippetListCmd.Flags().IntVar(&snippetFlags.limit, "limit", 0, "maximum number of snippets (default from config)")
	snippetListCmd.Flags().IntVar(&snippetFlags.offset, "offset", 0, "number of snippets to skip")
	snippetListCmd.Flags().StringVar(&snippetFlags.format, "format", "text", "output format: text, json, csv")
}

// snippetEnv is what every snippet subcommand works with.
type snippetEnv struct {
	cfg     *config.Config
	store   snippets.Storage
	service *snippets.Service
	logger  *logging.Logger
}

func (e *snippetEnv) Close() error {
	return e.store.Close()
}

func openSnippets(cmd *cobra.Command) (*snippetEnv, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if !cfg.Snippets.Enabled {
		return nil, cli.NewConfigError("snippets.enabled", "the snippet library is disabled")
	}

	logCfg := logging.FromConfig(cfg.Telemetry.Logging, cmd.ErrOrStderr())
	if !verbose {
		logCfg.Level = "warn"
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}

	p, err := loadParser(cfg.Parser.GrammarFile)
	if err != nil {
		return nil, cli.NewCommandError("snippet", err)
	}

	store, err := storage.Open(cfg.Snippets, logger.WithComponent("storage").Slog())
	if err != nil {
		return nil, cli.NewCommandError("snippet", err)
	}

	svc := snippets.NewService(store, p, snippets.Config{
		MaxSourceBytes:   cfg.Parser.MaxSourceBytes,
		DefaultListLimit: cfg.Snippets.DefaultListLimit,
		MaxListLimit:     cfg.Snippets.MaxListLimit,
	}, nil, logger)

	return &snippetEnv{cfg: cfg, store: store, service: svc, logger: logger}, nil
}

func runSnippetPut(cmd *cobra.Command, args []string) error {
	_, src, err := readSource(cmd, args[1:], snippetFlags.expr)
	if err != nil {
		return err
	}
	env, err := openSnippets(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	sn, err := env.service.Save(commandContext(cmd), args[0], snippetFlags.owner, src)
	if err != nil {
		return cli.NewCommandError("snippet put", err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.NewStyles(out).OK("Stored %s (%d bytes, id %s)", sn.Name, len(sn.Source), sn.ID))
	return nil
}

func runSnippetGet(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(snippetFlags.format, cli.FormatText, cli.FormatJSON, cli.FormatTree)
	if err != nil {
		return err
	}
	env, err := openSnippets(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	out := cmd.OutOrStdout()
	if snippetFlags.ast {
		_, node, err := env.service.Compile(commandContext(cmd), args[0])
		if err != nil {
			return cli.NewCommandError("snippet get", err)
		}
		if format == cli.FormatText {
			format = cli.FormatTree
		}
		return cli.NewFormatter(format).FormatTo(out, node)
	}

	sn, err := env.service.Get(commandContext(cmd), args[0])
	if err != nil {
		return cli.NewCommandError("snippet get", err)
	}
	if format == cli.FormatJSON {
		return cli.NewFormatter(format).FormatTo(out, sn)
	}
	_, err = fmt.Fprintln(out, sn.Source)
	return err
}

// snippetTable lists snippets as rows.
type snippetTable []*snippets.Snippet

func (snippetTable) Header() []string {
	return []string{"NAME", "OWNER", "USES", "UPDATED", "LAST USED"}
}

func (t snippetTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, sn := range t {
		lastUsed := "-"
		if sn.LastUsedAt != nil {
			lastUsed = sn.LastUsedAt.Format(time.RFC3339)
		}
		owner := sn.Owner
		if owner == "" {
			owner = "-"
		}
		rows = append(rows, []string{
			sn.Name,
			owner,
			strconv.FormatInt(sn.Uses, 10),
			sn.UpdatedAt.Format(time.RFC3339),
			lastUsed,
		})
	}
	return rows
}

func runSnippetList(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(snippetFlags.format, cli.FormatText, cli.FormatJSON, cli.FormatCSV)
	if err != nil {
		return err
	}
	env, err := openSnippets(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	list, err := env.service.List(commandContext(cmd), snippets.ListOptions{
		Owner:  snippetFlags.owner,
		Limit:  snippetFlags.limit,
		Offset: snippetFlags.offset,
	})
	if err != nil {
		return cli.NewCommandError("snippet list", err)
	}
	if list == nil {
		list = []*snippets.Snippet{}
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), snippetTable(list))
}

func runSnippetDelete(cmd *cobra.Command, args []string) error {
	env, err := openSnippets(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	if err := env.service.Delete(commandContext(cmd), args[0]); err != nil {
		return cli.NewCommandError("snippet delete", err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.NewStyles(out).OK("Deleted %s", args[0]))
	return nil
}

func runSnippetPrune(cmd *cobra.Command, args []string) error {
	env, err := openSnippets(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	ret := env.cfg.Snippets.Retention
	pruner := retention.NewPruner(env.store, ret, nil, env.logger.Slog())
	res, err := pruner.Prune(commandContext(cmd))
	if err != nil {
		return cli.NewCommandError("snippet prune", err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.NewStyles(out).OK("Pruned %d snippet(s): %d unused for %d days, %d over the limit of %d",
		res.Total(), res.ByAge, ret.Days, res.ByCount, ret.MaxRecords))
	return nil
}

// commandContext returns the command's context, or a background context
// when the command was invoked without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

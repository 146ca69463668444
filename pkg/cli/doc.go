/*
Package cli provides helpers shared by the commands of the tag binary.

Output Formatting:

Commands print results as text, JSON, an AST tree or CSV:

	format, err := cli.ParseFormat(flagValue, cli.FormatTree, cli.FormatJSON)
	if err != nil {
		return err
	}
	if err := cli.NewFormatter(format).FormatTo(os.Stdout, node); err != nil {
		return err
	}

Results implementing Table render as aligned columns in text and as rows
in CSV.

Styled Output:

Status lines are colored when written to a terminal and plain otherwise:

	styles := cli.NewStyles(cmd.OutOrStdout())
	fmt.Fprintln(out, styles.OK("Stored %s", name))

Progress Reporting:

	progress := cli.NewProgressReporter(os.Stderr, "Checking")
	progress.Start(int64(len(files)))
	for _, f := range files {
		check(f)
		progress.Increment()
	}
	progress.Finish()

Signal Handling:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()

Exit codes come from ExitCode: 2 for ConfigError, 1 for any other error.
*/
package cli

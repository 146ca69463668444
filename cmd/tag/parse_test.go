package main

import (
	"errors"
	"strings"
	"testing"

	"tagbot/taglang/pkg/cli"
	tagerrors "tagbot/taglang/pkg/tag/errors"
)

func resetParseFlags() {
	parseFlags.expr = ""
	parseFlags.format = "tree"
	parseFlags.grammar = ""
	treeFlags.expr = ""
	treeFlags.grammar = ""
}

func TestRunParse_Tree(t *testing.T) {
	resetParseFlags()
	defer resetParseFlags()
	parseFlags.expr = `say("hi")`

	cmd, out := newTestCommand("")
	if err := runParse(cmd, nil); err != nil {
		t.Fatalf("runParse() error = %v", err)
	}
	for _, want := range []string{"Call (1 args)", "VarRef say"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunParse_JSONFromStdin(t *testing.T) {
	resetParseFlags()
	defer resetParseFlags()
	parseFlags.format = "JSON"

	cmd, out := newTestCommand(`say("hi")`)
	if err := runParse(cmd, []string{"-"}); err != nil {
		t.Fatalf("runParse() error = %v", err)
	}
	if !strings.Contains(out.String(), `"type": "fncall"`) {
		t.Errorf("output = %s", out)
	}
}

func TestRunParse_SyntaxError(t *testing.T) {
	resetParseFlags()
	defer resetParseFlags()
	parseFlags.expr = "if x do"

	cmd, _ := newTestCommand("")
	err := runParse(cmd, nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	var cmdErr *cli.CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("error = %T, want *cli.CommandError", err)
	}
	e, ok := tagerrors.AsError(err)
	if !ok || e.Type != tagerrors.ErrorTypeSyntax {
		t.Errorf("wrapped error = %v, want a syntax error", err)
	}
	if cli.ExitCode(err) != cli.ExitFailed {
		t.Errorf("ExitCode = %d, want %d", cli.ExitCode(err), cli.ExitFailed)
	}
}

func TestRunParse_BadFormat(t *testing.T) {
	resetParseFlags()
	defer resetParseFlags()
	parseFlags.expr = `say("hi")`
	parseFlags.format = "csv"

	cmd, _ := newTestCommand("")
	err := runParse(cmd, nil)
	if cli.ExitCode(err) != cli.ExitUsage {
		t.Errorf("ExitCode = %d, want %d (err %v)", cli.ExitCode(err), cli.ExitUsage, err)
	}
}

func TestRunTree(t *testing.T) {
	resetParseFlags()
	defer resetParseFlags()
	treeFlags.expr = "var a"

	cmd, out := newTestCommand("")
	if err := runTree(cmd, nil); err != nil {
		t.Fatalf("runTree() error = %v", err)
	}
	if !strings.Contains(out.String(), "declvar\ta") {
		t.Errorf("tree output = %s", out)
	}
}

func TestReadSource(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "a.tag", "say(1)")

	tests := []struct {
		name     string
		args     []string
		expr     string
		stdin    string
		wantName string
		wantSrc  string
		wantErr  bool
	}{
		{name: "expr", expr: "1", wantName: "<expr>", wantSrc: "1"},
		{name: "stdin", stdin: "2", wantName: "<stdin>", wantSrc: "2"},
		{name: "dash", args: []string{"-"}, stdin: "3", wantName: "<stdin>", wantSrc: "3"},
		{name: "file", args: []string{file}, wantName: file, wantSrc: "say(1)"},
		{name: "both", args: []string{file}, expr: "1", wantErr: true},
		{name: "missing", args: []string{dir + "/nope.tag"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, _ := newTestCommand(tt.stdin)
			name, src, err := readSource(cmd, tt.args, tt.expr)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("readSource() error = %v", err)
			}
			if name != tt.wantName || src != tt.wantSrc {
				t.Errorf("readSource() = (%q, %q), want (%q, %q)", name, src, tt.wantName, tt.wantSrc)
			}
		})
	}
}

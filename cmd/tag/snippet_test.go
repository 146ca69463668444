package main

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"tagbot/taglang/pkg/cli"
	"tagbot/taglang/pkg/snippets"
)

func resetSnippetFlags() {
	snippetFlags.file = ""
	snippetFlags.expr = ""
	snippetFlags.owner = ""
	snippetFlags.ast = false
	snippetFlags.format = "text"
	snippetFlags.limit = 0
	snippetFlags.offset = 0
}

// useSnippetStore configures a SQLite snippet store in a temporary directory.
func useSnippetStore(t *testing.T, extra string) {
	t.Helper()
	db := filepath.Join(t.TempDir(), "snippets.db")
	useConfig(t, "snippets:\n  driver: sqlite\n  sqlite:\n    path: "+db+"\n"+extra)
	resetSnippetFlags()
	t.Cleanup(resetSnippetFlags)
}

func putSnippet(t *testing.T, name, owner, src string) {
	t.Helper()
	resetSnippetFlags()
	snippetFlags.expr = src
	snippetFlags.owner = owner
	cmd, out := newTestCommand("")
	if err := runSnippetPut(cmd, []string{name}); err != nil {
		t.Fatalf("put %s: %v", name, err)
	}
	if !strings.Contains(out.String(), "✓ Stored") {
		t.Errorf("put output = %s", out)
	}
	resetSnippetFlags()
}

func TestSnippetCommands_Lifecycle(t *testing.T) {
	useSnippetStore(t, "")

	putSnippet(t, "Greet", "alice", `say("hi")`)

	cmd, out := newTestCommand("")
	if err := runSnippetGet(cmd, []string{"greet"}); err != nil {
		t.Fatalf("get: %v", err)
	}
	if strings.TrimSpace(out.String()) != `say("hi")` {
		t.Errorf("get output = %q", out)
	}

	snippetFlags.ast = true
	cmd, out = newTestCommand("")
	if err := runSnippetGet(cmd, []string{"greet"}); err != nil {
		t.Fatalf("get --ast: %v", err)
	}
	if !strings.Contains(out.String(), "Call (1 args)") {
		t.Errorf("get --ast output = %s", out)
	}
	resetSnippetFlags()

	snippetFlags.format = "json"
	cmd, out = newTestCommand("")
	if err := runSnippetGet(cmd, []string{"greet"}); err != nil {
		t.Fatalf("get --format json: %v", err)
	}
	var sn snippets.Snippet
	if err := json.Unmarshal(out.Bytes(), &sn); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if sn.Name != "greet" || sn.Owner != "alice" || sn.Uses != 1 {
		t.Errorf("snippet = %+v", sn)
	}
	resetSnippetFlags()

	snippetFlags.expr = `say("mine")`
	snippetFlags.owner = "bob"
	cmd, _ = newTestCommand("")
	err := runSnippetPut(cmd, []string{"greet"})
	if !errors.Is(err, snippets.ErrOwnerMismatch) {
		t.Errorf("put by another owner: error = %v, want ErrOwnerMismatch", err)
	}
	resetSnippetFlags()

	cmd, out = newTestCommand("")
	if err := runSnippetDelete(cmd, []string{"greet"}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !strings.Contains(out.String(), "✓ Deleted greet") {
		t.Errorf("delete output = %s", out)
	}

	cmd, _ = newTestCommand("")
	if err := runSnippetGet(cmd, []string{"greet"}); !errors.Is(err, snippets.ErrNotFound) {
		t.Errorf("get after delete: error = %v, want ErrNotFound", err)
	}
}

func TestSnippetPut_RejectsSyntaxErrors(t *testing.T) {
	useSnippetStore(t, "")
	snippetFlags.expr = "if x do"

	cmd, _ := newTestCommand("")
	if err := runSnippetPut(cmd, []string{"broken"}); err == nil {
		t.Fatal("expected a syntax error")
	}
}

func TestSnippetPut_FromStdin(t *testing.T) {
	useSnippetStore(t, "")

	cmd, _ := newTestCommand(`say("piped")`)
	if err := runSnippetPut(cmd, []string{"piped", "-"}); err != nil {
		t.Fatalf("put: %v", err)
	}

	cmd, out := newTestCommand("")
	if err := runSnippetGet(cmd, []string{"piped"}); err != nil {
		t.Fatalf("get: %v", err)
	}
	if !strings.Contains(out.String(), "piped") {
		t.Errorf("get output = %s", out)
	}
}

func TestSnippetList(t *testing.T) {
	useSnippetStore(t, "")
	putSnippet(t, "a", "alice", "1")
	putSnippet(t, "b", "bob", "2")
	putSnippet(t, "c", "alice", "3")

	cmd, out := newTestCommand("")
	if err := runSnippetList(cmd, nil); err != nil {
		t.Fatalf("list: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 4 || !strings.HasPrefix(lines[0], "NAME") {
		t.Fatalf("list output =\n%s", out)
	}

	snippetFlags.owner = "alice"
	snippetFlags.format = "csv"
	cmd, out = newTestCommand("")
	if err := runSnippetList(cmd, nil); err != nil {
		t.Fatalf("list --owner: %v", err)
	}
	lines = strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[1], "a,alice,") || !strings.HasPrefix(lines[2], "c,alice,") {
		t.Errorf("csv output =\n%s", out)
	}
	resetSnippetFlags()

	snippetFlags.format = "json"
	snippetFlags.limit = 1
	snippetFlags.offset = 1
	cmd, out = newTestCommand("")
	if err := runSnippetList(cmd, nil); err != nil {
		t.Fatalf("list --limit: %v", err)
	}
	var list []*snippets.Snippet
	if err := json.Unmarshal(out.Bytes(), &list); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(list) != 1 || list[0].Name != "b" {
		t.Errorf("page = %+v", list)
	}
}

func TestSnippetPrune(t *testing.T) {
	useSnippetStore(t, "  retention:\n    max_records: 1\n")
	putSnippet(t, "a", "", "1")
	putSnippet(t, "b", "", "2")

	cmd, out := newTestCommand("")
	if err := runSnippetPrune(cmd, nil); err != nil {
		t.Fatalf("prune: %v", err)
	}
	if !strings.Contains(out.String(), "✓ Pruned 1 snippet(s)") {
		t.Errorf("prune output = %s", out)
	}
}

func TestSnippetCommands_Disabled(t *testing.T) {
	useConfig(t, "snippets:\n  enabled: false\n")
	resetSnippetFlags()
	defer resetSnippetFlags()

	cmd, _ := newTestCommand("")
	err := runSnippetList(cmd, nil)
	var cfgErr *cli.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error = %v, want *cli.ConfigError", err)
	}
}

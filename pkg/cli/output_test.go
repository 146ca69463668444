package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"tagbot/taglang/pkg/tag/ast"
)

type fileTable [][]string

func (fileTable) Header() []string   { return []string{"NAME", "USES"} }
func (t fileTable) Rows() [][]string { return t }

func TestTextFormatter(t *testing.T) {
	formatter := &TextFormatter{}

	output, err := formatter.Format("test message")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if string(output) != "test message\n" {
		t.Errorf("Format() = %q", output)
	}
}

func TestTextFormatter_Table(t *testing.T) {
	buf := &bytes.Buffer{}
	table := fileTable{{"greet", "3"}, {"counter-long", "12"}}

	if err := (&TextFormatter{}).FormatTo(buf, table); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	want := "NAME          USES\n" +
		"greet         3\n" +
		"counter-long  12\n"
	if buf.String() != want {
		t.Errorf("FormatTo() =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestJSONFormatter(t *testing.T) {
	tests := []struct {
		name   string
		data   any
		indent bool
	}{
		{"simple string", "test", false},
		{"map with indent", map[string]string{"key": "value"}, true},
		{"ast", &ast.Return{Value: ast.IntLiteral(1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter := &JSONFormatter{Indent: tt.indent}
			output, err := formatter.Format(tt.data)
			if err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			var result any
			if err := json.Unmarshal(output, &result); err != nil {
				t.Errorf("Format() produced invalid JSON: %v", err)
			}
		})
	}
}

func TestTreeFormatter(t *testing.T) {
	node := &ast.Return{Value: ast.IntLiteral(1)}

	buf := &bytes.Buffer{}
	if err := (&TreeFormatter{}).FormatTo(buf, node); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	if buf.String() != ast.Format(node) {
		t.Errorf("FormatTo() = %q, want %q", buf.String(), ast.Format(node))
	}

	out, err := (&TreeFormatter{}).Format("not a node")
	if err != nil || string(out) != "not a node\n" {
		t.Errorf("Format(string) = %q, %v", out, err)
	}
}

func TestCSVFormatter(t *testing.T) {
	out, err := (&CSVFormatter{}).Format(fileTable{{"greet", "3"}, {"a,b", "1"}})
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	want := "NAME,USES\ngreet,3\n\"a,b\",1\n"
	if string(out) != want {
		t.Errorf("Format() = %q, want %q", out, want)
	}

	if _, err := (&CSVFormatter{}).Format("scalar"); err == nil {
		t.Error("Format(scalar) succeeded")
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format OutputFormat
		want   Formatter
	}{
		{FormatText, &TextFormatter{}},
		{FormatJSON, &JSONFormatter{Indent: true}},
		{FormatTree, &TreeFormatter{}},
		{FormatCSV, &CSVFormatter{}},
		{"unknown", &TextFormatter{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			got := NewFormatter(tt.format)
			if g, w := typeName(got), typeName(tt.want); g != w {
				t.Errorf("NewFormatter(%q) = %s, want %s", tt.format, g, w)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" JSON ", FormatTree, FormatJSON)
	if err != nil || f != FormatJSON {
		t.Errorf("ParseFormat() = %q, %v", f, err)
	}

	_, err = ParseFormat("csv", FormatTree, FormatJSON)
	if err == nil {
		t.Fatal("ParseFormat(csv) succeeded")
	}
	if !strings.Contains(err.Error(), "tree, json") {
		t.Errorf("error = %v", err)
	}
	if ExitCode(err) != ExitUsage {
		t.Errorf("ExitCode = %d, want %d", ExitCode(err), ExitUsage)
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *TextFormatter:
		return "text"
	case *JSONFormatter:
		return "json"
	case *TreeFormatter:
		return "tree"
	case *CSVFormatter:
		return "csv"
	default:
		return "?"
	}
}

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/ebdgraph/pkg/errors"
	"github.com/matzehuels/ebdgraph/pkg/graph"
	"github.com/matzehuels/ebdgraph/pkg/pipeline"
	"github.com/matzehuels/ebdgraph/pkg/table"
)

const (
	tableJSON = "../../pkg/table/testdata/e_0003.json"
	tableYAML = "../../pkg/table/testdata/e_0003.yaml"
)

// run executes the root command with args and returns what the command
// wrote to its output stream.
func run(t *testing.T, c *CLI, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := c.RootCommand()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func newTestCLI(t *testing.T) *CLI {
	t.Helper()
	c := New(io.Discard, LogInfo)
	c.cacheDir = t.TempDir()
	return c
}

// writeTable stores tbl as JSON in a temporary directory.
func writeTable(t *testing.T, tbl *table.Table) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), tbl.Metadata.EBDCode+".json")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := table.WriteJSON(tbl, f); err != nil {
		t.Fatal(err)
	}
	return path
}

// diamondTable has two decisions sharing both successors.
func diamondTable() *table.Table {
	return &table.Table{
		Metadata: table.Metadata{EBDCode: "E_0099", Chapter: "c", Section: "s", Role: "NB"},
		Rows: []table.Row{
			{StepNumber: "1", Description: "Eins?", SubRows: []table.SubRow{
				{CheckResult: table.Yes("2")}, {CheckResult: table.No("3")},
			}},
			{StepNumber: "2", Description: "Zwei?", SubRows: []table.SubRow{
				{CheckResult: table.Yes("4")}, {CheckResult: table.No("5")},
			}},
			{StepNumber: "3", Description: "Drei?", SubRows: []table.SubRow{
				{CheckResult: table.Yes("4")}, {CheckResult: table.No("5")},
			}},
			{StepNumber: "4", Description: "Vier?", SubRows: []table.SubRow{
				{CheckResult: table.Yes(""), ResultCode: "A01", Note: "eins"},
				{CheckResult: table.No(""), ResultCode: "A02", Note: "zwei"},
			}},
			{StepNumber: "5", Description: "Fünf?", SubRows: []table.SubRow{
				{CheckResult: table.Yes(""), ResultCode: "A03", Note: "drei"},
				{CheckResult: table.No(""), ResultCode: "A04", Note: "vier"},
			}},
		},
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestBuildStdout(t *testing.T) {
	out, err := run(t, newTestCLI(t), "build", tableJSON, "--no-cache")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	var g struct {
		Metadata struct {
			EBDCode string `json:"ebd_code"`
		} `json:"metadata"`
	}
	if err := json.Unmarshal([]byte(out), &g); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if g.Metadata.EBDCode != "E_0003" {
		t.Errorf("ebd_code = %q", g.Metadata.EBDCode)
	}
}

func TestBuildOutputFile(t *testing.T) {
	c := newTestCLI(t)
	path := filepath.Join(t.TempDir(), "graph.json")

	// The second run is served from the file cache.
	for i, status := range []string{iconFresh, iconCached} {
		out, err := run(t, c, "build", tableYAML, "-o", path)
		if err != nil {
			t.Fatalf("build: %v", err)
		}
		for _, want := range []string{"Built E_0003", "6 nodes", "5 edges", status, path} {
			if !strings.Contains(out, want) {
				t.Errorf("run %d: output lacks %q:\n%s", i, want, out)
			}
		}
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	g, err := graph.ReadJSON(f)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if g.NodeCount() != 6 || g.EdgeCount() != 5 {
		t.Errorf("graph has %d nodes, %d edges", g.NodeCount(), g.EdgeCount())
	}
}

func TestRenderSources(t *testing.T) {
	dir := t.TempDir()
	if _, err := run(t, newTestCLI(t), "render", tableJSON, "-o", dir, "--no-cache"); err != nil {
		t.Fatalf("render: %v", err)
	}

	if got := readFile(t, filepath.Join(dir, "E_0003.puml")); !strings.HasPrefix(got, "@startuml") {
		t.Errorf("E_0003.puml = %.40q", got)
	}
	if got := readFile(t, filepath.Join(dir, "E_0003.dot")); !strings.HasPrefix(got, "digraph D {") {
		t.Errorf("E_0003.dot = %.40q", got)
	}
}

func TestRenderConfig(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(t.TempDir(), "ebdgraph.toml")
	if err := os.WriteFile(config, []byte("languages = [\"dot\"]\nformats = [\"source\", \"json\"]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := run(t, newTestCLI(t), "render", tableJSON, "--config", config, "-o", dir, "--no-cache"); err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, name := range []string{"E_0003.dot", "E_0003.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "E_0003.puml")); !os.IsNotExist(err) {
		t.Errorf("E_0003.puml written although the config selects dot only")
	}
}

func TestRenderLocalSVG(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, newTestCLI(t), "render", tableJSON,
		"--language", "dot", "--format", "svg", "--renderer", "local", "-o", dir, "--no-cache")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := readFile(t, filepath.Join(dir, "E_0003.dot.svg")); !strings.Contains(got, "<svg") {
		t.Errorf("E_0003.dot.svg = %.80q", got)
	}
}

func TestRenderFallback(t *testing.T) {
	path := writeTable(t, diamondTable())

	_, err := run(t, newTestCLI(t), "render", path, "--language", "plantuml", "-o", t.TempDir(), "--no-cache")
	if !errs.Is(err, errs.ErrCodeTooComplex) {
		t.Fatalf("render without --fallback: err = %v, want %s", err, errs.ErrCodeTooComplex)
	}

	dir := t.TempDir()
	out, err := run(t, newTestCLI(t), "render", path, "--language", "plantuml", "--fallback", "-o", dir, "--no-cache")
	if err != nil {
		t.Fatalf("render --fallback: %v", err)
	}
	if !strings.Contains(out, "plantuml cannot express this graph, rendered dot instead") {
		t.Errorf("render output misses fallback notice:\n%s", out)
	}
	if got := readFile(t, filepath.Join(dir, "E_0099.dot")); !strings.HasPrefix(got, "digraph D {") {
		t.Errorf("E_0099.dot = %.40q", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "E_0099.puml")); !os.IsNotExist(err) {
		t.Error("E_0099.puml written although plantuml failed")
	}
}

func TestRenderErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code errs.Code
	}{
		{"missing table", []string{"render", "does-not-exist.json"}, errs.ErrCodeFileNotFound},
		{"unknown language", []string{"render", tableJSON, "--language", "mermaid"}, errs.ErrCodeInvalidLanguage},
		{"unknown format", []string{"render", tableJSON, "--format", "gif"}, errs.ErrCodeInvalidFormat},
		{"bad link template", []string{"render", tableJSON, "--link-template", "https://ebd.example/"}, errs.ErrCodeInvalidInput},
		{"unknown code pattern", []string{"build", tableJSON, "--code-pattern", "1999"}, errs.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(tt.args, "--no-cache")
			_, err := run(t, newTestCLI(t), args...)
			if !errs.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestRenderOptions(t *testing.T) {
	t.Setenv(envKrokiURL, "http://kroki.internal:8000")
	t.Setenv(envLinkTemplate, "https://ebd.example/{ebd_code}")

	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, o pipeline.Options)
	}{
		{
			name: "defaults and environment",
			check: func(t *testing.T, o pipeline.Options) {
				if !slices.Equal(o.Languages, pipeline.DefaultLanguages) {
					t.Errorf("Languages = %v", o.Languages)
				}
				if o.KrokiURL != "http://kroki.internal:8000" || o.LinkTemplate != "https://ebd.example/{ebd_code}" {
					t.Errorf("KrokiURL = %q, LinkTemplate = %q", o.KrokiURL, o.LinkTemplate)
				}
				if !o.Watermark || !o.Background || o.FallbackToDOT {
					t.Errorf("bools = %v %v %v", o.Watermark, o.Background, o.FallbackToDOT)
				}
			},
		},
		{
			name: "flags override",
			args: []string{"-l", "dot", "-f", "source, svg", "--no-watermark", "--no-background", "--fallback",
				"--kroki-url", "http://localhost:8000", "--refresh"},
			check: func(t *testing.T, o pipeline.Options) {
				if !slices.Equal(o.Languages, []string{"dot"}) || !slices.Equal(o.Formats, []string{"source", "svg"}) {
					t.Errorf("Languages = %v, Formats = %v", o.Languages, o.Formats)
				}
				if o.KrokiURL != "http://localhost:8000" {
					t.Errorf("KrokiURL = %q", o.KrokiURL)
				}
				if o.Watermark || o.Background || !o.FallbackToDOT || !o.Refresh {
					t.Errorf("bools = %v %v %v %v", o.Watermark, o.Background, o.FallbackToDOT, o.Refresh)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ro renderOpts
			cmd := &cobra.Command{Use: "render"}
			ro.bind(cmd)
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatal(err)
			}
			o, err := ro.options(cmd)
			if err != nil {
				t.Fatalf("options: %v", err)
			}
			tt.check(t, o)
		})
	}
}

func TestParseList(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"svg", []string{"svg"}},
		{"svg,png", []string{"svg", "png"}},
		{" source , ,pdf ", []string{"source", "pdf"}},
	}
	for _, tt := range tests {
		if got := parseList(tt.input); !slices.Equal(got, tt.want) {
			t.Errorf("parseList(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestCachePathAndClear(t *testing.T) {
	c := newTestCLI(t)

	out, err := run(t, c, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != c.cacheDir {
		t.Errorf("cache path = %q, want %q", out, c.cacheDir)
	}

	if _, err := run(t, c, "build", tableJSON, "-o", filepath.Join(t.TempDir(), "g.json")); err != nil {
		t.Fatal(err)
	}
	entries, _ := os.ReadDir(c.cacheDir)
	if len(entries) == 0 {
		t.Fatal("build did not populate the cache")
	}

	out, err = run(t, c, "cache", "clear")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Cleared cache") || !strings.Contains(out, c.cacheDir) {
		t.Errorf("cache clear output = %q", out)
	}
	entries, _ = os.ReadDir(c.cacheDir)
	if len(entries) != 0 {
		t.Errorf("cache has %d entries after clear", len(entries))
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, newTestCLI(t), "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "version: ") {
		t.Errorf("version output = %q", out)
	}
}

func TestCompletion(t *testing.T) {
	out, err := run(t, newTestCLI(t), "completion", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "ebdgraph") {
		t.Error("bash completion does not mention ebdgraph")
	}
}

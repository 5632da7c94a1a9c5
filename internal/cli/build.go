package cli

import (
	"bytes"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ebdgraph/pkg/graph"
	"github.com/matzehuels/ebdgraph/pkg/pipeline"
)

// buildOpts holds the command-line flags for the build command.
type buildOpts struct {
	output      string // graph JSON path; empty or "-" writes to stdout
	codePattern string // result-code pattern version
	noCache     bool
}

// buildCommand creates the build command, which converts a decision table
// into the graph JSON export.
func (c *CLI) buildCommand() *cobra.Command {
	var opts buildOpts

	cmd := &cobra.Command{
		Use:   "build <table.json|table.yaml>",
		Short: "Convert a decision table into graph JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&opts.codePattern, "code-pattern", "", "result-code pattern version (2023, 2024)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}

func (c *CLI) runBuild(cmd *cobra.Command, path string, bo buildOpts) error {
	ctx := cmd.Context()
	opts := pipeline.DefaultOptions()
	if bo.codePattern != "" {
		opts.CodePattern = bo.codePattern
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	t, err := readTable(path, opts)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, bo.noCache, "")
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	data, cached, err := runner.GraphJSON(ctx, t, opts)
	if err != nil {
		return err
	}

	if bo.output == "" || bo.output == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(bo.output, data, 0o644); err != nil {
		return err
	}
	prog.done("Built " + t.Metadata.EBDCode)

	g, err := graph.ReadJSON(bytes.NewReader(data))
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	printSuccess(w, "Built %s", StyleHighlight.Render(t.Metadata.EBDCode))
	printStats(w, g.NodeCount(), g.EdgeCount(), cached)
	printFile(w, bo.output, cached)
	printNextStep(w, "Render it", appName+" render "+path)
	return nil
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/citegraph/internal/graph"
	"github.com/matsen/citegraph/internal/viz"
	"github.com/matsen/citegraph/internal/work"
)

var (
	viewAuthors   bool
	viewLayout    string
	viewTitle     string
	viewMinWeight float64
)

var viewCmd = &cobra.Command{
	Use:   "view [works.jsonl|-] <output.html>",
	Short: "Generate an interactive HTML view of a citation graph",
	Long: `Generate an interactive HTML visualization (Cytoscape.js) of the works graph,
or of the authors graph with --authors.

Works are sized by the citations they receive within the input; authors by their
number of works. Author edges without any citation are hidden.

Examples:
  citegraph view works.jsonl works.html
  citegraph view works.jsonl authors.html --authors --min-weight 10
  citegraph view works.jsonl works.html --layout circle`,
	Args: cobra.RangeArgs(1, 2),
	Run:  runView,
}

func init() {
	viewCmd.Flags().BoolVar(&viewAuthors, "authors", false, "Show the authors graph instead of the works graph")
	viewCmd.Flags().StringVar(&viewLayout, "layout", "force", "Layout algorithm: force, circle, grid, or concentric")
	viewCmd.Flags().StringVar(&viewTitle, "title", "", "Page title")
	viewCmd.Flags().Float64Var(&viewMinWeight, "min-weight", 0, "Hide author edges with a lower weight")
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, args []string) {
	input, output := graphArgs(args)
	opts := viz.Options{Title: viewTitle, MinWeight: viewMinWeight}

	resp, err := writeView(input, output, viewAuthors, opts, viz.HTMLOptions{Layout: viewLayout})
	exitOnError(err)

	if humanOutput {
		outputHuman("Visualization written to %s\n", resp.Path)
		return
	}
	if err := outputJSON(resp); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}

// writeView builds the works or authors graph of the works at input and writes
// its HTML visualization to output.
func writeView(input, output string, authors bool, opts viz.Options, htmlOpts viz.HTMLOptions) (GraphResponse, error) {
	works, err := work.ReadFile(input)
	if err != nil {
		return GraphResponse{}, fmt.Errorf("reading works: %w", err)
	}

	var data *viz.GraphData
	if authors {
		data = viz.FromAuthors(graph.BuildAuthors(works, graph.FormatGraphML), opts)
	} else {
		data = viz.FromWorks(graph.BuildWorks(works, graph.DefaultWorkMetadata, graph.FormatGraphML), opts)
	}

	if err := viz.WriteFile(output, data, htmlOpts); err != nil {
		return GraphResponse{}, err
	}

	return GraphResponse{
		Status: "written",
		Path:   output,
		Format: "html",
		Nodes:  len(data.Nodes),
		Edges:  len(data.Edges),
	}, nil
}

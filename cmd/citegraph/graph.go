package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/citegraph/internal/graph"
	"github.com/matsen/citegraph/internal/work"
)

var (
	graphFormat      string
	graphMetadata    []string
	graphInterleaved bool
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Build a citation graph from OpenAlex works",
	Long: `Build a citation graph from a JSONL file of OpenAlex works.

The works file is optional; standard input is read when it is omitted or "-".
GML keeps nested metadata; GraphML flattens it to scalar attributes.`,
}

var graphWorksCmd = &cobra.Command{
	Use:   "works [works.jsonl|-] <output>",
	Short: "Graph whose nodes are the works",
	Long: `Build a graph with one node per work and an edge from each work to every
work it references that is also in the input.

Examples:
  citegraph graph works works.jsonl works.gml
  citegraph graph works works.jsonl works.graphml -f graphml -m title -m publication_year
  citegraph fetch works ids.txt | citegraph graph works - works.gml`,
	Args: cobra.RangeArgs(1, 2),
	Run:  runGraphWorks,
}

var graphAuthorsCmd = &cobra.Command{
	Use:   "authors [works.jsonl|-] <output>",
	Short: "Graph whose nodes are the authors",
	Long: `Build a graph with one node per author. Works are replayed in publication
order; the edge from A to B carries:

  numerator    references from works of A to works of B
  denominator  for every work of A, the number of works B had published before
  weight       100 * numerator / denominator, 0 when the denominator is 0

Examples:
  citegraph graph authors works.jsonl authors.gml
  citegraph graph authors works.jsonl authors.graphml -f graphml`,
	Args: cobra.RangeArgs(1, 2),
	Run:  runGraphAuthors,
}

func init() {
	graphCmd.PersistentFlags().StringVarP(&graphFormat, "format", "f", "gml", "Graph format (gml, graphml)")
	graphWorksCmd.Flags().StringSliceVarP(&graphMetadata, "metadata", "m", graph.DefaultWorkMetadata, "Work fields to attach to the nodes")
	graphAuthorsCmd.Flags().BoolVar(&graphInterleaved, "interleaved", false, "Count co-authors of a work as already published when processing later co-authors")

	graphCmd.AddCommand(graphWorksCmd)
	graphCmd.AddCommand(graphAuthorsCmd)
	rootCmd.AddCommand(graphCmd)
}

// graphArgs splits the positional arguments into input and output paths.
func graphArgs(args []string) (input, output string) {
	if len(args) == 1 {
		return "-", args[0]
	}
	return args[0], args[1]
}

func runGraphWorks(cmd *cobra.Command, args []string) {
	input, output := graphArgs(args)
	format, err := graph.ParseFormat(graphFormat)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	resp, err := buildGraph(input, output, format, func(works []work.Work) *graph.Graph {
		return graph.BuildWorks(works, graphMetadata, format)
	})
	exitOnError(err)
	outputGraphResponse(resp)
}

func runGraphAuthors(cmd *cobra.Command, args []string) {
	input, output := graphArgs(args)
	format, err := graph.ParseFormat(graphFormat)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	var opts []graph.AuthorsOption
	if graphInterleaved {
		opts = append(opts, graph.WithInterleavedCounts())
	}
	resp, err := buildGraph(input, output, format, func(works []work.Work) *graph.Graph {
		return graph.BuildAuthors(works, format, opts...)
	})
	exitOnError(err)
	outputGraphResponse(resp)
}

// buildGraph reads the works at input, builds a graph with build and writes it to
// output.
func buildGraph(input, output string, format graph.Format, build func([]work.Work) *graph.Graph) (GraphResponse, error) {
	works, err := work.ReadFile(input)
	if err != nil {
		return GraphResponse{}, fmt.Errorf("reading works: %w", err)
	}

	g := build(works)
	if err := graph.WriteFile(output, g, format); err != nil {
		return GraphResponse{}, err
	}

	return GraphResponse{
		Status: "written",
		Path:   output,
		Format: format.String(),
		Nodes:  g.NodeCount(),
		Edges:  g.EdgeCount(),
	}, nil
}

func outputGraphResponse(resp GraphResponse) {
	if humanOutput {
		outputHuman("Wrote %s graph with %d nodes and %d edges to %s\n", resp.Format, resp.Nodes, resp.Edges, resp.Path)
		return
	}
	if err := outputJSON(resp); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/citegraph/internal/citestats"
	"github.com/matsen/citegraph/internal/plot"
	"github.com/matsen/citegraph/internal/work"
)

var (
	plotPerYearOfCitation bool
	plotColor             string
	plotNColors           int
	plotFont              string
	plotTitle             string
	plotLegend            bool
	plotWidth             int
	plotHeight            int
)

var plotCmd = &cobra.Command{
	Use:   "plot <works.jsonl> <cites.jsonl> <output.png>",
	Short: "Plot the citations received per year",
	Long: `Draw a histogram of the citations that the studied works receive from the
citing works, one bar per year of the cited work.

With --color, each bar is split by cited work (works) or by citing work (cites).
The --ncolors - 1 most cited works (or works citing most) get their own color;
everything else shares the "Other" color.

Examples:
  citegraph plot works.jsonl cites.jsonl citations.png
  citegraph plot works.jsonl cites.jsonl citations.png -y -c works -n 5`,
	Args: cobra.ExactArgs(3),
	Run:  runPlot,
}

func init() {
	plotCmd.Flags().BoolVarP(&plotPerYearOfCitation, "per-year-of-citation", "y", false, "Bin by the year of the citing work instead of the cited work")
	plotCmd.Flags().StringVarP(&plotColor, "color", "c", "", "Color the citations by cited work (works) or citing work (cites)")
	plotCmd.Flags().IntVarP(&plotNColors, "ncolors", "n", citestats.DefaultColors, "Number of colors when --color is used")
	plotCmd.Flags().StringVar(&plotFont, "font", "", "TrueType font file for the labels")
	plotCmd.Flags().StringVar(&plotTitle, "title", "", "Plot title")
	plotCmd.Flags().BoolVar(&plotLegend, "legend", false, "Draw a legend of the colored series")
	plotCmd.Flags().IntVar(&plotWidth, "width", plot.DefaultWidth, "Image width in pixels")
	plotCmd.Flags().IntVar(&plotHeight, "height", plot.DefaultHeight, "Image height in pixels")
	rootCmd.AddCommand(plotCmd)
}

func runPlot(cmd *cobra.Command, args []string) {
	color, err := citestats.ParseColor(plotColor)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if plotNColors < 1 {
		exitWithError(ExitError, "--ncolors must be at least 1")
	}

	resp, err := plotCitations(args[0], args[1], args[2],
		citestats.Options{
			PerYearOfCitation: plotPerYearOfCitation,
			Color:             color,
			NColors:           plotNColors,
		},
		plot.Options{
			Width:    plotWidth,
			Height:   plotHeight,
			Title:    plotTitle,
			FontPath: plotFont,
			Legend:   plotLegend,
		})
	exitOnError(err)

	if humanOutput {
		outputHuman("Plotted %d citations over %d years to %s\n", resp.Citations, resp.Years, resp.Path)
		return
	}
	if err := outputJSON(resp); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}

// plotCitations counts the citations of the works at worksPath by the works at
// citesPath and saves the histogram to output.
func plotCitations(worksPath, citesPath, output string, stats citestats.Options, opts plot.Options) (PlotResponse, error) {
	works, err := work.ReadFile(worksPath)
	if err != nil {
		return PlotResponse{}, fmt.Errorf("reading works: %w", err)
	}
	cites, err := work.ReadFile(citesPath)
	if err != nil {
		return PlotResponse{}, fmt.Errorf("reading cites: %w", err)
	}

	table := citestats.Count(works, cites, stats)
	if err := plot.SavePNG(output, table, opts); err != nil {
		return PlotResponse{}, err
	}

	return PlotResponse{
		Status:    "written",
		Path:      output,
		Years:     len(table.Years),
		Series:    table.Series,
		Citations: table.Total(),
	}, nil
}

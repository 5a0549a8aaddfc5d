package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/matsen/citegraph/internal/config"
	"github.com/matsen/citegraph/internal/logger"
	"github.com/matsen/citegraph/internal/openalex"
	"github.com/matsen/citegraph/internal/prompt"
	"github.com/matsen/citegraph/internal/work"
)

var (
	fetchEmail      string
	fetchAPIKey     string
	fetchPerPage    int
	fetchMaxRetries int
	fetchBackoff    float64
	fetchRetryCodes []int
	fetchStartQuery int
	fetchStartPage  int
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download authors and works from OpenAlex",
	Long: `Download records from OpenAlex and print them to standard output.

Works are printed as JSON lines. Identifiers are combined 49 per query; a work
matching several queries is printed more than once. Progress is logged to
standard error. After an interruption, resume with --start-query and
--start-page.

Settings are read from ~/.config/citegraph/config.yml, then the environment,
then flags.

Environment Variables:
  OPENALEX_EMAIL                 Contact email (polite pool)
  OPENALEX_API_KEY               API key
  OPENALEX_PER_PAGE              Results per page
  OPENALEX_MAX_RETRIES           Retries per failed request
  OPENALEX_RETRY_BACKOFF_FACTOR  Factor of the delay between retries
  OPENALEX_RETRY_HTTP_CODES      Comma-separated HTTP codes that trigger a retry`,
}

var fetchAuthorCmd = &cobra.Command{
	Use:   "author <name>",
	Short: "Print the ids of the authors matching a name",
	Long: `Search authors by display name and ask, for each match, whether to keep it.
The ids of the kept authors are printed one per line.

Examples:
  citegraph fetch author "Frederick Matsen" > ids.txt`,
	Args: cobra.ExactArgs(1),
	Run:  runFetchAuthor,
}

var fetchWorksCmd = &cobra.Command{
	Use:   "works [author_ids.txt|-]",
	Short: "Print the works of the given authors",
	Long: `Print the works of the authors listed in a file, one OpenAlex author id per
line. Standard input is read when the file is omitted or "-".

Examples:
  citegraph fetch works ids.txt > works.jsonl`,
	Args: cobra.MaximumNArgs(1),
	Run:  runFetchWorks,
}

var fetchCitesCmd = &cobra.Command{
	Use:   "cites [works.jsonl|-]",
	Short: "Print the works that cite the given works",
	Long: `Print the works that cite any of the works in a JSONL file.

Examples:
  citegraph fetch cites works.jsonl > cites.jsonl`,
	Args: cobra.MaximumNArgs(1),
	Run:  runFetchCites,
}

var fetchCitedByCmd = &cobra.Command{
	Use:   "cited-by [works.jsonl|-]",
	Short: "Print the works cited by the given works",
	Long: `Print the works referenced by any of the works in a JSONL file.

Examples:
  citegraph fetch cited-by works.jsonl > refs.jsonl`,
	Args: cobra.MaximumNArgs(1),
	Run:  runFetchCitedBy,
}

func init() {
	flags := fetchCmd.PersistentFlags()
	flags.StringVar(&fetchEmail, "email", "", "Contact email, gets requests into the polite pool")
	flags.StringVar(&fetchAPIKey, "api-key", "", "OpenAlex API key")
	flags.IntVar(&fetchPerPage, "per-page", config.DefaultPerPage, "Results per page (up to 200; large pages sometimes fail)")
	flags.IntVar(&fetchMaxRetries, "max-retries", config.DefaultMaxRetries, "Maximum number of retries of a failed request")
	flags.Float64Var(&fetchBackoff, "retry-backoff-factor", config.DefaultRetryBackoffFactor, "Factor of the delay between retries")
	flags.IntSliceVar(&fetchRetryCodes, "retry-http-codes", config.DefaultRetryHTTPCodes, "HTTP codes that trigger a retry")
	flags.IntVarP(&fetchStartQuery, "start-query", "q", 1, "Start at the given query, after an interruption")
	flags.IntVarP(&fetchStartPage, "start-page", "p", 1, "Start the first query at the given page")

	fetchCmd.AddCommand(fetchAuthorCmd)
	fetchCmd.AddCommand(fetchWorksCmd)
	fetchCmd.AddCommand(fetchCitesCmd)
	fetchCmd.AddCommand(fetchCitedByCmd)
	rootCmd.AddCommand(fetchCmd)
}

// resolveConfig loads the config and applies the flags set on cmd.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("email") {
		cfg.Email = fetchEmail
	}
	if flags.Changed("api-key") {
		cfg.APIKey = fetchAPIKey
	}
	if flags.Changed("per-page") {
		cfg.PerPage = fetchPerPage
	}
	if flags.Changed("max-retries") {
		cfg.MaxRetries = fetchMaxRetries
	}
	if flags.Changed("retry-backoff-factor") {
		cfg.RetryBackoffFactor = fetchBackoff
	}
	if flags.Changed("retry-http-codes") {
		cfg.RetryHTTPCodes = fetchRetryCodes
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newOpenAlexClient creates a client from a resolved config.
func newOpenAlexClient(cfg *config.Config, log *logger.Logger, opts ...openalex.ClientOption) *openalex.Client {
	base := []openalex.ClientOption{
		openalex.WithEmail(cfg.Email),
		openalex.WithAPIKey(cfg.APIKey),
		openalex.WithPerPage(cfg.PerPage),
		openalex.WithRetries(cfg.MaxRetries, cfg.RetryBackoffFactor, cfg.RetryHTTPCodes),
		openalex.WithLogger(log),
	}
	return openalex.NewClient(append(base, opts...)...)
}

// mustFetchClient resolves the config for cmd and creates the client, exits on error.
func mustFetchClient(cmd *cobra.Command) (*openalex.Client, *logger.Logger) {
	log := mustNewLogger()
	cfg, err := resolveConfig(cmd)
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}
	return newOpenAlexClient(cfg, log), log
}

// signalContext returns a context canceled on Ctrl-C.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// openInput opens path for reading; "-" or no path is stdin.
func openInput(args []string) (io.ReadCloser, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	return f, nil
}

func runFetchAuthor(cmd *cobra.Command, args []string) {
	client, log := mustFetchClient(cmd)
	defer log.Sync()

	ctx, cancel := signalContext()
	defer cancel()

	confirm := prompt.NewStdio(os.Stdin, os.Stderr)
	exitOnError(fetchAuthorIDs(ctx, client, args[0], fetchStartPage, confirm, os.Stdout))
}

func runFetchWorks(cmd *cobra.Command, args []string) {
	client, log := mustFetchClient(cmd)
	defer log.Sync()

	in, err := openInput(args)
	exitOnError(err)
	authorIDs, err := work.ReadLines(in)
	in.Close()
	exitOnError(err)

	runFetchBatch(client, log, authorIDs, openalex.WorksByAuthors)
}

func runFetchCites(cmd *cobra.Command, args []string) {
	client, log := mustFetchClient(cmd)
	defer log.Sync()

	runFetchBatch(client, log, mustReadWorkIDs(args), openalex.WorksCiting)
}

func runFetchCitedBy(cmd *cobra.Command, args []string) {
	client, log := mustFetchClient(cmd)
	defer log.Sync()

	runFetchBatch(client, log, mustReadWorkIDs(args), openalex.WorksCitedBy)
}

// mustReadWorkIDs reads a JSONL works file and returns its distinct ids.
func mustReadWorkIDs(args []string) []string {
	path := "-"
	if len(args) > 0 {
		path = args[0]
	}
	works, err := work.ReadFile(path)
	if err != nil {
		exitOnError(fmt.Errorf("reading works: %w", err))
	}
	return work.UniqueIDs(works)
}

func runFetchBatch(client *openalex.Client, log *logger.Logger, values []string, build func(string) openalex.Query) {
	ctx, cancel := signalContext()
	defer cancel()

	from := openalex.Resume{Query: fetchStartQuery, Page: fetchStartPage}
	n, err := fetchRecords(ctx, client, values, build, from, os.Stdout)
	log.Info("fetch finished", "records", n)
	exitOnError(err)
}

// fetchRecords prints every record of the queries built from values as JSON lines
// and returns the number of records printed.
func fetchRecords(ctx context.Context, client *openalex.Client, values []string, build func(string) openalex.Query, from openalex.Resume, out io.Writer) (int, error) {
	rw := newRecordWriter(out)
	err := client.EachBatch(ctx, values, build, from, rw.Write)
	if flushErr := rw.Flush(); err == nil && flushErr != nil {
		err = fmt.Errorf("writing records: %w", flushErr)
	}
	return rw.count, err
}

// fetchAuthorIDs asks about every author matching name and prints the ids of the
// accepted ones, one per line.
func fetchAuthorIDs(ctx context.Context, client *openalex.Client, name string, startPage int, confirm prompt.Confirmer, out io.Writer) error {
	return client.Each(ctx, openalex.AuthorsByName(name), startPage, func(rec json.RawMessage) error {
		author, err := work.DecodeAuthor(rec)
		if err != nil {
			return fmt.Errorf("decoding author: %w", err)
		}

		question := fmt.Sprintf("Do you want to include %s (%s)? y/n ", author.DisplayName, author.Institution)
		ok, err := confirm.Confirm(question)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		_, err = fmt.Fprintln(out, author.ID)
		return err
	})
}

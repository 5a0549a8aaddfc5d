package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/time/rate"

	"github.com/matsen/citegraph/internal/config"
	"github.com/matsen/citegraph/internal/logger"
	"github.com/matsen/citegraph/internal/openalex"
	"github.com/matsen/citegraph/internal/prompt"
)

// fakeOpenAlex serves the records returned for the request's filter, paginated
// like OpenAlex.
func fakeOpenAlex(records func(filter string) []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := q.Get("filter")
		page, _ := strconv.Atoi(q.Get("page"))
		perPage, _ := strconv.Atoi(q.Get("per_page"))

		all := records(filter)
		var results []string
		for i := (page - 1) * perPage; i < page*perPage && i < len(all); i++ {
			results = append(results, all[i])
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"meta":{"count":%d,"page":%d,"per_page":%d},"results":[%s]}`,
			len(all), page, perPage, strings.Join(results, ",\n"))
	}
}

func newTestOpenAlex(t *testing.T, handler http.Handler, perPage int) *openalex.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.Defaults()
	cfg.PerPage = perPage
	return newOpenAlexClient(cfg, logger.Nop(),
		openalex.WithBaseURL(srv.URL),
		openalex.WithRateLimit(rate.Inf),
	)
}

func threeRecords(filter string) []string {
	prefix := "q1"
	if strings.Contains(filter, "W50") {
		prefix = "q2"
	}
	out := make([]string, 3)
	for i := range out {
		out[i] = fmt.Sprintf("{\n  \"id\": \"%s-R%d\",\n  \"n\": %d\n}", prefix, i+1, i+1)
	}
	return out
}

func workIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("W%d", i+1)
	}
	return ids
}

func TestFetchRecords(t *testing.T) {
	client := newTestOpenAlex(t, fakeOpenAlex(threeRecords), 2)

	var out bytes.Buffer
	n, err := fetchRecords(context.Background(), client, workIDs(50), openalex.WorksCiting, openalex.Resume{}, &out)
	if err != nil {
		t.Fatalf("fetchRecords() error = %v", err)
	}
	if n != 6 {
		t.Errorf("fetchRecords() = %d records, want 6", n)
	}

	want := strings.Join([]string{
		`{"id":"q1-R1","n":1}`,
		`{"id":"q1-R2","n":2}`,
		`{"id":"q1-R3","n":3}`,
		`{"id":"q2-R1","n":1}`,
		`{"id":"q2-R2","n":2}`,
		`{"id":"q2-R3","n":3}`,
	}, "\n") + "\n"
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchRecords_Resume(t *testing.T) {
	client := newTestOpenAlex(t, fakeOpenAlex(threeRecords), 2)

	var out bytes.Buffer
	n, err := fetchRecords(context.Background(), client, workIDs(50), openalex.WorksCiting, openalex.Resume{Query: 2, Page: 2}, &out)
	if err != nil {
		t.Fatalf("fetchRecords() error = %v", err)
	}
	if n != 1 {
		t.Errorf("fetchRecords() = %d records, want 1", n)
	}
	if got := out.String(); got != `{"id":"q2-R3","n":3}`+"\n" {
		t.Errorf("output = %q", got)
	}
}

func TestFetchRecords_ResumePastLastQuery(t *testing.T) {
	client := newTestOpenAlex(t, fakeOpenAlex(threeRecords), 2)

	var out bytes.Buffer
	n, err := fetchRecords(context.Background(), client, workIDs(50), openalex.WorksCiting, openalex.Resume{Query: 3}, &out)
	if err == nil {
		t.Fatal("fetchRecords() expected error for --start-query past the last query")
	}
	if !strings.Contains(err.Error(), "last query (2)") {
		t.Errorf("error %q should name the number of queries", err)
	}
	if n != 0 || out.Len() != 0 {
		t.Errorf("fetchRecords() wrote %d records, want none", n)
	}
}

func TestFetchRecords_KeepsRecordsBeforeFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/works", func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Query().Get("filter"), "W50") {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"error":"boom","message":"server exploded"}`)
			return
		}
		fakeOpenAlex(threeRecords)(w, r)
	})
	client := newTestOpenAlex(t, mux, 50)

	var out bytes.Buffer
	n, err := fetchRecords(context.Background(), client, workIDs(50), openalex.WorksCitedBy, openalex.Resume{}, &out)
	if err == nil {
		t.Fatal("fetchRecords() expected error")
	}
	if n != 3 {
		t.Errorf("fetchRecords() = %d records, want 3", n)
	}
	if lines := strings.Count(out.String(), "\n"); lines != 3 {
		t.Errorf("output has %d lines, want 3", lines)
	}
	if !strings.Contains(err.Error(), "query 2/2") {
		t.Errorf("error %q should name the failed query", err)
	}
	if code := exitCodeFor(err); code != ExitAPIError {
		t.Errorf("exitCodeFor() = %d, want %d", code, ExitAPIError)
	}
}

func TestFetchAuthorIDs(t *testing.T) {
	authors := []string{
		`{"id":"A1","display_name":"Ada Lovelace","last_known_institution":{"display_name":"Uni A"}}`,
		`{"id":"A2","display_name":"Ada L.","last_known_institution":{"display_name":"Uni B"}}`,
		`{"id":"A3","display_name":"A. Lovelace","last_known_institutions":[{"display_name":"Uni C"}]}`,
	}
	var filters []string
	handler := fakeOpenAlex(func(filter string) []string {
		filters = append(filters, filter)
		return authors
	})
	client := newTestOpenAlex(t, handler, 2)

	var questions []string
	answers := map[string]bool{
		"Do you want to include Ada Lovelace (Uni A)? y/n ": true,
		"Do you want to include A. Lovelace (Uni C)? y/n ":  true,
	}
	confirm := prompt.Func(func(q string) (bool, error) {
		questions = append(questions, q)
		return answers[q], nil
	})

	var out bytes.Buffer
	if err := fetchAuthorIDs(context.Background(), client, "Ada Lovelace", 1, confirm, &out); err != nil {
		t.Fatalf("fetchAuthorIDs() error = %v", err)
	}

	if got := out.String(); got != "A1\nA3\n" {
		t.Errorf("output = %q, want %q", got, "A1\nA3\n")
	}
	wantQuestions := []string{
		"Do you want to include Ada Lovelace (Uni A)? y/n ",
		"Do you want to include Ada L. (Uni B)? y/n ",
		"Do you want to include A. Lovelace (Uni C)? y/n ",
	}
	if diff := cmp.Diff(wantQuestions, questions); diff != "" {
		t.Errorf("questions mismatch (-want +got):\n%s", diff)
	}
	for _, f := range filters {
		if f != "display_name.search:Ada Lovelace" {
			t.Errorf("filter = %q, want display_name.search:Ada Lovelace", f)
		}
	}
}

func TestFetchAuthorIDs_Stdio(t *testing.T) {
	handler := fakeOpenAlex(func(string) []string {
		return []string{`{"id":"A1","display_name":"Ada","last_known_institution":{"display_name":"Uni"}}`}
	})
	client := newTestOpenAlex(t, handler, 50)

	var out, term bytes.Buffer
	confirm := prompt.NewStdio(strings.NewReader("maybe\ny\n"), &term)
	if err := fetchAuthorIDs(context.Background(), client, "Ada", 1, confirm, &out); err != nil {
		t.Fatalf("fetchAuthorIDs() error = %v", err)
	}

	if out.String() != "A1\n" {
		t.Errorf("output = %q, want %q", out.String(), "A1\n")
	}
	wantTerm := "Do you want to include Ada (Uni)? y/n " + prompt.Reprompt
	if term.String() != wantTerm {
		t.Errorf("terminal = %q, want %q", term.String(), wantTerm)
	}
}

func TestResolveConfig_FlagsOverride(t *testing.T) {
	for _, k := range []string{
		"OPENALEX_EMAIL", "OPENALEX_API_KEY", "OPENALEX_PER_PAGE", "OPENALEX_MAX_RETRIES",
		"OPENALEX_RETRY_BACKOFF_FACTOR", "OPENALEX_RETRY_HTTP_CODES",
	} {
		t.Setenv(k, "")
	}
	config.ResetFileCache()
	t.Cleanup(config.ResetFileCache)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("OPENALEX_EMAIL", "env@example.org")
	t.Setenv("OPENALEX_PER_PAGE", "30")

	if err := fetchCitesCmd.ParseFlags([]string{"--per-page", "20", "--retry-http-codes", "500,502"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}
	cfg, err := resolveConfig(fetchCitesCmd)
	if err != nil {
		t.Fatalf("resolveConfig() error = %v", err)
	}

	want := &config.Config{
		Email:              "env@example.org",
		PerPage:            20,
		MaxRetries:         config.DefaultMaxRetries,
		RetryBackoffFactor: config.DefaultRetryBackoffFactor,
		RetryHTTPCodes:     []int{500, 502},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("resolveConfig() mismatch (-want +got):\n%s", diff)
	}

	if err := fetchCitesCmd.ParseFlags([]string{"--per-page", "500"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}
	_, err = resolveConfig(fetchCitesCmd)
	if err == nil {
		t.Fatal("resolveConfig() expected error for --per-page 500")
	}
	if code := exitCodeFor(err); code != ExitConfigError {
		t.Errorf("exitCodeFor() = %d, want %d", code, ExitConfigError)
	}
}

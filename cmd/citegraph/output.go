package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// exitOnError exits with the code matching err, if any.
func exitOnError(err error) {
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// GraphResponse is the response of the graph commands.
type GraphResponse struct {
	Status string `json:"status"`
	Path   string `json:"path"`
	Format string `json:"format"`
	Nodes  int    `json:"nodes"`
	Edges  int    `json:"edges"`
}

// PlotResponse is the response of the plot command.
type PlotResponse struct {
	Status    string   `json:"status"`
	Path      string   `json:"path"`
	Years     int      `json:"years"`
	Series    []string `json:"series"`
	Citations int      `json:"citations"`
}

// recordWriter writes raw JSON records one per line.
type recordWriter struct {
	w     *bufio.Writer
	buf   bytes.Buffer
	count int
}

func newRecordWriter(w io.Writer) *recordWriter {
	return &recordWriter{w: bufio.NewWriter(w)}
}

// Write writes rec compacted onto a single line.
func (rw *recordWriter) Write(rec json.RawMessage) error {
	rw.buf.Reset()
	if err := json.Compact(&rw.buf, rec); err != nil {
		return fmt.Errorf("compacting record: %w", err)
	}
	rw.buf.WriteByte('\n')
	if _, err := rw.w.Write(rw.buf.Bytes()); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}
	rw.count++
	return nil
}

// Flush writes any buffered records.
func (rw *recordWriter) Flush() error {
	return rw.w.Flush()
}

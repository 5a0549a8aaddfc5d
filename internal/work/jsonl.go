package work

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// MaxLineCapacity is the maximum size of one JSONL record (16MB).
// Full OpenAlex work records with long author lists can exceed a megabyte.
const MaxLineCapacity = 16 * 1024 * 1024

// ErrMalformedRecord is returned for input that is not one JSON object per line.
var ErrMalformedRecord = errors.New("malformed record")

// Read decodes newline-delimited work records from r.
// Empty lines are skipped. The first malformed line aborts the read.
func Read(r io.Reader) ([]Work, error) {
	var works []Work
	err := scanRecords(r, func(raw map[string]any) {
		works = append(works, FromRecord(raw))
	})
	if err != nil {
		return nil, err
	}
	return works, nil
}

// ReadFile reads work records from a JSONL file. A path of "-" reads stdin.
func ReadFile(path string) ([]Work, error) {
	if path == "-" || path == "" {
		return Read(os.Stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening works file: %w", err)
	}
	defer f.Close()

	works, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return works, nil
}

// ReadLines reads non-empty, whitespace-trimmed lines (e.g. one author id per line).
func ReadLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	var lines []string
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		lines = append(lines, string(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading lines: %w", err)
	}
	return lines, nil
}

// Decode decodes a single work record.
func Decode(data []byte) (Work, error) {
	raw, err := decodeRecord(bytes.TrimSpace(data))
	if err != nil {
		return Work{}, err
	}
	return FromRecord(raw), nil
}

// DecodeAuthor decodes a single author record.
func DecodeAuthor(data []byte) (Author, error) {
	raw, err := decodeRecord(bytes.TrimSpace(data))
	if err != nil {
		return Author{}, err
	}
	return AuthorFromRecord(raw), nil
}

func scanRecords(r io.Reader, fn func(map[string]any)) error {
	scanner := bufio.NewScanner(r)

	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, MaxLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		raw, err := decodeRecord(line)
		if err != nil {
			return fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		fn(raw)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading records: %w", err)
	}
	return nil
}

// decodeRecord decodes one JSON object, keeping numbers as json.Number so integer
// attributes are not turned into floats.
func decodeRecord(line []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: not a JSON object", ErrMalformedRecord)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data", ErrMalformedRecord)
	}
	return raw, nil
}

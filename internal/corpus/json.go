package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// JSONSource reads a JSON array of paper objects from a file.
type JSONSource struct {
	Path string
}

func (s JSONSource) Describe() string { return "json:" + s.Path }

func (s JSONSource) Load(ctx context.Context) (Batch, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return Batch{}, unavailable("opening %s: %v", s.Path, err)
	}
	defer f.Close()
	batch, err := DecodeJSON(f)
	if err != nil {
		return Batch{}, fmt.Errorf("loading %s: %w", s.Path, err)
	}
	return batch, nil
}

// DecodeJSON decodes a JSON array of records. The array itself must be
// well-formed; individual elements are decoded leniently.
func DecodeJSON(r io.Reader) (Batch, error) {
	logger := slog.Default().With("component", "corpus-loader")
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Batch{}, unavailable("corpus is not a JSON array: %v", err)
	}
	batch := Batch{Papers: make([]Paper, 0, len(raw))}
	for i, msg := range raw {
		var fields map[string]any
		if err := json.Unmarshal(msg, &fields); err != nil || fields == nil {
			fields = map[string]any{}
		}
		p, malformed := decodeRecord(logger, i, fields)
		if malformed {
			batch.Malformed++
		}
		batch.Papers = append(batch.Papers, p)
	}
	logger.Info("decoded corpus", "records", len(batch.Papers), "malformed", batch.Malformed)
	return batch, nil
}

// WriteJSON writes papers as an indented JSON array.
func WriteJSON(w io.Writer, papers []Paper) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(papers); err != nil {
		return fmt.Errorf("encoding corpus: %w", err)
	}
	return nil
}

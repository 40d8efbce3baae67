// Package worker implements the line-delimited JSON protocol spoken by the
// calculation worker process.
//
// Each request is one JSON object on its own line:
//
//	{"id": 7, "form": {...FormData...}}
//
// and each response echoes the id with either results or an error:
//
//	{"id": 7, "results": {...Results...}}
//	{"id": 7, "error": "decode form: ..."}
package worker

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Simplici0/seacost/internal/calc"
)

const maxLineBytes = 4 << 20

// Request asks the worker to run one calculation.
type Request struct {
	ID   uint64          `json:"id"`
	Form json.RawMessage `json:"form"`
}

// Response carries the outcome of one Request.
type Response struct {
	ID      uint64          `json:"id"`
	Results json.RawMessage `json:"results,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// NewScanner returns a line scanner sized for protocol messages.
func NewScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxLineBytes)
	return sc
}

// Serve answers requests from r on w until r is exhausted.
// A malformed line produces an error response rather than stopping the loop.
func Serve(r io.Reader, w io.Writer) error {
	sc := NewScanner(r)
	enc := json.NewEncoder(w)

	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		if err := enc.Encode(Handle(line)); err != nil {
			return fmt.Errorf("write worker response: %w", err)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read worker request: %w", err)
	}
	return nil
}

// Handle runs a single encoded Request and never panics.
func Handle(line []byte) (resp Response) {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return Response{Error: fmt.Sprintf("decode request: %v", err)}
	}
	resp.ID = req.ID

	defer func() {
		if rec := recover(); rec != nil {
			resp = Response{ID: req.ID, Error: fmt.Sprintf("calculation panicked: %v", rec)}
		}
	}()

	results, err := Calculate(req.Form)
	if err != nil {
		resp.Error = err.Error()
		return resp
	}
	resp.Results = results
	return resp
}

// Calculate decodes a serialized FormData, runs the engine and encodes the Results.
func Calculate(form []byte) ([]byte, error) {
	in, err := calc.DecodeForm(bytes.NewReader(form))
	if err != nil {
		return nil, err
	}
	out, err := json.Marshal(calc.Calculate(in))
	if err != nil {
		return nil, fmt.Errorf("encode results: %w", err)
	}
	return out, nil
}

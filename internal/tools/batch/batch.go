package batch

import (
	"encoding/json"
	"fmt"
)

// Result is the outcome of a single item in a batch operation.
type Result struct {
	ID     string `json:"id"`
	Status string `json:"status"` // "success" or "error"
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// BatchResult aggregates per-item results with success/failure counts.
type BatchResult struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Results    []Result `json:"results"`
}

// ParseStringOrArray accepts a tool argument that may be a single string
// or an array of strings and normalizes it to a non-empty slice.
func ParseStringOrArray(param interface{}, paramName string) ([]string, error) {
	switch v := param.(type) {
	case nil:
		return nil, fmt.Errorf("%s is required", paramName)
	case string:
		if v == "" {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		return []string{v}, nil
	case []interface{}:
		if len(v) == 0 {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		out := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", paramName, i)
			}
			if s == "" {
				return nil, fmt.Errorf("%s[%d] cannot be empty", paramName, i)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s must be a string or array of strings", paramName)
	}
}

// ProcessBatch runs fn for each ID, collecting successes and failures
// without stopping on the first error.
func ProcessBatch(ids []string, fn func(id string) (string, error)) []Result {
	results := make([]Result, 0, len(ids))
	for _, id := range ids {
		if res, err := fn(id); err != nil {
			results = append(results, NewErrorResult(id, err))
		} else {
			results = append(results, Result{ID: id, Status: "success", Result: res})
		}
	}
	return results
}

// FormatResults renders per-item results as an indented JSON summary.
func FormatResults(results []Result) string {
	br := BatchResult{
		Total:   len(results),
		Results: results,
	}
	for _, r := range results {
		if r.Status == "success" {
			br.Successful++
		} else {
			br.Failed++
		}
	}

	out, _ := json.MarshalIndent(br, "", "  ")
	return string(out)
}

// NewSuccessResult creates a success result for an item.
func NewSuccessResult(id, message string) Result {
	return Result{ID: id, Status: "success", Result: message}
}

// NewErrorResult creates an error result for an item.
func NewErrorResult(id string, err error) Result {
	return Result{ID: id, Status: "error", Error: err.Error()}
}

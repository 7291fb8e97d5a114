package ingest

import (
	"fmt"
	"strings"

	"github.com/xhad/shopsearch/internal/models"
	"github.com/xhad/shopsearch/pkg/processor"
)

// ItemError is a record whose embedding failed. Index is its position in
// the summarized input.
type ItemError struct {
	Index int
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

// BatchError is a batch whose write to the collection failed.
type BatchError struct {
	Batch int
	Start int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch %d (from item %d): %v", e.Batch, e.Start, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

// CollectionError is a failure to reset the collection before import.
type CollectionError struct {
	Collection string
	Err        error
}

func (e *CollectionError) Error() string {
	return fmt.Sprintf("collection %s: %v", e.Collection, e.Err)
}

func (e *CollectionError) Unwrap() error { return e.Err }

type BatchResult struct {
	Index    int
	Start    int
	Size     int
	Embedded int
	Written  int
	Err      error
}

func (b BatchResult) Failed() int { return b.Size - b.Written }

type Report struct {
	RunID      string
	Domain     models.Domain
	Collection string
	Source     string
	Total      int
	Malformed  int
	Written    int
	Batches    []BatchResult
	Errors     []error
	Discovery  processor.Discovery
}

// Degraded reports whether any record was not written.
func (r *Report) Degraded() bool {
	return len(r.Errors) > 0 || r.Written < r.Total
}

// Summary is the human readable outcome of the run.
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Imported %d of %d %s records from %s into %s", r.Written, r.Total, r.Domain, r.Source, r.Collection)
	if r.Malformed > 0 {
		fmt.Fprintf(&b, " (%d malformed skipped)", r.Malformed)
	}
	for _, batch := range r.Batches {
		fmt.Fprintf(&b, "\n  batch %d: %d written, %d failed", batch.Index+1, batch.Written, batch.Failed())
		if batch.Err != nil {
			fmt.Fprintf(&b, " (%v)", batch.Err)
		}
	}
	return b.String()
}

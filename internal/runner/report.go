package runner

import (
	"time"

	"github.com/Sumatoshi-tech/aliasrewrite/pkg/compiler"
)

// FileResult is the outcome for one file.
type FileResult struct {
	Path     string            `json:"path"`
	OutPath  string            `json:"out_path,omitempty"`
	Language string            `json:"language,omitempty"`
	Changes  []compiler.Change `json:"changes,omitempty"`
	BytesIn  int               `json:"bytes_in"`
	BytesOut int               `json:"bytes_out"`
	Written  bool              `json:"written"`
	Duration time.Duration     `json:"duration_ns"`
	Err      error             `json:"-"`

	Original  []byte `json:"-"`
	Rewritten []byte `json:"-"`
}

// Changed reports whether the file's output differs from its input.
func (r *FileResult) Changed() bool {
	return r.Err == nil && len(r.Changes) > 0
}

// Report aggregates the results of a run in input order.
type Report struct {
	Files    []FileResult  `json:"files"`
	Duration time.Duration `json:"duration_ns"`
	DryRun   bool          `json:"dry_run"`
}

// ChangedFiles counts files with at least one rewrite.
func (r *Report) ChangedFiles() int {
	n := 0

	for i := range r.Files {
		if r.Files[i].Changed() {
			n++
		}
	}

	return n
}

// Errors counts failed files.
func (r *Report) Errors() int {
	n := 0

	for i := range r.Files {
		if r.Files[i].Err != nil {
			n++
		}
	}

	return n
}

// TotalChanges counts rewritten specifiers across all files.
func (r *Report) TotalChanges() int {
	n := 0

	for i := range r.Files {
		n += len(r.Files[i].Changes)
	}

	return n
}

// BytesIn sums the bytes read.
func (r *Report) BytesIn() int64 {
	var n int64

	for i := range r.Files {
		n += int64(r.Files[i].BytesIn)
	}

	return n
}

// BytesOut sums the bytes of emitted output.
func (r *Report) BytesOut() int64 {
	var n int64

	for i := range r.Files {
		n += int64(r.Files[i].BytesOut)
	}

	return n
}

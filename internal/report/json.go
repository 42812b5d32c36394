package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Sumatoshi-tech/aliasrewrite/internal/runner"
)

type jsonFile struct {
	runner.FileResult

	Changed bool   `json:"changed"`
	Error   string `json:"error,omitempty"`
}

type jsonSummary struct {
	Files    int   `json:"files"`
	Changed  int   `json:"changed"`
	Errors   int   `json:"errors"`
	Rewrites int   `json:"rewrites"`
	BytesIn  int64 `json:"bytes_in"`
	BytesOut int64 `json:"bytes_out"`
}

type jsonReport struct {
	Files      []jsonFile  `json:"files"`
	Summary    jsonSummary `json:"summary"`
	DryRun     bool        `json:"dry_run"`
	DurationNS int64       `json:"duration_ns"`
}

// WriteJSON encodes rep as an indented JSON document.
func WriteJSON(w io.Writer, rep *runner.Report) error {
	doc := jsonReport{
		Files: make([]jsonFile, len(rep.Files)),
		Summary: jsonSummary{
			Files:    len(rep.Files),
			Changed:  rep.ChangedFiles(),
			Errors:   rep.Errors(),
			Rewrites: rep.TotalChanges(),
			BytesIn:  rep.BytesIn(),
			BytesOut: rep.BytesOut(),
		},
		DryRun:     rep.DryRun,
		DurationNS: rep.Duration.Nanoseconds(),
	}

	for i := range rep.Files {
		res := &rep.Files[i]
		doc.Files[i] = jsonFile{FileResult: *res, Changed: res.Changed()}

		if res.Err != nil {
			doc.Files[i].Error = res.Err.Error()
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	return nil
}

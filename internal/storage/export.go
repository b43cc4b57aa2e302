package storage

import (
	"encoding/json"
	"io"
)

// RunExport is the JSON shape emitted by the export command.
type RunExport struct {
	Meta   RunMetadata          `json:"meta"`
	Times  []float64            `json:"times"`
	Series map[string][]float64 `json:"series"`
}

// ExportJSON writes a full run (metadata plus time series) to w.
func ExportJSON(w io.Writer, meta *RunMetadata, times []float64, series map[string][]float64) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(RunExport{
		Meta:   *meta,
		Times:  times,
		Series: series,
	})
}

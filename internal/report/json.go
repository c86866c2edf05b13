package report

import (
	"encoding/json"
	"io"
)

type jsonReport struct {
	*Report
	Consistent bool `json:"consistent"`
	ExitCode   int  `json:"exit_code"`
}

// WriteJSON writes rep as indented JSON, including the overall verdict and
// the exit code the command will return.
func WriteJSON(w io.Writer, rep *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(jsonReport{
		Report:     rep,
		Consistent: rep.Consistent(),
		ExitCode:   rep.ExitCode(),
	})
}

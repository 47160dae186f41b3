package app

import (
	"fmt"
	"io"
)

// RenderReports writes one line per report: the set name, a tab, and the match
// result or the error.
func RenderReports(w io.Writer, reports []Report) error {
	for _, r := range reports {
		var err error
		if r.Err != nil {
			_, err = fmt.Fprintf(w, "%s\terror: %v\n", r.Set, r.Err)
		} else {
			_, err = fmt.Fprintf(w, "%s\t%s\n", r.Set, r.Result)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

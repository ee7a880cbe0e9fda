package diagfmt

import (
	"fmt"
	"io"

	"docthrows/internal/diag"
	"docthrows/internal/source"
)

// Short prints one line per diagnostic:
// path:line:col: SEV CODE: message [did you mean X?]
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, mode PathMode) {
	if bag == nil {
		return
	}
	for _, d := range bag.Items() {
		fmt.Fprintf(w, "%s: %s %s: %s", location(fs, d.Primary, mode), d.Severity, d.Code.ID(), d.Message)
		if d.Suggestion != "" {
			fmt.Fprintf(w, " (did you mean %s?)", d.Suggestion)
		}
		fmt.Fprintln(w)
	}
}

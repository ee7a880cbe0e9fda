package driver

import (
	"fmt"
	"strings"

	"docthrows/internal/diag"
)

// Stats summarise an analysis run.
type Stats struct {
	Entities  int
	Aborted   int // entities skipped because the hierarchy was too deep
	Inherited int // methods carrying inherited throws
	Errors    int
	Warnings  int
	Infos     int
	Dropped   int // diagnostics over the limit
	ByCode    map[diag.Code]int
}

func (s *Stats) collect(bag *diag.Bag) {
	s.ByCode = bag.CountByCode()
	s.Dropped = bag.Dropped()
	for _, d := range bag.Items() {
		switch {
		case d.Severity >= diag.SevError:
			s.Errors++
		case d.Severity == diag.SevWarning:
			s.Warnings++
		default:
			s.Infos++
		}
	}
}

// Summary renders a one-line human summary.
func (s Stats) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d entities: %d errors, %d warnings, %d infos", s.Entities, s.Errors, s.Warnings, s.Infos)
	if s.Aborted > 0 {
		fmt.Fprintf(&sb, ", %d skipped", s.Aborted)
	}
	if s.Inherited > 0 {
		fmt.Fprintf(&sb, ", %d inherited", s.Inherited)
	}
	if s.Dropped > 0 {
		fmt.Fprintf(&sb, " (%d more not shown)", s.Dropped)
	}
	return sb.String()
}

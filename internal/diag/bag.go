package diag

import (
	"fmt"
	"sort"
)

type Bag struct {
	items   []Diagnostic
	max     int
	dropped int
}

// NewBag creates a bag holding at most max diagnostics; max <= 0 means unlimited.
func NewBag(max int) *Bag {
	capHint := max
	if capHint <= 0 || capHint > 64 {
		capHint = 64
	}
	return &Bag{
		items: make([]Diagnostic, 0, capHint),
		max:   max,
	}
}

// Add добавляет диагностику, учитывая лимит.
// Возвращает false, если диагностика не добавлена (достигнут лимит).
func (b *Bag) Add(d Diagnostic) bool {
	if b.max > 0 && len(b.items) >= b.max {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Cap() int {
	return b.max
}

// Dropped reports how many diagnostics were rejected by the limit.
func (b *Bag) Dropped() int {
	return b.dropped
}

// HasErrors возвращает true, если есть хотя бы одна диагностика с Severity >= Error
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// HasWarnings возвращает true, если есть хотя бы одна диагностика с Severity >= Warning
func (b *Bag) HasWarnings() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevWarning {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items возвращает read-only slice диагностик.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Merge appends diagnostics from other, respecting the limit of b.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	for _, d := range other.items {
		b.Add(d)
	}
	b.dropped += other.dropped
}

// Filter keeps only diagnostics for which keep returns true.
func (b *Bag) Filter(keep func(Diagnostic) bool) {
	out := b.items[:0]
	for _, d := range b.items {
		if keep(d) {
			out = append(out, d)
		}
	}
	b.items = out
}

// Sort сортирует диагностики по: file, start, end, severity (desc), code (asc)
// для стабильного и детерминированного порядка вывода.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		if di.Primary.End != dj.Primary.End {
			return di.Primary.End < dj.Primary.End
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}

// простая дедупликация (по Code+Primary+Message)
func (b *Bag) Dedup() {
	seen := make(map[string]bool)
	newitems := make([]Diagnostic, 0, len(b.items))
	for _, d := range b.items {
		key := fmt.Sprintf("%s:%s:%s", d.Code.ID(), d.Primary.String(), d.Message)
		if seen[key] {
			continue
		}
		seen[key] = true
		newitems = append(newitems, d)
	}
	b.items = newitems
}

// CountByCode returns how many diagnostics of each code the bag holds.
func (b *Bag) CountByCode() map[Code]int {
	out := make(map[Code]int)
	for _, d := range b.items {
		out[d.Code]++
	}
	return out
}

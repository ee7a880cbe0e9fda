package fix

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"docthrows/internal/diag"
	"docthrows/internal/source"
)

// ErrNoFixes is returned when no fixes were applied.
var ErrNoFixes = errors.New("no applicable fixes found")

// ApplyMode determines selection strategy for fixes.
type ApplyMode uint8

const (
	ApplyModeOnce ApplyMode = iota
	ApplyModeAll
	ApplyModeID
)

// ApplyOptions configures how fixes are selected.
type ApplyOptions struct {
	Mode     ApplyMode
	TargetID string
	// Unsafe lets ApplyModeAll take fixes that are not always-safe.
	Unsafe bool
}

// AppliedFix records a successfully applied fix.
type AppliedFix struct {
	ID            string
	Title         string
	Code          diag.Code
	Message       string
	Applicability diag.FixApplicability
	PrimaryPath   string
	EditCount     int
}

// SkippedFix captures a skipped or failed fix with a reason.
type SkippedFix struct {
	ID     string
	Title  string
	Reason string
}

// FileChange summarises modifications performed on a file.
type FileChange struct {
	Path      string
	EditCount int
}

// ApplyResult aggregates applied fixes, skipped ones, and file changes.
type ApplyResult struct {
	Applied     []AppliedFix
	Skipped     []SkippedFix
	FileChanges []FileChange
}

type candidate struct {
	diag  diag.Diagnostic
	fix   diag.Fix
	order int
}

// Apply collects fixes from diagnostics, selects a subset according to opts,
// and rewrites the affected source files.
func Apply(fs *source.FileSet, diagnostics []diag.Diagnostic, opts ApplyOptions) (*ApplyResult, error) {
	result := &ApplyResult{
		Applied:     make([]AppliedFix, 0),
		Skipped:     make([]SkippedFix, 0),
		FileChanges: make([]FileChange, 0),
	}
	if fs == nil {
		return result, fmt.Errorf("fix: FileSet is nil")
	}

	candidates, gatherSkips := gatherCandidates(diagnostics)
	result.Skipped = append(result.Skipped, gatherSkips...)
	if len(candidates) == 0 {
		return result, ErrNoFixes
	}

	sortCandidates(candidates)

	selected, selectionSkips := selectCandidates(candidates, opts)
	result.Skipped = append(result.Skipped, selectionSkips...)
	if len(selected) == 0 {
		return result, ErrNoFixes
	}

	applied, applySkips, changes, err := applyCandidates(fs, selected)
	result.Applied = append(result.Applied, applied...)
	result.Skipped = append(result.Skipped, applySkips...)
	result.FileChanges = append(result.FileChanges, changes...)
	if err != nil {
		return result, err
	}
	if len(result.Applied) == 0 {
		return result, ErrNoFixes
	}
	return result, nil
}

// gatherCandidates flattens diagnostic fixes into candidates. Fixes without
// edits are skipped, and so is every repeat of an ID already seen, which
// keeps ApplyModeID unambiguous. Missing IDs are synthesized from the
// diagnostic code and primary position.
func gatherCandidates(diagnostics []diag.Diagnostic) ([]candidate, []SkippedFix) {
	cands := make([]candidate, 0)
	skips := make([]SkippedFix, 0)
	seen := make(map[string]struct{})

	order := 0
	for _, d := range diagnostics {
		for idx, f := range d.Fixes {
			if len(f.Edits) == 0 {
				skips = append(skips, SkippedFix{ID: f.ID, Title: f.Title, Reason: "fix has no edits"})
				continue
			}
			if f.ID == "" {
				f.ID = fmt.Sprintf("%s-%d-%d-%d", d.Code.ID(), d.Primary.File, d.Primary.Start, idx)
			}
			if _, dup := seen[f.ID]; dup {
				skips = append(skips, SkippedFix{ID: f.ID, Title: f.Title, Reason: "duplicate fix id"})
				continue
			}
			seen[f.ID] = struct{}{}
			cands = append(cands, candidate{diag: d, fix: f, order: order})
			order++
		}
	}
	return cands, skips
}

// sortCandidates orders by file, span start, span end, insertion order,
// code, preference (preferred first), ID and title.
func sortCandidates(candidates []candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		di, dj := candidates[i].diag, candidates[j].diag
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		if di.Primary.End != dj.Primary.End {
			return di.Primary.End < dj.Primary.End
		}
		if candidates[i].order != candidates[j].order {
			return candidates[i].order < candidates[j].order
		}
		if di.Code != dj.Code {
			return di.Code < dj.Code
		}
		if candidates[i].fix.IsPreferred != candidates[j].fix.IsPreferred {
			return candidates[i].fix.IsPreferred
		}
		if candidates[i].fix.ID != candidates[j].fix.ID {
			return candidates[i].fix.ID < candidates[j].fix.ID
		}
		return candidates[i].fix.Title < candidates[j].fix.Title
	})
}

func selectCandidates(candidates []candidate, opts ApplyOptions) ([]candidate, []SkippedFix) {
	switch opts.Mode {
	case ApplyModeID:
		for _, cand := range candidates {
			if cand.fix.ID == opts.TargetID {
				return []candidate{cand}, nil
			}
		}
		return nil, []SkippedFix{{ID: opts.TargetID, Reason: "fix id not found"}}
	case ApplyModeAll:
		selected := make([]candidate, 0, len(candidates))
		skipped := make([]SkippedFix, 0)
		for _, cand := range candidates {
			if opts.Unsafe || cand.fix.Applicability == diag.FixApplicabilityAlwaysSafe {
				selected = append(selected, cand)
				continue
			}
			skipped = append(skipped, SkippedFix{
				ID:     cand.fix.ID,
				Title:  cand.fix.Title,
				Reason: fmt.Sprintf("applicability is %s", cand.fix.Applicability),
			})
		}
		return selected, skipped
	case ApplyModeOnce:
		// первый безопасный, иначе первый вообще
		for _, cand := range candidates {
			if cand.fix.Applicability == diag.FixApplicabilityAlwaysSafe {
				return []candidate{cand}, nil
			}
		}
		return []candidate{candidates[0]}, nil
	default:
		return nil, nil
	}
}

func applyCandidates(fs *source.FileSet, selected []candidate) ([]AppliedFix, []SkippedFix, []FileChange, error) {
	buffers := make(map[source.FileID][]byte)
	appliedEdits := make(map[source.FileID][]diag.TextEdit)
	fileEditCount := make(map[source.FileID]int)

	applied := make([]AppliedFix, 0, len(selected))
	skipped := make([]SkippedFix, 0)
	baseDir := fs.BaseDir()

	for _, cand := range selected {
		staged, reason := stageFix(fs, cand.fix, buffers, appliedEdits)
		if reason != "" {
			skipped = append(skipped, SkippedFix{ID: cand.fix.ID, Title: cand.fix.Title, Reason: reason})
			continue
		}
		total := 0
		for fileID, st := range staged {
			buffers[fileID] = st.buf
			appliedEdits[fileID] = st.applied
			fileEditCount[fileID] += st.count
			total += st.count
		}
		applied = append(applied, AppliedFix{
			ID:            cand.fix.ID,
			Title:         cand.fix.Title,
			Code:          cand.diag.Code,
			Message:       cand.diag.Message,
			Applicability: cand.fix.Applicability,
			PrimaryPath:   formatFilePath(fs, cand.diag.Primary.File),
			EditCount:     total,
		})
	}

	if len(applied) == 0 {
		return applied, skipped, nil, nil
	}

	dirty := make([]source.FileID, 0, len(buffers))
	for fileID := range buffers {
		dirty = append(dirty, fileID)
	}
	sort.Slice(dirty, func(i, j int) bool { return dirty[i] < dirty[j] })

	changes := make([]FileChange, 0, len(dirty))
	for _, fileID := range dirty {
		file := fs.Get(fileID)
		mode := os.FileMode(0o644)
		if info, err := os.Stat(file.Path); err == nil {
			mode = info.Mode()
		}
		if err := os.WriteFile(file.Path, file.Denormalize(buffers[fileID]), mode); err != nil {
			return applied, skipped, changes, fmt.Errorf("write %s: %w", file.Path, err)
		}
		changes = append(changes, FileChange{
			Path:      file.FormatPath("relative", baseDir),
			EditCount: fileEditCount[fileID],
		})
	}
	sort.SliceStable(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	return applied, skipped, changes, nil
}

type stagedFile struct {
	buf     []byte
	applied []diag.TextEdit
	count   int
}

// stageFix applies one fix to copies of the working buffers. Nothing is
// committed unless every edit of the fix fits.
func stageFix(fs *source.FileSet, f diag.Fix, buffers map[source.FileID][]byte, appliedEdits map[source.FileID][]diag.TextEdit) (map[source.FileID]stagedFile, string) {
	staged := make(map[source.FileID]stagedFile)
	for fileID, edits := range groupEditsByFile(f.Edits) {
		file := fs.Get(fileID)
		if file == nil {
			return nil, "target file is unknown"
		}
		if file.IsVirtual() {
			return nil, "target file is virtual"
		}
		if conflictsWithExisting(appliedEdits[fileID], edits) || conflictsWithin(edits) {
			return nil, fmt.Sprintf("conflicts with previously applied edits in %s", file.FormatPath("auto", fs.BaseDir()))
		}

		working := buffers[fileID]
		if working == nil {
			working = file.Content
		}
		working = append([]byte(nil), working...)

		// с конца, чтобы смещения ещё не применённых правок не поехали
		sort.SliceStable(edits, func(i, j int) bool {
			if edits[i].Span.Start == edits[j].Span.Start {
				return edits[i].Span.End > edits[j].Span.End
			}
			return edits[i].Span.Start > edits[j].Span.Start
		})

		done := append([]diag.TextEdit(nil), appliedEdits[fileID]...)
		for _, edit := range edits {
			start := int(edit.Span.Start) + cumulativeDelta(done, int(edit.Span.Start))
			end := int(edit.Span.End) + cumulativeDelta(done, int(edit.Span.End))
			if start < 0 || end < start || end > len(working) {
				return nil, "edit span out of range"
			}
			if edit.OldText != "" && string(working[start:end]) != edit.OldText {
				return nil, "existing text does not match expected content"
			}
			tail := append([]byte(nil), working[end:]...)
			working = append(append(working[:start], edit.NewText...), tail...)
			done = insertEditSorted(done, edit)
		}
		staged[fileID] = stagedFile{buf: working, applied: done, count: len(edits)}
	}
	return staged, ""
}

func conflictsWithExisting(existing []diag.TextEdit, edits []diag.TextEdit) bool {
	for _, prev := range existing {
		for _, cand := range edits {
			if spansConflict(prev, cand) {
				return true
			}
		}
	}
	return false
}

func conflictsWithin(edits []diag.TextEdit) bool {
	for i := range edits {
		for j := i + 1; j < len(edits); j++ {
			if spansConflict(edits[i], edits[j]) {
				return true
			}
		}
	}
	return false
}

// spansConflict treats spans as half-open intervals. Two insertions never
// conflict; an insertion conflicts with a span strictly containing its
// position or starting at it.
func spansConflict(a, b diag.TextEdit) bool {
	aStart, aEnd := a.Span.Start, a.Span.End
	bStart, bEnd := b.Span.Start, b.Span.End

	if aStart == aEnd && bStart == bEnd {
		return false
	}
	if aStart == aEnd {
		return bStart <= aStart && aStart < bEnd
	}
	if bStart == bEnd {
		return aStart <= bStart && bStart < aEnd
	}
	return aStart < bEnd && bStart < aEnd
}

func groupEditsByFile(edits []diag.TextEdit) map[source.FileID][]diag.TextEdit {
	buckets := make(map[source.FileID][]diag.TextEdit)
	for _, edit := range edits {
		buckets[edit.Span.File] = append(buckets[edit.Span.File], edit)
	}
	return buckets
}

// cumulativeDelta is the byte shift at pos produced by edits that end at or
// before it. edits must be sorted by start.
func cumulativeDelta(edits []diag.TextEdit, pos int) int {
	delta := 0
	for _, e := range edits {
		eStart := int(e.Span.Start)
		if eStart > pos {
			break
		}
		eEnd := int(e.Span.End)
		if eEnd <= pos {
			delta += len(e.NewText) - (eEnd - eStart)
		}
	}
	return delta
}

func insertEditSorted(edits []diag.TextEdit, edit diag.TextEdit) []diag.TextEdit {
	idx := sort.Search(len(edits), func(i int) bool {
		if edits[i].Span.Start == edit.Span.Start {
			return edits[i].Span.End >= edit.Span.End
		}
		return edits[i].Span.Start > edit.Span.Start
	})
	edits = append(edits, diag.TextEdit{})
	copy(edits[idx+1:], edits[idx:])
	edits[idx] = edit
	return edits
}

func formatFilePath(fs *source.FileSet, fileID source.FileID) string {
	file := fs.Get(fileID)
	if file == nil {
		return ""
	}
	return file.FormatPath("auto", fs.BaseDir())
}

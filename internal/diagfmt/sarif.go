package diagfmt

import (
	"encoding/json"
	"io"

	"docthrows/internal/diag"
	"docthrows/internal/source"
)

const sarifSchema = "https://json.schemastore.org/sarif-2.1.0.json"

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool        sarifTool         `json:"tool"`
	Invocations []sarifInvocation `json:"invocations,omitempty"`
	Results     []sarifResult     `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version,omitempty"`
	Rules   []sarifRule `json:"rules,omitempty"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifInvocation struct {
	Arguments           []string `json:"arguments,omitempty"`
	ExecutionSuccessful bool     `json:"executionSuccessful"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysical `json:"physicalLocation"`
}

type sarifPhysical struct {
	ArtifactLocation sarifArtifact `json:"artifactLocation"`
	Region           *sarifRegion  `json:"region,omitempty"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   uint32 `json:"startLine"`
	StartColumn uint32 `json:"startColumn"`
	EndLine     uint32 `json:"endLine"`
	EndColumn   uint32 `json:"endColumn"`
}

func sarifLevel(s diag.Severity) string {
	switch s {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	default:
		return "note"
	}
}

// Sarif форматирует диагностики в SARIF формат (v2.1.0)
func Sarif(w io.Writer, bag *diag.Bag, fs *source.FileSet, meta SarifRunMeta) error {
	run := sarifRun{
		Tool:    sarifTool{Driver: sarifDriver{Name: meta.ToolName, Version: meta.ToolVersion}},
		Results: make([]sarifResult, 0, bag.Len()),
	}
	if len(meta.InvocationArgs) > 0 {
		run.Invocations = []sarifInvocation{{Arguments: meta.InvocationArgs, ExecutionSuccessful: true}}
	}
	seenRules := make(map[diag.Code]struct{})
	for _, d := range bag.Items() {
		if _, ok := seenRules[d.Code]; !ok {
			seenRules[d.Code] = struct{}{}
			run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, sarifRule{
				ID:               d.Code.ID(),
				ShortDescription: sarifMessage{Text: d.Code.Title()},
			})
		}
		msg := d.Message
		if d.Suggestion != "" {
			msg += " (did you mean " + d.Suggestion + "?)"
		}
		res := sarifResult{RuleID: d.Code.ID(), Level: sarifLevel(d.Severity), Message: sarifMessage{Text: msg}}
		if f := fs.Get(d.Primary.File); f != nil {
			loc := sarifLocation{PhysicalLocation: sarifPhysical{
				ArtifactLocation: sarifArtifact{URI: formatPath(fs, f, PathModeRelative)},
			}}
			if !d.Primary.Empty() {
				start, end := fs.Resolve(d.Primary)
				loc.PhysicalLocation.Region = &sarifRegion{
					StartLine: start.Line, StartColumn: start.Col,
					EndLine: end.Line, EndColumn: end.Col,
				}
			}
			res.Locations = []sarifLocation{loc}
		}
		run.Results = append(run.Results, res)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sarifLog{Schema: sarifSchema, Version: "2.1.0", Runs: []sarifRun{run}})
}

package pipeline

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Stage names one step of the pair generation pipeline.
type Stage string

const (
	StageIngest    Stage = "ingest"
	StageResolve   Stage = "resolve"
	StageNames     Stage = "names"
	StageNormalize Stage = "normalize"
	StagePairs     Stage = "pairs"
	StageScore     Stage = "score"
	StageExport    Stage = "export"
)

// AllStages returns every stage in execution order.
func AllStages() []Stage {
	return []Stage{StageIngest, StageResolve, StageNames, StageNormalize, StagePairs, StageScore, StageExport}
}

// ParseStages parses a comma-separated stage list. The result is always in
// execution order regardless of the order given. An empty list selects all
// stages.
func ParseStages(s string) ([]Stage, error) {
	if strings.TrimSpace(s) == "" || strings.TrimSpace(s) == "all" {
		return AllStages(), nil
	}

	want := make(map[Stage]bool)
	for _, part := range strings.Split(s, ",") {
		name := Stage(strings.ToLower(strings.TrimSpace(part)))
		if name == "" {
			continue
		}
		if !name.Valid() {
			return nil, eris.Errorf("pipeline: unknown stage %q", name)
		}
		want[name] = true
	}

	var out []Stage
	for _, st := range AllStages() {
		if want[st] {
			out = append(out, st)
		}
	}
	return out, nil
}

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	for _, st := range AllStages() {
		if s == st {
			return true
		}
	}
	return false
}

func stageNames(stages []Stage) []string {
	out := make([]string, len(stages))
	for i, s := range stages {
		out[i] = string(s)
	}
	return out
}

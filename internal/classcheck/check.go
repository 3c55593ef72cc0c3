package classcheck

import (
	"log/slog"
	"sort"

	"udalist/internal/logging"
	"udalist/internal/manifest"
)

// Status is the outcome of a comparison.
type Status string

const (
	StatusMatch    Status = "match"
	StatusMismatch Status = "mismatch"
	StatusSkipped  Status = "skipped"
)

// Report describes a source/target vocabulary comparison.
type Report struct {
	Source      string              `json:"source"`
	Target      string              `json:"target"`
	Status      Status              `json:"status"`
	SourceCount int                 `json:"source_count"`
	TargetCount int                 `json:"target_count"`
	SourceOnly  []string            `json:"source_only,omitempty"`
	TargetOnly  []string            `json:"target_only,omitempty"`
	SourceVocab manifest.Vocabulary `json:"source_classes"`
	TargetVocab manifest.Vocabulary `json:"target_classes"`
}

// Compare checks two vocabularies. source and target name the domains for
// reporting only.
func Compare(source, target string, sourceVocab, targetVocab manifest.Vocabulary) Report {
	report := Report{
		Source:      source,
		Target:      target,
		SourceCount: len(sourceVocab),
		TargetCount: len(targetVocab),
		SourceVocab: sourceVocab.Clone(),
		TargetVocab: targetVocab.Clone(),
	}
	switch {
	case len(sourceVocab) == 0 || len(targetVocab) == 0:
		report.Status = StatusSkipped
	case sourceVocab.Equal(targetVocab):
		report.Status = StatusMatch
	default:
		report.Status = StatusMismatch
		report.SourceOnly = difference(sourceVocab, targetVocab)
		report.TargetOnly = difference(targetVocab, sourceVocab)
	}
	return report
}

// SymmetricDifference returns the classes present on exactly one side, sorted.
// It is empty for a mismatch caused only by ordering.
func (r Report) SymmetricDifference() []string {
	out := make([]string, 0, len(r.SourceOnly)+len(r.TargetOnly))
	out = append(out, r.SourceOnly...)
	out = append(out, r.TargetOnly...)
	sort.Strings(out)
	return out
}

// OK reports whether the comparison found no mismatch.
func (r Report) OK() bool {
	return r.Status != StatusMismatch
}

// Log emits the report as diagnostics. Skipped comparisons are silent.
func (r Report) Log(logger *slog.Logger) {
	logger = logging.NewComponentLogger(logger, "classcheck")
	switch r.Status {
	case StatusMatch:
		logger.Info("classes match",
			logging.String("source", r.Source),
			logging.String("target", r.Target),
			logging.Int("classes", r.SourceCount))
	case StatusMismatch:
		logging.WarnWithContext(logger, "class mismatch between source and target",
			"class_vocabulary_mismatch",
			logging.String("source", r.Source),
			logging.String("target", r.Target),
			logging.Int("source_classes", r.SourceCount),
			logging.Int("target_classes", r.TargetCount),
			logging.Strings("symmetric_difference", r.SymmetricDifference()),
			logging.String(logging.FieldErrorHint, "align class folders or set classes in the config"),
			logging.String(logging.FieldImpact, "label indices differ between the source and target manifests"))
	}
}

func difference(a, b manifest.Vocabulary) []string {
	var out []string
	for _, class := range a {
		if !b.Contains(class) {
			out = append(out, class)
		}
	}
	sort.Strings(out)
	return out
}

package history

import "time"

// Run is one recorded generation run.
type Run struct {
	ID              string     `json:"id"`
	StartedAt       time.Time  `json:"started_at"`
	FinishedAt      time.Time  `json:"finished_at"`
	RootDir         string     `json:"root_dir"`
	OutputDir       string     `json:"output_dir"`
	Source          string     `json:"source"`
	Target          string     `json:"target"`
	SplitAware      bool       `json:"split_aware"`
	CheckStatus     string     `json:"check_status"`
	CheckDifference []string   `json:"check_difference,omitempty"`
	ManifestCount   int        `json:"manifest_count"`
	Manifests       []Manifest `json:"manifests,omitempty"`
}

// Duration is the wall time the run took.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Manifest is one manifest file written by a run.
type Manifest struct {
	Domain  string `json:"domain"`
	Split   string `json:"split,omitempty"`
	Path    string `json:"path"`
	Lines   int    `json:"lines"`
	Classes int    `json:"classes"`
	Bytes   int64  `json:"bytes"`
	Missing bool   `json:"missing"`
}

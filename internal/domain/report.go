package domain

import (
	"fmt"
	"time"

	"github.com/montanaflynn/stats"
)

// RunTally holds the counters of a single audit run.
// Total never drops below Signed; only counted outcomes touch either.
type RunTally struct {
	Signed     int `json:"signed" yaml:"signed"`
	Total      int `json:"total" yaml:"total"`
	Unexpected int `json:"unexpected" yaml:"unexpected"`
	Failed     int `json:"failed" yaml:"failed"`
}

// Record updates the counters for one processed package.
func (t *RunTally) Record(o Outcome) {
	if o.Counted() {
		t.Total++
	}
	switch o {
	case OutcomeSigned:
		t.Signed++
	case OutcomeUnexpected:
		t.Unexpected++
	case OutcomeVerifyFailed, OutcomeAcquireFailed:
		t.Failed++
	}
}

// Percentage returns the share of signed packages in percent. The second
// value is false when no package was counted.
func (t RunTally) Percentage() (float64, bool) {
	if t.Total == 0 {
		return 0, false
	}
	return float64(t.Signed) / float64(t.Total) * 100, true
}

// PackageResult is the audit record of a single package.
type PackageResult struct {
	ID               string  `json:"id" yaml:"id"`
	Version          string  `json:"version,omitempty" yaml:"version,omitempty"`
	Outcome          Outcome `json:"outcome" yaml:"outcome"`
	SizeBytes        int64   `json:"size_bytes,omitempty" yaml:"size_bytes,omitempty"`
	Digest           string  `json:"digest,omitempty" yaml:"digest,omitempty"`
	HasSignatureFile bool    `json:"has_signature_file" yaml:"has_signature_file"`
	ExitCode         int     `json:"exit_code,omitempty" yaml:"exit_code,omitempty"`
	Error            string  `json:"error,omitempty" yaml:"error,omitempty"`
}

// Report is the outcome of one audit run.
type Report struct {
	RunID           string          `json:"run_id" yaml:"run_id"`
	CommunityOnly   bool            `json:"community_only" yaml:"community_only"`
	Strategy        string          `json:"strategy" yaml:"strategy"`
	Top             int             `json:"top" yaml:"top"`
	StartedAt       time.Time       `json:"started_at" yaml:"started_at"`
	FinishedAt      time.Time       `json:"finished_at" yaml:"finished_at"`
	Tally           RunTally        `json:"tally" yaml:"tally"`
	PercentSigned   *float64        `json:"percent_signed,omitempty" yaml:"percent_signed,omitempty"`
	MeanSizeBytes   float64         `json:"mean_size_bytes,omitempty" yaml:"mean_size_bytes,omitempty"`
	MedianSizeBytes float64         `json:"median_size_bytes,omitempty" yaml:"median_size_bytes,omitempty"`
	Packages        []PackageResult `json:"packages" yaml:"packages"`
}

// Add records a package result in the report and its tally.
func (r *Report) Add(res PackageResult) {
	r.Tally.Record(res.Outcome)
	r.Packages = append(r.Packages, res)
}

// Finalize computes the derived fields once every package has been added.
func (r *Report) Finalize(finishedAt time.Time) {
	r.FinishedAt = finishedAt
	r.PercentSigned = nil
	if pct, ok := r.Tally.Percentage(); ok {
		rounded, err := stats.Round(pct, 1)
		if err != nil {
			rounded = pct
		}
		r.PercentSigned = &rounded
	}

	var sizes stats.Float64Data
	for _, p := range r.Packages {
		if p.SizeBytes > 0 {
			sizes = append(sizes, float64(p.SizeBytes))
		}
	}
	if len(sizes) == 0 {
		return
	}
	// Errors only occur on empty input, ruled out above.
	r.MeanSizeBytes, _ = sizes.Mean()
	r.MedianSizeBytes, _ = sizes.Median()
}

// Summary returns the closing lines printed after the last package.
func (r *Report) Summary() []string {
	pct, ok := r.Tally.Percentage()
	if !ok {
		return []string{
			fmt.Sprintf("No packages verified: none of the %d processed packages produced a repository signature result.", len(r.Packages)),
		}
	}
	return []string{
		fmt.Sprintf("%d packages were signed out of %d.", r.Tally.Signed, r.Tally.Total),
		fmt.Sprintf("That's %s of the %d packages", FormatPercent(pct), r.Tally.Total),
	}
}

// FormatPercent renders a percentage with one decimal, e.g. "75.0%".
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

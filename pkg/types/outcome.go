// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Status is the result of a query run or an export attempt.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// QueryOutcome records how one configured query finished. Result is nil
// when Status is StatusError.
type QueryOutcome struct {
	Query    string          `json:"query" yaml:"query"`
	Status   Status          `json:"status" yaml:"status"`
	Message  string          `json:"message,omitempty" yaml:"message,omitempty"`
	Duration time.Duration   `json:"duration" yaml:"duration"`
	Result   *WorkflowResult `json:"result,omitempty" yaml:"result,omitempty"`
}

// ExportStatus records one exporter's attempt to deliver the report.
type ExportStatus struct {
	Exporter string `json:"exporter" yaml:"exporter"`
	Status   Status `json:"status" yaml:"status"`
	Message  string `json:"message" yaml:"message"`
	Path     string `json:"path,omitempty" yaml:"path,omitempty"`
}

// RunReport is everything a multi-query run produced.
type RunReport struct {
	RunID    string         `json:"run_id" yaml:"run_id"`
	Started  time.Time      `json:"started" yaml:"started"`
	Outcomes []QueryOutcome `json:"outcomes" yaml:"outcomes"`
	Exports  []ExportStatus `json:"exports" yaml:"exports"`
}

// Results returns the WorkflowResults of the successful outcomes, in order.
func (r RunReport) Results() []WorkflowResult {
	var out []WorkflowResult
	for _, o := range r.Outcomes {
		if o.Status == StatusSuccess && o.Result != nil {
			out = append(out, *o.Result)
		}
	}
	return out
}

// Failed returns the number of queries that ended in error.
func (r RunReport) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == StatusError {
			n++
		}
	}
	return n
}

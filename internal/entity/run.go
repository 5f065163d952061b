package entity

import (
	"fmt"
	"time"
)

// Stage is the pipeline step of a direction task.
type Stage string

const (
	StageRetrieve Stage = "retrieve"
	StageGenerate Stage = "generate"
	StageExtract  Stage = "extract"
)

type FailurePolicy string

const (
	// FailurePolicySkip keeps the rows of healthy directions and reports failed ones.
	FailurePolicySkip FailurePolicy = "skip"
	// FailurePolicyAbort cancels the whole run on the first failed direction.
	FailurePolicyAbort FailurePolicy = "abort"
)

func (p FailurePolicy) IsValid() bool {
	return p == FailurePolicySkip || p == FailurePolicyAbort
}

// TagFailure describes a direction that produced no rows.
type TagFailure struct {
	Direction string `json:"direction"`
	Stage     Stage  `json:"stage"`
	Error     string `json:"error"`
	Err       error  `json:"-"`
}

func NewTagFailure(direction string, stage Stage, err error) TagFailure {
	return TagFailure{
		Direction: direction,
		Stage:     stage,
		Error:     err.Error(),
		Err:       err,
	}
}

func (f TagFailure) String() string {
	return fmt.Sprintf("%s/%s: %s", f.Direction, f.Stage, f.Error)
}

type RunResult struct {
	RunID    string           `json:"run_id"`
	Records  []Recommendation `json:"records"`
	Failures []TagFailure     `json:"failures"`
	Duration time.Duration    `json:"-"`
}

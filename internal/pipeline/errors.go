package pipeline

import (
	"errors"
	"fmt"
)

// Stage identifies one step of the fixed pipeline.
type Stage string

const (
	StageClassify         Stage = "classify"
	StageValidateContext  Stage = "validate_context"
	StageGenerateReply    Stage = "generate_reply"
	StageFormatReply      Stage = "format_reply"
	StageGradeConsistency Stage = "grade_consistency"
)

// ParseError reports structured model output that could not be decoded or
// violated its enum contract. It is fatal for the run: the owning stage's
// output is discarded and nothing downstream executes.
type ParseError struct {
	Stage Stage
	Raw   string // offending model output
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: malformed model output: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s: malformed model output", e.Stage)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsParseError reports whether err is a ParseError, optionally narrowed to
// one stage. Passing an empty stage matches any.
func IsParseError(err error, stage Stage) bool {
	var pe *ParseError
	if !errors.As(err, &pe) {
		return false
	}
	return stage == "" || pe.Stage == stage
}

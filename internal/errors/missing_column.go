package errors

import "fmt"

// ColumnStage tells whether a missing column was an input or a derived one
type ColumnStage string

const (
	StageInput   ColumnStage = "input"
	StageDerived ColumnStage = "derived"
)

// MissingColumnError reports a required column that is absent. It always
// fails the evaluation cycle; callers must surface it instead of
// substituting a default.
type MissingColumnError struct {
	Column string
	Stage  ColumnStage
}

// NewMissingColumnError creates a MissingColumnError
func NewMissingColumnError(column string, stage ColumnStage) *MissingColumnError {
	return &MissingColumnError{Column: column, Stage: stage}
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing %s column %q", e.Stage, e.Column)
}

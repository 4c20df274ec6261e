package flowchart

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrWorkflowNotFound is returned when no definition exists for a workflow name
	ErrWorkflowNotFound = errors.New("workflow not found")
	// ErrInvalidWorkflow is matched by every ConfigError
	ErrInvalidWorkflow = errors.New("invalid workflow")
	// ErrStepLimitExceeded reports a run that never reached an end node
	ErrStepLimitExceeded = errors.New("workflow exceeded maximum steps")
)

// ConfigError lists every problem found in a workflow definition
type ConfigError struct {
	Workflow string
	Problems []string
}

func (e *ConfigError) Error() string {
	name := e.Workflow
	if name == "" {
		name = "<unnamed>"
	}
	return fmt.Sprintf("invalid workflow %s: %s", name, strings.Join(e.Problems, "; "))
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidWorkflow
}

// ErrorKind classifies why a run failed
type ErrorKind string

const (
	ErrorKindNone      ErrorKind = ""
	ErrorKindCondition ErrorKind = "condition"
	ErrorKindStepLimit ErrorKind = "step_limit"
	ErrorKindNode      ErrorKind = "node"
	ErrorKindCanceled  ErrorKind = "canceled"
	ErrorKindInternal  ErrorKind = "internal"
)

package config

import (
	"fmt"
	"time"

	"github.com/zclconf/go-cty/cty"
)

// Model is the unified, format-agnostic representation of one or more task
// files.
type Model struct {
	// Default is the target used when none is given on the command line.
	Default   string
	Variables map[string]cty.Value
	Setup     []*ActionSpec
	Teardown  []*ActionSpec
	Tasks     []*TaskSpec
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{Variables: make(map[string]cty.Value)}
}

// TaskSpec is the format-agnostic representation of a declared task.
type TaskSpec struct {
	Name            string
	Description     string
	DependsOn       []string
	ContinueOnError bool
	Criteria        []*CriterionSpec
	Actions         []*ActionSpec
	OnError         *ErrorSpec
	Finally         []*ActionSpec
	// Source is the file the task was declared in, for error messages.
	Source string
}

// CriterionSpec guards a task with a condition.
type CriterionSpec struct {
	Condition Condition
	Message   string
}

// ActionSpec is one declared action. Which fields matter depends on Kind.
type ActionSpec struct {
	Kind    string
	Command []string
	Dir     string
	Env     map[string]string
	Message string
	Name    string
	Value   string
	URL     string
	Method  string
	// ExpectStatus is the exact HTTP status an http action requires; zero
	// accepts any status below 400.
	ExpectStatus int
	Retry        *RetrySpec
}

// RetrySpec configures user-authored retries of an action.
type RetrySpec struct {
	Attempts uint64
	Initial  time.Duration
	Max      time.Duration
}

// ErrorSpec describes what a task does when one of its actions fails.
type ErrorSpec struct {
	Actions []*ActionSpec
	// Rethrow propagates the original error after the actions ran.
	Rethrow bool
}

// Merge appends other into m. Variables and the default target must not be
// declared twice.
func (m *Model) Merge(other *Model) error {
	if other == nil {
		return nil
	}
	if other.Default != "" {
		if m.Default != "" && m.Default != other.Default {
			return fmt.Errorf("default target declared twice: %q and %q", m.Default, other.Default)
		}
		m.Default = other.Default
	}
	if m.Variables == nil {
		m.Variables = make(map[string]cty.Value)
	}
	for name, v := range other.Variables {
		if _, exists := m.Variables[name]; exists {
			return fmt.Errorf("variable %q declared twice", name)
		}
		m.Variables[name] = v
	}
	m.Setup = append(m.Setup, other.Setup...)
	m.Teardown = append(m.Teardown, other.Teardown...)
	m.Tasks = append(m.Tasks, other.Tasks...)
	return nil
}

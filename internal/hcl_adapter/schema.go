package hcl_adapter

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Default   string      `hcl:"default,optional"`
	Variables []*Variable `hcl:"variable,block"`
	Setup     []*Hook     `hcl:"setup,block"`
	Teardown  []*Hook     `hcl:"teardown,block"`
	Tasks     []*Task     `hcl:"task,block"`
}

// Variable is a `variable "name" {}` block.
type Variable struct {
	Name        string    `hcl:"name,label"`
	Default     cty.Value `hcl:"default,optional"`
	Description string    `hcl:"description,optional"`
}

// Hook is any block that only holds a list of actions: setup, teardown and
// finally.
type Hook struct {
	Actions []*Action `hcl:"action,block"`
}

// Task is a `task "name" {}` block.
type Task struct {
	Name            string         `hcl:"name,label"`
	Description     string         `hcl:"description,optional"`
	DependsOn       hcl.Expression `hcl:"depends_on,optional"`
	ContinueOnError bool           `hcl:"continue_on_error,optional"`
	Criteria        []*Criteria    `hcl:"criteria,block"`
	Actions         []*Action      `hcl:"action,block"`
	OnError         *OnError       `hcl:"on_error,block"`
	Finally         *Hook          `hcl:"finally,block"`
}

// Criteria is a `criteria {}` block. `when` stays unevaluated until the task
// is reached.
type Criteria struct {
	When    hcl.Expression `hcl:"when"`
	Message string         `hcl:"message,optional"`
}

// Action is an `action "kind" {}` block. Its body is decoded in a second
// pass, once variables are known.
type Action struct {
	Kind string   `hcl:"kind,label"`
	Body hcl.Body `hcl:",remain"`
}

// OnError is an `on_error {}` block.
type OnError struct {
	Rethrow bool      `hcl:"rethrow,optional"`
	Actions []*Action `hcl:"action,block"`
}

// ActionArgs holds every attribute an action kind may use.
type ActionArgs struct {
	Command []string          `hcl:"command,optional"`
	Dir     string            `hcl:"dir,optional"`
	Env     map[string]string `hcl:"env,optional"`
	Message string            `hcl:"message,optional"`
	Name    string            `hcl:"name,optional"`
	Value   string            `hcl:"value,optional"`
	URL     string            `hcl:"url,optional"`
	Method  string            `hcl:"method,optional"`
	Expect  int               `hcl:"expect_status,optional"`
	Retry   *Retry            `hcl:"retry,block"`
}

// Retry is a `retry {}` block inside an action.
type Retry struct {
	Attempts int    `hcl:"attempts"`
	Initial  string `hcl:"initial,optional"`
	Max      string `hcl:"max,optional"`
}

package yaml_adapter

import "gopkg.in/yaml.v3"

// fileRoot is the top-level document of a YAML task file.
type fileRoot struct {
	Default   string               `yaml:"default"`
	Variables map[string]*Variable `yaml:"variables"`
	Setup     []*Action            `yaml:"setup"`
	Teardown  []*Action            `yaml:"teardown"`
	Tasks     []*Task              `yaml:"tasks"`
}

// Variable is one entry of the `variables` mapping. Default must be a scalar
// when present.
type Variable struct {
	Default     yaml.Node `yaml:"default"`
	Description string    `yaml:"description"`
}

// Task is one entry of the `tasks` list.
type Task struct {
	Name            string      `yaml:"name"`
	Description     string      `yaml:"description"`
	DependsOn       []string    `yaml:"depends_on"`
	ContinueOnError bool        `yaml:"continue_on_error"`
	Criteria        []*Criteria `yaml:"criteria"`
	Actions         []*Action   `yaml:"actions"`
	OnError         *OnError    `yaml:"on_error"`
	Finally         []*Action   `yaml:"finally"`
}

// Criteria holds an HCL expression as a string.
type Criteria struct {
	When    string `yaml:"when"`
	Message string `yaml:"message"`
}

// OnError mirrors the HCL on_error block.
type OnError struct {
	Rethrow bool      `yaml:"rethrow"`
	Actions []*Action `yaml:"actions"`
}

// Action carries every attribute an action kind may use. String attributes
// may contain ${...} templates.
type Action struct {
	Kind    string            `yaml:"kind"`
	Command []string          `yaml:"command"`
	Dir     string            `yaml:"dir"`
	Env     map[string]string `yaml:"env"`
	Message string            `yaml:"message"`
	Name    string            `yaml:"name"`
	Value   string            `yaml:"value"`
	URL     string            `yaml:"url"`
	Method  string            `yaml:"method"`
	Expect  int               `yaml:"expect_status"`
	Retry   *Retry            `yaml:"retry"`
}

// Retry mirrors the HCL retry block.
type Retry struct {
	Attempts int    `yaml:"attempts"`
	Initial  string `yaml:"initial"`
	Max      string `yaml:"max"`
}

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestModelMerge(t *testing.T) {
	t.Run("appends tasks and hooks", func(t *testing.T) {
		m := NewModel()
		m.Tasks = []*TaskSpec{{Name: "A"}}
		other := &Model{
			Default:   "B",
			Variables: map[string]cty.Value{"x": cty.StringVal("1")},
			Setup:     []*ActionSpec{{Kind: "echo"}},
			Teardown:  []*ActionSpec{{Kind: "echo"}},
			Tasks:     []*TaskSpec{{Name: "B"}},
		}

		require.NoError(t, m.Merge(other))
		assert.Equal(t, "B", m.Default)
		assert.Len(t, m.Tasks, 2)
		assert.Len(t, m.Setup, 1)
		assert.Len(t, m.Teardown, 1)
		assert.Equal(t, cty.StringVal("1"), m.Variables["x"])
	})

	t.Run("nil is a no-op", func(t *testing.T) {
		m := NewModel()
		assert.NoError(t, m.Merge(nil))
	})

	t.Run("duplicate variable fails", func(t *testing.T) {
		m := &Model{Variables: map[string]cty.Value{"x": cty.True}}
		err := m.Merge(&Model{Variables: map[string]cty.Value{"x": cty.False}})
		assert.ErrorContains(t, err, `variable "x" declared twice`)
	})

	t.Run("conflicting default fails", func(t *testing.T) {
		m := &Model{Default: "A"}
		assert.NoError(t, m.Merge(&Model{Default: "A"}))
		assert.ErrorContains(t, m.Merge(&Model{Default: "B"}), "default target declared twice")
	})
}

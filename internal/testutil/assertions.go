package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// AssertTaskRan checks the log output of a HarnessResult for the engine's
// "Executing task." line of the named task.
func AssertTaskRan(t *testing.T, result *HarnessResult, taskName string) bool {
	t.Helper()
	return assert.True(t, taskLogged(result.LogOutput, taskName),
		"expected task '%s' to have been executed", taskName)
}

// AssertTaskNotRan is the inverse of AssertTaskRan.
func AssertTaskNotRan(t *testing.T, result *HarnessResult, taskName string) bool {
	t.Helper()
	return assert.False(t, taskLogged(result.LogOutput, taskName),
		"expected task '%s' not to have been executed", taskName)
}

func taskLogged(logs, taskName string) bool {
	attr := fmt.Sprintf(" task=%s", taskName)
	for _, line := range strings.Split(logs, "\n") {
		if strings.Contains(line, `msg="Executing task."`) && (strings.HasSuffix(line, attr) || strings.Contains(line, attr+" ")) {
			return true
		}
	}
	return false
}

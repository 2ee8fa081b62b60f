package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertTaskRan checks the log output within a HarnessResult to confirm that
// a task finished successfully.
func AssertTaskRan(t *testing.T, result *HarnessResult, name string) {
	t.Helper()

	expected := fmt.Sprintf("Finished '%s' after", name)
	require.True(t,
		strings.Contains(result.Output, expected),
		"expected log output for task '%s' was not found in logs", name,
	)
}

// AssertTaskFailed checks the log output for the error event of a task.
func AssertTaskFailed(t *testing.T, result *HarnessResult, name string) {
	t.Helper()

	expected := fmt.Sprintf("'%s' errored after", name)
	require.True(t,
		strings.Contains(result.Output, expected),
		"expected error log for task '%s' was not found in logs", name,
	)
}

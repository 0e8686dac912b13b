package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/markwellsdev/catenary/internal/locks"
	"github.com/markwellsdev/catenary/internal/runtool"
)

func TestArgString_DefaultsWhenMissingOrWrongType(t *testing.T) {
	a := map[string]any{"name": "foo", "count": 3}
	assert.Equal(t, "foo", argString(a, "name", "fallback"))
	assert.Equal(t, "fallback", argString(a, "missing", "fallback"))
	assert.Equal(t, "fallback", argString(a, "count", "fallback"))
}

func TestArgUint32_AcceptsFloat64AndInt(t *testing.T) {
	a := map[string]any{"line": float64(7), "character": 3}
	assert.Equal(t, uint32(7), argUint32(a, "line"))
	assert.Equal(t, uint32(3), argUint32(a, "character"))
	assert.Equal(t, uint32(0), argUint32(a, "missing"))
}

func TestArgBool_DefaultsWhenMissingOrWrongType(t *testing.T) {
	a := map[string]any{"flag": true, "notbool": "true"}
	assert.True(t, argBool(a, "flag", false))
	assert.False(t, argBool(a, "missing", false))
	assert.True(t, argBool(a, "missing", true))
	assert.False(t, argBool(a, "notbool", false))
}

func TestArgInt_AcceptsFloatIntAndNumericString(t *testing.T) {
	a := map[string]any{"a": float64(120), "b": 5, "c": "42", "d": "not a number"}
	assert.Equal(t, 120, argInt(a, "a", 0))
	assert.Equal(t, 5, argInt(a, "b", 0))
	assert.Equal(t, 42, argInt(a, "c", 0))
	assert.Equal(t, 99, argInt(a, "d", 99), "unparseable string falls back to default")
	assert.Equal(t, 99, argInt(a, "missing", 99))
}

func TestPositionInput_BuildsFromArgs(t *testing.T) {
	a := map[string]any{"file_path": "/a/b.go", "line": float64(4), "character": float64(2)}
	p := positionInput(a)
	assert.Equal(t, "/a/b.go", p.FilePath)
	assert.Equal(t, uint32(4), p.Line)
	assert.Equal(t, uint32(2), p.Character)
}

func TestDescribeLockOutcome(t *testing.T) {
	assert.Equal(t, "Lock acquired", describeLockOutcome(locks.Acquired))
	assert.Equal(t, "Lock refreshed (already held by this owner)", describeLockOutcome(locks.AlreadyHeldBySelf))
	assert.Equal(t, "Lock acquired (previous holder's lock was stale)", describeLockOutcome(locks.ReclaimedStale))
	assert.Equal(t, "Lock is held by another owner", describeLockOutcome(locks.HeldByOther))
}

func TestDescribeRunOutput_IncludesTimeoutAndStreams(t *testing.T) {
	out := describeRunOutput(runtool.RunOutput{TimedOut: true, ExitCode: -1, Stdout: "hi", Stderr: "oops"})
	assert.Contains(t, out, "TIMED OUT")
	assert.Contains(t, out, "Exit code: -1")
	assert.Contains(t, out, "stdout:\nhi")
	assert.Contains(t, out, "stderr:\noops")
}

func TestDescribeRunOutput_OmitsEmptyStreams(t *testing.T) {
	out := describeRunOutput(runtool.RunOutput{ExitCode: 0})
	assert.NotContains(t, out, "stdout:")
	assert.NotContains(t, out, "stderr:")
	assert.NotContains(t, out, "TIMED OUT")
}

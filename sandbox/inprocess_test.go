package sandbox

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestInProcess(t *testing.T) *InProcessSandbox {
	t.Helper()
	return NewInProcessSandbox(zaptest.NewLogger(t), 8192)
}

func TestInProcessExecuteSuccess(t *testing.T) {
	sb := newTestInProcess(t)

	result, err := sb.Execute(context.Background(), ExecuteRequest{
		Code:       "console.log('hi'); 2+2;",
		TimeoutSec: 10,
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Contains(t, result.Output, "hi")
	assert.Empty(t, result.Error)
	assert.Equal(t, 0, result.ExitCode)
	assert.GreaterOrEqual(t, result.ElapsedSeconds, 0.0)
}

func TestInProcessExecuteThrownError(t *testing.T) {
	sb := newTestInProcess(t)

	result, err := sb.Execute(context.Background(), ExecuteRequest{
		Code:       "throw new Error('x')",
		TimeoutSec: 10,
	})

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "x")
	assert.Equal(t, 1, result.ExitCode)
}

func TestInProcessExecuteTimeout(t *testing.T) {
	sb := newTestInProcess(t)

	result, err := sb.Execute(context.Background(), ExecuteRequest{
		Code:       "await sleep(5000)",
		TimeoutSec: 1,
	})

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "timeout")
	assert.Equal(t, 1, result.ExitCode)
	assert.InDelta(t, 1.0, result.ElapsedSeconds, 0.5)
}

func TestInProcessOutputBeforeTimeout(t *testing.T) {
	sb := newTestInProcess(t)

	result, err := sb.Execute(context.Background(), ExecuteRequest{
		Code:       "console.log('before'); await sleep(5000); console.log('after');",
		TimeoutSec: 1,
	})

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Output, "before")
	assert.NotContains(t, result.Output, "after")
}

func TestInProcessSyntaxError(t *testing.T) {
	sb := newTestInProcess(t)

	result, err := sb.Execute(context.Background(), ExecuteRequest{
		Code:       "let = ;",
		TimeoutSec: 10,
	})

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
	assert.Equal(t, 1, result.ExitCode)
}

func TestInProcessPendingPromise(t *testing.T) {
	sb := newTestInProcess(t)

	result, err := sb.Execute(context.Background(), ExecuteRequest{
		Code:       "await new Promise(() => {})",
		TimeoutSec: 10,
	})

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "did not run to completion")
}

func TestInProcessConsoleChannels(t *testing.T) {
	sb := newTestInProcess(t)

	result, err := sb.Execute(context.Background(), ExecuteRequest{
		Code:       "console.info('plain'); console.warn('careful'); console.error('boom'); console.debug('detail');",
		TimeoutSec: 10,
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Contains(t, result.Output, "plain\n")
	assert.Contains(t, result.Output, "[warn] careful\n")
	assert.Contains(t, result.Output, "[error] boom\n")
	assert.Contains(t, result.Output, "[debug] detail\n")
}

func TestInProcessConsoleSerializesValues(t *testing.T) {
	sb := newTestInProcess(t)

	result, err := sb.Execute(context.Background(), ExecuteRequest{
		Code:       "console.log({a: 1}, [1, 2], 'str', 42)",
		TimeoutSec: 10,
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Contains(t, result.Output, `{"a":1}`)
	assert.Contains(t, result.Output, "[1,2]")
	assert.Contains(t, result.Output, "str")
	assert.Contains(t, result.Output, "42")
}

func TestInProcessRestrictedScope(t *testing.T) {
	sb := newTestInProcess(t)

	result, err := sb.Execute(context.Background(), ExecuteRequest{
		Code:       "console.log(typeof fetch, typeof require, typeof process)",
		TimeoutSec: 10,
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Contains(t, result.Output, "undefined undefined undefined")
}

func TestInProcessOutputTruncation(t *testing.T) {
	sb := NewInProcessSandbox(zaptest.NewLogger(t), 64)

	result, err := sb.Execute(context.Background(), ExecuteRequest{
		Code:       "for (let i = 0; i < 100; i++) { console.log('line', i) }",
		TimeoutSec: 10,
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Contains(t, result.Output, "... (output truncated)")
	assert.Less(t, len(result.Output), 200)
}

func TestInProcessIndependentExecutions(t *testing.T) {
	sb := newTestInProcess(t)

	first, err := sb.Execute(context.Background(), ExecuteRequest{
		Code:       "globalValue = 'leaked'; console.log('first')",
		TimeoutSec: 10,
	})
	require.NoError(t, err)
	require.True(t, first.Success)

	// A fresh runtime per call: state never survives between executions
	second, err := sb.Execute(context.Background(), ExecuteRequest{
		Code:       "console.log(typeof globalValue)",
		TimeoutSec: 10,
	})
	require.NoError(t, err)
	require.True(t, second.Success)
	assert.Contains(t, second.Output, "undefined")
}

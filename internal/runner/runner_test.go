// Copyright (c) 2025 SRODBPatch
// Licensed under the MIT License. See LICENSE file in the project root for details.

package runner

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"srodbpatch/cli/internal/sqlexec"
)

func collect(r *Runner) []Event {
	var out []Event
	for ev := range r.Events() {
		out = append(out, ev)
	}
	return out
}

func TestRunnerDeliversProgressThenTerminal(t *testing.T) {
	r := New(nil)
	assert.Equal(t, Idle, r.State())

	err := r.Start(context.Background(), func(_ context.Context, progress sqlexec.Progress) sqlexec.Result {
		progress("Checking for backup...")
		progress("Executing statement 1/1...")
		return sqlexec.Result{Success: true, Message: "done"}
	})
	require.NoError(t, err)

	events := collect(r)
	require.Len(t, events, 3)
	assert.Equal(t, Event{Type: EventProgress, Message: "Checking for backup..."}, events[0])
	assert.Equal(t, Event{Type: EventProgress, Message: "Executing statement 1/1..."}, events[1])
	assert.Equal(t, EventSucceeded, events[2].Type)
	assert.True(t, events[2].Terminal())
	require.NotNil(t, events[2].Result)
	assert.Equal(t, "done", events[2].Result.Message)

	assert.True(t, r.Wait().Success)
	assert.Equal(t, Succeeded, r.State())
}

func TestRunnerFailedResult(t *testing.T) {
	r := New(nil)
	require.NoError(t, r.Start(context.Background(), func(context.Context, sqlexec.Progress) sqlexec.Result {
		return sqlexec.Result{Message: "Restore failed: No backup found for _Char!"}
	}))

	events := collect(r)
	require.Len(t, events, 1)
	assert.Equal(t, EventFailed, events[0].Type)
	assert.Equal(t, "Restore failed: No backup found for _Char!", events[0].Message)
	assert.Equal(t, Failed, r.State())
}

func TestRunnerRecoversPanic(t *testing.T) {
	r := New(nil)
	require.NoError(t, r.Start(context.Background(), func(_ context.Context, progress sqlexec.Progress) sqlexec.Result {
		progress("Creating backup of _Char...")
		panic("driver exploded")
	}))

	events := collect(r)
	require.Len(t, events, 2)
	assert.Equal(t, EventProgress, events[0].Type)
	assert.Equal(t, EventFailed, events[1].Type)

	res := r.Wait()
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "driver exploded")
	assert.Error(t, res.Err)
	assert.Equal(t, Failed, r.State())
}

func TestRunnerCannotRestart(t *testing.T) {
	r := New(nil)
	op := func(context.Context, sqlexec.Progress) sqlexec.Result { return sqlexec.Result{Success: true} }

	require.NoError(t, r.Start(context.Background(), op))
	assert.ErrorIs(t, r.Start(context.Background(), op), ErrAlreadyStarted)

	collect(r)
	r.Wait()
	assert.ErrorIs(t, r.Start(context.Background(), op), ErrAlreadyStarted)
}

func TestRunnerStateWhileRunning(t *testing.T) {
	r := New(nil)
	release := make(chan struct{})
	require.NoError(t, r.Start(context.Background(), func(context.Context, sqlexec.Progress) sqlexec.Result {
		<-release
		return sqlexec.Result{Success: true}
	}))

	assert.Equal(t, Running, r.State())
	close(release)
	collect(r)
	assert.Equal(t, Succeeded, r.State())
}

func TestRunnerPassesContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "shard")

	r := New(nil)
	require.NoError(t, r.Start(ctx, func(ctx context.Context, _ sqlexec.Progress) sqlexec.Result {
		v, _ := ctx.Value(key{}).(string)
		return sqlexec.Result{Success: v == "shard"}
	}))
	collect(r)
	assert.True(t, r.Wait().Success)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "State(9)", State(9).String())
}

func TestRunnerWaitWithoutReadingEvents(t *testing.T) {
	const n = 500
	r := New(nil)
	require.NoError(t, r.Start(context.Background(), func(_ context.Context, progress sqlexec.Progress) sqlexec.Result {
		for i := 1; i <= n; i++ {
			progress(fmt.Sprintf("Executing statement %d/%d...", i, n))
		}
		return sqlexec.Result{Success: true, Statements: n}
	}))

	waited := make(chan sqlexec.Result, 1)
	go func() { waited <- r.Wait() }()

	select {
	case res := <-waited:
		assert.Equal(t, n, res.Statements)
	case <-time.After(5 * time.Second):
		t.Fatal("Wait blocked while events were unread")
	}

	events := collect(r)
	require.Len(t, events, n+1)
	for i := 0; i < n; i++ {
		assert.Equal(t, fmt.Sprintf("Executing statement %d/%d...", i+1, n), events[i].Message)
	}
	assert.Equal(t, EventSucceeded, events[n].Type)
}

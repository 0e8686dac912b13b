package lsp

import (
	"context"
	"time"
)

// settleDuration is how long diagnostics activity must stay quiet before
// phase 2 considers the server settled.
const settleDuration = 2 * time.Second

// pollInterval is how often the wait machine polls the generation counter
// and the activity clock.
const pollInterval = 100 * time.Millisecond

// postWarmupGrace is the fallback warmup-style grace granted to a
// never-published server once the post-spawn warmup window has elapsed.
const postWarmupGrace = 5 * time.Second

// DiagnosticsWaitResult is the outcome of WaitForDiagnosticsUpdate.
type DiagnosticsWaitResult int

const (
	// DiagnosticsUpdated means fresh diagnostics arrived and the server has
	// settled (or the warmup grace for a never-publishing server elapsed).
	DiagnosticsUpdated DiagnosticsWaitResult = iota
	// DiagnosticsInactive means the server went completely silent for the
	// full inactivity timeout with no advance; the caller may nudge
	// (re-send didSave) and retry.
	DiagnosticsInactive
	// DiagnosticsServerDied means the server's liveness dropped mid-wait.
	DiagnosticsServerDied
)

func (r DiagnosticsWaitResult) String() string {
	switch r {
	case DiagnosticsUpdated:
		return "updated"
	case DiagnosticsInactive:
		return "inactive"
	default:
		return "server died"
	}
}

// WaitForDiagnosticsUpdate blocks until fresh diagnostics have been
// published for uri since baseline, or until inactivityTimeout elapses
// with no server activity at all. It runs up to three phases:
//
//  0. Warmup grace: if this server has never published diagnostics at all,
//     grant it the remaining warmup window (or a 5s fallback past warmup)
//     to cover servers that only publish after the first file is opened.
//  1. Generation-advance: poll the per-URI publish counter until it moves
//     past baseline, or until inactivityTimeout passes with the server
//     silent throughout.
//  2. Activity-settle: once the generation has advanced, keep waiting
//     while the server keeps publishing/progressing, until settleDuration
//     passes with no further activity — so a server that republishes
//     diagnostics in quick bursts is allowed to finish before the caller
//     reads a stale snapshot.
//
// The phase-2 outer deadline is inactivityTimeout minus whatever was spent
// in phase 1, fixed rather than independently configurable (SPEC_FULL.md
// §10).
func (c *Client) WaitForDiagnosticsUpdate(ctx context.Context, uri string, baseline uint64, inactivityTimeout time.Duration) (DiagnosticsWaitResult, error) {
	start := time.Now()

	if !c.HasPublishedDiagnostics() {
		grace := postWarmupGrace
		if c.IsWarmingUp() {
			grace = WarmupPeriod - time.Since(c.spawnedAt)
			if grace < 0 {
				grace = 0
			}
		}
		if grace == 0 {
			return DiagnosticsUpdated, nil
		}
		result, err, advanced := c.waitForFirstPublish(ctx, uri, baseline, grace)
		if !advanced {
			return result, err
		}
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	// Phase 1: wait for the generation counter to move.
	lastActive := start
	for {
		if c.DiagnosticsGeneration(uri) > baseline {
			break
		}
		if !c.IsAlive() {
			return DiagnosticsServerDied, nil
		}
		if c.progress.IsBusy() {
			lastActive = time.Now()
		} else if at := c.lastActivityAt(); at.After(lastActive) {
			lastActive = at
		}
		if time.Since(lastActive) >= inactivityTimeout {
			return DiagnosticsInactive, nil
		}
		select {
		case <-ctx.Done():
			return DiagnosticsInactive, ctx.Err()
		case <-ticker.C:
		}
	}

	phase1Elapsed := time.Since(start)
	remaining := inactivityTimeout - phase1Elapsed
	if remaining < 0 {
		remaining = 0
	}
	if c.waitForActivitySettle(ctx, remaining) {
		return DiagnosticsUpdated, nil
	}
	return DiagnosticsServerDied, nil
}

// waitForFirstPublish polls for uri's generation to advance past baseline
// for a never-published server, bounded by grace. It reports advanced=true
// when the generation moved and the caller should fall through to the
// normal phase-1/phase-2 logic; otherwise result/err is the final outcome.
func (c *Client) waitForFirstPublish(ctx context.Context, uri string, baseline uint64, grace time.Duration) (result DiagnosticsWaitResult, err error, advanced bool) {
	deadline := time.Now().Add(grace)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		if c.DiagnosticsGeneration(uri) > baseline {
			return 0, nil, true
		}
		if !c.IsAlive() {
			return DiagnosticsServerDied, nil, false
		}
		if time.Now().After(deadline) {
			return DiagnosticsUpdated, nil, false
		}
		select {
		case <-ctx.Done():
			return DiagnosticsUpdated, ctx.Err(), false
		case <-ticker.C:
		}
	}
}

// waitForActivitySettle blocks until settleDuration passes with no inbound
// server activity and no active progress, or outerDeadline elapses first.
// Returns false if the server's liveness drops while waiting.
func (c *Client) waitForActivitySettle(ctx context.Context, outerDeadline time.Duration) bool {
	start := time.Now()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		quiet := time.Since(c.lastActivityAt())
		if quiet >= settleDuration && !c.progress.IsBusy() {
			return true
		}
		if !c.IsAlive() {
			return false
		}
		if time.Since(start) >= outerDeadline {
			return true
		}
		select {
		case <-ctx.Done():
			return true
		case <-ticker.C:
		}
	}
}

// WaitReady blocks until the server reports StateReady or StateDead, or
// until ctx is cancelled.
func (c *Client) WaitReady(ctx context.Context) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		switch c.ServerState() {
		case StateReady, StateDead:
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// WaitForAnalysis blocks until the server has been quiet (no inbound
// activity and no active progress) for settleDuration, or until timeout
// elapses. Nothing in this module calls it.
func (c *Client) WaitForAnalysis(ctx context.Context, timeout time.Duration) {
	c.waitForActivitySettle(ctx, timeout)
}

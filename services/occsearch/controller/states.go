// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package controller

// RunState represents a state in the search run state machine.
//
// Valid state transitions are enforced by the state machine. Invalid
// transitions return ErrInvalidTransition.
type RunState string

const (
	// StateInit is the initial state before exploration has run.
	StateInit RunState = "INIT"

	// StateExplorationDone indicates the seed pool has been populated.
	StateExplorationDone RunState = "EXPLORATION_DONE"

	// StateBatchRunning indicates a constrained batch has been submitted
	// and its jobs are in flight.
	StateBatchRunning RunState = "BATCH_RUNNING"

	// StateBatchDone indicates every job of the current batch finished.
	StateBatchDone RunState = "BATCH_DONE"

	// StateTerminatedBudget is the terminal state for a run that spent its
	// full evaluation budget.
	StateTerminatedBudget RunState = "TERMINATED_BUDGET"

	// StateTerminatedAllFailed is the terminal state for a run aborted
	// because a whole generation failed.
	StateTerminatedAllFailed RunState = "TERMINATED_ALL_FAILED"
)

// String returns the string representation of the state.
func (s RunState) String() string {
	return string(s)
}

// IsTerminal returns true if no further transition leaves the state.
func (s RunState) IsTerminal() bool {
	return s == StateTerminatedBudget || s == StateTerminatedAllFailed
}

// AllStates returns all valid run states.
func AllStates() []RunState {
	return []RunState{
		StateInit,
		StateExplorationDone,
		StateBatchRunning,
		StateBatchDone,
		StateTerminatedBudget,
		StateTerminatedAllFailed,
	}
}

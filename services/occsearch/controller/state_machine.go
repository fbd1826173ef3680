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

import (
	"fmt"
	"sync"
)

// StateMachine manages valid state transitions for a search run.
//
// The state machine enforces the following transition graph:
//
//	INIT → EXPLORATION_DONE              : Exploration seeded the pool
//	EXPLORATION_DONE → BATCH_RUNNING     : First constrained batch submitted
//	BATCH_RUNNING → BATCH_DONE           : All jobs in the batch finished
//	BATCH_DONE → BATCH_RUNNING           : Budget remains, next batch submitted
//	BATCH_DONE → TERMINATED_BUDGET       : Evaluation budget exhausted
//	BATCH_DONE → TERMINATED_ALL_FAILED   : Whole generation failed
//
// Thread Safety:
//
//	StateMachine is safe for concurrent use.
type StateMachine struct {
	mu sync.RWMutex

	// transitions maps (from, to) pairs that are valid.
	transitions map[RunState]map[RunState]bool
}

// NewStateMachine creates a new state machine with all valid transitions.
//
// Outputs:
//
//	*StateMachine - Configured state machine
func NewStateMachine() *StateMachine {
	sm := &StateMachine{
		transitions: make(map[RunState]map[RunState]bool),
	}

	// Initialize all states with empty transition maps
	for _, state := range AllStates() {
		sm.transitions[state] = make(map[RunState]bool)
	}

	// Define valid transitions
	sm.addTransition(StateInit, StateExplorationDone)

	sm.addTransition(StateExplorationDone, StateBatchRunning)

	sm.addTransition(StateBatchRunning, StateBatchDone)

	sm.addTransition(StateBatchDone, StateBatchRunning)
	sm.addTransition(StateBatchDone, StateTerminatedBudget)
	sm.addTransition(StateBatchDone, StateTerminatedAllFailed)

	return sm
}

// addTransition registers a valid transition.
func (sm *StateMachine) addTransition(from, to RunState) {
	sm.transitions[from][to] = true
}

// CanTransition checks if a transition from one state to another is valid.
//
// Inputs:
//
//	from - Current state
//	to - Target state
//
// Outputs:
//
//	bool - True if the transition is valid
//
// Thread Safety: This method is safe for concurrent use.
func (sm *StateMachine) CanTransition(from, to RunState) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if toMap, ok := sm.transitions[from]; ok {
		return toMap[to]
	}
	return false
}

// Transition attempts to move a run from its current state to another.
//
// Description:
//
//	Validates the transition and updates the run state if valid. Returns an
//	error naming both states if the transition is not allowed.
//
// Inputs:
//
//	run - The search state to transition
//	to - Target state
//
// Outputs:
//
//	error - ErrInvalidTransition if transition not allowed
//
// Thread Safety: This method is safe for concurrent use; the run itself is
// owned by a single goroutine.
func (sm *StateMachine) Transition(run *SearchState, to RunState) error {
	from := run.State()

	if !sm.CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	run.setState(to)
	return nil
}

// ValidTransitionsFrom returns all valid transitions from a given state.
//
// Inputs:
//
//	from - The source state
//
// Outputs:
//
//	[]RunState - All valid target states
//
// Thread Safety: This method is safe for concurrent use.
func (sm *StateMachine) ValidTransitionsFrom(from RunState) []RunState {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	var result []RunState
	if toMap, ok := sm.transitions[from]; ok {
		for state, valid := range toMap {
			if valid {
				result = append(result, state)
			}
		}
	}
	return result
}

// TransitionReason provides a human-readable description of a transition.
//
// Inputs:
//
//	from - Source state
//	to - Target state
//
// Outputs:
//
//	string - Description of why this transition occurs
func (sm *StateMachine) TransitionReason(from, to RunState) string {
	key := from.String() + "->" + to.String()

	reasons := map[string]string{
		"INIT->EXPLORATION_DONE":            "Exploration seeded the pool",
		"EXPLORATION_DONE->BATCH_RUNNING":   "First constrained batch submitted",
		"BATCH_RUNNING->BATCH_DONE":         "All jobs in the batch finished",
		"BATCH_DONE->BATCH_RUNNING":         "Budget remains, next batch submitted",
		"BATCH_DONE->TERMINATED_BUDGET":     "Evaluation budget exhausted",
		"BATCH_DONE->TERMINATED_ALL_FAILED": "Every evaluation in the generation failed",
	}

	if reason, ok := reasons[key]; ok {
		return reason
	}
	return "Unknown transition"
}

// DefaultStateMachine is the shared state machine instance.
var DefaultStateMachine = NewStateMachine()

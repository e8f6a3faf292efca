package domain

// RunState is a stage of the deployment pipeline.
type RunState string

const (
	StateStart     RunState = "start"
	StateGasPriced RunState = "gas-priced"
	StateDeploying RunState = "deploying"
	StateLedgered  RunState = "ledgered"
	StateWired     RunState = "wired"
	StateVerified  RunState = "verified"
	StateDone      RunState = "done"
	StateFailed    RunState = "failed"
)

var runTransitions = map[RunState][]RunState{
	StateStart:     {StateGasPriced, StateFailed},
	StateGasPriced: {StateDeploying, StateFailed},
	StateDeploying: {StateLedgered, StateFailed},
	StateLedgered:  {StateVerified, StateFailed},
	// wiring failures are fatal but happen after the ledger was persisted
	// and every contract was submitted for verification
	StateVerified: {StateWired, StateFailed},
	StateWired:    {StateDone},
}

// CanTransition reports whether the pipeline may move from s to next.
func (s RunState) CanTransition(next RunState) bool {
	for _, allowed := range runTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s RunState) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// PointOfNoReturn reports whether every contract of the run is already
// deployed and persisted.
func (s RunState) PointOfNoReturn() bool {
	switch s {
	case StateLedgered, StateVerified, StateWired, StateDone:
		return true
	}
	return false
}

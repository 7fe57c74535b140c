package pipeline

import "github.com/voxpress/voxpress/internal/logging"

// chunkState tracks one chunk through synthesis. Every chunk starts at
// pendingPrimary and ends at done or failed; fallback is entered only for
// provider errors worth retrying elsewhere.
type chunkState int

const (
	statePendingPrimary chunkState = iota
	statePendingFallback
	stateDone
	stateFailed
)

var stateNames = map[chunkState]string{
	statePendingPrimary:  "pending_primary",
	statePendingFallback: "pending_fallback",
	stateDone:            "done",
	stateFailed:          "failed",
}

func (s chunkState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

var stateTransitions = map[chunkState][]chunkState{
	statePendingPrimary:  {stateDone, statePendingFallback, stateFailed},
	statePendingFallback: {stateDone, stateFailed},
}

func canTransition(from, to chunkState) bool {
	for _, next := range stateTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// chunkJob carries per-chunk progress during one generation run.
type chunkJob struct {
	index int
	total int
	state chunkState
	err   error
}

func newChunkJob(index, total int) *chunkJob {
	return &chunkJob{index: index, total: total, state: statePendingPrimary}
}

func (j *chunkJob) to(next chunkState) {
	if !canTransition(j.state, next) {
		logging.Errorf("chunk %d/%d: invalid transition %s -> %s", j.index+1, j.total, j.state, next)
		return
	}
	logging.Debugf("chunk %d/%d: %s -> %s", j.index+1, j.total, j.state, next)
	j.state = next
}

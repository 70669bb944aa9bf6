package runner

// Stage is a state of the pipeline.
type Stage int

const (
	StageAwaitingArgs Stage = iota
	StageCompiling
	StageRunning
	StageDone
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageAwaitingArgs:
		return "awaiting_args"
	case StageCompiling:
		return "compiling"
	case StageRunning:
		return "running"
	case StageDone:
		return "done"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageFailed
}

// next returns the stage that follows s on success.
func (s Stage) next() Stage {
	switch s {
	case StageAwaitingArgs:
		return StageCompiling
	case StageCompiling:
		return StageRunning
	case StageRunning:
		return StageDone
	default:
		return s
	}
}

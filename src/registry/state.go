package registry

import "fmt"

// State is a phase of a publish run.
type State string

const (
	StateIdle              State = "idle"
	StateAuthenticating    State = "authenticating"
	StateRepositoryEnsured State = "repository-ensured"
	StateTagging           State = "tagging"
	StatePushing           State = "pushing"
	StateManifestWritten   State = "manifest-written"
	StateDone              State = "done"
	StateFailed            State = "failed"
)

// Transition is one entry of the publish state trail. Index is the tag
// position for tagging and pushing, -1 otherwise.
type Transition struct {
	State State
	Index int
}

func (t Transition) String() string {
	if t.Index >= 0 {
		return fmt.Sprintf("%s(%d)", t.State, t.Index)
	}
	return string(t.State)
}

type trail []Transition

func (tr *trail) enter(s State) {
	*tr = append(*tr, Transition{State: s, Index: -1})
}

func (tr *trail) enterAt(s State, i int) {
	*tr = append(*tr, Transition{State: s, Index: i})
}

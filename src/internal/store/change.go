package store

// Op classifies a store mutation.
type Op int

const (
	OpAdded Op = iota
	OpReplaced
	OpUpdated
	OpRemoved
)

func (o Op) String() string {
	switch o {
	case OpAdded:
		return "added"
	case OpReplaced:
		return "replaced"
	case OpUpdated:
		return "updated"
	case OpRemoved:
		return "removed"
	}
	return "unknown"
}

// Change describes what a mutation did. Old is the zero value for OpAdded and
// New is the zero value for OpRemoved. Both are copies owned by the caller.
type Change[V any] struct {
	Op  Op
	Old V
	New V
}

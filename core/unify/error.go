package unify

import "fmt"

// ErrorKind tags the variant of failure Unify can report.
type ErrorKind uint8

const (
	// Mismatch: the two values have incompatible shapes (e.g. a FunType
	// against a RecordType), or two rigid heads disagree.
	Mismatch ErrorKind = iota
	// InfiniteSolution: solving a meta would require it to appear in its
	// own solution (occurs check failure).
	InfiniteSolution
	// NonLinearSpine: a meta's spine repeats the same local variable level,
	// so no renaming can be built from it.
	NonLinearSpine
	// EscapingRigidVariable: the right-hand side mentions a local variable
	// not bound by the meta's spine, and pruning could not eliminate it.
	EscapingRigidVariable
	// NonPatternSpine: a meta's spine contains an elimination other than
	// FunApp(LocalVar _), so it is not in the Miller pattern fragment.
	NonPatternSpine
)

func (k ErrorKind) String() string {
	switch k {
	case Mismatch:
		return "mismatched values"
	case InfiniteSolution:
		return "infinite solution (occurs check failed)"
	case NonLinearSpine:
		return "non-linear metavariable spine"
	case EscapingRigidVariable:
		return "escaping rigid variable"
	case NonPatternSpine:
		return "metavariable spine is not a pattern"
	default:
		return "unknown unification error"
	}
}

// Error reports why Unify failed.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func fail(kind ErrorKind, msg string) *Error { return &Error{Kind: kind, Msg: msg} }

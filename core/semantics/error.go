package semantics

// ErrorKind tags the variant of an Error. Every one of these indicates a
// programmer bug in the elaborator (calling semantics with an ill-typed
// term) or an unsolved-metavariable substitution that should never have
// reached evaluation; none of them are meant to surface to a user
// directly. The elaborator does not catch them where they are raised: the
// panic unwinds to the single recover in elab.Elaborate, which reports it
// as a diagnostic with Severity: Bug.
type ErrorKind uint8

const (
	UnboundItemVar ErrorKind = iota
	UnboundLocalVar
	UnboundMetaVar
	InvalidFunctionApp
	InvalidRecordProj
	InvalidConstMatch
	InvalidFormatRepr
	MissingConstDefault
)

func (k ErrorKind) String() string {
	switch k {
	case UnboundItemVar:
		return "unbound item variable"
	case UnboundLocalVar:
		return "unbound local variable"
	case UnboundMetaVar:
		return "unbound metavariable"
	case InvalidFunctionApp:
		return "invalid function application"
	case InvalidRecordProj:
		return "invalid record projection"
	case InvalidConstMatch:
		return "invalid constant match"
	case InvalidFormatRepr:
		return "invalid format repr"
	case MissingConstDefault:
		return "constant match has no matching branch and no default"
	default:
		return "unknown semantics error"
	}
}

// Error is the abortive payload semantics routines panic with when they
// encounter a condition that can only arise from a compiler bug: an
// unbound index/level, or an elimination applied to a value that
// type-checking should have ruled out. Eval is otherwise pure and
// deterministic with respect to its inputs.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Msg
}

func abort(kind ErrorKind, msg string) {
	panic(Error{Kind: kind, Msg: msg})
}

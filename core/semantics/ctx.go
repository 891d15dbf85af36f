// Package semantics implements normalisation-by-evaluation over core
// terms: eval, quote, normalise, the elimination routines (fun_app,
// record_proj, const_match), primitive reduction, metavariable forcing and
// format_repr.
package semantics

import "github.com/mna/calyx/core/value"

// ItemStore resolves an ItemVar's de Bruijn level to the value of the
// top-level item it refers to. Implemented by whatever table the caller
// (typically the elaborator) uses to track items; semantics only needs
// read access.
type ItemStore interface {
	Item(level int) (value.Value, bool)
}

// MetaStore resolves a metavariable's de Bruijn level to its solution, if
// any has been recorded yet. Implemented by core/unify.MetaTable.
type MetaStore interface {
	Meta(level int) (value.Value, bool)
}

// Ctx bundles the two read-only stores eval/quote need for the duration of
// a compilation unit. The varying piece — the local value environment —
// is passed explicitly to each call, per spec.md's eval(env, term)
// contract; Items and Metas stay fixed across an entire elaboration.
type Ctx struct {
	Items ItemStore
	Metas MetaStore
}

// NewCtx bundles the given stores into a Ctx.
func NewCtx(items ItemStore, metas MetaStore) *Ctx {
	return &Ctx{Items: items, Metas: metas}
}

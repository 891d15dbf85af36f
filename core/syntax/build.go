package syntax

import "github.com/mna/calyx/core/token"

// This file collects one constructor per Term variant. Each simply fills in
// the embedded termBase with the given span; kept separate from term.go so
// the type declarations stay readable on their own.

func NewItemVar(s token.Span, level int) *ItemVar { return &ItemVar{termBase{s}, level} }
func NewLocalVar(s token.Span, index int) *LocalVar { return &LocalVar{termBase{s}, index} }
func NewMetaVar(s token.Span, level int) *MetaVar   { return &MetaVar{termBase{s}, level} }

func NewInsertedMeta(s token.Span, level int, infos []LocalInfo) *InsertedMeta {
	return &InsertedMeta{termBase{s}, level, infos}
}

func NewAnn(s token.Span, expr, typ Term) *Ann { return &Ann{termBase{s}, expr, typ} }

func NewLet(s token.Span, name Name, typ, def, body Term) *Let {
	return &Let{termBase{s}, name, typ, def, body}
}

func NewUniverse(s token.Span) *Universe { return &Universe{termBase{s}} }

func NewFunType(s token.Span, paramName Name, paramType, bodyType Term) *FunType {
	return &FunType{termBase{s}, paramName, paramType, bodyType}
}

func NewFunLit(s token.Span, paramName Name, body Term) *FunLit {
	return &FunLit{termBase{s}, paramName, body}
}

func NewFunApp(s token.Span, head, arg Term) *FunApp { return &FunApp{termBase{s}, head, arg} }

func NewRecordType(s token.Span, labels []token.Ident, types []Term) *RecordType {
	return &RecordType{termBase{s}, labels, types}
}

func NewRecordLit(s token.Span, labels []token.Ident, exprs []Term) *RecordLit {
	return &RecordLit{termBase{s}, labels, exprs}
}

func NewRecordProj(s token.Span, head Term, label token.Ident) *RecordProj {
	return &RecordProj{termBase{s}, head, label}
}

func NewArrayLit(s token.Span, exprs []Term) *ArrayLit { return &ArrayLit{termBase{s}, exprs} }

func NewFormatRecord(s token.Span, labels []token.Ident, formats []Term) *FormatRecord {
	return &FormatRecord{termBase{s}, labels, formats}
}

func NewFormatCond(s token.Span, name Name, format, cond Term) *FormatCond {
	return &FormatCond{termBase{s}, name, format, cond}
}

func NewFormatOverlap(s token.Span, labels []token.Ident, formats []Term) *FormatOverlap {
	return &FormatOverlap{termBase{s}, labels, formats}
}

func NewPrim(s token.Span, p Prim) *PrimTerm { return &PrimTerm{termBase{s}, p} }

func NewConstLit(s token.Span, c Const) *ConstLit { return &ConstLit{termBase{s}, c} }

func NewConstMatch(s token.Span, head Term, patterns []Const, branches []Term, def Term) *ConstMatch {
	return &ConstMatch{termBase{s}, head, patterns, branches, def}
}

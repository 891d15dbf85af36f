// Package intern maps source identifier strings to compact 16-bit ids and
// provides scoped bump arenas for core-term slices allocated during a
// compilation unit.
package intern

import (
	"fmt"

	"github.com/dolthub/swiss"

	"github.com/mna/calyx/core/token"
)

// Table interns UTF-8 identifiers to token.Ident values. The zero value is
// not usable; call NewTable.
type Table struct {
	byName *swiss.Map[string, token.Ident]
	names  []string // indexed by Ident
}

// NewTable returns an empty interning table with initial capacity for at
// least size distinct identifiers.
func NewTable(size int) *Table {
	if size < 0 {
		size = 0
	}
	return &Table{
		byName: swiss.NewMap[string, token.Ident](uint32(size)),
		names:  make([]string, 0, size),
	}
}

// Intern returns the id for name, interning it if this is the first
// occurrence. It panics if the table would need to hold more than 65536
// distinct identifiers, which is the limit spec.md places on Ident.
func (t *Table) Intern(name string) token.Ident {
	if id, ok := t.byName.Get(name); ok {
		return id
	}
	if len(t.names) >= 1<<16 {
		panic("intern: identifier table exhausted (more than 65536 distinct identifiers)")
	}
	id := token.Ident(len(t.names))
	t.names = append(t.names, name)
	t.byName.Put(name, id)
	return id
}

// Lookup returns the source string for id. It panics if id was never
// produced by this table's Intern method.
func (t *Table) Lookup(id token.Ident) string {
	if int(id) >= len(t.names) {
		panic(fmt.Sprintf("intern: unknown identifier id %d", id))
	}
	return t.names[id]
}

// Len returns the number of distinct identifiers interned so far.
func (t *Table) Len() int { return len(t.names) }

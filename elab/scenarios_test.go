package elab_test

import (
	"flag"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/calyx/core/token"
	"github.com/mna/calyx/distill"
	"github.com/mna/calyx/internal/filetest"
	"github.com/mna/calyx/internal/intern"
	"github.com/mna/calyx/surface"
)

var testUpdateScenarioTests = flag.Bool("test.update-scenario-tests", false,
	"If set, replace expected end-to-end scenario results with actual results.")

// scenarioBuilders maps a testdata/in fixture name to the surface.Term it
// stands for: this module has no surface-syntax parser, so each fixture's
// source text is illustrative only, and the tree actually elaborated is
// built by hand here, keyed by the fixture's file name.
var scenarioBuilders = map[string]func(*intern.Table) surface.Term{
	"record-repr.formula": buildRecordReprScenario,
}

// buildRecordReprScenario builds the surface tree for spec.md §8 scenario 2:
//
//	let r = format-record { len <- format-u16be, data <- format-array16 len format-u8 };
//	format-repr r
func buildRecordReprScenario(interner *intern.Table) surface.Term {
	lenField := interner.Intern("len")
	dataField := interner.Intern("data")
	r := interner.Intern("r")

	lenFmt := surface.NewVar(sp(), interner.Intern("format-u16be"))
	dataFmt := surface.NewApp(sp(),
		surface.NewApp(sp(), surface.NewVar(sp(), interner.Intern("format-array16")), surface.NewVar(sp(), lenField)),
		surface.NewVar(sp(), interner.Intern("format-u8")),
	)
	recordFmt := surface.NewFormatRecord(sp(), []token.Ident{lenField, dataField}, []surface.Term{lenFmt, dataFmt})

	reprApp := surface.NewApp(sp(), surface.NewVar(sp(), interner.Intern("format-repr")), surface.NewVar(sp(), r))
	return surface.NewLet(sp(), r, nil, recordFmt, reprApp)
}

// TestEndToEndScenarios elaborates each fixture under testdata/in (one so
// far: record-repr.formula, spec.md §8 scenario 2) and diffs a deterministic rendering of the
// normalised result against a golden file, the way resolver_test.go diffs
// resolved output against testdata/out.
func TestEndToEndScenarios(t *testing.T) {
	srcDir, resultDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")
	for _, fi := range filetest.SourceFiles(t, srcDir, ".formula") {
		fi := fi
		t.Run(fi.Name(), func(t *testing.T) {
			build, ok := scenarioBuilders[fi.Name()]
			require.True(t, ok, "no scenario builder registered for fixture %s", fi.Name())

			interner := intern.NewTable(8)
			st := build(interner)

			res, diags := elaborate(t, interner, st, nil)
			require.Empty(t, errorMessages(diags))

			d := distill.NewDistiller(interner, nil)
			output := renderSurface(d.ToSurface(res.Term), interner) + "\n"
			filetest.DiffOutput(t, fi, output, resultDir, testUpdateScenarioTests)
		})
	}
}

// renderSurface deterministically renders a distilled surface.Term back to
// text, only as faithfully as the scenarios above need: enough node kinds
// to print the format-description and representation-type shapes spec.md
// §8 names, not a general-purpose pretty-printer.
func renderSurface(t surface.Term, interner *intern.Table) string {
	switch v := t.(type) {
	case *surface.Var:
		return interner.Lookup(v.Name)
	case *surface.Hole:
		return "_"
	case *surface.Universe:
		return "Type"
	case *surface.BoolLit:
		return fmt.Sprintf("%t", v.Value)
	case *surface.NumberLit:
		return v.Text
	case *surface.Ann:
		return renderSurface(v.Expr, interner) + " : " + renderSurface(v.Type, interner)
	case *surface.Let:
		return "let " + interner.Lookup(v.Name) + " = " + renderSurface(v.Def, interner) + "; " + renderSurface(v.Body, interner)
	case *surface.FunType:
		return "(" + interner.Lookup(v.Name) + " : " + renderSurface(v.Param, interner) + ") -> " + renderSurface(v.Body, interner)
	case *surface.FunLit:
		return "fun " + interner.Lookup(v.Name) + " => " + renderSurface(v.Body, interner)
	case *surface.App:
		return renderApp(v, interner)
	case *surface.RecordType:
		parts := make([]string, len(v.Labels))
		for i, l := range v.Labels {
			parts[i] = interner.Lookup(l) + " : " + renderSurface(v.Types[i], interner)
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	case *surface.RecordLit:
		parts := make([]string, len(v.Labels))
		for i, l := range v.Labels {
			parts[i] = interner.Lookup(l) + " = " + renderSurface(v.Exprs[i], interner)
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	case *surface.Proj:
		return renderSurface(v.Head, interner) + "." + interner.Lookup(v.Label)
	case *surface.ArrayLit:
		parts := make([]string, len(v.Exprs))
		for i, e := range v.Exprs {
			parts[i] = renderSurface(e, interner)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *surface.FormatRecord:
		parts := make([]string, len(v.Labels))
		for i, l := range v.Labels {
			parts[i] = interner.Lookup(l) + " <- " + renderSurface(v.Formats[i], interner)
		}
		return "format-record { " + strings.Join(parts, ", ") + " }"
	case *surface.FormatOverlap:
		parts := make([]string, len(v.Labels))
		for i, l := range v.Labels {
			parts[i] = interner.Lookup(l) + " <- " + renderSurface(v.Formats[i], interner)
		}
		return "format-overlap { " + strings.Join(parts, ", ") + " }"
	case *surface.FormatCond:
		return "format-cond (" + interner.Lookup(v.Name) + " : " + renderSurface(v.Format, interner) + ") " + renderSurface(v.Cond, interner)
	case *surface.Match:
		parts := make([]string, len(v.Arms))
		for i, a := range v.Arms {
			parts[i] = renderSurface(a.Pattern, interner) + " => " + renderSurface(a.Body, interner)
		}
		out := "match " + renderSurface(v.Scrutinee, interner) + " { " + strings.Join(parts, ", ")
		if v.Default != nil {
			out += ", _ => " + renderSurface(v.Default, interner)
		}
		return out + " }"
	default:
		return fmt.Sprintf("<%T>", t)
	}
}

// renderApp flattens a left-nested application spine into a single
// parenthesised chain (`(f a b)`) rather than nesting a pair of parens per
// argument, matching how the scenarios' expected output is written.
func renderApp(app *surface.App, interner *intern.Table) string {
	var args []string
	var head surface.Term = app
	for {
		a, ok := head.(*surface.App)
		if !ok {
			break
		}
		args = append([]string{renderSurface(a.Arg, interner)}, args...)
		head = a.Head
	}
	parts := append([]string{renderSurface(head, interner)}, args...)
	return "(" + strings.Join(parts, " ") + ")"
}

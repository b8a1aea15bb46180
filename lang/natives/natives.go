// Package natives builds slo's built-in function registry and the native
// methods attached to its built-in container classes (List, Dict, String,
// File) — SPEC_FULL.md's supplemented natives and DOMAIN STACK sections.
package natives

import (
	"io"

	"github.com/dolthub/swiss"

	"github.com/mhr3/slo/lang/value"
)

// Runtime holds every native surface the machine wires into a fresh VM:
// the global function table and the built-in container classes' native
// method tables (spec.md §4.3's "list of built-in container classes").
type Runtime struct {
	Globals     *value.Table
	ListClass   *value.Class
	DictClass   *value.Class
	StringClass *value.Class
	FileClass   *value.Class

	Stdout io.Writer
	Stderr io.Writer
}

// New assembles a Runtime. Native functions write to stdout/stderr exactly
// as given, so a CLI can wire them to mainer.Stdio and a test can wire them
// to a bytes.Buffer.
func New(stdout, stderr io.Writer) *Runtime {
	rt := &Runtime{
		ListClass:   value.NewClass("List"),
		DictClass:   value.NewClass("Dict"),
		StringClass: value.NewClass("String"),
		FileClass:   value.NewClass("File"),
		Stdout:      stdout,
		Stderr:      stderr,
	}

	rt.Globals = assemble(rt.globalNatives())

	rt.ListClass.NativeFns = assemble(rt.listMethods())
	rt.DictClass.NativeFns = assemble(rt.dictMethods())
	rt.StringClass.NativeFns = assemble(rt.stringMethods())
	rt.FileClass.NativeFns = assemble(rt.fileMethods())

	return rt
}

// assemble builds each native registry in a dolthub/swiss scratch map first
// — a plain comparable-key (string) map with none of spec.md's open-
// addressing/tombstone requirements to satisfy, unlike the user-visible
// value.Table — catching accidental duplicate native names at registry-
// build time, then copies the (deduplicated, order-preserving) result into
// a value.Table so method lookup at runtime goes through the same
// FindNative/Get path as every other table in the VM.
func assemble(fns []*value.Native) *value.Table {
	scratch := swiss.NewMap[string, *value.Native](uint32(len(fns)))
	tbl := value.NewTable()
	for _, fn := range fns {
		if _, dup := scratch.Get(fn.Name); dup {
			panic("natives: duplicate native name " + fn.Name)
		}
		scratch.Put(fn.Name, fn)
		tbl.Set(value.NewString(fn.Name), fn)
	}
	return tbl
}

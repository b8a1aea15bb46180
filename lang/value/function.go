package value

import "fmt"

// Function is a compiled slo function: its arity, upvalue count, bytecode
// Chunk, name, and source file (spec.md §3). Functions are allocated by the
// compiler at compile time and interned like string literals (one Function
// object per func declaration or lambda).
type Function struct {
	Header
	Name         string
	Arity        int
	UpvalueCount int
	Chunk        *Chunk
	File         string
}

var (
	_ Value = (*Function)(nil)
	_ Obj   = (*Function)(nil)
)

func (f *Function) header() *Header  { return &f.Header }
func (f *Function) ObjType() ObjType { return ObjFunction }
func (f *Function) Kind() Kind       { return KindObj }
func (f *Function) Type() string     { return "function" }
func (f *Function) String() string {
	if f.Name == "" {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", f.Name)
}
func (f *Function) Trace(mark func(Value)) {
	for _, c := range f.Chunk.Constants {
		mark(c)
	}
}
func (f *Function) Size() int { return 64 + len(f.Chunk.Code) }

// NewFunction allocates a Function around an (initially empty) Chunk.
func NewFunction(name, file string) *Function {
	return &Function{Name: name, File: file, Chunk: NewChunk()}
}

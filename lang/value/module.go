package value

// Module is the result of an import: the globals of the imported unit,
// captured into a Table once its top-level code has finished running
// (spec.md §3, §4.3).
type Module struct {
	Header
	Name    string
	Methods *Table
}

var (
	_ Value = (*Module)(nil)
	_ Obj   = (*Module)(nil)
)

func (m *Module) header() *Header  { return &m.Header }
func (m *Module) ObjType() ObjType { return ObjModule }
func (m *Module) Kind() Kind       { return KindObj }
func (m *Module) Type() string     { return "module" }
func (m *Module) String() string   { return "<module " + m.Name + ">" }
func (m *Module) Trace(mark func(Value)) {
	m.Methods.Each(func(k, v Value) {
		mark(k)
		mark(v)
	})
}
func (m *Module) Size() int { return 32 + m.Methods.Capacity()*24 }

// NewModule wraps globals as an importable Module named name.
func NewModule(name string, globals *Table) *Module {
	return &Module{Name: name, Methods: globals}
}

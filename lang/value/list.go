package value

// List is slo's dynamic array object. A List may optionally be bound to a
// class whose native methods (push, pop, sort, ...) then take precedence
// over the VM's built-in List class in property/invoke lookup (spec.md §3,
// SPEC_FULL.md's native list methods).
type List struct {
	Header
	Elems []Value
	Class *Class // optional; nil means the VM's built-in List class
}

var (
	_ Value = (*List)(nil)
	_ Obj   = (*List)(nil)
)

func (l *List) header() *Header  { return &l.Header }
func (l *List) ObjType() ObjType { return ObjList }
func (l *List) Kind() Kind       { return KindObj }
func (l *List) Type() string     { return "list" }
func (l *List) String() string {
	s := "["
	for i, e := range l.Elems {
		if i > 0 {
			s += ", "
		}
		if str, ok := e.(*String); ok {
			s += `"` + str.Chars + `"`
		} else {
			s += e.String()
		}
	}
	return s + "]"
}
func (l *List) Trace(mark func(Value)) {
	for _, e := range l.Elems {
		mark(e)
	}
	if l.Class != nil {
		mark(l.Class)
	}
}
func (l *List) Size() int { return 32 + len(l.Elems)*16 }

// NewList allocates a List wrapping elems (taking ownership of the slice).
func NewList(elems []Value) *List { return &List{Elems: elems} }

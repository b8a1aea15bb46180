package value

// Dict is slo's dictionary object, a Table of arbitrary Value keys/values
// plus an optional class binding (spec.md §3).
type Dict struct {
	Header
	Table *Table
	Class *Class
}

var (
	_ Value = (*Dict)(nil)
	_ Obj   = (*Dict)(nil)
)

func (d *Dict) header() *Header  { return &d.Header }
func (d *Dict) ObjType() ObjType { return ObjDict }
func (d *Dict) Kind() Kind       { return KindObj }
func (d *Dict) Type() string     { return "dict" }
func (d *Dict) String() string {
	s := "{"
	first := true
	d.Table.Each(func(k, v Value) {
		if !first {
			s += ", "
		}
		first = false
		if str, ok := k.(*String); ok {
			s += `"` + str.Chars + `"`
		} else {
			s += k.String()
		}
		s += ": "
		if str, ok := v.(*String); ok {
			s += `"` + str.Chars + `"`
		} else {
			s += v.String()
		}
	})
	return s + "}"
}
func (d *Dict) Trace(mark func(Value)) {
	d.Table.Each(func(k, v Value) {
		mark(k)
		mark(v)
	})
	if d.Class != nil {
		mark(d.Class)
	}
}
func (d *Dict) Size() int { return 32 + d.Table.Capacity()*24 }

// NewDict allocates an empty Dict.
func NewDict() *Dict { return &Dict{Table: NewTable()} }

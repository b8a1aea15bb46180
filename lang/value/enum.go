package value

// Enum is a named set of constant values (spec.md §3's Enum variant: "name,
// values table"). Each enumerator evaluates to an *EnumValue bound to its
// owning Enum, so equality and printing can show both the enum and the
// member name.
type Enum struct {
	Header
	Name   string
	Values *Table // member name (String) -> *EnumValue
}

var (
	_ Value = (*Enum)(nil)
	_ Obj   = (*Enum)(nil)
)

func (e *Enum) header() *Header  { return &e.Header }
func (e *Enum) ObjType() ObjType { return ObjEnum }
func (e *Enum) Kind() Kind       { return KindObj }
func (e *Enum) Type() string     { return "enum" }
func (e *Enum) String() string   { return "enum " + e.Name }
func (e *Enum) Trace(mark func(Value)) {
	e.Values.Each(func(k, v Value) {
		mark(k)
		mark(v)
	})
}
func (e *Enum) Size() int { return 24 + e.Values.Capacity()*24 }

// NewEnum allocates an empty Enum named name.
func NewEnum(name string) *Enum {
	return &Enum{Name: name, Values: NewTable()}
}

// EnumValue is a single member of an Enum.
type EnumValue struct {
	Header
	Owner *Enum
	Name  string
	Ord   int
}

var (
	_ Value = (*EnumValue)(nil)
	_ Obj   = (*EnumValue)(nil)
)

func (v *EnumValue) header() *Header  { return &v.Header }
func (v *EnumValue) ObjType() ObjType { return ObjEnum }
func (v *EnumValue) Kind() Kind       { return KindObj }
func (v *EnumValue) Type() string     { return "enum" }
func (v *EnumValue) String() string   { return v.Owner.Name + "." + v.Name }
func (v *EnumValue) Trace(mark func(Value)) {
	mark(v.Owner)
}
func (v *EnumValue) Size() int { return 32 }

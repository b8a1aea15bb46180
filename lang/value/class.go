package value

// Class is a slo class: its name, optional superclass, method table
// (name->Closure), and a native-property table used by the VM's built-in
// container classes (spec.md §3, §4.3).
type Class struct {
	Header
	Name       string
	Super      *Class
	Methods    *Table // String -> *Closure
	NativeFns  *Table // String -> *Native, read-only properties on built-ins
}

var (
	_ Value = (*Class)(nil)
	_ Obj   = (*Class)(nil)
)

func (c *Class) header() *Header  { return &c.Header }
func (c *Class) ObjType() ObjType { return ObjClass }
func (c *Class) Kind() Kind       { return KindObj }
func (c *Class) Type() string     { return "class" }
func (c *Class) String() string   { return c.Name }
func (c *Class) Trace(mark func(Value)) {
	c.Methods.Each(func(k, v Value) {
		mark(k)
		mark(v)
	})
	if c.NativeFns != nil {
		c.NativeFns.Each(func(k, v Value) {
			mark(k)
			mark(v)
		})
	}
	if c.Super != nil {
		mark(c.Super)
	}
}
func (c *Class) Size() int { return 48 + c.Methods.Capacity()*24 }

// NewClass allocates an empty Class named name.
func NewClass(name string) *Class {
	return &Class{Name: name, Methods: NewTable()}
}

// FindMethod walks the class's superclass chain looking for a method named
// name, returning the Closure that defines it and whether one was found.
func (c *Class) FindMethod(name *String) (*Closure, bool) {
	for cls := c; cls != nil; cls = cls.Super {
		if v, ok := cls.Methods.Get(name); ok {
			return v.(*Closure), true
		}
	}
	return nil, false
}

// FindNative looks up a native property on this class or any ancestor.
func (c *Class) FindNative(name *String) (*Native, bool) {
	for cls := c; cls != nil; cls = cls.Super {
		if cls.NativeFns == nil {
			continue
		}
		if v, ok := cls.NativeFns.Get(name); ok {
			return v.(*Native), true
		}
	}
	return nil, false
}

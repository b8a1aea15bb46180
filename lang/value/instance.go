package value

// Instance is an instance of a slo Class: its class and a Table of fields
// (spec.md §3).
type Instance struct {
	Header
	Class  *Class
	Fields *Table
}

var (
	_ Value = (*Instance)(nil)
	_ Obj   = (*Instance)(nil)
)

func (i *Instance) header() *Header  { return &i.Header }
func (i *Instance) ObjType() ObjType { return ObjInstance }
func (i *Instance) Kind() Kind       { return KindObj }
func (i *Instance) Type() string     { return "instance" }
func (i *Instance) String() string   { return i.Class.Name + " instance" }
func (i *Instance) Trace(mark func(Value)) {
	mark(i.Class)
	i.Fields.Each(func(k, v Value) {
		mark(k)
		mark(v)
	})
}
func (i *Instance) Size() int { return 32 + i.Fields.Capacity()*24 }

// NewInstance allocates an Instance of cls with an empty field table.
func NewInstance(cls *Class) *Instance {
	return &Instance{Class: cls, Fields: NewTable()}
}

// BoundMethod is a receiver+closure pair produced when an instance method is
// fetched as a first-class value (spec.md §3, GLOSSARY). A native container
// method (List.push, String.upper, ...) fetched the same way is represented
// by the same object with Native set instead of Method, since a bare
// *Native has nowhere else to carry the receiver it was fetched from.
type BoundMethod struct {
	Header
	Receiver Value
	Method   *Closure
	Native   *Native
}

var (
	_ Value = (*BoundMethod)(nil)
	_ Obj   = (*BoundMethod)(nil)
)

func (b *BoundMethod) header() *Header  { return &b.Header }
func (b *BoundMethod) ObjType() ObjType { return ObjBoundMethod }
func (b *BoundMethod) Kind() Kind       { return KindObj }
func (b *BoundMethod) Type() string     { return "bound method" }
func (b *BoundMethod) String() string {
	if b.Native != nil {
		return b.Native.String()
	}
	return b.Method.String()
}
func (b *BoundMethod) Trace(mark func(Value)) {
	mark(b.Receiver)
	if b.Method != nil {
		mark(b.Method)
	}
	if b.Native != nil {
		mark(b.Native)
	}
}
func (b *BoundMethod) Size() int { return 32 }

// NewBoundMethod binds receiver to a user-defined method.
func NewBoundMethod(receiver Value, method *Closure) *BoundMethod {
	return &BoundMethod{Receiver: receiver, Method: method}
}

// NewBoundNative binds receiver to a native container method.
func NewBoundNative(receiver Value, native *Native) *BoundMethod {
	return &BoundMethod{Receiver: receiver, Native: native}
}

package value

// Upvalue is a shared cell a Closure captures: open while it still points
// into a live VM stack slot, closed once it owns its value directly
// (spec.md §3, §4.2's CLOSE_UPVALUE). NextOpen threads the VM's list of open
// upvalues in descending stack-address order (spec.md's invariants).
type Upvalue struct {
	Header
	Location *Value
	Closed   Value
	NextOpen *Upvalue
}

var (
	_ Value = (*Upvalue)(nil)
	_ Obj   = (*Upvalue)(nil)
)

func (u *Upvalue) header() *Header  { return &u.Header }
func (u *Upvalue) ObjType() ObjType { return ObjUpvalue }
func (u *Upvalue) Kind() Kind       { return KindObj }
func (u *Upvalue) Type() string     { return "upvalue" }
func (u *Upvalue) String() string   { return "upvalue" }
func (u *Upvalue) Trace(mark func(Value)) {
	if u.Location != nil {
		mark(*u.Location)
	}
}
func (u *Upvalue) Size() int { return 32 }

// IsOpen reports whether the upvalue still points into a live stack slot.
func (u *Upvalue) IsOpen() bool { return u.Location != &u.Closed }

// Close snapshots the current value of the open slot into Closed and
// re-points Location at it, detaching the upvalue from the stack.
func (u *Upvalue) Close() {
	u.Closed = *u.Location
	u.Location = &u.Closed
}

// NewUpvalue creates an open upvalue pointing at slot.
func NewUpvalue(slot *Value) *Upvalue {
	return &Upvalue{Location: slot}
}

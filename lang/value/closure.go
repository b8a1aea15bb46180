package value

// Closure pairs a compiled Function with the Upvalue cells it has captured
// (spec.md §3: "function, upvalue vector (length = function.upvalueCount)").
type Closure struct {
	Header
	Fn       *Function
	Upvalues []*Upvalue
}

var (
	_ Value = (*Closure)(nil)
	_ Obj   = (*Closure)(nil)
)

func (c *Closure) header() *Header  { return &c.Header }
func (c *Closure) ObjType() ObjType { return ObjClosure }
func (c *Closure) Kind() Kind       { return KindObj }
func (c *Closure) Type() string     { return "closure" }
func (c *Closure) String() string   { return c.Fn.String() }
func (c *Closure) Trace(mark func(Value)) {
	mark(c.Fn)
	for _, u := range c.Upvalues {
		if u != nil {
			mark(u)
		}
	}
}
func (c *Closure) Size() int { return 32 + len(c.Upvalues)*8 }

// NewClosure allocates a Closure over fn with an empty (correctly sized)
// upvalue vector, ready for the VM's CLOSURE opcode to populate.
func NewClosure(fn *Function) *Closure {
	return &Closure{Fn: fn, Upvalues: make([]*Upvalue, fn.UpvalueCount)}
}

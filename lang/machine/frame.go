package machine

import "github.com/mhr3/slo/lang/value"

// frame is one call frame (spec.md §4.3: "{closure, ip, slots}"). slots is
// expressed as a base index into the VM's value stack rather than a
// pointer, since the stack is a fixed array embedded in VM, not a slice
// that could be reallocated out from under a pointer.
type frame struct {
	closure *value.Closure
	ip      int
	base    int // stack index of slot 0: the callee itself, or bound receiver
}

func (fr *frame) readByte() byte {
	b := fr.closure.Fn.Chunk.Code[fr.ip]
	fr.ip++
	return b
}

func (fr *frame) readUint16() uint16 {
	v := fr.closure.Fn.Chunk.ReadUint16(fr.ip)
	fr.ip += 2
	return v
}

func (fr *frame) readConstant() value.Value {
	return fr.closure.Fn.Chunk.Constants[fr.readByte()]
}

func (fr *frame) readString() *value.String {
	return fr.readConstant().(*value.String)
}

package value

import "fmt"

// ObjType identifies the concrete variant of a heap-allocated Obj (spec.md
// §3's thirteen object variants).
type ObjType uint8

//nolint:revive
const (
	ObjString ObjType = iota
	ObjFunction
	ObjNative
	ObjClosure
	ObjUpvalue
	ObjClass
	ObjInstance
	ObjBoundMethod
	ObjList
	ObjDict
	ObjEnum
	ObjModule
	ObjFile
)

var objTypeNames = [...]string{
	ObjString:      "string",
	ObjFunction:    "function",
	ObjNative:      "native",
	ObjClosure:     "closure",
	ObjUpvalue:     "upvalue",
	ObjClass:       "class",
	ObjInstance:    "instance",
	ObjBoundMethod: "bound method",
	ObjList:        "list",
	ObjDict:        "dict",
	ObjEnum:        "enum",
	ObjModule:      "module",
	ObjFile:        "file",
}

func (t ObjType) String() string {
	if int(t) < len(objTypeNames) {
		return objTypeNames[t]
	}
	return fmt.Sprintf("objtype(%d)", t)
}

// Header is embedded by every heap object. It threads the object into the
// VM-wide intrusive object list (Next) used by sweep, and carries the
// mark-parity bit compared against the collector's current mark value
// (spec.md §4.4, §9: "choose parity flipping").
type Header struct {
	next   Obj
	marked bool
}

// Obj is implemented by every heap-allocated object variant. The header
// accessor is unexported so that only types declared in this package can be
// heap objects — this is what keeps the GC's object list and mark bit
// manipulation confined to a single, auditable package.
type Obj interface {
	Value
	ObjType() ObjType
	header() *Header
	// Trace calls mark for every Value this object directly references, so
	// the collector can push them onto its gray worklist.
	Trace(mark func(Value))
	// Size estimates the object's heap footprint in bytes for the
	// allocator's byte-accounting (spec.md §4.4).
	Size() int
}

// Next returns the next object in the VM's intrusive object list.
func Next(o Obj) Obj { return o.header().next }

// SetNext sets the next link in the VM's intrusive object list.
func SetNext(o Obj, next Obj) { o.header().next = next }

// Marked reports whether o is marked with the given mark-parity value.
func Marked(o Obj, parity bool) bool { return o.header().marked == parity }

// SetMarked sets o's mark bit to parity.
func SetMarked(o Obj, parity bool) { o.header().marked = parity }

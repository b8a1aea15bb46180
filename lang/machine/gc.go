package machine

import (
	"fmt"

	"github.com/mhr3/slo/lang/value"
)

// gcGrowFactor is applied to nextGC after every collection (spec.md §4.4:
// "nextGC doubled after each collection").
const gcGrowFactor = 2

// maybeCollect runs a collection before an allocation site constructs its
// new object, never after — this is the allocation-during-GC hazard fix
// recorded in DESIGN.md: the object doesn't exist yet, so there's nothing
// for a sweep racing this call to free prematurely.
func (vm *VM) maybeCollect() {
	if vm.StressGC || vm.bytesAllocated >= vm.nextGC {
		vm.collectGarbage()
	}
}

// track links a freshly built object into the VM's intrusive object list
// and accounts for its size (spec.md §3's "intrusive singly-linked list").
func (vm *VM) track(o value.Obj) {
	value.SetNext(o, vm.objects)
	vm.objects = o
	vm.bytesAllocated += o.Size()
	value.SetMarked(o, vm.markParity) // born white: the next cycle flips the parity before marking
	if vm.LogGC {
		fmt.Fprintf(vm.Stderr, "gc: alloc %p %s (%d bytes)\n", o, o.ObjType(), o.Size())
	}
}

// intern returns the canonical *String for raw, allocating and tracking a
// new one only if raw hasn't been seen before (spec.md §3's invariant:
// "two equal-byte strings have the same pointer").
func (vm *VM) intern(raw string) *value.String {
	hash := value.HashString(raw)
	if s := vm.strings.FindString(raw, hash); s != nil {
		return s
	}
	vm.maybeCollect()
	s := value.NewString(raw)
	vm.track(s)
	vm.strings.Set(s, value.True)
	return s
}

func (vm *VM) allocClosure(fn *value.Function) *value.Closure {
	vm.maybeCollect()
	c := value.NewClosure(fn)
	vm.track(c)
	return c
}

func (vm *VM) allocInstance(cls *value.Class) *value.Instance {
	vm.maybeCollect()
	i := value.NewInstance(cls)
	vm.track(i)
	return i
}

func (vm *VM) allocList(elems []value.Value) *value.List {
	vm.maybeCollect()
	l := value.NewList(elems)
	vm.track(l)
	return l
}

func (vm *VM) allocDict() *value.Dict {
	vm.maybeCollect()
	d := value.NewDict()
	vm.track(d)
	return d
}

func (vm *VM) allocClass(name string) *value.Class {
	vm.maybeCollect()
	c := value.NewClass(name)
	vm.track(c)
	return c
}

func (vm *VM) allocEnum(name string) *value.Enum {
	vm.maybeCollect()
	e := value.NewEnum(name)
	vm.track(e)
	return e
}

func (vm *VM) allocEnumValue(owner *value.Enum, name string, ord int) *value.EnumValue {
	vm.maybeCollect()
	v := &value.EnumValue{Owner: owner, Name: name, Ord: ord}
	vm.track(v)
	return v
}

func (vm *VM) allocBoundMethod(receiver value.Value, method *value.Closure) *value.BoundMethod {
	vm.maybeCollect()
	b := value.NewBoundMethod(receiver, method)
	vm.track(b)
	return b
}

func (vm *VM) allocBoundNative(receiver value.Value, native *value.Native) *value.BoundMethod {
	vm.maybeCollect()
	b := value.NewBoundNative(receiver, native)
	vm.track(b)
	return b
}

func (vm *VM) allocUpvalue(slot *value.Value) *value.Upvalue {
	vm.maybeCollect()
	u := value.NewUpvalue(slot)
	vm.track(u)
	return u
}

func (vm *VM) allocModule(name string, globals *value.Table) *value.Module {
	vm.maybeCollect()
	m := value.NewModule(name, globals)
	vm.track(m)
	return m
}

// markValue pushes v's Obj (if any) onto the gray worklist the first time
// it's seen this cycle.
func (vm *VM) markValue(v value.Value) {
	o, ok := v.(value.Obj)
	if !ok || o == nil {
		return
	}
	if value.Marked(o, vm.markParity) {
		return
	}
	value.SetMarked(o, vm.markParity)
	vm.gray = append(vm.gray, o)
}

// markRoots pushes every GC root onto the gray worklist (spec.md §4.4
// phase 1). The interned-strings table is deliberately NOT marked here —
// it's a weak set: an interned string survives only if something else
// (the stack, a frame, globals, a chunk constant) still reaches it, and
// sweepStrings below drops any entry that didn't.
func (vm *VM) markRoots() {
	for i := 0; i < vm.top; i++ {
		vm.markValue(vm.stack[i])
	}
	for i := range vm.frames {
		vm.markValue(vm.frames[i].closure)
	}
	for u := vm.openUpvalues; u != nil; u = u.NextOpen {
		vm.markValue(u)
	}
	vm.globals.Each(func(k, v value.Value) {
		vm.markValue(k)
		vm.markValue(v)
	})
}

// traceReferences drains the gray worklist, blackening each object by
// calling its Trace method (spec.md §4.4 phase 2).
func (vm *VM) traceReferences() {
	for len(vm.gray) > 0 {
		o := vm.gray[len(vm.gray)-1]
		vm.gray = vm.gray[:len(vm.gray)-1]
		o.Trace(vm.markValue)
	}
}

// sweepStrings drops any interned string whose mark isn't current (spec.md
// §4.4 phase 3), before the general sweep frees the underlying object.
func (vm *VM) sweepStrings() {
	var dead []value.Value
	vm.strings.Each(func(k, _ value.Value) {
		s := k.(*value.String)
		if !value.Marked(s, vm.markParity) {
			dead = append(dead, k)
		}
	})
	for _, k := range dead {
		vm.strings.Delete(k)
	}
}

// sweepObjects walks the intrusive object list, freeing (unlinking,
// closing File handles) every object not marked this cycle (spec.md §4.4
// phase 4).
func (vm *VM) sweepObjects() {
	var prev value.Obj
	obj := vm.objects
	for obj != nil {
		next := value.Next(obj)
		if value.Marked(obj, vm.markParity) {
			prev = obj
			obj = next
			continue
		}
		vm.bytesAllocated -= obj.Size()
		if f, ok := obj.(*value.File); ok {
			_ = f.Close()
		}
		if prev == nil {
			vm.objects = next
		} else {
			value.SetNext(prev, next)
		}
		if vm.LogGC {
			fmt.Fprintf(vm.Stderr, "gc: free %p %s\n", obj, obj.ObjType())
		}
		obj = next
	}
}

// collectGarbage runs one full mark-and-sweep cycle (spec.md §4.4). The
// mark parity flips each cycle instead of an explicit unmark pass, per the
// Open Question decision recorded in DESIGN.md.
func (vm *VM) collectGarbage() {
	if vm.LogGC {
		fmt.Fprintf(vm.Stderr, "gc: begin collect, %d bytes allocated\n", vm.bytesAllocated)
	}
	vm.markParity = !vm.markParity
	vm.markRoots()
	vm.traceReferences()
	vm.sweepStrings()
	vm.sweepObjects()
	vm.nextGC = vm.bytesAllocated * gcGrowFactor
	if vm.nextGC < 1<<20 {
		vm.nextGC = 1 << 20
	}
	if vm.LogGC {
		fmt.Fprintf(vm.Stderr, "gc: end collect, %d bytes allocated, next at %d\n", vm.bytesAllocated, vm.nextGC)
	}
}

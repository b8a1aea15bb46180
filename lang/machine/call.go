package machine

import (
	"unsafe"

	"github.com/mhr3/slo/lang/value"
)

// call pushes a new frame invoking closure over the argCount arguments
// already sitting on the stack below its receiver/callee slot (spec.md
// §4.3's Call protocol for Closure). Arity is checked against the
// function's declared parameter count.
func (vm *VM) call(closure *value.Closure, argCount int) (bool, error) {
	if argCount != closure.Fn.Arity {
		return false, vm.runtimeErrorf("expected %d arguments but got %d", closure.Fn.Arity, argCount)
	}
	if len(vm.frames) >= vm.maxFrames() {
		return false, vm.runtimeError("stack overflow")
	}
	vm.frames = append(vm.frames, frame{
		closure: closure,
		base:    vm.top - argCount - 1,
	})
	return true, nil
}

// callValue implements spec.md §4.3's full Call protocol dispatch: the
// callee sits at stack[-argCount-1] and this replaces that slot's meaning
// (receiver for BoundMethod/Class) before actually calling, or calls a
// Native directly and leaves its result in place of the callee.
func (vm *VM) callValue(callee value.Value, argCount int) (bool, error) {
	switch c := callee.(type) {
	case *value.Closure:
		return vm.call(c, argCount)

	case *value.BoundMethod:
		vm.stack[vm.top-argCount-1] = c.Receiver
		if c.Native != nil {
			return vm.callNative(c.Native, c.Receiver, argCount)
		}
		return vm.call(c.Method, argCount)

	case *value.Class:
		inst := vm.allocInstance(c)
		vm.stack[vm.top-argCount-1] = inst
		if init, ok := c.FindMethod(vm.intern("init")); ok {
			return vm.call(init, argCount)
		}
		if argCount != 0 {
			return false, vm.runtimeErrorf("expected 0 arguments but got %d", argCount)
		}
		return true, nil

	case *value.Native:
		return vm.callNative(c, nil, argCount)

	default:
		return false, vm.runtimeErrorf("can only call functions and classes")
	}
}

// callNative runs a native directly in place (no new frame): natives
// execute synchronously on the VM's own call (spec.md §5: "native calls
// run to completion on the caller's stack"). If receiver is non-nil this
// is a bound container method and is prepended, per lang/natives'
// "args[0] is the receiver" convention.
func (vm *VM) callNative(native *value.Native, receiver value.Value, argCount int) (bool, error) {
	if !native.AcceptsArity(argCount) {
		return false, vm.runtimeErrorf("native %q does not accept %d arguments", native.Name, argCount)
	}
	args := make([]value.Value, 0, argCount+1)
	if receiver != nil {
		args = append(args, receiver)
	}
	args = append(args, vm.stack[vm.top-argCount:vm.top]...)

	result := native.Fn(args)
	vm.top -= argCount + 1
	if errVal, ok := result.(value.Error); ok {
		return false, vm.runtimeError(string(errVal))
	}
	vm.push(result)
	return true, nil
}

// invoke implements spec.md §4.3's invoke fast path: GET_PROPERTY + CALL
// without materializing a BoundMethod when the receiver resolves straight
// to a class method or native container method.
func (vm *VM) invoke(name *value.String, argCount int) (bool, error) {
	receiver := vm.peek(argCount)

	if inst, ok := receiver.(*value.Instance); ok {
		if field, ok := inst.Fields.Get(name); ok {
			vm.stack[vm.top-argCount-1] = field
			return vm.callValue(field, argCount)
		}
		method, ok := inst.Class.FindMethod(name)
		if !ok {
			return false, vm.runtimeErrorf("undefined property '%s' on %s instance", name.Chars, inst.Class.Name)
		}
		return vm.call(method, argCount)
	}

	if mod, ok := receiver.(*value.Module); ok {
		v, ok := mod.Methods.Get(name)
		if !ok {
			return false, vm.runtimeErrorf("undefined property '%s' on module %s", name.Chars, mod.Name)
		}
		vm.stack[vm.top-argCount-1] = v
		return vm.callValue(v, argCount)
	}

	cls := vm.nativeClassOf(receiver)
	if cls == nil {
		return false, vm.runtimeErrorf("%s has no methods", receiver.Type())
	}
	native, ok := cls.FindNative(name)
	if !ok {
		return false, vm.runtimeErrorf("undefined property '%s' on %s", name.Chars, receiver.Type())
	}
	return vm.callNative(native, receiver, argCount)
}

// invokeSuper is the SUPER_INVOKE equivalent: the method is looked up
// starting from a specific superclass rather than the receiver's own
// class (spec.md opcode catalog: "invoke on popped superclass").
func (vm *VM) invokeSuper(super *value.Class, name *value.String, argCount int) (bool, error) {
	method, ok := super.FindMethod(name)
	if !ok {
		return false, vm.runtimeErrorf("undefined property '%s' on superclass %s", name.Chars, super.Name)
	}
	return vm.call(method, argCount)
}

// getProperty implements GET_PROPERTY: plain (non-invoking) member access
// (spec.md §4.3's "Property access" paragraph).
func (vm *VM) getProperty(receiver value.Value, name *value.String) (value.Value, error) {
	switch r := receiver.(type) {
	case *value.Instance:
		if v, ok := r.Fields.Get(name); ok {
			return v, nil
		}
		if method, ok := r.Class.FindMethod(name); ok {
			return vm.allocBoundMethod(receiver, method), nil
		}
		return nil, vm.runtimeErrorf("undefined property '%s' on %s instance", name.Chars, r.Class.Name)

	case *value.Module:
		if v, ok := r.Methods.Get(name); ok {
			return v, nil
		}
		return nil, vm.runtimeErrorf("undefined property '%s' on module %s", name.Chars, r.Name)

	case *value.Enum:
		if v, ok := r.Values.Get(name); ok {
			return v, nil
		}
		return nil, vm.runtimeErrorf("undefined member '%s' on enum %s", name.Chars, r.Name)

	default:
		cls := vm.nativeClassOf(receiver)
		if cls == nil {
			return nil, vm.runtimeErrorf("%s has no properties", receiver.Type())
		}
		native, ok := cls.FindNative(name)
		if !ok {
			return nil, vm.runtimeErrorf("undefined property '%s' on %s", name.Chars, receiver.Type())
		}
		return vm.allocBoundNative(receiver, native), nil
	}
}

// nativeClassOf returns the built-in class backing v's native methods. List
// and Dict carry an optional Class field that takes precedence when set (the
// VM's allocators leave it nil); String and File have no such field
// (spec.md's data model doesn't give them one). Without a Class field
// value, v resolves through the VM's fixed built-in class handles.
func (vm *VM) nativeClassOf(v value.Value) *value.Class {
	switch t := v.(type) {
	case *value.List:
		if t.Class != nil {
			return t.Class
		}
		return vm.rt.ListClass
	case *value.Dict:
		if t.Class != nil {
			return t.Class
		}
		return vm.rt.DictClass
	case *value.String:
		return vm.rt.StringClass
	case *value.File:
		return vm.rt.FileClass
	default:
		return nil
	}
}

// captureUpvalue returns the existing open upvalue for the stack slot at
// index slot if one is already in the VM's open-upvalue list, or creates
// and links a new one in descending-stack-address order.
func (vm *VM) captureUpvalue(slot int) *value.Upvalue {
	var prev *value.Upvalue
	cur := vm.openUpvalues
	for cur != nil && vm.upvalueSlot(cur) > slot {
		prev = cur
		cur = cur.NextOpen
	}
	if cur != nil && vm.upvalueSlot(cur) == slot {
		return cur
	}

	created := vm.allocUpvalue(&vm.stack[slot])
	created.NextOpen = cur
	if prev == nil {
		vm.openUpvalues = created
	} else {
		prev.NextOpen = created
	}
	return created
}

// upvalueSlot recovers the stack index an open upvalue points at, by
// pointer arithmetic against the VM's embedded stack array.
func (vm *VM) upvalueSlot(u *value.Upvalue) int {
	base := unsafe.Pointer(&vm.stack[0])
	loc := unsafe.Pointer(u.Location)
	return int((uintptr(loc) - uintptr(base)) / unsafe.Sizeof(vm.stack[0]))
}

// closeUpvalues closes every open upvalue pointing at or above the stack
// slot at index last, snapshotting its value before the slot is popped
// (spec.md opcode catalog's CLOSE_UPVALUE and §3's closure-capture
// invariant).
func (vm *VM) closeUpvalues(last int) {
	for vm.openUpvalues != nil && vm.openUpvalues.IsOpen() && vm.upvalueSlot(vm.openUpvalues) >= last {
		u := vm.openUpvalues
		u.Close()
		vm.openUpvalues = u.NextOpen
	}
}

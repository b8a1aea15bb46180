package machine

import (
	"context"

	"github.com/mhr3/slo/lang/value"
)

// runLoop is the classic call-threaded switch-dispatch interpreter (spec.md
// §4.3). It processes vm.frames[len-1] until that frame (and every frame
// pushed after it) has returned and the frame stack has unwound back to
// depth. A nested call to runLoopTo with a deeper depth is how IMPORT runs an
// imported module's top-level code to completion without re-entering Go's
// call stack for every ordinary function call — the common case (CALL,
// INVOKE, SUPER_INVOKE) just keeps looping in the same runLoop invocation.
func (vm *VM) runLoop() (value.Value, error) {
	return vm.runLoopTo(0)
}

func (vm *VM) runLoopTo(depth int) (value.Value, error) {
	fr := &vm.frames[len(vm.frames)-1]
	code := fr.closure.Fn.Chunk.Code

	for {
		vm.steps++
		if vm.MaxSteps > 0 && vm.steps >= vm.MaxSteps {
			return nil, vm.runtimeError("step limit exceeded")
		}
		if vm.ctx != nil {
			select {
			case <-vm.ctx.Done():
				return nil, vm.runtimeErrorf("interrupted: %v", context.Cause(vm.ctx))
			default:
			}
		}

		op := value.Op(code[fr.ip])
		fr.ip++

		switch op {
		case value.OpConstant:
			c := fr.readConstant()
			if s, ok := c.(*value.String); ok {
				c = vm.internConstant(s)
			}
			vm.push(c)

		case value.OpNil:
			vm.push(value.Nil)
		case value.OpTrue:
			vm.push(value.True)
		case value.OpFalse:
			vm.push(value.False)
		case value.OpPop:
			vm.pop()
		case value.OpDup:
			vm.push(vm.peek(0))
		case value.OpDup2:
			a, b := vm.peek(1), vm.peek(0)
			vm.push(a)
			vm.push(b)

		case value.OpDefineGlobal:
			name := fr.readString()
			vm.globals.Set(name, vm.pop())

		case value.OpDefineFinalGlobal:
			name := fr.readString()
			vm.globals.Set(name, vm.pop())
			vm.finals[name.Chars] = struct{}{}

		case value.OpGetGlobal:
			name := fr.readString()
			v, ok := vm.globals.Get(name)
			if !ok {
				return nil, vm.runtimeErrorf("undefined global '%s'", name.Chars)
			}
			vm.push(v)

		case value.OpSetGlobal:
			name := fr.readString()
			if _, ok := vm.globals.Get(name); !ok {
				return nil, vm.runtimeErrorf("undefined global '%s'", name.Chars)
			}
			if _, final := vm.finals[name.Chars]; final {
				return nil, vm.runtimeErrorf("cannot assign to final global '%s'", name.Chars)
			}
			vm.globals.Set(name, vm.peek(0))

		case value.OpGetLocal:
			slot := int(fr.readByte())
			vm.push(vm.stack[fr.base+slot])

		case value.OpSetLocal:
			slot := int(fr.readByte())
			vm.stack[fr.base+slot] = vm.peek(0)

		case value.OpGetUpvalue:
			idx := fr.readByte()
			vm.push(*fr.closure.Upvalues[idx].Location)

		case value.OpSetUpvalue:
			idx := fr.readByte()
			*fr.closure.Upvalues[idx].Location = vm.peek(0)

		case value.OpCloseUpvalue:
			vm.closeUpvalues(vm.top - 1)
			vm.pop()

		case value.OpEqual:
			b, a := vm.pop(), vm.pop()
			vm.push(vm.compareEqual(a, b))
		case value.OpNotEqual:
			b, a := vm.pop(), vm.pop()
			vm.push(value.NewBool(!value.Equal(a, b)))
		case value.OpGreater, value.OpGreaterEqual, value.OpLess, value.OpLessEqual:
			b, a := vm.pop(), vm.pop()
			r, err := vm.compareOrder(orderOpByte(op), a, b)
			if err != nil {
				return nil, err
			}
			vm.push(r)

		case value.OpAdd:
			b, a := vm.pop(), vm.pop()
			r, err := vm.add(a, b)
			if err != nil {
				return nil, err
			}
			vm.push(r)

		case value.OpSubtract, value.OpMultiply, value.OpDivide, value.OpModulo, value.OpPow:
			b, a := vm.pop(), vm.pop()
			r, err := vm.arith(arithOpByte(op), a, b)
			if err != nil {
				return nil, err
			}
			vm.push(r)

		case value.OpNegate:
			r, err := vm.negate(vm.pop())
			if err != nil {
				return nil, err
			}
			vm.push(r)

		case value.OpNot:
			vm.push(value.NewBool(!value.Truthy(vm.pop())))

		case value.OpJump:
			off := fr.readUint16()
			fr.ip += int(off)
		case value.OpJumpIfFalse:
			off := fr.readUint16()
			if !value.Truthy(vm.peek(0)) {
				fr.ip += int(off)
			}
		case value.OpJumpIfTrue:
			off := fr.readUint16()
			if value.Truthy(vm.peek(0)) {
				fr.ip += int(off)
			}
		case value.OpLoop:
			off := fr.readUint16()
			fr.ip -= int(off)

		case value.OpCall:
			argCount := int(fr.readByte())
			callee := vm.peek(argCount)
			ok, err := vm.callValue(callee, argCount)
			if err != nil {
				return nil, err
			}
			if ok && len(vm.frames) > 0 && &vm.frames[len(vm.frames)-1] != fr {
				fr = &vm.frames[len(vm.frames)-1]
				code = fr.closure.Fn.Chunk.Code
			}

		case value.OpInvoke:
			name := fr.readString()
			argCount := int(fr.readByte())
			_, err := vm.invoke(name, argCount)
			if err != nil {
				return nil, err
			}
			fr = &vm.frames[len(vm.frames)-1]
			code = fr.closure.Fn.Chunk.Code

		case value.OpSuperInvoke:
			name := fr.readString()
			argCount := int(fr.readByte())
			superVal := vm.pop()
			super, ok := superVal.(*value.Class)
			if !ok {
				return nil, vm.runtimeError("'super' resolved to a non-class value")
			}
			if _, err := vm.invokeSuper(super, name, argCount); err != nil {
				return nil, err
			}
			fr = &vm.frames[len(vm.frames)-1]
			code = fr.closure.Fn.Chunk.Code

		case value.OpClosure:
			funIdx := fr.readByte()
			childFn := fr.closure.Fn.Chunk.Constants[funIdx].(*value.Function)
			closure := vm.allocClosure(childFn)
			for i := 0; i < childFn.UpvalueCount; i++ {
				isLocal := fr.readByte() != 0
				index := fr.readByte()
				if isLocal {
					closure.Upvalues[i] = vm.captureUpvalue(fr.base + int(index))
				} else {
					closure.Upvalues[i] = fr.closure.Upvalues[index]
				}
			}
			vm.push(closure)

		case value.OpReturn:
			result := vm.pop()
			vm.closeUpvalues(fr.base)
			returnBase := fr.base
			vm.frames = vm.frames[:len(vm.frames)-1]
			vm.top = returnBase
			if len(vm.frames) == depth {
				return result, nil
			}
			vm.push(result)
			fr = &vm.frames[len(vm.frames)-1]
			code = fr.closure.Fn.Chunk.Code

		case value.OpClass:
			name := fr.readString()
			vm.push(vm.allocClass(name.Chars))

		case value.OpMethod:
			name := fr.readString()
			closure := vm.pop().(*value.Closure)
			cls := vm.peek(0).(*value.Class)
			cls.Methods.Set(name, closure)

		case value.OpInherit:
			superVal := vm.peek(1)
			super, ok := superVal.(*value.Class)
			if !ok {
				return nil, vm.runtimeError("superclass must be a class")
			}
			sub := vm.peek(0).(*value.Class)
			super.Methods.Each(func(k, v value.Value) { sub.Methods.Set(k, v) })
			sub.Super = super
			vm.pop() // the subclass; the superclass stays as the "super" local

		case value.OpGetSuper:
			name := fr.readString()
			super := vm.pop().(*value.Class)
			self := vm.pop()
			method, ok := super.FindMethod(name)
			if !ok {
				return nil, vm.runtimeErrorf("undefined property '%s' on superclass %s", name.Chars, super.Name)
			}
			vm.push(vm.allocBoundMethod(self, method))

		case value.OpGetProperty:
			name := fr.readString()
			v, err := vm.getProperty(vm.peek(0), name)
			if err != nil {
				return nil, err
			}
			vm.pop()
			vm.push(v)

		case value.OpSetProperty:
			name := fr.readString()
			val := vm.pop()
			receiver := vm.pop()
			inst, ok := receiver.(*value.Instance)
			if !ok {
				return nil, vm.runtimeErrorf("cannot set properties on %s", receiver.Type())
			}
			inst.Fields.Set(name, val)
			vm.push(val)

		case value.OpList:
			count := int(fr.readByte())
			elems := make([]value.Value, count)
			copy(elems, vm.stack[vm.top-count:vm.top])
			vm.top -= count
			vm.push(vm.allocList(elems))

		case value.OpDict:
			count := int(fr.readByte())
			base := vm.top - 2*count
			d := vm.allocDict()
			for i := 0; i < count; i++ {
				d.Table.Set(vm.stack[base+2*i], vm.stack[base+2*i+1])
			}
			vm.top = base
			vm.push(d)

		case value.OpEnum:
			nameIdx := fr.readByte()
			count := int(fr.readByte())
			consts := fr.closure.Fn.Chunk.Constants
			name := consts[nameIdx].(*value.String)
			e := vm.allocEnum(name.Chars)
			for i := 0; i < count; i++ {
				member := consts[int(nameIdx)+1+i].(*value.String)
				e.Values.Set(member, vm.allocEnumValue(e, member.Chars, i))
			}
			vm.push(e)

		case value.OpGetIndex:
			index := vm.pop()
			container := vm.pop()
			v, err := vm.getIndex(container, index)
			if err != nil {
				return nil, err
			}
			vm.push(v)

		case value.OpSetIndex:
			val := vm.pop()
			index := vm.pop()
			container := vm.pop()
			if err := vm.setIndex(container, index, val); err != nil {
				return nil, err
			}
			vm.push(val)

		case value.OpSlice:
			end := vm.pop()
			start := vm.pop()
			container := vm.pop()
			v, err := vm.slice(container, start, end)
			if err != nil {
				return nil, err
			}
			vm.push(v)

		case value.OpHas:
			haystack := vm.pop()
			needle := vm.pop()
			ok, err := vm.has(needle, haystack)
			if err != nil {
				return nil, err
			}
			vm.push(value.NewBool(ok))

		case value.OpHasNot:
			haystack := vm.pop()
			needle := vm.pop()
			ok, err := vm.has(needle, haystack)
			if err != nil {
				return nil, err
			}
			vm.push(value.NewBool(!ok))

		case value.OpLen:
			v, err := vm.length(vm.pop())
			if err != nil {
				return nil, err
			}
			vm.push(v)

		case value.OpImport:
			pathConst := fr.readString()
			mod, err := vm.importModule(pathConst.Chars)
			if err != nil {
				return nil, err
			}
			vm.globals.Set(vm.intern(mod.Name), mod)

		case value.OpImportAs:
			pathConst := fr.readString()
			asName := fr.readString()
			mod, err := vm.importModule(pathConst.Chars)
			if err != nil {
				return nil, err
			}
			vm.globals.Set(asName, mod)

		case value.OpInterpolate:
			count := int(fr.readByte())
			base := vm.top - count
			var sb []byte
			for i := 0; i < count; i++ {
				sb = append(sb, vm.stringify(vm.stack[base+i])...)
			}
			vm.top = base
			vm.push(vm.intern(string(sb)))

		case value.OpAssert:
			if !value.Truthy(vm.pop()) {
				return nil, vm.runtimeError("assertion failed")
			}

		default:
			return nil, vm.runtimeErrorf("unimplemented opcode %s", op)
		}
	}
}

func orderOpByte(op value.Op) byte {
	switch op {
	case value.OpGreater:
		return '>'
	case value.OpGreaterEqual:
		return 'G'
	case value.OpLess:
		return '<'
	default:
		return 'L'
	}
}

func arithOpByte(op value.Op) byte {
	switch op {
	case value.OpSubtract:
		return '-'
	case value.OpMultiply:
		return '*'
	case value.OpDivide:
		return '/'
	case value.OpModulo:
		return '%'
	default:
		return '^'
	}
}

// stringify renders v for string interpolation: strings pass through
// unquoted, everything else uses its own String() (spec.md opcode
// catalog's INTERPOLATE: "concatenate top N values as strings").
func (vm *VM) stringify(v value.Value) string {
	if s, ok := v.(*value.String); ok {
		return s.Chars
	}
	return v.String()
}

// internConstant folds a compile-time string constant into the VM's intern
// table if an equal-content string is already interned, without tracking
// or allocating — the constant is already permanently owned by its
// Chunk (see DESIGN.md's "compile-time constants are never linked into
// the sweep list").
func (vm *VM) internConstant(s *value.String) *value.String {
	if existing := vm.strings.FindString(s.Chars, s.Hash); existing != nil {
		return existing
	}
	vm.strings.Set(s, value.True)
	return s
}

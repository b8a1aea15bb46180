package compiler

import (
	"github.com/mhr3/slo/lang/token"
	"github.com/mhr3/slo/lang/value"
)

func (c *Compiler) beginScope() { c.fs.scopeDepth++ }

// endScope pops locals declared in the scope just closed, closing any that
// were captured by a nested closure (OP_CLOSE_UPVALUE) and discarding the
// rest (OP_POP) — spec.md §4.2's scope-exit sequence.
func (c *Compiler) endScope() {
	c.fs.scopeDepth--
	locals := c.fs.locals
	for len(locals) > 0 && locals[len(locals)-1].depth > c.fs.scopeDepth {
		last := locals[len(locals)-1]
		if last.captured {
			c.emitOp(value.OpCloseUpvalue)
		} else {
			c.emitOp(value.OpPop)
		}
		locals = locals[:len(locals)-1]
	}
	c.fs.locals = locals
}

func (c *Compiler) declareVariable(name string) {
	if c.fs.scopeDepth == 0 {
		return // globals are resolved dynamically by name, not by slot
	}
	for i := len(c.fs.locals) - 1; i >= 0; i-- {
		l := c.fs.locals[i]
		if l.depth != -1 && l.depth < c.fs.scopeDepth {
			break
		}
		if l.name == name {
			c.error("a variable named '" + name + "' already exists in this scope")
		}
	}
	c.addLocal(name)
}

func (c *Compiler) addLocal(name string) {
	if len(c.fs.locals) >= 256 {
		c.error("too many local variables in one function")
		return
	}
	c.fs.locals = append(c.fs.locals, local{name: name, depth: -1})
}

func (c *Compiler) markInitialized() {
	if c.fs.scopeDepth == 0 {
		return
	}
	c.fs.locals[len(c.fs.locals)-1].depth = c.fs.scopeDepth
}

func resolveLocalIn(fs *funcScope, name string) int {
	for i := len(fs.locals) - 1; i >= 0; i-- {
		if fs.locals[i].name == name {
			return i
		}
	}
	return -1
}

func (c *Compiler) resolveLocal(fs *funcScope, name string) int {
	idx := resolveLocalIn(fs, name)
	if idx != -1 && fs.locals[idx].depth == -1 {
		c.error("cannot read local variable '" + name + "' in its own initializer")
	}
	return idx
}

// resolveUpvalue finds name in an enclosing function, adding (or reusing) an
// upvalue slot in every function scope between fs and the defining scope
// (spec.md §4.2's "Upvalues").
func (c *Compiler) resolveUpvalue(fs *funcScope, name string) int {
	if fs.enclosing == nil {
		return -1
	}
	if local := c.resolveLocal(fs.enclosing, name); local != -1 {
		fs.enclosing.locals[local].captured = true
		return c.addUpvalue(fs, uint8(local), true)
	}
	if up := c.resolveUpvalue(fs.enclosing, name); up != -1 {
		return c.addUpvalue(fs, uint8(up), false)
	}
	return -1
}

func (c *Compiler) addUpvalue(fs *funcScope, index uint8, isLocal bool) int {
	for i, u := range fs.upvalues {
		if u.index == index && u.isLocal == isLocal {
			return i
		}
	}
	if len(fs.upvalues) >= 256 {
		c.error("too many captured variables in one function")
		return 0
	}
	fs.upvalues = append(fs.upvalues, upvalueRef{index: index, isLocal: isLocal})
	return len(fs.upvalues) - 1
}

// parseVariable consumes an identifier, declares it as a local if inside a
// scope, and returns the name constant index to use for DEFINE_GLOBAL (0 if
// the variable is local, since locals need no name operand).
func (c *Compiler) parseVariable(errMsg string) byte {
	c.consume(token.IDENT, errMsg)
	name := c.prev.Lexeme
	c.declareVariable(name)
	if c.fs.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(name)
}

func (c *Compiler) defineVariable(global byte, final bool) {
	if c.fs.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	op := value.OpDefineGlobal
	if final {
		op = value.OpDefineFinalGlobal
	}
	c.emitOpByte(op, global)
}

// namedVariable compiles a read or, if canAssign and an `=`/compound
// assignment follows, a write of the variable called name.
func (c *Compiler) namedVariable(name string, canAssign bool) {
	var getOp, setOp value.Op
	var arg int

	if idx := c.resolveLocal(c.fs, name); idx != -1 {
		getOp, setOp, arg = value.OpGetLocal, value.OpSetLocal, idx
	} else if idx := c.resolveUpvalue(c.fs, name); idx != -1 {
		getOp, setOp, arg = value.OpGetUpvalue, value.OpSetUpvalue, idx
	} else {
		arg = int(c.identifierConstant(name))
		getOp, setOp = value.OpGetGlobal, value.OpSetGlobal
	}

	if canAssign && c.match(token.EQ) {
		c.expression()
		c.emitOpByte(setOp, byte(arg))
		return
	}
	if canAssign && c.matchCompoundAssign() {
		op := c.prev.Kind
		c.emitOpByte(getOp, byte(arg))
		c.expression()
		c.emitCompoundOp(op)
		c.emitOpByte(setOp, byte(arg))
		return
	}
	if canAssign && (c.check(token.PLUS_PLUS) || c.check(token.MINUS_MINUS)) {
		incr := c.check(token.PLUS_PLUS)
		c.advance()
		c.emitOpByte(getOp, byte(arg))
		c.emitConstant(value.Number(1))
		if incr {
			c.emitOp(value.OpAdd)
		} else {
			c.emitOp(value.OpSubtract)
		}
		c.emitOpByte(setOp, byte(arg))
		return
	}
	c.emitOpByte(getOp, byte(arg))
}

func (c *Compiler) matchCompoundAssign() bool {
	switch c.cur.Kind {
	case token.PLUS_EQ, token.MINUS_EQ, token.STAR_EQ, token.SLASH_EQ:
		c.advance()
		return true
	}
	return false
}

func (c *Compiler) emitCompoundOp(k token.Kind) {
	switch k {
	case token.PLUS_EQ:
		c.emitOp(value.OpAdd)
	case token.MINUS_EQ:
		c.emitOp(value.OpSubtract)
	case token.STAR_EQ:
		c.emitOp(value.OpMultiply)
	case token.SLASH_EQ:
		c.emitOp(value.OpDivide)
	}
}

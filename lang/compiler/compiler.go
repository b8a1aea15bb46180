// Package compiler implements slo's single-pass compiler: a Pratt-style
// recursive-descent parser over the scanner's token stream that emits
// bytecode directly into a value.Chunk, with no intermediate AST (spec.md
// §1, §4.2). It also resolves lexical scopes, upvalue capture, and
// class/method compile-time state.
package compiler

import (
	"github.com/mhr3/slo/lang/diag"
	"github.com/mhr3/slo/lang/scanner"
	"github.com/mhr3/slo/lang/token"
	"github.com/mhr3/slo/lang/value"
)

// funcType distinguishes the kind of function currently being compiled,
// which affects slot 0's meaning and how a bare `return` behaves.
type funcType int

const (
	funcScript funcType = iota
	funcFunction
	funcMethod
	funcInitializer
)

// local is one entry in a funcScope's locals array (spec.md §4.2).
type local struct {
	name     string
	depth    int // -1 while declared but not yet defined
	captured bool
}

// upvalueRef is one entry in a funcScope's upvalues array.
type upvalueRef struct {
	index   uint8
	isLocal bool
}

// funcScope holds the per-function compile state described in spec.md
// §4.2's "Scope and resolver": one is pushed per function literal being
// compiled, forming a stack through enclosing.
type funcScope struct {
	enclosing   *funcScope
	fn          *value.Function
	kind        funcType
	locals      []local
	upvalues    []upvalueRef
	scopeDepth  int
	strConstant map[string]byte // interned-string constant dedup, keyed by Chars
}

// classScope holds compile-time state while compiling a class body
// (spec.md §4.2's "Class state").
type classScope struct {
	enclosing     *classScope
	hasSuperclass bool
}

// loopScope tracks a single loop's LOOP target and any pending `break`
// JUMP placeholders that must be patched to just past the loop (SPEC_FULL.md
// supplement: break/continue compile to JUMP/LOOP, no new opcodes).
type loopScope struct {
	enclosing  *loopScope
	loopStart  int
	scopeDepth int
	breakJumps []int
}

// Compiler is the single-pass compiler. The zero value is not usable; use
// Compile.
type Compiler struct {
	sc       scanner.Scanner
	cur      token.Token
	prev     token.Token
	file     string
	errs     diag.CompileErrors
	panicking bool

	fs    *funcScope
	class *classScope
	loop  *loopScope
}

// Compile compiles source into a top-level Function whose Chunk is the
// program's bytecode. On any compile error it returns (nil, error), where
// error is a diag.CompileErrors listing every panic-mode-recovered error
// found in one pass (spec.md §7).
func Compile(source []byte, file string) (*value.Function, error) {
	c := &Compiler{file: file}
	c.sc.Init(source)

	fn := value.NewFunction("", file)
	c.fs = &funcScope{fn: fn, kind: funcScript}
	// slot 0 is reserved for the callee itself (spec.md §3's call-frame
	// invariant: "slot[0] is the callee (closure or bound receiver)").
	c.fs.locals = append(c.fs.locals, local{name: "", depth: 0})

	c.advance()
	for !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.EOF, "expected end of file")

	f := c.endFunction()
	if err := c.errs.Err(); err != nil {
		return nil, err
	}
	return f, nil
}

// --- token stream plumbing ---

func (c *Compiler) advance() {
	c.prev = c.cur
	for {
		c.cur = c.sc.Scan()
		if c.cur.Kind != token.ILLEGAL {
			break
		}
		c.errorAtCurrent(c.cur.Lexeme)
	}
}

func (c *Compiler) check(k token.Kind) bool { return c.cur.Kind == k }

func (c *Compiler) match(k token.Kind) bool {
	if !c.check(k) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(k token.Kind, msg string) {
	if c.cur.Kind == k {
		c.advance()
		return
	}
	c.errorAtCurrent(msg)
}

// --- error reporting: panic-mode recovery (spec.md §7) ---

func (c *Compiler) errorAtCurrent(msg string) { c.errorAt(c.cur, msg) }
func (c *Compiler) error(msg string)          { c.errorAt(c.prev, msg) }

func (c *Compiler) errorAt(tok token.Token, msg string) {
	if c.panicking {
		return
	}
	c.panicking = true
	near := ""
	if tok.Kind != token.EOF {
		near = tok.String()
	}
	c.errs.Add(tok.Line, near, msg)
}

// synchronize skips tokens until a statement boundary, so a single pass can
// keep looking for further errors after one is found (spec.md §7's "panic
// mode").
func (c *Compiler) synchronize() {
	c.panicking = false
	for c.cur.Kind != token.EOF {
		if c.prev.Kind == token.SEMI {
			return
		}
		switch c.cur.Kind {
		case token.CLASS, token.FUNC, token.VAR, token.FOR, token.IF,
			token.WHILE, token.RETURN, token.FINAL, token.IMPORT, token.ENUM, token.ASSERT,
			token.BREAK, token.CONTINUE:
			return
		}
		c.advance()
	}
}

// --- bytecode emission ---

func (c *Compiler) chunk() *value.Chunk { return c.fs.fn.Chunk }

func (c *Compiler) emitByte(b byte) int { return c.chunk().Write(b, c.prev.Line) }

func (c *Compiler) emitOp(op value.Op) int { return c.chunk().WriteOp(op, c.prev.Line) }

func (c *Compiler) emitOpByte(op value.Op, arg byte) {
	c.emitOp(op)
	c.emitByte(arg)
}

func (c *Compiler) emitOpByte2(op value.Op, a, b byte) {
	c.emitOp(op)
	c.emitByte(a)
	c.emitByte(b)
}

// emitJump emits op followed by a 2-byte placeholder and returns the
// placeholder's offset, for later patchJump (spec.md §4.2).
func (c *Compiler) emitJump(op value.Op) int {
	c.emitOp(op)
	return c.chunk().WriteUint16(0xFFFF, c.prev.Line)
}

func (c *Compiler) patchJump(offset int) {
	jump := len(c.chunk().Code) - offset - 2
	if jump > 0xFFFF {
		c.error("too much code to jump over")
	}
	c.chunk().PatchUint16(offset, uint16(jump))
}

// emitLoop emits OP_LOOP with the back-offset computed against loopStart.
func (c *Compiler) emitLoop(loopStart int) {
	c.emitOp(value.OpLoop)
	offset := len(c.chunk().Code) - loopStart + 2
	if offset > 0xFFFF {
		c.error("loop body too large")
	}
	c.chunk().WriteUint16(uint16(offset), c.prev.Line)
}

// makeConstant appends v to the current function's constant pool and
// returns its index. String constants are deduplicated by content (their
// Chars); other constants are appended verbatim. So the same name or literal
// referenced repeatedly in one function reuses one slot instead of
// exhausting MaxConstants.
func (c *Compiler) makeConstant(v value.Value) byte {
	if s, ok := v.(*value.String); ok {
		if c.fs.strConstant == nil {
			c.fs.strConstant = make(map[string]byte)
		}
		if idx, ok := c.fs.strConstant[s.Chars]; ok {
			return idx
		}
		idx, err := c.chunk().AddConstant(v)
		if err != nil {
			c.error(err.Error())
			return 0
		}
		c.fs.strConstant[s.Chars] = byte(idx)
		return byte(idx)
	}

	idx, err := c.chunk().AddConstant(v)
	if err != nil {
		c.error(err.Error())
		return 0
	}
	return byte(idx)
}

func (c *Compiler) emitConstant(v value.Value) {
	c.emitOpByte(value.OpConstant, c.makeConstant(v))
}

// identifierConstant interns name's text as a String constant, used for
// every nameIdx operand (globals, properties, methods), reusing the same
// constant-pool slot on repeat occurrences of the same name.
func (c *Compiler) identifierConstant(name string) byte {
	return c.makeConstant(value.NewString(name))
}

func (c *Compiler) emitReturn() {
	if c.fs.kind == funcInitializer {
		// `init` methods always return the instance, bound at local slot 0.
		c.emitOpByte(value.OpGetLocal, 0)
	} else {
		c.emitOp(value.OpNil)
	}
	c.emitOp(value.OpReturn)
}

func (c *Compiler) endFunction() *value.Function {
	c.emitReturn()
	fn := c.fs.fn
	fn.UpvalueCount = len(c.fs.upvalues)
	c.fs = c.fs.enclosing
	return fn
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

package compiler

import (
	"github.com/mhr3/slo/lang/token"
	"github.com/mhr3/slo/lang/value"
)

// declaration is the top of the statement grammar: it dispatches to the
// var/func/class/enum/import forms, falling back to statement, and
// resynchronizes after any panic-mode error (spec.md §7).
func (c *Compiler) declaration() {
	switch {
	case c.match(token.VAR):
		c.varDeclaration(false)
	case c.match(token.FINAL):
		c.finalDeclaration()
	case c.match(token.FUNC):
		c.funcDeclaration()
	case c.match(token.CLASS):
		c.classDeclaration()
	case c.match(token.ENUM):
		c.enumDeclaration()
	case c.match(token.IMPORT):
		c.importStatement()
	default:
		c.statement()
	}
	if c.panicking {
		c.synchronize()
	}
}

func (c *Compiler) finalDeclaration() {
	c.consume(token.VAR, "expected 'var' after 'final'")
	c.varDeclaration(true)
}

func (c *Compiler) varDeclaration(final bool) {
	global := c.parseVariable("expected a variable name")
	if c.match(token.EQ) {
		c.expression()
	} else {
		c.emitOp(value.OpNil)
	}
	c.consumeStmtEnd("expected ';' after variable declaration")
	c.defineVariable(global, final)
}

// consumeStmtEnd accepts either an explicit `;` or lets a statement end at
// `}`/EOF, matching slo's optional-semicolon style at block boundaries.
func (c *Compiler) consumeStmtEnd(msg string) {
	if c.match(token.SEMI) {
		return
	}
	if c.check(token.RBRACE) || c.check(token.EOF) {
		return
	}
	c.errorAtCurrent(msg)
}

func (c *Compiler) statement() {
	switch {
	case c.match(token.IF):
		c.ifStatement()
	case c.match(token.WHILE):
		c.whileStatement()
	case c.match(token.FOR):
		c.forStatement()
	case c.match(token.RETURN):
		c.returnStatement()
	case c.match(token.ASSERT):
		c.assertStatement()
	case c.match(token.LBRACE):
		c.beginScope()
		c.block()
		c.endScope()
	case c.match(token.BREAK):
		c.breakStatement()
	case c.match(token.CONTINUE):
		c.continueStatement()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) block() {
	for !c.check(token.RBRACE) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RBRACE, "expected '}' after block")
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consumeStmtEnd("expected ';' after expression")
	c.emitOp(value.OpPop)
}

func (c *Compiler) ifStatement() {
	c.consume(token.LPAREN, "expected '(' after 'if'")
	c.expression()
	c.consume(token.RPAREN, "expected ')' after condition")

	thenJump := c.emitJump(value.OpJumpIfFalse)
	c.emitOp(value.OpPop)
	c.statement()

	elseJump := c.emitJump(value.OpJump)
	c.patchJump(thenJump)
	c.emitOp(value.OpPop)

	if c.match(token.ELIF) {
		c.ifStatement()
	} else if c.match(token.ELSE) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) whileStatement() {
	loop := &loopScope{enclosing: c.loop, loopStart: len(c.chunk().Code), scopeDepth: c.fs.scopeDepth}
	c.loop = loop

	c.consume(token.LPAREN, "expected '(' after 'while'")
	c.expression()
	c.consume(token.RPAREN, "expected ')' after condition")

	exitJump := c.emitJump(value.OpJumpIfFalse)
	c.emitOp(value.OpPop)
	c.statement()
	c.emitLoop(loop.loopStart)

	c.patchJump(exitJump)
	c.emitOp(value.OpPop)

	c.patchLoopBreaks(loop)
	c.loop = loop.enclosing
}

func (c *Compiler) forStatement() {
	c.beginScope()
	c.consume(token.LPAREN, "expected '(' after 'for'")

	switch {
	case c.match(token.SEMI):
		// no initializer
	case c.match(token.VAR):
		c.varDeclaration(false)
	default:
		c.expressionStatement()
	}

	loop := &loopScope{enclosing: c.loop, scopeDepth: c.fs.scopeDepth}
	c.loop = loop
	loop.loopStart = len(c.chunk().Code)

	exitJump := -1
	if !c.match(token.SEMI) {
		c.expression()
		c.consume(token.SEMI, "expected ';' after loop condition")
		exitJump = c.emitJump(value.OpJumpIfFalse)
		c.emitOp(value.OpPop)
	}

	if !c.check(token.RPAREN) {
		bodyJump := c.emitJump(value.OpJump)
		incrStart := len(c.chunk().Code)
		c.expression()
		c.emitOp(value.OpPop)
		c.consume(token.RPAREN, "expected ')' after for clauses")

		c.emitLoop(loop.loopStart)
		loop.loopStart = incrStart
		c.patchJump(bodyJump)
	} else {
		c.advance() // consume ')'
	}

	c.statement()
	c.emitLoop(loop.loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitOp(value.OpPop)
	}

	c.patchLoopBreaks(loop)
	c.loop = loop.enclosing
	c.endScope()
}

func (c *Compiler) patchLoopBreaks(loop *loopScope) {
	for _, off := range loop.breakJumps {
		c.patchJump(off)
	}
}

func (c *Compiler) breakStatement() {
	if c.loop == nil {
		c.error("'break' used outside of a loop")
		return
	}
	c.popLocalsToLoopScope(c.loop)
	jump := c.emitJump(value.OpJump)
	c.loop.breakJumps = append(c.loop.breakJumps, jump)
	c.consumeStmtEnd("expected ';' after 'break'")
}

func (c *Compiler) continueStatement() {
	if c.loop == nil {
		c.error("'continue' used outside of a loop")
		return
	}
	c.popLocalsToLoopScope(c.loop)
	c.emitLoop(c.loop.loopStart)
	c.consumeStmtEnd("expected ';' after 'continue'")
}

// popLocalsToLoopScope emits POP/CLOSE_UPVALUE for locals declared inside
// the loop body before a break/continue jumps out of their scope, without
// touching the compiler's own locals bookkeeping (the jump leaves the
// enclosing block() / endScope() to reconcile it normally).
func (c *Compiler) popLocalsToLoopScope(loop *loopScope) {
	for i := len(c.fs.locals) - 1; i >= 0; i-- {
		if c.fs.locals[i].depth <= loop.scopeDepth {
			break
		}
		if c.fs.locals[i].captured {
			c.emitOp(value.OpCloseUpvalue)
		} else {
			c.emitOp(value.OpPop)
		}
	}
}

func (c *Compiler) returnStatement() {
	if c.fs.kind == funcScript {
		c.error("'return' is only valid inside a function")
	}
	if c.match(token.SEMI) || c.check(token.RBRACE) {
		c.emitReturn()
		return
	}
	if c.fs.kind == funcInitializer {
		c.error("'init' may not return a value")
	}
	c.expression()
	c.consumeStmtEnd("expected ';' after return value")
	c.emitOp(value.OpReturn)
}

func (c *Compiler) assertStatement() {
	c.expression()
	c.consumeStmtEnd("expected ';' after assert expression")
	c.emitOp(value.OpAssert)
}

func (c *Compiler) importStatement() {
	c.consume(token.STRING, "expected a module path string after 'import'")
	path := c.identifierConstant(c.prev.Lexeme)

	if c.match(token.AS) {
		c.consume(token.IDENT, "expected a name after 'as'")
		alias := c.identifierConstant(c.prev.Lexeme)
		c.emitOpByte2(value.OpImportAs, path, alias)
	} else {
		c.emitOpByte(value.OpImport, path)
	}
	c.consumeStmtEnd("expected ';' after import statement")
}

// --- functions ---

func (c *Compiler) funcDeclaration() {
	global := c.parseVariable("expected a function name")
	c.markInitialized()
	c.compileFunction(funcFunction)
	c.defineVariable(global, false)
}

// compileFunction compiles a function literal's parameter list and body,
// emitting OP_CLOSURE (with its trailing upvalue-descriptor pairs) into the
// enclosing chunk. c.prev is the function's name token for a declaration or
// method, or the 'func' keyword itself for an anonymous function expression.
func (c *Compiler) compileFunction(kind funcType) {
	name := ""
	if c.prev.Kind == token.IDENT {
		name = c.prev.Lexeme
	}

	fn := value.NewFunction(name, c.file)
	c.fs = &funcScope{enclosing: c.fs, fn: fn, kind: kind}
	// slot 0: the receiver for methods/initializers, unnamed (inaccessible)
	// for plain functions.
	slot0 := ""
	if kind == funcMethod || kind == funcInitializer {
		slot0 = "self"
	}
	c.fs.locals = append(c.fs.locals, local{name: slot0, depth: 0})

	c.beginScope()
	c.consume(token.LPAREN, "expected '(' after function name")
	if !c.check(token.RPAREN) {
		for {
			fn.Arity++
			if fn.Arity > 255 {
				c.error("a function may not have more than 255 parameters")
			}
			paramConst := c.parseVariable("expected a parameter name")
			c.defineVariable(paramConst, false)
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "expected ')' after parameters")
	c.consume(token.LBRACE, "expected '{' before function body")
	c.block()

	upvalues := c.fs.upvalues
	compiled := c.endFunction()

	idx := c.makeConstant(compiled)
	c.emitOpByte(value.OpClosure, idx)
	for _, u := range upvalues {
		c.emitByte(boolByte(u.isLocal))
		c.emitByte(u.index)
	}
}

package compiler

import (
	"github.com/mhr3/slo/lang/token"
	"github.com/mhr3/slo/lang/value"
)

// classDeclaration compiles `class Name [extends Super] { methods... }`
// (spec.md's single-inheritance class model, §4.4).
func (c *Compiler) classDeclaration() {
	c.consume(token.IDENT, "expected a class name")
	nameTok := c.prev
	nameConst := c.identifierConstant(nameTok.Lexeme)
	c.declareVariable(nameTok.Lexeme)

	c.emitOpByte(value.OpClass, nameConst)
	c.defineVariable(nameConst, false)

	cs := &classScope{enclosing: c.class}
	c.class = cs

	if c.match(token.EXTENDS) {
		c.consume(token.IDENT, "expected a superclass name")
		if c.prev.Lexeme == nameTok.Lexeme {
			c.error("a class may not extend itself")
		}
		c.variable(false)

		c.beginScope()
		c.addLocal("super")
		c.markInitialized()

		c.namedVariable(nameTok.Lexeme, false)
		c.emitOp(value.OpInherit)
		cs.hasSuperclass = true
	}

	c.namedVariable(nameTok.Lexeme, false)
	c.consume(token.LBRACE, "expected '{' before class body")
	for !c.check(token.RBRACE) && !c.check(token.EOF) {
		c.method()
	}
	c.consume(token.RBRACE, "expected '}' after class body")
	c.emitOp(value.OpPop) // pop the class itself, left by namedVariable above

	if cs.hasSuperclass {
		c.endScope()
	}
	c.class = cs.enclosing
}

func (c *Compiler) method() {
	c.consume(token.IDENT, "expected a method name")
	nameTok := c.prev
	nameConst := c.identifierConstant(nameTok.Lexeme)

	kind := funcMethod
	if nameTok.Lexeme == "init" {
		kind = funcInitializer
	}
	c.compileFunction(kind)
	c.emitOpByte(value.OpMethod, nameConst)
}

// enumDeclaration compiles `enum Name { A, B, C }` into OP_ENUM. Member name
// constants are added to the pool immediately after the enum's own name
// constant, in declaration order, so the VM can address them as nameIdx+1 ..
// nameIdx+count (SPEC_FULL.md's supplemented enum type).
func (c *Compiler) enumDeclaration() {
	c.consume(token.IDENT, "expected an enum name")
	enumName := c.prev.Lexeme
	nameConst := c.identifierConstant(c.prev.Lexeme)
	global := nameConst
	c.declareVariable(c.prev.Lexeme)

	c.consume(token.LBRACE, "expected '{' before enum body")
	count := 0
	var members []string
	if !c.check(token.RBRACE) {
		for {
			c.consume(token.IDENT, "expected an enum member name")
			members = append(members, c.prev.Lexeme)
			count++
			if count > 255 {
				c.error("too many members in an enum")
			}
			if !c.match(token.COMMA) || c.check(token.RBRACE) {
				break
			}
		}
	}
	c.consume(token.RBRACE, "expected '}' after enum body")

	// Added without makeConstant's dedup so the run of constants is contiguous.
	for i, s := range append([]string{enumName}, members...) {
		idx, err := c.chunk().AddConstant(value.NewString(s))
		if err != nil {
			c.error(err.Error())
			break
		}
		if i == 0 {
			nameConst = byte(idx)
		}
	}

	c.emitOp(value.OpEnum)
	c.emitByte(nameConst)
	c.emitByte(byte(count))
	c.defineVariable(global, true) // enums are implicitly final bindings
}

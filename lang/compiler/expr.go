package compiler

import (
	"strconv"
	"strings"

	"github.com/mhr3/slo/lang/token"
	"github.com/mhr3/slo/lang/value"
)

type precedence int

const (
	precNone       precedence = iota
	precAssignment            // =
	precOr                    // or
	precAnd                   // and
	precEquality              // == !=
	precComparison            // < > <= >=
	precTerm                  // + -
	precFactor                // * / %
	precExponent              // **
	precUnary                 // ! - (unary)
	precCall                  // . () []
	precPrimary
)

type parseFn func(c *Compiler, canAssign bool)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence precedence
}

var rules map[token.Kind]parseRule

func init() {
	rules = map[token.Kind]parseRule{
		token.LPAREN:      {prefix: (*Compiler).grouping, infix: (*Compiler).call, precedence: precCall},
		token.LBRACK:      {prefix: (*Compiler).listLiteral, infix: (*Compiler).index, precedence: precCall},
		token.LBRACE:      {prefix: (*Compiler).dictLiteral},
		token.DOT:         {infix: (*Compiler).dot, precedence: precCall},
		token.MINUS:       {prefix: (*Compiler).unary, infix: (*Compiler).binary, precedence: precTerm},
		token.PLUS:        {infix: (*Compiler).binary, precedence: precTerm},
		token.SLASH:       {infix: (*Compiler).binary, precedence: precFactor},
		token.STAR:        {infix: (*Compiler).binary, precedence: precFactor},
		token.PERCENT:     {infix: (*Compiler).binary, precedence: precFactor},
		token.STAR_STAR:   {infix: (*Compiler).binary, precedence: precExponent},
		token.BANG:        {prefix: (*Compiler).unary},
		token.BANG_EQ:     {infix: (*Compiler).binary, precedence: precEquality},
		token.EQ_EQ:       {infix: (*Compiler).binary, precedence: precEquality},
		token.GT:          {infix: (*Compiler).binary, precedence: precComparison},
		token.GE:          {infix: (*Compiler).binary, precedence: precComparison},
		token.LT:          {infix: (*Compiler).binary, precedence: precComparison},
		token.LE:          {infix: (*Compiler).binary, precedence: precComparison},
		token.IDENT:       {prefix: (*Compiler).variable},
		token.STRING:      {prefix: (*Compiler).stringLiteral},
		token.NUMBER:      {prefix: (*Compiler).number},
		token.AND:         {infix: (*Compiler).and, precedence: precAnd},
		token.OR:          {infix: (*Compiler).or, precedence: precOr},
		token.IN:          {infix: (*Compiler).in, precedence: precComparison},
		token.FALSE:       {prefix: (*Compiler).literal},
		token.TRUE:        {prefix: (*Compiler).literal},
		token.NIL:         {prefix: (*Compiler).literal},
		token.SELF:        {prefix: (*Compiler).self},
		token.SUPER:       {prefix: (*Compiler).super},
		token.FUNC:        {prefix: (*Compiler).funcExpr},
	}
}

func (c *Compiler) getRule(k token.Kind) parseRule { return rules[k] }

func (c *Compiler) expression() { c.parsePrecedence(precAssignment) }

func (c *Compiler) parsePrecedence(p precedence) {
	c.advance()
	prefix := c.getRule(c.prev.Kind).prefix
	if prefix == nil {
		c.error("expected an expression")
		return
	}
	canAssign := p <= precAssignment
	prefix(c, canAssign)

	for p <= c.getRule(c.cur.Kind).precedence {
		c.advance()
		infix := c.getRule(c.prev.Kind).infix
		infix(c, canAssign)
	}

	if canAssign && (c.match(token.EQ) || c.matchCompoundAssign()) {
		c.error("invalid assignment target")
	}
}

// --- prefix rules ---

func (c *Compiler) grouping(_ bool) {
	c.expression()
	c.consume(token.RPAREN, "expected ')' after expression")
}

func (c *Compiler) number(_ bool) {
	n, err := strconv.ParseFloat(c.prev.Lexeme, 64)
	if err != nil {
		c.error("invalid number literal '" + c.prev.Lexeme + "'")
		return
	}
	c.emitConstant(value.Number(n))
}

func (c *Compiler) literal(_ bool) {
	switch c.prev.Kind {
	case token.FALSE:
		c.emitOp(value.OpFalse)
	case token.TRUE:
		c.emitOp(value.OpTrue)
	case token.NIL:
		c.emitOp(value.OpNil)
	}
}

func (c *Compiler) stringLiteral(_ bool) {
	c.compileStringToken(c.prev)
}

func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.prev.Lexeme, canAssign)
}

func (c *Compiler) self(_ bool) {
	if c.class == nil {
		c.error("'self' may only be used inside a method")
		return
	}
	c.namedVariable("self", false)
}

func (c *Compiler) super(_ bool) {
	if c.class == nil {
		c.error("'super' may only be used inside a method")
		return
	} else if !c.class.hasSuperclass {
		c.error("'super' may only be used in a class that extends another")
		return
	}
	c.consume(token.DOT, "expected '.' after 'super'")
	c.consume(token.IDENT, "expected a method name after 'super.'")
	name := c.identifierConstant(c.prev.Lexeme)

	c.namedVariable("self", false)
	if c.match(token.LPAREN) {
		argCount := c.argumentList()
		c.namedVariable("super", false)
		c.emitOpByte2(value.OpSuperInvoke, name, byte(argCount))
		return
	}
	c.namedVariable("super", false)
	c.emitOpByte(value.OpGetSuper, name)
}

func (c *Compiler) unary(_ bool) {
	op := c.prev.Kind
	c.parsePrecedence(precUnary)
	switch op {
	case token.MINUS:
		c.emitOp(value.OpNegate)
	case token.BANG:
		c.emitOp(value.OpNot)
	}
}

func (c *Compiler) listLiteral(_ bool) {
	count := 0
	if !c.check(token.RBRACK) {
		for {
			c.expression()
			count++
			if !c.match(token.COMMA) || c.check(token.RBRACK) {
				break
			}
		}
	}
	c.consume(token.RBRACK, "expected ']' after list elements")
	if count > 255 {
		c.error("too many elements in a list literal")
	}
	c.emitOpByte(value.OpList, byte(count))
}

func (c *Compiler) dictLiteral(_ bool) {
	count := 0
	if !c.check(token.RBRACE) {
		for {
			c.expression()
			c.consume(token.COLON, "expected ':' after dict key")
			c.expression()
			count++
			if !c.match(token.COMMA) || c.check(token.RBRACE) {
				break
			}
		}
	}
	c.consume(token.RBRACE, "expected '}' after dict entries")
	if count > 255 {
		c.error("too many entries in a dict literal")
	}
	c.emitOpByte(value.OpDict, byte(count))
}

func (c *Compiler) funcExpr(_ bool) {
	c.compileFunction(funcFunction)
}

// --- infix rules ---

func (c *Compiler) binary(_ bool) {
	op := c.prev.Kind
	rule := c.getRule(op)
	c.parsePrecedence(rule.precedence + 1)
	switch op {
	case token.PLUS:
		c.emitOp(value.OpAdd)
	case token.MINUS:
		c.emitOp(value.OpSubtract)
	case token.STAR:
		c.emitOp(value.OpMultiply)
	case token.SLASH:
		c.emitOp(value.OpDivide)
	case token.PERCENT:
		c.emitOp(value.OpModulo)
	case token.STAR_STAR:
		c.emitOp(value.OpPow)
	case token.EQ_EQ:
		c.emitOp(value.OpEqual)
	case token.BANG_EQ:
		c.emitOp(value.OpNotEqual)
	case token.GT:
		c.emitOp(value.OpGreater)
	case token.GE:
		c.emitOp(value.OpGreaterEqual)
	case token.LT:
		c.emitOp(value.OpLess)
	case token.LE:
		c.emitOp(value.OpLessEqual)
	}
}

func (c *Compiler) and(_ bool) {
	endJump := c.emitJump(value.OpJumpIfFalse)
	c.emitOp(value.OpPop)
	c.parsePrecedence(precAnd)
	c.patchJump(endJump)
}

func (c *Compiler) or(_ bool) {
	endJump := c.emitJump(value.OpJumpIfTrue)
	c.emitOp(value.OpPop)
	c.parsePrecedence(precOr)
	c.patchJump(endJump)
}

// in compiles `needle in haystack`: the needle is already on the stack and
// the haystack is compiled on top of it; OP_HAS pops the haystack, then the
// needle, so no swap is needed.
func (c *Compiler) in(_ bool) {
	c.parsePrecedence(precComparison + 1)
	c.emitOp(value.OpHas)
}

func (c *Compiler) call(_ bool) {
	argCount := c.argumentList()
	c.emitOpByte(value.OpCall, byte(argCount))
}

func (c *Compiler) argumentList() int {
	count := 0
	if !c.check(token.RPAREN) {
		for {
			c.expression()
			if count == 255 {
				c.error("too many arguments in a call")
			}
			count++
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "expected ')' after arguments")
	return count
}

func (c *Compiler) dot(canAssign bool) {
	c.consume(token.IDENT, "expected a property name after '.'")
	name := c.identifierConstant(c.prev.Lexeme)

	switch {
	case canAssign && c.match(token.EQ):
		c.expression()
		c.emitOpByte(value.OpSetProperty, name)
	case canAssign && c.matchCompoundAssign():
		op := c.prev.Kind
		c.emitOp(value.OpDup)
		c.emitOpByte(value.OpGetProperty, name)
		c.expression()
		c.emitCompoundOp(op)
		c.emitOpByte(value.OpSetProperty, name)
	case c.match(token.LPAREN):
		argCount := c.argumentList()
		c.emitOpByte2(value.OpInvoke, name, byte(argCount))
	default:
		c.emitOpByte(value.OpGetProperty, name)
	}
}

// index compiles both `x[i]` subscripting and `x[a:b]` slicing (spec.md's
// List/String slice operation); a bare `:` with an omitted bound compiles
// nil for that bound.
func (c *Compiler) index(canAssign bool) {
	isSlice := false
	if c.match(token.COLON) {
		isSlice = true
		c.emitOp(value.OpNil) // start defaults to nil
		c.sliceEnd()
	} else {
		c.expression()
		if c.match(token.COLON) {
			isSlice = true
			c.sliceEnd()
		}
	}
	c.consume(token.RBRACK, "expected ']'")

	if isSlice {
		c.emitOp(value.OpSlice)
		return
	}

	switch {
	case canAssign && c.match(token.EQ):
		c.expression()
		c.emitOp(value.OpSetIndex)
	case canAssign && c.matchCompoundAssign():
		op := c.prev.Kind
		c.emitOp(value.OpDup2)
		c.emitOp(value.OpGetIndex)
		c.expression()
		c.emitCompoundOp(op)
		c.emitOp(value.OpSetIndex)
	default:
		c.emitOp(value.OpGetIndex)
	}
}

func (c *Compiler) sliceEnd() {
	if c.check(token.RBRACK) {
		c.emitOp(value.OpNil)
		return
	}
	c.expression()
}

// --- string interpolation ---

func (c *Compiler) compileStringToken(tok token.Token) {
	raw := tok.Lexeme
	if !strings.Contains(raw, "${") {
		c.emitConstant(value.NewString(unescapeString(raw)))
		return
	}
	c.compileInterpolatedString(raw, tok.Line)
}

func unescapeString(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch != '\\' || i == len(s)-1 {
			b.WriteByte(ch)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '\\':
			b.WriteByte('\\')
		case '"':
			b.WriteByte('"')
		case '$':
			b.WriteByte('$')
		case '0':
			b.WriteByte(0)
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

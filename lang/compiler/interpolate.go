package compiler

import (
	"github.com/mhr3/slo/lang/token"
	"github.com/mhr3/slo/lang/value"
)

// compileInterpolatedString handles a STRING token whose lexeme contains one
// or more `${expr}` spans (SPEC_FULL.md's string-interpolation supplement).
// Because the scanner hands the whole quoted literal to the compiler as one
// token, interpolation is resolved here rather than in the scanner: each
// `${...}` span is compiled by running the same recursive-descent expression
// parser over a fresh sub-scanner seeded with just that span's bytes, which
// keeps the overall compile a single pass over the outer token stream (no
// separate interpolation-AST phase). The segments (literal text and
// compiled expressions, in order) are concatenated at runtime by
// OP_INTERPOLATE.
func (c *Compiler) compileInterpolatedString(raw string, line int) {
	segments := 0
	i := 0
	for i < len(raw) {
		start := i
		for i < len(raw) && !(raw[i] == '$' && i+1 < len(raw) && raw[i+1] == '{') {
			i++
		}
		if i > start {
			c.emitConstant(value.NewString(unescapeString(raw[start:i])))
			segments++
		}
		if i >= len(raw) {
			break
		}
		// skip "${"
		i += 2
		depth := 1
		exprStart := i
		for i < len(raw) && depth > 0 {
			switch raw[i] {
			case '{':
				depth++
			case '}':
				depth--
			}
			if depth > 0 {
				i++
			}
		}
		if depth != 0 {
			c.error("unterminated interpolation in string literal")
			break
		}
		exprSrc := raw[exprStart:i]
		i++ // skip "}"

		c.compileSubExpression(exprSrc)
		segments++
	}

	if segments == 0 {
		c.emitConstant(value.NewString(""))
		return
	}
	if segments > 255 {
		c.error("too many interpolated segments in a single string literal")
		segments = 255
	}
	c.emitOpByte(value.OpInterpolate, byte(segments))
}

// compileSubExpression compiles a standalone expression string as if it
// appeared inline, by swapping in a temporary scanner and restoring the
// enclosing one afterward.
func (c *Compiler) compileSubExpression(src string) {
	savedSc := c.sc
	savedCur := c.cur
	savedPrev := c.prev

	c.sc.Init([]byte(src))
	c.cur = token.Token{}
	c.prev = token.Token{}
	c.advance()
	c.expression()

	c.sc = savedSc
	c.cur = savedCur
	c.prev = savedPrev
}

package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mhr3/slo/lang/compiler"
	"github.com/mhr3/slo/lang/value"
)

func TestCompileArithmeticExpression(t *testing.T) {
	fn, err := compiler.Compile([]byte("1 + 2 * 3;"), "test")
	require.NoError(t, err)
	require.NotNil(t, fn)

	ops := opsOf(fn.Chunk)
	require.Contains(t, ops, value.OpAdd)
	require.Contains(t, ops, value.OpMultiply)
	require.Contains(t, ops, value.OpPop) // expression statement discards its value
	require.Equal(t, 3, len(fn.Chunk.Constants))
}

func TestCompileVarDeclarationAndAssignment(t *testing.T) {
	fn, err := compiler.Compile([]byte(`var x = 1; x = x + 1;`), "test")
	require.NoError(t, err)

	ops := opsOf(fn.Chunk)
	require.Contains(t, ops, value.OpDefineGlobal)
	require.Contains(t, ops, value.OpSetGlobal)
	require.Contains(t, ops, value.OpGetGlobal)
}

func TestCompileFinalGlobalUsesFinalOpcode(t *testing.T) {
	fn, err := compiler.Compile([]byte(`final var PI = 3;`), "test")
	require.NoError(t, err)

	ops := opsOf(fn.Chunk)
	require.Contains(t, ops, value.OpDefineFinalGlobal)
	require.NotContains(t, ops, value.OpDefineGlobal)
}

func TestCompileLocalsResolveWithoutGlobalOps(t *testing.T) {
	fn, err := compiler.Compile([]byte(`{ var x = 1; var y = x + 2; }`), "test")
	require.NoError(t, err)

	ops := opsOf(fn.Chunk)
	require.Contains(t, ops, value.OpGetLocal)
	require.NotContains(t, ops, value.OpGetGlobal)
	require.NotContains(t, ops, value.OpDefineGlobal)
}

func TestCompileClosureCapturesUpvalue(t *testing.T) {
	fn, err := compiler.Compile([]byte(`
		func outer() {
			var x = 1;
			func inner() {
				return x;
			}
			return inner;
		}
	`), "test")
	require.NoError(t, err)

	ops := opsOf(fn.Chunk)
	require.Contains(t, ops, value.OpClosure)

	outerFn := findFunctionConstant(fn.Chunk, "outer")
	require.NotNil(t, outerFn)
	innerFn := findFunctionConstant(outerFn.Chunk, "inner")
	require.NotNil(t, innerFn)
	require.Equal(t, 1, innerFn.UpvalueCount)
	require.Contains(t, opsOf(innerFn.Chunk), value.OpGetUpvalue)
}

func TestCompileClassWithMethodAndSuper(t *testing.T) {
	fn, err := compiler.Compile([]byte(`
		class Animal {
			speak() { return "..."; }
		}
		class Dog extends Animal {
			speak() { return super.speak(); }
		}
	`), "test")
	require.NoError(t, err)

	ops := opsOf(fn.Chunk)
	require.Contains(t, ops, value.OpClass)
	require.Contains(t, ops, value.OpInherit)
	require.Contains(t, ops, value.OpMethod)
}

func TestCompileStringInterpolation(t *testing.T) {
	fn, err := compiler.Compile([]byte("var name = \"world\"; var s = \"hello ${name}!\";"), "test")
	require.NoError(t, err)

	ops := opsOf(fn.Chunk)
	require.Contains(t, ops, value.OpInterpolate)
}

func TestCompileStringInterpolationSingleExprSegment(t *testing.T) {
	fn, err := compiler.Compile([]byte("var x = 1; var s = \"${x}\";"), "test")
	require.NoError(t, err)

	ops := opsOf(fn.Chunk)
	require.Contains(t, ops, value.OpInterpolate)
}

func TestCompileRepeatedIdentifierReusesConstantSlot(t *testing.T) {
	src := "class A { m() { return self.value + self.value + self.value; } }"
	fn, err := compiler.Compile([]byte(src), "test")
	require.NoError(t, err)

	m := findFunctionConstant(fn.Chunk, "m")
	require.NotNil(t, m)

	count := 0
	for _, v := range m.Chunk.Constants {
		if s, ok := v.(*value.String); ok && s.Chars == "value" {
			count++
		}
	}
	require.Equal(t, 1, count)
}

func TestCompileIfWhileForBreakContinue(t *testing.T) {
	fn, err := compiler.Compile([]byte(`
		for (var i = 0; i < 10; i = i + 1) {
			if (i == 5) { break; }
			if (i == 2) { continue; }
		}
	`), "test")
	require.NoError(t, err)

	ops := opsOf(fn.Chunk)
	require.Contains(t, ops, value.OpJumpIfFalse)
	require.Contains(t, ops, value.OpLoop)
}

func TestCompileErrorsAccumulatePanicMode(t *testing.T) {
	_, err := compiler.Compile([]byte(`var = 1; var = 2;`), "test")
	require.Error(t, err)
	errs, ok := err.(interface{ Error() string })
	require.True(t, ok)
	require.Contains(t, errs.Error(), "[line 1]")
}

func TestCompileListAndDictLiterals(t *testing.T) {
	fn, err := compiler.Compile([]byte(`var l = [1, 2, 3]; var d = {"a": 1};`), "test")
	require.NoError(t, err)

	ops := opsOf(fn.Chunk)
	require.Contains(t, ops, value.OpList)
	require.Contains(t, ops, value.OpDict)
}

func TestCompileEnumDeclaration(t *testing.T) {
	fn, err := compiler.Compile([]byte(`enum Color { Red, Green, Blue }`), "test")
	require.NoError(t, err)

	ops := opsOf(fn.Chunk)
	require.Contains(t, ops, value.OpEnum)
	require.Contains(t, ops, value.OpDefineFinalGlobal)
}

// --- helpers ---

func opsOf(c *value.Chunk) []value.Op {
	var ops []value.Op
	code := c.Code
	i := 0
	for i < len(code) {
		op := value.Op(code[i])
		ops = append(ops, op)
		i++
		if op == value.OpClosure {
			funcIdx := code[i]
			i++
			if fn, ok := c.Constants[funcIdx].(*value.Function); ok {
				i += 2 * fn.UpvalueCount
			}
			continue
		}
		i += operandWidth(op)
	}
	return ops
}

func operandWidth(op value.Op) int {
	switch op {
	case value.OpConstant, value.OpDefineGlobal, value.OpDefineFinalGlobal, value.OpGetGlobal, value.OpSetGlobal,
		value.OpGetLocal, value.OpSetLocal, value.OpGetUpvalue, value.OpSetUpvalue,
		value.OpCall, value.OpClass, value.OpMethod, value.OpGetSuper,
		value.OpGetProperty, value.OpSetProperty, value.OpList, value.OpDict,
		value.OpImport, value.OpInterpolate:
		return 1
	case value.OpJump, value.OpJumpIfFalse, value.OpJumpIfTrue, value.OpLoop:
		return 2
	case value.OpInvoke, value.OpSuperInvoke, value.OpImportAs, value.OpEnum:
		return 2
	default:
		return 0
	}
}

func findFunctionConstant(c *value.Chunk, name string) *value.Function {
	for _, v := range c.Constants {
		if fn, ok := v.(*value.Function); ok {
			if name == "" || fn.Name == name {
				return fn
			}
		}
	}
	return nil
}

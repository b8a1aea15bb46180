package machine_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mhr3/slo/lang/diag"
	"github.com/mhr3/slo/lang/machine"
)

func run(t *testing.T, src string, opts machine.Options) (string, error) {
	t.Helper()
	var stdout bytes.Buffer
	opts.Stdout = &stdout
	vm := machine.New(opts)
	_, err := vm.RunSource(context.Background(), []byte(src), "test")
	return stdout.String(), err
}

// The seven end-to-end scenarios spec.md §8 lists verbatim, each source ->
// expected stdout.

func TestArithmeticPrecedence(t *testing.T) {
	out, err := run(t, `println(1 + 2 * 3);`, machine.Options{})
	require.NoError(t, err)
	require.Equal(t, "7\n", out)
}

func TestStringEqualityByContent(t *testing.T) {
	out, err := run(t, `var a = "hi"; var b = "hi"; println(a == b);`, machine.Options{})
	require.NoError(t, err)
	require.Equal(t, "true\n", out)
}

func TestClosureCapturesMutableLocalAcrossCalls(t *testing.T) {
	src := `
func make() {
	var x = 0;
	func inc() {
		x = x + 1;
		return x;
	}
	return inc;
}
var f = make();
println(f());
println(f());
println(f());
`
	out, err := run(t, src, machine.Options{})
	require.NoError(t, err)
	require.Equal(t, "1\n2\n3\n", out)
}

func TestSingleInheritanceSuperCall(t *testing.T) {
	src := `
class A {
	greet() { println("A"); }
}
class B extends A {
	greet() {
		super.greet();
		println("B");
	}
}
B().greet();
`
	out, err := run(t, src, machine.Options{})
	require.NoError(t, err)
	require.Equal(t, "A\nB\n", out)
}

func TestListIndexingAssignmentAndLen(t *testing.T) {
	src := `
var xs = [1,2,3];
xs[1] = 9;
println(xs[0]);
println(xs[1]);
println(xs[2]);
println(len(xs));
`
	out, err := run(t, src, machine.Options{})
	require.NoError(t, err)
	require.Equal(t, "1\n9\n3\n3\n", out)
}

func TestForLoopSum(t *testing.T) {
	src := `var n = 0; for (var i = 0; i < 1000; i = i + 1) { n = n + i; } println(n);`
	out, err := run(t, src, machine.Options{})
	require.NoError(t, err)
	require.Equal(t, "499500\n", out)
}

func TestAssertFailureIsRuntimeError(t *testing.T) {
	src := `var x = 1; assert(x == 1); assert(x == 2);`
	_, err := run(t, src, machine.Options{})
	require.Error(t, err)
	rerr, ok := err.(*diag.RuntimeError)
	require.True(t, ok, "expected a *diag.RuntimeError, got %T", err)
	require.Contains(t, rerr.Error(), "assert")
	require.NotEmpty(t, rerr.Trace)
	require.Equal(t, 1, rerr.Trace[0].Line)
}

// Property-based invariants spec.md §8 names that aren't already covered
// by lang/value's own table/chunk tests.

func TestStringInterningAcrossDistinctLiterals(t *testing.T) {
	src := `var a = "same"; var b = "sa" + "me"; println(a == b);`
	out, err := run(t, src, machine.Options{})
	require.NoError(t, err)
	require.Equal(t, "true\n", out)
}

func TestStressGCMatchesNormalOutput(t *testing.T) {
	src := `
class Node {
	init(v) { self.v = v; self.next = nil; }
}
var head = nil;
for (var i = 0; i < 200; i = i + 1) {
	var n = Node(i);
	n.next = head;
	head = n;
}
var sum = 0;
var cur = head;
while (cur != nil) {
	sum = sum + cur.v;
	cur = cur.next;
}
println(sum);
`
	normal, err := run(t, src, machine.Options{})
	require.NoError(t, err)

	stressed, err := run(t, src, machine.Options{StressGC: true})
	require.NoError(t, err)

	require.Equal(t, normal, stressed)
	require.Equal(t, "19900\n", normal)
}

func TestStackEmptyAfterEachTopLevelStatement(t *testing.T) {
	src := `1 + 1; "a" + "b"; [1,2,3]; var x = 5;`
	_, err := run(t, src, machine.Options{})
	require.NoError(t, err)
}

func TestClosureSeesSnapshotAfterEnclosingScopeExits(t *testing.T) {
	src := `
var fns = [];
for (var i = 0; i < 3; i = i + 1) {
	var captured = i;
	func get() { return captured; }
	fns = fns + [get];
}
println(fns[0]());
println(fns[1]());
println(fns[2]());
`
	out, err := run(t, src, machine.Options{})
	require.NoError(t, err)
	require.Equal(t, "0\n1\n2\n", out)
}

func TestUndefinedGlobalIsRuntimeError(t *testing.T) {
	_, err := run(t, `println(doesNotExist);`, machine.Options{})
	require.Error(t, err)
	_, ok := err.(*diag.RuntimeError)
	require.True(t, ok)
}

func TestDivisionByZeroIsRuntimeError(t *testing.T) {
	_, err := run(t, `println(1 / 0);`, machine.Options{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "division by zero")
}

func TestIndexOutOfRangeIsRuntimeError(t *testing.T) {
	_, err := run(t, `var xs = [1,2,3]; println(xs[10]);`, machine.Options{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "out of range")
}

func TestCompileErrorDoesNotRun(t *testing.T) {
	_, err := run(t, `var x = ;`, machine.Options{})
	require.Error(t, err)
	_, ok := err.(diag.CompileErrors)
	require.True(t, ok, "expected diag.CompileErrors, got %T", err)
}

func TestFinalGlobalReassignmentIsRuntimeError(t *testing.T) {
	_, err := run(t, `final var PI = 3; PI = 4;`, machine.Options{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "final")
}

package natives

import (
	"fmt"
	"os"
	"time"

	"github.com/mhr3/slo/lang/value"
)

// globalNatives is the top-level function set every slo program sees
// without an import (spec.md's Native registry, SPEC_FULL.md's supplemented
// arity rules).
func (rt *Runtime) globalNatives() []*value.Native {
	return []*value.Native{
		value.NewNative("clock", 0, 0, nativeClock),
		value.NewNative("time", 0, 0, nativeTime),
		value.NewNative("sleep", 1, 1, nativeSleep),
		value.NewNative("exit", 0, 1, nativeExit),
		value.NewNative("print", 0, -1, rt.nativePrint),
		value.NewNative("println", 0, -1, rt.nativePrintln),
		value.NewNative("len", 1, 1, nativeLen),
		value.NewNative("abs", 1, 1, nativeAbs),
		value.NewNative("min", 1, -1, nativeMin),
		value.NewNative("max", 1, -1, nativeMax),
		value.NewNative("type", 1, 1, nativeType),
		value.NewNative("open", 1, 2, nativeOpen),
	}
}

func argError(msg string) value.Value { return value.Error(msg) }

func nativeClock(args []value.Value) value.Value {
	return value.Number(float64(time.Now().UnixNano()) / 1e9)
}

func nativeTime(args []value.Value) value.Value {
	return value.Number(float64(time.Now().Unix()))
}

func nativeSleep(args []value.Value) value.Value {
	n, ok := args[0].(value.Number)
	if !ok {
		return argError("sleep() expects a number of seconds")
	}
	time.Sleep(time.Duration(float64(n) * float64(time.Second)))
	return value.Nil
}

// nativeExit terminates the process immediately, matching the customary
// scripting-language `exit([code])` builtin; it never returns to the VM.
func nativeExit(args []value.Value) value.Value {
	code := 0
	if len(args) > 0 {
		n, ok := args[0].(value.Number)
		if !ok {
			return argError("exit() expects a numeric status code")
		}
		code = int(n)
	}
	os.Exit(code)
	return value.Nil
}

func (rt *Runtime) nativePrint(args []value.Value) value.Value {
	for i, a := range args {
		if i > 0 {
			fmt.Fprint(rt.Stdout, " ")
		}
		fmt.Fprint(rt.Stdout, displayString(a))
	}
	return value.Nil
}

func (rt *Runtime) nativePrintln(args []value.Value) value.Value {
	rt.nativePrint(args)
	fmt.Fprintln(rt.Stdout)
	return value.Nil
}

// displayString renders a value the way `print`/`println` show it: strings
// unquoted (unlike Value.String(), which other container String() methods
// quote nested strings with), everything else via its own String().
func displayString(v value.Value) string {
	if s, ok := v.(*value.String); ok {
		return s.Chars
	}
	return v.String()
}

func nativeLen(args []value.Value) value.Value {
	switch v := args[0].(type) {
	case *value.String:
		return value.Number(float64(v.Len()))
	case *value.List:
		return value.Number(float64(len(v.Elems)))
	case *value.Dict:
		return value.Number(float64(v.Table.Count()))
	default:
		return argError("len() expects a string, list, or dict")
	}
}

func nativeAbs(args []value.Value) value.Value {
	n, ok := args[0].(value.Number)
	if !ok {
		return argError("abs() expects a number")
	}
	if n < 0 {
		return -n
	}
	return n
}

func nativeMin(args []value.Value) value.Value { return minMax(args, false) }
func nativeMax(args []value.Value) value.Value { return minMax(args, true) }

func minMax(args []value.Value, wantMax bool) value.Value {
	best, ok := args[0].(value.Number)
	if !ok {
		return argError("expects numeric arguments")
	}
	for _, a := range args[1:] {
		n, ok := a.(value.Number)
		if !ok {
			return argError("expects numeric arguments")
		}
		if (wantMax && n > best) || (!wantMax && n < best) {
			best = n
		}
	}
	return best
}

func nativeType(args []value.Value) value.Value {
	return value.NewString(args[0].Type())
}

func nativeOpen(args []value.Value) value.Value {
	path, ok := args[0].(*value.String)
	if !ok {
		return argError("open() expects a path string")
	}
	mode := "r"
	if len(args) > 1 {
		m, ok := args[1].(*value.String)
		if !ok {
			return argError("open() expects a mode string")
		}
		mode = m.Chars
	}

	var flag int
	switch mode {
	case "r":
		flag = os.O_RDONLY
	case "w":
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	case "a":
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	default:
		return argError("open() mode must be 'r', 'w', or 'a'")
	}

	f, err := os.OpenFile(path.Chars, flag, 0644)
	if err != nil {
		return value.Error(err.Error())
	}
	return value.NewFile(f, path.Chars, mode)
}

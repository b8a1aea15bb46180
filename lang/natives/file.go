package natives

import (
	"io"

	"github.com/mhr3/slo/lang/value"
)

func (rt *Runtime) fileMethods() []*value.Native {
	return []*value.Native{
		value.NewNative("read", 0, 0, fileRead),
		value.NewNative("write", 1, 1, fileWrite),
		value.NewNative("close", 0, 0, fileClose),
	}
}

func fileRead(args []value.Value) value.Value {
	f, ok := args[0].(*value.File)
	if !ok {
		return argError("read() called on a non-file")
	}
	if f.Closed {
		return argError("read() called on a closed file")
	}
	data, err := io.ReadAll(f.Handle)
	if err != nil {
		return value.Error(err.Error())
	}
	return value.NewString(string(data))
}

func fileWrite(args []value.Value) value.Value {
	f, ok := args[0].(*value.File)
	if !ok {
		return argError("write() called on a non-file")
	}
	if f.Closed {
		return argError("write() called on a closed file")
	}
	s, ok := args[1].(*value.String)
	if !ok {
		return argError("write() expects a string")
	}
	n, err := f.Handle.WriteString(s.Chars)
	if err != nil {
		return value.Error(err.Error())
	}
	return value.Number(float64(n))
}

func fileClose(args []value.Value) value.Value {
	f, ok := args[0].(*value.File)
	if !ok {
		return argError("close() called on a non-file")
	}
	if err := f.Close(); err != nil {
		return value.Error(err.Error())
	}
	return value.Nil
}

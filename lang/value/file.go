package value

import "os"

// File wraps an OS file handle (spec.md §3's File variant: "file handle,
// open-mode, closed flag, name"). It is released when swept or explicitly
// closed (spec.md §5).
type File struct {
	Header
	Handle *os.File
	Name   string
	Mode   string
	Closed bool
}

var (
	_ Value = (*File)(nil)
	_ Obj   = (*File)(nil)
)

func (f *File) header() *Header      { return &f.Header }
func (f *File) ObjType() ObjType     { return ObjFile }
func (f *File) Kind() Kind           { return KindObj }
func (f *File) Type() string         { return "file" }
func (f *File) String() string       { return "file(" + f.Name + ")" }
func (f *File) Trace(func(Value))    {}
func (f *File) Size() int            { return 64 }

// Close closes the underlying handle, if still open. Safe to call more than
// once.
func (f *File) Close() error {
	if f.Closed {
		return nil
	}
	f.Closed = true
	return f.Handle.Close()
}

// NewFile wraps an already-opened OS file handle.
func NewFile(handle *os.File, name, mode string) *File {
	return &File{Handle: handle, Name: name, Mode: mode}
}

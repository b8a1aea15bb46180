package value

// String is slo's string object (spec.md §3). Strings the VM allocates
// through its intern table (see Table's FindString) are canonical: one
// pointer per byte sequence. Strings built directly with NewString, such as
// compiler constants and the results of native methods, are not entered in
// that table, so two String objects with equal bytes may be distinct
// pointers; Equal compares strings by content.
type String struct {
	Header
	Chars string
	Hash  uint32
}

var (
	_ Value = (*String)(nil)
	_ Obj   = (*String)(nil)
)

func (s *String) header() *Header  { return &s.Header }
func (s *String) ObjType() ObjType { return ObjString }
func (s *String) Kind() Kind       { return KindObj }
func (s *String) String() string   { return s.Chars }
func (s *String) Type() string     { return "string" }
func (s *String) Trace(func(Value)) {
	// strings hold no Value references
}
func (s *String) Size() int { return 32 + len(s.Chars) }
func (s *String) Len() int  { return len(s.Chars) }

// HashString computes the 32-bit FNV-1a hash spec.md §3 mandates for
// strings.
func HashString(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

// NewString allocates an unlinked, unmarked, un-interned String object. The
// VM is responsible for the interning lookup and for linking it into the
// object list; this constructor only computes the hash.
func NewString(s string) *String {
	return &String{Chars: s, Hash: HashString(s)}
}

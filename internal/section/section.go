// Package section implements the append-only growable byte buffers that
// back the compiler's .text/.data/.rdata/.bss output, per spec.md §4.3.
// Growth is delegated to Go's append, which already doubles capacity; this
// is the idiomatic equivalent of the teacher's hand-rolled byte-buffer
// growth in emit.go and is documented as such in DESIGN.md.
package section

// Section is a named, growable byte buffer. Addr is never assigned: the
// PE writer computes section addresses in its own layout (pe.Layout).
type Section struct {
	Name string
	Data []byte
	Addr uint64
}

// Add appends data to the section and returns the pre-append offset.
func (s *Section) Add(data []byte) int {
	off := len(s.Data)
	s.Data = append(s.Data, data...)
	return off
}

// Reserve appends n zero bytes and returns the offset of the first one,
// for callers that will patch the bytes in place later (fix-up slots,
// forward-declared globals).
func (s *Section) Reserve(n int) int {
	off := len(s.Data)
	s.Data = append(s.Data, make([]byte, n)...)
	return off
}

// Size returns the current length of the section's data.
func (s *Section) Size() int { return len(s.Data) }

// PutLE32 overwrites 4 bytes at offset off with v, little-endian. Used to
// resolve fix-up slots and patched addresses after the fact.
func (s *Section) PutLE32(off int, v int32) {
	u := uint32(v)
	s.Data[off+0] = byte(u)
	s.Data[off+1] = byte(u >> 8)
	s.Data[off+2] = byte(u >> 16)
	s.Data[off+3] = byte(u >> 24)
}

// GetLE32 reads 4 bytes at offset off, little-endian, signed.
func (s *Section) GetLE32(off int) int32 {
	u := uint32(s.Data[off]) | uint32(s.Data[off+1])<<8 | uint32(s.Data[off+2])<<16 | uint32(s.Data[off+3])<<24
	return int32(u)
}

// PutLE64 overwrites 8 bytes at offset off with v, little-endian.
func (s *Section) PutLE64(off int, v int64) {
	u := uint64(v)
	for i := 0; i < 8; i++ {
		s.Data[off+i] = byte(u >> (8 * i))
	}
}

// PutInt writes v's low size bytes (1, 2, 4, or 8) at offset off,
// little-endian — used for global-variable initializers, which are sized
// by the declared type rather than always being a full word.
func (s *Section) PutInt(off, size int, v int64) {
	u := uint64(v)
	for i := 0; i < size; i++ {
		s.Data[off+i] = byte(u >> (8 * i))
	}
}

// Names of the four distinguished sections spec.md §2 names.
const (
	Text  = ".text"
	Data  = ".data"
	RData = ".rdata"
	BSS   = ".bss"
)

// Store owns the compiler's section list with four distinguished slots,
// plus any others created later (spec.md §3: "Section ... sh_addr is
// assigned by the PE writer").
type Store struct {
	Text  *Section
	Data  *Section
	RData *Section // lazily created on first string literal, §4.3
	BSS   *Section

	all []*Section
}

// NewStore creates the Text/Data/BSS sections up front; RData is created
// lazily by RDataSection on first use.
func NewStore() *Store {
	st := &Store{}
	st.Text = st.new(Text)
	st.Data = st.new(Data)
	st.BSS = st.new(BSS)
	return st
}

func (st *Store) new(name string) *Section {
	s := &Section{Name: name}
	st.all = append(st.all, s)
	return s
}

// RDataSection returns the .rdata section, creating it if this is the
// first string literal seen by the parser.
func (st *Store) RDataSection() *Section {
	if st.RData == nil {
		st.RData = st.new(RData)
	}
	return st.RData
}

// All returns every non-nil section created so far, in creation order.
// The PE writer does not use it: pe.Layout reads the Text, Data and RData
// slots directly and skips the empty ones.
func (st *Store) All() []*Section {
	out := make([]*Section, 0, len(st.all))
	for _, s := range st.all {
		if s != nil && len(s.Data) > 0 {
			out = append(out, s)
		}
	}
	return out
}

// Package ctype implements the packed type-word representation described
// in spec.md §3: a single integer carrying base type, modifier bits, and
// storage-class bits, with pointer types chaining by shifting the pointee
// into upper bits.
package ctype

// Type is a packed type word. Low 4 bits: base type. Next bits: modifiers
// (unsigned/array/bitfield/const/volatile/defsign). Next bits: storage
// class (extern/static/typedef/inline). Remaining high bits: the pointee
// type word, shifted left by baseShift each time a pointer level wraps it,
// so dereferencing one level is a single right-shift.
type Type uint64

// Base types, low 4 bits (only one is present at a time).
const (
	BaseInt Type = iota
	BaseByte
	BaseShort
	BaseVoid
	BasePtr
	BaseEnum
	BaseFunc
	BaseStruct
	BaseFloat
	BaseDouble
	BaseLDouble
	BaseBool
	BaseLLong
	BaseLong
)

const baseMask Type = 0xF

// Modifier bits.
const (
	Unsigned Type = 1 << 4
	Array    Type = 1 << 5
	Bitfield Type = 1 << 6
	Const    Type = 1 << 7
	Volatile Type = 1 << 8
	Defsign  Type = 1 << 9
)

// Storage-class bits.
const (
	Extern  Type = 1 << 10
	Static  Type = 1 << 11
	Typedef Type = 1 << 12
	Inline  Type = 1 << 13
)

const (
	modShift   = 14 // bits below this are base+modifier+storage
	baseShift  = modShift
)

// Base returns the packed type's base-type field.
func (t Type) Base() Type { return t & baseMask }

// WithBase returns t with its base-type field replaced.
func (t Type) WithBase(b Type) Type { return (t &^ baseMask) | (b & baseMask) }

// IsUnsigned, IsConst, IsArray, IsStatic, IsExtern report modifier/storage bits.
func (t Type) IsUnsigned() bool { return t&Unsigned != 0 }
func (t Type) IsConst() bool    { return t&Const != 0 }
func (t Type) IsArray() bool    { return t&Array != 0 }
func (t Type) IsStatic() bool   { return t&Static != 0 }
func (t Type) IsExtern() bool   { return t&Extern != 0 }

// Pointer builds a pointer-to-pointee type word: base becomes BasePtr and
// the pointee's full word is shifted into the upper bits.
func Pointer(pointee Type) Type {
	return BasePtr | (pointee << baseShift)
}

// IsPointer reports whether t's base type is a pointer.
func (t Type) IsPointer() bool { return t.Base() == BasePtr }

// Deref returns the pointee type word of a pointer type. Only valid when
// IsPointer() is true.
func (t Type) Deref() Type {
	return t >> baseShift
}

// FuncOf builds a function type word carrying its return type the same
// way Pointer carries a pointee: base becomes BaseFunc and the return
// type's full word is shifted into the upper bits. spec.md's "pt |
// VT_FUNC" construction ORs the FUNC base value directly into the return
// type's own base-type field, which corrupts anything but int-returning
// functions — FuncOf/Return are the fix recorded in DESIGN.md's ctype entry.
func FuncOf(ret Type) Type {
	return BaseFunc | (ret << baseShift)
}

// Return returns a function type's return-type word.
func (t Type) Return() Type {
	return t >> baseShift
}

// Size returns the storage size in bytes of the base type, for load/store
// sizing in the encoder. Pointers, funcs, and int default to 8/4 per the
// Windows x64 ABI (ILP64 is not used; int is 4 bytes, long is 4 bytes under
// LLP64, long long and pointers are 8).
func (t Type) Size() int {
	switch t.Base() {
	case BaseByte, BaseBool:
		return 1
	case BaseShort:
		return 2
	case BaseInt, BaseFloat, BaseEnum:
		return 4
	case BaseLong:
		return 4
	case BaseLLong, BaseDouble, BasePtr, BaseFunc:
		return 8
	case BaseVoid:
		return 0
	default:
		return 8
	}
}

// IsFloating reports whether the base type is float/double/long double.
func (t Type) IsFloating() bool {
	switch t.Base() {
	case BaseFloat, BaseDouble, BaseLDouble:
		return true
	}
	return false
}

// Int is the default promoted integer type used for untyped literals and
// the implicit-function-declaration fallback (K&R semantics, spec.md §4.6).
const Int Type = BaseInt

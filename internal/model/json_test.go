package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// roundTripType serializes and reconstructs a type
func roundTripType(t *testing.T, ty Type) Type {
	t.Helper()
	data, err := MarshalType(ty)
	require.NoError(t, err)
	back, err := UnmarshalType(data)
	require.NoError(t, err)
	return back
}

func TestTypeRoundTrip(t *testing.T) {
	types := []Type{
		&Prim{Kind: I32},
		&Prim{Kind: Unit},
		&Struct{Name: "c::P", Generics: []Type{&Prim{Kind: F64}}, IsLocal: true},
		&Enum{Name: "c::E", Variants: []string{"A", "B"}, IsLocal: true},
		&Union{Name: "c::U", IsLocal: false},
		&Tuple{Elems: []Type{&Prim{Kind: Bool}, &Slice{Elem: &Prim{Kind: U8}}}},
		&Array{Elem: &Prim{Kind: U8}, Length: 16},
		&Ref{Inner: &Prim{Kind: Str}, Mutable: true},
		&TraitObj{Name: "std::fmt::Debug", IsDyn: true},
		&Fn{},
		&Generic{Name: "T", Bounds: []Trait{{Name: "Clone"}, {Name: "Ord"}}},
	}
	for _, ty := range types {
		t.Run(ty.String(), func(t *testing.T) {
			back := roundTripType(t, ty)
			assert.True(t, ty.Equals(back), "expected %s, got %s", ty, back)
		})
	}
}

func TestGenericBoundsSurviveRoundTrip(t *testing.T) {
	g := &Generic{Name: "T", Bounds: []Trait{{Name: "A"}, {Name: "B"}}}
	back := roundTripType(t, g).(*Generic)
	assert.Equal(t, g.Bounds, back.Bounds)
}

func TestCallableRoundTrip(t *testing.T) {
	selfTy := &Struct{Name: "c::P", IsLocal: true}
	callables := []Callable{
		&Function{
			Public: true, Name: "abs",
			Params:  []Param{{Name: "x", Ty: &Prim{Kind: I32}}},
			Return:  &Prim{Kind: I32},
			SrcPath: "src/lib.rs", FqName: "c::abs",
		},
		&Method{
			Public: true, Name: "len",
			SelfTy: selfTy, Trait: "c::Measure",
			Return:  &Prim{Kind: Usize},
			SrcPath: "src/lib.rs", FqName: "c::P::len",
		},
		&StaticFunction{
			Public: false, Name: "origin",
			SelfTy:  selfTy,
			Return:  selfTy,
			SrcPath: "src/lib.rs", FqName: "c::P::origin",
		},
		&StructInit{
			Public: true,
			Params: []Param{{Name: "x", Ty: &Prim{Kind: I32}}, {Name: "y", Ty: &Prim{Kind: I32}}},
			SelfTy: selfTy, FqName: "c::P",
		},
		&EnumInit{
			Public: true,
			SelfTy: &Enum{Name: "c::E", Variants: []string{"A", "B", "C"}, IsLocal: true},
			Variant: Variant{
				Name: "C", Shape: ShapeStruct,
				Params: []Param{{Name: "z", Ty: &Prim{Kind: U8}}},
			},
			FqName: "c::E",
		},
	}

	for _, c := range callables {
		t.Run(c.Kind(), func(t *testing.T) {
			data, err := MarshalCallable(c)
			require.NoError(t, err)
			back, err := UnmarshalCallable(data)
			require.NoError(t, err)
			assert.Equal(t, c, back)
		})
	}
}

func TestUnknownTagRejected(t *testing.T) {
	_, err := UnmarshalType([]byte(`{"tag":"Flux"}`))
	assert.Error(t, err)
	_, err = UnmarshalCallable([]byte(`{"tag":"Destructor"}`))
	assert.Error(t, err)
}

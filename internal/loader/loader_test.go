package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rbrinfo/rbrinfo/internal/hir"
	"github.com/rbrinfo/rbrinfo/internal/mir"
)

const sampleDump = `{
  "crate": {
    "name": "demo",
    "dir": "/work/demo",
    "items": [
      {
        "kind": "fn",
        "path": "demo::abs",
        "file": "src/lib.rs",
        "vis": "pub",
        "decl": {
          "inputs": [{"tag": "path", "res": "prim", "prim": "i32"}],
          "output": {"tag": "path", "res": "prim", "prim": "i32"},
          "arg_names": ["x"]
        },
        "body_id": "demo__abs"
      },
      {
        "kind": "struct",
        "path": "demo::P",
        "file": "src/lib.rs",
        "vis": "pub",
        "generics": {"params": [{"name": "T", "bounds": [{"trait": "core::clone::Clone"}]}]},
        "fields": [
          {"name": "x", "vis": "pub", "ty": {"tag": "path", "res": "ty_param", "def_path": "T"}}
        ]
      },
      {
        "kind": "impl",
        "path": "demo::P",
        "file": "src/lib.rs",
        "self_ty": {"tag": "path", "res": "struct", "def_path": "demo::P", "is_local": true},
        "trait_path": "core::iter::Iterator",
        "assoc_types": [{"name": "Item", "ty": {"tag": "path", "res": "prim", "prim": "u32"}}],
        "fns": [
          {
            "kind": "fn",
            "path": "demo::P::next",
            "file": "src/lib.rs",
            "vis": "pub",
            "decl": {
              "inputs": [{"tag": "ref", "inner": {"tag": "path", "res": "self"}}],
              "has_self": true,
              "arg_names": ["self"]
            }
          }
        ]
      }
    ]
  },
  "bodies": [
    {
      "global_id": "demo__abs",
      "src_path": "src/lib.rs",
      "is_local": true,
      "args": 1,
      "locals": [
        {"ty": {"tag": "prim", "name": "i32"}},
        {"ty": {"tag": "prim", "name": "i32"}},
        {"ty": {"tag": "prim", "name": "bool"}}
      ],
      "blocks": [
        {
          "stmts": [
            {
              "kind": "assign",
              "place": {"local": 2},
              "rvalue": {
                "kind": "binary_op",
                "op": "Lt",
                "lhs": {"kind": "copy", "place": {"local": 1}},
                "rhs": {"kind": "const", "const": {"ty": {"tag": "prim", "name": "i32"}, "kind": "int", "bits": 0}}
              }
            }
          ],
          "term": {
            "kind": "switch_int",
            "discr": {"kind": "move", "place": {"local": 2}},
            "values": [0],
            "targets": [2, 1]
          }
        },
        {"term": {"kind": "goto", "target": 3}},
        {"term": {"kind": "goto", "target": 3}},
        {"term": {"kind": "return"}}
      ]
    }
  ]
}`

func TestLoadDump(t *testing.T) {
	dump, err := Load([]byte(sampleDump))
	require.NoError(t, err)

	crate := dump.Crate
	assert.Equal(t, "demo", crate.Name)
	assert.Equal(t, "/work/demo", crate.Dir)
	require.Len(t, crate.Items, 3)

	fn := crate.Items[0].(*hir.FnItem)
	assert.Equal(t, "demo::abs", fn.Path())
	assert.True(t, fn.Vis.IsPublic())
	require.Len(t, fn.Decl.Inputs, 1)
	assert.Equal(t, []string{"x"}, fn.Decl.ArgNames)
	assert.Equal(t, "demo__abs", fn.BodyID)

	st := crate.Items[1].(*hir.StructItem)
	require.Len(t, st.Generics.Params, 1)
	assert.Equal(t, "T", st.Generics.Params[0].Name)
	require.Len(t, st.Fields, 1)
	param := st.Fields[0].Ty.(*hir.PathTy)
	assert.Equal(t, hir.ResTyParam, param.Res)

	im := crate.Items[2].(*hir.ImplItem)
	assert.Equal(t, "core::iter::Iterator", im.TraitPath)
	require.Len(t, im.AssocTypes, 1)
	assert.Equal(t, "Item", im.AssocTypes[0].Name)
	require.Len(t, im.Fns, 1)
	assert.True(t, im.Fns[0].Decl.HasSelf)

	require.Len(t, dump.Bodies, 1)
	body := dump.Bodies[0]
	assert.Equal(t, "demo__abs", body.GlobalID)
	assert.Equal(t, 1, body.Args)
	require.Len(t, body.Blocks, 4)

	sw := body.Blocks[0].Terminator.(*mir.SwitchInt)
	assert.Equal(t, []uint64{0}, sw.Values)
	assert.Equal(t, []mir.BlockID{2, 1}, sw.Targets)
	require.Len(t, body.Blocks[0].Statements, 1)
	bin := body.Blocks[0].Statements[0].(*mir.Assign).Rvalue.(*mir.BinaryOpRv)
	assert.Equal(t, mir.OpLt, bin.Op)
}

func TestLoadRejectsMalformed(t *testing.T) {
	_, err := Load([]byte(`{"crate": {"items": [{"kind": "widget"}]}}`))
	assert.Error(t, err)

	_, err = Load([]byte(`not json`))
	assert.Error(t, err)

	// A switch whose target list does not end with the otherwise
	// target is rejected at the boundary.
	_, err = Load([]byte(`{"crate": {"name": "d"}, "bodies": [{
		"global_id": "g", "blocks": [{"term": {
			"kind": "switch_int",
			"discr": {"kind": "copy", "place": {"local": 0}},
			"values": [0, 1], "targets": [1, 2]
		}}]
	}]}`))
	assert.Error(t, err)
}

func TestNormalizeStripsBOMAndNFC(t *testing.T) {
	withBOM := append([]byte{0xEF, 0xBB, 0xBF}, []byte(`{"a":1}`)...)
	assert.Equal(t, []byte(`{"a":1}`), Normalize(withBOM))

	// NFD "e\u0301" (e + combining acute) normalizes to the NFC form.
	nfd := []byte("cafe\u0301")
	nfc := []byte("caf\u00e9")
	assert.Equal(t, nfc, Normalize(nfd))
}

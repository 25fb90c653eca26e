package inspect

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rbrinfo/rbrinfo/internal/model"
	"github.com/rbrinfo/rbrinfo/internal/record"
)

func seedLogDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	w, err := record.NewFileWriter(dir)
	require.NoError(t, err)

	cat := record.NewCatalogRecord("demo", []model.Callable{
		&model.Function{Public: true, Name: "abs", FqName: "demo::abs"},
	})
	require.NoError(t, w.Write(cat))
	require.NoError(t, w.Write(&record.BodyRecord{
		Schema: record.BodyV1, GlobalID: "demo__abs", Flavor: record.FlavorPost,
	}))
	return dir
}

func TestSessionIndexesRecords(t *testing.T) {
	var out bytes.Buffer
	s, err := NewSession(seedLogDir(t), &out)
	require.NoError(t, err)
	assert.Equal(t, []string{"body/demo__abs.post", "catalog/demo"}, s.keys)
}

func TestShowCatalog(t *testing.T) {
	var out bytes.Buffer
	s, err := NewSession(seedLogDir(t), &out)
	require.NoError(t, err)

	require.NoError(t, s.show("catalog/demo"))
	assert.Contains(t, out.String(), "demo")
	assert.Contains(t, out.String(), "abs")
}

func TestShowBodyPrettyPrintsJSON(t *testing.T) {
	var out bytes.Buffer
	s, err := NewSession(seedLogDir(t), &out)
	require.NoError(t, err)

	require.NoError(t, s.show("body/demo__abs.post"))
	var v map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &v))
	assert.Equal(t, "demo__abs", v["global_id"])
}

func TestShowUnknownKey(t *testing.T) {
	var out bytes.Buffer
	s, err := NewSession(seedLogDir(t), &out)
	require.NoError(t, err)
	assert.Error(t, s.show("body/none"))
}

func TestEmptyDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	var out bytes.Buffer
	s, err := NewSession(dir, &out)
	require.NoError(t, err)
	assert.Empty(t, s.keys)
}

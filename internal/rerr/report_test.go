package rerr

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportSurvivesWrapping(t *testing.T) {
	err := Newf(INS001, "monitor probe %q not found", "trace_entry")
	wrapped := fmt.Errorf("instrumenting demo: %w", err)

	rep, ok := AsReport(wrapped)
	require.True(t, ok)
	assert.Equal(t, INS001, rep.Code)
	assert.Contains(t, rep.Message, "trace_entry")
}

func TestFatalDisposition(t *testing.T) {
	assert.True(t, Fatal(INS001), "probe lookup aborts")
	assert.True(t, Fatal(REC001), "record emission propagates")
	assert.True(t, Fatal(DRV001), "corrupted manifest aborts")
	assert.False(t, Fatal(RES001), "type resolution drops locally")
	assert.False(t, Fatal(INS002), "value-def lookup drops locally")
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(Newf(DRV002, "no build tool")))
	assert.False(t, IsFatal(Newf(RES001, "cannot lower")))
	assert.True(t, IsFatal(fmt.Errorf("plain")), "unstructured errors are fatal")
	assert.False(t, IsFatal(nil))
}

func TestToJSON(t *testing.T) {
	rep, _ := AsReport(Newf(REC002, "log dir unusable"))
	out, err := rep.ToJSON(true)
	require.NoError(t, err)
	assert.Contains(t, out, `"code":"REC002"`)
	assert.Contains(t, out, `"schema":"rbrinfo.error/v1"`)
}

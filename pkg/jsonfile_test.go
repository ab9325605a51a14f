package pkg_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sojebsikder/npm-deploy/pkg"
)

func TestDocumentSetKeepsOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	writeFile(t, path, `{"b": 1, "a": {"y": true, "x": null}}`)

	doc, err := pkg.LoadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, path, doc.Path())

	require.NoError(t, doc.Set("a.x", "<tag> & more"))
	require.NoError(t, doc.Set("c", []string{"one"}))

	out := doc.Bytes()
	assert.Equal(t, []string{"b", "a", "c"}, objectKeys(out, ""))
	assert.Equal(t, []string{"y", "x"}, objectKeys(out, "a"))
	assert.Contains(t, string(out), `"<tag> & more"`)
	assert.Equal(t, "<tag> & more", doc.Get("a.x").String())
}

func TestDocumentSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	writeFile(t, path, `{"n": 1}`)

	doc, err := pkg.LoadDocument(path)
	require.NoError(t, err)
	require.NoError(t, doc.Set("flag", true))
	require.NoError(t, doc.Save())

	got := readJSON(t, path)
	assert.Equal(t, map[string]any{"n": float64(1), "flag": true}, got)
}

func TestDocumentRequireObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	writeFile(t, path, `{"obj": {}, "str": "x"}`)

	doc, err := pkg.LoadDocument(path)
	require.NoError(t, err)

	assert.NoError(t, doc.RequireObject("obj"))
	assert.NoError(t, doc.RequireObject("missing"))
	assert.ErrorIs(t, doc.RequireObject("str"), pkg.ErrNotObject)
}

func TestLoadDocumentRejectsNonObjects(t *testing.T) {
	for name, content := range map[string]string{
		"string": `"hello"`,
		"null":   `null`,
		"array":  `[]`,
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "doc.json")
			writeFile(t, path, content)
			_, err := pkg.LoadDocument(path)
			assert.ErrorIs(t, err, pkg.ErrNotObject)
		})
	}
}

func TestDocumentSetCollapsesDuplicateKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	writeFile(t, path, `{"flag": true, "n": 1, "flag": true, "a": {"x": 1}, "a": {"y": 2}}`)

	doc, err := pkg.LoadDocument(path)
	require.NoError(t, err)
	require.NoError(t, doc.Set("flag", false))
	require.NoError(t, doc.Set("a.z", 3))

	out := doc.Bytes()
	assert.Equal(t, []string{"n", "flag", "a"}, objectKeys(out, ""))
	assert.Equal(t, []string{"y", "z"}, objectKeys(out, "a"))
	assert.False(t, doc.Get("flag").Bool())
}

func TestDocumentRequireObjectUsesLastDuplicate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	writeFile(t, path, `{"obj": "x", "obj": {}, "str": {}, "str": "x"}`)

	doc, err := pkg.LoadDocument(path)
	require.NoError(t, err)

	assert.NoError(t, doc.RequireObject("obj"))
	assert.ErrorIs(t, doc.RequireObject("str"), pkg.ErrNotObject)
}

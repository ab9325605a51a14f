package pkg_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sojebsikder/npm-deploy/pkg"
)

func newRegistry(t *testing.T) *httptest.Server {
	t.Helper()
	packuments := map[string]map[string]any{
		"/rollup": {
			"name":      "rollup",
			"dist-tags": map[string]string{"latest": "3.29.4", "beta": "4.0.0-beta.1"},
			"versions": map[string]any{
				"2.79.1":       map[string]any{},
				"3.0.0":        map[string]any{},
				"3.29.4":       map[string]any{},
				"4.0.0-beta.1": map[string]any{},
			},
		},
		"/@babel/core": {
			"name":      "@babel/core",
			"dist-tags": map[string]string{"latest": "7.23.2"},
			"versions":  map[string]any{"7.23.2": map[string]any{}},
		},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		doc, ok := packuments[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(doc)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchPackageMeta(t *testing.T) {
	srv := newRegistry(t)
	client := pkg.NewRegistryClient(srv.URL + "/")

	meta, err := client.FetchPackageMeta(context.Background(), "@babel/core")
	require.NoError(t, err)
	assert.Equal(t, "@babel/core", meta.Name)
	assert.Equal(t, "7.23.2", meta.DistTags["latest"])

	_, err = client.FetchPackageMeta(context.Background(), "left-pad")
	assert.ErrorContains(t, err, "404")
}

func TestResolveVersion(t *testing.T) {
	srv := newRegistry(t)
	meta, err := pkg.NewRegistryClient(srv.URL).FetchPackageMeta(context.Background(), "rollup")
	require.NoError(t, err)

	tests := []struct {
		rng  string
		want string
	}{
		{"", "3.29.4"},
		{"latest", "3.29.4"},
		{"*", "3.29.4"},
		{"^3.0.0", "3.29.4"},
		{"~2.79.0", "2.79.1"},
		{">=3.0.0", "3.29.4"},
		{"3.0.0", "3.0.0"},
	}
	for _, tt := range tests {
		t.Run(tt.rng, func(t *testing.T) {
			got, err := pkg.ResolveVersion(meta, tt.rng)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err = pkg.ResolveVersion(meta, "^5.0.0")
	assert.Error(t, err)
}

func TestVerifyDependencies(t *testing.T) {
	srv := newRegistry(t)
	client := pkg.NewRegistryClient(srv.URL)

	ok := []pkg.DependencySpec{{Name: "rollup", Range: "^3.0.0"}, {Name: "@babel/core"}}
	assert.NoError(t, pkg.VerifyDependencies(context.Background(), zap.NewNop(), client, ok))

	bad := []pkg.DependencySpec{{Name: "rollup", Range: "^9.0.0"}, {Name: "no-such-package"}, {Name: "@babel/core"}}
	err := pkg.VerifyDependencies(context.Background(), zap.NewNop(), client, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rollup@^9.0.0")
	assert.Contains(t, err.Error(), "no-such-package")
	assert.NotContains(t, err.Error(), "@babel/core")
	lines := strings.Split(err.Error(), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "rollup@^9.0.0: "))
	assert.True(t, strings.HasPrefix(lines[1], "no-such-package: "))
}

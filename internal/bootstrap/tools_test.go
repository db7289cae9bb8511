package bootstrap

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toolArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func toolServer(t *testing.T, status int, body []byte) (*httptest.Server, *atomic.Int32, *atomic.Value) {
	t.Helper()
	var hits atomic.Int32
	var lastPath atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		lastPath.Store(r.URL.Path)
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits, &lastPath
}

func windowsOptions(baseURL string) Options {
	opts := testOptions()
	opts.Platform = "windows"
	opts.ToolsBaseURL = baseURL + "/tools/"
	return opts
}

func TestToolBundleName(t *testing.T) {
	tests := []struct {
		version string
		want    string
		wantErr bool
	}{
		{version: "16.2", want: "pgtools.16.2-win32x64.zip"},
		{version: "15.4.1", want: "pgtools.15.4-win32x64.zip"},
		{version: " 14 ", want: "pgtools.14.0-win32x64.zip"},
		{version: "", wantErr: true},
		{version: "latest", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			got, err := ToolBundleName(tt.version)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProvisionTools_SkipsOtherPlatforms(t *testing.T) {
	srv, hits, _ := toolServer(t, http.StatusOK, nil)
	opts := windowsOptions(srv.URL)
	opts.Platform = "linux"
	h := newHarness(t, opts)

	require.NoError(t, h.b.provisionTools(context.Background(), &Result{}))

	assert.Zero(t, hits.Load())
	exists, err := afero.DirExists(h.fs, ToolsDir(opts.Root))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestProvisionTools_DownloadsAndExtracts(t *testing.T) {
	archive := toolArchive(t, map[string]string{
		"pg_dump.exe":    "dump",
		"pg_restore.exe": "restore",
		"lib/libpq.dll":  "libpq",
	})
	srv, hits, lastPath := toolServer(t, http.StatusOK, archive)
	opts := windowsOptions(srv.URL)
	h := newHarness(t, opts)
	dir := ToolsDir(opts.Root)
	require.NoError(t, h.fs.MkdirAll(dir, 0o755))
	require.NoError(t, afero.WriteFile(h.fs, filepath.Join(dir, "stale.txt"), []byte("x"), 0o644))

	require.NoError(t, h.b.provisionTools(context.Background(), &Result{}))

	assert.EqualValues(t, 1, hits.Load())
	assert.Equal(t, "/tools/pgtools.16.2-win32x64.zip", lastPath.Load())

	dump, err := afero.ReadFile(h.fs, filepath.Join(dir, "pg_dump.exe"))
	require.NoError(t, err)
	assert.Equal(t, "dump", string(dump))
	lib, err := afero.ReadFile(h.fs, filepath.Join(dir, "lib", "libpq.dll"))
	require.NoError(t, err)
	assert.Equal(t, "libpq", string(lib))

	for _, gone := range []string{"stale.txt", "pgtools.16.2-win32x64.zip"} {
		ok, err := afero.Exists(h.fs, filepath.Join(dir, gone))
		require.NoError(t, err)
		assert.False(t, ok, gone)
	}

	require.NoError(t, h.b.provisionTools(context.Background(), &Result{}))
	assert.EqualValues(t, 1, hits.Load(), "installed tools are not downloaded again")
}

func TestProvisionTools_FailuresAreNotFatal(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    []byte
		version string
	}{
		{name: "server error", status: http.StatusInternalServerError, version: "16.2"},
		{name: "corrupt archive", status: http.StatusOK, body: []byte("not a zip"), version: "16.2"},
		{name: "unknown version", status: http.StatusOK, version: "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _, _ := toolServer(t, tt.status, tt.body)
			opts := windowsOptions(srv.URL)
			opts.DatabaseVersion = tt.version
			h := newHarness(t, opts)

			require.NoError(t, h.b.provisionTools(context.Background(), &Result{}))

			ok, err := afero.Exists(h.fs, filepath.Join(ToolsDir(opts.Root), "pg_dump.exe"))
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestUnzip_RejectsEscapingEntries(t *testing.T) {
	fs := afero.NewMemMapFs()
	archive := toolArchive(t, map[string]string{"../evil.exe": "x"})
	require.NoError(t, afero.WriteFile(fs, "/tmp/a.zip", archive, 0o644))

	err := unzip(fs, "/tmp/a.zip", "/srv/tools")

	assert.Error(t, err)
	ok, _ := afero.Exists(fs, "/srv/evil.exe")
	assert.False(t, ok)
}

func TestCreateDirectories(t *testing.T) {
	h := newHarness(t, testOptions())

	require.NoError(t, h.b.createDirectories(context.Background(), &Result{}))
	require.NoError(t, h.b.createDirectories(context.Background(), &Result{}))

	for _, dir := range []string{"backups", "restores"} {
		ok, err := afero.DirExists(h.fs, filepath.Join("/srv/helpdesk", dir))
		require.NoError(t, err)
		assert.True(t, ok, dir)
	}
}

func TestCreateDirectories_ReadOnlyFs(t *testing.T) {
	h := newHarness(t, testOptions())
	h.b.fs = afero.NewReadOnlyFs(afero.NewMemMapFs())

	err := h.b.createDirectories(context.Background(), &Result{})

	assert.Error(t, err)
}

package bootstrap

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const toolsPlatform = "windows"

// toolBinaries must all be present for the bundle to count as installed.
var toolBinaries = []string{"pg_dump.exe", "pg_restore.exe"}

// ToolsDir is where the database client tools are unpacked.
func ToolsDir(root string) string {
	return filepath.Join(root, "tools", "bin", "win32")
}

// ToolBundleName returns the archive name for a database server version,
// e.g. "16.2" becomes "pgtools.16.2-win32x64.zip".
func ToolBundleName(dbVersion string) (string, error) {
	v, err := semver.NewVersion(strings.TrimSpace(dbVersion))
	if err != nil {
		return "", fmt.Errorf("parse database version %q: %w", dbVersion, err)
	}
	return fmt.Sprintf("pgtools.%d.%d-win32x64.zip", v.Major(), v.Minor()), nil
}

// provisionTools downloads the backup client tools on windows hosts. Every
// failure is logged and the step still succeeds.
func (b *Bootstrapper) provisionTools(ctx context.Context, _ *Result) error {
	if b.opts.Platform != toolsPlatform {
		return nil
	}
	if err := b.installTools(ctx); err != nil {
		b.logger.Warn("database tools not provisioned", zap.Error(err))
	}
	return nil
}

func (b *Bootstrapper) installTools(ctx context.Context) error {
	dir := ToolsDir(b.opts.Root)
	if b.toolsInstalled(dir) {
		return nil
	}

	filename, err := ToolBundleName(b.opts.DatabaseVersion)
	if err != nil {
		return err
	}
	b.logger.Debug("downloading database tools", zap.String("bundle", filename))

	if err := b.fs.RemoveAll(dir); err != nil {
		return fmt.Errorf("clear %s: %w", dir, err)
	}
	if err := b.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	archive := filepath.Join(dir, filename)
	if err := b.download(ctx, filename, archive); err != nil {
		return err
	}
	defer func() {
		if err := b.fs.Remove(archive); err != nil && !os.IsNotExist(err) {
			b.logger.Warn("remove tool archive", zap.String("path", archive), zap.Error(err))
		}
	}()

	if err := unzip(b.fs, archive, dir); err != nil {
		return err
	}
	b.logger.Info("database tools installed", zap.String("dir", dir))
	return nil
}

func (b *Bootstrapper) toolsInstalled(dir string) bool {
	for _, name := range toolBinaries {
		ok, err := afero.Exists(b.fs, filepath.Join(dir, name))
		if err != nil || !ok {
			return false
		}
	}
	return true
}

func (b *Bootstrapper) download(ctx context.Context, filename, dest string) error {
	base, err := url.Parse(b.opts.ToolsBaseURL)
	if err != nil {
		return fmt.Errorf("parse tools url: %w", err)
	}
	base.Path = path.Join(base.Path, filename)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", filename, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: unexpected status %s", filename, resp.Status)
	}

	f, err := b.fs.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return f.Close()
}

// unzip extracts archive into dir. Entries escaping dir are rejected.
func unzip(fs afero.Fs, archive, dir string) error {
	f, err := fs.Open(archive)
	if err != nil {
		return fmt.Errorf("open %s: %w", archive, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", archive, err)
	}
	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		return fmt.Errorf("read %s: %w", archive, err)
	}

	root := filepath.Clean(dir) + string(filepath.Separator)
	for _, entry := range zr.File {
		target := filepath.Join(dir, filepath.FromSlash(entry.Name))
		if !strings.HasPrefix(target, root) {
			return fmt.Errorf("archive entry %q escapes %s", entry.Name, dir)
		}
		if entry.FileInfo().IsDir() {
			if err := fs.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := extract(fs, entry, target); err != nil {
			return fmt.Errorf("extract %s: %w", entry.Name, err)
		}
	}
	return nil
}

func extract(fs afero.Fs, entry *zip.File, target string) error {
	if err := fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	src, err := entry.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := fs.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o755)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

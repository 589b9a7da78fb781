// Package backup archives the LankaPortal database and config file as
// tar.gz and restores them.
package backup

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/HerbHall/lankaportal/internal/version"
)

// ManifestName is the archive entry describing the backup.
const ManifestName = "manifest.json"

// Manifest records what a backup contains.
type Manifest struct {
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	Database  string    `json:"database"`
	Config    string    `json:"config,omitempty"`
}

// Backup writes a tar.gz archive to outputPath holding a consistent
// snapshot of the SQLite database at dbPath, the config file when
// configPath names an existing file, and a manifest.
func Backup(ctx context.Context, dbPath, configPath, outputPath string) (*Manifest, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("database file not found: %w", err)
	}

	tmp, err := os.MkdirTemp("", "lankaportal-backup-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmp)

	snapshot := filepath.Join(tmp, filepath.Base(dbPath))
	if err := snapshotDB(ctx, dbPath, snapshot); err != nil {
		return nil, fmt.Errorf("snapshot database: %w", err)
	}

	m := &Manifest{
		Version:   version.Short(),
		CreatedAt: time.Now().UTC(),
		Database:  filepath.Base(dbPath),
	}
	files := map[string]string{m.Database: snapshot}
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			m.Config = filepath.Base(configPath)
			files[m.Config] = configPath
		}
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("creating output file: %w", err)
	}
	if err := writeArchive(out, m, files); err != nil {
		out.Close()
		os.Remove(outputPath)
		return nil, err
	}
	if err := out.Close(); err != nil {
		return nil, err
	}
	return m, nil
}

// Restore extracts the archive at inputPath into dir. Existing files are
// kept unless force is set.
func Restore(_ context.Context, inputPath, dir string, force bool) (*Manifest, error) {
	f, err := os.Open(inputPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("not a gzip archive: %w", err)
	}
	defer gr.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	var m *Manifest
	tr := tar.NewReader(gr)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read archive: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		name := filepath.Base(hdr.Name)
		if name != hdr.Name || name == "." || name == ".." {
			return nil, fmt.Errorf("unexpected archive entry %q", hdr.Name)
		}

		if name == ManifestName {
			m = &Manifest{}
			if err := json.NewDecoder(tr).Decode(m); err != nil {
				return nil, fmt.Errorf("read manifest: %w", err)
			}
			continue
		}
		if err := extract(tr, filepath.Join(dir, name), force); err != nil {
			return nil, err
		}
	}
	if m == nil {
		return nil, errors.New("archive has no manifest")
	}
	return m, nil
}

// snapshotDB copies src to dst with VACUUM INTO, which is consistent even
// while the server holds the database open.
func snapshotDB(ctx context.Context, src, dst string) error {
	db, err := sql.Open("sqlite", src)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.ExecContext(ctx, "VACUUM INTO ?", dst)
	return err
}

func writeArchive(w io.Writer, m *Manifest, files map[string]string) error {
	gw := gzip.NewWriter(w)
	tw := tar.NewWriter(gw)

	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if err := tw.WriteHeader(&tar.Header{
		Name:    ManifestName,
		Mode:    0o644,
		Size:    int64(len(raw)),
		ModTime: m.CreatedAt,
	}); err != nil {
		return err
	}
	if _, err := tw.Write(raw); err != nil {
		return err
	}

	for name, path := range files {
		if err := addFile(tw, path, name); err != nil {
			return fmt.Errorf("adding %s to archive: %w", name, err)
		}
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return gw.Close()
}

func addFile(tw *tar.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	hdr.Name = name
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err = io.Copy(tw, f)
	return err
}

func extract(r io.Reader, path string, force bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%s exists; use -force to overwrite", path)
		}
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

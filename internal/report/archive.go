package report

import (
	"archive/tar"
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ulikunitz/xz"
)

// zipDir merges every workbook in dir into a single flat zip archive.
func zipDir(dir, zipPath string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read %s: %w", dir, err)
	}

	out, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", zipPath, err)
	}
	defer func() { _ = out.Close() }()

	zw := zip.NewWriter(out)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".xlsx") {
			continue
		}
		if err := addZipEntry(zw, filepath.Join(dir, entry.Name()), entry.Name()); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish zip: %w", err)
	}
	return out.Close()
}

func addZipEntry(zw *zip.Writer, path, name string) error {
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = src.Close() }()

	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("add %s to zip: %w", name, err)
	}
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("write %s to zip: %w", name, err)
	}
	return nil
}

// bundleTarXz packs the whole output folder into a tar.xz for hand-off,
// skipping the bundle itself and any leftover temp directories.
func bundleTarXz(dir, bundlePath string) error {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), "_tmp_") {
				return filepath.SkipDir
			}
			return nil
		}
		if path == bundlePath {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk %s: %w", dir, err)
	}
	sort.Strings(files)

	out, err := os.Create(bundlePath)
	if err != nil {
		return fmt.Errorf("create %s: %w", bundlePath, err)
	}
	defer func() { _ = out.Close() }()

	xw, err := xz.NewWriter(out)
	if err != nil {
		return fmt.Errorf("start xz stream: %w", err)
	}
	tw := tar.NewWriter(xw)
	for _, path := range files {
		if err := addTarEntry(tw, dir, path); err != nil {
			return err
		}
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("finish tar: %w", err)
	}
	if err := xw.Close(); err != nil {
		return fmt.Errorf("finish xz: %w", err)
	}
	return out.Close()
}

func addTarEntry(tw *tar.Writer, root, path string) error {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return fmt.Errorf("tar header for %s: %w", rel, err)
	}
	hdr.Name = filepath.ToSlash(rel)
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("write header for %s: %w", rel, err)
	}
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = src.Close() }()
	if _, err := io.Copy(tw, src); err != nil {
		return fmt.Errorf("write %s to tar: %w", rel, err)
	}
	return nil
}

package image

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// SanitizeInventoryNumber makes an inventory number safe to embed in a file
// name by replacing path separators with dashes.
func SanitizeInventoryNumber(inv string) string {
	return strings.NewReplacer("/", "-", `\`, "-").Replace(inv)
}

// FileName builds the stored name for src attached to an artifact:
// {artifactID}_{sanitized inventory number}_{base name of src}.
func FileName(artifactID int64, inventoryNumber, src string) string {
	base := filepath.Base(strings.ReplaceAll(src, `\`, "/"))
	return fmt.Sprintf("%d_%s_%s", artifactID, SanitizeInventoryNumber(inventoryNumber), base)
}

// freeName returns name, or name with a numeric suffix before the extension
// if a file of that name already exists in dir.
func freeName(dir, name string) string {
	exists := func(n string) bool {
		_, err := os.Lstat(filepath.Join(dir, n))
		return err == nil
	}
	if !exists(name) {
		return name
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, i, ext)
		if !exists(candidate) {
			return candidate
		}
	}
}

// withinDir checks that path resolves inside dir once cleaned.
func withinDir(path, dir string) error {
	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", dir, err)
	}
	rel, err := filepath.Rel(absDir, absPath)
	if err != nil {
		return fmt.Errorf("relating %s to %s: %w", path, dir, err)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("path %s escapes %s", path, dir)
	}
	return nil
}

// maxPlaceAttempts bounds how often place picks a new name after losing a
// race for the previous one.
const maxPlaceAttempts = 10

// place copies src into dir under name, or under the next free suffixed
// variant of name, and returns the name used. Existing files are never
// overwritten.
func place(dir, name, src string) (string, error) {
	for range maxPlaceAttempts {
		n := freeName(dir, name)
		dst := filepath.Join(dir, n)
		if err := withinDir(dst, dir); err != nil {
			return "", err
		}
		err := copyFile(src, dst)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		return n, nil
	}
	return "", fmt.Errorf("no free name for %s in %s", name, dir)
}

// copyFile copies src to a new file dst. It fails with fs.ErrExist if dst
// is already there.
func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", src)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(dst)
		}
	}()

	_, err = io.Copy(out, in)
	return err
}

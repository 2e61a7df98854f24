// Package fileutil moves duplicate files out of the way: to another folder
// or to the system trash.
package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"
)

// MoveFile moves a file into destDir, appending a counter to the name if a
// file with the same name already exists (file.jpg -> file_1.jpg).
func MoveFile(src, destDir string) error {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return err
	}

	name := uniqueName(filepath.Base(src), func(candidate string) bool {
		_, err := os.Stat(filepath.Join(destDir, candidate))
		return os.IsNotExist(err)
	})

	return rename(src, filepath.Join(destDir, name))
}

// MoveToTrash moves a file to the platform trash folder. On Linux it follows
// the freedesktop.org trash spec including the .trashinfo sidecar; elsewhere
// it falls back to a plain move into the trash directory.
func MoveToTrash(src string) error {
	trashDir, err := trashDir()
	if err != nil {
		return err
	}
	if runtime.GOOS == "linux" {
		return moveToLinuxTrash(src, trashDir)
	}
	return MoveFile(src, trashDir)
}

func trashDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	var dir string
	switch runtime.GOOS {
	case "darwin":
		dir = filepath.Join(home, ".Trash")
	case "linux":
		dir = filepath.Join(home, ".local", "share", "Trash", "files")
	default:
		dir = filepath.Join(home, "imagedup_trash")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create trash directory: %w", err)
	}
	return dir, nil
}

// moveToLinuxTrash moves a file into the trash files dir and writes the
// matching .trashinfo record.
func moveToLinuxTrash(src, filesDir string) error {
	home, _ := os.UserHomeDir()
	infoDir := filepath.Join(home, ".local", "share", "Trash", "info")
	if err := os.MkdirAll(infoDir, 0755); err != nil {
		return err
	}

	absPath, err := filepath.Abs(src)
	if err != nil {
		return err
	}

	// The name must be free in both the files dir and the info dir.
	name := uniqueName(filepath.Base(src), func(candidate string) bool {
		_, err1 := os.Stat(filepath.Join(filesDir, candidate))
		_, err2 := os.Stat(filepath.Join(infoDir, candidate+".trashinfo"))
		return os.IsNotExist(err1) && os.IsNotExist(err2)
	})

	infoPath := filepath.Join(infoDir, name+".trashinfo")
	record := fmt.Sprintf("[Trash Info]\nPath=%s\nDeletionDate=%s\n",
		absPath, time.Now().Format("2006-01-02T15:04:05"))
	if err := os.WriteFile(infoPath, []byte(record), 0644); err != nil {
		return err
	}

	if err := rename(src, filepath.Join(filesDir, name)); err != nil {
		os.Remove(infoPath)
		return err
	}
	return nil
}

// uniqueName appends _1, _2, ... to the base name until available reports
// the candidate as free.
func uniqueName(filename string, available func(string) bool) string {
	if available(filename) {
		return filename
	}

	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s_%d%s", base, n, ext)
		if available(candidate) {
			return candidate
		}
	}
}

// rename moves a file, falling back to copy+delete when source and
// destination are on different filesystems.
func rename(src, dest string) error {
	err := os.Rename(src, dest)
	if err == nil {
		return nil
	}

	var linkErr *os.LinkError
	if errors.As(err, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV) {
		if err := copyFile(src, dest); err != nil {
			return err
		}
		return os.Remove(src)
	}
	return err
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		os.Remove(dest)
		return err
	}
	return nil
}

// Package fileutils provides the local file operations used to stage fetched
// bytes for readers that need a path on disk.
package fileutils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DirectoryExists checks if a directory exists
func DirectoryExists(dirPath string) bool {
	info, err := os.Stat(dirPath)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// EnsureDirectoryExists creates a directory if it doesn't exist
func EnsureDirectoryExists(dirPath string) error {
	if dirPath == "" || DirectoryExists(dirPath) {
		return nil
	}
	if err := os.MkdirAll(dirPath, 0750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

// StageBytes writes data to a new temporary file in dir (the OS temp dir when
// empty). The file name keeps the extension of nameHint so readers that sniff
// extensions still work. Callers own the file and must DeleteFile it.
func StageBytes(dir, nameHint string, data []byte) (string, error) {
	if err := EnsureDirectoryExists(dir); err != nil {
		return "", err
	}
	f, err := os.CreateTemp(dir, "mis-*"+filepath.Ext(nameHint))
	if err != nil {
		return "", fmt.Errorf("failed to create staging file: %w", err)
	}
	path := f.Name()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = DeleteFile(path)
		return "", fmt.Errorf("failed to write staging file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = DeleteFile(path)
		return "", fmt.Errorf("failed to close staging file: %w", err)
	}
	return path, nil
}

// DeleteFile removes a file. Deleting a file that does not exist is a no-op.
func DeleteFile(filePath string) error {
	if filePath == "" {
		return nil
	}
	if err := os.Remove(filePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file %s: %w", filePath, err)
	}
	return nil
}

// WriteFile writes data to a file, creating any parent directories if needed
func WriteFile(filePath string, data []byte, perm os.FileMode) error {
	if err := EnsureDirectoryExists(filepath.Dir(filePath)); err != nil {
		return err
	}
	if err := os.WriteFile(filePath, data, perm); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

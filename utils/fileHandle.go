package utils

import (
	"errors"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const MaxImageSize = 2 * 1024 * 1024

var ErrUnsupportedFile = errors.New("only jpg, jpeg, png and webp images are allowed")
var ErrFileTooLarge = errors.New("file exceeds the 2MB limit")

var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

// SaveUploadedImage stores an image under root/subDir with a random name and
// returns the path relative to root
func SaveUploadedImage(file *multipart.FileHeader, root, subDir string) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !imageExtensions[ext] {
		return "", ErrUnsupportedFile
	}
	if file.Size > MaxImageSize {
		return "", ErrFileTooLarge
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	destDir := filepath.Join(root, subDir)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(destDir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return path.Join(subDir, name), nil
}

// GetFileURL maps a stored relative path to the public /uploads route
func GetFileURL(relPath string) string {
	if relPath == "" {
		return ""
	}
	return "/uploads/" + strings.TrimPrefix(relPath, "/")
}

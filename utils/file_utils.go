package utils

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/disintegration/imaging"
)

const (
	// Base directory for storing uploaded files
	UploadBaseDir = "uploads"
	// Base URL for serving files
	baseURL = "/uploads"
	// Maximum file size (5MB)
	maxFileSize = 5 * 1024 * 1024
	// Profile images wider than this get downscaled
	maxImageWidth = 512
)

// Allowed profile image extensions
var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

var filenameReg = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// cleanFilename removes any potentially dangerous characters from the filename
func cleanFilename(filename string) string {
	filename = filepath.Base(filename)
	return filenameReg.ReplaceAllString(filename, "")
}

// ValidateImageType checks that the file extension is an accepted image type
func ValidateImageType(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedImageExts[ext] {
		return fmt.Errorf("wrong file type submitted, allowed formats: jpg, jpeg, png")
	}
	return nil
}

// SaveProfileImage decodes the uploaded image, downscales it when it exceeds
// the maximum width, and writes it under dir. Returns the public URL.
func SaveProfileImage(fileData []byte, dir, filename string) (string, error) {
	if len(fileData) > maxFileSize {
		return "", fmt.Errorf("file too large, maximum size is %d bytes", maxFileSize)
	}

	cleanName := cleanFilename(filename)
	if err := ValidateImageType(cleanName); err != nil {
		return "", err
	}

	img, err := imaging.Decode(bytes.NewReader(fileData))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %v", err)
	}

	if img.Bounds().Dx() > maxImageWidth {
		img = imaging.Resize(img, maxImageWidth, 0, imaging.Lanczos)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %v", dir, err)
	}

	fullPath := filepath.Join(dir, cleanName)
	if err := imaging.Save(img, fullPath, imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("failed to write file %s: %v", fullPath, err)
	}

	subDir := strings.TrimPrefix(filepath.ToSlash(dir), UploadBaseDir+"/")
	return fmt.Sprintf("%s/%s/%s", baseURL, subDir, cleanName), nil
}

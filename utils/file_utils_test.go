package utils

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeTestImage(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestValidateImageType(t *testing.T) {
	assert.NoError(t, ValidateImageType("photo.jpg"))
	assert.NoError(t, ValidateImageType("photo.JPEG"))
	assert.NoError(t, ValidateImageType("photo.png"))

	assert.Error(t, ValidateImageType("document.pdf"))
	assert.Error(t, ValidateImageType("clip.gif"))
	assert.Error(t, ValidateImageType("noextension"))
}

func TestCleanFilename(t *testing.T) {
	assert.Equal(t, "avatar.jpg", cleanFilename("avatar.jpg"))
	assert.Equal(t, "etcpasswd.png", cleanFilename("../../etc passwd.png"))
	assert.Equal(t, "file.jpg", cleanFilename("fi<le>.jpg"))
}

func TestSaveProfileImage(t *testing.T) {
	dir := t.TempDir()
	data := encodeTestImage(t, 200, 150)

	url, err := SaveProfileImage(data, dir, "avatar.jpg")
	require.NoError(t, err)
	assert.Contains(t, url, "avatar.jpg")

	img, err := imaging.Open(filepath.Join(dir, "avatar.jpg"))
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 150, img.Bounds().Dy())
}

func TestSaveProfileImageDownscalesWideImages(t *testing.T) {
	dir := t.TempDir()
	data := encodeTestImage(t, 1024, 512)

	_, err := SaveProfileImage(data, dir, "wide.jpg")
	require.NoError(t, err)

	img, err := imaging.Open(filepath.Join(dir, "wide.jpg"))
	require.NoError(t, err)
	assert.Equal(t, 512, img.Bounds().Dx())
	assert.Equal(t, 256, img.Bounds().Dy())
}

func TestSaveProfileImageRejectsBadType(t *testing.T) {
	_, err := SaveProfileImage([]byte("not an image"), t.TempDir(), "file.txt")
	assert.Error(t, err)
}

func TestSaveProfileImageRejectsOversized(t *testing.T) {
	data := make([]byte, maxFileSize+1)
	_, err := SaveProfileImage(data, t.TempDir(), "big.jpg")
	assert.Error(t, err)
}

func TestSaveProfileImageRejectsCorruptData(t *testing.T) {
	_, err := SaveProfileImage([]byte{0x00, 0x01, 0x02}, t.TempDir(), "corrupt.jpg")
	assert.Error(t, err)
}

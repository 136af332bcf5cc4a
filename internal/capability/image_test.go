package capability

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngHeader  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	jpegHeader = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestImageReader_DeclaredType(t *testing.T) {
	img, err := ImageReader{R: bytes.NewReader(jpegHeader), DeclaredMIME: "image/jpeg"}.Encode(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", img.MIMEType)
	assert.Equal(t, base64.StdEncoding.EncodeToString(jpegHeader), img.Base64)
}

func TestImageReader_DeclaredTypeWithParams(t *testing.T) {
	img, err := ImageReader{R: bytes.NewReader(pngHeader), DeclaredMIME: "image/png; name=pothole.png"}.Encode(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)
}

func TestImageReader_SniffsWhenUndeclared(t *testing.T) {
	tests := []struct {
		name     string
		declared string
	}{
		{"empty", ""},
		{"generic binary", "application/octet-stream"},
		{"malformed", ";;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := ImageReader{R: bytes.NewReader(pngHeader), DeclaredMIME: tt.declared}.Encode(context.Background())
			require.NoError(t, err)
			assert.Equal(t, "image/png", img.MIMEType)
		})
	}
}

func TestImageReader_RejectsNonImage(t *testing.T) {
	_, err := ImageReader{R: bytes.NewReader([]byte("just some notes about a pothole"))}.Encode(context.Background())
	require.ErrorIs(t, err, ErrNotImage)
}

func TestImageReader_RejectsEmpty(t *testing.T) {
	_, err := ImageReader{R: bytes.NewReader(nil), DeclaredMIME: "image/png"}.Encode(context.Background())
	require.Error(t, err)
}

func TestImageReader_ReadError(t *testing.T) {
	_, err := ImageReader{R: failingReader{}}.Encode(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read image")
}

func TestImageReader_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ImageReader{R: bytes.NewReader(pngHeader)}.Encode(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestImageFile_Encode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pothole.jpg")
	require.NoError(t, os.WriteFile(path, jpegHeader, 0o600))

	img, err := ImageFile{Path: path}.Encode(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", img.MIMEType)

	decoded, err := base64.StdEncoding.DecodeString(img.Base64)
	require.NoError(t, err)
	assert.Equal(t, jpegHeader, decoded)
}

func TestImageFile_Missing(t *testing.T) {
	_, err := ImageFile{Path: filepath.Join(t.TempDir(), "missing.png")}.Encode(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

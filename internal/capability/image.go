package capability

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/couchcryptid/city-pulse-service/internal/domain"
)

// ErrNotImage is returned when the selected content is not an image.
var ErrNotImage = errors.New("selected file is not an image")

var errEmptyImage = errors.New("selected file is empty")

// ImageReader encodes an image read from R. DeclaredMIME is the type the
// client announced; it is trusted when it names an image type and sniffed
// from the content otherwise.
type ImageReader struct {
	R            io.Reader
	DeclaredMIME string
}

// Encode reads the whole stream and base64-encodes it.
func (i ImageReader) Encode(ctx context.Context) (domain.EncodedImage, error) {
	if err := ctx.Err(); err != nil {
		return domain.EncodedImage{}, err
	}
	data, err := io.ReadAll(i.R)
	if err != nil {
		return domain.EncodedImage{}, fmt.Errorf("read image: %w", err)
	}
	return encode(data, i.DeclaredMIME)
}

// ImageFile encodes the image stored at Path.
type ImageFile struct {
	Path string
}

// Encode reads the file and base64-encodes it.
func (f ImageFile) Encode(ctx context.Context) (domain.EncodedImage, error) {
	if err := ctx.Err(); err != nil {
		return domain.EncodedImage{}, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return domain.EncodedImage{}, fmt.Errorf("read image file: %w", err)
	}
	return encode(data, "")
}

func encode(data []byte, declared string) (domain.EncodedImage, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return domain.EncodedImage{}, errEmptyImage
	}
	mimeType := imageType(declared)
	if mimeType == "" {
		detected := mimetype.Detect(data)
		for m := detected; m != nil; m = m.Parent() {
			if strings.HasPrefix(m.String(), "image/") {
				mimeType = m.String()
				break
			}
		}
	}
	if mimeType == "" {
		return domain.EncodedImage{}, ErrNotImage
	}
	return domain.EncodedImage{
		Base64:   base64.StdEncoding.EncodeToString(data),
		MIMEType: mimeType,
	}, nil
}

// imageType returns the media type of declared when it is image/*, else "".
func imageType(declared string) string {
	if declared == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return ""
	}
	return mediaType
}

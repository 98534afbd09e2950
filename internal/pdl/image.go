package pdl

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// ImageType is the image codec carried by a <|raw_media(...)|> or
// <|media(...)|> block.
type ImageType string

const (
	ImagePNG  ImageType = "png"
	ImageJPEG ImageType = "jpeg"
	ImageWebP ImageType = "webp"
	ImageGIF  ImageType = "gif"
)

// ImageTypeFromExtension maps a file extension (with or without a
// leading dot) to an ImageType.
func ImageTypeFromExtension(ext string) (ImageType, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "png":
		return ImagePNG, nil
	case "jpg", "jpeg":
		return ImageJPEG, nil
	case "webp":
		return ImageWebP, nil
	case "gif":
		return ImageGIF, nil
	default:
		return "", fmt.Errorf("pdl: unsupported image extension %q", ext)
	}
}

// Extension returns the canonical file extension for t.
func (t ImageType) Extension() string {
	if t == ImageJPEG {
		return "jpg"
	}
	return string(t)
}

func decodeBase64(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}

func encodeBase64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

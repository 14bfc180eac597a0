package client

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"roomviz/internal/vision"
)

// EncodeImage turns raw image bytes into an inline room image. The MIME type
// comes from the file extension, then content sniffing, then image/jpeg.
func EncodeImage(data []byte, filename string) (vision.RoomImage, error) {
	if len(data) == 0 {
		return vision.RoomImage{}, errors.New("image is empty")
	}
	if len(data) > vision.MaxImageBytes {
		return vision.RoomImage{}, fmt.Errorf("image exceeds %d bytes", vision.MaxImageBytes)
	}
	return vision.RoomImage{
		Base64:   base64.StdEncoding.EncodeToString(data),
		MIMEType: detectMime(data, filename),
	}, nil
}

// EncodeFile reads path and encodes it with EncodeImage.
func EncodeFile(path string) (vision.RoomImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return vision.RoomImage{}, fmt.Errorf("read room image: %w", err)
	}
	return EncodeImage(data, filepath.Base(path))
}

func detectMime(data []byte, filename string) string {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" {
		if declared, _, _ := strings.Cut(mime.TypeByExtension(ext), ";"); strings.HasPrefix(declared, "image/") {
			return declared
		}
	}
	if sniffed := http.DetectContentType(data); strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	return "image/jpeg"
}

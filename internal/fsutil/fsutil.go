// Package fsutil holds small file helpers shared by the push command and the
// development server.
package fsutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// HashFile returns the hex SHA-256 of a file's contents.
func HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s; %w", path, err)
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", fmt.Errorf("failed to read %s; %w", path, err)
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

// HashBytes returns the hex SHA-256 of data.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// DetectMIME determines the MIME type of content, preferring the extension
// when sniffing is inconclusive.
func DetectMIME(path string, content []byte) string {
	ext := strings.ToLower(filepath.Ext(path))
	extMIME := mediaTypes[ext]
	if extMIME == "" {
		extMIME = stripParams(mime.TypeByExtension(ext))
	}

	var sniffed string
	if len(content) > 0 {
		sniffed = stripParams(http.DetectContentType(content))
	}

	switch {
	case extMIME != "" && (sniffed == "" || sniffed == "application/octet-stream" || sniffed == "text/plain"):
		return extMIME
	case sniffed != "":
		return sniffed
	case extMIME != "":
		return extMIME
	default:
		return "application/octet-stream"
	}
}

// MediaTags returns element tags describing a file: its broad media class
// (image, audio, video, text, application) and its full MIME type.
func MediaTags(path string, content []byte) []string {
	mimeType := DetectMIME(path, content)
	class, _, _ := strings.Cut(mimeType, "/")
	if class == mimeType {
		return []string{mimeType}
	}
	return []string{class, mimeType}
}

func stripParams(mimeType string) string {
	if idx := strings.Index(mimeType, ";"); idx != -1 {
		mimeType = mimeType[:idx]
	}
	return strings.TrimSpace(mimeType)
}

// mediaTypes covers formats common in training data that the platform MIME
// table often lacks.
var mediaTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".heic": "image/heic",
	".avif": "image/avif",
	".svg":  "image/svg+xml",

	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",

	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",

	".txt":     "text/plain",
	".md":      "text/markdown",
	".csv":     "text/csv",
	".tsv":     "text/tab-separated-values",
	".json":    "application/json",
	".jsonl":   "application/x-ndjson",
	".ndjson":  "application/x-ndjson",
	".yaml":    "text/yaml",
	".yml":     "text/yaml",
	".xml":     "application/xml",
	".parquet": "application/vnd.apache.parquet",
	".npy":     "application/x-npy",
	".npz":     "application/zip",
	".pdf":     "application/pdf",

	".zip": "application/zip",
	".gz":  "application/gzip",
	".tar": "application/x-tar",
	".zst": "application/zstd",
	".lz4": "application/x-lz4",
	".age": "application/x-age-encryption",
}

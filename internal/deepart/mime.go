package deepart

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/wailsapp/mimetype"
)

const fallbackMIME = "application/octet-stream"

// DetectMIME sniffs the content type of data, falling back to the file
// extension when the content is not recognised.
func DetectMIME(data []byte, filename string) string {
	if len(data) > 0 {
		detected := mimetype.Detect(data)
		if detected != nil && !detected.Is(fallbackMIME) && !detected.Is("text/plain") {
			return stripParams(detected.String())
		}
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); byExt != "" {
		return stripParams(byExt)
	}
	return fallbackMIME
}

func stripParams(value string) string {
	if idx := strings.IndexByte(value, ';'); idx >= 0 {
		value = value[:idx]
	}
	return strings.TrimSpace(value)
}

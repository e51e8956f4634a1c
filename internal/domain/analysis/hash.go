package analysis

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
)

// AllowedExtensions is the upload allow-list for file checks.
var AllowedExtensions = []string{".pdf", ".docx", ".txt", ".exe", ".zip", ".jpg", ".png", ".xlsx"}

// ContentHash returns the hex SHA-256 of raw file bytes.
func ContentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// ExtensionAllowed reports whether filename ends with an allowed extension (case-insensitive).
func ExtensionAllowed(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, a := range AllowedExtensions {
		if ext == a {
			return true
		}
	}
	return false
}

package constants

import "strings"

// FileTypes holds the receipt source formats accepted by ingestion.
var FileTypes = []string{"TXT", "PDF"}

// AllowedExtensions holds the default allowed file extensions for receipts ingestion.
var AllowedExtensions = map[string]struct{}{
	"txt": {},
	"pdf": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsAllowedExt reports whether ext (with or without dot) can be ingested.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}

package constants

import "strings"

// Extension tables for the format router. Keys are stored without the dot.
var (
	imageExtensions = map[string]struct{}{
		"jpg": {}, "jpeg": {}, "png": {},
	}
	textExtensions = map[string]struct{}{
		"txt": {},
	}
	documentExtensions = map[string]struct{}{
		"pdf": {},
	}
	audioExtensions = map[string]struct{}{
		"mp3": {}, "mp4": {}, "flac": {}, "wav": {},
		"ogg": {}, "webm": {}, "amr": {},
	}
)

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// KeyExt returns the normalized extension of an object key, or "" if none.
func KeyExt(key string) string {
	idx := strings.LastIndex(key, ".")
	if idx < 0 || idx == len(key)-1 {
		return ""
	}
	return NormalizeExt(key[idx+1:])
}

// AssetTypeForKey matches a key against the supported extension tables.
// Unmatched extensions return ok=false; callers skip those keys silently.
func AssetTypeForKey(key string) (AssetType, bool) {
	ext := KeyExt(key)
	switch {
	case has(imageExtensions, ext):
		return AssetTypeImage, true
	case has(textExtensions, ext):
		return AssetTypeText, true
	case has(documentExtensions, ext):
		return AssetTypePDF, true
	case has(audioExtensions, ext):
		return AssetTypeAudio, true
	default:
		return "", false
	}
}

func has(set map[string]struct{}, ext string) bool {
	_, ok := set[ext]
	return ok
}

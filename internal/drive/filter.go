package drive

import "strings"

// mimeTypesByTag maps an image type tag to the MIME types the API reports for it
var mimeTypesByTag = map[string][]string{
	"jpg":  {"image/jpeg", "image/jpg", "image/pjpeg"},
	"jpeg": {"image/jpeg", "image/jpg", "image/pjpeg"},
	"png":  {"image/png"},
	"gif":  {"image/gif"},
	"webp": {"image/webp"},
	"svg":  {"image/svg+xml"},
	"bmp":  {"image/bmp", "image/x-ms-bmp"},
	"tif":  {"image/tiff"},
	"tiff": {"image/tiff"},
	"heic": {"image/heic"},
	"heif": {"image/heif"},
	"avif": {"image/avif"},
	"ico":  {"image/x-icon", "image/vnd.microsoft.icon"},
}

// NormalizeTypeTags lower-cases tags and strips a leading dot, dropping blanks
func NormalizeTypeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(tag)), ".")
		if tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// FilterImages keeps the records whose MIME type or file extension matches
// one of the allowed type tags. Input order is preserved.
func FilterImages(records []FileRecord, allowedTypeTags []string) []FileRecord {
	tags := NormalizeTypeTags(allowedTypeTags)
	out := make([]FileRecord, 0, len(records))
	for _, record := range records {
		if matchesAnyTag(record, tags) {
			out = append(out, record)
		}
	}
	return out
}

func matchesAnyTag(record FileRecord, tags []string) bool {
	mimeType := strings.ToLower(record.MimeType)
	name := strings.ToLower(record.Name)

	for _, tag := range tags {
		for _, candidate := range mimeTypesByTag[tag] {
			if mimeType == candidate {
				return true
			}
		}
		if strings.HasSuffix(name, "."+tag) {
			return true
		}
	}
	return false
}

package drive

import "regexp"

// folderPatterns are tried in order; the first match wins.
var folderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/folders/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`[?&]id=([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`/drive/folders/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`/open\?id=([a-zA-Z0-9_-]+)`),
}

// ParseFolderID extracts the folder identifier from a shared folder URL.
// The second return value is false when no known URL shape matches.
func ParseFolderID(rawURL string) (string, bool) {
	for _, pattern := range folderPatterns {
		if m := pattern.FindStringSubmatch(rawURL); m != nil {
			return m[1], true
		}
	}
	return "", false
}

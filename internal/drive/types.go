package drive

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FileRecord is the normalized metadata of one remote file
type FileRecord struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	MimeType      string     `json:"mimeType"`
	Size          ByteSize   `json:"size,omitempty"`
	ThumbnailLink string     `json:"thumbnailLink,omitempty"`
	WebViewLink   string     `json:"webViewLink,omitempty"`
	DownloadURL   string     `json:"downloadUrl,omitempty"`
	CreatedTime   *time.Time `json:"createdTime,omitempty"`
	ModifiedTime  *time.Time `json:"modifiedTime,omitempty"`
}

// HasSize reports whether the listing declared a size for the file
func (r FileRecord) HasSize() bool {
	return r.Size > 0
}

// ByteSize is a file size in bytes. The listing API encodes it as a decimal
// string, UI clients send it back as a number; both forms are accepted.
type ByteSize int64

func (s *ByteSize) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		*s = 0
		return nil
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid size %q: %w", raw, err)
	}
	*s = ByteSize(n)
	return nil
}

// rawEntry is a file resource as returned by the listing endpoint
type rawEntry struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	MimeType      string   `json:"mimeType"`
	Size          ByteSize `json:"size"`
	ThumbnailLink string   `json:"thumbnailLink"`
	WebViewLink   string   `json:"webViewLink"`
	CreatedTime   string   `json:"createdTime"`
	ModifiedTime  string   `json:"modifiedTime"`
}

// rawPage is one page of the listing endpoint response
type rawPage struct {
	Files            []rawEntry `json:"files"`
	NextPageToken    string     `json:"nextPageToken"`
	IncompleteSearch bool       `json:"incompleteSearch"`
}

// apiErrorBody is the error envelope returned on non-success statuses
type apiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Page is the normalized result of one or more listing calls.
// Inaccessible is set when the API refused access to the folder; no records
// are returned in that case.
type Page struct {
	Records       []FileRecord
	NextPageToken string
	Incomplete    bool
	Inaccessible  bool
}

func parseTimestamp(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	return &t
}

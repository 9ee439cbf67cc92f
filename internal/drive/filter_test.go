package drive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func records(pairs ...string) []FileRecord {
	out := make([]FileRecord, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, FileRecord{ID: pairs[i], Name: pairs[i], MimeType: pairs[i+1]})
	}
	return out
}

func ids(recs []FileRecord) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.ID)
	}
	return out
}

func TestFilterImages(t *testing.T) {
	input := records(
		"a.png", "image/png",
		"b.txt", "text/plain",
		"c.JPG", "application/octet-stream",
		"d", "image/jpeg",
		"e.svg", "image/svg+xml",
		"f.pdf", "application/pdf",
	)

	got := FilterImages(input, []string{"png", "jpg"})
	assert.Equal(t, []string{"a.png", "c.JPG", "d"}, ids(got))
}

func TestFilterImages_MimeAloneIsSufficient(t *testing.T) {
	input := []FileRecord{{ID: "1", Name: "screenshot", MimeType: "IMAGE/PNG"}}
	assert.Len(t, FilterImages(input, []string{"png"}), 1)
}

func TestFilterImages_ExtensionAloneIsSufficient(t *testing.T) {
	input := []FileRecord{{ID: "1", Name: "photo.PNG", MimeType: "application/octet-stream"}}
	assert.Len(t, FilterImages(input, []string{"png"}), 1)
}

func TestFilterImages_UnknownTagUsesExtensionOnly(t *testing.T) {
	input := []FileRecord{
		{ID: "1", Name: "art.kra", MimeType: "application/x-krita"},
		{ID: "2", Name: "art.png", MimeType: "image/png"},
	}
	got := FilterImages(input, []string{"kra"})
	assert.Equal(t, []string{"1"}, ids(got))
}

func TestFilterImages_TagNormalization(t *testing.T) {
	input := []FileRecord{{ID: "1", Name: "x.webp", MimeType: "image/webp"}}
	assert.Len(t, FilterImages(input, []string{" .WEBP "}), 1)
	assert.Empty(t, FilterImages(input, []string{"", "  "}))
}

func TestFilterImages_Idempotent(t *testing.T) {
	input := records(
		"a.png", "image/png",
		"b.gif", "image/gif",
		"c.doc", "application/msword",
		"d.webp", "image/webp",
	)
	tags := []string{"png", "webp"}

	once := FilterImages(input, tags)
	twice := FilterImages(once, tags)
	assert.Equal(t, once, twice)
}

func TestFilterImages_EmptyInputIsNotNil(t *testing.T) {
	got := FilterImages(nil, []string{"png"})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

package scan

import (
	"context"
	"fmt"
	"testing"

	"github.com/brauni/drive-canvas-importer/internal/drive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	info     *drive.FileRecord
	page     *drive.Page
	err      error
	panicMsg string
	listed   []string
}

func (f *fakeLister) GetFolderInfo(ctx context.Context, folderID string) *drive.FileRecord {
	return f.info
}

func (f *fakeLister) ListAll(ctx context.Context, folderID string) (*drive.Page, error) {
	f.listed = append(f.listed, folderID)
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.page, nil
}

type progressEvent struct {
	percent int
	status  string
}

func mixedFolder() *drive.Page {
	var recs []drive.FileRecord
	for i := 0; i < 6; i++ {
		recs = append(recs, drive.FileRecord{ID: fmt.Sprintf("png%d", i), Name: fmt.Sprintf("p%d.png", i), MimeType: "image/png"})
		recs = append(recs, drive.FileRecord{ID: fmt.Sprintf("jpg%d", i), Name: fmt.Sprintf("j%d.jpg", i), MimeType: "image/jpeg"})
	}
	recs = append(recs,
		drive.FileRecord{ID: "doc", Name: "notes.txt", MimeType: "text/plain"},
		drive.FileRecord{ID: "pdf", Name: "report.pdf", MimeType: "application/pdf"},
		drive.FileRecord{ID: "dir", Name: "sub", MimeType: "application/vnd.google-apps.folder"},
	)
	return &drive.Page{Records: recs}
}

func TestScan_TruncatesAndCounts(t *testing.T) {
	lister := &fakeLister{info: &drive.FileRecord{ID: "1ABC", Name: "Moodboard"}, page: mixedFolder()}
	o := NewOrchestrator(lister, nil, nil)

	var events []progressEvent
	outcome := o.Scan(context.Background(), "https://drive.example.com/drive/folders/1ABC",
		[]string{"png", "jpg"}, 10, func(p int, s string) {
			events = append(events, progressEvent{p, s})
		})

	require.True(t, outcome.Success)
	assert.Equal(t, 12, outcome.TotalFound)
	assert.Len(t, outcome.Images, 10)
	assert.Equal(t, "Moodboard", outcome.FolderName)
	assert.Empty(t, outcome.Error)
	assert.Equal(t, []string{"1ABC"}, lister.listed)
	assert.Equal(t, "png0", outcome.Images[0].ID)
	assert.Equal(t, "jpg0", outcome.Images[1].ID)

	require.NotEmpty(t, events)
	last := 0
	for _, e := range events {
		assert.GreaterOrEqual(t, e.percent, last)
		last = e.percent
	}
	assert.Equal(t, progressEvent{100, "Found 12 images"}, events[len(events)-1])
}

func TestScan_InvalidURL(t *testing.T) {
	lister := &fakeLister{}
	o := NewOrchestrator(lister, nil, nil)

	var events []progressEvent
	outcome := o.Scan(context.Background(), "not a url", []string{"png"}, 10, func(p int, s string) {
		events = append(events, progressEvent{p, s})
	})

	assert.False(t, outcome.Success)
	assert.Equal(t, drive.InvalidURLMessage, outcome.Error)
	assert.NotNil(t, outcome.Images)
	assert.Empty(t, outcome.Images)
	assert.Empty(t, lister.listed)
	assert.Equal(t, []progressEvent{{0, "Parsing folder URL..."}}, events)
}

func TestScan_Inaccessible(t *testing.T) {
	lister := &fakeLister{page: &drive.Page{Inaccessible: true}}
	o := NewOrchestrator(lister, nil, nil)

	outcome := o.Scan(context.Background(), "https://drive.example.com/folders/priv", []string{"png"}, 10, nil)

	assert.False(t, outcome.Success)
	assert.Equal(t, drive.FolderNotFoundMessage, outcome.Error)
}

func TestScan_ListingError(t *testing.T) {
	lister := &fakeLister{err: drive.NewTransportError(500, "Internal Server Error")}
	o := NewOrchestrator(lister, nil, nil)

	outcome := o.Scan(context.Background(), "https://drive.example.com/folders/x", []string{"png"}, 10, nil)

	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Error, "500")
	assert.Empty(t, outcome.Images)
}

func TestScan_PanicBecomesFailure(t *testing.T) {
	lister := &fakeLister{panicMsg: "boom"}
	o := NewOrchestrator(lister, nil, nil)

	var outcome Outcome
	require.NotPanics(t, func() {
		outcome = o.Scan(context.Background(), "https://drive.example.com/folders/x", []string{"png"}, 10, nil)
	})
	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Error, "boom")
}

func TestScan_ZeroMatchesIsSuccess(t *testing.T) {
	lister := &fakeLister{page: &drive.Page{Records: []drive.FileRecord{{ID: "t", Name: "a.txt", MimeType: "text/plain"}}}}
	o := NewOrchestrator(lister, nil, nil)

	outcome := o.Scan(context.Background(), "https://drive.example.com/folders/x", []string{"png"}, 10, nil)

	assert.True(t, outcome.Success)
	assert.Equal(t, 0, outcome.TotalFound)
	assert.NotNil(t, outcome.Images)
	assert.Empty(t, outcome.Images)
}

func TestScan_MissingFolderInfoIsIgnored(t *testing.T) {
	lister := &fakeLister{page: mixedFolder()}
	o := NewOrchestrator(lister, nil, nil)

	outcome := o.Scan(context.Background(), "https://drive.example.com/open?id=x", []string{"gif"}, 10, nil)
	assert.True(t, outcome.Success)
	assert.Empty(t, outcome.FolderName)
}

func TestTruncate(t *testing.T) {
	recs := make([]drive.FileRecord, 7)
	for _, limit := range []int{1, 5, 7, 20} {
		got := Truncate(recs, limit)
		assert.LessOrEqual(t, len(got), limit)
		assert.Equal(t, min(len(recs), limit), len(got))
	}
	assert.Len(t, Truncate(recs, 0), 7)
}

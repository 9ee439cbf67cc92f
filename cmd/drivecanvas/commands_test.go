package main

import (
	"bufio"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/brauni/drive-canvas-importer/internal/bridge"
	"github.com/brauni/drive-canvas-importer/internal/canvas"
	"github.com/brauni/drive-canvas-importer/internal/drive"
	"github.com/brauni/drive-canvas-importer/internal/importer"
	"github.com/brauni/drive-canvas-importer/internal/messages"
	"github.com/brauni/drive-canvas-importer/internal/scan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type folderLister struct{}

func (folderLister) GetFolderInfo(ctx context.Context, folderID string) *drive.FileRecord {
	return &drive.FileRecord{ID: folderID, Name: "Shared"}
}

func (folderLister) ListAll(ctx context.Context, folderID string) (*drive.Page, error) {
	return &drive.Page{Records: []drive.FileRecord{
		{ID: "a", Name: "a.png", MimeType: "image/png"},
		{ID: "b", Name: "b.txt", MimeType: "text/plain"},
	}}, nil
}

type bytesFetcher struct{}

func (bytesFetcher) Fetch(ctx context.Context, record drive.FileRecord) ([]byte, error) {
	return []byte("image-" + record.ID), nil
}

func decodeLines(t *testing.T, out string) []map[string]any {
	t.Helper()
	var msgs []map[string]any
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		var msg map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &msg))
		msgs = append(msgs, msg)
	}
	return msgs
}

func testBridge(doc *canvas.Document) *bridge.Bridge {
	return bridge.New(scan.NewOrchestrator(folderLister{}, nil, nil), bytesFetcher{}, doc,
		bridge.Options{ImageTypes: []string{"png"}, Settings: importer.DefaultSettings()}, nil, nil)
}

func TestServeBridge_Scan(t *testing.T) {
	var out strings.Builder
	in := strings.NewReader(`{"type":"scan-drive","url":"https://drive.example.com/folders/1ABC"}` + "\n\n")

	require.NoError(t, serveBridge(context.Background(), testBridge(canvas.NewDocument()), in, &out, zap.NewNop()))

	msgs := decodeLines(t, out.String())
	require.NotEmpty(t, msgs)
	last := msgs[len(msgs)-1]
	assert.Equal(t, messages.TypeScanComplete, last["type"])
	assert.EqualValues(t, 1, last["totalFound"])
	assert.Equal(t, "Shared", last["folderName"])
}

func TestServeBridge_ImportAndErrors(t *testing.T) {
	doc := canvas.NewDocument()
	var out strings.Builder
	in := strings.NewReader(strings.Join([]string{
		`not json`,
		`{"type":"import-images","images":[{"id":"a","name":"a.png","mimeType":"image/png"}]}`,
	}, "\n"))

	require.NoError(t, serveBridge(context.Background(), testBridge(doc), in, &out, zap.NewNop()))

	var types []any
	for _, msg := range decodeLines(t, out.String()) {
		types = append(types, msg["type"])
	}
	assert.Contains(t, types, messages.TypeError)
	assert.Contains(t, types, messages.TypeImportComplete)
	assert.Len(t, doc.Snapshot().Page, 1)
}

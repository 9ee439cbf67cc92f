package messages

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeInbound_ScanDrive(t *testing.T) {
	msg, err := DecodeInbound([]byte(`{"type":"scan-drive","url":"https://drive.example.com/folders/1ABC","imageTypes":["png","jpg"],"maxImages":10}`))
	require.NoError(t, err)
	require.NotNil(t, msg.ScanDrive)
	assert.Nil(t, msg.ImportImages)
	assert.Equal(t, "https://drive.example.com/folders/1ABC", msg.ScanDrive.URL)
	assert.Equal(t, []string{"png", "jpg"}, msg.ScanDrive.ImageTypes)
	assert.Equal(t, 10, msg.ScanDrive.MaxImages)
}

func TestDecodeInbound_ImportImages(t *testing.T) {
	msg, err := DecodeInbound([]byte(`{"type":"import-images","createComponents":true,"imageSize":120,
		"images":[{"id":"a","name":"a.png","mimeType":"image/png","size":"42"}]}`))
	require.NoError(t, err)
	require.NotNil(t, msg.ImportImages)
	assert.True(t, msg.ImportImages.CreateComponents)
	require.NotNil(t, msg.ImportImages.ImageSize)
	assert.Equal(t, 120, *msg.ImportImages.ImageSize)
	assert.Nil(t, msg.ImportImages.Spacing)
	require.Len(t, msg.ImportImages.Images, 1)
	assert.EqualValues(t, 42, msg.ImportImages.Images[0].Size)
}

func TestDecodeInbound_Errors(t *testing.T) {
	for name, raw := range map[string]string{
		"malformed":    `{"type":`,
		"missing type": `{"url":"x"}`,
		"unknown type": `{"type":"resize"}`,
		"bad payload":  `{"type":"scan-drive","maxImages":"ten"}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeInbound([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestOutbound_Encoding(t *testing.T) {
	raw, err := json.Marshal(NewScanProgress(0, "Parsing folder URL..."))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"scan-progress","progress":0,"status":"Parsing folder URL..."}`, string(raw))

	raw, err = json.Marshal(NewScanComplete(nil, 0, ""))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"scan-complete","images":[],"totalFound":0}`, string(raw))

	raw, err = json.Marshal(NewImportComplete(3, 0))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"import-complete","count":3}`, string(raw))

	raw, err = json.Marshal(NewError("nope"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"error","message":"nope"}`, string(raw))
}

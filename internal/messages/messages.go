// Package messages defines the messages exchanged with the UI layer. Every
// message is a JSON object tagged by its "type" field.
package messages

import (
	"encoding/json"
	"fmt"

	"github.com/brauni/drive-canvas-importer/internal/drive"
)

const (
	TypeScanDrive      = "scan-drive"
	TypeImportImages   = "import-images"
	TypeScanProgress   = "scan-progress"
	TypeScanComplete   = "scan-complete"
	TypeImportProgress = "import-progress"
	TypeImportComplete = "import-complete"
	TypeError          = "error"
)

// ScanDrive asks for a folder scan
type ScanDrive struct {
	URL        string   `json:"url"`
	ImageTypes []string `json:"imageTypes"`
	MaxImages  int      `json:"maxImages"`
}

// ImportImages asks for the selected records to be placed on the canvas.
// Nil layout fields fall back to the configured defaults.
type ImportImages struct {
	Images           []drive.FileRecord `json:"images"`
	CreateComponents bool               `json:"createComponents"`
	ImageSize        *int               `json:"imageSize,omitempty"`
	Spacing          *int               `json:"spacing,omitempty"`
	ImagesPerRow     *int               `json:"imagesPerRow,omitempty"`
	Variant          string             `json:"variant,omitempty"`
}

// Inbound is a decoded UI request; exactly one payload is set
type Inbound struct {
	Type         string
	ScanDrive    *ScanDrive
	ImportImages *ImportImages
}

// DecodeInbound parses a raw UI message
func DecodeInbound(data []byte) (Inbound, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return Inbound{}, fmt.Errorf("failed to decode message: %w", err)
	}

	msg := Inbound{Type: envelope.Type}
	switch envelope.Type {
	case TypeScanDrive:
		msg.ScanDrive = &ScanDrive{}
		if err := json.Unmarshal(data, msg.ScanDrive); err != nil {
			return Inbound{}, fmt.Errorf("failed to decode %s message: %w", envelope.Type, err)
		}
	case TypeImportImages:
		msg.ImportImages = &ImportImages{}
		if err := json.Unmarshal(data, msg.ImportImages); err != nil {
			return Inbound{}, fmt.Errorf("failed to decode %s message: %w", envelope.Type, err)
		}
	case "":
		return Inbound{}, fmt.Errorf("message has no type")
	default:
		return Inbound{}, fmt.Errorf("unknown message type %q", envelope.Type)
	}
	return msg, nil
}

// Outbound is a message sent to the UI layer
type Outbound interface {
	MessageType() string
}

// Progress reports scan or import progress
type Progress struct {
	Type     string `json:"type"`
	Progress int    `json:"progress"`
	Status   string `json:"status"`
}

func (m Progress) MessageType() string { return m.Type }

// ScanComplete carries a successful scan result
type ScanComplete struct {
	Type       string             `json:"type"`
	Images     []drive.FileRecord `json:"images"`
	TotalFound int                `json:"totalFound"`
	FolderName string             `json:"folderName,omitempty"`
}

func (m ScanComplete) MessageType() string { return m.Type }

// ImportComplete carries the number of imported images
type ImportComplete struct {
	Type   string `json:"type"`
	Count  int    `json:"count"`
	Failed int    `json:"failed,omitempty"`
}

func (m ImportComplete) MessageType() string { return m.Type }

// Error reports a failed request
type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (m Error) MessageType() string { return m.Type }

func NewScanProgress(progress int, status string) Progress {
	return Progress{Type: TypeScanProgress, Progress: progress, Status: status}
}

func NewImportProgress(progress int, status string) Progress {
	return Progress{Type: TypeImportProgress, Progress: progress, Status: status}
}

func NewScanComplete(images []drive.FileRecord, totalFound int, folderName string) ScanComplete {
	if images == nil {
		images = []drive.FileRecord{}
	}
	return ScanComplete{Type: TypeScanComplete, Images: images, TotalFound: totalFound, FolderName: folderName}
}

func NewImportComplete(count, failed int) ImportComplete {
	return ImportComplete{Type: TypeImportComplete, Count: count, Failed: failed}
}

func NewError(message string) Error {
	return Error{Type: TypeError, Message: message}
}

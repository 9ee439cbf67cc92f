package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/brauni/drive-canvas-importer/internal/bridge"
	"github.com/brauni/drive-canvas-importer/internal/canvas"
	"github.com/brauni/drive-canvas-importer/internal/drive"
	"github.com/brauni/drive-canvas-importer/internal/importer"
	"github.com/brauni/drive-canvas-importer/internal/messages"
	"github.com/brauni/drive-canvas-importer/internal/scan"
)

const (
	callbackPrefix     = "import_"
	callbackCancel     = "import_cancel"
	componentsSuffix   = "_components"
	maxListedFailures  = 5
	maxListedFileNames = 10
)

// parseScanArgs reads "<url> [types] [max]" where types is a comma separated
// list of extensions
func parseScanArgs(args string) (messages.ScanDrive, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return messages.ScanDrive{}, fmt.Errorf("usage: /scan <folder url> [types] [max]")
	}
	if len(fields) > 3 {
		return messages.ScanDrive{}, fmt.Errorf("too many arguments")
	}

	req := messages.ScanDrive{URL: fields[0]}
	for _, field := range fields[1:] {
		if limit, err := strconv.Atoi(field); err == nil {
			if limit < 0 {
				return messages.ScanDrive{}, fmt.Errorf("max images must not be negative")
			}
			req.MaxImages = limit
			continue
		}
		req.ImageTypes = drive.NormalizeTypeTags(strings.Split(field, ","))
	}
	return req, nil
}

// importCallback builds the callback data of a variant button
func importCallback(variant importer.Variant, components bool) string {
	data := callbackPrefix + string(variant)
	if components {
		data += componentsSuffix
	}
	return data
}

// parseImportCallback is the inverse of importCallback
func parseImportCallback(data string) (importer.Variant, bool, error) {
	if !strings.HasPrefix(data, callbackPrefix) {
		return "", false, fmt.Errorf("unexpected callback %q", data)
	}
	name := strings.TrimPrefix(data, callbackPrefix)
	components := strings.HasSuffix(name, componentsSuffix)
	name = strings.TrimSuffix(name, componentsSuffix)

	variant, err := importer.ParseVariant(name)
	if err != nil || name == "" {
		return "", false, fmt.Errorf("unexpected callback %q", data)
	}
	return variant, components, nil
}

func renderProgress(icon string, progress messages.Progress) string {
	return fmt.Sprintf("%s %s (%d%%)", icon, progress.Status, progress.Progress)
}

func scanSummary(outcome scan.Outcome) string {
	var sb strings.Builder

	folder := outcome.FolderName
	if folder == "" {
		folder = "shared folder"
	}
	fmt.Fprintf(&sb, "📂 %s\n\n", truncateString(folder, 60))

	if outcome.TotalFound == 0 {
		sb.WriteString("No matching images found.")
		return sb.String()
	}

	fmt.Fprintf(&sb, "🖼 Found %d images", outcome.TotalFound)
	if len(outcome.Images) < outcome.TotalFound {
		fmt.Fprintf(&sb, ", %d selected", len(outcome.Images))
	}
	sb.WriteString("\n")
	if outcome.Incomplete {
		sb.WriteString("⚠️ The folder is large; only the first pages were listed.\n")
	}
	sb.WriteString("\n")

	for i, record := range outcome.Images {
		if i >= maxListedFileNames {
			fmt.Fprintf(&sb, "… and %d more\n", len(outcome.Images)-maxListedFileNames)
			break
		}
		fmt.Fprintf(&sb, "• %s%s\n", truncateString(record.Name, 40), formatSize(record))
	}

	sb.WriteString("\nChoose a layout to import them:")
	return sb.String()
}

// importBusy reports whether outcome is the rejection of an overlapping import
func importBusy(outcome importer.Outcome) bool {
	return !outcome.Success && outcome.Error == bridge.ImportBusyMessage
}

func importSummary(variant importer.Variant, requested int, outcome importer.Outcome) string {
	if !outcome.Success {
		return fmt.Sprintf("❌ Import failed: %s", outcome.Error)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ Import completed!\n\n📊 Results (%s):\n📥 Imported: %d of %d\n❌ Failed: %d",
		variant, outcome.ImportedCount, requested, len(outcome.Failures))

	for i, failure := range outcome.Failures {
		if i >= maxListedFailures {
			fmt.Fprintf(&sb, "\n… and %d more", len(outcome.Failures)-maxListedFailures)
			break
		}
		fmt.Fprintf(&sb, "\n• %s: %s", truncateString(failure.Name, 30), truncateString(failure.Error, 80))
	}
	return sb.String()
}

func canvasSummary(snapshot canvas.Snapshot) string {
	counts := make(map[canvas.NodeType]int)
	for _, node := range snapshot.Nodes {
		counts[node.Type]++
	}
	return fmt.Sprintf("🎨 Canvas: %d images, %d notes, %d slides, %d components",
		counts[canvas.NodeImageRegion], counts[canvas.NodeNote], counts[canvas.NodeSlide], counts[canvas.NodeComponent])
}

func formatSize(record drive.FileRecord) string {
	if !record.HasSize() {
		return ""
	}
	return fmt.Sprintf(" (%.1f KB)", float64(record.Size)/1024)
}

func truncateString(s string, maxLength int) string {
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return string(runes[:maxLength])
	}
	return string(runes[:maxLength-3]) + "..."
}

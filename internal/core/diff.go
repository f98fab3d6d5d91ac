package core

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// GenerateUnifiedDiff renders a line diff of two rendered vaults using
// go-diff. Removed lines start with "-", added lines with "+". The
// "[name]" header of each changed record is kept as context. Returns an
// empty string if the inputs are identical.
func GenerateUnifiedDiff(fromLabel, toLabel, from, to string) string {
	if from == to {
		return ""
	}

	dmp := diffmatchpatch.New()

	// Line-mode diff for better output
	a, b, lineArray := dmp.DiffLinesToChars(from, to)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var result strings.Builder
	result.WriteString(fmt.Sprintf("--- %s\n", fromLabel))
	result.WriteString(fmt.Sprintf("+++ %s\n", toLabel))

	header := ""        // last record header seen
	headerShown := true // whether header was already printed
	for _, d := range diffs {
		for _, line := range splitLines(d.Text) {
			// Blank lines only separate records.
			if line == "" && d.Type != diffmatchpatch.DiffEqual {
				continue
			}
			if isRecordHeader(line) && d.Type != diffmatchpatch.DiffEqual {
				headerShown = true
			}

			switch d.Type {
			case diffmatchpatch.DiffEqual:
				if isRecordHeader(line) {
					header = line
					headerShown = false
				}
			case diffmatchpatch.DiffDelete:
				writeContext(&result, header, &headerShown)
				result.WriteString("-" + line + "\n")
			case diffmatchpatch.DiffInsert:
				writeContext(&result, header, &headerShown)
				result.WriteString("+" + line + "\n")
			}
		}
	}

	return result.String()
}

func writeContext(b *strings.Builder, header string, shown *bool) {
	if *shown || header == "" {
		return
	}
	b.WriteString(" " + header + "\n")
	*shown = true
}

func isRecordHeader(line string) bool {
	return strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]")
}

func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

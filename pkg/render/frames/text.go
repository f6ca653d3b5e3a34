package frames

import (
	"bytes"
	"encoding/xml"
)

const (
	fontHeightRatio = 0.25
	fontWidthRatio  = 0.85
	fontCharWidth   = 0.55
	fontSizeMin     = 10.0
	fontSizeMax     = 48.0
)

func fontSizeFor(availWidth, availHeight float64, textLen int) float64 {
	n := max(1, textLen)
	byHeight := availHeight * fontHeightRatio
	byWidth := (availWidth * fontWidthRatio) / (float64(n) * fontCharWidth)
	return max(fontSizeMin, min(fontSizeMax, min(byHeight, byWidth)))
}

func truncateLabel(label string, availWidth, fontSize float64) string {
	maxChars := max(3, int(availWidth*fontWidthRatio/(fontSize*fontCharWidth)))
	r := []rune(label)
	if len(r) <= maxChars {
		return label
	}
	return string(r[:maxChars-2]) + ".."
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

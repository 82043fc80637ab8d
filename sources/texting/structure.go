package texting

import (
	"regexp"
	"strings"

	"fitcoach/sources/persistence/entities"
)

var (
	paragraphBreak = regexp.MustCompile(`\n[ \t\r]*\n`)
	tipMarker      = regexp.MustCompile(`(?i)tip|recommendation`)
)

// Structure splits raw completion text into a main answer, additional
// information and personalized tips. It never fails: text without paragraphs
// or tip markers yields empty secondary fields.
func Structure(raw string) entities.StructuredAnswer {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	paragraphs := Paragraphs(text)
	if len(paragraphs) == 0 {
		return entities.StructuredAnswer{}
	}

	var additional []string
	for _, paragraph := range paragraphs[1:] {
		if !tipMarker.MatchString(paragraph) {
			additional = append(additional, paragraph)
		}
	}

	return entities.StructuredAnswer{
		MainAnswer:       paragraphs[0],
		AdditionalInfo:   strings.Join(additional, "\n\n"),
		PersonalizedTips: tipsSection(text),
	}
}

// Paragraphs returns the non-empty, trimmed blocks of text separated by blank lines.
func Paragraphs(text string) []string {
	var paragraphs []string
	for _, block := range paragraphBreak.Split(text, -1) {
		if block = strings.TrimSpace(block); block != "" {
			paragraphs = append(paragraphs, block)
		}
	}
	return paragraphs
}

// tipsSection returns the text from the earliest tip marker to the end.
// Offsets come from the original text, so case folding never shifts them.
func tipsSection(text string) string {
	loc := tipMarker.FindStringIndex(text)
	if loc == nil {
		return ""
	}
	return strings.TrimSpace(text[loc[0]:])
}

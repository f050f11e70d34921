package sheetreplace

import "strings"

// ReplacementSpec is the literal find/replace pair applied to a whole batch
type ReplacementSpec struct {
	Find    string
	Replace string
}

// TextSegment is one run of a segmented cell text
type TextSegment struct {
	Text     string
	Replaced bool
}

// Segment splits original into literal and replaced segments using
// leftmost-first, non-overlapping search for find. Replaced segments hold
// replace. An empty find never matches.
func Segment(original, find, replace string) []TextSegment {
	if find == "" || !strings.Contains(original, find) {
		return []TextSegment{{Text: original}}
	}

	var segments []TextSegment
	rest := original
	for {
		pos := strings.Index(rest, find)
		if pos < 0 {
			break
		}
		if pos > 0 {
			segments = append(segments, TextSegment{Text: rest[:pos]})
		}
		segments = append(segments, TextSegment{Text: replace, Replaced: true})
		rest = rest[pos+len(find):]
	}
	if rest != "" {
		segments = append(segments, TextSegment{Text: rest})
	}

	return segments
}

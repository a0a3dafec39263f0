package compliance

import "unicode"

// cjkFraction returns the fraction of non-space runes that are CJK
// Unified Ideographs (base block plus extension A).
func cjkFraction(text string) float64 {
	total := 0
	cjk := 0
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if isCJKIdeograph(r) {
			cjk++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(cjk) / float64(total)
}

func isCJKIdeograph(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) || (r >= 0x3400 && r <= 0x4DBF)
}

// countSentences counts sentence terminators, treating a trailing
// unterminated run of text as one sentence.
func countSentences(text string) int {
	count := 0
	pending := false
	for _, r := range text {
		switch r {
		case '。', '！', '？', '.', '!', '?', '；', ';':
			if pending {
				count++
				pending = false
			}
		default:
			if !unicode.IsSpace(r) && !isDecoration(r) {
				pending = true
			}
		}
	}
	if pending {
		count++
	}
	return count
}

func isDecoration(r rune) bool {
	switch r {
	case '*', '#', '-', '|', '`', ':', '：':
		return true
	}
	return false
}

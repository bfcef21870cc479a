package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	yieldPrefixPattern = regexp.MustCompile(`(?i)^\s*(?:yields?|serves|servings|makes|for)\b\s*:?\s*`)
	yieldRangePattern  = regexp.MustCompile(`(?is)^(\d+(?:\.\d+)?)\s*(?:-|–|to\b)\s*(\d+(?:\.\d+)?)\s*(.*)$`)
	yieldSinglePattern = regexp.MustCompile(`(?s)^(\d+(?:\.\d+)?)\s*(.*)$`)
)

// ParseYield 將份量欄位轉成結構化份量。
// 欄位可以是字串、數字或候選字串陣列（取最長者，通常帶有較多單位資訊）。
func ParseYield(field interface{}) *Serving {
	candidate, ok := yieldCandidate(field)
	if !ok {
		return nil
	}
	text := DecodeMarkup(candidate)
	text = yieldPrefixPattern.ReplaceAllString(text, "")
	if text == "" {
		return nil
	}

	if m := yieldRangePattern.FindStringSubmatch(text); m != nil {
		low, ok1 := group(m, 1)
		high, ok2 := group(m, 2)
		if ok1 && ok2 {
			return &Serving{Count: RangeAmount(low, high), Unit: strings.TrimSpace(m[3])}
		}
	}
	if m := yieldSinglePattern.FindStringSubmatch(text); m != nil {
		if n, ok := group(m, 1); ok {
			return &Serving{Count: NumberAmount(n), Unit: strings.TrimSpace(m[2])}
		}
	}
	return nil
}

func yieldCandidate(field interface{}) (string, bool) {
	shape := classify(field)
	switch shape.kind {
	case shapeScalar:
		s, ok := scalarString(shape.scalar)
		s = strings.TrimSpace(s)
		return s, ok && s != ""
	case shapeSequence:
		var best string
		for _, el := range shape.seq {
			s, ok := scalarString(el)
			if !ok {
				continue
			}
			s = strings.TrimSpace(s)
			// 等長時保留先出現者
			if utf8.RuneCountInString(s) > utf8.RuneCountInString(best) {
				best = s
			}
		}
		return best, best != ""
	case shapeKeyed, shapeAbsent:
	}
	return "", false
}

package extract

import (
	"regexp"
	"strings"
)

// unitVocabulary 封閉單位詞彙表，比對時忽略大小寫與結尾句點，並接受簡單複數
var unitVocabulary = map[string]bool{
	"tsp": true, "teaspoon": true,
	"tbsp": true, "tbs": true, "tbl": true, "tablespoon": true,
	"cup": true,
	"ml": true, "millilitre": true, "milliliter": true,
	"cl": true, "dl": true,
	"l": true, "litre": true, "liter": true,
	"g": true, "gr": true, "gram": true, "gramme": true,
	"kg": true, "kilogram": true,
	"mg": true, "milligram": true,
	"oz": true, "ounce": true,
	"lb": true, "pound": true,
	"pint": true, "pt": true,
	"quart": true, "qt": true,
	"gallon": true, "gal": true,
	"pinch": true, "dash": true, "drop": true,
	"clove": true, "can": true, "tin": true, "jar": true,
	"slice": true, "piece": true, "pc": true,
	"bunch": true, "handful": true, "sprig": true, "stick": true,
	"package": true, "packet": true, "pkg": true, "sachet": true,
	"head": true, "stalk": true, "fillet": true,
}

var (
	unitTokenPattern     = regexp.MustCompile(`(?s)^([A-Za-z]+)\.?([\s,].*)?$`)
	parentheticalPattern = regexp.MustCompile(`\(\s*\(?([^()]*?)\)?\s*\)`)
	leadingOfPattern     = regexp.MustCompile(`(?i)^of\s+`)
)

// matchUnit 在詞彙表中找單位，回傳詞彙表中的單數形式
func matchUnit(token string) (string, bool) {
	t := strings.ToLower(token)
	if unitVocabulary[t] {
		return t, true
	}
	// "es" 只跟在嘶音後面：pinches、dashes；canes 不是 can
	if stem, ok := strings.CutSuffix(t, "es"); ok && sibilantStem(stem) && unitVocabulary[stem] {
		return stem, true
	}
	if strings.HasSuffix(t, "s") && unitVocabulary[t[:len(t)-1]] {
		return t[:len(t)-1], true
	}
	return "", false
}

func sibilantStem(stem string) bool {
	for _, end := range []string{"ch", "sh", "s", "x", "z"} {
		if strings.HasSuffix(stem, end) {
			return true
		}
	}
	return false
}

// trimLeadingDash 去掉數量後面緊接的連字號："1-inch piece" 的 "-inch"
func trimLeadingDash(text string) string {
	return strings.TrimSpace(strings.TrimLeft(text, "-–"))
}

// parseUnit 消耗開頭的單位字詞；不是已知單位時原文不動
func parseUnit(text string) (unit, rest string) {
	m := unitTokenPattern.FindStringSubmatch(text)
	if m == nil {
		return "", text
	}
	token, ok := group(m, 1)
	if !ok {
		return "", text
	}
	u, ok := matchUnit(token)
	if !ok {
		return "", text
	}
	return u, leadingOfPattern.ReplaceAllString(strings.TrimSpace(m[2]), "")
}

// stripParenthetical 取出括號（含雙層括號）註記，回傳註記與剩餘文字
func stripParenthetical(text string) (note, rest string) {
	var notes []string
	for _, m := range parentheticalPattern.FindAllStringSubmatch(text, -1) {
		if n, ok := group(m, 1); ok {
			if n = strings.TrimSpace(n); n != "" {
				notes = append(notes, n)
			}
		}
	}
	rest = parentheticalPattern.ReplaceAllString(text, " ")
	return strings.Join(notes, ", "), collapseSpace(rest)
}

// splitComma 以第一個逗號切開名稱與附註
func splitComma(text string) (name, suffix string) {
	name, suffix, _ = strings.Cut(text, ",")
	return strings.TrimSpace(name), strings.TrimSpace(suffix)
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

// ParseIngredient 拆解一行食材文字。
// 既無名稱也無數量的行會被丟棄（ok == false）。
func ParseIngredient(line string, newID IDGenerator) (IngredientItem, bool) {
	text := DecodeMarkup(line)
	if text == "" {
		return IngredientItem{}, false
	}

	note, text := stripParenthetical(text)
	text = NormalizeFractions(text)

	amount, rest, hasAmount := ParseAmount(text)
	var unit string
	if hasAmount {
		unit, rest = parseUnit(trimLeadingDash(rest))
	}

	name, suffix := splitComma(rest)

	// 數量寫在名稱之後的情況："Water, 150 g"
	if !hasAmount && suffix != "" {
		if a, r, ok := ParseAmount(suffix); ok {
			amount, hasAmount = a, true
			unit, r = parseUnit(trimLeadingDash(r))
			suffix = r
		}
	}

	description := joinNonEmpty(", ", suffix, note)

	if name == "" && !hasAmount {
		if description == "" {
			return IngredientItem{}, false
		}
		// 只剩註記時降級為純名稱
		name, description = description, ""
	}

	item := IngredientItem{
		ID:          newID(),
		Name:        name,
		Unit:        unit,
		Description: description,
	}
	if hasAmount {
		a := amount
		item.Amount = &a
	}
	return item, true
}

package extract

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Representation 數量的表示方式
type Representation string

const (
	RepresentationNumber   Representation = "number"
	RepresentationFraction Representation = "fraction"
	RepresentationRange    Representation = "range"
)

// Amount 數量，同一時間只有一種表示方式有效。
// 數值一律保留來源文字，避免浮點誤差。
type Amount struct {
	representation Representation
	value          []string
}

// NumberAmount 建立一般數字
func NumberAmount(value string) Amount {
	return Amount{representation: RepresentationNumber, value: []string{value}}
}

// FractionAmount 建立帶分數，whole 為 "0" 表示真分數
func FractionAmount(whole, numerator, denominator string) Amount {
	return Amount{representation: RepresentationFraction, value: []string{whole, numerator, denominator}}
}

// RangeAmount 建立範圍
func RangeAmount(low, high string) Amount {
	return Amount{representation: RepresentationRange, value: []string{low, high}}
}

// Representation 回傳表示方式
func (a Amount) Representation() Representation {
	return a.representation
}

// Number 取出一般數字
func (a Amount) Number() (string, bool) {
	if a.representation != RepresentationNumber || len(a.value) != 1 {
		return "", false
	}
	return a.value[0], true
}

// Fraction 取出 [whole, numerator, denominator]
func (a Amount) Fraction() ([3]string, bool) {
	var out [3]string
	if a.representation != RepresentationFraction || len(a.value) != 3 {
		return out, false
	}
	copy(out[:], a.value)
	return out, true
}

// Range 取出 [low, high]
func (a Amount) Range() ([2]string, bool) {
	var out [2]string
	if a.representation != RepresentationRange || len(a.value) != 2 {
		return out, false
	}
	copy(out[:], a.value)
	return out, true
}

// String 以可讀文字呈現
func (a Amount) String() string {
	switch a.representation {
	case RepresentationNumber:
		return a.value[0]
	case RepresentationFraction:
		if a.value[0] == "0" {
			return a.value[1] + "/" + a.value[2]
		}
		return a.value[0] + " " + a.value[1] + "/" + a.value[2]
	case RepresentationRange:
		return a.value[0] + "-" + a.value[1]
	}
	return ""
}

type amountJSON struct {
	Representation Representation  `json:"representation"`
	Value          json.RawMessage `json:"value"`
}

// MarshalJSON number 的 value 為字串，fraction 與 range 為字串陣列
func (a Amount) MarshalJSON() ([]byte, error) {
	var value interface{}
	switch a.representation {
	case RepresentationNumber:
		value = a.value[0]
	case RepresentationFraction, RepresentationRange:
		value = a.value
	default:
		return nil, fmt.Errorf("amount has no representation")
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return json.Marshal(amountJSON{Representation: a.representation, Value: raw})
}

// UnmarshalJSON 快取回讀時使用
func (a *Amount) UnmarshalJSON(data []byte) error {
	var aux amountJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	switch aux.Representation {
	case RepresentationNumber:
		var v string
		if err := json.Unmarshal(aux.Value, &v); err != nil {
			return err
		}
		*a = NumberAmount(v)
	case RepresentationFraction:
		var v []string
		if err := json.Unmarshal(aux.Value, &v); err != nil || len(v) != 3 {
			return fmt.Errorf("invalid fraction amount: %s", aux.Value)
		}
		*a = FractionAmount(v[0], v[1], v[2])
	case RepresentationRange:
		var v []string
		if err := json.Unmarshal(aux.Value, &v); err != nil || len(v) != 2 {
			return fmt.Errorf("invalid range amount: %s", aux.Value)
		}
		*a = RangeAmount(v[0], v[1])
	default:
		return fmt.Errorf("unknown amount representation %q", aux.Representation)
	}
	return nil
}

// amountRule 數量文法中的一條規則，最後一個捕獲群組固定為剩餘文字
type amountRule struct {
	name    string
	pattern *regexp.Regexp
	extract func(m []string) (Amount, bool)
}

// amountGrammar 依序嘗試，第一個成功的規則勝出
var amountGrammar = []amountRule{
	{
		name:    "range",
		pattern: regexp.MustCompile(`(?is)^(\d+(?:\.\d+)?)\s*(?:-|–|to\b)\s*(\d+(?:\.\d+)?)\s*(.*)$`),
		extract: func(m []string) (Amount, bool) {
			low, ok1 := group(m, 1)
			high, ok2 := group(m, 2)
			if !ok1 || !ok2 {
				return Amount{}, false
			}
			return RangeAmount(low, high), true
		},
	},
	{
		name:    "mixed",
		pattern: regexp.MustCompile(`(?s)^(\d+)\s+(\d+)/(\d+)\s*(.*)$`),
		extract: func(m []string) (Amount, bool) {
			whole, ok1 := group(m, 1)
			num, ok2 := group(m, 2)
			den, ok3 := group(m, 3)
			if !ok1 || !ok2 || !ok3 {
				return Amount{}, false
			}
			return FractionAmount(whole, num, den), true
		},
	},
	{
		name:    "fraction",
		pattern: regexp.MustCompile(`(?s)^(\d+)/(\d+)\s*(.*)$`),
		extract: func(m []string) (Amount, bool) {
			num, ok1 := group(m, 1)
			den, ok2 := group(m, 2)
			if !ok1 || !ok2 {
				return Amount{}, false
			}
			return FractionAmount("0", num, den), true
		},
	},
	{
		name:    "decimal",
		pattern: regexp.MustCompile(`(?s)^(\d*\.\d+)\s*(.*)$`),
		extract: func(m []string) (Amount, bool) {
			raw, ok := group(m, 1)
			if !ok {
				return Amount{}, false
			}
			value, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return Amount{}, false
			}
			if frac, ok := DecimalToFraction(value); ok {
				return frac, true
			}
			return NumberAmount(raw), true
		},
	},
	{
		name:    "integer",
		pattern: regexp.MustCompile(`(?s)^(\d+)\s*(.*)$`),
		extract: func(m []string) (Amount, bool) {
			raw, ok := group(m, 1)
			if !ok {
				return Amount{}, false
			}
			return NumberAmount(raw), true
		},
	},
}

// group 安全地取出捕獲群組；群組缺失或未參與比對時回傳 false
func group(m []string, i int) (string, bool) {
	if i <= 0 || i >= len(m) {
		return "", false
	}
	if m[i] == "" {
		return "", false
	}
	return m[i], true
}

// ParseAmount 從文字開頭擷取數量，回傳剩餘文字。
// 無法擷取時 ok 為 false，rest 為原文。
func ParseAmount(text string) (amount Amount, rest string, ok bool) {
	text = strings.TrimSpace(text)
	for _, rule := range amountGrammar {
		m := rule.pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		a, matched := rule.extract(m)
		if !matched {
			continue
		}
		// 剩餘文字可以是空字串，不經過 group
		return a, strings.TrimSpace(m[len(m)-1]), true
	}
	return Amount{}, text, false
}

// culinaryFraction 常見烹飪分數
type culinaryFraction struct {
	value       float64
	numerator   int
	denominator int
}

var culinaryFractions = []culinaryFraction{
	{1.0 / 2, 1, 2},
	{1.0 / 3, 1, 3},
	{2.0 / 3, 2, 3},
	{1.0 / 4, 1, 4},
	{3.0 / 4, 3, 4},
	{1.0 / 5, 1, 5},
	{2.0 / 5, 2, 5},
	{3.0 / 5, 3, 5},
	{4.0 / 5, 4, 5},
	{1.0 / 6, 1, 6},
	{5.0 / 6, 5, 6},
	{1.0 / 8, 1, 8},
	{3.0 / 8, 3, 8},
	{5.0 / 8, 5, 8},
	{7.0 / 8, 7, 8},
}

const fractionTolerance = 0.01

// DecimalToFraction 將小數對應到常見烹飪分數，容差 0.01
func DecimalToFraction(value float64) (Amount, bool) {
	if value <= 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return Amount{}, false
	}
	whole := math.Floor(value)
	rem := value - whole
	for _, f := range culinaryFractions {
		if math.Abs(rem-f.value) <= fractionTolerance {
			return FractionAmount(
				strconv.FormatInt(int64(whole), 10),
				strconv.Itoa(f.numerator),
				strconv.Itoa(f.denominator),
			), true
		}
	}
	return Amount{}, false
}

var vulgarFractions = map[rune]string{
	'¼': "1/4",
	'½': "1/2",
	'¾': "3/4",
	'⅐': "1/7",
	'⅑': "1/9",
	'⅒': "1/10",
	'⅓': "1/3",
	'⅔': "2/3",
	'⅕': "1/5",
	'⅖': "2/5",
	'⅗': "3/5",
	'⅘': "4/5",
	'⅙': "1/6",
	'⅚': "5/6",
	'⅛': "1/8",
	'⅜': "3/8",
	'⅝': "5/8",
	'⅞': "7/8",
}

// NormalizeFractions 將 unicode 分數符號換成 "n/d"，緊接在數字後時補一個空白（"1½" → "1 1/2"）
func NormalizeFractions(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	var prev rune
	for _, r := range text {
		if r == '⁄' { // U+2044 分數斜線
			b.WriteByte('/')
			prev = '/'
			continue
		}
		frac, ok := vulgarFractions[r]
		if !ok {
			b.WriteRune(r)
			prev = r
			continue
		}
		if unicode.IsDigit(prev) {
			b.WriteByte(' ')
		}
		b.WriteString(frac)
		prev = '0'
	}
	return b.String()
}

package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var isoDurationPattern = regexp.MustCompile(
	`^P(?:(\d+(?:\.\d+)?)W)?(?:(\d+(?:\.\d+)?)D)?(?:T(?:(\d+(?:\.\d+)?)H)?(?:(\d+(?:\.\d+)?)M)?(?:(\d+(?:\.\d+)?)S)?)?$`,
)

// 各捕獲群組對應的分鐘數
var durationUnits = []struct {
	group   int
	minutes float64
}{
	{1, 7 * 24 * 60},
	{2, 24 * 60},
	{3, 60},
	{4, 1},
	{5, 1.0 / 60},
}

// ParseDuration 將 ISO-8601 持續時間（PT1H30M）轉為整數分鐘。
// 欄位可以是字串或陣列（取第一個字串元素）；無法解析或結果不為正數時回傳 false。
func ParseDuration(field interface{}) (int, bool) {
	expr, ok := durationExpression(field)
	if !ok {
		return 0, false
	}
	m := isoDurationPattern.FindStringSubmatch(strings.ToUpper(expr))
	if m == nil {
		return 0, false
	}

	var total float64
	for _, u := range durationUnits {
		raw, ok := group(m, u.group)
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, false
		}
		total += v * u.minutes
	}

	minutes := int(math.Round(total))
	if minutes <= 0 {
		return 0, false
	}
	return minutes, true
}

func durationExpression(field interface{}) (string, bool) {
	shape := classify(field)
	switch shape.kind {
	case shapeScalar:
		s, ok := shape.scalar.(string)
		s = strings.TrimSpace(s)
		return s, ok && s != ""
	case shapeSequence:
		for _, el := range shape.seq {
			if s, ok := el.(string); ok {
				s = strings.TrimSpace(s)
				return s, s != ""
			}
		}
	case shapeKeyed, shapeAbsent:
	}
	return "", false
}

// minutesPtr 將 ParseDuration 的結果轉成可省略的指標
func minutesPtr(field interface{}) *int {
	if v, ok := ParseDuration(field); ok {
		return &v
	}
	return nil
}

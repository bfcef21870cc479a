package extract

import (
	"math"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// 檔名尾端的尺寸標示，例如 photo-1200x800.jpg
var imageSizeSuffix = regexp.MustCompile(`-(\d+)x(\d+)\.[A-Za-z0-9]+$`)

// unboundedArea 沒有任何尺寸資訊的圖片視為頁面主圖，排在所有已知尺寸之前
const unboundedArea = int64(math.MaxInt64)

type imageCandidate struct {
	url  string
	area int64
}

// SelectImage 從圖片欄位挑出代表圖：面積最大者勝出，同面積保留先出現者
func SelectImage(field interface{}) (string, bool) {
	candidates := imageCandidates(field)
	if len(candidates) == 0 {
		return "", false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].area > candidates[j].area
	})
	return candidates[0].url, true
}

func imageCandidates(field interface{}) []imageCandidate {
	shape := classify(field)
	switch shape.kind {
	case shapeScalar, shapeKeyed:
		if c, ok := toImageCandidate(field); ok {
			return []imageCandidate{c}
		}
	case shapeSequence:
		out := make([]imageCandidate, 0, len(shape.seq))
		for _, el := range shape.seq {
			if c, ok := toImageCandidate(el); ok {
				out = append(out, c)
			}
		}
		return out
	case shapeAbsent:
	}
	return nil
}

func toImageCandidate(v interface{}) (imageCandidate, bool) {
	shape := classify(v)
	switch shape.kind {
	case shapeScalar:
		s, ok := shape.scalar.(string)
		s = strings.TrimSpace(s)
		if !ok || s == "" {
			return imageCandidate{}, false
		}
		return imageCandidate{url: s, area: areaFromURL(s)}, true
	case shapeKeyed:
		var u string
		for _, key := range []string{"url", "contentUrl", "thumbnailUrl"} {
			if s, ok := imageURLField(shape.keyed, key); ok {
				u = s
				break
			}
		}
		if u == "" {
			return imageCandidate{}, false
		}
		if area, ok := areaFromDimensions(shape.keyed); ok {
			return imageCandidate{url: u, area: area}, true
		}
		return imageCandidate{url: u, area: areaFromURL(u)}, true
	case shapeSequence, shapeAbsent:
	}
	return imageCandidate{}, false
}

// imageURLField 欄位可以是字串，也可能是字串陣列；陣列取第一個非空字串
func imageURLField(m map[string]interface{}, key string) (string, bool) {
	if s, ok := stringField(m, key); ok {
		return s, true
	}
	seq, ok := m[key].([]interface{})
	if !ok {
		return "", false
	}
	for _, el := range seq {
		if s, ok := el.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s, true
			}
		}
	}
	return "", false
}

// areaFromDimensions width/height 可以是數字或數字字串（"1200"），也可能是 QuantitativeValue
func areaFromDimensions(m map[string]interface{}) (int64, bool) {
	w, ok1 := dimension(m["width"])
	h, ok2 := dimension(m["height"])
	if !ok1 || !ok2 {
		return 0, false
	}
	return clampArea(w * h), true
}

func dimension(v interface{}) (float64, bool) {
	if m, ok := v.(map[string]interface{}); ok {
		v = m["value"]
	}
	f, ok := scalarNumber(v)
	if !ok || f <= 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func areaFromURL(raw string) int64 {
	path := raw
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		path = u.Path
	}
	m := imageSizeSuffix.FindStringSubmatch(path)
	if m == nil {
		return unboundedArea
	}
	ws, ok1 := group(m, 1)
	hs, ok2 := group(m, 2)
	if !ok1 || !ok2 {
		return unboundedArea
	}
	w, err1 := strconv.ParseFloat(ws, 64)
	h, err2 := strconv.ParseFloat(hs, 64)
	if err1 != nil || err2 != nil {
		return unboundedArea
	}
	return clampArea(w * h)
}

// clampArea 已知尺寸的面積必須嚴格小於 unboundedArea
func clampArea(area float64) int64 {
	if area >= float64(unboundedArea-1) {
		return unboundedArea - 1
	}
	return int64(area)
}

package extract

import (
	"encoding/json"
	"strconv"
	"strings"
)

// shapeKind 欄位值的外形：同一欄位在不同網站可能是純量、陣列或物件
type shapeKind int

const (
	shapeAbsent shapeKind = iota
	shapeScalar
	shapeSequence
	shapeKeyed
)

// inputShape 欄位值分類後的結果，每個正規化函式入口都先 classify 再窮舉 kind
type inputShape struct {
	kind   shapeKind
	scalar interface{}
	seq    []interface{}
	keyed  map[string]interface{}
}

func classify(v interface{}) inputShape {
	switch t := v.(type) {
	case nil:
		return inputShape{kind: shapeAbsent}
	case map[string]interface{}:
		return inputShape{kind: shapeKeyed, keyed: t}
	case []interface{}:
		return inputShape{kind: shapeSequence, seq: t}
	case []string:
		seq := make([]interface{}, len(t))
		for i, s := range t {
			seq[i] = s
		}
		return inputShape{kind: shapeSequence, seq: seq}
	case []map[string]interface{}:
		seq := make([]interface{}, len(t))
		for i, m := range t {
			seq[i] = m
		}
		return inputShape{kind: shapeSequence, seq: seq}
	case map[string]string:
		keyed := make(map[string]interface{}, len(t))
		for k, s := range t {
			keyed[k] = s
		}
		return inputShape{kind: shapeKeyed, keyed: keyed}
	case string, json.Number, float64, float32, int, int64, int32, bool:
		return inputShape{kind: shapeScalar, scalar: t}
	default:
		return inputShape{kind: shapeAbsent}
	}
}

// scalarString 將純量轉成字串；bool 與非純量回傳 false
func scalarString(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case int32:
		return strconv.FormatInt(int64(t), 10), true
	default:
		return "", false
	}
}

// scalarNumber 將數字或數字字串轉成 float64
func scalarNumber(v interface{}) (float64, bool) {
	s, ok := scalarString(v)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// stringField 取出物件中的字串欄位，只接受字串值
func stringField(m map[string]interface{}, key string) (string, bool) {
	s, ok := m[key].(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// flattenStrings 攤平巢狀陣列，收集所有純量字串
func flattenStrings(v interface{}, depth int) []string {
	if depth > maxDepth {
		return nil
	}
	shape := classify(v)
	switch shape.kind {
	case shapeScalar:
		if s, ok := scalarString(shape.scalar); ok {
			return []string{s}
		}
	case shapeSequence:
		var out []string
		for _, el := range shape.seq {
			out = append(out, flattenStrings(el, depth+1)...)
		}
		return out
	case shapeKeyed:
		// 部分網站以 {"name": "..."} 包裝分類值
		if s, ok := stringField(shape.keyed, "name"); ok {
			return []string{s}
		}
	case shapeAbsent:
	}
	return nil
}

package extract

import (
	"strings"
)

// GroupInstructions 將步驟清單分組成具名段落。
// 連續的獨立步驟合併成名為 "Method" 的段落；遇到 HowToSection 時先送出緩衝，
// 再以段落自己的名稱送出其步驟。沒有任何可用步驟的段落整個略過。
func GroupInstructions(field interface{}, newID IDGenerator) []MethodSection {
	g := &instructionGrouper{newID: newID, sections: []MethodSection{}}

	shape := classify(field)
	switch shape.kind {
	case shapeScalar:
		// 整段文字：每個非空行視為一步
		if s, ok := shape.scalar.(string); ok {
			for _, line := range splitLines(s) {
				g.bufferStep(line)
			}
		}
	case shapeSequence:
		g.walk(shape.seq, 0)
	case shapeKeyed:
		g.walk([]interface{}{shape.keyed}, 0)
	case shapeAbsent:
	}
	g.flush()
	return g.sections
}

type instructionGrouper struct {
	newID    IDGenerator
	buffer   []MethodItem
	sections []MethodSection
}

func (g *instructionGrouper) walk(entries []interface{}, depth int) {
	if depth > maxDepth {
		return
	}
	for _, entry := range entries {
		shape := classify(entry)
		switch shape.kind {
		case shapeScalar:
			if s, ok := shape.scalar.(string); ok {
				g.bufferStep(s)
			}
		case shapeSequence:
			g.walk(shape.seq, depth+1)
		case shapeKeyed:
			if isSection(shape.keyed) {
				g.flush()
				g.emitSection(shape.keyed)
				continue
			}
			g.bufferStep(stepText(shape.keyed))
		case shapeAbsent:
		}
	}
}

func (g *instructionGrouper) bufferStep(raw string) {
	text := DecodeMarkup(raw)
	if text == "" {
		return
	}
	g.buffer = append(g.buffer, MethodItem{ID: g.newID(), Description: text})
}

// flush 將緩衝中的獨立步驟送出為匿名段落
func (g *instructionGrouper) flush() {
	if len(g.buffer) == 0 {
		return
	}
	g.sections = append(g.sections, MethodSection{
		SectionID: g.newID(),
		Name:      DefaultMethodSectionName,
		Items:     g.buffer,
	})
	g.buffer = nil
}

func (g *instructionGrouper) emitSection(m map[string]interface{}) {
	items := sectionSteps(m["itemListElement"], g.newID, 0)
	if len(items) == 0 {
		return
	}
	name := DecodeMarkup(stringValue(m["name"]))
	if name == "" {
		name = DefaultMethodSectionName
	}
	g.sections = append(g.sections, MethodSection{
		SectionID:   g.newID(),
		Name:        name,
		Description: DecodeMarkup(stringValue(m["description"])),
		Items:       items,
	})
}

// sectionSteps 收集段落內的步驟；段落內再出現的巢狀段落直接攤平
func sectionSteps(v interface{}, newID IDGenerator, depth int) []MethodItem {
	if depth > maxDepth {
		return nil
	}
	var items []MethodItem
	add := func(raw string) {
		if text := DecodeMarkup(raw); text != "" {
			items = append(items, MethodItem{ID: newID(), Description: text})
		}
	}

	shape := classify(v)
	switch shape.kind {
	case shapeScalar:
		if s, ok := shape.scalar.(string); ok {
			for _, line := range splitLines(s) {
				add(line)
			}
		}
	case shapeSequence:
		for _, el := range shape.seq {
			items = append(items, sectionSteps(el, newID, depth+1)...)
		}
	case shapeKeyed:
		if isSection(shape.keyed) {
			return sectionSteps(shape.keyed["itemListElement"], newID, depth+1)
		}
		add(stepText(shape.keyed))
	case shapeAbsent:
	}
	return items
}

// isSection HowToSection，或沒有 text 但帶有 itemListElement 的物件
func isSection(m map[string]interface{}) bool {
	if t, _ := m["@type"].(string); t == "HowToSection" {
		return true
	}
	if _, ok := m["itemListElement"]; !ok {
		return false
	}
	_, hasText := stringField(m, "text")
	return !hasText
}

// stepText HowToStep 的文字，優先取 text，其次 name
func stepText(m map[string]interface{}) string {
	if s, ok := stringField(m, "text"); ok {
		return s
	}
	if s, ok := stringField(m, "name"); ok {
		return s
	}
	return ""
}

func stringValue(v interface{}) string {
	s, _ := v.(string)
	return s
}

func splitLines(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == '\r' })
}

package extract

import (
	"strings"

	"recipe-importer/internal/core/taxonomy"
)

// TagCatalog 唯讀的分類目錄
type TagCatalog interface {
	Group(name string) (taxonomy.Group, bool)
}

// tagSource 來源欄位只會對照指定的分類群組
type tagSource struct {
	field  string
	groups []string
}

var tagSources = []tagSource{
	{field: "recipeCuisine", groups: []string{"Cuisine"}},
	{field: "recipeCategory", groups: []string{"Meal", "Course"}},
	{field: "keywords", groups: []string{"Cuisine", "Meal", "Course", "Diet", "Occasion"}},
}

// InferTags 以料理、分類與關鍵字欄位比對分類目錄，回傳依 id 去重的標籤；沒有命中時回傳 nil
func InferTags(recipe map[string]interface{}, catalog TagCatalog) []TagReference {
	if catalog == nil || recipe == nil {
		return nil
	}
	var matched []TagReference
	for _, src := range tagSources {
		candidates := tagCandidates(recipe[src.field])
		for _, groupName := range src.groups {
			g, ok := catalog.Group(groupName)
			if !ok {
				continue
			}
			for _, c := range candidates {
				if t, ok := g.Lookup(c); ok {
					matched = append(matched, TagReference{TagID: t.TagID})
				}
			}
		}
	}
	return uniqueByID(matched)
}

// tagCandidates 攤平欄位並以逗號切開，全部轉小寫
func tagCandidates(field interface{}) []string {
	var out []string
	for _, s := range flattenStrings(field, 0) {
		for _, part := range strings.Split(DecodeMarkup(s), ",") {
			if c := strings.ToLower(strings.TrimSpace(part)); c != "" {
				out = append(out, c)
			}
		}
	}
	return out
}

// uniqueByID 保留第一次出現的順序
func uniqueByID(refs []TagReference) []TagReference {
	if len(refs) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(refs))
	out := make([]TagReference, 0, len(refs))
	for _, r := range refs {
		if _, dup := seen[r.TagID]; dup {
			continue
		}
		seen[r.TagID] = struct{}{}
		out = append(out, r)
	}
	return out
}

package extract

import (
	"strings"

	"recipe-importer/internal/pkg/common"

	"go.uber.org/zap"
)

// Extractor 組合各個正規化步驟，建立後不可變，可並行使用
type Extractor struct {
	catalog     TagCatalog
	newID       IDGenerator
	placeholder string
}

// Option Extractor 設定
type Option func(*Extractor)

// WithIDGenerator 替換識別碼產生器（預設 UUID）
func WithIDGenerator(gen IDGenerator) Option {
	return func(e *Extractor) {
		if gen != nil {
			e.newID = gen
		}
	}
}

// WithPlaceholderName 替換預設食譜名稱
func WithPlaceholderName(name string) Option {
	return func(e *Extractor) {
		if name = strings.TrimSpace(name); name != "" {
			e.placeholder = name
		}
	}
}

// NewExtractor 創建 Extractor，catalog 為 nil 時不推斷標籤
func NewExtractor(catalog TagCatalog, opts ...Option) *Extractor {
	e := &Extractor{
		catalog:     catalog,
		newID:       common.GenerateUUID,
		placeholder: DefaultRecipeName,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract 將輸入樹轉為食譜紀錄。
// 找不到 Recipe 節點時以最上層物件本身當作食譜；任何輸入都會回傳紀錄，不會 panic。
func (e *Extractor) Extract(tree interface{}) (recipe *ExtractedRecipe) {
	defer func() {
		if r := recover(); r != nil {
			common.LogError("Recipe extraction panic recovered", zap.Any("error", r))
			recipe = e.empty()
		}
	}()

	node, ok := FindRecipe(tree)
	if !ok {
		node, _ = tree.(map[string]interface{})
	}
	if node == nil {
		common.LogDebug("No recipe node in document")
		return e.empty()
	}

	recipe = e.empty()
	if name := DecodeMarkup(stringValue(node["name"])); name != "" {
		recipe.Name = name
	}
	recipe.Summary = DecodeMarkup(stringValue(node["description"]))
	recipe.Source = sourceOf(node)
	recipe.PrepTime = minutesPtr(node["prepTime"])
	recipe.CookTime = minutesPtr(node["cookTime"])
	recipe.Servings = ParseYield(node["recipeYield"])
	recipe.Ingredients = e.ingredients(node)
	recipe.Method = GroupInstructions(node["recipeInstructions"], e.newID)
	recipe.Tags = InferTags(node, e.catalog)
	if img, ok := SelectImage(node["image"]); ok {
		recipe.AdditionalData.ImageURL = img
	}

	common.LogDebug("Recipe extracted",
		zap.String("name", recipe.Name),
		zap.Int("ingredient_sections", len(recipe.Ingredients)),
		zap.Int("method_sections", len(recipe.Method)),
		zap.Int("tags", len(recipe.Tags)),
	)
	return recipe
}

func (e *Extractor) empty() *ExtractedRecipe {
	return &ExtractedRecipe{
		Name:        e.placeholder,
		Ingredients: []IngredientSection{},
		Method:      []MethodSection{},
	}
}

// ParseIngredients 解析多行食材，丟棄無法使用的行
func (e *Extractor) ParseIngredients(lines []string) []IngredientItem {
	items := make([]IngredientItem, 0, len(lines))
	for _, line := range lines {
		if item, ok := ParseIngredient(line, e.newID); ok {
			items = append(items, item)
		}
	}
	return items
}

// ingredients recipeIngredient 為主，舊版標記使用 ingredients
func (e *Extractor) ingredients(node map[string]interface{}) []IngredientSection {
	field, ok := node["recipeIngredient"]
	if !ok {
		field = node["ingredients"]
	}

	var lines []string
	shape := classify(field)
	switch shape.kind {
	case shapeScalar:
		if s, ok := shape.scalar.(string); ok {
			lines = splitLines(s)
		}
	case shapeSequence:
		lines = flattenStrings(shape.seq, 0)
	case shapeKeyed, shapeAbsent:
	}

	items := e.ParseIngredients(lines)
	if len(items) == 0 {
		return []IngredientSection{}
	}
	return []IngredientSection{{
		SectionID: e.newID(),
		Name:      DefaultIngredientSectionName,
		Items:     items,
	}}
}

// sourceOf 依序取 url、@id、mainEntityOfPage
func sourceOf(node map[string]interface{}) string {
	if s, ok := stringField(node, "url"); ok {
		return s
	}
	if s, ok := stringField(node, "@id"); ok {
		return s
	}
	switch v := node["mainEntityOfPage"].(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]interface{}:
		if s, ok := stringField(v, "@id"); ok {
			return s
		}
		if s, ok := stringField(v, "url"); ok {
			return s
		}
	}
	return ""
}

// Package extract 將網頁內嵌的 schema.org Recipe 結構化資料轉換為內部食譜紀錄。
//
// 所有函式皆為純函式：不做 I/O、不共享可變狀態、不回傳錯誤。
// 無法可靠解析的欄位一律以「缺席」表示（nil 指標、空字串或 ok == false），
// 而不是猜測值。
package extract

// DefaultRecipeName 來源沒有名稱時使用的佔位名稱
const DefaultRecipeName = "Imported recipe"

// DefaultMethodSectionName 未命名步驟段落的名稱
const DefaultMethodSectionName = "Method"

// DefaultIngredientSectionName 食材段落的名稱
const DefaultIngredientSectionName = "Ingredients"

// ExtractedRecipe 轉換後的食譜紀錄
type ExtractedRecipe struct {
	Name           string              `json:"name"`
	Summary        string              `json:"summary,omitempty"`
	Source         string              `json:"source,omitempty"`
	PrepTime       *int                `json:"prepTime,omitempty"` // 分鐘
	CookTime       *int                `json:"cookTime,omitempty"` // 分鐘
	Servings       *Serving            `json:"servings,omitempty"`
	Ingredients    []IngredientSection `json:"ingredients"`
	Method         []MethodSection     `json:"method"`
	Tags           []TagReference      `json:"tags,omitempty"`
	AdditionalData AdditionalData      `json:"additionalData"`
}

// AdditionalData 附加資料
type AdditionalData struct {
	ImageURL string `json:"imageUrl,omitempty"`
}

// Serving 份量，Count 只會是 number 或 range
type Serving struct {
	Count Amount `json:"count"`
	Unit  string `json:"unit"`
}

// IngredientItem 單一食材行
type IngredientItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name,omitempty"`
	Amount      *Amount `json:"amount,omitempty"`
	Unit        string  `json:"unit,omitempty"`
	Description string  `json:"description,omitempty"`
}

// MethodItem 單一步驟
type MethodItem struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// Section 具名且有序的項目群組，食材與步驟共用
type Section[T any] struct {
	SectionID   string `json:"sectionId"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Items       []T    `json:"items"`
}

// IngredientSection 食材段落
type IngredientSection = Section[IngredientItem]

// MethodSection 步驟段落
type MethodSection = Section[MethodItem]

// TagReference 指向外部分類目錄中的標籤
type TagReference struct {
	TagID string `json:"tagId"`
}

// IDGenerator 產生段落與項目的識別碼
type IDGenerator func() string

package extract

// maxDepth 遞迴深度上限，防止異常深或循環的輸入樹
const maxDepth = 32

const recipeType = "Recipe"

// FindRecipe 在任意巢狀的輸入樹中找出第一個 @type 為 Recipe 的節點
func FindRecipe(node interface{}) (map[string]interface{}, bool) {
	return findRecipe(node, 0)
}

func findRecipe(node interface{}, depth int) (map[string]interface{}, bool) {
	if depth > maxDepth {
		return nil, false
	}
	shape := classify(node)
	switch shape.kind {
	case shapeSequence:
		for _, el := range shape.seq {
			if found, ok := findRecipe(el, depth+1); ok {
				return found, true
			}
		}
	case shapeKeyed:
		if isRecipe(shape.keyed) {
			return shape.keyed, true
		}
		if graph, ok := shape.keyed["@graph"]; ok {
			return findRecipe(graph, depth+1)
		}
	case shapeScalar, shapeAbsent:
	}
	return nil, false
}

// isRecipe @type 可以是字串或字串陣列
func isRecipe(m map[string]interface{}) bool {
	shape := classify(m["@type"])
	switch shape.kind {
	case shapeScalar:
		s, _ := scalarString(shape.scalar)
		return s == recipeType
	case shapeSequence:
		for _, el := range shape.seq {
			if s, ok := el.(string); ok && s == recipeType {
				return true
			}
		}
	case shapeKeyed, shapeAbsent:
	}
	return false
}

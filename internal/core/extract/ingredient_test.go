package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amountPtr(a Amount) *Amount {
	return &a
}

func TestParseIngredient(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  IngredientItem
	}{
		{
			name:  "integer with abbreviated unit",
			input: "2 Tbsp olive oil",
			want:  IngredientItem{Name: "olive oil", Unit: "tbsp", Amount: amountPtr(NumberAmount("2"))},
		},
		{
			name:  "simple fraction without unit",
			input: "1/2 lemon",
			want:  IngredientItem{Name: "lemon", Amount: amountPtr(FractionAmount("0", "1", "2"))},
		},
		{
			name:  "quantity after the name",
			input: "Water, 150 g",
			want:  IngredientItem{Name: "Water", Unit: "g", Amount: amountPtr(NumberAmount("150"))},
		},
		{
			name:  "parenthetical and comma notes",
			input: "1 (14 oz) can diced tomatoes, drained",
			want: IngredientItem{
				Name:        "diced tomatoes",
				Unit:        "can",
				Amount:      amountPtr(NumberAmount("1")),
				Description: "drained, 14 oz",
			},
		},
		{
			name:  "double parentheses",
			input: "200 g flour ((sifted))",
			want:  IngredientItem{Name: "flour", Unit: "g", Amount: amountPtr(NumberAmount("200")), Description: "sifted"},
		},
		{
			name:  "markup and plural unit",
			input: "<strong>2</strong> cups of flour",
			want:  IngredientItem{Name: "flour", Unit: "cup", Amount: amountPtr(NumberAmount("2"))},
		},
		{
			name:  "unicode fraction",
			input: "1½ cups sugar",
			want:  IngredientItem{Name: "sugar", Unit: "cup", Amount: amountPtr(FractionAmount("1", "1", "2"))},
		},
		{
			name:  "entity encoded text",
			input: "Salt &amp; pepper, to taste",
			want:  IngredientItem{Name: "Salt & pepper", Description: "to taste"},
		},
		{
			name:  "amount without unit",
			input: "3 large eggs",
			want:  IngredientItem{Name: "large eggs", Amount: amountPtr(NumberAmount("3"))},
		},
		{
			name:  "range with unit",
			input: "2-3 cloves garlic, minced",
			want: IngredientItem{
				Name:        "garlic",
				Unit:        "clove",
				Amount:      amountPtr(RangeAmount("2", "3")),
				Description: "minced",
			},
		},
		{
			name:  "only a note degrades to a name",
			input: "(optional garnish)",
			want:  IngredientItem{Name: "optional garnish"},
		},
		{
			name:  "entity encoded tags",
			input: "&lt;strong&gt;2 cups&lt;/strong&gt; flour",
			want:  IngredientItem{Name: "flour", Unit: "cup", Amount: amountPtr(NumberAmount("2"))},
		},
		{
			name:  "entity encoded tags around a note",
			input: "1 cup sugar &lt;em&gt;(sifted)&lt;/em&gt;",
			want:  IngredientItem{Name: "sugar", Unit: "cup", Amount: amountPtr(NumberAmount("1")), Description: "sifted"},
		},
		{
			name:  "hyphen joined to the amount",
			input: "1-inch piece ginger",
			want:  IngredientItem{Name: "inch piece ginger", Amount: amountPtr(NumberAmount("1"))},
		},
		{
			name:  "hyphen after a fraction",
			input: "1/2-inch slice butter",
			want:  IngredientItem{Name: "inch slice butter", Amount: amountPtr(FractionAmount("0", "1", "2"))},
		},
		{
			name:  "unit only consumed after an amount",
			input: "Cup of tea",
			want:  IngredientItem{Name: "Cup of tea"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseIngredient(tc.input, func() string { return "fixed" })
			require.True(t, ok)
			tc.want.ID = "fixed"
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseIngredientDropsEmptyLines(t *testing.T) {
	for _, line := range []string{"", "   ", "<p></p>", "()"} {
		_, ok := ParseIngredient(line, sequentialIDs())
		assert.False(t, ok, "line %q", line)
	}
}

func TestParseIngredientKnownUnitsAreNumbers(t *testing.T) {
	newID := sequentialIDs()
	for unit := range unitVocabulary {
		item, ok := ParseIngredient("3 "+unit+" stuff", newID)
		require.True(t, ok, unit)
		assert.Equal(t, unit, item.Unit, unit)
		require.NotNil(t, item.Amount, unit)
		assert.Equal(t, RepresentationNumber, item.Amount.Representation(), unit)
	}
}

func TestParseIngredientAssignsFreshIDs(t *testing.T) {
	newID := sequentialIDs()
	a, _ := ParseIngredient("1 egg", newID)
	b, _ := ParseIngredient("1 egg", newID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestMatchUnit(t *testing.T) {
	tests := []struct {
		token string
		want  string
		ok    bool
	}{
		{"cups", "cup", true},
		{"Tbsp", "tbsp", true},
		{"pinches", "pinch", true},
		{"slices", "slice", true},
		{"tablespoons", "tablespoon", true},
		{"lemons", "", false},
		{"dashes", "dash", true},
		{"canes", "", false},
		{"cans", "can", true},
	}
	for _, tc := range tests {
		got, ok := matchUnit(tc.token)
		assert.Equal(t, tc.ok, ok, tc.token)
		assert.Equal(t, tc.want, got, tc.token)
	}
}

func TestParseIngredientNameNeverStartsWithDash(t *testing.T) {
	for _, line := range []string{"1-inch piece ginger", "1 1/2-2 cups flour", "2 – large eggs", "Water, 150-g"} {
		item, ok := ParseIngredient(line, sequentialIDs())
		require.True(t, ok, line)
		require.NotNil(t, item.Amount, line)
		assert.NotRegexp(t, `^[-–]`, item.Name, line)
		assert.NotRegexp(t, `^[-–]`, item.Description, line)
	}
}

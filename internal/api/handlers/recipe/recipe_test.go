package recipe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"recipe-importer/internal/core/cache"
	"recipe-importer/internal/core/extract"
	"recipe-importer/internal/core/queue"
	recipeService "recipe-importer/internal/core/recipe"
	"recipe-importer/internal/core/taxonomy"
	"recipe-importer/internal/infrastructure/config"
	"recipe-importer/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pancakePage = `<html><head>
<script type="application/ld+json">{"@context":"https://schema.org","@type":"Recipe",
 "name":"Pancakes","recipeCuisine":"American","recipeCategory":"Breakfast",
 "recipeIngredient":["1 1/2 cups flour","2 eggs"],
 "recipeInstructions":[{"@type":"HowToStep","text":"Mix."},{"@type":"HowToStep","text":"Fry."}]}
</script></head></html>`

// slowURL 模擬抓取途中逾時
const slowURL = "https://example.test/slow"

type stubFetcher map[string]string

func (f stubFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if url == slowURL {
		return "", common.ErrFetchFailed.Wrap(fmt.Errorf("failed to fetch %s: %w", url, context.DeadlineExceeded))
	}
	body, ok := f[url]
	if !ok {
		return "", common.ErrFetchFailed.Wrap(fmt.Errorf("%s returned status 404", url))
	}
	return body, nil
}

type testEnv struct {
	router *gin.Engine
	queue  *queue.Manager
}

func newTestEnv(t *testing.T, withCache, debug bool) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var resultCache cache.Cache
	if withCache {
		m := cache.NewManager(config.CacheConfig{Enabled: true, MaxSize: 10, TTL: time.Hour, CleanupInterval: time.Hour})
		t.Cleanup(func() { m.Close() })
		resultCache = m
	}

	catalog := taxonomy.Default()
	importer := recipeService.NewImportService(
		stubFetcher{"https://example.test/pancakes": pancakePage},
		extract.NewExtractor(catalog),
		resultCache,
	)
	q := queue.NewManager(config.QueueConfig{Workers: 2, MaxSize: 10})
	q.Start(importer.ImportURL)
	t.Cleanup(q.Close)

	h := NewHandler(importer, recipeService.NewBatchService(q), catalog, debug)
	r := gin.New()
	r.POST("/import", h.HandleImport)
	r.POST("/import/batch", h.HandleBatchImport)
	r.POST("/extract", h.HandleExtract)
	r.POST("/ingredient/parse", h.HandleParseIngredients)
	r.GET("/taxonomy", h.HandleTaxonomy)
	r.GET("/cache/stats", h.HandleCacheStats)
	return &testEnv{router: r, queue: q}
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	e.router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) common.ErrorResponse {
	t.Helper()
	var resp common.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHandleImport(t *testing.T) {
	env := newTestEnv(t, true, false)

	w := env.do(http.MethodPost, "/import", `{"url":"https://example.test/pancakes"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var recipe extract.ExtractedRecipe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recipe))
	assert.Equal(t, "Pancakes", recipe.Name)
	assert.Equal(t, "https://example.test/pancakes", recipe.Source)
	require.Len(t, recipe.Ingredients, 1)
	assert.Len(t, recipe.Ingredients[0].Items, 2)
	require.Len(t, recipe.Method, 1)
	assert.Len(t, recipe.Method[0].Items, 2)
	assert.Contains(t, recipe.Tags, extract.TagReference{TagID: "cuisine-american"})
	assert.Contains(t, recipe.Tags, extract.TagReference{TagID: "meal-breakfast"})
}

func TestHandleImportErrors(t *testing.T) {
	env := newTestEnv(t, false, false)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"missing url", `{}`, http.StatusBadRequest, common.ErrCodeInvalidRequest},
		{"malformed body", `{"url":`, http.StatusBadRequest, common.ErrCodeInvalidRequest},
		{"unsupported scheme", `{"url":"ftp://example.test/x"}`, http.StatusBadRequest, common.ErrCodeInvalidRequest},
		{"fetch failure", `{"url":"https://example.test/missing"}`, http.StatusBadGateway, common.ErrCodeFetchFailed},
		{"fetch deadline", `{"url":"` + slowURL + `"}`, http.StatusGatewayTimeout, common.ErrCodeGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodPost, "/import", tt.body)
			assert.Equal(t, tt.status, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.code, resp.Code)
			assert.Empty(t, resp.Details, "details are hidden outside debug mode")
		})
	}
}

func TestHandleImportDebugDetails(t *testing.T) {
	env := newTestEnv(t, false, true)

	w := env.do(http.MethodPost, "/import", `{"url":"https://example.test/missing"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, decodeError(t, w).Details, "404")
}

func TestHandleExtract(t *testing.T) {
	env := newTestEnv(t, false, false)

	w := env.do(http.MethodPost, "/extract", `{"@graph":[{"@type":"WebPage"},
		{"@type":"Recipe","name":"Toast","recipeYield":"Serves 2","totalTime":"PT5M",
		 "recipeIngredient":["2 slices bread"],"recipeInstructions":"Toast the bread."}]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var recipe extract.ExtractedRecipe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recipe))
	assert.Equal(t, "Toast", recipe.Name)
	require.NotNil(t, recipe.Servings)
	assert.Equal(t, "2", recipe.Servings.Count.String())
	require.Len(t, recipe.Method, 1)
	assert.Equal(t, "Toast the bread.", recipe.Method[0].Items[0].Description)
}

func TestHandleExtractErrors(t *testing.T) {
	env := newTestEnv(t, false, false)

	w := env.do(http.MethodPost, "/extract", `{"@type":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, common.ErrCodeInvalidDocument, decodeError(t, w).Code)

	w = env.do(http.MethodPost, "/extract", `["not","a","recipe"]`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, common.ErrCodeNoRecipeFound, decodeError(t, w).Code)
}

func TestHandleBatchImport(t *testing.T) {
	env := newTestEnv(t, false, false)

	w := env.do(http.MethodPost, "/import/batch",
		`{"urls":["https://example.test/pancakes","https://example.test/missing"]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp BatchImportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Succeeded)
	assert.Equal(t, 1, resp.Failed)
	require.Len(t, resp.Results, 2)

	assert.Equal(t, "https://example.test/pancakes", resp.Results[0].URL)
	require.NotNil(t, resp.Results[0].Recipe)
	assert.Equal(t, "Pancakes", resp.Results[0].Recipe.Name)

	assert.Equal(t, "https://example.test/missing", resp.Results[1].URL)
	require.NotNil(t, resp.Results[1].Error)
	assert.Equal(t, common.ErrCodeFetchFailed, resp.Results[1].Error.Code)
	assert.Empty(t, resp.Results[1].Error.Details)
}

func TestHandleBatchImportValidation(t *testing.T) {
	env := newTestEnv(t, false, false)

	w := env.do(http.MethodPost, "/import/batch", `{"urls":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	urls := make([]string, recipeService.MaxBatchSize+1)
	for i := range urls {
		urls[i] = fmt.Sprintf("%q", fmt.Sprintf("https://example.test/%d", i))
	}
	w = env.do(http.MethodPost, "/import/batch", `{"urls":[`+strings.Join(urls, ",")+`]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, common.ErrCodeInvalidRequest, decodeError(t, w).Code)
}

func TestHandleParseIngredients(t *testing.T) {
	env := newTestEnv(t, false, false)

	w := env.do(http.MethodPost, "/ingredient/parse", `{"lines":["2 cups flour, sifted","","1/2 tsp salt"]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp IngredientParseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 2)
	assert.Equal(t, 1, resp.Skipped)
	assert.Equal(t, "flour", resp.Items[0].Name)
	assert.Equal(t, "cup", resp.Items[0].Unit)
	assert.Equal(t, "salt", resp.Items[1].Name)

	w = env.do(http.MethodPost, "/ingredient/parse", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleTaxonomy(t *testing.T) {
	env := newTestEnv(t, false, false)

	w := env.do(http.MethodGet, "/taxonomy", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp TaxonomyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Groups)
	assert.Equal(t, "Cuisine", resp.Groups[0].Name)
}

func TestHandleCacheStats(t *testing.T) {
	env := newTestEnv(t, true, false)

	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/import", `{"url":"https://example.test/pancakes"}`).Code)
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/import", `{"url":"https://example.test/pancakes"}`).Code)

	w := env.do(http.MethodGet, "/cache/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	var stats map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.EqualValues(t, 1, stats["hits"])

	disabled := newTestEnv(t, false, false)
	w = disabled.do(http.MethodGet, "/cache/stats", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "CACHE_DISABLED", decodeError(t, w).Code)
}

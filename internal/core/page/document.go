package page

import (
	"html"
	"strings"

	"recipe-importer/internal/pkg/common"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Document 從頁面中取出的結構化資料
type Document struct {
	URL      string
	Title    string
	MetaTags map[string]string
	// JSONLD 每個可解析的 ld+json 區塊各一個元素
	JSONLD []interface{}
}

// ParseDocument 解析 HTML，收集標題、meta 標籤與所有 JSON-LD 區塊
func ParseDocument(url, htmlContent string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}

	data := &Document{
		URL:      url,
		Title:    strings.TrimSpace(doc.Find("title").First().Text()),
		MetaTags: make(map[string]string),
		JSONLD:   []interface{}{},
	}

	doc.Find("meta").Each(func(i int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		property, _ := s.Attr("property")
		content, _ := s.Attr("content")
		key := name
		if property != "" {
			key = property
		}
		if key != "" && content != "" {
			data.MetaTags[key] = content
		}
	})

	doc.Find(`script[type*="ld+json"]`).Each(func(i int, s *goquery.Selection) {
		tree, ok := decodeBlock(s.Text())
		if !ok {
			common.LogDebug("Skipping undecodable JSON-LD block",
				zap.String("url", url),
				zap.Int("index", i),
			)
			return
		}
		data.JSONLD = append(data.JSONLD, tree)
	})

	return data, nil
}

// ExtractJSONLD 只取出頁面中的 JSON-LD 區塊
func ExtractJSONLD(htmlContent string) []interface{} {
	doc, err := ParseDocument("", htmlContent)
	if err != nil {
		return []interface{}{}
	}
	return doc.JSONLD
}

// Image og:image 或 twitter:image
func (d *Document) Image() string {
	for _, key := range []string{"og:image", "og:image:url", "twitter:image"} {
		if v := strings.TrimSpace(d.MetaTags[key]); v != "" {
			return v
		}
	}
	return ""
}

// decodeBlock 部分網站把區塊包在 CDATA 或 HTML 註解中，或整段做了 HTML 跳脫
func decodeBlock(raw string) (interface{}, bool) {
	text := strings.TrimSpace(raw)
	for _, wrap := range [][2]string{{"<!--", "-->"}, {"//<![CDATA[", "//]]>"}, {"<![CDATA[", "]]>"}} {
		if strings.HasPrefix(text, wrap[0]) && strings.HasSuffix(text, wrap[1]) {
			text = strings.TrimSpace(text[len(wrap[0]) : len(text)-len(wrap[1])])
		}
	}
	if text == "" {
		return nil, false
	}

	if tree, err := common.DecodeTree(strings.NewReader(text)); err == nil {
		return tree, true
	}
	unescaped := html.UnescapeString(text)
	if unescaped == text {
		return nil, false
	}
	tree, err := common.DecodeTree(strings.NewReader(unescaped))
	if err != nil {
		return nil, false
	}
	return tree, true
}

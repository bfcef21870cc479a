package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// 這些標籤視為斷詞位置，其餘行內標籤直接移除
var blockTags = map[string]bool{
	"br": true, "p": true, "div": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"tr": true, "td": true, "th": true,
}

// 實體編碼的標籤（&lt;b&gt;）解碼後會變成真的標籤，最多重跑這麼多次
const maxMarkupPasses = 3

// DecodeMarkup 去除內嵌 HTML 標籤並解碼實體，回傳單行純文字
func DecodeMarkup(s string) string {
	if s == "" {
		return ""
	}
	for pass := 0; pass < maxMarkupPasses && strings.ContainsAny(s, "<&"); pass++ {
		next := stripMarkup(s)
		if next == s {
			break
		}
		s = next
	}
	return collapseSpace(s)
}

// stripMarkup 跑一次 tokenizer：移除標籤，文字節點的實體再解一次
func stripMarkup(s string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF 或壞掉的標記都在此結束，已收集的文字照用
			return html.UnescapeString(b.String())
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if blockTags[string(name)] {
				b.WriteByte(' ')
			}
		}
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

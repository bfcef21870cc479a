// Package taxonomy 提供唯讀的標籤分類目錄。
// 目錄資料由外部設定檔提供，這裡只負責載入與查詢，不會新增任何標籤。
package taxonomy

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultCatalog []byte

// Tag 分類中的葉節點
type Tag struct {
	TagID string `json:"tagId" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
}

// Group 標籤群組，Children 以小寫名稱為鍵
type Group struct {
	TagID    string         `json:"tagId"`
	Name     string         `json:"name"`
	Children map[string]Tag `json:"children"`
}

// Lookup 以小寫名稱查詢群組中的子標籤
func (g Group) Lookup(name string) (Tag, bool) {
	t, ok := g.Children[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// Catalog 分類目錄，建立後不可變，可並行讀取
type Catalog struct {
	groups map[string]Group
	order  []string
}

type groupFile struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Tags []Tag  `yaml:"tags"`
}

type catalogFile struct {
	Groups []groupFile `yaml:"groups"`
}

// New 以群組清單建立目錄，重複的群組名稱以後者為準
func New(groups []Group) *Catalog {
	c := &Catalog{groups: make(map[string]Group, len(groups))}
	for _, g := range groups {
		children := make(map[string]Tag, len(g.Children))
		for _, t := range g.Children {
			children[strings.ToLower(strings.TrimSpace(t.Name))] = t
		}
		g.Children = children
		if _, exists := c.groups[g.Name]; !exists {
			c.order = append(c.order, g.Name)
		}
		c.groups[g.Name] = g
	}
	return c
}

// Load 從 YAML 讀取目錄
func Load(r io.Reader) (*Catalog, error) {
	var file catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode taxonomy: %w", err)
	}

	groups := make([]Group, 0, len(file.Groups))
	for i, gf := range file.Groups {
		if gf.Name == "" {
			return nil, fmt.Errorf("taxonomy group %d has no name", i)
		}
		children := make(map[string]Tag, len(gf.Tags))
		for _, t := range gf.Tags {
			if t.TagID == "" || t.Name == "" {
				return nil, fmt.Errorf("taxonomy group %q has a tag without id or name", gf.Name)
			}
			children[t.Name] = t
		}
		groups = append(groups, Group{TagID: gf.ID, Name: gf.Name, Children: children})
	}
	return New(groups), nil
}

// LoadFile 從檔案讀取目錄；path 為空時使用內建目錄
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open taxonomy file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Default 內建目錄
func Default() *Catalog {
	c, err := Load(bytes.NewReader(defaultCatalog))
	if err != nil {
		// 內建資料在編譯時就固定，解析失敗屬於程式錯誤
		panic(err)
	}
	return c
}

// Group 依名稱取得群組
func (c *Catalog) Group(name string) (Group, bool) {
	if c == nil {
		return Group{}, false
	}
	g, ok := c.groups[name]
	return g, ok
}

// Groups 依載入順序回傳所有群組
func (c *Catalog) Groups() []Group {
	if c == nil {
		return nil
	}
	out := make([]Group, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.groups[name])
	}
	return out
}

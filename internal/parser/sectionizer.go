package parser

import "strings"

var sectionIndex = func() map[string]int {
	idx := make(map[string]int, len(SectionKeys))
	for i, k := range SectionKeys {
		idx[k] = i
	}
	return idx
}()

// SectionMap 固定键集合的分段内容，零值即所有分段为空
// 键集合见 SectionKeys，Get 对任意键都不会失败
type SectionMap struct {
	values [sectionCount]string
}

// Get 返回分段内容，未知键返回空字符串
func (m SectionMap) Get(key string) string {
	i, ok := sectionIndex[key]
	if !ok {
		return ""
	}
	return m.values[i]
}

// With 返回替换了指定分段的新 SectionMap，未知键原样返回
func (m SectionMap) With(key, content string) SectionMap {
	if i, ok := sectionIndex[key]; ok {
		m.values[i] = content
	}
	return m
}

// Each 按 SectionKeys 顺序遍历所有分段，包括空分段
func (m SectionMap) Each(fn func(key, content string)) {
	for i, k := range SectionKeys {
		fn(k, m.values[i])
	}
}

// NonEmpty 返回非空分段的键
func (m SectionMap) NonEmpty() []string {
	var keys []string
	m.Each(func(k, v string) {
		if v != "" {
			keys = append(keys, k)
		}
	})
	return keys
}

// Sectionize 按标题行把清洗后的文本切成分段
// 标题行本身不计入内容；标题之前的行归入 body；空行保留为一个换行
func Sectionize(text string) SectionMap {
	var builders [sectionCount]strings.Builder
	current := sectionIndex[SectionBody]

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			builders[current].WriteByte('\n')
			continue
		}
		if key, ok := matchHeading(trimmed); ok {
			current = sectionIndex[key]
			continue
		}
		builders[current].WriteString(line)
		builders[current].WriteByte('\n')
	}

	var m SectionMap
	for i := range builders {
		m.values[i] = strings.TrimSpace(builders[i].String())
	}
	return m
}

// matchHeading 判断一行是否为标题行，返回归并后的分段键
func matchHeading(line string) (string, bool) {
	sub := headingRe.FindStringSubmatch(line)
	if sub == nil {
		return "", false
	}
	key := strings.ToLower(sub[1])
	if alias, ok := headingAliases[key]; ok {
		key = alias
	}
	return key, true
}

// SplitBlocks 以连续两个及以上换行切分文本块，去掉空块
func SplitBlocks(text string) []string {
	parts := blockSeparatorRe.Split(text, -1)
	blocks := make([]string, 0, len(parts))
	for _, p := range parts {
		if b := strings.TrimSpace(p); b != "" {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

// blockLines 返回块内去空白后的非空行
func blockLines(block string) []string {
	raw := strings.Split(block, "\n")
	lines := make([]string, 0, len(raw))
	for _, ln := range raw {
		if t := strings.TrimSpace(ln); t != "" {
			lines = append(lines, t)
		}
	}
	return lines
}

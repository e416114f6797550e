package parser

import "strings"

// Reclassify 把 body 与 experience 中带教育关键词的文本块移动到 education
// 单向单遍: 只扫描两个来源分段，被移动的块不会再次参与归类
// 返回更新后的分段和被移动的文本块
func Reclassify(sections SectionMap) (SectionMap, []string) {
	var moved []string

	for _, src := range reclassifySources {
		content := sections.Get(src)
		if content == "" {
			continue
		}

		var kept []string
		for _, block := range SplitBlocks(content) {
			if !educationIndicatorRe.MatchString(block) {
				kept = append(kept, block)
				continue
			}
			education := strings.TrimSpace(sections.Get(SectionEducation) + "\n\n" + block)
			sections = sections.With(SectionEducation, education)
			moved = append(moved, block)
		}
		sections = sections.With(src, strings.TrimSpace(strings.Join(kept, "\n\n")))
	}

	return sections, moved
}

package parser

import "cv-maker-go/internal/types"

// ExtractReferences 逐块解析 references 分段
// 块的第一行是姓名，电话与邮箱在整个块内查找
func ExtractReferences(section string) []types.ReferenceEntry {
	refs := []types.ReferenceEntry{}
	for _, block := range SplitBlocks(section) {
		lines := blockLines(block)
		if len(lines) == 0 {
			continue
		}
		refs = append(refs, types.ReferenceEntry{
			Name:  lines[0],
			Phone: phoneRe.FindString(block),
			Email: emailRe.FindString(block),
		})
	}
	return refs
}

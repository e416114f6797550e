package parser

import (
	"regexp"

	"cv-maker-go/internal/types"
)

// ExtractEducation 逐块解析 education 分段，每个块产生一个条目
func ExtractEducation(section string) []types.EducationEntry {
	entries := []types.EducationEntry{}
	for _, block := range SplitBlocks(section) {
		entries = append(entries, parseEducationBlock(block))
	}
	return entries
}

// parseEducationBlock 年份取整块中的第一处日期；学位取第一条学位关键词行；
// 学校取第一条院校关键词行，没有时退回到第二行，再退回到第一行
func parseEducationBlock(block string) types.EducationEntry {
	lines := blockLines(block)
	entry := types.EducationEntry{
		Years:  findYears(block),
		Degree: firstMatchingLine(lines, degreeRe),
	}

	switch school := firstMatchingLine(lines, institutionRe); {
	case school != "":
		entry.School = school
	case len(lines) >= 2:
		entry.School = lines[1]
	case len(lines) == 1:
		entry.School = lines[0]
	}
	return entry
}

func firstMatchingLine(lines []string, re *regexp.Regexp) string {
	for _, ln := range lines {
		if re.MatchString(ln) {
			return ln
		}
	}
	return ""
}

package parser

import (
	"strings"
	"unicode"

	"cv-maker-go/internal/types"
)

// ExtractExperience 逐块解析 experience 分段
// 角色、公司、描述都为空的块不产生条目
func ExtractExperience(section string) []types.ExperienceEntry {
	entries := []types.ExperienceEntry{}
	for _, block := range SplitBlocks(section) {
		e := ParseExperienceBlock(block)
		if e.Role != "" || e.Company != "" || e.Description != "" {
			entries = append(entries, e)
		}
	}
	return entries
}

// ParseExperienceBlock 解析一个工作经历文本块
//
// 以项目符号开头的行先作为描述取出，其余行按以下顺序尝试:
//  1. 首行含 " - " 类分隔符: 拆成角色/公司，在随后 1~2 行中找日期，其余行追加到描述
//  2. 找到第一处日期: 用日期的上一行推断角色/公司，日期之后的行追加到描述
//  3. 都不满足: 第一行角色，第二行公司，其余行追加到描述
func ParseExperienceBlock(block string) types.ExperienceEntry {
	var entry types.ExperienceEntry

	var bullets, lines []string
	for _, ln := range blockLines(block) {
		if !strings.HasPrefix(ln, bulletMarker) {
			lines = append(lines, ln)
			continue
		}
		if b := strings.TrimSpace(strings.TrimLeft(ln, bulletMarker)); b != "" {
			bullets = append(bullets, b)
		}
	}
	description := strings.Join(bullets, " ")

	if len(lines) == 0 {
		entry.Description = description
		return entry
	}

	if dashSeparatorRe.MatchString(lines[0]) {
		entry.Role, entry.Company = splitOnDash(lines[0])

		dateLine := -1
		for i := 1; i < len(lines) && i < 3; i++ {
			if years := findYears(lines[i]); years != "" {
				entry.Years = years
				dateLine = i
				break
			}
		}

		var rest []string
		for i := 1; i < len(lines); i++ {
			if i == dateLine {
				if remainder := stripYears(lines[i], entry.Years); remainder != "" {
					rest = append(rest, remainder)
				}
				continue
			}
			rest = append(rest, lines[i])
		}
		entry.Description = joinDescription(description, rest)
		return entry
	}

	for i, ln := range lines {
		years := findYears(ln)
		if years == "" {
			continue
		}
		entry.Years = years
		if i == 0 {
			continue
		}

		prev := lines[i-1]
		switch {
		case dashSeparatorRe.MatchString(prev):
			entry.Role, entry.Company = splitOnDash(prev)
		case isUpperLine(prev) || strings.Contains(prev, ","):
			entry.Company = prev
			if lines[0] != prev {
				entry.Role = lines[0]
			}
		default:
			entry.Role = prev
		}
		entry.Description = joinDescription(description, lines[i+1:])
		return entry
	}

	entry.Role = lines[0]
	if len(lines) > 1 {
		entry.Company = lines[1]
	}
	if len(lines) > 2 {
		description = joinDescription(description, lines[2:])
	}
	entry.Description = description
	return entry
}

// splitOnDash 在第一个被空格包围的破折号处拆分
func splitOnDash(line string) (string, string) {
	loc := dashSeparatorRe.FindStringIndex(line)
	if loc == nil {
		return strings.TrimSpace(line), ""
	}
	return strings.TrimSpace(line[:loc[0]]), strings.TrimSpace(line[loc[1]:])
}

// stripYears 去掉日期所在行中的日期本身，返回剩余的有效文字
func stripYears(line, years string) string {
	if years == "" {
		return line
	}
	rest := strings.Replace(line, years, "", 1)
	return strings.Trim(rest, " \t,|;:-–—()")
}

func joinDescription(description string, rest []string) string {
	if len(rest) == 0 {
		return strings.TrimSpace(description)
	}
	return strings.TrimSpace(description + " " + strings.Join(rest, " "))
}

// isUpperLine 至少含一个字母且所有字母均为大写
func isUpperLine(s string) bool {
	cased := false
	for _, r := range s {
		switch {
		case unicode.IsLower(r), unicode.IsTitle(r):
			return false
		case unicode.IsUpper(r):
			cased = true
		}
	}
	return cased
}

package parser

import (
	"strings"
	"unicode/utf8"
)

// ExtractSkills 解析 skills 分段
// 项目符号和换行都当作逗号，按 ,|;•· 切分，去掉链接片段和单字符片段，
// 不区分大小写去重并保留首次出现的写法
func ExtractSkills(section string) []string {
	skills := []string{}
	if section == "" {
		return skills
	}

	t := bulletSpacingRe.ReplaceAllString(section, ", ")
	t = newlineRunRe.ReplaceAllString(t, ", ")

	seen := make(map[string]struct{})
	for _, part := range listSeparatorRe.Split(t, -1) {
		skill := strings.TrimSpace(urlFragmentRe.ReplaceAllString(strings.TrimSpace(part), ""))
		if utf8.RuneCountInString(skill) < 2 {
			continue
		}
		key := strings.ToLower(skill)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		skills = append(skills, skill)
	}
	return skills
}

// ExtractLanguages 解析 languages 分段，最多返回 10 项，不去重
func ExtractLanguages(section string) []string {
	languages := []string{}
	if section == "" {
		return languages
	}

	t := newlineRunRe.ReplaceAllString(section, ", ")
	for _, part := range listSeparatorRe.Split(t, -1) {
		if lang := strings.TrimSpace(part); lang != "" {
			languages = append(languages, lang)
			if len(languages) == languagesMaxEntries {
				break
			}
		}
	}
	return languages
}

// ExtractSoftSkills 在整篇文本中提取软技能
// 有软技能标题时取标题后 400 个字符切分；否则按固定词表扫描全文，按首次出现去重
func ExtractSoftSkills(text string) []string {
	softSkills := []string{}

	if loc := softSkillHeadingRe.FindStringIndex(text); loc != nil {
		window := strings.TrimLeft(headRunes(text[loc[1]:], softSkillWindow), " \t:-–—")
		for _, part := range softSkillSeparatorRe.Split(window, -1) {
			s := strings.TrimSpace(part)
			if s == "" || utf8.RuneCountInString(s) >= softSkillMaxLen {
				continue
			}
			softSkills = append(softSkills, s)
			if len(softSkills) == softSkillMaxEntries {
				break
			}
		}
		return softSkills
	}

	seen := make(map[string]struct{})
	for _, m := range softSkillVocabRe.FindAllString(text, -1) {
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		softSkills = append(softSkills, m)
	}
	return softSkills
}

// headRunes 按字符而不是字节截取前 n 个字符
func headRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

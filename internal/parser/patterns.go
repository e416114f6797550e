package parser

import (
	"regexp"
	"strings"
)

const monthPattern = `(?:Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|Jul(?:y)?|Aug(?:ust)?|Sep(?:tember)?|Sept|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)`

// 进程级只读正则，包初始化时编译一次
var (
	// 文本清洗
	cidArtifactRe    = regexp.MustCompile(`\(cid:\d+\)`)
	bulletRunRe      = regexp.MustCompile(`•[\s\p{Zs}]*•+`)
	bulletSpacingRe  = regexp.MustCompile(`[\s\p{Zs}]*•[\s\p{Zs}]*`)
	lineEndingRe     = regexp.MustCompile(`\r\n?`)
	excessNewlineRe  = regexp.MustCompile(`\n{3,}`)
	mailtoPrefixRe   = regexp.MustCompile(`(?i)mailto:`)
	blockSeparatorRe = regexp.MustCompile(`\n{2,}`)

	// 日期
	dateRangeRe = regexp.MustCompile(`(?i)(` + monthPattern + `\s*\d{4}|\d{4})\s*[-–—]\s*(?:Present|` + monthPattern + `\s*\d{4}|\d{4})`)
	yearRe      = regexp.MustCompile(`\b\d{4}\b`)

	// 联系方式
	emailRe    = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)
	phoneRe    = regexp.MustCompile(`\+?\d[\d\-\s()]{6,}\d`)
	githubRe   = regexp.MustCompile(`(?i)github\.com/[A-Za-z0-9\-_]+`)
	linkedinRe = regexp.MustCompile(`(?i)linkedin\.com/in/[A-Za-z0-9\-_]+`)

	// 列表切分
	dashSeparatorRe      = regexp.MustCompile(`\s[–—-]\s`)
	newlineRunRe         = regexp.MustCompile(`[\n\r]+`)
	listSeparatorRe      = regexp.MustCompile(`[,|;•·]`)
	softSkillSeparatorRe = regexp.MustCompile(`[,\n|;•·]`)
	urlFragmentRe        = regexp.MustCompile(`http\S+|mailto:\S+`)

	// 词表
	headingRe            = regexp.MustCompile(`(?i)^\s*(` + literalAlternation(HeadingKeys) + `)\s*[:\-]?\s*$`)
	educationIndicatorRe = regexp.MustCompile(`(?i)\b(?:` + literalAlternation(EducationIndicators) + `)\b`)
	degreeRe             = regexp.MustCompile(`(?i)\b(?:` + literalAlternation(DegreeKeywords) + `)\b`)
	institutionRe        = regexp.MustCompile(`(?i)\b(?:` + literalAlternation(InstitutionKeywords) + `)\b`)
	titleKeywordRe       = regexp.MustCompile(`(?i)\b(?:` + literalAlternation(TitleKeywords) + `)\b`)
	softSkillHeadingRe   = regexp.MustCompile(`(?i)(?:` + literalAlternation(SoftSkillHeadings) + `)`)
	softSkillVocabRe     = regexp.MustCompile(`(?i)\b(?:` + strings.Join(softSkillVocabulary, "|") + `)\b`)
)

// literalAlternation 把词表转义后拼成正则分支
func literalAlternation(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(quoted, "|")
}

// findYears 先找日期区间，找不到再退回到四位年份
func findYears(s string) string {
	if m := dateRangeRe.FindString(s); m != "" {
		return m
	}
	return yearRe.FindString(s)
}

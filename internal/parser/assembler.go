package parser

import (
	"strings"
	"unicode/utf8"

	"cv-maker-go/internal/types"
)

// Analysis 解析流水线的中间结果: 清洗后的文本、重新归类后的分段以及被移动的块
type Analysis struct {
	Normalized  string
	Sections    SectionMap
	MovedBlocks []string
}

// Analyze 依次执行清洗、分段、重新归类
func Analyze(raw string) Analysis {
	normalized := Normalize(raw)
	sections, moved := Reclassify(Sectionize(normalized))
	return Analysis{
		Normalized:  normalized,
		Sections:    sections,
		MovedBlocks: moved,
	}
}

// Parse 把已解码的简历文本解析为结构化结果
// 对任意输入都返回非 nil 结果，不会失败
func Parse(raw string) *types.ParsedDocument {
	return Assemble(Analyze(raw))
}

// Assemble 运行各字段提取器并合并结果
func Assemble(a Analysis) *types.ParsedDocument {
	doc := types.NewParsedDocument()
	doc.Personal = ExtractContact(a.Normalized)
	doc.Experience = ExtractExperience(a.Sections.Get(SectionExperience))
	doc.Education = ExtractEducation(a.Sections.Get(SectionEducation))
	doc.Skills = ExtractSkills(a.Sections.Get(SectionSkills))
	doc.SoftSkills = ExtractSoftSkills(a.Normalized)
	doc.Languages = ExtractLanguages(a.Sections.Get(SectionLanguages))
	doc.References = ExtractReferences(a.Sections.Get(SectionReferences))
	doc.Debug = debugSnapshot(a)
	return doc
}

func debugSnapshot(a Analysis) types.DebugSnapshot {
	snap := types.DebugSnapshot{
		Sections:         make(map[string]string),
		MovedBlocksCount: len(a.MovedBlocks),
		TopLines:         strings.Join(topLines(a.Normalized, debugTopLines), "\n"),
	}
	a.Sections.Each(func(key, content string) {
		if content == "" {
			return
		}
		if utf8.RuneCountInString(content) > debugSectionMaxLen {
			content = headRunes(content, debugSectionMaxLen) + "..."
		}
		snap.Sections[key] = content
	})
	return snap
}

// HeuristicParser 基于规则的简历解析器，无状态，可并发使用
type HeuristicParser struct{}

// Parse 实现 processor.TextParser
func (HeuristicParser) Parse(text string) *types.ParsedDocument {
	return Parse(text)
}

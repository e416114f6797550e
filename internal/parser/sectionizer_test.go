package parser

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSections = "Jane Doe\nSoftware Engineer\n\nEXPERIENCE:\nDev – Acme\n2019 - 2021\n\nWork Experience\nIntern – Beta\n\nTechnical Skills -\nGo, Python\n\nEducation\n"

func TestSectionize_HeadingsAndAliases(t *testing.T) {
	sections := Sectionize(sampleSections)

	assert.Equal(t, "Jane Doe\nSoftware Engineer", sections.Get(SectionBody), "标题之前的行应归入body")
	assert.Equal(t, "Dev – Acme\n2019 - 2021\n\nIntern – Beta", sections.Get(SectionExperience), "work experience 应归并到 experience")
	assert.Equal(t, "Go, Python", sections.Get(SectionSkills), "technical skills 应归并到 skills")
	assert.Equal(t, "", sections.Get(SectionEducation), "没有内容的标题对应空字符串")
	assert.Equal(t, "", sections.Get("employment"), "别名键不在键集合内")
	assert.Equal(t, "", sections.Get("no-such-section"), "未知键返回空字符串")
}

func TestSectionize_HeadingMustStandAlone(t *testing.T) {
	sections := Sectionize("Experience at Google\nskills: Go\nSKILLS\nGo")

	assert.Equal(t, "Experience at Google\nskills: Go", sections.Get(SectionBody), "带其他文字的行不是标题")
	assert.Equal(t, "Go", sections.Get(SectionSkills))
}

func TestSectionize_AllKeysPresent(t *testing.T) {
	var keys []string
	Sectionize("").Each(func(k, v string) {
		keys = append(keys, k)
		assert.Empty(t, v)
	})
	assert.Equal(t, SectionKeys[:], keys, "所有键都应预先存在")
}

func TestSectionize_BlankLinesKeepBlocks(t *testing.T) {
	sections := Sectionize("REFERENCES\nAlice\n   \nBob")
	assert.Equal(t, []string{"Alice", "Bob"}, SplitBlocks(sections.Get(SectionReferences)), "空白行应保留为块分隔")
}

func TestSectionize_EveryLineAttributedOnce(t *testing.T) {
	text := Normalize(sampleSections + "\nPROJECTS\nCLI tool\n\nHobbies\nChess\nReading\n\nskills\nDocker")

	var want []string
	for _, ln := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(ln)
		if trimmed == "" {
			continue
		}
		if _, isHeading := matchHeading(trimmed); isHeading {
			continue
		}
		want = append(want, trimmed)
	}

	var got []string
	Sectionize(text).Each(func(_, content string) {
		got = append(got, blockLines(content)...)
	})

	sort.Strings(want)
	sort.Strings(got)
	assert.Equal(t, want, got, "每个非标题行应恰好出现在一个分段中")
}

func TestSplitBlocks(t *testing.T) {
	assert.Equal(t, []string{}, SplitBlocks(""))
	assert.Equal(t, []string{"a\nb", "c"}, SplitBlocks("\n\na\nb\n\n\n\nc\n\n"))
}

func TestReclassify_MovesEducationBlocks(t *testing.T) {
	text := "John\n\nKenyatta University\nBSc IT\n\nEXPERIENCE\nDeveloper – Acme\n2020 - 2022\n\nDiploma in Networking\nNairobi Institute\n2015\n\nEDUCATION\nKCSE\nAlliance High 2012"
	sections, moved := Reclassify(Sectionize(text))

	require.Len(t, moved, 2, "应移动两个块")
	assert.Equal(t, "John", sections.Get(SectionBody))
	assert.Equal(t, "Developer – Acme\n2020 - 2022", sections.Get(SectionExperience))
	assert.Equal(t,
		"KCSE\nAlliance High 2012\n\nKenyatta University\nBSc IT\n\nDiploma in Networking\nNairobi Institute\n2015",
		sections.Get(SectionEducation))

	for _, block := range moved {
		assert.Equal(t, 1, strings.Count(sections.Get(SectionEducation), block), "被移动的块只出现在 education 一次")
		assert.NotContains(t, sections.Get(SectionBody), block)
		assert.NotContains(t, sections.Get(SectionExperience), block)
	}
}

func TestReclassify_DoesNotTouchOtherSections(t *testing.T) {
	text := "SKILLS\nDiploma-level Excel\n\nREFERENCES\nHead of School\nprincipal@school.ac.ke"
	before := Sectionize(text)
	after, moved := Reclassify(before)

	assert.Empty(t, moved, "只扫描 body 和 experience")
	assert.Equal(t, before, after)
}

func TestReclassify_IsPure(t *testing.T) {
	before := Sectionize("University of Nairobi\nBSc")
	_, moved := Reclassify(before)

	assert.Len(t, moved, 1)
	assert.Equal(t, "University of Nairobi\nBSc", before.Get(SectionBody), "输入的分段不应被修改")
}

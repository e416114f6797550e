package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cv-maker-go/internal/types"
)

func TestExtractContact(t *testing.T) {
	text := "Jane Doe\nSoftware Engineer\nEmail: jane.doe@example.com | Phone: +254 712 345 678\ngithub.com/janedoe | LinkedIn.com/in/jane-doe"

	got := ExtractContact(text)
	assert.Equal(t, types.ContactFields{
		Name:     "Jane Doe",
		Title:    "Software Engineer",
		Email:    "jane.doe@example.com",
		Phone:    "+254 712 345 678",
		Github:   "github.com/janedoe",
		Linkedin: "LinkedIn.com/in/jane-doe",
	}, got)
}

func TestExtractContact_TitleRules(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		title string
	}{
		{name: "短行", text: "John Smith\nAccountant\nLoves numbers", title: "Accountant"},
		{name: "长句且无关键词", text: "John Smith\nI am passionate about building reliable distributed systems", title: ""},
		{name: "长句含关键词", text: "Jane\nSenior backend developer with ten years of experience", title: "Senior backend developer with ten years of experience"},
		{name: "只有一行", text: "Jane", title: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.title, ExtractContact(tt.text).Title)
		})
	}
}

func TestExtractContact_MissingFields(t *testing.T) {
	got := ExtractContact("John Smith\nAccountant\nLoves numbers")
	assert.Equal(t, "John Smith", got.Name)
	assert.Empty(t, got.Email, "没有邮箱时应为空字符串")
	assert.Empty(t, got.Phone)
	assert.Empty(t, got.Github)
	assert.Empty(t, got.Linkedin)

	assert.Equal(t, types.ContactFields{}, ExtractContact(""), "空文本返回全空字段")
}

func TestParseExperienceBlock(t *testing.T) {
	tests := []struct {
		name  string
		block string
		want  types.ExperienceEntry
	}{
		{
			name:  "破折号首行",
			block: "Software Engineer – Acme Corp\nJan 2020 - Present\n• Built things",
			want:  types.ExperienceEntry{Role: "Software Engineer", Company: "Acme Corp", Years: "Jan 2020 - Present", Description: "Built things"},
		},
		{
			name:  "日期行保留剩余文字",
			block: "Engineer — Foo Ltd\nJan 2019 - Feb 2020, Nairobi\nBuilt stuff",
			want:  types.ExperienceEntry{Role: "Engineer", Company: "Foo Ltd", Years: "Jan 2019 - Feb 2020", Description: "Nairobi Built stuff"},
		},
		{
			name:  "大写公司行",
			block: "Project Lead\nACME LIMITED\nMar 2018 – Dec 2019\nLed a team\nShipped v2",
			want:  types.ExperienceEntry{Role: "Project Lead", Company: "ACME LIMITED", Years: "Mar 2018 – Dec 2019", Description: "Led a team Shipped v2"},
		},
		{
			name:  "日期上一行为角色",
			block: "Data Analyst\n2017 - 2019\nBuilt dashboards",
			want:  types.ExperienceEntry{Role: "Data Analyst", Years: "2017 - 2019", Description: "Built dashboards"},
		},
		{
			name:  "日期上一行含破折号",
			block: "Nairobi office\nEngineer - Safaricom\n2016\n• Maintained APIs",
			want:  types.ExperienceEntry{Role: "Engineer", Company: "Safaricom", Years: "2016", Description: "Maintained APIs"},
		},
		{
			name:  "按位置推断",
			block: "Volunteer\nRed Cross\nFirst aid training\nCommunity outreach",
			want:  types.ExperienceEntry{Role: "Volunteer", Company: "Red Cross", Description: "First aid training Community outreach"},
		},
		{
			name:  "只有项目符号",
			block: "• Built a CLI\n• \n• Wrote docs",
			want:  types.ExperienceEntry{Description: "Built a CLI Wrote docs"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseExperienceBlock(tt.block))
		})
	}
}

func TestExtractExperience(t *testing.T) {
	section := "Software Engineer – Acme Corp\nJan 2020 - Present\n• Built things\n\nVolunteer\nRed Cross"

	got := ExtractExperience(section)
	require.Len(t, got, 2)
	assert.Equal(t, "Acme Corp", got[0].Company)
	assert.Equal(t, "Red Cross", got[1].Company)

	empty := ExtractExperience("")
	assert.NotNil(t, empty, "空分段应返回空列表而不是 nil")
	assert.Empty(t, empty)
}

func TestExtractEducation(t *testing.T) {
	tests := []struct {
		name  string
		block string
		want  types.EducationEntry
	}{
		{
			name:  "学位学校年份",
			block: "BSc Computer Science\nNairobi University\n2016-2020",
			want:  types.EducationEntry{Degree: "BSc Computer Science", School: "Nairobi University", Years: "2016-2020"},
		},
		{
			name:  "学校退回第二行",
			block: "Diploma in Accounting\nStrathmore\n2014",
			want:  types.EducationEntry{Degree: "Diploma in Accounting", School: "Strathmore", Years: "2014"},
		},
		{
			name:  "只有一行",
			block: "Alliance High",
			want:  types.EducationEntry{School: "Alliance High"},
		},
		{
			name:  "中学证书",
			block: "Kenya Certificate of Secondary Education (KCSE)\nThika High School\n2010 - 2013",
			want:  types.EducationEntry{Degree: "Kenya Certificate of Secondary Education (KCSE)", School: "Thika High School", Years: "2010 - 2013"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractEducation(tt.block)
			require.Len(t, got, 1, "每个块产生一个条目")
			assert.Equal(t, tt.want, got[0])
		})
	}

	assert.Empty(t, ExtractEducation(""))
	assert.Len(t, ExtractEducation("BSc\n\nKCSE\n\nMSc"), 3)
}

func TestExtractSkills(t *testing.T) {
	tests := []struct {
		name    string
		section string
		want    []string
	}{
		{name: "大小写去重", section: "Python, python, PYTHON, Java", want: []string{"Python", "Java"}},
		{name: "项目符号与链接", section: "• Go\n• Docker, Kubernetes\nhttps://github.com/x\nSQL | C", want: []string{"Go", "Docker", "Kubernetes", "SQL"}},
		{name: "空分段", section: "", want: []string{}},
		{name: "分号与中点", section: "Git; Linux · Bash", want: []string{"Git", "Linux", "Bash"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSkills(tt.section))
		})
	}
}

func TestExtractLanguages(t *testing.T) {
	var langs []string
	for i := 1; i <= 12; i++ {
		langs = append(langs, fmt.Sprintf("lang%d", i))
	}

	got := ExtractLanguages(strings.Join(langs, "\n"))
	assert.Len(t, got, 10, "最多返回 10 项")
	assert.Equal(t, "lang1", got[0])
	assert.Equal(t, "lang10", got[9])

	assert.Equal(t, []string{"English", "English", "Swahili"}, ExtractLanguages("English\nEnglish, Swahili"), "语言不去重")
	assert.Equal(t, []string{}, ExtractLanguages(""))
}

func TestExtractSoftSkills_WithHeading(t *testing.T) {
	text := "John\nCore Competencies: Leadership, Communication\nTeamwork\n• Able to mentor junior engineers across many distributed teams"
	assert.Equal(t, []string{"Leadership", "Communication", "Teamwork"}, ExtractSoftSkills(text))
}

func TestExtractSoftSkills_Vocabulary(t *testing.T) {
	text := "I value teamwork and Communication. Strong communication and problem solving."
	assert.Equal(t, []string{"teamwork", "Communication", "communication", "problem solving"}, ExtractSoftSkills(text),
		"按首次出现的原样文字去重")

	assert.Equal(t, []string{}, ExtractSoftSkills("Go developer"))
}

func TestExtractSoftSkills_Capped(t *testing.T) {
	items := make([]string, 30)
	for i := range items {
		items[i] = fmt.Sprintf("s%d", i+1)
	}
	got := ExtractSoftSkills("Soft Skills: " + strings.Join(items, ", "))
	require.Len(t, got, 20, "最多返回 20 项")
	assert.Equal(t, "s1", got[0])
}

func TestExtractReferences(t *testing.T) {
	section := "Dr. Alice Kim\nHead of Engineering, Acme\n+254 700 111 222\nalice@acme.com\n\nBob Lee\nbob@lee.io"

	assert.Equal(t, []types.ReferenceEntry{
		{Name: "Dr. Alice Kim", Phone: "+254 700 111 222", Email: "alice@acme.com"},
		{Name: "Bob Lee", Email: "bob@lee.io"},
	}, ExtractReferences(section))

	assert.Equal(t, []types.ReferenceEntry{}, ExtractReferences(""))
}

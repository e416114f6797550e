package types

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// ContactFields 简历头部的联系方式，字段缺失时为空字符串
type ContactFields struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Github   string `json:"github"`
	Linkedin string `json:"linkedin"`
}

// ExperienceEntry 一段工作经历
// Years 保存原始匹配到的日期区间或年份，不做日期解析
type ExperienceEntry struct {
	Role        string `json:"role"`
	Company     string `json:"company"`
	Years       string `json:"years"`
	Description string `json:"description"`
}

// EducationEntry 一段教育经历
type EducationEntry struct {
	Degree string `json:"degree"`
	School string `json:"school"`
	Years  string `json:"years"`
}

// ReferenceEntry 推荐人
type ReferenceEntry struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// DebugSnapshot 分段结果的诊断快照
// 序列化为扁平对象: 每个非空分段一个键，外加 moved_blocks_count 与 top_lines
type DebugSnapshot struct {
	Sections         map[string]string
	MovedBlocksCount int
	TopLines         string
}

const (
	debugKeyMovedBlocks = "moved_blocks_count"
	debugKeyTopLines    = "top_lines"
)

// MarshalJSON 输出扁平结构，键按字母序排列
func (d DebugSnapshot) MarshalJSON() ([]byte, error) {
	flat := make(map[string]interface{}, len(d.Sections)+2)
	for k, v := range d.Sections {
		flat[k] = v
	}
	flat[debugKeyMovedBlocks] = d.MovedBlocksCount
	flat[debugKeyTopLines] = d.TopLines
	return json.Marshal(flat)
}

// UnmarshalJSON 从扁平结构还原快照，非字符串的分段值会被忽略
func (d *DebugSnapshot) UnmarshalJSON(data []byte) error {
	var flat map[string]json.RawMessage
	if err := json.Unmarshal(data, &flat); err != nil {
		return fmt.Errorf("解析调试快照失败: %w", err)
	}

	d.Sections = make(map[string]string, len(flat))
	d.MovedBlocksCount = 0
	d.TopLines = ""

	for k, raw := range flat {
		switch k {
		case debugKeyMovedBlocks:
			if err := json.Unmarshal(raw, &d.MovedBlocksCount); err != nil {
				return fmt.Errorf("解析 %s 失败: %w", debugKeyMovedBlocks, err)
			}
		case debugKeyTopLines:
			if err := json.Unmarshal(raw, &d.TopLines); err != nil {
				return fmt.Errorf("解析 %s 失败: %w", debugKeyTopLines, err)
			}
		default:
			var s string
			if err := json.Unmarshal(raw, &s); err == nil {
				d.Sections[k] = s
			}
		}
	}
	return nil
}

// SectionKeys 返回快照中出现的分段键，按字母序
func (d DebugSnapshot) SectionKeys() []string {
	keys := make([]string, 0, len(d.Sections))
	for k := range d.Sections {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParsedDocument 一份简历的完整解析结果
type ParsedDocument struct {
	Personal   ContactFields     `json:"personal"`
	Experience []ExperienceEntry `json:"experience"`
	Education  []EducationEntry  `json:"education"`
	Skills     []string          `json:"skills"`
	SoftSkills []string          `json:"soft_skills"`
	Languages  []string          `json:"languages"`
	References []ReferenceEntry  `json:"references"`
	Debug      DebugSnapshot     `json:"_debug_sections"`
}

// NewParsedDocument 返回所有列表均已初始化的空结果，序列化时输出 [] 而不是 null
func NewParsedDocument() *ParsedDocument {
	return &ParsedDocument{
		Experience: []ExperienceEntry{},
		Education:  []EducationEntry{},
		Skills:     []string{},
		SoftSkills: []string{},
		Languages:  []string{},
		References: []ReferenceEntry{},
		Debug:      DebugSnapshot{Sections: map[string]string{}},
	}
}

// SavedCVInfo 已保存简历文件的概要信息
type SavedCVInfo struct {
	Filename  string    `json:"filename"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

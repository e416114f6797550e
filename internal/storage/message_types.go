package storage

import "time"

// CVParsedEvent 简历解析完成事件，经发件箱发布到 events exchange
type CVParsedEvent struct {
	RecordID         string    `json:"record_id"`
	FileMD5          string    `json:"file_md5"`
	OriginalFilename string    `json:"original_filename"`
	OriginalPathOSS  string    `json:"original_path_oss,omitempty"`
	CandidateName    string    `json:"candidate_name,omitempty"`
	ExperienceCount  int       `json:"experience_count"`
	EducationCount   int       `json:"education_count"`
	SkillsCount      int       `json:"skills_count"`
	ParserVersion    string    `json:"parser_version"`
	ParsedAt         time.Time `json:"parsed_at"`
}

// ParseRequestMessage 异步解析请求，原始文件已在对象存储中
type ParseRequestMessage struct {
	ObjectKey string `json:"object_key"`
	Filename  string `json:"filename"`
}

// EventTypeCVParsed 发件箱中的事件类型
const EventTypeCVParsed = "cv.parsed"

package models

import (
	"time"

	"gorm.io/datatypes"
)

// 解析记录状态
const (
	ParseStatusSuccess = "SUCCESS"
	ParseStatusFailed  = "FAILED"
)

// CVParseRecord 每次上传解析的记录
type CVParseRecord struct {
	RecordID         string         `gorm:"type:char(36);primaryKey"`
	FileMD5          string         `gorm:"type:char(32);not null;index:idx_cpr_file_md5"`
	OriginalFilename string         `gorm:"type:varchar(255)"`
	FileExt          string         `gorm:"type:varchar(10)"`
	FileSize         int64          `gorm:"not null;default:0"`
	OriginalPathOSS  string         `gorm:"type:varchar(1024)"`
	DecodeEngine     string         `gorm:"type:varchar(50)"`
	CandidateName    string         `gorm:"type:varchar(255);index:idx_cpr_candidate_name"`
	CandidateEmail   string         `gorm:"type:varchar(255)"`
	ParsedResult     datatypes.JSON `gorm:"type:json"`
	MovedBlocksCount int            `gorm:"not null;default:0"`
	Status           string         `gorm:"type:varchar(20);default:'SUCCESS';index:idx_cpr_status"`
	ErrorMessage     string         `gorm:"type:text"`
	ParserVersion    string         `gorm:"type:varchar(50)"`
	CreatedAt        time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);index:idx_cpr_created_at"`
	UpdatedAt        time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (CVParseRecord) TableName() string {
	return "cv_parse_records"
}

// SavedCV 用户保存的简历，与本地目录或对象存储中的文件一一对应
type SavedCV struct {
	Filename      string         `gorm:"type:varchar(255);primaryKey"`
	CandidateName string         `gorm:"type:varchar(255)"`
	Content       datatypes.JSON `gorm:"type:json"`
	SizeBytes     int64          `gorm:"not null;default:0"`
	CreatedAt     time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt     time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (SavedCV) TableName() string {
	return "saved_cvs"
}

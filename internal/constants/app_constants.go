package constants

import "time"

const (
	// ParserVersion 写入解析记录，规则或词表变化时递增
	ParserVersion = "heuristic-1.0"

	// DefaultParseCacheTTL 解析结果缓存的默认时间
	DefaultParseCacheTTL = 24 * time.Hour

	// SavedCVPrefix / SavedCVSuffix 已保存简历的文件名格式 cv_<name>.json
	SavedCVPrefix = "cv_"
	SavedCVSuffix = ".json"

	// UnknownCVName 简历中没有姓名时使用的文件名
	UnknownCVName = "unknown"
)

// AllowedExtensions 允许上传的文件扩展名
var AllowedExtensions = map[string]bool{
	"pdf":  true,
	"docx": true,
}

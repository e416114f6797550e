package constants

// Redis Key 前缀和格式常量
// 命名规范: cv:{module}:{entity}[:{unique_id}]
const (
	// AppPrefix 是所有Redis Key的统一应用前缀
	AppPrefix = "cv"

	// ParseModulePrefix 解析模块
	ParseModulePrefix = "parse"
	// FileModulePrefix 文件模块
	FileModulePrefix = "file"

	// EntityDedupSet 去重集合实体
	EntityDedupSet = "dedup_set"

	// KeyParseResult 解析结果缓存 (STRING, JSON)
	// 格式: cv:parse:{md5}
	KeyParseResult = AppPrefix + ":" + ParseModulePrefix + ":%s"

	// KeyFileMD5Set 已上传文件的MD5集合 (SET)
	// 格式: cv:file:dedup_set
	KeyFileMD5Set = AppPrefix + ":" + FileModulePrefix + ":" + EntityDedupSet
)

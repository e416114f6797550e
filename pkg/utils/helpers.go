package utils

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gorm.io/datatypes"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// CalculateMD5 computes the MD5 hash of a byte slice.
func CalculateMD5(data []byte) string {
	hasher := md5.New()
	hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil))
}

// ConvertToJSON 辅助函数: 将任意值序列化为 datatypes.JSON，失败时返回 null
func ConvertToJSON(v interface{}) datatypes.JSON {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("null")
	}
	return datatypes.JSON(jsonBytes)
}

// SecureFilename 生成可安全落盘的文件名
// NFKD 分解后丢弃非 ASCII 字符，路径分隔符视为空白，空白折叠为下划线，
// 其余非 [A-Za-z0-9_.-] 字符删除，最后去掉首尾的点和下划线；结果可能为空
func SecureFilename(name string) string {
	decomposed := norm.NFKD.String(name)

	var b strings.Builder
	for _, r := range decomposed {
		if r < 128 {
			b.WriteRune(r)
		}
	}

	s := strings.NewReplacer("/", " ", "\\", " ").Replace(b.String())
	s = strings.Join(strings.Fields(s), "_")
	s = unsafeFilenameChars.ReplaceAllString(s, "")
	return strings.Trim(s, "._")
}

// FileExtension 返回小写且不带点的扩展名
func FileExtension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

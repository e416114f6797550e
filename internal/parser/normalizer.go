package parser

import "strings"

// 删除控制字符或 mailto: 之后可能拼出新的项目符号/换行序列，
// 因此重复清洗直到结果稳定，轮数上限随文本长度增长
const extraNormalizePasses = 4

// Normalize 清洗从文档中提取出的原始文本
// 处理顺序固定: cid 占位符 -> 连续项目符号 -> 项目符号换行 -> 换行符统一 ->
// 多余空行 -> mailto: 前缀 -> 控制字符 -> 首尾空白
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	out := normalizePass(raw)
	limit := len(out) + extraNormalizePasses
	for i := 1; i < limit; i++ {
		next := normalizePass(out)
		if next == out {
			break
		}
		out = next
	}
	return out
}

func normalizePass(text string) string {
	text = cidArtifactRe.ReplaceAllString(text, bulletMarker)
	text = bulletRunRe.ReplaceAllString(text, bulletMarker)
	text = bulletSpacingRe.ReplaceAllString(text, "\n"+bulletMarker+" ")
	text = lineEndingRe.ReplaceAllString(text, "\n")
	text = excessNewlineRe.ReplaceAllString(text, "\n\n")
	text = stripMailtoAndControl(text)
	return strings.TrimSpace(text)
}

// stripMailtoAndControl 反复删除 mailto: 前缀和控制字符，直到两者都不再出现
// "mamailto:ilto:" 这类嵌套需要多轮
func stripMailtoAndControl(text string) string {
	for {
		next := mailtoPrefixRe.ReplaceAllString(text, "")
		next = strings.Map(dropControlRune, next)
		if next == text {
			return next
		}
		text = next
	}
}

// dropControlRune 去掉码点小于 9 的字符以及垂直制表符、换页符，保留 \t 和 \n
func dropControlRune(r rune) rune {
	if r < '\t' || r == '\v' || r == '\f' {
		return -1
	}
	return r
}

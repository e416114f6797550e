package parser

import (
	"strings"

	"cv-maker-go/internal/types"
)

// ExtractContact 在整篇文本中提取联系方式
// 邮箱、电话、GitHub、LinkedIn 取第一个匹配；姓名取前 5 个非空行的第一行，
// 第二行不超过 5 个词或包含职位关键词时作为职位
func ExtractContact(text string) types.ContactFields {
	contact := types.ContactFields{
		Email:    emailRe.FindString(text),
		Phone:    phoneRe.FindString(text),
		Github:   githubRe.FindString(text),
		Linkedin: linkedinRe.FindString(text),
	}

	top := topLines(text, contactTopN)
	if len(top) > 0 {
		contact.Name = strings.TrimSpace(top[0])
	}
	if len(top) > 1 {
		candidate := strings.TrimSpace(top[1])
		if len(strings.Fields(candidate)) <= titleMaxWords || titleKeywordRe.MatchString(candidate) {
			contact.Title = candidate
		}
	}
	return contact
}

// topLines 返回前 n 个非空行，保留行内原样空白
func topLines(text string, n int) []string {
	var lines []string
	for _, ln := range strings.Split(text, "\n") {
		if strings.TrimSpace(ln) == "" {
			continue
		}
		lines = append(lines, ln)
		if len(lines) == n {
			break
		}
	}
	return lines
}

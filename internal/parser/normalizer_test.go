package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_Steps(t *testing.T) {
	raw := "Jane Doe\r\nEmail: mailto:jane@x.com\r\n\r\n\r\n\r\nSkills(cid:3)Go(cid:12) (cid:3)Python"
	want := "Jane Doe\nEmail: jane@x.com\n\nSkills\n• Go\n• Python"
	assert.Equal(t, want, Normalize(raw), "清洗步骤应按固定顺序执行")
}

func TestNormalize_Cases(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "空输入", in: "", want: ""},
		{name: "控制字符", in: "a\x00b\x0bc\x0cd\te", want: "abcd\te"},
		{name: "只有控制字符", in: "\x01\x02\x0b\x0c", want: ""},
		{name: "连续项目符号", in: "Skills: • • •Go", want: "Skills:\n• Go"},
		{name: "只有项目符号", in: "•••• • •", want: "•"},
		{name: "MAILTO大小写", in: "MailTo:a@b.co", want: "a@b.co"},
		{name: "多余空行", in: "a\n\n\n\n\nb", want: "a\n\nb"},
		{name: "回车", in: "a\rb\r\nc", want: "a\nb\nc"},
		{name: "首尾空白", in: "  \n\t hello \n ", want: "hello"},
		{name: "不换行空格包围的项目符号", in: "Go\u00a0•\u00a0Rust", want: "Go\n• Rust"},
		{name: "嵌套mailto", in: nestedMailto(5) + "x@y.io", want: "x@y.io"},
		{name: "控制字符拆开的mailto", in: "ma\x01mailto:ilto:x@y.io", want: "x@y.io"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

// nestedMailto 生成 depth 层嵌套的 mailto:，每删除一层会拼出下一层
func nestedMailto(depth int) string {
	s := "mailto:"
	for i := 0; i < depth; i++ {
		s = "ma" + s + "ilto:"
	}
	return s
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"Jane Doe\nSoftware Engineer\n\nEXPERIENCE\nDev – Acme\n• Built things\n• Shipped",
		"Skills(cid:1)Go(cid:2)Rust",
		"a mailto:• b",
		"a\n\n\x01\n\nb",
		"•\x01•",
		"mamailto:ilto:x@y.io",
		nestedMailto(5) + "x@y.io",
		nestedMailto(12),
		"Go\u00a0•\u00a0Rust\u2003•\u2003SQL",
		"••••",
		strings.Repeat("word • ", 200),
		"\x00\x01\x02\x03",
		"line\r\n\r\n\r\n\r\nline",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "对已清洗文本再次清洗应保持不变: %q", in)
	}
}

func TestNormalize_Invariants(t *testing.T) {
	inputs := []string{
		"a\n\n\x01\n\nb",
		"x\r\r\r\ry",
		"• \x0b• \x0c•",
		strings.Repeat("(cid:9)", 50),
		"\xff\xfe invalid utf8 \x01",
	}

	for _, in := range inputs {
		out := Normalize(in)
		assert.NotContains(t, out, "\r", "不应包含回车")
		assert.NotContains(t, out, "\n\n\n", "不应包含三个以上连续换行")
		for _, r := range out {
			assert.False(t, r < '\t' || r == '\v' || r == '\f', "不应包含控制字符 %U", r)
		}
		assert.Equal(t, strings.TrimSpace(out), out, "首尾不应有空白")
	}
}

func TestNormalize_LongLine(t *testing.T) {
	long := strings.Repeat("abcdefghij", 20000)
	assert.NotPanics(t, func() {
		assert.Equal(t, long, Normalize(long))
	})
}

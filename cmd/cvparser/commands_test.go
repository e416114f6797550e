package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cliResume = "Jane Doe\nSoftware Engineer\njane@example.com\n\nEXPERIENCE\nEngineer – Acme\n2019 - 2021\n\nUniversity of Nairobi\nBSc Computer Science\n2014 - 2018\n\nSKILLS\nGo, SQL\n"

// runCLI 用临时 .txt 文件执行命令并返回标准输出
func runCLI(t *testing.T, fn func() error, content string, prettyOutput bool) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cv.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	var buf bytes.Buffer
	oldOut, oldFile, oldPretty := stdout, *filePath, *pretty
	stdout, *filePath, *pretty = &buf, path, prettyOutput
	t.Cleanup(func() { stdout, *filePath, *pretty = oldOut, oldFile, oldPretty })

	require.NoError(t, fn())
	return buf.String()
}

func TestParseCommand_Text(t *testing.T) {
	out := runCLI(t, handleParseCommand, cliResume, false)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "Jane Doe", doc["personal"].(map[string]interface{})["name"])
	assert.Equal(t, []interface{}{"Go", "SQL"}, doc["skills"])
	assert.Equal(t, 1, strings.Count(strings.TrimSpace(out), "\n")+1, "非 pretty 模式输出单行")
}

func TestParseCommand_Pretty(t *testing.T) {
	out := runCLI(t, handleParseCommand, cliResume, true)
	assert.True(t, strings.HasPrefix(out, "{\n  \"personal\": {"))
}

func TestNormalizeCommand(t *testing.T) {
	out := runCLI(t, handleNormalizeCommand, "Jane\r\n\r\n\r\n\r\nDoe\t\n", false)
	assert.NotContains(t, out, "\r")
	assert.NotContains(t, out, "\n\n\n")
}

func TestSectionsCommand(t *testing.T) {
	out := runCLI(t, handleSectionsCommand, cliResume, false)
	assert.Contains(t, out, "==== experience ====")
	assert.Contains(t, out, "==== skills ====\nGo, SQL")
	assert.Contains(t, out, "==== moved blocks (1) ====")
	assert.Contains(t, out, "University of Nairobi")
	assert.NotContains(t, out, "==== languages ====", "空分段不输出")
}

func TestExtractCommand_MissingFile(t *testing.T) {
	old := *filePath
	*filePath = filepath.Join(t.TempDir(), "missing.pdf")
	t.Cleanup(func() { *filePath = old })

	assert.Error(t, handleExtractCommand())
}

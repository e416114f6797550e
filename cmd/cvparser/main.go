package main

import (
	"flag"
	"fmt"
	"os"

	"cv-maker-go/internal/logger"

	"github.com/rs/zerolog"
)

// 命令行参数定义
var (
	command    = flag.String("cmd", "parse", "执行的命令: parse=解析为JSON, extract=仅提取文本, normalize=清洗文本, sections=查看分段")
	filePath   = flag.String("file", "", "简历文件路径，支持 .pdf .docx .txt (必填)")
	engine     = flag.String("engine", "", "PDF解析引擎: eino, ledongthuc, tika，为空时使用配置")
	pretty     = flag.Bool("pretty", false, "以缩进格式输出JSON")
	configPath = flag.String("config", "", "配置文件路径，为空时在默认位置查找")
)

func main() {
	flag.Parse()

	// 日志只写标准错误，标准输出留给结果
	logger.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(zerolog.WarnLevel).With().Timestamp().Logger()

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "错误: 必须通过 -file 指定简历文件")
		flag.Usage()
		os.Exit(2)
	}

	var err error
	switch *command {
	case "parse":
		err = handleParseCommand()
	case "extract":
		err = handleExtractCommand()
	case "normalize":
		err = handleNormalizeCommand()
	case "sections":
		err = handleSectionsCommand()
	default:
		fmt.Fprintf(os.Stderr, "错误: 未知命令 '%s'。支持的命令: parse, extract, normalize, sections\n", *command)
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

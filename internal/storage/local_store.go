package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cv-maker-go/internal/constants"
	"cv-maker-go/internal/types"
)

// LocalStore 把已保存简历写在本地目录中
type LocalStore struct {
	dir string
}

// NewLocalStore 创建本地存储，目录不存在时创建
func NewLocalStore(dir string) (*LocalStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("本地存储目录不能为空")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建目录 %s 失败: %w", dir, err)
	}
	return &LocalStore{dir: dir}, nil
}

// Dir 存储目录
func (s *LocalStore) Dir() string { return s.dir }

// path 只接受不含路径分隔符的文件名
func (s *LocalStore) path(filename string) (string, error) {
	if filename == "" || filename == "." || filename == ".." ||
		strings.ContainsAny(filename, `/\`) || filepath.Base(filename) != filename {
		return "", fmt.Errorf("非法文件名 %q", filename)
	}
	return filepath.Join(s.dir, filename), nil
}

// Write 覆盖写入文件
func (s *LocalStore) Write(filename string, data []byte) error {
	p, err := s.path(filename)
	if err != nil {
		return err
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("写入 %s 失败: %w", filename, err)
	}
	return nil
}

// Read 读取文件，不存在时返回 ErrNotFound
func (s *LocalStore) Read(filename string) ([]byte, error) {
	p, err := s.path(filename)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("文件 %s: %w", filename, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("读取 %s 失败: %w", filename, err)
	}
	return data, nil
}

// List 列出目录下的 .json 文件，按文件名排序
func (s *LocalStore) List() ([]types.SavedCVInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("读取目录 %s 失败: %w", s.dir, err)
	}

	files := []types.SavedCVInfo{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), constants.SavedCVSuffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, types.SavedCVInfo{
			Filename:  entry.Name(),
			Size:      info.Size(),
			UpdatedAt: info.ModTime(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Filename < files[j].Filename })
	return files, nil
}

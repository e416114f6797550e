package processor

import (
	"errors"
	"fmt"
)

// 基础错误类型
var (
	ErrInvalidFileType = errors.New("invalid file type")
	ErrEmptyFile       = errors.New("empty file")
	ErrDecodeFailed    = errors.New("decode failed")
	ErrStorageFailed   = errors.New("storage failed")
	ErrNotFound        = errors.New("file not found")
	ErrInvalidFilename = errors.New("invalid filename")
	ErrNoData          = errors.New("no data provided")
	ErrInvalidData     = errors.New("invalid CV data")
)

// CVProcessError 包含操作和文件名的错误
type CVProcessError struct {
	Op       string
	Filename string
	BaseErr  error
	Detail   string
}

func (e *CVProcessError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (操作:%s, 文件:%s): %s", e.BaseErr, e.Op, e.Filename, e.Detail)
	}
	return fmt.Sprintf("%s (操作:%s, 文件:%s)", e.BaseErr, e.Op, e.Filename)
}

func (e *CVProcessError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *CVProcessError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

func newError(op, filename string, base error, detail string) error {
	return &CVProcessError{Op: op, Filename: filename, BaseErr: base, Detail: detail}
}

// NewDecodeError 解码失败
func NewDecodeError(filename string, cause error) error {
	return newError("decode", filename, ErrDecodeFailed, cause.Error())
}

// NewStorageError 存储读写失败
func NewStorageError(op, filename string, cause error) error {
	return newError(op, filename, ErrStorageFailed, cause.Error())
}

// Detail 返回错误详情，非 CVProcessError 时返回 err.Error()
func Detail(err error) string {
	var pe *CVProcessError
	if errors.As(err, &pe) && pe.Detail != "" {
		return pe.Detail
	}
	return err.Error()
}

package gallery

import (
	"errors"
	"fmt"
)

// Stage 上传流水线阶段
type Stage string

const (
	StageReceived  Stage = "received"
	StageStored    Stage = "stored"
	StageInspected Stage = "inspected"
	StageIndexed   Stage = "indexed"
	StageDone      Stage = "done"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrStorage           = errors.New("storage error")
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrIndexing          = errors.New("indexing error")
	ErrSearchUnavailable = errors.New("search unavailable")
)

// PipelineError 流水线在某一阶段失败
// Stage 为失败时正在进行的阶段，BlobPersisted 表示文件是否已经落盘
type PipelineError struct {
	Stage         Stage
	Filename      string
	BlobPersisted bool
	Err           error
}

func (e *PipelineError) Error() string {
	if e.Filename != "" {
		return fmt.Sprintf("upload failed at %s (%s): %v", e.Stage, e.Filename, e.Err)
	}
	return fmt.Sprintf("upload failed at %s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// failAt 构造带分类的流水线错误
func failAt(stage Stage, filename string, persisted bool, kind, cause error) *PipelineError {
	err := kind
	switch {
	case cause == nil:
	case errors.Is(cause, kind):
		err = cause
	default:
		err = fmt.Errorf("%w: %w", kind, cause)
	}
	return &PipelineError{
		Stage:         stage,
		Filename:      filename,
		BlobPersisted: persisted,
		Err:           err,
	}
}

package gallery

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"time"

	"github.com/anoixa/image-gallery/cache"
	"github.com/anoixa/image-gallery/database/models"
	"github.com/anoixa/image-gallery/internal/metrics"
	"github.com/anoixa/image-gallery/search"
	"github.com/anoixa/image-gallery/storage"
	"github.com/anoixa/image-gallery/utils"
	"github.com/anoixa/image-gallery/utils/generator"
)

// UploadInput 一次上传的输入
type UploadInput struct {
	Reader      io.Reader
	Filename    string
	ContentType string
}

// UploadResult 上传结果
type UploadResult struct {
	Filename string
	Record   *models.ImageRecord
}

// UploadService 上传流水线：存储 -> 读取元数据 -> 建立索引
type UploadService struct {
	storage   storage.Provider
	gateway   search.Gateway
	inspector *Inspector
	names     *generator.FilenameGenerator
	journal   Journal
	cache     *cache.SearchCache
	index     string
	now       func() time.Time
}

// NewUploadService 创建上传服务，journal 与 searchCache 可以为 nil
func NewUploadService(
	provider storage.Provider,
	gateway search.Gateway,
	journal Journal,
	searchCache *cache.SearchCache,
	opts Options,
) *UploadService {
	opts = opts.withDefaults()
	return &UploadService{
		storage:   provider,
		gateway:   gateway,
		inspector: NewInspector(provider),
		names:     generator.NewFilenameGenerator(),
		journal:   journal,
		cache:     searchCache,
		index:     opts.Index,
		now:       time.Now,
	}
}

// WithClock 替换时间源
func (s *UploadService) WithClock(now func() time.Time) *UploadService {
	s.now = now
	return s
}

// WithFilenameGenerator 替换文件名生成器
func (s *UploadService) WithFilenameGenerator(g *generator.FilenameGenerator) *UploadService {
	s.names = g
	return s
}

// Upload 执行一次上传
// 任何阶段失败都返回 *PipelineError，不做重试；已落盘的文件不会回滚
func (s *UploadService) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	if in.Reader == nil || strings.TrimSpace(in.Filename) == "" {
		perr := failAt(StageReceived, "", false, ErrValidation, errors.New("no file uploaded"))
		metrics.IngestionsTotal.WithLabelValues(string(StageReceived)).Inc()
		return nil, perr
	}

	// 阶段开始后不受客户端断开影响
	ctx = context.WithoutCancel(ctx)

	filename, err := s.names.Generate(in.Filename, in.ContentType)
	if err != nil {
		return nil, s.fail(ctx, in, failAt(StageStored, "", false, ErrStorage, err))
	}

	start := time.Now()
	if err := s.storage.SaveWithContext(ctx, filename, in.Reader); err != nil {
		return nil, s.fail(ctx, in, failAt(StageStored, filename, false, ErrStorage, err))
	}
	observeStage(StageStored, start)

	start = time.Now()
	dims, err := s.inspector.Inspect(ctx, filename)
	if err != nil {
		kind := ErrUnsupportedFormat
		if errors.Is(err, ErrStorage) {
			kind = ErrStorage
		}
		return nil, s.fail(ctx, in, failAt(StageInspected, filename, true, kind, err))
	}
	observeStage(StageInspected, start)

	record := BuildRecord(in.Filename, filename, dims, s.now())

	start = time.Now()
	if err := s.gateway.AddDocuments(ctx, s.index, []*models.ImageRecord{record}); err != nil {
		return nil, s.fail(ctx, in, failAt(StageIndexed, filename, true, ErrIndexing, err))
	}
	observeStage(StageIndexed, start)
	s.cache.Invalidate()

	recordIngestion(ctx, s.journal, &models.Ingestion{
		StoredFilename: filename,
		OriginalName:   in.Filename,
		RecordID:       record.ID,
		State:          models.IngestionStateDone,
		BlobPersisted:  true,
	})
	metrics.IngestionsTotal.WithLabelValues(string(StageDone)).Inc()
	metrics.IngestedBytesTotal.Add(float64(dims.Size))
	utils.LogIfDevf("[Upload] Indexed %s as %s", utils.SanitizeLogFilename(filename), record.ID)

	return &UploadResult{Filename: filename, Record: record}, nil
}

func (s *UploadService) fail(ctx context.Context, in UploadInput, perr *PipelineError) *PipelineError {
	log.Printf("[Upload] %s", utils.SanitizeLogMessage(perr.Error()))
	metrics.IngestionsTotal.WithLabelValues(string(perr.Stage)).Inc()
	recordIngestion(ctx, s.journal, &models.Ingestion{
		StoredFilename: perr.Filename,
		OriginalName:   in.Filename,
		State:          models.IngestionStateFailed,
		FailedStage:    string(perr.Stage),
		BlobPersisted:  perr.BlobPersisted,
		Error:          perr.Err.Error(),
	})
	return perr
}

func observeStage(stage Stage, start time.Time) {
	metrics.IngestionDuration.WithLabelValues(string(stage)).Observe(time.Since(start).Seconds())
}

// BuildRecord 由原始文件名与存储结果构建索引文档
func BuildRecord(originalName, storedFilename string, dims models.Dimensions, createdAt time.Time) *models.ImageRecord {
	title := generator.BaseName(originalName)
	return &models.ImageRecord{
		ID:          DeriveID(title),
		Title:       title,
		Description: "",
		FilePath:    FilePathPrefix + storedFilename,
		Dimensions:  dims,
		CreatedAt:   models.FormatCreatedAt(createdAt),
	}
}

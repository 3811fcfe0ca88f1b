package gallery

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/anoixa/image-gallery/database/models"
	"github.com/anoixa/image-gallery/search"
	"github.com/anoixa/image-gallery/storage"
	"github.com/stretchr/testify/require"
)

// fakeGateway 包装内存引擎，可注入错误并统计调用次数
type fakeGateway struct {
	*search.BleveGateway

	mu             sync.Mutex
	calls          map[string]int
	searchErrs     []error
	addErr         error
	createErr      error
	deleteIndexErr error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		BleveGateway: search.NewBleveGateway(),
		calls:        make(map[string]int),
	}
}

func (f *fakeGateway) count(op string) {
	f.mu.Lock()
	f.calls[op]++
	f.mu.Unlock()
}

func (f *fakeGateway) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeGateway) CreateIndex(ctx context.Context, index, primaryKey string) error {
	f.count("CreateIndex")
	if f.createErr != nil {
		return f.createErr
	}
	return f.BleveGateway.CreateIndex(ctx, index, primaryKey)
}

func (f *fakeGateway) DeleteIndex(ctx context.Context, index string) error {
	f.count("DeleteIndex")
	if f.deleteIndexErr != nil {
		return f.deleteIndexErr
	}
	return f.BleveGateway.DeleteIndex(ctx, index)
}

func (f *fakeGateway) AddDocuments(ctx context.Context, index string, records []*models.ImageRecord) error {
	f.count("AddDocuments")
	if f.addErr != nil {
		return f.addErr
	}
	return f.BleveGateway.AddDocuments(ctx, index, records)
}

func (f *fakeGateway) UpdateSortableAttributes(ctx context.Context, index string, attrs []string) error {
	f.count("UpdateSortableAttributes")
	return f.BleveGateway.UpdateSortableAttributes(ctx, index, attrs)
}

func (f *fakeGateway) Search(ctx context.Context, index, query string, opts search.SearchOptions) ([]*models.ImageRecord, error) {
	f.count("Search")
	f.mu.Lock()
	var injected error
	if len(f.searchErrs) > 0 {
		injected = f.searchErrs[0]
		f.searchErrs = f.searchErrs[1:]
	}
	f.mu.Unlock()
	if injected != nil {
		return nil, injected
	}
	return f.BleveGateway.Search(ctx, index, query, opts)
}

// fakeJournal 内存上传日志
type fakeJournal struct {
	mu      sync.Mutex
	nextID  uint
	entries []*models.Ingestion
}

func (j *fakeJournal) Record(_ context.Context, entry *models.Ingestion) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.nextID++
	entry.ID = j.nextID
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	j.entries = append(j.entries, entry)
	return nil
}

func (j *fakeJournal) ListFailedAtStage(_ context.Context, stage string) ([]*models.Ingestion, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []*models.Ingestion
	for _, e := range j.entries {
		if e.State == models.IngestionStateFailed && e.FailedStage == stage && e.BlobPersisted {
			out = append(out, e)
		}
	}
	return out, nil
}

func (j *fakeJournal) MarkDone(_ context.Context, id uint, recordID string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, e := range j.entries {
		if e.ID == id {
			e.State = models.IngestionStateDone
			e.FailedStage = ""
			e.RecordID = recordID
			return nil
		}
	}
	return nil
}

func (j *fakeJournal) Delete(_ context.Context, id uint) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	for i, e := range j.entries {
		if e.ID == id {
			j.entries = append(j.entries[:i], j.entries[i+1:]...)
			return nil
		}
	}
	return nil
}

func (j *fakeJournal) Clear(_ context.Context) (int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	n := int64(len(j.entries))
	j.entries = nil
	return n, nil
}

func (j *fakeJournal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.entries)
}

// pngBytes 生成指定尺寸的 PNG
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: uint8(x), G: 100, B: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestStorage(t *testing.T) *storage.LocalStorage {
	t.Helper()
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return s
}

// steppingClock 每次调用前进一秒
func steppingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	now := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

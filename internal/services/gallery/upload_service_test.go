package gallery

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/anoixa/image-gallery/database/models"
	"github.com/anoixa/image-gallery/search"
	"github.com/anoixa/image-gallery/utils/generator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUploadService(t *testing.T, gw search.Gateway, journal Journal) (*UploadService, *fakeStorageDir) {
	t.Helper()
	store := newTestStorage(t)
	svc := NewUploadService(store, gw, journal, nil, Options{})
	return svc, &fakeStorageDir{store: store}
}

// fakeStorageDir 方便在测试中读取已存储的文件
type fakeStorageDir struct {
	store interface {
		GetWithContext(ctx context.Context, name string) (io.ReadCloser, error)
		ListWithContext(ctx context.Context) ([]string, error)
	}
}

func (d *fakeStorageDir) read(t *testing.T, name string) []byte {
	t.Helper()
	rc, err := d.store.GetWithContext(context.Background(), name)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return data
}

func (d *fakeStorageDir) list(t *testing.T) []string {
	t.Helper()
	names, err := d.store.ListWithContext(context.Background())
	require.NoError(t, err)
	return names
}

func TestUploadService_Upload(t *testing.T) {
	gw := newFakeGateway()
	journal := &fakeJournal{}
	svc, dir := newTestUploadService(t, gw, journal)

	fixed := time.Date(2024, 1, 15, 9, 30, 0, 5_000_000, time.UTC)
	svc.WithClock(func() time.Time { return fixed })
	svc.WithFilenameGenerator(generator.NewFilenameGenerator().
		WithTokenSource(func() (string, error) { return "abcdefghij123", nil }))

	data := pngBytes(t, 40, 30)
	res, err := svc.Upload(context.Background(), UploadInput{
		Reader:      bytes.NewReader(data),
		Filename:    "Sunset Over Lake.png",
		ContentType: "image/png",
	})
	require.NoError(t, err)

	assert.Equal(t, "abcdefghij123-Sunset-Over-Lake.png", res.Filename)
	assert.Equal(t, &models.ImageRecord{
		ID:          "sunset-over-lake",
		Title:       "Sunset Over Lake",
		Description: "",
		FilePath:    "/images/abcdefghij123-Sunset-Over-Lake.png",
		Dimensions:  models.Dimensions{Width: 40, Height: 30, Format: "png", Size: int64(len(data))},
		CreatedAt:   "2024-01-15T09:30:00.005Z",
	}, res.Record)

	assert.Equal(t, data, dir.read(t, res.Filename))
	assert.Equal(t, 1, gw.Calls("AddDocuments"))

	require.Equal(t, 1, journal.Len())
	assert.Equal(t, models.IngestionStateDone, journal.entries[0].State)
	assert.Equal(t, "sunset-over-lake", journal.entries[0].RecordID)
}

func TestUploadService_RoundTrip(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	svc, dir := newTestUploadService(t, gw, nil)
	query := NewQueryService(gw, nil, Options{})

	data := pngBytes(t, 12, 7)
	_, err := svc.Upload(ctx, UploadInput{Reader: bytes.NewReader(data), Filename: "cat.png", ContentType: "image/png"})
	require.NoError(t, err)

	records, err := query.Search(ctx, "")
	require.NoError(t, err)
	require.Len(t, records, 1)

	name := strings.TrimPrefix(records[0].FilePath, FilePathPrefix)
	assert.Equal(t, data, dir.read(t, name))
}

func TestUploadService_Ordering(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	svc, _ := newTestUploadService(t, gw, nil)
	svc.WithClock(steppingClock(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)))
	query := NewQueryService(gw, nil, Options{})

	for _, name := range []string{"t1.png", "t2.png", "t3.png"} {
		_, err := svc.Upload(ctx, UploadInput{Reader: bytes.NewReader(pngBytes(t, 2, 2)), Filename: name, ContentType: "image/png"})
		require.NoError(t, err)
	}

	records, err := query.Search(ctx, "")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"t3", "t2", "t1"}, []string{records[0].ID, records[1].ID, records[2].ID})
}

func TestUploadService_Validation(t *testing.T) {
	gw := newFakeGateway()
	journal := &fakeJournal{}
	svc, dir := newTestUploadService(t, gw, journal)

	tests := []UploadInput{
		{Reader: nil, Filename: "a.png"},
		{Reader: bytes.NewReader([]byte("x")), Filename: "  "},
	}
	for _, in := range tests {
		_, err := svc.Upload(context.Background(), in)
		assert.ErrorIs(t, err, ErrValidation)

		var perr *PipelineError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, StageReceived, perr.Stage)
		assert.False(t, perr.BlobPersisted)
	}

	assert.Empty(t, dir.list(t))
	assert.Zero(t, gw.Calls("AddDocuments"))
}

func TestUploadService_UnsupportedFormat(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	journal := &fakeJournal{}
	svc, dir := newTestUploadService(t, gw, journal)

	_, err := svc.Upload(ctx, UploadInput{
		Reader:      strings.NewReader("this is plain text pretending to be a jpeg"),
		Filename:    "fake.jpg",
		ContentType: "image/jpeg",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	var perr *PipelineError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, StageInspected, perr.Stage)
	assert.True(t, perr.BlobPersisted)
	assert.NotEmpty(t, perr.Filename)

	// 不创建任何索引文档，文件保留在磁盘上
	assert.Zero(t, gw.Calls("AddDocuments"))
	_, err = gw.BleveGateway.Search(ctx, DefaultIndex, "", search.SearchOptions{})
	assert.ErrorIs(t, err, search.ErrIndexNotFound)
	assert.Equal(t, []string{perr.Filename}, dir.list(t))

	orphans, err := journal.ListFailedAtStage(ctx, string(StageInspected))
	require.NoError(t, err)
	assert.Len(t, orphans, 1)
}

func TestUploadService_IndexingFailure(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	gw.addErr = search.ErrIndexUnavailable
	journal := &fakeJournal{}
	svc, dir := newTestUploadService(t, gw, journal)

	_, err := svc.Upload(ctx, UploadInput{Reader: bytes.NewReader(pngBytes(t, 3, 3)), Filename: "x.png", ContentType: "image/png"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIndexing)
	assert.ErrorIs(t, err, search.ErrIndexUnavailable)

	var perr *PipelineError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, StageIndexed, perr.Stage)
	assert.True(t, perr.BlobPersisted)
	assert.Len(t, dir.list(t), 1)

	failed, err := journal.ListFailedAtStage(ctx, string(StageIndexed))
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "x.png", failed[0].OriginalName)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestUploadService_StorageFailure(t *testing.T) {
	gw := newFakeGateway()
	svc, dir := newTestUploadService(t, gw, nil)

	_, err := svc.Upload(context.Background(), UploadInput{Reader: failingReader{}, Filename: "x.png", ContentType: "image/png"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorage)

	var perr *PipelineError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, StageStored, perr.Stage)
	assert.False(t, perr.BlobPersisted)
	assert.Empty(t, dir.list(t))
	assert.Zero(t, gw.Calls("AddDocuments"))
}

func TestUploadService_CanceledContextStillCompletes(t *testing.T) {
	gw := newFakeGateway()
	svc, _ := newTestUploadService(t, gw, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := svc.Upload(ctx, UploadInput{Reader: bytes.NewReader(pngBytes(t, 2, 2)), Filename: "late.png", ContentType: "image/png"})
	require.NoError(t, err)
	assert.Equal(t, "late", res.Record.ID)
}

func TestUploadService_SameTitleLastWriteWins(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	svc, dir := newTestUploadService(t, gw, nil)
	svc.WithClock(steppingClock(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)))

	first, err := svc.Upload(ctx, UploadInput{Reader: bytes.NewReader(pngBytes(t, 2, 2)), Filename: "dup.png", ContentType: "image/png"})
	require.NoError(t, err)
	second, err := svc.Upload(ctx, UploadInput{Reader: bytes.NewReader(pngBytes(t, 4, 4)), Filename: "dup.png", ContentType: "image/png"})
	require.NoError(t, err)
	assert.NotEqual(t, first.Filename, second.Filename)

	records, err := NewQueryService(gw, nil, Options{}).Search(ctx, "")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, second.Record.FilePath, records[0].FilePath)
	assert.Len(t, dir.list(t), 2)
}

func TestBuildRecord(t *testing.T) {
	created := time.Date(2023, 12, 31, 23, 59, 59, 999_000_000, time.FixedZone("X", 3600))
	rec := BuildRecord(`C:\Users\me\Holiday.Photo.JPG`, "tok-Holiday-Photo.jpeg", models.Dimensions{Width: 1}, created)

	assert.Equal(t, "Holiday.Photo", rec.Title)
	assert.Equal(t, "holidayphoto", rec.ID)
	assert.Equal(t, "/images/tok-Holiday-Photo.jpeg", rec.FilePath)
	assert.Equal(t, "2023-12-31T22:59:59.999Z", rec.CreatedAt)
	assert.Nil(t, rec.Tags)
}

package processor

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"cv-maker-go/internal/storage"
	"cv-maker-go/internal/storage/models"
	"cv-maker-go/internal/types"
)

// fakeExtractor 返回固定文本并记录调用次数
type fakeExtractor struct {
	text  string
	err   error
	calls int
	uris  []string
}

func (f *fakeExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	return f.ExtractTextFromBytes(ctx, nil, filePath, nil)
}

func (f *fakeExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string, options interface{}) (string, map[string]interface{}, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", nil, err
	}
	return f.ExtractTextFromBytes(ctx, data, uri, options)
}

func (f *fakeExtractor) ExtractTextFromBytes(_ context.Context, _ []byte, uri string, options interface{}) (string, map[string]interface{}, error) {
	f.calls++
	f.uris = append(f.uris, uri)
	if f.err != nil {
		return "", nil, f.err
	}
	meta := map[string]interface{}{"engine": "fake"}
	if extra, ok := options.(map[string]interface{}); ok {
		for k, v := range extra {
			meta[k] = v
		}
	}
	return f.text, meta, nil
}

// fakeCache 内存解析缓存
type fakeCache struct {
	mu      sync.Mutex
	results map[string][]byte
	md5s    map[string]bool
	ttls    map[string]time.Duration
	getErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		results: make(map[string][]byte),
		md5s:    make(map[string]bool),
		ttls:    make(map[string]time.Duration),
	}
}

func (c *fakeCache) GetParseResult(_ context.Context, md5Hex string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	data, ok := c.results[md5Hex]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return data, nil
}

func (c *fakeCache) SetParseResult(_ context.Context, md5Hex string, data []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[md5Hex] = data
	c.ttls[md5Hex] = ttl
	return nil
}

func (c *fakeCache) CheckFileMD5Exists(_ context.Context, md5Hex string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.md5s[md5Hex], nil
}

func (c *fakeCache) CheckAndAddFileMD5(_ context.Context, md5Hex string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	existed := c.md5s[md5Hex]
	c.md5s[md5Hex] = true
	return existed, nil
}

// fakeArchive 内存对象存储
type fakeArchive struct {
	objects   map[string][]byte
	uploadErr error
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{objects: make(map[string][]byte)}
}

func (a *fakeArchive) UploadOriginal(_ context.Context, md5Hex, ext string, data []byte) (string, error) {
	if a.uploadErr != nil {
		return "", a.uploadErr
	}
	key := "cv/" + md5Hex + "/original." + ext
	a.objects[key] = data
	return key, nil
}

func (a *fakeArchive) GetOriginal(_ context.Context, objectKey string) ([]byte, error) {
	data, ok := a.objects[objectKey]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return data, nil
}

// fakeRecorder 记录写入的解析记录和发件箱消息
type fakeRecorder struct {
	records []*models.CVParseRecord
	msgs    []*models.OutboxMessage
	err     error
}

func (r *fakeRecorder) CreateParseRecordWithOutbox(_ context.Context, record *models.CVParseRecord, msg *models.OutboxMessage) error {
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, record)
	if msg != nil {
		r.msgs = append(r.msgs, msg)
	}
	return nil
}

func (r *fakeRecorder) LatestParseRecordByMD5(_ context.Context, md5Hex string) (*models.CVParseRecord, error) {
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].FileMD5 == md5Hex {
			return r.records[i], nil
		}
	}
	return nil, storage.ErrNotFound
}

// memoryBackend 内存中的已保存简历后端
type memoryBackend struct {
	files    map[string][]byte
	writeErr error
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{files: make(map[string][]byte)}
}

func (b *memoryBackend) Write(_ context.Context, filename string, data []byte) error {
	if b.writeErr != nil {
		return b.writeErr
	}
	b.files[filename] = append([]byte(nil), data...)
	return nil
}

func (b *memoryBackend) Read(_ context.Context, filename string) ([]byte, error) {
	data, ok := b.files[filename]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return data, nil
}

func (b *memoryBackend) List(context.Context) ([]types.SavedCVInfo, error) {
	files := []types.SavedCVInfo{}
	for name, data := range b.files {
		files = append(files, types.SavedCVInfo{Filename: name, Size: int64(len(data))})
	}
	return files, nil
}

// fakeMirror 记录镜像写入
type fakeMirror struct {
	saved []*models.SavedCV
	err   error
}

func (m *fakeMirror) UpsertSavedCV(_ context.Context, saved *models.SavedCV) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, saved)
	return nil
}

var errBoom = errors.New("boom")

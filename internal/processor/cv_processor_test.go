package processor

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cv-maker-go/internal/config"
	"cv-maker-go/internal/storage"
	"cv-maker-go/internal/storage/models"
	"cv-maker-go/internal/types"
	"cv-maker-go/pkg/utils"
)

const resumeText = `Jane Doe
Software Engineer
jane@example.com | +254 700 000 000

EXPERIENCE
Senior Engineer – Acme Corp
Jan 2020 - Present
• Led the platform team

SKILLS
Go, Python, SQL`

var pdfBytes = []byte("%PDF-1.4 fake content")

func newTestProcessor(ext *fakeExtractor, opts ...Option) *CVProcessor {
	base := []Option{WithExtractor("pdf", ext), WithExtractor(".DOCX", ext)}
	return NewCVProcessor(append(base, opts...)...)
}

func TestProcess_Success(t *testing.T) {
	ext := &fakeExtractor{text: resumeText}
	p := newTestProcessor(ext)

	result, err := p.Process(context.Background(), "Jane Doe CV.pdf", pdfBytes)
	require.NoError(t, err)

	assert.Equal(t, "Jane_Doe_CV.pdf", result.Filename)
	assert.Equal(t, utils.CalculateMD5(pdfBytes), result.FileMD5)
	assert.False(t, result.Cached)
	assert.Empty(t, result.ObjectKey, "未配置归档时没有对象键")
	assert.Empty(t, result.RecordID)
	assert.Equal(t, result.FileMD5, result.Metadata["file_md5"])

	require.NotNil(t, result.Document)
	assert.Equal(t, "Jane Doe", result.Document.Personal.Name)
	assert.Equal(t, "jane@example.com", result.Document.Personal.Email)
	assert.Equal(t, []string{"Jane_Doe_CV.pdf"}, ext.uris)
}

func TestProcess_InvalidFileType(t *testing.T) {
	ext := &fakeExtractor{text: resumeText}
	p := newTestProcessor(ext)

	for _, name := range []string{"notes.exe", "pdf", "", "archive.tar.gz", "cv.txt"} {
		_, err := p.Process(context.Background(), name, pdfBytes)
		assert.ErrorIs(t, err, ErrInvalidFileType, name)
	}
	assert.Zero(t, ext.calls, "校验失败时不应解码")
}

func TestProcess_UppercaseExtension(t *testing.T) {
	p := newTestProcessor(&fakeExtractor{text: resumeText})

	result, err := p.Process(context.Background(), "RESUME.PDF", pdfBytes)
	require.NoError(t, err)
	assert.Equal(t, "RESUME.PDF", result.Filename)
}

func TestProcess_EmptyFile(t *testing.T) {
	p := newTestProcessor(&fakeExtractor{text: resumeText})

	_, err := p.Process(context.Background(), "cv.pdf", nil)
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestProcess_DecodeError(t *testing.T) {
	p := newTestProcessor(&fakeExtractor{err: errBoom})

	_, err := p.Process(context.Background(), "cv.pdf", pdfBytes)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecodeFailed)
	assert.Equal(t, "boom", Detail(err))
}

func TestProcess_NoExtractorRegistered(t *testing.T) {
	p := NewCVProcessor(WithExtractor("pdf", &fakeExtractor{text: resumeText}))

	_, err := p.Process(context.Background(), "cv.docx", []byte("PK"))
	assert.ErrorIs(t, err, ErrDecodeFailed)
}

type stubParser struct{ doc *types.ParsedDocument }

func (s stubParser) Parse(string) *types.ParsedDocument { return s.doc }

func TestProcess_CustomParser(t *testing.T) {
	doc := types.NewParsedDocument()
	doc.Personal.Name = "Stub"
	p := newTestProcessor(&fakeExtractor{text: "x"}, WithParser(stubParser{doc: doc}), WithParser(nil))

	result, err := p.Process(context.Background(), "cv.pdf", pdfBytes)
	require.NoError(t, err)
	assert.Same(t, doc, result.Document)
}

func TestProcess_CacheHit(t *testing.T) {
	ext := &fakeExtractor{text: resumeText}
	cache := newFakeCache()
	p := newTestProcessor(ext, WithCache(cache), WithCacheTTL(time.Hour))

	first, err := p.Process(context.Background(), "cv.pdf", pdfBytes)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, time.Hour, cache.ttls[first.FileMD5])
	assert.True(t, cache.md5s[first.FileMD5])

	second, err := p.Process(context.Background(), "other-name.pdf", pdfBytes)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, "other-name.pdf", second.Filename)
	assert.Equal(t, 1, ext.calls, "命中缓存时不应再次解码")
	assert.Equal(t, first.Document.Personal, second.Document.Personal)
	assert.Equal(t, first.Document.Experience, second.Document.Experience)
}

func TestProcess_CorruptCacheIgnored(t *testing.T) {
	ext := &fakeExtractor{text: resumeText}
	cache := newFakeCache()
	cache.results[utils.CalculateMD5(pdfBytes)] = []byte("{not json")
	p := newTestProcessor(ext, WithCache(cache))

	result, err := p.Process(context.Background(), "cv.pdf", pdfBytes)
	require.NoError(t, err)
	assert.False(t, result.Cached)
	assert.Equal(t, 1, ext.calls)
	assert.True(t, json.Valid(cache.results[result.FileMD5]), "损坏的缓存应被覆盖")
}

func TestProcess_CacheErrorIgnored(t *testing.T) {
	cache := newFakeCache()
	cache.getErr = errBoom
	p := newTestProcessor(&fakeExtractor{text: resumeText}, WithCache(cache))

	result, err := p.Process(context.Background(), "cv.pdf", pdfBytes)
	require.NoError(t, err)
	assert.False(t, result.Cached)
}

func TestProcess_RecordFallbackRefillsCache(t *testing.T) {
	ext := &fakeExtractor{text: resumeText}
	cache := newFakeCache()
	recorder := &fakeRecorder{}
	p := newTestProcessor(ext, WithCache(cache), WithArchive(newFakeArchive()), WithRecorder(recorder, "", ""))

	first, err := p.Process(context.Background(), "cv.pdf", pdfBytes)
	require.NoError(t, err)
	require.NotEmpty(t, first.RecordID)

	// 模拟缓存过期，MD5 集合仍在
	delete(cache.results, first.FileMD5)

	second, err := p.Process(context.Background(), "cv.pdf", pdfBytes)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.RecordID, second.RecordID)
	assert.Equal(t, first.ObjectKey, second.ObjectKey)
	assert.Equal(t, first.Document.Personal, second.Document.Personal)
	assert.Equal(t, 1, ext.calls)
	assert.Len(t, recorder.records, 1)
	assert.Contains(t, cache.results, first.FileMD5, "命中记录后应回填缓存")
}

func TestProcess_UnseenMD5SkipsRecordLookup(t *testing.T) {
	ext := &fakeExtractor{text: resumeText}
	cache := newFakeCache()
	recorder := &fakeRecorder{}
	p := newTestProcessor(ext, WithCache(cache), WithRecorder(recorder, "", ""))

	_, err := p.Process(context.Background(), "cv.pdf", pdfBytes)
	require.NoError(t, err)

	// 清空缓存和 MD5 集合后应重新解码
	cache.results = map[string][]byte{}
	cache.md5s = map[string]bool{}

	again, err := p.Process(context.Background(), "cv.pdf", pdfBytes)
	require.NoError(t, err)
	assert.False(t, again.Cached)
	assert.Equal(t, 2, ext.calls)
	assert.Len(t, recorder.records, 2)
}

func TestProcess_ArchivesOriginal(t *testing.T) {
	archive := newFakeArchive()
	p := newTestProcessor(&fakeExtractor{text: resumeText}, WithArchive(archive))

	result, err := p.Process(context.Background(), "cv.pdf", pdfBytes)
	require.NoError(t, err)
	assert.Equal(t, "cv/"+result.FileMD5+"/original.pdf", result.ObjectKey)
	assert.Equal(t, pdfBytes, archive.objects[result.ObjectKey])
}

func TestProcess_ArchiveFailureIsBestEffort(t *testing.T) {
	archive := newFakeArchive()
	archive.uploadErr = errBoom
	p := newTestProcessor(&fakeExtractor{text: resumeText}, WithArchive(archive))

	result, err := p.Process(context.Background(), "cv.pdf", pdfBytes)
	require.NoError(t, err)
	assert.Empty(t, result.ObjectKey)
}

func TestProcess_RecordsParseAndOutbox(t *testing.T) {
	recorder := &fakeRecorder{}
	p := newTestProcessor(&fakeExtractor{text: resumeText},
		WithArchive(newFakeArchive()),
		WithRecorder(recorder, "cv.events.exchange", "cv.parsed"),
		WithEngineName(config.PDFEngineEino),
	)

	result, err := p.Process(context.Background(), "cv.pdf", pdfBytes)
	require.NoError(t, err)
	require.Len(t, recorder.records, 1)
	require.Len(t, recorder.msgs, 1)

	record := recorder.records[0]
	assert.Equal(t, result.RecordID, record.RecordID)
	assert.Len(t, record.RecordID, 36)
	assert.Equal(t, result.FileMD5, record.FileMD5)
	assert.Equal(t, "pdf", record.FileExt)
	assert.Equal(t, int64(len(pdfBytes)), record.FileSize)
	assert.Equal(t, result.ObjectKey, record.OriginalPathOSS)
	assert.Equal(t, "eino", record.DecodeEngine)
	assert.Equal(t, "Jane Doe", record.CandidateName)
	assert.Equal(t, models.ParseStatusSuccess, record.Status)
	assert.True(t, json.Valid(record.ParsedResult))

	msg := recorder.msgs[0]
	assert.Len(t, msg.ID, 36)
	assert.Equal(t, record.RecordID, msg.AggregateID)
	assert.Equal(t, storage.EventTypeCVParsed, msg.EventType)
	assert.Equal(t, "cv.events.exchange", msg.TargetExchange)
	assert.Equal(t, "cv.parsed", msg.TargetRoutingKey)
	assert.Equal(t, models.OutboxStatusPending, msg.Status)

	var event storage.CVParsedEvent
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
	assert.Equal(t, record.RecordID, event.RecordID)
	assert.Equal(t, "Jane Doe", event.CandidateName)
	assert.Equal(t, result.ObjectKey, event.OriginalPathOSS)
	assert.Equal(t, len(result.Document.Skills), event.SkillsCount)
}

func TestProcess_RecordWithoutExchange(t *testing.T) {
	recorder := &fakeRecorder{}
	p := newTestProcessor(&fakeExtractor{text: resumeText}, WithRecorder(recorder, "", ""))

	_, err := p.Process(context.Background(), "cv.docx", []byte("PK docx"))
	require.NoError(t, err)
	require.Len(t, recorder.records, 1)
	assert.Empty(t, recorder.msgs)
	assert.Equal(t, "docx", recorder.records[0].DecodeEngine)
}

func TestProcess_RecorderFailureIsBestEffort(t *testing.T) {
	p := newTestProcessor(&fakeExtractor{text: resumeText}, WithRecorder(&fakeRecorder{err: errBoom}, "x", "y"))

	result, err := p.Process(context.Background(), "cv.pdf", pdfBytes)
	require.NoError(t, err)
	assert.Empty(t, result.RecordID)
}

func TestProcessObject(t *testing.T) {
	archive := newFakeArchive()
	key, err := archive.UploadOriginal(context.Background(), "abc", "pdf", pdfBytes)
	require.NoError(t, err)

	p := newTestProcessor(&fakeExtractor{text: resumeText}, WithArchive(archive))

	result, err := p.ProcessObject(context.Background(), key, "cv.pdf")
	require.NoError(t, err)
	assert.Equal(t, key, result.ObjectKey, "已归档的对象不应重新上传")
	assert.Len(t, archive.objects, 1)

	_, err = p.ProcessObject(context.Background(), "cv/missing/original.pdf", "cv.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProcessObject_WithoutArchive(t *testing.T) {
	p := newTestProcessor(&fakeExtractor{text: resumeText})

	_, err := p.ProcessObject(context.Background(), "cv/x/original.pdf", "cv.pdf")
	assert.ErrorIs(t, err, ErrStorageFailed)
}

func TestExtractText(t *testing.T) {
	p := newTestProcessor(&fakeExtractor{text: resumeText})

	text, meta, err := p.ExtractText(context.Background(), "cv.pdf", pdfBytes)
	require.NoError(t, err)
	assert.Equal(t, resumeText, text)
	assert.Equal(t, "fake", meta["engine"])

	_, _, err = p.ExtractText(context.Background(), "cv.txt", pdfBytes)
	assert.ErrorIs(t, err, ErrInvalidFileType)

	_, _, err = p.ExtractText(context.Background(), "cv.pdf", nil)
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestSupportedExtensions(t *testing.T) {
	p := newTestProcessor(&fakeExtractor{})
	assert.ElementsMatch(t, []string{"pdf", "docx"}, p.SupportedExtensions())
}

func TestWithStorage_SkipsDisabledComponents(t *testing.T) {
	p := NewCVProcessor(
		WithStorage(&storage.Storage{}, config.Default().RabbitMQ),
		WithStorage(nil, config.RabbitMQConfig{}),
	)

	assert.Nil(t, p.cache)
	assert.Nil(t, p.archive)
	assert.Nil(t, p.recorder)
	assert.Empty(t, p.eventExchange)
}

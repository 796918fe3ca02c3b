package transcript

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MimeLyc/caption-transcript/internal/config"
	"github.com/MimeLyc/caption-transcript/internal/subtitle"
	"github.com/MimeLyc/caption-transcript/internal/ytdlp"
)

const videoRef = "https://www.youtube.com/watch?v=abc123"

type mockExtractor struct {
	mock.Mock
}

func (m *mockExtractor) ExtractInfo(ctx context.Context, ref string, langs []string) (*ytdlp.Info, error) {
	args := m.Called(ctx, ref, langs)
	info, _ := args.Get(0).(*ytdlp.Info)
	return info, args.Error(1)
}

func (m *mockExtractor) DownloadSubtitle(ctx context.Context, ref string, req ytdlp.DownloadRequest) error {
	args := m.Called(ctx, ref, req)
	return args.Error(0)
}

// writes returns a mock Run func that drops a subtitle file into the request dir.
func writes(name, content string) func(mock.Arguments) {
	return func(args mock.Arguments) {
		req := args.Get(2).(ytdlp.DownloadRequest)
		if err := os.WriteFile(filepath.Join(req.Dir, name), []byte(content), 0o644); err != nil {
			panic(err)
		}
	}
}

func newTestService(t *testing.T, ext ytdlp.Extractor, opts ...Option) (*Service, string) {
	t.Helper()
	base := t.TempDir()
	svc := NewService(ext, config.TranscriptConfig{
		Languages: config.DefaultLanguages,
		TempDir:   base,
	}, opts...)
	return svc, base
}

func assertNoTempLeft(t *testing.T, base string) {
	t.Helper()
	entries, err := os.ReadDir(base)
	require.NoError(t, err)
	assert.Empty(t, entries, "temp dirs left behind")
}

func duration(f float64) *float64 { return &f }

func TestService_Get_VTTSuccess(t *testing.T) {
	ext := &mockExtractor{}
	svc, base := newTestService(t, ext)

	ext.On("ExtractInfo", mock.Anything, videoRef, []string{"en-US", "en-GB", "en"}).Return(&ytdlp.Info{
		ID:       "abc123",
		Title:    "A talk",
		Duration: duration(61),
		AutomaticCaptions: map[string][]ytdlp.Track{
			"en": {{Ext: "json3", URL: "u1"}},
		},
		Subtitles: map[string][]ytdlp.Track{
			"en-US": {{Ext: "vtt", URL: "u2"}},
			"fr":    {{Ext: "vtt", URL: "u3"}},
		},
	}, nil).Once()
	ext.On("DownloadSubtitle", mock.Anything, videoRef, mock.MatchedBy(func(req ytdlp.DownloadRequest) bool {
		return req.Stem == "subtitle" && req.Language == "en-US" && req.Format == "vtt" && !req.Automatic &&
			filepath.Dir(req.Dir) == base
	})).Run(writes("subtitle.en-US.vtt", "WEBVTT\n\n00:00:01.000 --> 00:00:02.000\nHello <c>world</c>\n")).Return(nil).Once()

	r := svc.Get(context.Background(), videoRef)

	require.True(t, r.Success)
	require.NotNil(t, r.Transcript)
	assert.Equal(t, "Hello world", *r.Transcript)
	assert.Equal(t, "en-US", *r.Language)
	assert.Equal(t, "vtt", *r.Format)
	assert.Equal(t, "A talk", *r.VideoTitle)
	assert.Equal(t, "abc123", *r.VideoID)
	assert.Equal(t, 61.0, *r.Duration)
	assert.Empty(t, r.Error)
	ext.AssertExpectations(t)
	assertNoTempLeft(t, base)
}

func TestService_Fetch_JSON3AutomaticDefaults(t *testing.T) {
	ext := &mockExtractor{}
	svc, base := newTestService(t, ext)

	ext.On("ExtractInfo", mock.Anything, videoRef, mock.Anything).Return(&ytdlp.Info{
		AutomaticCaptions: map[string][]ytdlp.Track{"en": {{Ext: "json3"}, {Ext: "vtt"}}},
	}, nil)
	ext.On("DownloadSubtitle", mock.Anything, videoRef, mock.MatchedBy(func(req ytdlp.DownloadRequest) bool {
		return req.Automatic && req.Format == "json3" && req.Language == "en"
	})).Run(writes("subtitle.en.json3", `{"events":[{"segs":[{"utf8":"Hello"},{"utf8":" world"}]},{"segs":[{"utf8":"\n"}]}]}`)).Return(nil)

	tr, err := svc.Fetch(context.Background(), videoRef)
	require.NoError(t, err)
	assert.Equal(t, "Hello world", tr.Text)
	assert.Equal(t, "", tr.VideoTitle)
	assert.Equal(t, "", tr.VideoID)
	assert.Equal(t, 0.0, tr.Duration)
	assertNoTempLeft(t, base)
}

func TestService_Get_SRTSuccess(t *testing.T) {
	ext := &mockExtractor{}
	svc, _ := newTestService(t, ext)

	ext.On("ExtractInfo", mock.Anything, videoRef, mock.Anything).Return(&ytdlp.Info{
		Subtitles: map[string][]ytdlp.Track{"en-GB": {{Ext: "srt"}}},
	}, nil)
	ext.On("DownloadSubtitle", mock.Anything, videoRef, mock.Anything).
		Run(writes("subtitle.en-GB.srt", "1\n00:00:01,000 --> 00:00:02,000\nHello world\n")).Return(nil)

	r := svc.Get(context.Background(), videoRef)
	require.True(t, r.Success)
	assert.Equal(t, "Hello world", *r.Transcript)
	assert.Equal(t, "en-GB", *r.Language)
}

func TestService_Get_NoTranscript(t *testing.T) {
	tests := []struct {
		name string
		info *ytdlp.Info
	}{
		{
			name: "no captions at all",
			info: &ytdlp.Info{ID: "x"},
		},
		{
			name: "only foreign languages",
			info: &ytdlp.Info{
				Subtitles:         map[string][]ytdlp.Track{"de": {{Ext: "vtt"}}},
				AutomaticCaptions: map[string][]ytdlp.Track{"ja": {{Ext: "vtt"}}},
			},
		},
		{
			name: "only non-preferred english tags",
			info: &ytdlp.Info{
				AutomaticCaptions: map[string][]ytdlp.Track{"en-IN": {{Ext: "vtt"}}, "en-orig": {{Ext: "vtt"}}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext := &mockExtractor{}
			svc, base := newTestService(t, ext)
			ext.On("ExtractInfo", mock.Anything, videoRef, mock.Anything).Return(tt.info, nil)

			r := svc.Get(context.Background(), videoRef)

			assert.True(t, r.Success)
			assert.Nil(t, r.Transcript)
			assert.True(t, r.NoTranscript())
			assert.Empty(t, r.Error)
			ext.AssertNotCalled(t, "DownloadSubtitle", mock.Anything, mock.Anything, mock.Anything)
			assertNoTempLeft(t, base)
		})
	}
}

func TestService_Get_DownloadProducesNoFile(t *testing.T) {
	ext := &mockExtractor{}
	svc, base := newTestService(t, ext)
	ext.On("ExtractInfo", mock.Anything, videoRef, mock.Anything).Return(&ytdlp.Info{
		Subtitles: map[string][]ytdlp.Track{"en": {{Ext: "vtt"}}},
	}, nil)
	ext.On("DownloadSubtitle", mock.Anything, videoRef, mock.Anything).Return(nil)

	r := svc.Get(context.Background(), videoRef)
	assert.True(t, r.NoTranscript())
	assertNoTempLeft(t, base)
}

func TestService_Fetch_UnsupportedFileFormat(t *testing.T) {
	ext := &mockExtractor{}
	svc, base := newTestService(t, ext)
	ext.On("ExtractInfo", mock.Anything, videoRef, mock.Anything).Return(&ytdlp.Info{
		Subtitles: map[string][]ytdlp.Track{"en": {{Ext: "vtt"}}},
	}, nil)
	// yt-dlp may convert to a format other than the one requested
	ext.On("DownloadSubtitle", mock.Anything, videoRef, mock.Anything).
		Run(writes("subtitle.en.srv3", "<timedtext/>")).Return(nil)

	_, err := svc.Fetch(context.Background(), videoRef)

	require.Error(t, err)
	assert.True(t, IsErrorType(err, ErrDecode))
	assert.ErrorIs(t, err, subtitle.ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), "file=subtitle.en.srv3")
	assertNoTempLeft(t, base)
}

func TestService_Get_Failures(t *testing.T) {
	englishVTT := &ytdlp.Info{Subtitles: map[string][]ytdlp.Track{"en": {{Ext: "vtt"}}}}

	tests := []struct {
		name     string
		setup    func(ext *mockExtractor)
		wantType string
		wantMsg  string
	}{
		{
			name: "collaborator rejects reference",
			setup: func(ext *mockExtractor) {
				ext.On("ExtractInfo", mock.Anything, videoRef, mock.Anything).
					Return(nil, errors.New("ERROR: not a valid URL"))
			},
			wantType: "MetadataFetch",
			wantMsg:  "not a valid URL",
		},
		{
			name: "no metadata",
			setup: func(ext *mockExtractor) {
				ext.On("ExtractInfo", mock.Anything, videoRef, mock.Anything).Return(nil, nil)
			},
			wantType: "MetadataFetch",
			wantMsg:  "no metadata",
		},
		{
			name: "download fails",
			setup: func(ext *mockExtractor) {
				ext.On("ExtractInfo", mock.Anything, videoRef, mock.Anything).Return(englishVTT, nil)
				ext.On("DownloadSubtitle", mock.Anything, videoRef, mock.Anything).Return(errors.New("HTTP Error 429"))
			},
			wantType: "Download",
			wantMsg:  "HTTP Error 429",
		},
		{
			name: "unsupported format",
			setup: func(ext *mockExtractor) {
				ext.On("ExtractInfo", mock.Anything, videoRef, mock.Anything).Return(&ytdlp.Info{
					Subtitles: map[string][]ytdlp.Track{"en": {{Ext: "ttml"}}},
				}, nil)
				ext.On("DownloadSubtitle", mock.Anything, videoRef, mock.Anything).
					Run(writes("subtitle.en.ttml", "<tt/>")).Return(nil)
			},
			wantType: "Decode",
			wantMsg:  "unsupported subtitle format",
		},
		{
			name: "malformed json3",
			setup: func(ext *mockExtractor) {
				ext.On("ExtractInfo", mock.Anything, videoRef, mock.Anything).Return(&ytdlp.Info{
					Subtitles: map[string][]ytdlp.Track{"en": {{Ext: "json3"}}},
				}, nil)
				ext.On("DownloadSubtitle", mock.Anything, videoRef, mock.Anything).
					Run(writes("subtitle.en.json3", `{"events":`)).Return(nil)
			},
			wantType: "Decode",
			wantMsg:  "json3",
		},
		{
			name: "collaborator panics",
			setup: func(ext *mockExtractor) {
				ext.On("ExtractInfo", mock.Anything, videoRef, mock.Anything).Return(englishVTT, nil)
				ext.On("DownloadSubtitle", mock.Anything, videoRef, mock.Anything).
					Run(func(mock.Arguments) { panic("subprocess exploded") })
			},
			wantType: "Unknown",
			wantMsg:  "subprocess exploded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext := &mockExtractor{}
			svc, base := newTestService(t, ext)
			tt.setup(ext)

			r := svc.Get(context.Background(), videoRef)

			assert.False(t, r.Success)
			assert.Nil(t, r.Transcript)
			assert.NotEmpty(t, r.Error)
			assert.Contains(t, r.Error, tt.wantMsg)
			assert.Equal(t, tt.wantType, r.ErrorType)
			assertNoTempLeft(t, base)
		})
	}
}

func TestService_Fetch_TempDirUnavailable(t *testing.T) {
	ext := &mockExtractor{}
	svc := NewService(ext, config.TranscriptConfig{
		TempDir: filepath.Join(t.TempDir(), "missing", "nested"),
	})

	_, err := svc.Fetch(context.Background(), videoRef)
	require.Error(t, err)
	assert.True(t, IsErrorType(err, ErrUnknown))
	ext.AssertNotCalled(t, "ExtractInfo", mock.Anything, mock.Anything, mock.Anything)
}

type memoryCache struct {
	entries map[string]Transcript
	expires map[string]time.Time
	getErr  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]Transcript{}, expires: map[string]time.Time{}}
}

func (c *memoryCache) GetTranscript(_ context.Context, ref string, now time.Time) (*Transcript, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	t, ok := c.entries[ref]
	if !ok || !now.Before(c.expires[ref]) {
		return nil, false, nil
	}
	return &t, true, nil
}

func (c *memoryCache) PutTranscript(_ context.Context, ref string, t Transcript, expiresAt time.Time) error {
	c.entries[ref] = t
	c.expires[ref] = expiresAt
	return nil
}

func TestService_Cache(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	cache := newMemoryCache()
	ext := &mockExtractor{}
	svc, _ := newTestService(t, ext, WithCache(cache, time.Hour), WithClock(func() time.Time { return now }))

	ext.On("ExtractInfo", mock.Anything, videoRef, mock.Anything).Return(&ytdlp.Info{
		ID:        "abc123",
		Subtitles: map[string][]ytdlp.Track{"en": {{Ext: "srt"}}},
	}, nil).Once()
	ext.On("DownloadSubtitle", mock.Anything, videoRef, mock.Anything).
		Run(writes("subtitle.en.srt", "1\n00:00:01,000 --> 00:00:02,000\ncached text\n")).Return(nil).Once()

	first := svc.Get(context.Background(), videoRef)
	require.True(t, first.Success)
	assert.Equal(t, now.Add(time.Hour), cache.expires[videoRef])

	second := svc.Get(context.Background(), videoRef)
	require.True(t, second.Success)
	assert.Equal(t, "cached text", *second.Transcript)
	assert.Equal(t, "abc123", *second.VideoID)
	ext.AssertNumberOfCalls(t, "ExtractInfo", 1)
}

func TestService_CacheErrorFallsThrough(t *testing.T) {
	cache := newMemoryCache()
	cache.getErr = errors.New("database is locked")
	ext := &mockExtractor{}
	svc, _ := newTestService(t, ext, WithCache(cache, time.Hour))

	ext.On("ExtractInfo", mock.Anything, videoRef, mock.Anything).Return(&ytdlp.Info{}, nil)

	r := svc.Get(context.Background(), videoRef)
	assert.True(t, r.NoTranscript())
	ext.AssertExpectations(t)
}

package transcript

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/text/language"

	"github.com/MimeLyc/caption-transcript/internal/config"
	"github.com/MimeLyc/caption-transcript/internal/subtitle"
	"github.com/MimeLyc/caption-transcript/internal/ytdlp"
	"github.com/MimeLyc/caption-transcript/pkg/file"
	"github.com/MimeLyc/caption-transcript/pkg/log"
)

// subtitleStem is the fixed base name of the downloaded caption file.
const subtitleStem = "subtitle"

// Cache stores successful transcripts keyed by video reference.
type Cache interface {
	GetTranscript(ctx context.Context, ref string, now time.Time) (*Transcript, bool, error)
	PutTranscript(ctx context.Context, ref string, t Transcript, expiresAt time.Time) error
}

// Service turns a video reference into a Transcript.
type Service struct {
	extractor ytdlp.Extractor
	languages []string
	families  []string
	tempDir   string

	cache    Cache
	cacheTTL time.Duration
	now      func() time.Time
}

type Option func(*Service)

// WithCache enables lookups and writes of successful transcripts.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(extractor ytdlp.Extractor, cfg config.TranscriptConfig, opts ...Option) *Service {
	languages := cfg.Languages
	if len(languages) == 0 {
		languages = config.DefaultLanguages
		cfg.Languages = languages
	}
	s := &Service{
		extractor: extractor,
		languages: languages,
		families:  cfg.LanguageFamilies(),
		tempDir:   cfg.TempDir,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get runs Fetch and folds its outcome, panics included, into a Result.
func (s *Service) Get(ctx context.Context, ref string) Result {
	var t *Transcript
	err := SafeExecute(func() error {
		var err error
		t, err = s.Fetch(ctx, ref)
		return err
	})
	if err != nil && !IsErrorType(err, ErrNoCaptionTrack) {
		log.Error("Failed to get transcript for %s: %v", ref, err)
	}
	return NewResult(t, err)
}

// Fetch selects, downloads and decodes a caption track for ref. A missing
// track is reported as an ErrNoCaptionTrack error.
func (s *Service) Fetch(ctx context.Context, ref string) (*Transcript, error) {
	if t := s.lookup(ctx, ref); t != nil {
		return t, nil
	}

	var ret *Transcript
	err := withTempDir(s.tempDir, "transcript-*", func(dir string) error {
		var err error
		ret, err = s.fetch(ctx, ref, dir)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.store(ctx, ref, *ret)
	return ret, nil
}

func (s *Service) fetch(ctx context.Context, ref, dir string) (*Transcript, error) {
	info, err := s.extractor.ExtractInfo(ctx, ref, s.languages)
	if err != nil {
		return nil, WrapError(err, ErrMetadataFetch, "failed to fetch video metadata").
			WithContext("video", ref)
	}
	if info == nil {
		return nil, NewError(ErrMetadataFetch, "no metadata returned for video").
			WithContext("video", ref)
	}

	tracks := MergeTracks(info.AutomaticCaptions, info.Subtitles, s.families)
	if len(tracks) == 0 {
		return nil, NewError(ErrNoCaptionTrack, "no caption tracks available").
			WithContext("video", ref)
	}

	variant, ok := Select(tracks, s.languages)
	if !ok {
		return nil, NewError(ErrNoCaptionTrack, "no preferred caption track available").
			WithContext("video", ref).
			WithContext("available", tracks.Languages())
	}
	log.Info("Selected %s caption track %s (%s) for %s", kind(variant), variant.Language, variant.Ext, ref)

	if err := s.extractor.DownloadSubtitle(ctx, ref, ytdlp.DownloadRequest{
		Dir:       dir,
		Stem:      subtitleStem,
		Language:  variant.Language,
		Format:    variant.Ext,
		Automatic: variant.Automatic,
	}); err != nil {
		return nil, WrapError(err, ErrDownload, "failed to download subtitle").
			WithContext("language", variant.Language)
	}

	found, err := file.FindByStem(dir, subtitleStem)
	if err != nil {
		return nil, WrapError(err, ErrDownload, "failed to list downloaded subtitle")
	}
	if len(found) == 0 {
		return nil, NewError(ErrNoCaptionTrack, "subtitle download produced no file").
			WithContext("language", variant.Language)
	}
	path := found[0]

	format := subtitle.ParseFormat(file.Ext(path))
	if !subtitle.Supported(format) {
		return nil, WrapError(subtitle.ErrUnsupportedFormat, ErrDecode, "unsupported subtitle format").
			WithContext("file", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapError(err, ErrDownload, "failed to read subtitle file")
	}

	text, err := subtitle.Text(format, data)
	if err != nil {
		return nil, WrapError(err, ErrDecode, fmt.Sprintf("failed to decode %s subtitle", file.Ext(path)))
	}
	text = Normalize(text)
	s.checkLanguage(text, variant.Language)

	t := &Transcript{
		Text:       text,
		Language:   variant.Language,
		Format:     variant.Ext,
		VideoTitle: info.Title,
		VideoID:    info.ID,
	}
	if info.Duration != nil {
		t.Duration = *info.Duration
	}
	return t, nil
}

// checkLanguage warns when the decoded text does not look like the track's language.
func (s *Service) checkLanguage(text, tag string) {
	detected := subtitle.DetectLanguage(text)
	if detected == language.Und {
		return
	}
	want, err := language.Parse(tag)
	if err != nil {
		return
	}
	detectedBase, _ := detected.Base()
	wantBase, _ := want.Base()
	if detectedBase != wantBase {
		log.Warn("Caption track %s looks like %s", tag, detected)
	}
}

func (s *Service) lookup(ctx context.Context, ref string) *Transcript {
	if s.cache == nil {
		return nil
	}
	t, ok, err := s.cache.GetTranscript(ctx, ref, s.now())
	if err != nil {
		log.Warn("Transcript cache lookup failed for %s: %v", ref, err)
		return nil
	}
	if !ok {
		return nil
	}
	log.Debug("Transcript cache hit for %s", ref)
	return t
}

func (s *Service) store(ctx context.Context, ref string, t Transcript) {
	if s.cache == nil {
		return
	}
	if err := s.cache.PutTranscript(ctx, ref, t, s.now().Add(s.cacheTTL)); err != nil {
		log.Warn("Failed to cache transcript for %s: %v", ref, err)
	}
}

func kind(v Variant) string {
	if v.Automatic {
		return "automatic"
	}
	return "manual"
}

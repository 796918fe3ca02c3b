package transcript

// Result is the JSON contract printed for every request.
//
// Success: transcript set (possibly ""), error absent.
// No transcript: success true, transcript null.
// Failure: success false, transcript null, error and error_type set.
type Result struct {
	Success    bool     `json:"success"`
	Transcript *string  `json:"transcript"`
	Language   *string  `json:"language,omitempty"`
	Format     *string  `json:"format,omitempty"`
	VideoTitle *string  `json:"video_title,omitempty"`
	VideoID    *string  `json:"video_id,omitempty"`
	Duration   *float64 `json:"duration,omitempty"`
	Error      string   `json:"error,omitempty"`
	ErrorType  string   `json:"error_type,omitempty"`
}

// NewResult folds the outcome of Service.Fetch into a Result.
func NewResult(t *Transcript, err error) Result {
	switch {
	case err == nil && t != nil:
		return Result{
			Success:    true,
			Transcript: &t.Text,
			Language:   &t.Language,
			Format:     &t.Format,
			VideoTitle: &t.VideoTitle,
			VideoID:    &t.VideoID,
			Duration:   &t.Duration,
		}
	case err == nil, IsErrorType(err, ErrNoCaptionTrack):
		return Result{Success: true}
	default:
		msg := err.Error()
		if msg == "" {
			msg = "unknown error"
		}
		return FailureResult(TypeOf(err), msg)
	}
}

func FailureResult(errorType ErrorType, msg string) Result {
	return Result{
		Success:   false,
		Error:     msg,
		ErrorType: errorType.String(),
	}
}

// NoTranscript reports whether r is the "no captions available" outcome.
func (r Result) NoTranscript() bool {
	return r.Success && r.Transcript == nil
}

package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/MimeLyc/caption-transcript/pkg/log"
)

const DefaultCommand = "yt-dlp"

type Client struct {
	cmd     string
	timeout time.Duration
}

// NewClient wraps the yt-dlp binary at cmd. A zero timeout lets each call run
// until yt-dlp exits or ctx is cancelled.
func NewClient(cmd string, timeout time.Duration) *Client {
	if cmd == "" {
		cmd = DefaultCommand
	}
	return &Client{
		cmd:     cmd,
		timeout: timeout,
	}
}

var _ Extractor = (*Client)(nil)

// ExtractInfo fetches video metadata without downloading media.
func (c *Client) ExtractInfo(ctx context.Context, ref string, langs []string) (*Info, error) {
	output, err := c.run(ctx, c.infoArgs(ref, langs))
	if err != nil {
		return nil, err
	}

	output = bytes.TrimSpace(output)
	if len(output) == 0 || bytes.Equal(output, []byte("null")) {
		return nil, nil
	}

	var info Info
	if err := json.Unmarshal(output, &info); err != nil {
		log.Error("Failed to parse yt-dlp output: %v", err)
		return nil, fmt.Errorf("failed to parse yt-dlp metadata: %w", err)
	}
	return &info, nil
}

// DownloadSubtitle writes exactly the requested caption track into req.Dir.
func (c *Client) DownloadSubtitle(ctx context.Context, ref string, req DownloadRequest) error {
	_, err := c.run(ctx, c.downloadArgs(ref, req))
	return err
}

func (c *Client) run(ctx context.Context, args []string) ([]byte, error) {
	cmdPath, err := exec.LookPath(c.cmd)
	if err != nil {
		return nil, err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, cmdPath, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debug("Running %s %s", cmdPath, strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("yt-dlp: %w: %s", err, msg)
		}
		return nil, fmt.Errorf("yt-dlp: %w", err)
	}
	return stdout.Bytes(), nil
}

func (c *Client) infoArgs(ref string, langs []string) []string {
	return []string{
		"--dump-single-json",
		"--skip-download",
		"--no-warnings",
		"--no-playlist",
		"--sub-langs", strings.Join(langs, ","),
		"--", ref,
	}
}

func (c *Client) downloadArgs(ref string, req DownloadRequest) []string {
	args := []string{
		"--skip-download",
		"--no-warnings",
		"--quiet",
		"--no-playlist",
	}
	if req.Automatic {
		args = append(args, "--write-auto-subs")
	} else {
		args = append(args, "--write-subs")
	}
	args = append(args, "--sub-langs", req.Language)
	if req.Format != "" {
		args = append(args, "--sub-format", req.Format)
	}
	return append(args,
		"-o", filepath.Join(req.Dir, req.Stem+".%(ext)s"),
		"--", ref,
	)
}

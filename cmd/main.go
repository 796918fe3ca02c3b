// Command caption-transcript prints the plain-text transcript of an online
// video as one JSON line, using yt-dlp to list and download caption tracks.
//
//	caption-transcript https://www.youtube.com/watch?v=VIDEO_ID
//	caption-transcript serve
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/MimeLyc/caption-transcript/internal/config"
	"github.com/MimeLyc/caption-transcript/internal/persistence"
	"github.com/MimeLyc/caption-transcript/internal/transcript"
	"github.com/MimeLyc/caption-transcript/internal/ytdlp"
	"github.com/MimeLyc/caption-transcript/pkg/log"
)

const usage = "Usage: caption-transcript <video_url>"

var errUsage = errors.New(usage)

type transcriber interface {
	Get(ctx context.Context, ref string) transcript.Result
}

// app holds the seams the commands need so tests can swap them.
type app struct {
	stdout     io.Writer
	loadConfig func() (*config.Config, error)
	newService func(cfg *config.Config) (transcriber, *persistence.SQLiteStore, error)
	runServe   func(ctx context.Context, cfg *config.Config, svc transcriber, store *persistence.SQLiteStore) error
}

func defaultApp(stdout io.Writer) *app {
	return &app{
		stdout: stdout,
		loadConfig: func() (*config.Config, error) {
			return config.Load(nil)
		},
		newService: newService,
		runServe:   serve,
	}
}

func newService(cfg *config.Config) (transcriber, *persistence.SQLiteStore, error) {
	client := ytdlp.NewClient(cfg.Ytdlp.Path, cfg.Ytdlp.Timeout)
	if !cfg.Cache.Enabled() {
		return transcript.NewService(client, cfg.Transcript), nil, nil
	}

	store, err := persistence.NewSQLiteStore(cfg.Cache.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open transcript cache: %w", err)
	}
	return transcript.NewService(client, cfg.Transcript, transcript.WithCache(store, cfg.Cache.TTL)), store, nil
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "caption-transcript <video_url>",
		Short: "Print the caption transcript of a video as JSON",
		Long: "Print the caption transcript of a video as JSON.\n" +
			"A reference that is literally \"serve\" runs the HTTP server instead.",
		Args: cobra.ArbitraryArgs,
		// References may start with "-" (e.g. -dQw4w9WgXc); every argument,
		// --help included, must reach RunE so the output stays one JSON line.
		DisableFlagParsing: true,
		SilenceErrors:      true,
		SilenceUsage:       true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				a.print(transcript.FailureResult(transcript.ErrUsage, usage))
				return errUsage
			}
			return a.transcribe(cmd.Context(), args[0])
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetHelpCommand(&cobra.Command{Hidden: true})
	root.SetOut(a.stdout)
	root.AddCommand(a.serveCmd())
	return root
}

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve transcripts over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.setup()
			if err != nil {
				return err
			}
			svc, store, err := a.newService(cfg)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}
			return a.runServe(cmd.Context(), cfg, svc, store)
		},
	}
}

func (a *app) setup() (*config.Config, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	log.InitLogger(log.ParseLevel(cfg.Log.Level))
	return cfg, nil
}

func (a *app) transcribe(ctx context.Context, ref string) error {
	cfg, err := a.setup()
	if err != nil {
		a.print(transcript.FailureResult(transcript.ErrUnknown, err.Error()))
		return err
	}
	svc, store, err := a.newService(cfg)
	if err != nil {
		a.print(transcript.FailureResult(transcript.ErrUnknown, err.Error()))
		return err
	}
	if store != nil {
		defer store.Close()
	}

	res := svc.Get(ctx, ref)
	if res.NoTranscript() {
		log.Info("No caption track available for %s", ref)
	}
	a.print(res)
	return nil
}

func (a *app) print(res transcript.Result) {
	enc := json.NewEncoder(a.stdout)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(res); err != nil {
		log.Error("Failed to write result: %v", err)
	}
}

// run executes the CLI and returns the process exit code.
func (a *app) run(ctx context.Context, args []string) int {
	root := a.rootCmd()
	if args == nil {
		// cobra falls back to os.Args on a nil slice
		args = []string{}
	}
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errUsage) {
			log.Error("%v", err)
		}
		return 1
	}
	return 0
}

func main() {
	os.Exit(defaultApp(os.Stdout).run(context.Background(), os.Args[1:]))
}

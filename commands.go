package main

import (
	"context"
	"errors"
	"figview/internal/adapters/file"
	"figview/internal/adapters/generator"
	"figview/internal/adapters/recordinfo"
	"figview/internal/adapters/sender"
	"figview/internal/adapters/store"
	"figview/internal/adapters/tui"
	"figview/internal/adapters/watcher"
	"figview/internal/adapters/window"
	"figview/internal/core/domain"
	"figview/internal/core/domain/viewer"
	"figview/internal/core/port"
	"figview/internal/core/service"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newEndpoint() *generator.Endpoint {
	return generator.NewEndpoint(
		viper.GetString("endpoint.url"),
		viper.GetString("endpoint.api_key"),
		viper.GetDuration("endpoint.timeout"))
}

// newQuota needs a record service only for identified users; anonymous use is untracked.
func newQuota(userID string) (*service.UsageQuota, error) {
	recordURL := viper.GetString("quota.record_url")
	if recordURL == "" && userID != "" {
		return nil, errors.New("quota.record_url is not configured")
	}

	lookup := recordinfo.NewPocketBase(recordURL, viper.GetString("quota.collection"), 10*time.Second)
	kv := store.NewYAMLStore(viper.GetString("quota.store_path"))

	return service.NewUsageQuota(kv, lookup), nil
}

// newSharer returns nil when no bot token is configured.
func newSharer() (port.ImageSharer, error) {
	token := viper.GetString("telegram.bot_token")
	if token == "" {
		return nil, nil
	}

	b, err := bot.New(token, bot.WithSkipGetMe())
	if err != nil {
		return nil, fmt.Errorf("failed initializing telegram bot: %w", err)
	}

	return sender.NewTelegramSharer(b, viper.GetInt64("telegram.share_chat_id")), nil
}

func viewerConfig(ctx context.Context, source, title string) window.Config {
	return window.Config{
		Context:  ctx,
		Source:   source,
		Title:    title,
		Width:    viper.GetInt("viewer.width"),
		Height:   viper.GetInt("viewer.height"),
		FitDelay: viper.GetDuration("viewer.fit_delay"),
		Saver:    file.NewSaver(viper.GetString("viewer.download_dir")),
	}
}

func newGenerateCommand() *cobra.Command {
	var (
		prompt string
		view   bool
		title  string
	)

	cmd := &cobra.Command{
		Use:   "generate <image path or URL>",
		Short: "Submit a photo and show the generated figure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			userID := viper.GetString("endpoint.api_key")

			submission, err := file.ReadUpload(ctx, args[0], prompt, userID)
			if err != nil {
				return err
			}

			quota, err := newQuota(userID)
			if err != nil {
				return err
			}

			sharer, err := newSharer()
			if err != nil {
				return err
			}

			processor := service.NewProcessor(newEndpoint(), quota, sharer, viper.GetDuration("endpoint.timeout"))

			var result service.Result
			err = tui.Run(ctx, cmd.ErrOrStderr(), "generating figure...", func(ctx context.Context) error {
				var err error
				result, err = processor.Process(ctx, submission)
				return err
			})
			if err != nil {
				return err
			}

			if !result.Image.IsImage() {
				fmt.Fprintln(cmd.OutOrStdout(), result.Image.Text)
				fmt.Fprintln(cmd.OutOrStdout(), tui.RenderQuota(result.Quota))
				return nil
			}

			if title == "" {
				title = strings.TrimSuffix(submission.Filename, filepath.Ext(submission.Filename)) + "_figure"
			}

			return presentResult(cmd, result, title, view)
		},
	}

	cmd.Flags().StringVarP(&prompt, "prompt", "p", domain.DefaultPrompt, "prompt sent with the image")
	cmd.Flags().BoolVar(&view, "view", true, "open the result in the viewer")
	cmd.Flags().StringVar(&title, "title", "", "title used for the viewer and downloads")

	return cmd
}

// presentResult stores the image in a temp file, opens or saves it and always removes the
// temp file afterwards. The viewer never deletes what it shows.
func presentResult(cmd *cobra.Command, result service.Result, title string, view bool) error {
	tmp, err := file.SaveTempFile(result.Image.Data, result.Image.Extension())
	if err != nil {
		return err
	}
	defer file.RemoveTempFile(tmp)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, tui.RenderQuota(result.Quota))

	if view {
		return window.Run(viewerConfig(cmd.Context(), tmp, title))
	}

	saver := file.NewSaver(viper.GetString("viewer.download_dir"))
	path, err := saver.SaveAs(cmd.Context(), tmp, viewer.DownloadFilename(title, tmp, time.Now()))
	if err != nil {
		return err
	}

	fmt.Fprintln(out, tui.RenderResult(path))

	return nil
}

func newViewCommand() *cobra.Command {
	var (
		watch bool
		title string
	)

	cmd := &cobra.Command{
		Use:   "view <image>",
		Short: "Open an image in the zoom and pan viewer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := args[0]
			if _, err := os.Stat(source); err != nil {
				return err
			}

			if title == "" {
				title = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
			}

			cfg := viewerConfig(cmd.Context(), source, title)

			if watch {
				w, err := watcher.New(source, watcher.DefaultDebounce)
				if err != nil {
					return err
				}
				defer w.Close()

				ctx, cancel := context.WithCancel(cmd.Context())
				defer cancel()
				go w.Run(ctx)

				cfg.Reloads = w.Changes()
			}

			return window.Run(cfg)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload the viewer when the file changes")
	cmd.Flags().StringVar(&title, "title", "", "window title and download name")

	return cmd
}

func newQuotaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "quota",
		Short: "Show today's usage for the configured user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID := viper.GetString("endpoint.api_key")

			quota, err := newQuota(userID)
			if err != nil {
				return err
			}

			status, err := quota.Status(cmd.Context(), userID)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), tui.RenderQuota(status))

			return nil
		},
	}
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the image-processing service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var endpoint port.EndpointInspector = newEndpoint()
			out := cmd.OutOrStdout()

			if err := endpoint.Health(cmd.Context()); err != nil {
				fmt.Fprintln(out, tui.RenderError(err))
				return err
			}

			models, err := endpoint.Models(cmd.Context())
			if err != nil {
				return err
			}

			log.Debug().Strs("models", models.Supported).Msg("endpoint models")

			fmt.Fprintf(out, "service ok at %s\ncurrent model: %s\n", viper.GetString("endpoint.url"), models.Current)
			for _, m := range models.Supported {
				fmt.Fprintf(out, "  - %s\n", m)
			}
			if models.Note != "" {
				fmt.Fprintln(out, models.Note)
			}

			return nil
		},
	}
}

package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/farmease/farmease-ai/internal/assistant"
	"github.com/farmease/farmease-ai/internal/config"
	"github.com/farmease/farmease-ai/internal/device"
	"github.com/farmease/farmease-ai/internal/mockreply"
	"github.com/farmease/farmease-ai/internal/transport"
	"github.com/farmease/farmease-ai/internal/voice"
)

type options struct {
	backend  string
	platform string
	debug    bool
	cfg      *config.ClientConfig
}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "farmchat",
		Short: "FarmEase AI - agriculture assistant in the terminal",
		Long: `farmchat talks to the FarmEase AI backend. Ask about crops, diseases,
fertilizers, irrigation and government schemes by text or with a recorded clip.
When the backend cannot be reached, answers come from the offline catalog.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInteractive(cmd, opts, "")
		},
	}

	rootCmd.AddCommand(newChatCmd(opts))
	rootCmd.AddCommand(newAskCmd(opts))
	rootCmd.AddCommand(newVoiceCmd(opts))
	rootCmd.AddCommand(newSpeakCmd(opts))
	rootCmd.AddCommand(newHealthCmd(opts))

	rootCmd.PersistentFlags().StringVar(&opts.backend, "backend", "", "Backend root URL (overrides FARMEASE_BACKEND_URL)")
	rootCmd.PersistentFlags().StringVar(&opts.platform, "platform", "", "Platform: android, ios or web")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	return rootCmd
}

var newDebugLogger = func() (*zap.Logger, error) { return zap.NewDevelopment() }

func (o *options) load() error {
	_ = godotenv.Load()

	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}
	if o.platform != "" {
		cfg.Platform = o.platform
	}
	if o.backend != "" {
		cfg.BackendURL = o.backend
	}
	o.cfg = cfg

	if o.debug {
		zlogger, err := newDebugLogger()
		if err != nil {
			return fmt.Errorf("debug logger: %w", err)
		}
		zap.ReplaceGlobals(zlogger)
	}
	return nil
}

func (o *options) baseURL() string {
	if o.cfg.BackendURL != "" {
		return o.cfg.BackendURL
	}
	return transport.ResolveBaseURL(o.cfg.DevHost, transport.Platform(o.cfg.Platform))
}

func (o *options) client() *transport.Client {
	return transport.New(o.baseURL(), mockreply.Offline(), transport.WithChatTimeout(o.cfg.ChatTimeout))
}

func (o *options) session(client *transport.Client, audioFile string, autoSpeak bool) *assistant.Session {
	caps := device.Select(transport.Platform(o.cfg.Platform), device.Options{
		AudioFile:   audioFile,
		Synthesizer: client,
		Sink:        device.FileSink(o.cfg.AudioDir, o.cfg.AudioPlayer),
		Out:         os.Stdout,
	})
	return assistant.NewSession(client, caps, client,
		assistant.WithAutoSpeak(autoSpeak),
		assistant.WithVoiceOptions(voice.WithVoice(o.cfg.Language, voice.DefaultRate)),
	)
}

func newChatCmd(opts *options) *cobra.Command {
	var audioFile string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInteractive(cmd, opts, audioFile)
		},
	}
	cmd.Flags().StringVar(&audioFile, "audio", "", "Audio clip used by the /mic command")
	return cmd
}

func newAskCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ask [QUESTION]",
		Short: "Ask a single question",
		Long: `Ask a single question and print the reply.
Example: farmchat ask "How to grow rice?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			resp := opts.client().SendMessage(cmd.Context(), question, nil)
			fmt.Fprintln(cmd.OutOrStdout(), renderReply(resp.Reply, resp.Mock))
			return nil
		},
	}
}

func newVoiceCmd(opts *options) *cobra.Command {
	var (
		audioFile string
		speak     bool
	)
	cmd := &cobra.Command{
		Use:   "voice",
		Short: "Transcribe a recorded clip and ask it as a question",
		Long: `Transcribe a recorded clip and ask the transcript as a question.
Example: farmchat voice --audio recording.m4a --speak`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if audioFile == "" {
				return fmt.Errorf("--audio is required")
			}
			client := opts.client()
			sess := opts.session(client, audioFile, speak)
			defer sess.Close(context.Background())

			if err := askByVoice(cmd, sess); err != nil {
				return err
			}
			waitForSpeech(cmd.Context(), sess)
			return nil
		},
	}
	cmd.Flags().StringVar(&audioFile, "audio", "", "Audio clip to transcribe")
	cmd.Flags().BoolVar(&speak, "speak", false, "Read the reply aloud")
	return cmd
}

func newSpeakCmd(opts *options) *cobra.Command {
	var (
		out      string
		language string
	)
	cmd := &cobra.Command{
		Use:   "speak [TEXT]",
		Short: "Synthesize text with the backend voice",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if language == "" {
				language = opts.cfg.Language
			}
			audio, err := opts.client().Speak(cmd.Context(), strings.Join(args, " "), language)
			if err != nil {
				return err
			}
			if out != "" {
				if err := os.WriteFile(out, audio, 0o644); err != nil {
					return fmt.Errorf("write audio: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), noteStyle.Render(fmt.Sprintf("wrote %d bytes to %s", len(audio), out)))
				return nil
			}
			return device.FileSink(opts.cfg.AudioDir, opts.cfg.AudioPlayer)(cmd.Context(), audio)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write audio to this file instead of playing it")
	cmd.Flags().StringVar(&language, "language", "", "Voice language")
	return cmd
}

func newHealthCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check whether the backend is reachable",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := opts.client()
			if !client.CheckHealth(cmd.Context()) {
				fmt.Fprintln(cmd.OutOrStdout(), errorStyle.Render("backend unreachable at "+client.BaseURL()))
				return fmt.Errorf("backend unreachable")
			}
			fmt.Fprintln(cmd.OutOrStdout(), statusStyle.Render("backend ok at "+client.BaseURL()))
			return nil
		},
	}
}

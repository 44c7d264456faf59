package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "ytone [url]",
		Short:        "Transcribe a YouTube video and analyze its emotional tone",
		Long:         "ytone downloads the audio track of a YouTube video, transcribes it with Whisper and optionally classifies the speaker's emotional tone over time.\n\nWith a url argument it processes that one video and exits; without arguments it starts an interactive prompt.",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			url := ""
			if len(args) == 1 {
				url = args[0]
			}
			return run(cmd, url)
		},
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	// Visible flags
	root.Flags().Bool("analyze", false, "Run emotion analysis after transcription")
	root.Flags().String("model", "", "Whisper model size (tiny, base, small, medium, large)")
	root.Flags().String("language", "", "Spoken language hint, e.g. en")
	root.Flags().String("out", "", "Output directory")
	root.Flags().String("work", "", "Working directory for the temporary audio download")
	root.Flags().String("config", "", "Config file path")

	// Hidden tuning flag (internal)
	root.Flags().Float64("window", 0, "Analysis window seconds")
	_ = root.Flags().MarkHidden("window")

	return root
}

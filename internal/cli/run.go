package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/forPelevin/ytone/internal/config"
	"github.com/forPelevin/ytone/internal/logging"
	"github.com/forPelevin/ytone/internal/pipeline"
	"github.com/forPelevin/ytone/internal/types"
	"github.com/forPelevin/ytone/internal/usecase"
)

func run(cmd *cobra.Command, url string) error {
	cfgPath, _ := cmd.Flags().GetString("config")
	c, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	applyFlagOverrides(cmd, &c)

	if c.OpenAIAPIKey == "" {
		c.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	}

	log, logPath, err := logging.New(c.LogDir, c.LogLevel)
	if err != nil {
		return err
	}
	log.Infof("log file: %s", logPath)

	pipeline.SweepStaleAudio(c.WorkDir, c.StaleAudioMaxAge, log)

	if url != "" {
		analyze, _ := cmd.Flags().GetBool("analyze")
		return runOne(cmd, c, log, url, analyze)
	}
	return interact(cmd, c, log)
}

func applyFlagOverrides(cmd *cobra.Command, c *config.Config) {
	f := cmd.Flags()
	if f.Changed("model") {
		c.Model, _ = f.GetString("model")
	}
	if f.Changed("language") {
		c.Language, _ = f.GetString("language")
	}
	if f.Changed("out") {
		c.OutputDir, _ = f.GetString("out")
	}
	if f.Changed("work") {
		c.WorkDir, _ = f.GetString("work")
	}
	if f.Changed("window") {
		c.WindowSeconds, _ = f.GetFloat64("window")
	}
}

// interact prompts for urls until the user quits. A failed video does not
// end the session.
func interact(cmd *cobra.Command, c config.Config, log *logrus.Logger) error {
	in := bufio.NewScanner(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "ytone: YouTube transcription and tone analysis")
	for {
		fmt.Fprint(out, "YouTube URL (q to quit): ")
		if !in.Scan() {
			return in.Err()
		}
		url := strings.TrimSpace(in.Text())
		if url == "" {
			continue
		}
		if strings.EqualFold(url, "q") || strings.EqualFold(url, "quit") {
			fmt.Fprintln(out, "Bye.")
			return nil
		}

		analyze, err := askYesNo(in, out, "Run emotion analysis? [y/N]: ")
		if err != nil {
			return err
		}
		if err := runOne(cmd, c, log, url, analyze); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
		}
	}
}

func askYesNo(in *bufio.Scanner, out io.Writer, prompt string) (bool, error) {
	fmt.Fprint(out, prompt)
	if !in.Scan() {
		return false, in.Err()
	}
	switch strings.ToLower(strings.TrimSpace(in.Text())) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func runOne(cmd *cobra.Command, c config.Config, log *logrus.Logger, url string, analyze bool) error {
	model, err := types.ParseModelSize(c.Model)
	if err != nil {
		return err
	}

	cfg := pipeline.Config{
		URL:     url,
		Analyze: analyze,

		WorkDir:   c.WorkDir,
		OutputDir: c.OutputDir,

		Engine:   c.Engine,
		Model:    model,
		Language: c.Language,

		YtdlpPath:       c.YtdlpPath,
		WhisperBin:      c.WhisperBin,
		WhisperModelDir: c.WhisperModelDir,
		OpenAIAPIKey:    c.OpenAIAPIKey,

		FetchRetries:     c.FetchRetries,
		FetchBackoffBase: c.FetchBackoff,

		Tuning: c.Tuning(),
		Logger: log,
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	res, err := pipeline.Run(context.Background(), cfg)
	if err != nil {
		return err
	}
	printSummary(cmd.OutOrStdout(), res)
	return nil
}

func printSummary(w io.Writer, res usecase.Result) {
	fmt.Fprintln(w)
	if res.InfoKnown {
		fmt.Fprintf(w, "Video:      %s (%s, %s)\n", res.Info.Title, res.Info.Uploader, res.Info.Duration.Round(time.Second))
	}
	fmt.Fprintf(w, "Transcript: %s\n", res.TranscriptPath)
	fmt.Fprintf(w, "Words:      %d (%d chars", res.WordCount, res.CharCount)
	if res.Language != "" {
		fmt.Fprintf(w, ", language %s", res.Language)
	}
	fmt.Fprintln(w, ")")

	if res.Analyzed {
		r := res.Report
		fmt.Fprintf(w, "Mood:       %s (confidence %.2f)\n", r.OverallMood, r.ConfidenceScore)
		fmt.Fprintf(w, "Tone:       %.0f Hz avg pitch, %.3f avg energy, %.0f wpm, %.0f%% pauses\n",
			r.ToneAnalysis.AvgPitchHz, r.ToneAnalysis.AvgEnergy, r.ToneAnalysis.SpeakingRateWPM, 100*r.ToneAnalysis.PauseFrequency)
		fmt.Fprintf(w, "Emotions:   %s\n", formatDistribution(r.Distribution))
		fmt.Fprintf(w, "Report:     %s\n", res.ReportPath)
		fmt.Fprintf(w, "Chart:      %s\n", res.ChartPath)
	}

	var total time.Duration
	for _, st := range res.Timings {
		total += st.Elapsed
	}
	fmt.Fprintf(w, "Took:       %s\n", total.Round(10*time.Millisecond))
}

func formatDistribution(dist map[types.Emotion]types.DistributionEntry) string {
	type item struct {
		label types.Emotion
		entry types.DistributionEntry
	}
	items := make([]item, 0, len(dist))
	for l, e := range dist {
		items = append(items, item{l, e})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].entry.SegmentCount != items[j].entry.SegmentCount {
			return items[i].entry.SegmentCount > items[j].entry.SegmentCount
		}
		return items[i].label < items[j].label
	})
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = fmt.Sprintf("%s %.0f%%", it.label, it.entry.Percentage)
	}
	return strings.Join(parts, ", ")
}

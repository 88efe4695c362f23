package summarizer

import (
	"fmt"
	"strings"
	"time"

	"github.com/user/ainspire/pkg/pipeline"
)

// MarkdownOption configures the Markdown formatter.
type MarkdownOption func(*markdownFormatter)

// WithTranslator translates headings and labels.
func WithTranslator(t func(key string) string) MarkdownOption {
	return func(f *markdownFormatter) {
		f.t = t
	}
}

type markdownFormatter struct {
	t func(key string) string
}

// NewMarkdownFormatter creates a Formatter producing a Markdown report.
func NewMarkdownFormatter(opts ...MarkdownOption) Formatter {
	f := &markdownFormatter{t: func(key string) string { return key }}
	for _, opt := range opts {
		opt(f)
	}
	return FormatFunc(f.format)
}

func (f *markdownFormatter) format(s *Summary) string {
	var b strings.Builder
	t := f.t

	fmt.Fprintf(&b, "# %s\n\n", t("Extraction Summary"))
	fmt.Fprintf(&b, "%s: %s\n\n", t("Generated"), s.GeneratedAt.Format(time.RFC3339))

	fmt.Fprintf(&b, "## %s\n\n", t("Settings"))
	fmt.Fprintf(&b, "| %s | %s |\n|---|---|\n", t("Setting"), t("Value"))
	fmt.Fprintf(&b, "| %s | %s |\n", t("Capture interval"), formatSeconds(s.Settings.IntervalSeconds))
	fmt.Fprintf(&b, "| %s | %d |\n", t("JPEG quality"), s.Settings.JPEGQuality)
	if s.Settings.MaxFrameWidth > 0 {
		fmt.Fprintf(&b, "| %s | %d px |\n", t("Max frame width"), s.Settings.MaxFrameWidth)
	} else {
		fmt.Fprintf(&b, "| %s | %s |\n", t("Max frame width"), t("native"))
	}
	if s.Settings.Model != "" {
		fmt.Fprintf(&b, "| %s | %s |\n", t("Model"), s.Settings.Model)
	}
	if s.Settings.Language != "" {
		fmt.Fprintf(&b, "| %s | %s |\n", t("Language"), s.Settings.Language)
	}
	if s.Duration > 0 {
		fmt.Fprintf(&b, "| %s | %s |\n", t("Duration"), s.Duration.Round(time.Millisecond))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## %s\n\n", t("Videos"))
	if len(s.Videos) == 0 {
		fmt.Fprintf(&b, "%s\n\n", t("No videos were processed."))
	} else {
		fmt.Fprintf(&b, "| %s | %s |\n|---|---:|\n", t("Video"), t("Frames"))
		for _, v := range s.Videos {
			fmt.Fprintf(&b, "| %s | %d |\n", escape(v.Name), v.Frames)
		}
		fmt.Fprintf(&b, "| **%s** | **%d** |\n\n", t("Total"), s.TotalFrames())
	}

	fmt.Fprintf(&b, "## %s\n\n", t("Classification"))
	fmt.Fprintf(&b, "| %s | %s |\n|---|---:|\n", t("Outcome"), t("Jobs"))
	for _, row := range []struct {
		key string
		n   int
	}{
		{"Classified", s.Jobs.Classified},
		{"Declined", s.Jobs.Declined},
		{"Skipped", s.Jobs.Skipped},
		{"Failed", s.Jobs.Failed},
		{"Drained", s.Jobs.Drained},
	} {
		fmt.Fprintf(&b, "| %s | %d |\n", t(row.key), row.n)
	}
	b.WriteString("\n")
	if s.LastError != "" {
		fmt.Fprintf(&b, "> **%s:** %s\n\n", t("Last error"), s.LastError)
	}

	if len(s.Labels) > 0 {
		fmt.Fprintf(&b, "## %s\n\n", t("Labels"))
		for _, cat := range pipeline.Categories {
			buckets, ok := s.Labels[cat]
			if !ok {
				continue
			}
			name := string(cat)
			fmt.Fprintf(&b, "### %s\n\n", t(strings.ToUpper(name[:1])+name[1:]))
			for _, lc := range buckets {
				fmt.Fprintf(&b, "- %s (%d)\n", escape(lc.Label), lc.Count)
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

func formatSeconds(s float64) string {
	if s == float64(int64(s)) {
		return fmt.Sprintf("%d s", int64(s))
	}
	return fmt.Sprintf("%.2f s", s)
}

// escape keeps user-supplied names from breaking table rows.
func escape(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

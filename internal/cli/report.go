package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/niklvrr/reviewpulse/internal/domain"
	"github.com/niklvrr/reviewpulse/internal/infrastructure/slack"
	"github.com/niklvrr/reviewpulse/internal/render"
	"github.com/niklvrr/reviewpulse/internal/transport/dto/response"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Форматы вывода отчетов и метрик
const (
	formatTerminal = "terminal"
	formatText     = "text"
	formatJSON     = "json"
	formatHTML     = "html"
)

var reportCmd = &cobra.Command{
	Use:   "report <name>",
	Short: "Generate a configured report",
	Long: `Generate a report declared in the reports file and print it or post it to Slack.

Revision reports with since_last_run: true read the last run timestamp from
the configured store (LAST_RUN_DRIVER) and update it once the report has been
printed or posted.

Examples:
  reviewpulse report team-review                    # Colored terminal output
  reviewpulse report team-review --format text      # Markdown
  reviewpulse report team-review --slack            # Post to the report's channel
  reviewpulse report upcoming --slack --channel #qa # Override the channel`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

var (
	reportFormat  string
	reportSlack   bool
	reportChannel string
)

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", formatTerminal, "Output format (terminal|text|json|html)")
	reportCmd.Flags().BoolVar(&reportSlack, "slack", false, "Post the report to Slack instead of printing it")
	reportCmd.Flags().StringVar(&reportChannel, "channel", "", "Slack channel override")
}

func runReport(cmd *cobra.Command, args []string) error {
	if err := checkFormat(reportFormat, formatTerminal, formatText, formatJSON, formatHTML); err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	svc := a.reportService()
	def, err := svc.Definition(args[0])
	if err != nil {
		return err
	}

	report, err := svc.Generate(ctx, def.Name)
	if err != nil {
		return err
	}

	deliver := func() error {
		return writeReport(cmd.OutOrStdout(), report, reportFormat)
	}
	if reportSlack {
		deliver = func() error {
			sender, err := slack.NewSender(a.cfg.Slack.WebhookURL, a.log)
			if err != nil {
				return err
			}
			opts := slackOptions(def, a.settings, reportChannel)
			if err := sender.Send(ctx, render.SlackMessage(report, opts)); err != nil {
				return err
			}
			a.log.Info("report posted to slack",
				zap.String("report", def.Name),
				zap.String("channel", opts.Channel),
			)
			return nil
		}
	}

	return deliverReport(ctx, svc, report, deliver)
}

type reportCommitter interface {
	Commit(ctx context.Context, report *domain.Report) error
}

// deliverReport время запуска сохраняется только после успешной доставки
func deliverReport(ctx context.Context, svc reportCommitter, report *domain.Report, deliver func() error) error {
	if err := deliver(); err != nil {
		return err
	}
	return svc.Commit(ctx, report)
}

// slackOptions параметры отчета поверх общих настроек; флаг --channel важнее всего
func slackOptions(def domain.ReportDefinition, settings domain.Settings, channel string) render.SlackOptions {
	opts := render.SlackOptions{
		Channel:  def.SlackChannel,
		Username: def.SlackUsername,
		Emoji:    def.SlackEmoji,
	}
	if channel != "" {
		opts.Channel = channel
	}
	if opts.Username == "" {
		opts.Username = settings.SlackUsername
	}
	if opts.Emoji == "" {
		opts.Emoji = settings.SlackEmoji
	}
	return opts
}

func writeReport(w io.Writer, report *domain.Report, format string) error {
	switch format {
	case formatText:
		_, err := io.WriteString(w, render.Text(report))
		return err
	case formatJSON:
		return writeIndentedJSON(w, response.NewReportResponse(report))
	case formatHTML:
		return render.HTML(w, report)
	default:
		return render.Terminal(w, report)
	}
}

func writeIndentedJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func checkFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return fmt.Errorf("unsupported format %q (want one of %v)", format, allowed)
}

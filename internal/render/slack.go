package render

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/niklvrr/reviewpulse/internal/domain"
	"github.com/niklvrr/reviewpulse/internal/infrastructure/slack"
)

var (
	reviewPresentMessages = []string{
		"Let's review some diffs!",
		"It's code review time!",
	}
	reviewAbsentMessages = []string{
		"It's code review time... and all the diffs have already been reviewed :tada:. Let's write more code!",
		"There are no pending code reviews. Enjoy the extra time! :sunglasses:",
	}
)

// SlackOptions параметры доставки; Pick выбирает приветствие, по умолчанию случайно
type SlackOptions struct {
	Channel  string
	Username string
	Emoji    string
	Pick     func(n int) int
}

// SlackMessage собирает сообщение вебхука из отчета
func SlackMessage(report *domain.Report, opts SlackOptions) slack.Message {
	msg := slack.Message{
		Channel:   opts.Channel,
		Username:  opts.Username,
		IconEmoji: opts.Emoji,
	}

	switch {
	case report.Kind.IsRevisionKind():
		msg.Text = revisionGreeting(report, opts.Pick)
	case report.Kind == domain.ReportKindRecentTasks:
		// таблица шире вложения, отправляем ее блоком кода без вложений
		msg.Text = fmt.Sprintf("```\n%s\n```", RecentTasksTable(report))
		msg.Text = withWebLink(msg.Text, report.WebURL)
		return msg
	default:
		msg.Text = taskHeading(report)
	}

	for _, section := range report.Sections {
		msg.Attachments = append(msg.Attachments, slack.Attachment{
			Pretext:  sectionPretext(section),
			Text:     strings.Join(sectionLines(section), "\n"),
			Color:    section.Color,
			MrkdwnIn: []string{"pretext", "text"},
		})
	}

	msg.Text = withWebLink(msg.Text, report.WebURL)
	return msg
}

func revisionGreeting(report *domain.Report, pick func(int) int) string {
	if pick == nil {
		pick = rand.IntN
	}
	if report.IsEmpty() {
		return fmt.Sprintf("Greetings Team!\n\n%s", reviewAbsentMessages[pick(len(reviewAbsentMessages))])
	}
	return fmt.Sprintf("<!here> Greetings Team!\n\n%s", reviewPresentMessages[pick(len(reviewPresentMessages))])
}

func taskHeading(report *domain.Report) string {
	text := fmt.Sprintf("*%s*", report.Title)
	if report.Timeline != "" {
		text = fmt.Sprintf("%s _(%s)_", text, report.Timeline)
	}
	if report.IsEmpty() && report.EmptyNote != "" {
		text = fmt.Sprintf("%s\n_%s_", text, report.EmptyNote)
	}
	return text
}

func sectionPretext(section domain.Section) string {
	pretext := fmt.Sprintf("*%s*:", section.Label)
	if section.Icon != "" {
		pretext = section.Icon + " " + pretext
	}
	if section.Order != domain.OrderAsIs {
		pretext = fmt.Sprintf("%s _(%s)_", pretext, section.Order)
	}
	return pretext
}

// sectionLines нумерованные строки секции в разметке slack
func sectionLines(section domain.Section) []string {
	var lines []string
	for i, entry := range section.Revisions {
		lines = append(lines, fmt.Sprintf("%d. %s - `%s` - _%s_ by %s",
			i+1,
			slackLink(entry.URL, entry.Revision.RevisionId()),
			slackLink(entry.RepoURL, entry.RepoSlug),
			entry.ShortTitle(),
			slackPerson(entry.Author),
		))
		if reviewers := reviewersLine(entry, slackPerson); reviewers != "" {
			lines = append(lines, "    "+reviewers)
		}
	}
	for i, entry := range section.Tasks {
		lines = append(lines, fmt.Sprintf("%d. %s  - _%s_", i+1, slackLink(entry.URL, entry.Task.TaskId()), entry.Task.Name))
	}
	return lines
}

func reviewersLine(entry domain.RevisionEntry, person func(domain.PersonRef) string) string {
	var parts []string
	if len(entry.Acceptors) > 0 {
		parts = append(parts, ":heavy_check_mark: "+joinPeople(entry.Acceptors, person))
	}
	if len(entry.Blockers) > 0 {
		parts = append(parts, ":no_entry_sign: "+joinPeople(entry.Blockers, person))
	}
	return strings.Join(parts, "; ")
}

func joinPeople(people []domain.PersonRef, person func(domain.PersonRef) string) string {
	formatted := make([]string, 0, len(people))
	for _, p := range people {
		formatted = append(formatted, person(p))
	}
	return strings.Join(formatted, ", ")
}

func slackLink(url, label string) string {
	if url == "" {
		return label
	}
	return fmt.Sprintf("<%s|%s>", url, label)
}

func slackPerson(p domain.PersonRef) string {
	return "*" + slackLink(p.ProfileURL, p.Name) + "*"
}

func withWebLink(text, webURL string) string {
	if webURL == "" {
		return text
	}
	return fmt.Sprintf("%s\n<%s|View in web>", text, webURL)
}

package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/m3rciful/typekeeper/core/logger"
	"github.com/m3rciful/typekeeper/core/telegram/format"
	"github.com/m3rciful/typekeeper/internal/domain"
)

const buttonLabelRunes = 24

func weekdayButtons() [][]Button {
	rows := make([][]Button, 0, len(domain.Weekdays)+1)
	for _, day := range domain.Weekdays {
		rows = append(rows, []Button{{Text: domain.TitleWeekday(day), Action: ActionDay, Payload: day}})
	}
	return append(rows, cancelRow())
}

func cancelRow() []Button {
	return []Button{{Text: labelCancelInline, Action: ActionCancel}}
}

func fieldButtons(fields []Field) [][]Button {
	rows := make([][]Button, 0, len(fields)+1)
	for _, f := range fields {
		rows = append(rows, []Button{{Text: fieldLabels[f], Action: ActionField, Payload: string(f)}})
	}
	return append(rows, cancelRow())
}

type scheduleItem struct {
	entry domain.ScheduleEntry
	start int
}

// groupSchedule buckets entries by weekday in calendar order, each sorted by start time.
// Entries with an unknown day are dropped and logged.
func groupSchedule(ctx context.Context, userID int64, entries []domain.ScheduleEntry) [][]scheduleItem {
	groups := make([][]scheduleItem, len(domain.Weekdays))
	for _, e := range entries {
		idx := domain.WeekdayIndex(e.Day)
		if idx < 0 {
			logger.Warn(ctx, "conversation", "render.skip",
				slog.Int64("user_id", userID),
				slog.String("entry_id", e.ID),
				slog.String("kind", "schedule"),
			)
			continue
		}
		start, err := e.StartMinutes()
		if err != nil {
			start = 24 * 60
		}
		groups[idx] = append(groups[idx], scheduleItem{entry: e, start: start})
	}
	for _, g := range groups {
		sort.SliceStable(g, func(i, j int) bool {
			if g[i].start != g[j].start {
				return g[i].start < g[j].start
			}
			return g[i].entry.Time < g[j].entry.Time
		})
	}
	return groups
}

func renderSchedule(ctx context.Context, userID int64, entries []domain.ScheduleEntry) Reply {
	if len(entries) == 0 {
		return send(textScheduleEmpty, KeyboardMain)
	}
	var b strings.Builder
	b.WriteString("📅 *Ваше расписание:*\n\n")
	var rows [][]Button
	for i, group := range groupSchedule(ctx, userID, entries) {
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(&b, "*%s:*\n", domain.TitleWeekday(domain.Weekdays[i]))
		for n, it := range group {
			e := it.entry
			fmt.Fprintf(&b, "%d. %s (%s)", n+1, format.EscapeMarkdown(orUntitled(e.ClassName)), format.EscapeMarkdown(e.Time))
			if e.Professor != "" {
				fmt.Fprintf(&b, " - %s", format.EscapeMarkdown(e.Professor))
			}
			fmt.Fprintf(&b, " ⏰ %d мин.\n", e.ReminderBefore)
			label := format.Truncate(shortDay(e.Day)+" "+orUntitled(e.ClassName), buttonLabelRunes)
			rows = append(rows, []Button{
				{Text: "✏️ " + label, Action: ActionEditSchedule, Payload: e.ID},
				{Text: "🗑️ " + label, Action: ActionDeleteSchedule, Payload: e.ID},
			})
		}
		b.WriteString("\n")
	}
	return sendButtons(strings.TrimRight(b.String(), "\n"), true, rows)
}

type deadlineItem struct {
	entry domain.DeadlineEntry
	due   time.Time
}

// sortDeadlines orders parseable deadlines by due time and drops the rest with a log line.
func sortDeadlines(ctx context.Context, userID int64, entries []domain.DeadlineEntry) []deadlineItem {
	items := make([]deadlineItem, 0, len(entries))
	for _, e := range entries {
		due, err := e.Due(time.UTC)
		if err != nil {
			logger.Warn(ctx, "conversation", "render.skip",
				slog.Int64("user_id", userID),
				slog.String("entry_id", e.ID),
				slog.String("kind", "deadline"),
				logger.Err(err),
			)
			continue
		}
		items = append(items, deadlineItem{entry: e, due: due})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].due.Before(items[j].due) })
	return items
}

func renderDeadlines(ctx context.Context, userID int64, entries []domain.DeadlineEntry) Reply {
	if len(entries) == 0 {
		return send(textDeadlinesEmpty, KeyboardMain)
	}
	items := sortDeadlines(ctx, userID, entries)
	if len(items) == 0 {
		return send(textNoValidDeadlines, KeyboardMain)
	}
	var b strings.Builder
	b.WriteString("📝 *Ваши дедлайны:*\n\n")
	rows := make([][]Button, 0, len(items))
	for n, it := range items {
		e := it.entry
		fmt.Fprintf(&b, "%d. %s\n", n+1, format.Bold(orUntitled(e.Name)))
		fmt.Fprintf(&b, "   📅 До: %s\n", it.due.Format(domain.DisplayDateTimeLayout))
		if e.Description != "" {
			fmt.Fprintf(&b, "   📄 %s\n", format.EscapeMarkdown(e.Description))
		}
		fmt.Fprintf(&b, "   ⏰ Напоминание за %d мин.\n\n", e.ReminderBefore)
		label := format.Truncate(orUntitled(e.Name), buttonLabelRunes)
		rows = append(rows, []Button{
			{Text: "✏️ " + label, Action: ActionEditDeadline, Payload: e.ID},
			{Text: "🗑️ " + label, Action: ActionDeleteDeadline, Payload: e.ID},
		})
	}
	return sendButtons(strings.TrimRight(b.String(), "\n"), true, rows)
}

func schedulePicker(ctx context.Context, userID int64, entries []domain.ScheduleEntry) [][]Button {
	var rows [][]Button
	for _, group := range groupSchedule(ctx, userID, entries) {
		for _, it := range group {
			e := it.entry
			label := format.Truncate(fmt.Sprintf("%s %s %s", shortDay(e.Day), e.Time, orUntitled(e.ClassName)), 2*buttonLabelRunes)
			rows = append(rows, []Button{{Text: label, Action: ActionEditSchedule, Payload: e.ID}})
		}
	}
	return append(rows, cancelRow())
}

func deadlinePicker(ctx context.Context, userID int64, entries []domain.DeadlineEntry) [][]Button {
	var rows [][]Button
	for _, it := range sortDeadlines(ctx, userID, entries) {
		label := format.Truncate(it.due.Format(domain.DisplayDateTimeLayout)+" "+orUntitled(it.entry.Name), 2*buttonLabelRunes)
		rows = append(rows, []Button{{Text: label, Action: ActionEditDeadline, Payload: it.entry.ID}})
	}
	return append(rows, cancelRow())
}

func describeSchedule(e domain.ScheduleEntry) string {
	return fmt.Sprintf("%s, %s %s", format.Bold(orUntitled(e.ClassName)), domain.TitleWeekday(e.Day), format.EscapeMarkdown(e.Time))
}

func describeDeadline(e domain.DeadlineEntry) string {
	return fmt.Sprintf("%s, до %s", format.Bold(orUntitled(e.Name)), format.EscapeMarkdown(e.DateTime))
}

func shortDay(day string) string {
	r := []rune(domain.TitleWeekday(day))
	if len(r) > 2 {
		r = r[:2]
	}
	return string(r)
}

func orUntitled(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Без названия"
	}
	return s
}

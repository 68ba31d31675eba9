package conversation

import (
	"context"
	"strings"
	"testing"

	"github.com/m3rciful/typekeeper/internal/domain"
)

func TestRenderScheduleGroupsByWeekdayAndStart(t *testing.T) {
	entries := []domain.ScheduleEntry{
		{ID: "a", Day: "среда", Time: "12:00-13:00", ClassName: "Late"},
		{ID: "b", Day: "понедельник", Time: "10:00-11:00", ClassName: "Mon"},
		{ID: "c", Day: "среда", Time: "08:00-09:00", ClassName: "Early"},
		{ID: "d", Day: "someday", Time: "08:00-09:00", ClassName: "Lost"},
	}
	r := renderSchedule(context.Background(), 1, entries)
	if !r.Markdown {
		t.Fatalf("schedule should be rendered as markdown")
	}
	mon := strings.Index(r.Text, "Mon")
	early := strings.Index(r.Text, "Early")
	late := strings.Index(r.Text, "Late")
	if mon < 0 || early < 0 || late < 0 || !(mon < early && early < late) {
		t.Fatalf("unexpected order:\n%s", r.Text)
	}
	if strings.Contains(r.Text, "Lost") {
		t.Fatalf("entry with unknown day rendered")
	}
	if len(r.Buttons) != 3 || r.Buttons[0][0].Payload != "b" || r.Buttons[0][1].Action != ActionDeleteSchedule {
		t.Fatalf("unexpected buttons: %+v", r.Buttons)
	}
}

func TestRenderScheduleEscapesUserText(t *testing.T) {
	r := renderSchedule(context.Background(), 1, []domain.ScheduleEntry{
		{ID: "a", Day: "вторник", Time: "09:00-10:00", ClassName: "C_plus*plus"},
	})
	if !strings.Contains(r.Text, `C\_plus\*plus`) {
		t.Fatalf("class name not escaped:\n%s", r.Text)
	}
}

func TestRenderDeadlinesSortsAndSkipsInvalid(t *testing.T) {
	entries := []domain.DeadlineEntry{
		{ID: "late", Name: "Second", DateTime: "2024-06-01 10:00"},
		{ID: "bad", Name: "Broken", DateTime: "tomorrow"},
		{ID: "soon", Name: "First", DateTime: "2024-05-01 10:00", Description: "draft"},
	}
	r := renderDeadlines(context.Background(), 1, entries)
	first := strings.Index(r.Text, "First")
	second := strings.Index(r.Text, "Second")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("unexpected order:\n%s", r.Text)
	}
	if strings.Contains(r.Text, "Broken") {
		t.Fatalf("invalid deadline rendered")
	}
	if !strings.Contains(r.Text, "01.05.2024 10:00") {
		t.Fatalf("display date missing:\n%s", r.Text)
	}

	only := renderDeadlines(context.Background(), 1, entries[1:2])
	if only.Text != textNoValidDeadlines {
		t.Fatalf("all-invalid reply = %q", only.Text)
	}
	if empty := renderDeadlines(context.Background(), 1, nil); empty.Text != textDeadlinesEmpty {
		t.Fatalf("empty reply = %q", empty.Text)
	}
}

func TestRenderDeadlinesBoldsNamesOutsideEscapes(t *testing.T) {
	r := renderDeadlines(context.Background(), 1, []domain.DeadlineEntry{
		{ID: "a", Name: "lab_2", DateTime: "2024-05-01 10:00"},
	})
	if !strings.Contains(r.Text, `*lab*\_*2*`) {
		t.Fatalf("deadline name not bolded around the escape:\n%s", r.Text)
	}
	if got := describeDeadline(domain.DeadlineEntry{Name: "a*b", DateTime: "2024-05-01 10:00"}); !strings.HasPrefix(got, `*a*\**b*,`) {
		t.Fatalf("describeDeadline = %q", got)
	}
}

// Package conversation runs the per-user add/edit/delete dialogs.
// It consumes transport-neutral events and produces replies; the bot
// package turns those into Telegram messages.
package conversation

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/typekeeper/core/logger"
	"github.com/m3rciful/typekeeper/core/telegram/state"
	"github.com/m3rciful/typekeeper/internal/domain"
)

const component = "conversation"

// skipSentinel clears an optional description.
const skipSentinel = "-"

// Repository is the record access the engine needs.
type Repository interface {
	Get(ctx context.Context, userID int64) (domain.UserRecord, error)
	Update(ctx context.Context, userID int64, fn func(*domain.UserRecord) error) (domain.UserRecord, error)
}

// Engine drives conversations. It is safe for concurrent use; callers are
// expected to deliver one user's events in order.
type Engine struct {
	repo     Repository
	sessions state.Store[Session]
	now      func() time.Time
}

// NewEngine builds an engine over repo and a session store.
func NewEngine(repo Repository, sessions state.Store[Session]) *Engine {
	return &Engine{repo: repo, sessions: sessions, now: time.Now}
}

// InProgress reports whether userID is inside a flow.
func (e *Engine) InProgress(ctx context.Context, userID int64) bool {
	_, ok, err := e.sessions.Get(ctx, userID)
	if err != nil {
		logger.Warn(ctx, component, "session.get", slog.Int64("user_id", userID), logger.Err(err))
		return false
	}
	return ok
}

// Start makes sure the user's record exists and greets them.
func (e *Engine) Start(ctx context.Context, userID int64) []Reply {
	if _, err := e.repo.Get(ctx, userID); err != nil {
		return e.storageFailure(ctx, userID, "start", err)
	}
	return []Reply{send(textGreeting, KeyboardMain)}
}

// Help returns the usage text.
func (e *Engine) Help(context.Context, int64) []Reply {
	return []Reply{sendMD(textHelp, KeyboardMain)}
}

// Reset wipes schedule, deadlines and any open flow.
func (e *Engine) Reset(ctx context.Context, userID int64) []Reply {
	e.clearSession(ctx, userID)
	if _, err := e.repo.Update(ctx, userID, func(rec *domain.UserRecord) error {
		rec.Reset()
		return nil
	}); err != nil {
		return e.storageFailure(ctx, userID, "reset", err)
	}
	logger.Info(ctx, component, "reset", slog.String("status", "ok"), slog.Int64("user_id", userID))
	return []Reply{send(textReset, KeyboardMain)}
}

// Cancel discards the open flow, if any. Stored data is untouched.
func (e *Engine) Cancel(ctx context.Context, userID int64) []Reply {
	if sess, ok, _ := e.sessions.Get(ctx, userID); ok {
		logger.Info(ctx, component, "flow.cancel",
			slog.String("outcome", "cancelled"),
			slog.Int64("user_id", userID),
			slog.String("flow", string(sess.Flow)),
			slog.String("step", string(sess.Step)),
		)
	}
	e.clearSession(ctx, userID)
	return []Reply{send(textCancelled, KeyboardMain)}
}

// BeginAddSchedule opens the AddSchedule flow.
func (e *Engine) BeginAddSchedule(ctx context.Context, userID int64) []Reply {
	sess := Session{Flow: FlowAddSchedule, Step: StepAwaitDay, Schedule: &ScheduleDraft{}}
	if err := e.begin(ctx, userID, sess); err != nil {
		return e.storageFailure(ctx, userID, "begin", err)
	}
	return []Reply{sendButtons(textAskDay, false, weekdayButtons())}
}

// BeginAddDeadline opens the AddDeadline flow.
func (e *Engine) BeginAddDeadline(ctx context.Context, userID int64) []Reply {
	sess := Session{Flow: FlowAddDeadline, Step: StepAwaitName, Deadline: &DeadlineDraft{}}
	if err := e.begin(ctx, userID, sess); err != nil {
		return e.storageFailure(ctx, userID, "begin", err)
	}
	return []Reply{send(textAskName, KeyboardCancel)}
}

// ShowSchedule lists the schedule grouped by weekday with edit/delete buttons.
func (e *Engine) ShowSchedule(ctx context.Context, userID int64) []Reply {
	rec, err := e.repo.Get(ctx, userID)
	if err != nil {
		return e.storageFailure(ctx, userID, "show", err)
	}
	return []Reply{renderSchedule(ctx, userID, rec.Schedule)}
}

// ShowDeadlines lists deadlines by due date with edit/delete buttons.
func (e *Engine) ShowDeadlines(ctx context.Context, userID int64) []Reply {
	rec, err := e.repo.Get(ctx, userID)
	if err != nil {
		return e.storageFailure(ctx, userID, "show", err)
	}
	return []Reply{renderDeadlines(ctx, userID, rec.Deadlines)}
}

// BeginEditSchedule opens EditSchedule. An empty entryID asks the user to pick an entry first.
func (e *Engine) BeginEditSchedule(ctx context.Context, userID int64, entryID string) []Reply {
	return e.beginEdit(ctx, userID, FlowEditSchedule, entryID)
}

// BeginEditDeadline opens EditDeadline. An empty entryID asks the user to pick an entry first.
func (e *Engine) BeginEditDeadline(ctx context.Context, userID int64, entryID string) []Reply {
	return e.beginEdit(ctx, userID, FlowEditDeadline, entryID)
}

func (e *Engine) beginEdit(ctx context.Context, userID int64, flow Flow, entryID string) []Reply {
	rec, err := e.repo.Get(ctx, userID)
	if err != nil {
		return e.storageFailure(ctx, userID, "begin", err)
	}
	sess := Session{Flow: flow, Edit: &EditTarget{EntryID: entryID}}

	if entryID == "" {
		var rows [][]Button
		prompt := textPickSchedule
		if flow == FlowEditSchedule {
			if len(rec.Schedule) == 0 {
				return []Reply{send(textScheduleEmpty, KeyboardMain)}
			}
			rows = schedulePicker(ctx, userID, rec.Schedule)
		} else {
			if len(rec.Deadlines) == 0 {
				return []Reply{send(textDeadlinesEmpty, KeyboardMain)}
			}
			prompt = textPickDeadline
			rows = deadlinePicker(ctx, userID, rec.Deadlines)
		}
		sess.Step = StepSelectEntry
		if err := e.begin(ctx, userID, sess); err != nil {
			return e.storageFailure(ctx, userID, "begin", err)
		}
		return []Reply{sendButtons(prompt, false, rows)}
	}

	var summary string
	if flow == FlowEditSchedule {
		entry, ok := rec.FindSchedule(entryID)
		if !ok {
			return e.notFound(ctx, userID, entryID)
		}
		summary = describeSchedule(entry)
	} else {
		entry, ok := rec.FindDeadline(entryID)
		if !ok {
			return e.notFound(ctx, userID, entryID)
		}
		summary = describeDeadline(entry)
	}
	sess.Step = StepSelectField
	if err := e.begin(ctx, userID, sess); err != nil {
		return e.storageFailure(ctx, userID, "begin", err)
	}
	return []Reply{sendButtons(summary+"\n\n"+textPickField, true, fieldButtons(sess.fields()))}
}

// DeleteSchedule removes the schedule entry with entryID.
func (e *Engine) DeleteSchedule(ctx context.Context, userID int64, entryID string) []Reply {
	_, err := e.repo.Update(ctx, userID, func(rec *domain.UserRecord) error {
		_, err := rec.RemoveSchedule(entryID)
		return err
	})
	return e.deleted(ctx, userID, entryID, "schedule", textScheduleDeleted, err)
}

// DeleteDeadline removes the deadline with entryID.
func (e *Engine) DeleteDeadline(ctx context.Context, userID int64, entryID string) []Reply {
	_, err := e.repo.Update(ctx, userID, func(rec *domain.UserRecord) error {
		_, err := rec.RemoveDeadline(entryID)
		return err
	})
	return e.deleted(ctx, userID, entryID, "deadline", textDeadlineDeleted, err)
}

func (e *Engine) deleted(ctx context.Context, userID int64, entryID, kind, text string, err error) []Reply {
	switch {
	case errors.Is(err, domain.ErrEntryNotFound):
		return e.notFound(ctx, userID, entryID)
	case err != nil:
		return e.storageFailure(ctx, userID, "delete", err)
	}
	logger.Info(ctx, component, "delete",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.String("kind", kind),
		slog.String("entry_id", entryID),
	)
	return []Reply{send(text, KeyboardMain)}
}

// Handle processes a text message or a button press.
func (e *Engine) Handle(ctx context.Context, ev Event) []Reply {
	if isCancel(ev) {
		return e.Cancel(ctx, ev.UserID)
	}

	if ev.Kind == EventSelection {
		switch ev.Action {
		case ActionEditSchedule:
			return e.BeginEditSchedule(ctx, ev.UserID, ev.Payload)
		case ActionEditDeadline:
			return e.BeginEditDeadline(ctx, ev.UserID, ev.Payload)
		case ActionDeleteSchedule:
			return e.DeleteSchedule(ctx, ev.UserID, ev.Payload)
		case ActionDeleteDeadline:
			return e.DeleteDeadline(ctx, ev.UserID, ev.Payload)
		}
	}

	sess, ok, err := e.sessions.Get(ctx, ev.UserID)
	if err != nil {
		return e.storageFailure(ctx, ev.UserID, "session", err)
	}
	if !ok {
		if ev.Kind == EventSelection {
			return []Reply{send(textExpired, KeyboardMain)}
		}
		return []Reply{send(textUnknown, KeyboardMain)}
	}

	switch sess.Flow {
	case FlowAddSchedule:
		return e.stepAddSchedule(ctx, ev, sess)
	case FlowAddDeadline:
		return e.stepAddDeadline(ctx, ev, sess)
	case FlowEditSchedule, FlowEditDeadline:
		return e.stepEdit(ctx, ev, sess)
	}
	e.clearSession(ctx, ev.UserID)
	return []Reply{send(textExpired, KeyboardMain)}
}

func isCancel(ev Event) bool {
	if ev.Kind == EventSelection {
		return ev.Action == ActionCancel
	}
	t := strings.TrimSpace(ev.Text)
	return t == LabelCancel || strings.EqualFold(t, "/cancel")
}

// textInput returns the typed text, or false when the event is a button press.
func textInput(ev Event) (string, bool) {
	if ev.Kind != EventText {
		return "", false
	}
	return ev.Text, true
}

// dayInput accepts a typed weekday or a weekday button.
func dayInput(ev Event) (string, error) {
	switch {
	case ev.Kind == EventSelection && ev.Action == ActionDay:
		return domain.NormalizeWeekday(ev.Payload)
	case ev.Kind == EventText:
		return domain.NormalizeWeekday(ev.Text)
	}
	return "", domain.ErrInvalidWeekday
}

func (e *Engine) stepAddSchedule(ctx context.Context, ev Event, sess Session) []Reply {
	if sess.Schedule == nil {
		sess.Schedule = &ScheduleDraft{}
	}
	d := sess.Schedule
	text, isText := textInput(ev)

	switch sess.Step {
	case StepAwaitDay:
		day, err := dayInput(ev)
		if err != nil {
			return e.reprompt(ctx, ev.UserID, sess, sendButtons(textBadDay, false, weekdayButtons()))
		}
		d.Day = day
		replies := []Reply{}
		if ev.Kind == EventSelection {
			replies = append(replies, edit("📅 День: *"+domain.TitleWeekday(day)+"*", true, nil))
		}
		return append(replies, e.advance(ctx, ev.UserID, sess, StepAwaitTime, sendMD(textAskTime, KeyboardCancel))...)

	case StepAwaitTime:
		v, err := domain.ValidateTimeRange(text)
		if !isText || err != nil {
			return e.reprompt(ctx, ev.UserID, sess, sendMD(textBadTime, KeyboardCancel))
		}
		d.Time = v
		return e.advance(ctx, ev.UserID, sess, StepAwaitClass, send(textAskClass, KeyboardCancel))

	case StepAwaitClass:
		v, err := domain.RequireText(text)
		if !isText || err != nil {
			return e.reprompt(ctx, ev.UserID, sess, send(textEmpty, KeyboardCancel))
		}
		d.ClassName = v
		return e.advance(ctx, ev.UserID, sess, StepAwaitProfessor, send(textAskProfessor, KeyboardCancel))

	case StepAwaitProfessor:
		v, err := domain.RequireText(text)
		if !isText || err != nil {
			return e.reprompt(ctx, ev.UserID, sess, send(textEmpty, KeyboardCancel))
		}
		d.Professor = v
		return e.advance(ctx, ev.UserID, sess, StepAwaitReminder, send(textAskRemindClass, KeyboardCancel))

	case StepAwaitReminder:
		n, err := domain.ParseReminder(text)
		if !isText || err != nil {
			return e.reprompt(ctx, ev.UserID, sess, send(textBadNumber, KeyboardCancel))
		}
		entry := domain.ScheduleEntry{
			Day:            d.Day,
			Time:           d.Time,
			ClassName:      d.ClassName,
			Professor:      d.Professor,
			ReminderBefore: n,
		}
		return e.commit(ctx, ev.UserID, sess, textScheduleAdded, func(rec *domain.UserRecord) error {
			rec.AddSchedule(entry)
			return nil
		})
	}
	return e.unexpectedStep(ctx, ev.UserID, sess)
}

func (e *Engine) stepAddDeadline(ctx context.Context, ev Event, sess Session) []Reply {
	if sess.Deadline == nil {
		sess.Deadline = &DeadlineDraft{}
	}
	d := sess.Deadline
	text, isText := textInput(ev)
	if !isText {
		return e.reprompt(ctx, ev.UserID, sess, sendMD(promptFor(sess), KeyboardCancel))
	}

	switch sess.Step {
	case StepAwaitName:
		v, err := domain.RequireText(text)
		if err != nil {
			return e.reprompt(ctx, ev.UserID, sess, send(textEmpty, KeyboardCancel))
		}
		d.Name = v
		return e.advance(ctx, ev.UserID, sess, StepAwaitDateTime, sendMD(textAskDateTime, KeyboardCancel))

	case StepAwaitDateTime:
		v, err := domain.ValidateDateTime(text)
		if err != nil {
			return e.reprompt(ctx, ev.UserID, sess, sendMD(textBadDateTime, KeyboardCancel))
		}
		d.DateTime = v
		return e.advance(ctx, ev.UserID, sess, StepAwaitDescription, send(textAskDescription, KeyboardCancel))

	case StepAwaitDescription:
		d.Description = description(text)
		return e.advance(ctx, ev.UserID, sess, StepAwaitReminder, send(textAskRemindDue, KeyboardCancel))

	case StepAwaitReminder:
		n, err := domain.ParseReminder(text)
		if err != nil {
			return e.reprompt(ctx, ev.UserID, sess, send(textBadNumber, KeyboardCancel))
		}
		entry := domain.DeadlineEntry{
			Name:           d.Name,
			DateTime:       d.DateTime,
			Description:    d.Description,
			ReminderBefore: n,
		}
		return e.commit(ctx, ev.UserID, sess, textDeadlineAdded, func(rec *domain.UserRecord) error {
			rec.AddDeadline(entry)
			return nil
		})
	}
	return e.unexpectedStep(ctx, ev.UserID, sess)
}

func description(text string) string {
	v := strings.TrimSpace(text)
	if v == skipSentinel {
		return ""
	}
	return v
}

func (e *Engine) stepEdit(ctx context.Context, ev Event, sess Session) []Reply {
	if sess.Edit == nil {
		return e.unexpectedStep(ctx, ev.UserID, sess)
	}
	switch sess.Step {
	case StepSelectEntry:
		// Entry buttons are handled before the session is consulted.
		return e.reprompt(ctx, ev.UserID, sess, send(promptFor(sess), KeyboardNone))

	case StepSelectField:
		if ev.Kind != EventSelection || ev.Action != ActionField || !sess.allowsField(Field(ev.Payload)) {
			return e.reprompt(ctx, ev.UserID, sess, sendButtons(textPickField, false, fieldButtons(sess.fields())))
		}
		field := Field(ev.Payload)
		sess.Edit.Field = field
		logger.Debug(ctx, component, "flow.field",
			slog.Int64("user_id", ev.UserID),
			slog.String("flow", string(sess.Flow)),
			slog.String("field", string(field)),
		)
		if field == FieldDay {
			return e.advance(ctx, ev.UserID, sess, StepAwaitNewValue, edit(textPickNewDay, false, weekdayButtons()))
		}
		return append(
			[]Reply{edit(fieldLabels[field]+":", false, nil)},
			e.advance(ctx, ev.UserID, sess, StepAwaitNewValue, sendMD(newValuePrompts[field], KeyboardCancel))...,
		)

	case StepAwaitNewValue:
		return e.applyEdit(ctx, ev, sess)
	}
	return e.unexpectedStep(ctx, ev.UserID, sess)
}

func (e *Engine) applyEdit(ctx context.Context, ev Event, sess Session) []Reply {
	target := *sess.Edit
	text, isText := textInput(ev)

	var (
		setSchedule func(*domain.ScheduleEntry)
		setDeadline func(*domain.DeadlineEntry)
	)
	switch target.Field {
	case FieldDay:
		day, err := dayInput(ev)
		if err != nil {
			return e.reprompt(ctx, ev.UserID, sess, sendButtons(textBadDay, false, weekdayButtons()))
		}
		setSchedule = func(s *domain.ScheduleEntry) { s.Day = day }
	case FieldTime:
		v, err := domain.ValidateTimeRange(text)
		if !isText || err != nil {
			return e.reprompt(ctx, ev.UserID, sess, sendMD(textBadTime, KeyboardCancel))
		}
		setSchedule = func(s *domain.ScheduleEntry) { s.Time = v }
	case FieldClassName, FieldProfessor, FieldName:
		v, err := domain.RequireText(text)
		if !isText || err != nil {
			return e.reprompt(ctx, ev.UserID, sess, send(textEmpty, KeyboardCancel))
		}
		switch target.Field {
		case FieldClassName:
			setSchedule = func(s *domain.ScheduleEntry) { s.ClassName = v }
		case FieldProfessor:
			setSchedule = func(s *domain.ScheduleEntry) { s.Professor = v }
		default:
			setDeadline = func(d *domain.DeadlineEntry) { d.Name = v }
		}
	case FieldDateTime:
		v, err := domain.ValidateDateTime(text)
		if !isText || err != nil {
			return e.reprompt(ctx, ev.UserID, sess, sendMD(textBadDateTime, KeyboardCancel))
		}
		setDeadline = func(d *domain.DeadlineEntry) { d.DateTime = v }
	case FieldDescription:
		if !isText {
			return e.reprompt(ctx, ev.UserID, sess, sendMD(newValuePrompts[FieldDescription], KeyboardCancel))
		}
		v := description(text)
		setDeadline = func(d *domain.DeadlineEntry) { d.Description = v }
	case FieldReminder:
		n, err := domain.ParseReminder(text)
		if !isText || err != nil {
			return e.reprompt(ctx, ev.UserID, sess, send(textBadNumber, KeyboardCancel))
		}
		setSchedule = func(s *domain.ScheduleEntry) { s.ReminderBefore = n }
		setDeadline = func(d *domain.DeadlineEntry) { d.ReminderBefore = n }
	default:
		return e.unexpectedStep(ctx, ev.UserID, sess)
	}

	var replies []Reply
	if ev.Kind == EventSelection {
		replies = append(replies, edit(fieldLabels[target.Field]+": "+domain.TitleWeekday(ev.Payload), false, nil))
	}
	if sess.Flow == FlowEditSchedule {
		if setSchedule == nil {
			return e.unexpectedStep(ctx, ev.UserID, sess)
		}
		return append(replies, e.commit(ctx, ev.UserID, sess, textScheduleUpdated, func(rec *domain.UserRecord) error {
			return rec.UpdateSchedule(target.EntryID, func(s *domain.ScheduleEntry) error {
				setSchedule(s)
				return nil
			})
		})...)
	}
	if setDeadline == nil {
		return e.unexpectedStep(ctx, ev.UserID, sess)
	}
	return append(replies, e.commit(ctx, ev.UserID, sess, textDeadlineUpdated, func(rec *domain.UserRecord) error {
		return rec.UpdateDeadline(target.EntryID, func(d *domain.DeadlineEntry) error {
			setDeadline(d)
			return nil
		})
	})...)
}

// promptFor repeats the question of the current step.
func promptFor(sess Session) string {
	switch sess.Step {
	case StepAwaitDay:
		return textAskDay
	case StepAwaitTime:
		return textAskTime
	case StepAwaitClass:
		return textAskClass
	case StepAwaitProfessor:
		return textAskProfessor
	case StepAwaitReminder:
		if sess.Flow == FlowAddDeadline {
			return textAskRemindDue
		}
		return textAskRemindClass
	case StepAwaitName:
		return textAskName
	case StepAwaitDateTime:
		return textAskDateTime
	case StepAwaitDescription:
		return textAskDescription
	case StepSelectEntry:
		if sess.Flow == FlowEditDeadline {
			return textPickDeadline
		}
		return textPickSchedule
	case StepSelectField:
		return textPickField
	}
	return textUnknown
}

func (e *Engine) begin(ctx context.Context, userID int64, sess Session) error {
	sess.StartedAt = e.now().UTC()
	if err := e.sessions.Set(ctx, userID, sess); err != nil {
		return err
	}
	logger.Info(ctx, component, "flow.start",
		slog.Int64("user_id", userID),
		slog.String("flow", string(sess.Flow)),
		slog.String("step", string(sess.Step)),
	)
	return nil
}

func (e *Engine) advance(ctx context.Context, userID int64, sess Session, next Step, prompt Reply) []Reply {
	sess.Step = next
	if err := e.sessions.Set(ctx, userID, sess); err != nil {
		return e.storageFailure(ctx, userID, "session", err)
	}
	logger.Debug(ctx, component, "flow.step",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.String("flow", string(sess.Flow)),
		slog.String("step", string(next)),
	)
	return []Reply{prompt}
}

func (e *Engine) reprompt(ctx context.Context, userID int64, sess Session, prompt Reply) []Reply {
	logger.Debug(ctx, component, "flow.step",
		slog.String("outcome", "reprompt"),
		slog.Int64("user_id", userID),
		slog.String("flow", string(sess.Flow)),
		slog.String("step", string(sess.Step)),
	)
	return []Reply{prompt}
}

// commit runs the terminal mutation. Any failure abandons the flow.
func (e *Engine) commit(ctx context.Context, userID int64, sess Session, done string, fn func(*domain.UserRecord) error) []Reply {
	start := time.Now()
	_, err := e.repo.Update(ctx, userID, fn)
	e.clearSession(ctx, userID)
	if errors.Is(err, domain.ErrEntryNotFound) {
		entryID := ""
		if sess.Edit != nil {
			entryID = sess.Edit.EntryID
		}
		return e.notFound(ctx, userID, entryID)
	}
	if err != nil {
		return e.storageFailure(ctx, userID, "commit", err)
	}
	logger.Info(ctx, component, "flow.done",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.String("flow", string(sess.Flow)),
		slog.Duration("duration", time.Since(start)),
	)
	return []Reply{send(done, KeyboardMain)}
}

func (e *Engine) unexpectedStep(ctx context.Context, userID int64, sess Session) []Reply {
	logger.Warn(ctx, component, "flow.step",
		slog.String("status", "fail"),
		slog.Int64("user_id", userID),
		slog.String("flow", string(sess.Flow)),
		slog.String("step", string(sess.Step)),
	)
	e.clearSession(ctx, userID)
	return []Reply{send(textExpired, KeyboardMain)}
}

func (e *Engine) notFound(ctx context.Context, userID int64, entryID string) []Reply {
	logger.Info(ctx, component, "entry.lookup",
		slog.String("outcome", "not_found"),
		slog.Int64("user_id", userID),
		slog.String("entry_id", entryID),
	)
	e.clearSession(ctx, userID)
	return []Reply{send(textNotFound, KeyboardMain)}
}

// storageFailure abandons any open flow and reports a generic error.
func (e *Engine) storageFailure(ctx context.Context, userID int64, op string, err error) []Reply {
	logger.Error(ctx, component, op,
		slog.String("status", "fail"),
		slog.Int64("user_id", userID),
		logger.Err(err),
	)
	e.clearSession(ctx, userID)
	return []Reply{send(textError, KeyboardMain)}
}

func (e *Engine) clearSession(ctx context.Context, userID int64) {
	if err := e.sessions.Clear(ctx, userID); err != nil {
		logger.Warn(ctx, component, "session.clear", slog.Int64("user_id", userID), logger.Err(err))
	}
}

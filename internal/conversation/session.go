package conversation

import "time"

// Flow names a multi-step conversation.
type Flow string

const (
	FlowAddSchedule  Flow = "add_schedule"
	FlowAddDeadline  Flow = "add_deadline"
	FlowEditSchedule Flow = "edit_schedule"
	FlowEditDeadline Flow = "edit_deadline"
)

// Step is a position inside a flow.
type Step string

const (
	StepAwaitDay         Step = "await_day"
	StepAwaitTime        Step = "await_time"
	StepAwaitClass       Step = "await_class"
	StepAwaitProfessor   Step = "await_professor"
	StepAwaitReminder    Step = "await_reminder"
	StepAwaitName        Step = "await_name"
	StepAwaitDateTime    Step = "await_datetime"
	StepAwaitDescription Step = "await_description"
	StepSelectEntry      Step = "select_entry"
	StepSelectField      Step = "select_field"
	StepAwaitNewValue    Step = "await_new_value"
)

// Field is an editable entry attribute. Values match the stored JSON keys.
type Field string

const (
	FieldDay         Field = "day"
	FieldTime        Field = "time"
	FieldClassName   Field = "className"
	FieldProfessor   Field = "professor"
	FieldReminder    Field = "reminderBefore"
	FieldName        Field = "name"
	FieldDateTime    Field = "datetime"
	FieldDescription Field = "description"
)

var (
	scheduleFields = []Field{FieldDay, FieldTime, FieldClassName, FieldProfessor, FieldReminder}
	deadlineFields = []Field{FieldName, FieldDateTime, FieldDescription, FieldReminder}
)

// ScheduleDraft accumulates AddSchedule input.
type ScheduleDraft struct {
	Day       string `json:"day,omitempty"`
	Time      string `json:"time,omitempty"`
	ClassName string `json:"className,omitempty"`
	Professor string `json:"professor,omitempty"`
}

// DeadlineDraft accumulates AddDeadline input.
type DeadlineDraft struct {
	Name        string `json:"name,omitempty"`
	DateTime    string `json:"datetime,omitempty"`
	Description string `json:"description,omitempty"`
}

// EditTarget identifies the entry and field an edit flow is changing.
type EditTarget struct {
	EntryID string `json:"entryId"`
	Field   Field  `json:"field,omitempty"`
}

// Session is the transient per-user conversation state.
// Exactly one of Schedule, Deadline or Edit is set, depending on Flow.
type Session struct {
	Flow      Flow           `json:"flow"`
	Step      Step           `json:"step"`
	Schedule  *ScheduleDraft `json:"schedule,omitempty"`
	Deadline  *DeadlineDraft `json:"deadline,omitempty"`
	Edit      *EditTarget    `json:"edit,omitempty"`
	StartedAt time.Time      `json:"startedAt"`
}

func (s Session) fields() []Field {
	switch s.Flow {
	case FlowEditSchedule:
		return scheduleFields
	case FlowEditDeadline:
		return deadlineFields
	}
	return nil
}

func (s Session) allowsField(f Field) bool {
	for _, v := range s.fields() {
		if v == f {
			return true
		}
	}
	return false
}

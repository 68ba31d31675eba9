package conversation

// EventKind distinguishes typed text from a button press.
type EventKind int

const (
	EventText EventKind = iota
	EventSelection
)

// Event is one inbound user action.
type Event struct {
	Kind    EventKind
	UserID  int64
	Text    string
	Action  string
	Payload string
}

// TextEvent builds a text event.
func TextEvent(userID int64, text string) Event {
	return Event{Kind: EventText, UserID: userID, Text: text}
}

// SelectionEvent builds a button press event.
func SelectionEvent(userID int64, action, payload string) Event {
	return Event{Kind: EventSelection, UserID: userID, Action: action, Payload: payload}
}

// Selection actions carried in button payloads.
const (
	ActionDay            = "day"
	ActionField          = "field"
	ActionEditSchedule   = "sched_edit"
	ActionDeleteSchedule = "sched_del"
	ActionEditDeadline   = "dl_edit"
	ActionDeleteDeadline = "dl_del"
	ActionCancel         = "cancel"
)

// Actions lists every selection action the engine understands.
var Actions = []string{
	ActionDay, ActionField,
	ActionEditSchedule, ActionDeleteSchedule,
	ActionEditDeadline, ActionDeleteDeadline,
	ActionCancel,
}

// ReplyAction says whether a reply is a new message or replaces the pressed one.
type ReplyAction int

const (
	ReplySend ReplyAction = iota
	ReplyEdit
)

// Keyboard selects the reply keyboard attached to a sent message.
type Keyboard int

const (
	KeyboardNone Keyboard = iota
	KeyboardMain
	KeyboardCancel
)

// Button is one inline button.
type Button struct {
	Text    string
	Action  string
	Payload string
}

// Reply is one outbound message. Buttons take precedence over Keyboard.
type Reply struct {
	Action   ReplyAction
	Text     string
	Markdown bool
	Keyboard Keyboard
	Buttons  [][]Button
}

func send(text string, kb Keyboard) Reply {
	return Reply{Action: ReplySend, Text: text, Keyboard: kb}
}

func sendMD(text string, kb Keyboard) Reply {
	return Reply{Action: ReplySend, Text: text, Keyboard: kb, Markdown: true}
}

func sendButtons(text string, markdown bool, rows [][]Button) Reply {
	return Reply{Action: ReplySend, Text: text, Markdown: markdown, Buttons: rows}
}

func edit(text string, markdown bool, rows [][]Button) Reply {
	return Reply{Action: ReplyEdit, Text: text, Markdown: markdown, Buttons: rows}
}

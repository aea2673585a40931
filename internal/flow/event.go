// Package flow routes chat events to multi-step conversations and stateless
// menu actions. It knows nothing about Telegram: the transport adapter converts
// updates into Events and renders Replies.
package flow

import (
	"context"

	"github.com/multicco/sportbot4-sub000/internal/domain"
	"github.com/multicco/sportbot4-sub000/internal/storage"
)

// Kind classifies an inbound event.
type Kind int

const (
	KindText Kind = iota + 1
	KindAction
	KindCommand
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindAction:
		return "action"
	case KindCommand:
		return "command"
	}
	return "unknown"
}

// Event is one user input. Text carries free text for KindText and the
// argument string for KindCommand. Tag and Payload are set for KindAction.
type Event struct {
	SubjectID int64
	Username  string
	FirstName string
	Kind      Kind
	Command   string
	Text      string
	Tag       string
	Payload   string
}

// Mode selects how reply text is parsed by the client.
type Mode int

const (
	ModePlain Mode = iota
	ModeMarkdown
)

// Button is an inline action button.
type Button struct {
	Text    string
	Tag     string
	Payload string
}

// Document is a file attachment.
type Document struct {
	FileName string
	Caption  string
	Data     []byte
}

// Reply is a rendered message.
type Reply struct {
	Text     string
	Mode     Mode
	Buttons  [][]Button
	Document *Document
}

// Responder delivers replies to the chat the event came from.
type Responder interface {
	Send(ctx context.Context, r Reply) error
}

// Notifier delivers out-of-band messages to another subject. Failures are
// logged by callers and never abort a flow.
type Notifier interface {
	Notify(ctx context.Context, subjectID int64, r Reply) error
}

// Exporter renders a team report into a downloadable file.
type Exporter interface {
	TeamReport(team domain.Team, rows []storage.ReportRow) (Document, error)
}

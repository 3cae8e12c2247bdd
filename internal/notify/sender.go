package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/Domenick1991/civicbook/internal/kafka"
	"github.com/Domenick1991/civicbook/internal/logger"
)

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// Message is one rendered requester notification.
type Message struct {
	Channel   string
	To        string
	Subject   string
	Body      string
	Reference string
}

// Sender delivers lifecycle notifications to requesters. Delivery is a log
// line; a real gateway plugs in behind Deliver.
type Sender struct {
	log     *logger.Logger
	Deliver func(ctx context.Context, msg Message) error
}

func NewSender(log *logger.Logger) *Sender {
	s := &Sender{log: log}
	s.Deliver = s.logDelivery
	return s
}

func (s *Sender) Send(ctx context.Context, event kafka.RecordEvent) error {
	msg, ok := Build(event)
	if !ok {
		s.log.Warn("No contact channel for record", "reference", event.Reference, "type", event.Type)
		return nil
	}
	return s.Deliver(ctx, msg)
}

func (s *Sender) logDelivery(_ context.Context, msg Message) error {
	s.log.Info("Notification sent",
		"channel", msg.Channel,
		"to", msg.To,
		"reference", msg.Reference,
		"subject", msg.Subject,
	)
	return nil
}

// Build renders the notification for event. Email is preferred over SMS; it
// returns false when the requester left neither.
func Build(event kafka.RecordEvent) (Message, bool) {
	msg := Message{Reference: event.Reference}
	switch {
	case event.Contact.Email != "":
		msg.Channel, msg.To = ChannelEmail, event.Contact.Email
	case event.Contact.Phone != "":
		msg.Channel, msg.To = ChannelSMS, event.Contact.Phone
	default:
		return Message{}, false
	}

	kind := strings.ReplaceAll(string(event.Category), "_", " ")
	switch event.Type {
	case kafka.EventRecordSubmitted:
		msg.Subject = fmt.Sprintf("Your %s %s was received", kind, event.Reference)
	case kafka.EventRecordCancelled:
		msg.Subject = fmt.Sprintf("Your %s %s was cancelled", kind, event.Reference)
	default:
		msg.Subject = fmt.Sprintf("Your %s %s is now %s", kind, event.Reference, event.Status)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", event.Contact.Name)
	fmt.Fprintf(&b, "Reference: %s\nStatus: %s\n", event.Reference, event.Status)
	if event.ResourceID != "" {
		fmt.Fprintf(&b, "Resource: %s\nDate: %s %s\n", event.ResourceID, event.Date, event.Slot)
	}
	if event.Total != nil {
		fmt.Fprintf(&b, "Amount due: %d\n", *event.Total)
	}
	msg.Body = b.String()
	return msg, true
}

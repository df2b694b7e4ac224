package meetbot

import (
	"log"
	"strings"

	"meetgogo/backend/internal/models"
)

// commandAliases resolves a command identifier to its canonical name.
// Unrecognized identifiers are not commands; the line is only logged and
// tag-scanned.
var commandAliases = map[string]string{
	"startmeeting": "startmeeting",
	"sm":           "startmeeting",
	"endmeeting":   "endmeeting",
	"em":           "endmeeting",
	"topic":        "topic",
	"t":            "topic",
	"meetingname":  "meetingname",
	"mn":           "meetingname",
	"chair":        "chair",
	"unchair":      "unchair",
}

// parseCommand matches the grammar `"!" IDENT (WHITESPACE REST)?` anchored
// at line start.
func parseCommand(line string) (name, arg string, ok bool) {
	if !strings.HasPrefix(line, "!") {
		return "", "", false
	}
	parts := strings.SplitN(line[1:], " ", 2)
	canonical, known := commandAliases[parts[0]]
	if !known {
		return "", "", false
	}
	if len(parts) == 2 {
		arg = strings.TrimSpace(parts[1])
	}
	return canonical, arg, true
}

// Router feeds every inbound message through logging, tagging and command
// dispatch. Command detection is orthogonal to logging: a command line is
// also logged and tag-scanned, except the terminal end command, whose line
// is not part of the record it closes.
type Router struct {
	Service *Service
}

// NewRouter Constructor.
func NewRouter(service *Service) *Router {
	return &Router{Service: service}
}

// HandleMessage splits a message into lines and processes each one
// independently. All lines share the message's submission timestamp.
func (r *Router) HandleMessage(msg models.InboundMessage) {
	for _, line := range strings.Split(msg.Body, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		r.handleLine(msg, line)
	}
}

func (r *Router) handleLine(msg models.InboundMessage, line string) {
	name, arg, isCommand := parseCommand(line)

	if isCommand {
		switch name {
		case "startmeeting":
			// The session does not exist yet, so the service logs the
			// command line itself after creating it.
			r.dispatch(msg, name, r.Service.StartMeeting(msg, line, arg))
			return
		case "endmeeting":
			r.dispatch(msg, name, r.Service.EndMeeting(msg))
			return
		}
	}

	if err := r.Service.LogLine(msg, line); err != nil {
		log.Printf("ERROR: Failed to log line in room %s: %v", msg.RoomID, err)
	}

	if !isCommand {
		return
	}
	switch name {
	case "topic":
		r.dispatch(msg, name, r.Service.SetTopic(msg, line, arg))
	case "meetingname":
		r.dispatch(msg, name, r.Service.SetMeetingName(msg, arg))
	case "chair":
		r.dispatch(msg, name, r.Service.AddChair(msg, arg))
	case "unchair":
		r.dispatch(msg, name, r.Service.RemoveChair(msg, arg))
	}
}

// dispatch logs command outcomes. Lifecycle precondition failures were
// already reported to the room by the service; everything else is only of
// interest in the process log.
func (r *Router) dispatch(msg models.InboundMessage, name string, err error) {
	if err == nil {
		return
	}
	log.Printf("INFO: Command %s in room %s: %v", name, msg.RoomID, err)
}

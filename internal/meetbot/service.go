// Package meetbot holds the meeting session state machine, the command
// router and the tagging engine. One service instance handles all rooms;
// lifecycle transitions are serialized per room so a start and an end for
// the same room are never in flight at once.
package meetbot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"meetgogo/backend/internal/backends"
	"meetgogo/backend/internal/chat"
	"meetgogo/backend/internal/config"
	"meetgogo/backend/internal/models"
	"meetgogo/backend/internal/storage"

	"github.com/lib/pq"
)

var (
	// ErrNoActiveSession is returned for end/topic/rename on a closed room.
	ErrNoActiveSession = errors.New("no meeting in progress")
	// ErrPermissionDenied is returned when the sender's room privilege level
	// is below the configured threshold.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrDuplicateSession is returned for start on a room that already has a
	// meeting open.
	ErrDuplicateSession = storage.ErrDuplicateSession
)

// publishTimeout bounds one backend hook invocation. A slow or dead publish
// target must not hold the room's lock forever.
const publishTimeout = 30 * time.Second

// Service owns the open/closed lifecycle of meetings.
type Service struct {
	Storage storage.Storage
	Chat    chat.Client
	Backend backends.Backend
	Config  *config.Config
	Tags    *TagMatcher

	mu        sync.Mutex
	roomLocks map[string]*sync.Mutex
}

// NewService Constructor.
func NewService(s storage.Storage, c chat.Client, b backends.Backend, cfg *config.Config, tags *TagMatcher) *Service {
	return &Service{
		Storage:   s,
		Chat:      c,
		Backend:   b,
		Config:    cfg,
		Tags:      tags,
		roomLocks: make(map[string]*sync.Mutex),
	}
}

// roomLock returns the mutex serializing one room's transitions. Rooms
// proceed independently of each other.
func (s *Service) roomLock(roomID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.roomLocks[roomID]
	if !ok {
		l = &sync.Mutex{}
		s.roomLocks[roomID] = l
	}
	return l
}

// MeetingID derives the stable session key from the room and the calendar
// date of the creating message.
func MeetingID(roomID string, timestampMillis int64) string {
	return fmt.Sprintf("%s-%s", roomID, time.UnixMilli(timestampMillis).UTC().Format("2006-01-02"))
}

func (s *Service) allowed(roomID, senderRef string) bool {
	level, err := s.Chat.PowerLevel(roomID, senderRef)
	if err != nil {
		log.Printf("WARN: Power level lookup failed for %s in %s, denying: %v", senderRef, roomID, err)
		return false
	}
	return level >= s.Config.PowerLevel
}

func (s *Service) notify(roomID, text string) {
	if err := s.Chat.Notify(roomID, text); err != nil {
		log.Printf("ERROR: Failed to notify room %s: %v", roomID, err)
	}
}

// confirm reacts to the command message; failures are logged, not surfaced.
func (s *Service) confirm(msg models.InboundMessage) {
	if err := s.Chat.React(msg.RoomID, msg.EventID, "✅"); err != nil {
		log.Printf("WARN: Failed to confirm command in room %s: %v", msg.RoomID, err)
	}
}

// StartMeeting handles the start command. The command line itself is logged
// after the session is created, since no session existed when it was sent.
func (s *Service) StartMeeting(msg models.InboundMessage, line, name string) error {
	lock := s.roomLock(msg.RoomID)
	lock.Lock()
	defer lock.Unlock()

	if !s.allowed(msg.RoomID, msg.SenderRef) {
		s.notify(msg.RoomID, "You do not have permission to start a meeting")
		return ErrPermissionDenied
	}

	if name == "" {
		roomName, err := s.Chat.RoomName(msg.RoomID)
		if err != nil {
			log.Printf("WARN: Failed to get display name for room %s: %v", msg.RoomID, err)
		}
		name = roomName
		if name == "" {
			name = msg.RoomID
		}
	}

	meeting := &models.Meeting{
		RoomID:      msg.RoomID,
		MeetingID:   MeetingID(msg.RoomID, msg.Timestamp),
		Topic:       "",
		MeetingName: name,
		Chairs:      pq.StringArray{msg.Sender},
	}
	if err := s.Storage.CreateSession(meeting); err != nil {
		if errors.Is(err, ErrDuplicateSession) {
			s.notify(msg.RoomID, "Meeting already in progress")
		}
		return err
	}

	s.logLine(meeting, msg, line)

	started := time.UnixMilli(msg.Timestamp).UTC().Format("2006-01-02 15:04:05")
	s.notify(msg.RoomID, fmt.Sprintf("Meeting started at %s UTC", started))

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := s.Backend.OnStart(ctx, meeting, msg); err != nil {
		log.Printf("ERROR: Backend %s start hook failed for room %s: %v", s.Backend.Name(), msg.RoomID, err)
	}
	return nil
}

// EndMeeting handles the end command. Session existence is checked before
// authorization so an unauthorized user in an empty room only learns that no
// meeting is running. Cleanup is unconditional once the transition is
// accepted; publish failures are reported but never skip the purge.
func (s *Service) EndMeeting(msg models.InboundMessage) error {
	lock := s.roomLock(msg.RoomID)
	lock.Lock()
	defer lock.Unlock()

	meeting, err := s.Storage.SessionFor(msg.RoomID)
	if err != nil {
		return err
	}
	if meeting == nil {
		s.notify(msg.RoomID, "No meeting in progress")
		return ErrNoActiveSession
	}
	if !s.allowed(msg.RoomID, msg.SenderRef) {
		s.notify(msg.RoomID, "You do not have permission to end the meeting")
		return ErrPermissionDenied
	}

	entries, err := s.Storage.Entries(meeting.MeetingID, "")
	if err != nil {
		return err
	}
	attendance, err := s.Storage.Attendance(meeting.MeetingID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := s.Backend.OnEnd(ctx, meeting, entries, attendance, msg); err != nil {
		log.Printf("ERROR: Backend %s end hook failed for room %s: %v", s.Backend.Name(), msg.RoomID, err)
		s.notify(msg.RoomID, "Warning: the meeting record could not be published")
	}

	ended := time.UnixMilli(msg.Timestamp).UTC().Format("2006-01-02 15:04:05")
	s.notify(msg.RoomID, fmt.Sprintf("Meeting ended at %s UTC", ended))

	return s.Storage.CloseSession(msg.RoomID, meeting.MeetingID)
}

// SetTopic mutates the session topic. Silently a no-op on an empty argument.
func (s *Service) SetTopic(msg models.InboundMessage, line, topic string) error {
	if topic == "" {
		return nil
	}
	lock := s.roomLock(msg.RoomID)
	lock.Lock()
	defer lock.Unlock()

	meeting, err := s.Storage.SessionFor(msg.RoomID)
	if err != nil {
		return err
	}
	if meeting == nil {
		s.notify(msg.RoomID, "No meeting in progress")
		return ErrNoActiveSession
	}
	if !s.allowed(msg.RoomID, msg.SenderRef) {
		s.notify(msg.RoomID, "You do not have permission to change the topic")
		return ErrPermissionDenied
	}

	if err := s.Storage.SetTopic(msg.RoomID, meeting.MeetingID, topic, msg.Timestamp, line); err != nil {
		return err
	}
	s.confirm(msg)
	return nil
}

// SetMeetingName mutates the display name. Silently a no-op on an empty
// argument.
func (s *Service) SetMeetingName(msg models.InboundMessage, name string) error {
	if name == "" {
		return nil
	}
	lock := s.roomLock(msg.RoomID)
	lock.Lock()
	defer lock.Unlock()

	meeting, err := s.Storage.SessionFor(msg.RoomID)
	if err != nil {
		return err
	}
	if meeting == nil {
		s.notify(msg.RoomID, "No meeting in progress")
		return ErrNoActiveSession
	}
	if !s.allowed(msg.RoomID, msg.SenderRef) {
		s.notify(msg.RoomID, "You do not have permission to rename the meeting")
		return ErrPermissionDenied
	}

	if err := s.Storage.SetMeetingName(msg.RoomID, name); err != nil {
		return err
	}
	s.confirm(msg)
	return nil
}

// AddChair adds a chair to the open meeting.
func (s *Service) AddChair(msg models.InboundMessage, chair string) error {
	if chair == "" {
		return nil
	}
	lock := s.roomLock(msg.RoomID)
	lock.Lock()
	defer lock.Unlock()

	meeting, err := s.Storage.SessionFor(msg.RoomID)
	if err != nil {
		return err
	}
	if meeting == nil {
		s.notify(msg.RoomID, "No meeting in progress")
		return ErrNoActiveSession
	}
	if !s.allowed(msg.RoomID, msg.SenderRef) {
		s.notify(msg.RoomID, "You do not have permission to chair users")
		return ErrPermissionDenied
	}

	if err := s.Storage.AddChair(msg.RoomID, chair); err != nil {
		return err
	}
	s.confirm(msg)
	return nil
}

// RemoveChair removes a chair from the open meeting.
func (s *Service) RemoveChair(msg models.InboundMessage, chair string) error {
	if chair == "" {
		return nil
	}
	lock := s.roomLock(msg.RoomID)
	lock.Lock()
	defer lock.Unlock()

	meeting, err := s.Storage.SessionFor(msg.RoomID)
	if err != nil {
		return err
	}
	if meeting == nil {
		s.notify(msg.RoomID, "No meeting in progress")
		return ErrNoActiveSession
	}
	if !s.allowed(msg.RoomID, msg.SenderRef) {
		s.notify(msg.RoomID, "You do not have permission to chair users")
		return ErrPermissionDenied
	}

	if err := s.Storage.RemoveChair(msg.RoomID, chair); err != nil {
		return err
	}
	s.confirm(msg)
	return nil
}

// LogLine appends one line to the open meeting's log, if any, and runs the
// tag scan on it. Lines arriving while no meeting is open are dropped.
func (s *Service) LogLine(msg models.InboundMessage, line string) error {
	lock := s.roomLock(msg.RoomID)
	lock.Lock()
	defer lock.Unlock()

	meeting, err := s.Storage.SessionFor(msg.RoomID)
	if err != nil {
		return err
	}
	if meeting == nil {
		return nil
	}
	s.logLine(meeting, msg, line)
	return nil
}

// logLine does the append + tag scan + reaction under an already-held room
// lock.
func (s *Service) logLine(meeting *models.Meeting, msg models.InboundMessage, line string) {
	entry := &models.MeetingLog{
		MeetingID: meeting.MeetingID,
		Timestamp: msg.Timestamp,
		Sender:    msg.Sender,
		Message:   line,
		Topic:     meeting.Topic,
	}
	if err := s.Storage.AppendEntry(entry); err != nil {
		return
	}
	if err := s.Storage.PublishLive(msg.RoomID, *entry); err != nil {
		log.Printf("WARN: Failed to publish live entry for room %s: %v", msg.RoomID, err)
	}

	label, ok := s.Tags.Match(line)
	if !ok {
		return
	}
	if err := s.Storage.SetTag(meeting.MeetingID, msg.Timestamp, line, label); err != nil {
		log.Printf("ERROR: Failed to tag entry in meeting %s: %v", meeting.MeetingID, err)
		return
	}
	entry.Tag = &label
	if err := s.Chat.React(msg.RoomID, msg.EventID, s.Tags.Symbol(label)); err != nil {
		log.Printf("WARN: Failed to react to %s in room %s: %v", msg.EventID, msg.RoomID, err)
	}
}

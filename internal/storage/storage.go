package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"meetgogo/backend/internal/models"

	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ErrDuplicateSession is returned by CreateSession when the room already has
// an open meeting.
var ErrDuplicateSession = errors.New("meeting already in progress")

// Storage is the contract the bot core and the backends depend on. The
// concrete Service runs on PostgreSQL for rows and Redis for the live feed.
type Storage interface {
	// SessionFor returns the open meeting for the room, or nil when the room
	// has none.
	SessionFor(roomID string) (*models.Meeting, error)
	CreateSession(meeting *models.Meeting) error
	AppendEntry(entry *models.MeetingLog) error
	// SetTag updates at most one row matched by the compound key; it is a
	// no-op when nothing matches.
	SetTag(meetingID string, timestamp int64, message, tag string) error
	// SetTopic updates the session topic and rewrites the topic snapshot on
	// the log row that carried the topic command, so the minutes show the
	// command next to the topic it set.
	SetTopic(roomID, meetingID, topic string, cmdTimestamp int64, cmdMessage string) error
	SetMeetingName(roomID, name string) error
	AddChair(roomID, chair string) error
	RemoveChair(roomID, chair string) error
	// Entries returns the meeting's log ordered by timestamp ascending.
	// A non-empty tagFilter restricts the result to entries with that tag.
	Entries(meetingID, tagFilter string) ([]models.MeetingLog, error)
	// Attendance counts log rows per sender, ordered by count ascending so
	// the most active participant comes last.
	Attendance(meetingID string) ([]models.Attendance, error)
	// CloseSession deletes the meeting's log entries first and the session
	// row second, so a concurrent reader never sees entries without a
	// session.
	CloseSession(roomID, meetingID string) error
	OpenSessions() ([]models.Meeting, error)

	// PublishLive pushes an appended entry onto the room's live feed.
	PublishLive(roomID string, entry models.MeetingLog) error
}

// Service implements Storage on GORM and go-redis.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewService Constructor. Redis may be nil for tools that only need rows
// (the admin CLI passes nil).
func NewService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

func (s *Service) SessionFor(roomID string) (*models.Meeting, error) {
	var meeting models.Meeting
	err := s.DB.Where("room_id = ?", roomID).First(&meeting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		log.Printf("ERROR: Failed to look up session for room %s: %v", roomID, err)
		return nil, err
	}
	return &meeting, nil
}

func (s *Service) CreateSession(meeting *models.Meeting) error {
	existing, err := s.SessionFor(meeting.RoomID)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrDuplicateSession
	}
	if err := s.DB.Create(meeting).Error; err != nil {
		log.Printf("ERROR: Failed to create session for room %s: %v", meeting.RoomID, err)
		return err
	}
	return nil
}

func (s *Service) AppendEntry(entry *models.MeetingLog) error {
	if err := s.DB.Create(entry).Error; err != nil {
		log.Printf("ERROR: Failed to append log entry for meeting %s: %v", entry.MeetingID, err)
		return err
	}
	return nil
}

func (s *Service) SetTag(meetingID string, timestamp int64, message, tag string) error {
	return s.DB.Model(&models.MeetingLog{}).
		Where("meeting_id = ? AND timestamp = ? AND message = ?", meetingID, timestamp, message).
		Limit(1).
		Update("tag", tag).Error
}

func (s *Service) SetTopic(roomID, meetingID, topic string, cmdTimestamp int64, cmdMessage string) error {
	if err := s.DB.Model(&models.Meeting{}).
		Where("room_id = ?", roomID).
		Update("topic", topic).Error; err != nil {
		return err
	}
	// The command line was logged under the previous topic; move it under
	// the topic it introduces.
	return s.DB.Model(&models.MeetingLog{}).
		Where("meeting_id = ? AND timestamp = ? AND message = ?", meetingID, cmdTimestamp, cmdMessage).
		Update("topic", topic).Error
}

func (s *Service) SetMeetingName(roomID, name string) error {
	return s.DB.Model(&models.Meeting{}).
		Where("room_id = ?", roomID).
		Update("meeting_name", name).Error
}

func (s *Service) AddChair(roomID, chair string) error {
	meeting, err := s.SessionFor(roomID)
	if err != nil {
		return err
	}
	if meeting == nil {
		return gorm.ErrRecordNotFound
	}
	for _, c := range meeting.Chairs {
		if c == chair {
			return nil
		}
	}
	meeting.Chairs = append(meeting.Chairs, chair)
	return s.DB.Model(&models.Meeting{}).
		Where("room_id = ?", roomID).
		Update("chairs", meeting.Chairs).Error
}

func (s *Service) RemoveChair(roomID, chair string) error {
	meeting, err := s.SessionFor(roomID)
	if err != nil {
		return err
	}
	if meeting == nil {
		return gorm.ErrRecordNotFound
	}
	kept := make(pq.StringArray, 0, len(meeting.Chairs))
	for _, c := range meeting.Chairs {
		if c != chair {
			kept = append(kept, c)
		}
	}
	return s.DB.Model(&models.Meeting{}).
		Where("room_id = ?", roomID).
		Update("chairs", kept).Error
}

func (s *Service) Entries(meetingID, tagFilter string) ([]models.MeetingLog, error) {
	var entries []models.MeetingLog
	q := s.DB.Where("meeting_id = ?", meetingID)
	if tagFilter != "" {
		q = q.Where("tag = ?", tagFilter)
	}
	if err := q.Order("timestamp asc").Find(&entries).Error; err != nil {
		log.Printf("ERROR: Failed to load entries for meeting %s: %v", meetingID, err)
		return nil, err
	}
	return entries, nil
}

func (s *Service) Attendance(meetingID string) ([]models.Attendance, error) {
	var counts []models.Attendance
	err := s.DB.Model(&models.MeetingLog{}).
		Select("sender, count(*) as count").
		Where("meeting_id = ?", meetingID).
		Group("sender").
		Order("count asc, sender asc").
		Scan(&counts).Error
	if err != nil {
		log.Printf("ERROR: Failed to compute attendance for meeting %s: %v", meetingID, err)
		return nil, err
	}
	return counts, nil
}

func (s *Service) CloseSession(roomID, meetingID string) error {
	// Entries first, session row second. End-meeting is serialized per room,
	// so a reader may see a session without entries but never the reverse.
	if err := s.DB.Where("meeting_id = ?", meetingID).
		Delete(&models.MeetingLog{}).Error; err != nil {
		log.Printf("ERROR: Failed to purge entries for meeting %s: %v", meetingID, err)
		return err
	}
	if err := s.DB.Where("room_id = ?", roomID).
		Delete(&models.Meeting{}).Error; err != nil {
		log.Printf("ERROR: Failed to remove session for room %s: %v", roomID, err)
		return err
	}
	return nil
}

func (s *Service) OpenSessions() ([]models.Meeting, error) {
	var meetings []models.Meeting
	if err := s.DB.Find(&meetings).Error; err != nil {
		return nil, err
	}
	return meetings, nil
}

// LiveChannel is the Redis pub/sub channel for a room's live entry feed.
func LiveChannel(roomID string) string {
	return fmt.Sprintf("meetgogo:live:%s", roomID)
}

func (s *Service) PublishLive(roomID string, entry models.MeetingLog) error {
	if s.Redis == nil {
		return nil
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.Redis.Publish(s.Ctx, LiveChannel(roomID), payload).Err()
}

// SubscribeLive subscribes to a room's live entry feed.
func (s *Service) SubscribeLive(roomID string) *redis.PubSub {
	return s.Redis.Subscribe(s.Ctx, LiveChannel(roomID))
}

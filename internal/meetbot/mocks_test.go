package meetbot_test

import (
	"context"

	"meetgogo/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a mock implementation of the storage.Storage interface.
// It uses testify/mock to allow flexible expectation setting in tests.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) SessionFor(roomID string) (*models.Meeting, error) {
	args := m.Called(roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Meeting), args.Error(1)
}

func (m *MockStorage) CreateSession(meeting *models.Meeting) error {
	args := m.Called(meeting)
	return args.Error(0)
}

func (m *MockStorage) AppendEntry(entry *models.MeetingLog) error {
	args := m.Called(entry)
	return args.Error(0)
}

func (m *MockStorage) SetTag(meetingID string, timestamp int64, message, tag string) error {
	args := m.Called(meetingID, timestamp, message, tag)
	return args.Error(0)
}

func (m *MockStorage) SetTopic(roomID, meetingID, topic string, cmdTimestamp int64, cmdMessage string) error {
	args := m.Called(roomID, meetingID, topic, cmdTimestamp, cmdMessage)
	return args.Error(0)
}

func (m *MockStorage) SetMeetingName(roomID, name string) error {
	args := m.Called(roomID, name)
	return args.Error(0)
}

func (m *MockStorage) AddChair(roomID, chair string) error {
	args := m.Called(roomID, chair)
	return args.Error(0)
}

func (m *MockStorage) RemoveChair(roomID, chair string) error {
	args := m.Called(roomID, chair)
	return args.Error(0)
}

func (m *MockStorage) Entries(meetingID, tagFilter string) ([]models.MeetingLog, error) {
	args := m.Called(meetingID, tagFilter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MeetingLog), args.Error(1)
}

func (m *MockStorage) Attendance(meetingID string) ([]models.Attendance, error) {
	args := m.Called(meetingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Attendance), args.Error(1)
}

func (m *MockStorage) CloseSession(roomID, meetingID string) error {
	args := m.Called(roomID, meetingID)
	return args.Error(0)
}

func (m *MockStorage) OpenSessions() ([]models.Meeting, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Meeting), args.Error(1)
}

func (m *MockStorage) PublishLive(roomID string, entry models.MeetingLog) error {
	args := m.Called(roomID, entry)
	return args.Error(0)
}

// MockChat is a mock implementation of the chat.Client boundary.
type MockChat struct {
	mock.Mock
}

func (m *MockChat) Notify(roomID, text string) error {
	args := m.Called(roomID, text)
	return args.Error(0)
}

func (m *MockChat) React(roomID, eventID, symbol string) error {
	args := m.Called(roomID, eventID, symbol)
	return args.Error(0)
}

func (m *MockChat) UploadFile(roomID, filename, mimeType string, data []byte) error {
	args := m.Called(roomID, filename, mimeType, data)
	return args.Error(0)
}

func (m *MockChat) RoomName(roomID string) (string, error) {
	args := m.Called(roomID)
	return args.String(0), args.Error(1)
}

func (m *MockChat) PowerLevel(roomID, senderRef string) (int, error) {
	args := m.Called(roomID, senderRef)
	return args.Int(0), args.Error(1)
}

// MockBackend is a mock implementation of the backends.Backend interface.
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Name() string {
	return "mock"
}

func (m *MockBackend) OnStart(ctx context.Context, meeting *models.Meeting, evt models.InboundMessage) error {
	args := m.Called(ctx, meeting, evt)
	return args.Error(0)
}

func (m *MockBackend) OnEnd(ctx context.Context, meeting *models.Meeting, entries []models.MeetingLog,
	attendance []models.Attendance, evt models.InboundMessage) error {
	args := m.Called(ctx, meeting, entries, attendance, evt)
	return args.Error(0)
}

package backends

import (
	"context"

	"meetgogo/backend/internal/identity"

	"github.com/stretchr/testify/mock"
)

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

// fakePublisher records every published message in order.
type fakePublisher struct {
	channels []string
	payloads [][]byte
}

func (p *fakePublisher) Publish(_ context.Context, channel string, payload []byte) error {
	p.channels = append(p.channels, channel)
	p.payloads = append(p.payloads, payload)
	return nil
}

// fakeResolver resolves from a fixed table; ids in the ambiguous set fail
// with the ambiguity error.
type fakeResolver struct {
	table     map[string]string
	ambiguous map[string]bool
	calls     map[string]int
	err       error
}

func (r *fakeResolver) Resolve(_ context.Context, chatID string) (string, error) {
	if r.calls == nil {
		r.calls = make(map[string]int)
	}
	r.calls[chatID]++
	if r.err != nil {
		return "", r.err
	}
	if r.ambiguous[chatID] {
		return "", identity.ErrAmbiguous
	}
	if name, ok := r.table[chatID]; ok {
		return name, nil
	}
	return "", identity.ErrNotFound
}

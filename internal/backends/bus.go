package backends

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"meetgogo/backend/internal/config"
	"meetgogo/backend/internal/identity"
	"meetgogo/backend/internal/models"
	"meetgogo/backend/internal/render"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisPublisher adapts a Redis client to the Publisher interface.
type RedisPublisher struct {
	Client *redis.Client
}

func (p *RedisPublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	return p.Client.Publish(ctx, channel, payload).Err()
}

// busBackend emits structured meeting-started/meeting-completed messages to
// a publish/subscribe bus, resolving participants' chat identities to
// canonical ones when an identity service is configured. Lookups are cached
// in memory for the duration of one end-meeting call.
type busBackend struct {
	deps Deps
	data config.BusData
}

func init() {
	Register("bus", func(deps Deps) (Backend, error) {
		if deps.Bus == nil {
			return nil, fmt.Errorf("bus backend requires a publisher")
		}
		data := deps.Config.BackendData.Bus
		if data.TopicPrefix == "" {
			data.TopicPrefix = "meetgogo"
		}
		return &busBackend{deps: deps, data: data}, nil
	})
}

func (b *busBackend) Name() string { return "bus" }

// resolverCache wraps the resolver for one end-meeting call so each chat
// identity is looked up at most once.
type resolverCache struct {
	resolver identity.Resolver
	cache    map[string]string
}

func newResolverCache(r identity.Resolver) *resolverCache {
	return &resolverCache{resolver: r, cache: make(map[string]string)}
}

// resolve falls back to the raw chat identifier on any lookup failure.
// ErrAmbiguous is reported back so the room can be warned.
func (c *resolverCache) resolve(ctx context.Context, chatID string) (string, bool) {
	if c.resolver == nil {
		return chatID, false
	}
	if name, ok := c.cache[chatID]; ok {
		return name, false
	}
	name, err := c.resolver.Resolve(ctx, chatID)
	if err != nil {
		if !errors.Is(err, identity.ErrAmbiguous) {
			log.Printf("WARN: Identity lookup failed for %s: %v", chatID, err)
		}
		c.cache[chatID] = chatID
		return chatID, errors.Is(err, identity.ErrAmbiguous)
	}
	c.cache[chatID] = name
	return name, false
}

func (b *busBackend) publish(ctx context.Context, topic string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return b.deps.Bus.Publish(ctx, topic, payload)
}

func (b *busBackend) OnStart(ctx context.Context, meeting *models.Meeting, evt models.InboundMessage) error {
	started := models.MeetingStarted{
		ID:        uuid.New().String(),
		StartTime: evt.Timestamp,
		User:      evt.Sender,
		Location:  meeting.RoomID,
		Name:      meeting.MeetingName,
	}
	return b.publish(ctx, b.data.TopicPrefix+".meeting.start", started)
}

func (b *busBackend) OnEnd(ctx context.Context, meeting *models.Meeting, entries []models.MeetingLog,
	attendance []models.Attendance, evt models.InboundMessage) error {
	var refs []models.LogRef
	if b.data.Archive.Root != "" && len(entries) > 0 {
		docs := render.Documents(renderInput(b.deps, meeting, entries, attendance))
		date := render.FormatDate(entries[0].Timestamp)
		written, err := writeArchive(b.data.Archive, meeting, date, docs)
		if err != nil {
			log.Printf("ERROR: Archive write failed for meeting %s: %v", meeting.MeetingID, err)
		}
		refs = written
	}

	resolver := newResolverCache(b.deps.Resolver)
	warned := map[string]bool{}
	warn := func(chatID string, ambiguous bool) {
		if !ambiguous || warned[chatID] {
			return
		}
		warned[chatID] = true
		if err := b.deps.Chat.Notify(meeting.RoomID,
			fmt.Sprintf("Warning: identity lookup for %s was ambiguous, using the chat identity", chatID)); err != nil {
			log.Printf("ERROR: Failed to notify room %s: %v", meeting.RoomID, err)
		}
	}

	user, ambiguous := resolver.resolve(ctx, evt.Sender)
	warn(evt.Sender, ambiguous)

	attendees := make([]models.Attendance, 0, len(attendance))
	for _, a := range attendance {
		name, ambiguous := resolver.resolve(ctx, a.Sender)
		warn(a.Sender, ambiguous)
		attendees = append(attendees, models.Attendance{Sender: name, Count: a.Count})
	}

	chairs := make([]string, 0, len(meeting.Chairs))
	for _, chair := range meeting.Chairs {
		name, ambiguous := resolver.resolve(ctx, chair)
		warn(chair, ambiguous)
		chairs = append(chairs, name)
	}

	startTime := evt.Timestamp
	if len(entries) > 0 {
		startTime = entries[0].Timestamp
	}
	outputURL := ""
	for _, ref := range refs {
		if ref.Type == "minutes.html" {
			outputURL = ref.URL
		}
	}

	completed := models.MeetingCompleted{
		ID:        uuid.New().String(),
		StartTime: startTime,
		EndTime:   evt.Timestamp,
		User:      user,
		Location:  meeting.RoomID,
		Name:      meeting.MeetingName,
		URL:       outputURL,
		Attendees: attendees,
		Chairs:    chairs,
		Logs:      refs,
	}
	return b.publish(ctx, b.data.TopicPrefix+".meeting.complete", completed)
}

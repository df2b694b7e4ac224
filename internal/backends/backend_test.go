package backends

import (
	"testing"

	"meetgogo/backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_UnknownName(t *testing.T) {
	_, err := New("carrier-pigeon", Deps{Config: config.Default()})
	assert.ErrorContains(t, err, "unknown backend")
}

func TestNew_Null(t *testing.T) {
	b, err := New("null", Deps{Config: config.Default()})
	require.NoError(t, err)
	assert.Equal(t, "null", b.Name())
}

func TestNew_Files(t *testing.T) {
	b, err := New("files", Deps{Config: config.Default()})
	require.NoError(t, err)
	assert.Equal(t, "files", b.Name())
}

func TestNew_ArchiveRequiresRoot(t *testing.T) {
	_, err := New("archive", Deps{Config: config.Default()})
	assert.ErrorContains(t, err, "archive.root")
}

func TestNew_DiscourseRequiresCredentials(t *testing.T) {
	cfg := config.Default()
	cfg.BackendData.Discourse.URL = "https://forum.example.org"
	// User and key still missing.
	_, err := New("discourse", Deps{Config: cfg})
	assert.Error(t, err)
}

func TestNew_BusRequiresPublisher(t *testing.T) {
	_, err := New("bus", Deps{Config: config.Default()})
	assert.ErrorContains(t, err, "publisher")
}

func TestNew_BusDefaultsTopicPrefix(t *testing.T) {
	b, err := New("bus", Deps{Config: config.Default(), Bus: &fakePublisher{}})
	require.NoError(t, err)
	assert.Equal(t, "meetgogo", b.(*busBackend).data.TopicPrefix)
}

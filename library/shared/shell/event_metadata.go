package shell

import (
	"errors"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/equilobe/library-go/librarystore"
)

var ErrMappingToEventMetadataFailed = errors.New("mapping to event metadata failed")

// EventMetadata links a journal entry to the message that caused it.
// A command starts a new correlation, so all three ids are equal for it.
type EventMetadata struct {
	MessageID     string
	CausationID   string
	CorrelationID string
}

func BuildEventMetadata(messageID uuid.UUID, causationID uuid.UUID, correlationID uuid.UUID) EventMetadata {
	return EventMetadata{
		MessageID:     messageID.String(),
		CausationID:   causationID.String(),
		CorrelationID: correlationID.String(),
	}
}

// NewCommandEventMetadata starts a new correlation for an event raised directly by a command.
func NewCommandEventMetadata() EventMetadata {
	id := uuid.New()
	return BuildEventMetadata(id, id, id)
}

// EventMetadataFrom reads the metadata back from a journal entry.
func EventMetadataFrom(storableEvent librarystore.StorableEvent) (EventMetadata, error) {
	var metadata EventMetadata
	if err := jsoniter.ConfigFastest.Unmarshal(storableEvent.MetadataJSON, &metadata); err != nil {
		return EventMetadata{}, errors.Join(ErrMappingToEventMetadataFailed, err)
	}

	return metadata, nil
}

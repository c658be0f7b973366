package shell

import (
	"errors"

	jsoniter "github.com/json-iterator/go"

	"github.com/equilobe/library-go/library/shared/core"
	"github.com/equilobe/library-go/librarystore"
)

var (
	ErrMappingToStorableEventFailedForDomainEvent = errors.New("mapping to storable event failed for domain event")
	ErrMappingToStorableEventFailedForMetadata    = errors.New("mapping to storable event failed for metadata")
	ErrMappingToDomainEventFailed                 = errors.New("mapping to domain event failed")
	ErrMappingToDomainEventUnknownEventType       = errors.New("unknown event type")
)

var journalJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// StorableEventFrom serializes a domain event and its metadata into a journal entry.
func StorableEventFrom(event core.DomainEvent, metadata EventMetadata) (librarystore.StorableEvent, error) {
	payloadJSON, err := journalJSON.Marshal(event)
	if err != nil {
		return librarystore.StorableEvent{}, errors.Join(ErrMappingToStorableEventFailedForDomainEvent, err)
	}

	metadataJSON, err := journalJSON.Marshal(metadata)
	if err != nil {
		return librarystore.StorableEvent{}, errors.Join(ErrMappingToStorableEventFailedForMetadata, err)
	}

	storableEvent, err := librarystore.BuildStorableEvent(event.EventType(), event.HasOccurredAt(), payloadJSON, metadataJSON)
	if err != nil {
		return librarystore.StorableEvent{}, errors.Join(ErrMappingToStorableEventFailedForDomainEvent, err)
	}

	return storableEvent, nil
}

// StorableEventWithEmptyMetadataFrom serializes a domain event with "{}" as metadata.
func StorableEventWithEmptyMetadataFrom(event core.DomainEvent) (librarystore.StorableEvent, error) {
	payloadJSON, err := journalJSON.Marshal(event)
	if err != nil {
		return librarystore.StorableEvent{}, errors.Join(ErrMappingToStorableEventFailedForDomainEvent, err)
	}

	storableEvent, err := librarystore.BuildStorableEventWithEmptyMetadata(event.EventType(), event.HasOccurredAt(), payloadJSON)
	if err != nil {
		return librarystore.StorableEvent{}, errors.Join(ErrMappingToStorableEventFailedForDomainEvent, err)
	}

	return storableEvent, nil
}

// DomainEventFrom decodes a journal entry or a published message back into its domain event.
func DomainEventFrom(storableEvent librarystore.StorableEvent) (core.DomainEvent, error) {
	switch storableEvent.EventType {
	case core.BookAddedEventType:
		return decodePayload[core.BookAdded](storableEvent.PayloadJSON)
	case core.BookRemovedEventType:
		return decodePayload[core.BookRemoved](storableEvent.PayloadJSON)
	case core.BookLentEventType:
		return decodePayload[core.BookLent](storableEvent.PayloadJSON)
	case core.BookReturnedEventType:
		return decodePayload[core.BookReturned](storableEvent.PayloadJSON)
	default:
		return nil, errors.Join(ErrMappingToDomainEventFailed, ErrMappingToDomainEventUnknownEventType)
	}
}

func decodePayload[E core.DomainEvent](payloadJSON []byte) (core.DomainEvent, error) {
	var event E
	if err := journalJSON.Unmarshal(payloadJSON, &event); err != nil {
		return nil, errors.Join(ErrMappingToDomainEventFailed, err)
	}

	return event, nil
}

package notify_test

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equilobe/library-go/library/shared/core"
	"github.com/equilobe/library-go/library/shared/shell"
	"github.com/equilobe/library-go/library/shared/shell/notify"
	. "github.com/equilobe/library-go/testutil/helper" //nolint:revive
)

const testStream = "test:library-events"

func givenRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func Test_NewRedisStreamPublisher_Validates(t *testing.T) {
	_, nilClientErr := notify.NewRedisStreamPublisher(nil, testStream)
	_, emptyStreamErr := notify.NewRedisStreamPublisher(givenRedisClient(t), "  ")

	assert.ErrorIs(t, nilClientErr, notify.ErrNilRedisClient)
	assert.ErrorIs(t, emptyStreamErr, notify.ErrEmptyStreamName)
}

func Test_RedisStreamPublisher_Publish_RoundTrip(t *testing.T) {
	// arrange
	client := givenRedisClient(t)
	publisher, err := notify.NewRedisStreamPublisher(client, testStream, notify.WithMaxLen(100))
	require.NoError(t, err, "error in arranging test data")

	penalty, err := core.NewMoney(decimal.RequireFromString("17.20"), core.PenaltyCurrency)
	require.NoError(t, err, "error in arranging test data")

	returned := core.BuildBookReturned(
		GivenUniqueID(t), GivenUniqueID(t), GivenUniqueID(t),
		core.QualityWorn, time.Now(), penalty,
	)
	removed := core.BuildBookRemoved(GivenUniqueID(t), time.Now())

	metadata := shell.NewCommandEventMetadata()
	ctx := notify.WithEventMetadata(t.Context(), metadata)

	// act
	require.NoError(t, publisher.Publish(ctx, returned))
	require.NoError(t, publisher.Publish(t.Context(), removed))
	events, err := notify.ReadStream(t.Context(), client, testStream, 10)

	// assert
	require.NoError(t, err)
	require.Len(t, events, 2)

	decodedReturn, ok := events[0].(core.BookReturned)
	require.True(t, ok)
	assert.Equal(t, returned.LoanID, decodedReturn.LoanID)
	assert.Equal(t, core.QualityWorn, decodedReturn.QualityState)
	assert.True(t, returned.Penalty.Equal(decodedReturn.Penalty))
	assert.True(t, returned.ReturnDate.Equal(decodedReturn.ReturnDate))
	assert.Equal(t, removed, events[1])

	messages, err := client.XRange(t.Context(), testStream, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, core.BookReturnedEventType, messages[0].Values[notify.FieldEventType])
	assert.Contains(t, messages[0].Values[notify.FieldMetadata].(string), metadata.CorrelationID)
	assert.JSONEq(t, `{}`, messages[1].Values[notify.FieldMetadata].(string))
}

func Test_ReadStream_RejectsMalformedEntries(t *testing.T) {
	// arrange
	client := givenRedisClient(t)
	require.NoError(t, client.XAdd(t.Context(), &redis.XAddArgs{
		Stream: testStream,
		Values: map[string]any{"something": "else"},
	}).Err(), "error in arranging test data")

	// act
	_, err := notify.ReadStream(t.Context(), client, testStream, 10)

	// assert
	assert.ErrorIs(t, err, notify.ErrReadingStreamFailed)
	assert.ErrorIs(t, err, notify.ErrMalformedEntry)
}

func Test_RedisStreamPublisher_Publish_FailsWhenRedisIsGone(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	publisher, err := notify.NewRedisStreamPublisher(client, testStream)
	require.NoError(t, err, "error in arranging test data")
	server.Close()

	err = publisher.Publish(t.Context(), core.BuildBookRemoved(GivenUniqueID(t), time.Now()))

	assert.ErrorIs(t, err, notify.ErrPublishingFailed)
}

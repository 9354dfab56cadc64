package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"github.com/laboquimica/kalium-review/internal/domains/returns/domain"
)

type captureWriter struct {
	messages []kafka.Message
	err      error
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *captureWriter) Close() error { return nil }

type stalledWriter struct{}

func (stalledWriter) WriteMessages(ctx context.Context, _ ...kafka.Message) error {
	<-ctx.Done()
	return ctx.Err()
}

func (stalledWriter) Close() error { return nil }

func TestKafkaPublisher_KeysByReturn(t *testing.T) {
	writer := &captureWriter{}
	publisher := &KafkaPublisher{writer: writer}
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	err := publisher.Publish(context.Background(), domain.ItemReviewed{
		ReturnID:         7,
		ItemID:           11,
		Outcome:          domain.OutcomeDamaged,
		OperatorID:       1,
		IncidentExpected: true,
		At:               at,
	})
	require.NoError(t, err)
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	require.Equal(t, "7", string(msg.Key))
	require.Equal(t, at, msg.Time)
	require.Equal(t, []kafka.Header{{Key: EventNameHeader, Value: []byte("returns.item.reviewed")}}, msg.Headers)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	require.Equal(t, "DAÑADO", payload["outcome"])
}

func TestKafkaPublisher_WrapsWriteErrors(t *testing.T) {
	publisher := &KafkaPublisher{writer: &captureWriter{err: errors.New("broker down")}}
	err := publisher.Publish(context.Background(), domain.ReturnApproved{ReturnID: 7})
	require.ErrorContains(t, err, "returns.return.approved")
	require.ErrorContains(t, err, "broker down")
}

func TestNewKafkaPublisher_RequiresBrokers(t *testing.T) {
	_, err := NewKafkaPublisher(nil, "")
	require.Error(t, err)
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	publisher := NewLogPublisher(slog.New(slog.NewJSONHandler(&buf, nil)))
	require.NoError(t, publisher.Publish(context.Background(), domain.ReturnRejected{ReturnID: 7, Reason: "roto"}))
	require.Contains(t, buf.String(), `"event":"returns.return.rejected"`)
	require.Contains(t, buf.String(), `"return.id":7`)
}

func TestKafkaPublisher_GivesUpOnStalledBroker(t *testing.T) {
	publisher := &KafkaPublisher{writer: stalledWriter{}, timeout: 20 * time.Millisecond}

	begin := time.Now()
	err := publisher.Publish(context.Background(), domain.ReturnApproved{ReturnID: 7, OperatorID: 1, At: time.Now()})

	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Less(t, time.Since(begin), 2*time.Second)
}

func TestNewKafkaPublisher_BoundsEachPublish(t *testing.T) {
	publisher, err := NewKafkaPublisher([]string{"localhost:9092"}, "")
	require.NoError(t, err)
	require.Equal(t, DefaultPublishTimeout, publisher.timeout)

	writer, ok := publisher.writer.(*kafka.Writer)
	require.True(t, ok)
	require.Equal(t, DefaultTopic, writer.Topic)
	require.Equal(t, DefaultPublishTimeout, writer.WriteTimeout)
}

package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/cartkeeper/internal/port"
	"github.com/segmentio/kafka-go"
)

// Notice is the payload published for every notification.
type Notice struct {
	ID       uuid.UUID     `json:"id"`
	Message  string        `json:"message"`
	Severity port.Severity `json:"severity"`
	Time     time.Time     `json:"time"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes notices to a topic. Publish failures are logged only.
type KafkaNotifier struct {
	writer messageWriter
	logger *slog.Logger
	now    func() time.Time
}

func NewKafkaNotifier(brokers []string, topic string, logger *slog.Logger) *KafkaNotifier {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
		WriteTimeout:           5 * time.Second,
	}

	return newKafkaNotifier(writer, logger, time.Now)
}

func newKafkaNotifier(writer messageWriter, logger *slog.Logger, now func() time.Time) *KafkaNotifier {
	return &KafkaNotifier{
		writer: writer,
		logger: logger,
		now:    now,
	}
}

func (n *KafkaNotifier) Notify(ctx context.Context, message string, severity port.Severity) {
	notice := Notice{
		ID:       uuid.New(),
		Message:  message,
		Severity: severity,
		Time:     n.now().UTC(),
	}

	value, err := json.Marshal(notice)
	if err != nil {
		n.logger.ErrorContext(ctx, "notice marshal failed", "error", err)
		return
	}

	err = n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(notice.ID.String()),
		Value: value,
	})
	if err != nil {
		n.logger.ErrorContext(ctx, "notice publish failed",
			"noticeID", notice.ID,
			"severity", string(severity),
			"error", err,
		)
	}
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}

package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"socialconnect-server/internal/model"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

const publishTimeout = 5 * time.Second

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaMailer : публикует задания на отправку в топик, письма отправляет внешний сервис
type KafkaMailer struct {
	writer messageWriter
}

func NewKafkaMailer(brokers []string, topic string) *KafkaMailer {
	return &KafkaMailer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
			WriteTimeout:           publishTimeout,
		},
	}
}

func (m *KafkaMailer) Send(ctx context.Context, message model.EmailMessage) error {
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = m.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strings.ToLower(message.To)),
		Value: data,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(message.Kind)},
		},
	})
	if err != nil {
		return fmt.Errorf("kafka: publish failed: %w", err)
	}

	return nil
}

func (m *KafkaMailer) Close() error {
	return m.writer.Close()
}

// LogMailer : для локального запуска без брокера, ссылка пишется в лог
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, message model.EmailMessage) error {
	log.Printf("[LogMailer] письмо %s для %s: %s", message.Kind, message.To, message.Link)
	return nil
}

// Links : ссылки для писем строятся от адреса фронтенда
type Links struct {
	AppURL string
}

func (l Links) Verification(token string) string {
	return l.build("/verify", token)
}

func (l Links) PasswordReset(token string) string {
	return l.build("/auth/reset-password", token)
}

func (l Links) build(path, token string) string {
	return strings.TrimRight(l.AppURL, "/") + path + "?token=" + url.QueryEscape(token)
}

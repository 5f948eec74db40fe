package pkg

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"

	"yatube/internal/config"
)

var ErrNoBrokers = errors.New("kafka brokers not configured")

// Sender relay 投递事件的最小接口，测试中可替换
type Sender interface {
	Send(ctx context.Context, key string, value []byte) error
}

type KafkaProducer struct {
	writer *kafka.Writer
	topic  string
}

// Message 待投递的一条事件
type Message struct {
	Key   string
	Value []byte
}

// BatchSender 一次投递多条事件；返回与 msgs 等长的错误，nil 表示该条成功
type BatchSender interface {
	SendBatch(ctx context.Context, msgs []Message) []error
}

var (
	_ Sender      = (*KafkaProducer)(nil)
	_ BatchSender = (*KafkaProducer)(nil)
)

func NewKafkaProducer(cfg config.Kafka) (*KafkaProducer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrNoBrokers
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &KafkaProducer{writer: w, topic: cfg.Topic}, nil
}

func (p *KafkaProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

// Send 同一 key 的事件落到同一分区，保证同一用户/帖子的事件有序
func (p *KafkaProducer) Send(ctx context.Context, key string, value []byte) error {
	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
	}
	return p.writer.WriteMessages(ctx, msg)
}

// SendBatch 一次 WriteMessages 写完整批，只等待一次 BatchTimeout
func (p *KafkaProducer) SendBatch(ctx context.Context, msgs []Message) []error {
	if len(msgs) == 0 {
		return nil
	}
	kms := make([]kafka.Message, len(msgs))
	for i, m := range msgs {
		kms[i] = kafka.Message{Key: []byte(m.Key), Value: m.Value}
	}
	return batchErrors(len(msgs), p.writer.WriteMessages(ctx, kms...))
}

// batchErrors 把 WriteMessages 的返回展开成逐条错误
func batchErrors(n int, err error) []error {
	errs := make([]error, n)
	if err == nil {
		return errs
	}
	var werrs kafka.WriteErrors
	if errors.As(err, &werrs) && len(werrs) == n {
		copy(errs, werrs)
		return errs
	}
	for i := range errs {
		errs[i] = err
	}
	return errs
}

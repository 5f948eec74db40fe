package service

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"yatube/internal/model"
	"yatube/internal/pkg"
	"yatube/internal/repository/database"
)

const (
	defaultRelayBatch    = 200
	defaultRelayInterval = time.Second
	defaultMaxRetry      = 5
)

var errBatchMismatch = errors.New("batch sender result length mismatch")

// OutboxRelayer 从 outbox 表读取待投递事件并交给 Sender
type OutboxRelayer struct {
	repo      *database.OutboxRepository
	batchSize int
	interval  time.Duration
	maxRetry  int
	sender    pkg.Sender
}

func NewOutboxRelayer(db *gorm.DB, sender pkg.Sender) *OutboxRelayer {
	return &OutboxRelayer{
		repo:      &database.OutboxRepository{DB: db},
		batchSize: defaultRelayBatch,
		interval:  defaultRelayInterval,
		maxRetry:  defaultMaxRetry,
		sender:    sender,
	}
}

// Run outbox启动器，ctx 取消后返回
func (r *OutboxRelayer) Run(ctx context.Context) {
	log.WithFields(log.Fields{"batch": r.batchSize, "interval": r.interval}).Info("[relay] started")
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("[relay] stopped")
			return
		case <-t.C:
			r.DrainOnce(ctx)
		}
	}
}

// DrainOnce 投递一批事件，返回成功条数
func (r *OutboxRelayer) DrainOnce(ctx context.Context) int {
	if n, err := r.repo.Requeue(ctx, r.maxRetry); err != nil {
		log.WithError(err).Error("[relay] requeue failed")
	} else if n > 0 {
		log.WithField("count", n).Debug("[relay] requeued")
	}

	rows, err := r.repo.List(ctx, r.batchSize)
	if err != nil {
		log.WithError(err).Error("[relay] outbox query failed")
		return 0
	}
	if len(rows) == 0 {
		return 0
	}

	errs := r.send(ctx, rows)
	sent := 0
	for i := range rows {
		ob := rows[i]
		if err := errs[i]; err != nil {
			log.WithError(err).WithFields(log.Fields{"id": ob.ID, "type": ob.EventType}).Warn("[relay] send failed")
			if err := r.repo.RetryUpdate(ctx, ob.ID); err != nil {
				log.WithError(err).Error("[relay] retry update failed")
			}
			continue
		}
		if err := r.repo.SuccessUpdate(ctx, ob.ID); err != nil {
			log.WithError(err).Error("[relay] success update failed")
			continue
		}
		sent++
	}
	return sent
}

// send 支持批量的 Sender 整批投递，否则逐条投递；返回与 rows 等长的错误
func (r *OutboxRelayer) send(ctx context.Context, rows []model.Outbox) []error {
	if bs, ok := r.sender.(pkg.BatchSender); ok {
		msgs := make([]pkg.Message, len(rows))
		for i, ob := range rows {
			msgs[i] = pkg.Message{Key: ob.Key, Value: []byte(ob.Payload)}
		}
		if errs := bs.SendBatch(ctx, msgs); len(errs) == len(rows) {
			return errs
		}
		log.Error("[relay] batch sender returned a mismatched result")
		errs := make([]error, len(rows))
		for i := range errs {
			errs[i] = errBatchMismatch
		}
		return errs
	}
	errs := make([]error, len(rows))
	for i, ob := range rows {
		errs[i] = r.sender.Send(ctx, ob.Key, []byte(ob.Payload))
	}
	return errs
}

// LogSender 未配置 Kafka 时使用，只打印事件
type LogSender struct{}

func (LogSender) Send(_ context.Context, key string, value []byte) error {
	log.WithField("key", key).Info("[relay] " + string(value))
	return nil
}

var _ pkg.Sender = LogSender{}

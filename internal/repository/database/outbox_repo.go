package database

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"gorm.io/gorm"

	"yatube/internal/model"
)

type OutboxRepository struct {
	DB *gorm.DB
}

// insertOutbox 必须在业务事务内调用
func insertOutbox(tx *gorm.DB, event string, key uint64, fields map[string]any) error {
	body := map[string]any{
		"event":      event,
		"event_time": time.Now().UTC().Format(time.RFC3339Nano),
	}
	for k, v := range fields {
		body[k] = v
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return tx.Create(&model.Outbox{
		EventType: event,
		Key:       strconv.FormatUint(key, 10),
		Payload:   string(payload),
		Status:    model.OutboxPending,
	}).Error
}

// List 查询待投递事件
func (r *OutboxRepository) List(ctx context.Context, batchSize int) ([]model.Outbox, error) {
	var list []model.Outbox
	if err := r.DB.WithContext(ctx).
		Where("status = ?", model.OutboxPending).
		Order("id ASC").
		Limit(batchSize).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// RetryUpdate 投递失败，记录重试次数
func (r *OutboxRepository) RetryUpdate(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.Outbox{}).Where("id = ?", id).
		Updates(map[string]any{"status": model.OutboxFailed, "retry": gorm.Expr("retry + 1")}).Error
}

// SuccessUpdate 投递成功
func (r *OutboxRepository) SuccessUpdate(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.Outbox{}).Where("id = ?", id).
		Update("status", model.OutboxSent).Error
}

// Requeue 把失败且未超过重试上限的事件重新置为待投递
func (r *OutboxRepository) Requeue(ctx context.Context, maxRetry int) (int64, error) {
	tx := r.DB.WithContext(ctx).Model(&model.Outbox{}).
		Where("status = ? AND retry < ?", model.OutboxFailed, maxRetry).
		Update("status", model.OutboxPending)
	return tx.RowsAffected, tx.Error
}

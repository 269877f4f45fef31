package models

import (
	"context"
	"time"

	"github.com/phamnguyen125rune/Smart-Warehouse-Management/config"
)

type AuditLog struct {
	ID        int       `gorm:"primary_key" json:"id"`
	UserId    int       `gorm:"not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserId" json:"user,omitempty"`
	Action    string    `gorm:"size:50;not null" json:"action"`
	Entity    string    `gorm:"size:50;not null" json:"entity"`
	EntityId  int       `json:"entity_id"`
	Detail    string    `gorm:"type:text" json:"detail"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// RecordAudit is fire-and-forget; an audit write must never fail a request.
func RecordAudit(userId int, action string, entity string, entityId int, detail string) {
	db := config.GetDB()
	if db == nil {
		return
	}
	entry := AuditLog{
		UserId:   userId,
		Action:   action,
		Entity:   entity,
		EntityId: entityId,
		Detail:   detail,
	}
	if err := db.Create(&entry).Error; err != nil {
		config.LogError(config.GetLogger(), "models", "RecordAudit", action+" "+entity, entityId, err)
	}
}

func GetAuditLogs(ctx context.Context, limit int, offset int) ([]*AuditLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	db := config.GetDB()
	var logs []*AuditLog
	err := db.WithContext(ctx).Preload("User").
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/phamnguyen125rune/Smart-Warehouse-Management/config"
	"github.com/phamnguyen125rune/Smart-Warehouse-Management/utils"
)

const (
	MsgTypeSystem  = "SYSTEM"
	MsgTypeManager = "MANAGER"
	MsgTypeNormal  = "NORMAL"

	BoxInbox  = "ALL"
	BoxSent   = "SENT"
	BoxPinned = "PINNED"

	CategoryGeneral   = "GENERAL"
	CategoryWarehouse = "WAREHOUSE"
	CategoryAccount   = "ACCOUNT"
)

type Notification struct {
	ID          int       `gorm:"primary_key" json:"id"`
	SenderId    *int      `gorm:"index" json:"sender_id"`
	Sender      *User     `gorm:"foreignKey:SenderId" json:"sender,omitempty"`
	RecipientId int       `gorm:"not null;index" json:"recipient_id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Body        string    `gorm:"type:text" json:"body"`
	MsgType     string    `gorm:"size:20;not null;default:NORMAL" json:"msg_type"`
	Category    string    `gorm:"size:20;not null;default:GENERAL" json:"category"`
	LinkTo      string    `gorm:"size:255" json:"link_to"`
	IsRead      *bool     `gorm:"not null;default:false" json:"is_read"`
	IsPinned    *bool     `gorm:"not null;default:false" json:"is_pinned"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type NewNotification struct {
	RecipientId int    `json:"recipient_id" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Body        string `json:"body"`
}

type MailboxPage struct {
	Items       []*Notification `json:"items"`
	Total       int64           `json:"total"`
	Page        int             `json:"page"`
	PerPage     int             `json:"per_page"`
	UnreadTotal int64           `json:"unread_total"`
}

// SendNotification delivers a user-to-user message. Managers' messages are
// flagged so the inbox can highlight them. Sending to yourself is rejected.
func SendNotification(ctx context.Context, senderId int, input *NewNotification) (*Notification, error) {
	if input.RecipientId == senderId {
		return nil, errors.New("cannot send a message to yourself")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, errors.New("title is required")
	}
	if err := utils.ValidateResourceId[User](ctx, input.RecipientId); err != nil {
		return nil, errors.New("recipient does not exist")
	}

	sender, err := GetUser(ctx, senderId)
	if err != nil {
		return nil, err
	}
	msgType := MsgTypeNormal
	if sender.RoleName() == RoleManager {
		msgType = MsgTypeManager
	}

	db := config.GetDB()
	notification := Notification{
		SenderId:    &senderId,
		RecipientId: input.RecipientId,
		Title:       strings.TrimSpace(input.Title),
		Body:        input.Body,
		MsgType:     msgType,
		Category:    CategoryGeneral,
		IsRead:      utils.NewFalse(),
		IsPinned:    utils.NewFalse(),
	}
	if err := db.WithContext(ctx).Create(&notification).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

// CreateSystemNotification drops an automated message with no sender.
func CreateSystemNotification(ctx context.Context, recipientId int, title string, body string, category string, linkTo string) error {
	db := config.GetDB()
	notification := Notification{
		RecipientId: recipientId,
		Title:       title,
		Body:        body,
		MsgType:     MsgTypeSystem,
		Category:    category,
		LinkTo:      linkTo,
		IsRead:      utils.NewFalse(),
		IsPinned:    utils.NewFalse(),
	}
	return db.WithContext(ctx).Create(&notification).Error
}

// BroadcastToRole fans one system message out to every active user
// holding the role.
func BroadcastToRole(ctx context.Context, roleName string, title string, body string, category string, linkTo string) error {
	ids, err := userIdsByRole(ctx, roleName)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := CreateSystemNotification(ctx, id, title, body, category, linkTo); err != nil {
			return err
		}
	}
	return nil
}

// BroadcastToAll delivers a system message to every active user.
func BroadcastToAll(ctx context.Context, title string, body string, category string) error {
	db := config.GetDB()
	var ids []int
	if err := db.WithContext(ctx).Model(&User{}).
		Where("is_active = ?", true).Pluck("id", &ids).Error; err != nil {
		return err
	}
	for _, id := range ids {
		if err := CreateSystemNotification(ctx, id, title, body, category, ""); err != nil {
			return err
		}
	}
	return nil
}

// NotifyManagers is the warehouse-event shorthand for BroadcastToRole.
func NotifyManagers(ctx context.Context, title string, body string, linkTo string) error {
	return BroadcastToRole(ctx, RoleManager, title, body, CategoryWarehouse, linkTo)
}

// GetMailbox pages through a user's messages.
// box: ALL (received), SENT, PINNED. msgType additionally filters received
// messages by SYSTEM / MANAGER / NORMAL.
func GetMailbox(ctx context.Context, userId int, box string, msgType string, page int, perPage int) (*MailboxPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 50 {
		perPage = 10
	}

	db := config.GetDB()
	query := db.WithContext(ctx).Model(&Notification{}).Preload("Sender")

	switch box {
	case BoxSent:
		query = query.Where("sender_id = ?", userId)
	case BoxPinned:
		query = query.Where("recipient_id = ? AND is_pinned = ?", userId, true)
	default:
		query = query.Where("recipient_id = ?", userId)
	}
	if msgType != "" && box != BoxSent {
		query = query.Where("msg_type = ?", msgType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var items []*Notification
	if err := query.Order("created_at DESC").
		Limit(perPage).Offset((page - 1) * perPage).Find(&items).Error; err != nil {
		return nil, err
	}

	unread, err := UnreadCount(ctx, userId)
	if err != nil {
		return nil, err
	}

	return &MailboxPage{
		Items:       items,
		Total:       total,
		Page:        page,
		PerPage:     perPage,
		UnreadTotal: unread,
	}, nil
}

func UnreadCount(ctx context.Context, userId int) (int64, error) {
	return utils.ResourceCountWhere[Notification](ctx, "recipient_id = ? AND is_read = ?", userId, false)
}

// recipientOwned loads a notification and checks the caller owns it.
func recipientOwned(ctx context.Context, userId int, id int) (*Notification, error) {
	db := config.GetDB()
	var notification Notification
	if err := db.WithContext(ctx).First(&notification, id).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	if notification.RecipientId != userId {
		return nil, utils.ErrorRecordNotFound
	}
	return &notification, nil
}

func MarkNotificationRead(ctx context.Context, userId int, id int) error {
	notification, err := recipientOwned(ctx, userId, id)
	if err != nil {
		return err
	}
	db := config.GetDB()
	return db.WithContext(ctx).Model(notification).Update("is_read", true).Error
}

func MarkAllRead(ctx context.Context, userId int) error {
	db := config.GetDB()
	return db.WithContext(ctx).Model(&Notification{}).
		Where("recipient_id = ? AND is_read = ?", userId, false).
		Update("is_read", true).Error
}

func PinNotification(ctx context.Context, userId int, id int, pinned bool) error {
	notification, err := recipientOwned(ctx, userId, id)
	if err != nil {
		return err
	}
	db := config.GetDB()
	return db.WithContext(ctx).Model(notification).Update("is_pinned", pinned).Error
}

func DeleteNotification(ctx context.Context, userId int, id int) error {
	notification, err := recipientOwned(ctx, userId, id)
	if err != nil {
		return err
	}
	db := config.GetDB()
	return db.WithContext(ctx).Delete(notification).Error
}

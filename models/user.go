package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phamnguyen125rune/Smart-Warehouse-Management/config"
	"github.com/phamnguyen125rune/Smart-Warehouse-Management/utils"
)

type User struct {
	ID          int        `gorm:"primary_key" json:"id"`
	EmployeeId  string     `gorm:"size:20;not null;unique;index" json:"employee_id"`
	Password    string     `gorm:"size:200;not null" json:"-"`
	FullName    string     `gorm:"size:100;not null" json:"full_name"`
	Email       *string    `gorm:"size:100;unique" json:"email"`
	Phone       *string    `gorm:"size:20" json:"phone"`
	Address     string     `gorm:"size:255" json:"address"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	AvatarUrl   string     `gorm:"size:255" json:"avatar_url"`
	RoleId      int        `gorm:"not null" json:"role_id"`
	Role        *Role      `gorm:"foreignKey:RoleId" json:"role,omitempty"`
	IsActive    *bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	EmployeeId string `json:"employee_id" binding:"required"`
	Password   string `json:"password" binding:"required"`
	FullName   string `json:"full_name" binding:"required"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	RoleName   string `json:"role"`
}

type UpdateProfileInput struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	DateOfBirth string `json:"date_of_birth"` // 2006-01-02
}

type LoginInput struct {
	EmployeeId string `json:"employee_id" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

type LoginResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

func userTokenSetKey(userId int) string {
	return fmt.Sprintf("user_tokens:%d", userId)
}

func GetUser(ctx context.Context, id int) (*User, error) {
	db := config.GetDB()
	var user User
	if err := db.WithContext(ctx).Preload("Role").First(&user, id).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &user, nil
}

func GetAllUsers(ctx context.Context) ([]*User, error) {
	db := config.GetDB()
	var users []*User
	if err := db.WithContext(ctx).Preload("Role").Order("full_name").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (u *User) RoleName() string {
	if u.Role != nil {
		return u.Role.Name
	}
	return RoleEmployee
}

// Login checks credentials and issues a JWT. The token id is also kept in a
// redis set per user so sessions can be torn down server-side.
func Login(ctx context.Context, input *LoginInput) (*LoginResult, error) {
	db := config.GetDB()

	var user User
	err := db.WithContext(ctx).Preload("Role").
		Where("employee_id = ?", strings.TrimSpace(input.EmployeeId)).First(&user).Error
	if err != nil {
		return nil, errors.New("invalid employee id or password")
	}
	if user.IsActive != nil && !*user.IsActive {
		return nil, errors.New("account is deactivated")
	}
	if err := utils.ComparePassword(user.Password, input.Password); err != nil {
		return nil, errors.New("invalid employee id or password")
	}

	tokenId := uuid.NewString()
	token, err := utils.JwtGenerate(user.ID, user.RoleName(), "password", user.FullName, tokenId)
	if err != nil {
		return nil, err
	}

	if err := config.AddRedisSet(userTokenSetKey(user.ID), tokenId); err != nil {
		config.LogError(config.GetLogger(), "models", "Login", "store token id", user.ID, err)
	}

	return &LoginResult{Token: token, User: &user}, nil
}

// IsSessionAlive reports whether the token id has not been revoked.
// When redis is unavailable the JWT signature alone is trusted.
func IsSessionAlive(userId int, tokenId string) bool {
	members, err := config.GetRedisSetMembers(userTokenSetKey(userId))
	if err != nil || members == nil {
		return true
	}
	for _, m := range members {
		if m == tokenId {
			return true
		}
	}
	return false
}

// DestroySessions drops every live token id of the user, forcing re-login.
func DestroySessions(userId int) error {
	return config.RemoveRedisKey(userTokenSetKey(userId))
}

func Logout(userId int, tokenId string) error {
	return config.RemoveRedisSetMember(userTokenSetKey(userId), tokenId)
}

func (input *NewUser) validate(ctx context.Context) error {
	if err := utils.ValidateUnique[User](ctx, "employee_id", strings.TrimSpace(input.EmployeeId), 0); err != nil {
		return err
	}
	if len(input.Password) < 6 {
		return errors.New("password must be at least 6 characters")
	}
	if input.Email != "" {
		if !utils.IsValidEmail(input.Email) {
			return errors.New("invalid email")
		}
		if err := utils.ValidateUnique[User](ctx, "email", input.Email, 0); err != nil {
			return err
		}
	}
	if input.Phone != "" && !utils.IsValidPhone(input.Phone, "") {
		return errors.New("invalid phone number")
	}
	return nil
}

// CreateUser is manager-only; new accounts default to the employee role.
func CreateUser(ctx context.Context, input *NewUser) (*User, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	roleName := input.RoleName
	if roleName == "" {
		roleName = RoleEmployee
	}
	role, err := roleByName(ctx, roleName)
	if err != nil {
		return nil, errors.New("unknown role " + roleName)
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	user := User{
		EmployeeId: strings.TrimSpace(input.EmployeeId),
		Password:   hashed,
		FullName:   strings.TrimSpace(input.FullName),
		Email:      utils.NilIfEmpty(input.Email),
		Phone:      utils.NilIfEmpty(input.Phone),
		RoleId:     role.ID,
		IsActive:   utils.NewTrue(),
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	user.Role = role
	return &user, nil
}

// ResetPassword sets a new password, kills every live session of the target
// and drops a notice in their inbox.
func ResetPassword(ctx context.Context, userId int, newPassword string) error {
	if len(newPassword) < 6 {
		return errors.New("password must be at least 6 characters")
	}

	db := config.GetDB()
	var user User
	if err := db.WithContext(ctx).First(&user, userId).Error; err != nil {
		return utils.ErrorRecordNotFound
	}

	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := db.WithContext(ctx).Model(&user).Update("password", hashed).Error; err != nil {
		return err
	}

	if err := DestroySessions(userId); err != nil {
		config.LogError(config.GetLogger(), "models", "ResetPassword", "destroy sessions", userId, err)
	}

	if err := CreateSystemNotification(ctx, userId, "Password reset",
		"Your password was reset by a manager. Please sign in again.",
		CategoryAccount, ""); err != nil {
		config.LogError(config.GetLogger(), "models", "ResetPassword", "notify user", userId, err)
	}
	return nil
}

func ChangePassword(ctx context.Context, userId int, oldPassword string, newPassword string) error {
	db := config.GetDB()
	var user User
	if err := db.WithContext(ctx).First(&user, userId).Error; err != nil {
		return utils.ErrorRecordNotFound
	}
	if err := utils.ComparePassword(user.Password, oldPassword); err != nil {
		return errors.New("current password is incorrect")
	}
	if len(newPassword) < 6 {
		return errors.New("password must be at least 6 characters")
	}

	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Model(&user).Update("password", hashed).Error
}

// DeactivateUser disables the account and revokes its sessions.
func DeactivateUser(ctx context.Context, userId int) error {
	db := config.GetDB()
	var user User
	if err := db.WithContext(ctx).First(&user, userId).Error; err != nil {
		return utils.ErrorRecordNotFound
	}
	if err := db.WithContext(ctx).Model(&user).Update("is_active", false).Error; err != nil {
		return err
	}
	return DestroySessions(userId)
}

func ActivateUser(ctx context.Context, userId int) error {
	db := config.GetDB()
	var user User
	if err := db.WithContext(ctx).First(&user, userId).Error; err != nil {
		return utils.ErrorRecordNotFound
	}
	return db.WithContext(ctx).Model(&user).Update("is_active", true).Error
}

func UpdateProfile(ctx context.Context, userId int, input *UpdateProfileInput) (*User, error) {
	db := config.GetDB()
	var user User
	if err := db.WithContext(ctx).Preload("Role").First(&user, userId).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	if input.Email != "" {
		if !utils.IsValidEmail(input.Email) {
			return nil, errors.New("invalid email")
		}
		if err := utils.ValidateUnique[User](ctx, "email", input.Email, userId); err != nil {
			return nil, err
		}
		user.Email = &input.Email
	}
	if input.Phone != "" {
		if !utils.IsValidPhone(input.Phone, "") {
			return nil, errors.New("invalid phone number")
		}
		user.Phone = &input.Phone
	}
	if input.FullName != "" {
		user.FullName = strings.TrimSpace(input.FullName)
	}
	if input.Address != "" {
		user.Address = input.Address
	}
	if input.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", input.DateOfBirth)
		if err != nil {
			return nil, errors.New("date of birth must be YYYY-MM-DD")
		}
		user.DateOfBirth = &dob
	}

	if err := db.WithContext(ctx).Save(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func UpdateAvatar(ctx context.Context, userId int, avatarUrl string) error {
	db := config.GetDB()
	var user User
	if err := db.WithContext(ctx).First(&user, userId).Error; err != nil {
		return utils.ErrorRecordNotFound
	}
	return db.WithContext(ctx).Model(&user).Update("avatar_url", avatarUrl).Error
}

// userIdsByRole lists active users holding the role.
func userIdsByRole(ctx context.Context, roleName string) ([]int, error) {
	db := config.GetDB()
	var ids []int
	err := db.WithContext(ctx).Model(&User{}).
		Joins("JOIN roles ON roles.id = users.role_id").
		Where("roles.name = ? AND users.is_active = ?", roleName, true).
		Pluck("users.id", &ids).Error
	return ids, err
}

package utils

import (
	"context"
	"errors"
	"reflect"
	"regexp"

	"github.com/phamnguyen125rune/Smart-Warehouse-Management/config"
	"github.com/ttacon/libphonenumber"
)

// check if id exists, return RecordNotFound error
func ValidateResourceId[T any](ctx context.Context, id interface{}) error {
	count, err := ResourceCountWhere[T](ctx, "id = ?", id)
	if err != nil {
		return err
	}
	if count <= 0 {
		return ErrorRecordNotFound
	}

	return nil
}

func ValidateUnique[T any](ctx context.Context, column string, value interface{}, exceptId interface{}) error {
	var count int64
	var err error
	if reflect.ValueOf(exceptId).IsZero() {
		count, err = ResourceCountWhere[T](ctx, column+" = ?", value)
	} else {
		count, err = ResourceCountWhere[T](ctx, column+" = ? AND NOT id = ?", value, exceptId)
	}

	if err != nil {
		return err
	}
	if count > 0 {
		return errors.New("duplicate " + column)
	}
	return nil
}

// count records matching WHERE $condition
func ResourceCountWhere[T any](ctx context.Context, condition string, value ...interface{}) (int64, error) {
	var model T

	db := config.GetDB()
	var count int64
	if err := db.WithContext(ctx).Model(&model).Where(condition, value...).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// IsValidPhone parses with a default region so local numbers pass too.
func IsValidPhone(number string, region string) bool {
	if region == "" {
		region = "VN"
	}
	parsed, err := libphonenumber.Parse(number, region)
	if err != nil {
		return false
	}
	return libphonenumber.IsValidNumber(parsed)
}

func NilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func NewTrue() *bool {
	b := true
	return &b
}

func NewFalse() *bool {
	b := false
	return &b
}

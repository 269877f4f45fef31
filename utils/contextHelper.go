package utils

import "context"

type contextKey string

const (
	ContextKeyUserId    contextKey = "user_id"
	ContextKeyUserName  contextKey = "user_name"
	ContextKeyRole      contextKey = "role"
	ContextKeyLoginType contextKey = "login_type"
	ContextKeyTokenId   contextKey = "token_id"
)

func getString(ctx context.Context, key contextKey) (string, bool) {
	v, ok := ctx.Value(key).(string)
	return v, ok
}

func getInt(ctx context.Context, key contextKey) (int, bool) {
	v, ok := ctx.Value(key).(int)
	return v, ok
}

func GetUserIdFromContext(ctx context.Context) (int, bool) {
	return getInt(ctx, ContextKeyUserId)
}

func GetUserNameFromContext(ctx context.Context) (string, bool) {
	return getString(ctx, ContextKeyUserName)
}

func GetRoleFromContext(ctx context.Context) (string, bool) {
	return getString(ctx, ContextKeyRole)
}

func GetLoginTypeFromContext(ctx context.Context) (string, bool) {
	return getString(ctx, ContextKeyLoginType)
}

func GetTokenIdFromContext(ctx context.Context) (string, bool) {
	return getString(ctx, ContextKeyTokenId)
}

func SetUserIdInContext(ctx context.Context, userId int) context.Context {
	return context.WithValue(ctx, ContextKeyUserId, userId)
}

func SetUserNameInContext(ctx context.Context, userName string) context.Context {
	return context.WithValue(ctx, ContextKeyUserName, userName)
}

func SetRoleInContext(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, ContextKeyRole, role)
}

func SetLoginTypeInContext(ctx context.Context, loginType string) context.Context {
	return context.WithValue(ctx, ContextKeyLoginType, loginType)
}

func SetTokenIdInContext(ctx context.Context, tokenId string) context.Context {
	return context.WithValue(ctx, ContextKeyTokenId, tokenId)
}

package models

import (
	"context"
	"errors"
	"fmt"
	"html"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/storefront_backend/config"
	"github.com/mmdatafocus/storefront_backend/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type User struct {
	ID        int       `gorm:"primary_key" json:"id"`
	StoreId   string    `gorm:"index" json:"store_id"`
	Username  string    `gorm:"size:100;not null;unique" json:"username" binding:"required"`
	Name      string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Email     *string   `gorm:"size:100;unique" json:"email"`
	Phone     string    `gorm:"size:20" json:"phone"`
	ImageUrl  string    `json:"image_url"`
	Password  string    `gorm:"size:255;not null" json:"password"`
	IsActive  *bool     `gorm:"not null" json:"is_active"`
	Role      UserRole  `gorm:"type:enum('admin','owner','staff');default:'staff'" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	Username string   `json:"username" binding:"required"`
	Name     string   `json:"name" binding:"required"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone"`
	ImageUrl string   `json:"image_url"`
	Password string   `json:"password" binding:"required"`
	IsActive *bool    `json:"is_active" binding:"required"`
	Role     UserRole `json:"role" binding:"required"`
}

/*
caches:
	User:$username
	Token:$token     => username
	Tokens:$username => set of live tokens
*/

func (user User) RemoveInstanceRedis() error {
	if err := config.RemoveRedisKey("User:" + user.Username); err != nil {
		return err
	}
	return nil
}

func (user User) RemoveAllRedis() error {
	if err := config.RemoveRedisKey("UserList:" + user.StoreId); err != nil {
		return err
	}
	return nil
}

type LoginInfo struct {
	Token     string `json:"token"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	StoreId   string `json:"store_id"`
	StoreName string `json:"store_name"`
	StoreSlug string `json:"store_slug"`
	Currency  string `json:"currency"`
	Timezone  string `json:"timezone"`
}

func (result *User) PrepareGive() {
	result.Password = ""
}

func sessionLifespan() time.Duration {
	hours, err := strconv.Atoi(os.Getenv("SESSION_TTL_HOURS"))
	if err != nil || hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

// destroy current session
func Logout(ctx context.Context) (bool, error) {
	token, ok := utils.GetTokenFromContext(ctx)
	if !ok || token == "" {
		return false, errors.New("token is required")
	}
	err := config.RemoveRedisKey("Token:" + fmt.Sprint(token))
	if err != nil {
		return false, nil
	}
	// remove current token from tokens list
	username, ok := utils.GetUsernameFromContext(ctx)
	if !ok || username == "" {
		return false, errors.New("user not found")
	}
	if err := config.RemoveRedisSetMember("Tokens:"+username, token); err != nil {
		return false, err
	}
	return true, nil
}

func Login(ctx context.Context, username string, password string) (*LoginInfo, error) {

	db := config.GetDB()
	var err error
	var result LoginInfo

	user := User{}

	// get User info
	exists, err := config.GetRedisObject("User:"+username, &user)
	if err != nil {
		return &result, err
	}
	if !exists {
		err = db.WithContext(ctx).Model(&User{}).Where("username = ?", username).Take(&user).Error

		if err != nil {
			return &result, errors.New("invalid username or password")
		}
	}

	// check login credentials
	err = utils.ComparePassword(user.Password, password)

	if err != nil && err == bcrypt.ErrMismatchedHashAndPassword {
		return &result, errors.New("invalid username or password")
	}

	isActive := *user.IsActive
	if !isActive {
		return &result, errors.New("user is disabled")
	}

	// generate token & response
	token := uuid.New()
	result.Token = token.String()
	result.Name = user.Username
	result.Role = string(user.Role)

	if user.Role != UserRoleAdmin {
		store, err := GetStoreById(ctx, user.StoreId)
		if err != nil {
			return nil, err
		}
		if !*store.IsActive {
			return &result, errors.New("store is disabled")
		}
		result.StoreId = user.StoreId
		result.StoreName = store.Name
		result.StoreSlug = store.Slug
		result.Currency = store.Currency
		result.Timezone = store.Timezone
	}

	// add new token to the user's tokens set
	if err := config.AddRedisSet("Tokens:"+user.Username, token.String()); err != nil {
		return nil, err
	}
	// store token in redis
	if err := config.SetRedisValue("Token:"+token.String(), user.Username, sessionLifespan()); err != nil {
		return &result, err
	}

	return &result, nil
}

// GetUserByUsername retrieves the user from redis or db, caching the result.
func GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	exists, err := config.GetRedisObject("User:"+username, &user)
	if err != nil {
		return nil, err
	}

	if !exists {
		db := config.GetDB()
		if err := db.WithContext(ctx).Model(&User{}).Where("username = ?", username).Take(&user).Error; err != nil {
			return nil, err
		}

		if err := config.SetRedisObject("User:"+user.Username, &user, sessionLifespan()); err != nil {
			return nil, err
		}
	}
	return &user, nil
}

// GetSessionUser returns the logged-in user with the password stripped.
func GetSessionUser(ctx context.Context) (*User, error) {
	username, ok := utils.GetUsernameFromContext(ctx)
	if !ok || username == "" {
		return nil, errors.New("access denied")
	}
	user, err := GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	user.PrepareGive()
	return user, nil
}

func GetUsers(ctx context.Context) ([]*User, error) {

	db := config.GetDB()
	var results []*User

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}

	if err := db.WithContext(ctx).Where("store_id = ?", storeId).Find(&results).Error; err != nil {
		return results, errors.New("no user")
	}

	for i, u := range results {
		u.Password = ""
		results[i] = u
	}

	return results, nil
}

func CreateUser(ctx context.Context, input *NewUser) (*User, error) {

	db := config.GetDB()
	var count int64

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}
	if input.Role == UserRoleAdmin {
		return nil, errors.New("invalid user role")
	}

	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return &User{}, errors.New("invalid email address")
	}

	err := db.WithContext(ctx).Model(&User{}).Where("username = ?", input.Username).Or("email = ?", input.Email).Count(&count).Error
	if err != nil {
		return &User{}, err
	}
	if count > 0 {
		return &User{}, errors.New("duplicate username or email")
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return &User{}, err
	}
	input.Email = strings.ToLower(input.Email)

	user := User{
		Username: html.EscapeString(strings.TrimSpace(input.Username)),
		StoreId:  storeId,
		Name:     input.Name,
		Email:    utils.NilIfEmpty(input.Email),
		Phone:    input.Phone,
		ImageUrl: input.ImageUrl,
		Password: string(hashedPassword),
		IsActive: input.IsActive,
		Role:     input.Role,
	}

	err = db.WithContext(ctx).Create(&user).Error
	if err != nil {
		return &User{}, err
	}
	if err := user.RemoveAllRedis(); err != nil {
		return nil, err
	}
	user.Password = ""
	return &user, nil
}

// CreateDefaultOwner seeds the owner account for a freshly created store.
// The account starts with a random password; the owner sets a real one
// through the password reset flow.
func CreateDefaultOwner(tx *gorm.DB, ctx context.Context, storeId string, email string, name string) (*User, error) {

	if !utils.IsValidEmail(email) {
		return nil, errors.New("invalid email address")
	}
	email = strings.ToLower(email)

	var count int64
	if err := tx.WithContext(ctx).Model(&User{}).
		Where("username = ?", email).Or("email = ?", email).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("duplicate username or email")
	}

	hashedPassword, err := utils.HashPassword(uuid.NewString())
	if err != nil {
		return nil, err
	}

	owner := User{
		Username: email,
		StoreId:  storeId,
		Name:     name,
		Email:    utils.NilIfEmpty(email),
		Password: string(hashedPassword),
		IsActive: utils.NewTrue(),
		Role:     UserRoleOwner,
	}
	if err := tx.WithContext(ctx).Create(&owner).Error; err != nil {
		return nil, err
	}
	owner.Password = ""
	return &owner, nil
}

// InviteUser creates a disabled staff account and returns a short-lived invite token.
// The account activates when the invitee sets a password through AcceptInvite.
func InviteUser(ctx context.Context, username string, name string, email string, role UserRole) (string, error) {

	placeholder := uuid.NewString()
	user, err := CreateUser(ctx, &NewUser{
		Username: username,
		Name:     name,
		Email:    email,
		Password: placeholder,
		IsActive: utils.NewFalse(),
		Role:     role,
	})
	if err != nil {
		return "", err
	}

	return utils.JwtGenerate(user.ID, user.StoreId, "invite")
}

func AcceptInvite(ctx context.Context, token string, password string) (*User, error) {

	validated, err := utils.JwtValidate(token)
	if err != nil || !validated.Valid {
		return nil, errors.New("invalid or expired invite token")
	}
	claims, ok := validated.Claims.(*utils.JwtCustomClaim)
	if !ok || claims.Purpose != "invite" {
		return nil, errors.New("invalid or expired invite token")
	}

	db := config.GetDB()
	var user User
	if err := db.WithContext(ctx).First(&user, claims.ID).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	if err := db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"Password": string(hashedPassword),
		"IsActive": true,
	}).Error; err != nil {
		return nil, err
	}
	if err := user.RemoveInstanceRedis(); err != nil {
		return nil, err
	}
	user.PrepareGive()
	return &user, nil
}

// RequestPasswordReset returns a short-lived reset token for the given username.
// The caller is responsible for delivering it (mail delivery sits outside this API).
func RequestPasswordReset(ctx context.Context, username string) (string, error) {
	user, err := GetUserByUsername(ctx, username)
	if err != nil {
		return "", errors.New("user not found")
	}
	return utils.JwtGenerate(user.ID, user.StoreId, "reset")
}

func ResetPassword(ctx context.Context, token string, newPassword string) (*User, error) {

	validated, err := utils.JwtValidate(token)
	if err != nil || !validated.Valid {
		return nil, errors.New("invalid or expired reset token")
	}
	claims, ok := validated.Claims.(*utils.JwtCustomClaim)
	if !ok || claims.Purpose != "reset" {
		return nil, errors.New("invalid or expired reset token")
	}

	db := config.GetDB()
	var user User
	if err := db.WithContext(ctx).First(&user, claims.ID).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	hashedPassword, err := utils.HashPassword(newPassword)
	if err != nil {
		return nil, err
	}

	tx := db.Begin()
	if err := tx.WithContext(ctx).Model(&user).UpdateColumn("password", string(hashedPassword)).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := user.RemoveInstanceRedis(); err != nil {
		tx.Rollback()
		return nil, err
	}
	// destroying all session tokens
	if err := user.DestroyAllSessions(ctx); err != nil {
		tx.Rollback()
		return nil, err
	}
	user.PrepareGive()
	return &user, tx.Commit().Error
}

func UpdateUser(ctx context.Context, id int, name string, email string, phone string, imageUrl string) (*User, error) {

	db := config.GetDB()

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}

	var user User
	if err := db.WithContext(ctx).Where("store_id = ?", storeId).First(&user, id).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	if email != "" && !utils.IsValidEmail(email) {
		return nil, errors.New("invalid email address")
	}
	if email != "" {
		var count int64
		if err := db.WithContext(ctx).Model(&User{}).
			Where("email = ?", strings.ToLower(email)).
			Not("id = ?", id).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, errors.New("duplicate email")
		}
	}

	if err := db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"Name":     name,
		"Email":    utils.NilIfEmpty(strings.ToLower(email)),
		"Phone":    phone,
		"ImageUrl": imageUrl,
	}).Error; err != nil {
		return nil, err
	}
	if err := RemoveRedisBoth(user); err != nil {
		return nil, err
	}
	user.PrepareGive()
	return &user, nil
}

func DeleteUser(ctx context.Context, id int) (*User, error) {

	db := config.GetDB()

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}

	var user User
	if err := db.WithContext(ctx).Where("store_id = ?", storeId).First(&user, id).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	if user.Role == UserRoleOwner {
		return nil, errors.New("cannot delete store owner")
	}

	if err := db.WithContext(ctx).Delete(&user).Error; err != nil {
		return nil, err
	}

	if err := user.DestroyAllSessions(ctx); err != nil {
		return nil, err
	}
	if err := RemoveRedisBoth(user); err != nil {
		return nil, err
	}
	user.PrepareGive()
	return &user, nil
}

func ToggleActiveUser(ctx context.Context, id int, isActive bool) (*User, error) {
	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}

	user, err := ToggleActiveModel[User](ctx, storeId, id, isActive)
	if err != nil {
		return nil, err
	}
	if !isActive {
		if err := (*user).DestroyAllSessions(ctx); err != nil {
			return nil, err
		}
	}
	return user, nil
}

func (user *User) DestroyAllSessions(ctx context.Context) error {
	allTokens, err := config.GetRedisSetMembers("Tokens:" + user.Username)
	if err != nil {
		return err
	}
	for _, token := range allTokens {
		if err := config.RemoveRedisKey("Token:" + token); err != nil {
			return err
		}
	}
	if err := config.RemoveRedisKey("Tokens:" + user.Username); err != nil {
		return err
	}

	return nil
}

func ChangePassword(ctx context.Context, oldPassword string, newPassword string) (*User, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}

	var user User
	db := config.GetDB()
	if err := db.WithContext(ctx).First(&user, userId).Error; err != nil {
		return nil, err
	}
	// check oldPassword
	if err := utils.ComparePassword(user.Password, oldPassword); err != nil {
		return nil, errors.New("old password is wrong")
	}

	//turn password into hash
	hashedPassword, err := utils.HashPassword(newPassword)
	if err != nil {
		return nil, err
	}
	newPassword = string(hashedPassword)

	tx := db.Begin()
	if err := tx.WithContext(ctx).Model(&user).UpdateColumn("password", newPassword).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := config.RemoveRedisKey("User:" + user.Username); err != nil {
		tx.Rollback()
		return nil, err
	}

	// destroying all session tokens
	if err := user.DestroyAllSessions(ctx); err != nil {
		tx.Rollback()
		return nil, err
	}

	return &user, tx.Commit().Error
}

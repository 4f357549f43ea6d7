package model

import (
	"time"
)

type User struct {
	BaseModel
	UserId    string `gorm:"column:user_id" json:"userId"`
	Username  string `gorm:"column:username" json:"username"`
	FirstName string `gorm:"column:first_name" json:"firstName"`
	LastName  string `gorm:"column:last_name" json:"lastName"`
	Password  string `gorm:"column:password" json:"-"`
	Email     string `gorm:"column:email;uniqueIndex" json:"email"`
	Phone     string `gorm:"column:phone" json:"phone"`
	IsActive  bool   `gorm:"column:is_active" json:"isActive"`

	// email verification state, owned by the verification service. The
	// token is a pointer so rows without a pending verification store
	// NULL and stay out of the unique index.
	IsVerified        bool       `gorm:"column:is_verified" json:"isVerified"`
	VerificationCode  string     `gorm:"column:verification_code" json:"-"`
	VerificationToken *string    `gorm:"column:verification_token;uniqueIndex" json:"-"`
	CodeExpiresAt     *time.Time `gorm:"column:code_expires_at" json:"-"`
	Attempts          int        `gorm:"column:attempts" json:"-"`
	LastSentAt        *time.Time `gorm:"column:last_sent_at" json:"-"`
}

func (User) TableName() string {
	return "t_user"
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	name := u.FirstName + " " + u.LastName
	if name == " " {
		return u.Username
	}
	return name
}

type Register struct {
	UserId    string    `json:"userId"`
	Username  string    `json:"username"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"-"`
}

type Login struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResp struct {
	UserInfo UserInfo          `json:"userInfo"`
	Token    map[string]string `json:"token"`
}

type UserInfo struct {
	UserId    string `json:"userId"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// TokenInfo token information stored in Redis
type TokenInfo struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpireAt     int64  `json:"expireAt"`
	CreateAt     int64  `json:"createAt"`
}

// VerifyCodeReq verify email with the numeric one-time code.
type VerifyCodeReq struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// ResendVerificationReq request a fresh verification email.
type ResendVerificationReq struct {
	Email string `json:"email"`
}

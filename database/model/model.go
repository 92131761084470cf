package model

import "time"

// TimeLayout is the ISO-ish text form all timestamps are stored in,
// matching sqlite's datetime('now').
const TimeLayout = "2006-01-02 15:04:05"

// Now returns the current UTC time in TimeLayout form.
func Now() string {
	return time.Now().UTC().Format(TimeLayout)
}

type User struct {
	Id           int    `json:"id" gorm:"primaryKey;autoIncrement"`
	Username     string `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"column:password_hash;not null"`
	InvitedBy    *int   `json:"invitedBy"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

// UserInvite is a single-use token permitting self-registration.
// AcceptedAt and AcceptedUserId are set together, exactly once; a non-empty
// AcceptedAt is terminal. An empty ExpiresAt never expires.
type UserInvite struct {
	Id             int    `json:"id" gorm:"primaryKey;autoIncrement"`
	Token          string `json:"token" gorm:"uniqueIndex;not null"`
	Email          string `json:"email"`
	InvitedBy      *int   `json:"invitedBy"`
	ExpiresAt      string `json:"expiresAt"`
	AcceptedAt     string `json:"acceptedAt"`
	AcceptedUserId *int   `json:"acceptedUserId"`
	CreatedAt      string `json:"createdAt"`
}

// PasswordResetToken is a single-use token permitting a user's password to
// be replaced without knowing the old one. A non-empty UsedAt is terminal.
type PasswordResetToken struct {
	Id        int    `json:"id" gorm:"primaryKey;autoIncrement"`
	Token     string `json:"token" gorm:"uniqueIndex;not null"`
	UserId    int    `json:"userId" gorm:"not null"`
	CreatedBy *int   `json:"createdBy"`
	ExpiresAt string `json:"expiresAt"`
	UsedAt    string `json:"usedAt"`
	CreatedAt string `json:"createdAt"`
}

type Setting struct {
	Id    int    `json:"id" form:"id" gorm:"primaryKey;autoIncrement"`
	Key   string `json:"key" form:"key" gorm:"uniqueIndex"`
	Value string `json:"value" form:"value"`
}

type Firearm struct {
	Id            int      `json:"id" form:"id" gorm:"primaryKey;autoIncrement"`
	Make          string   `json:"make" form:"make" gorm:"not null"`
	Model         string   `json:"model" form:"model" gorm:"not null"`
	Serial        string   `json:"serial" form:"serial"`
	Caliber       string   `json:"caliber" form:"caliber"`
	Type          string   `json:"type" form:"type" gorm:"column:type"`
	PurchaseDate  string   `json:"purchaseDate" form:"purchase_date"`
	PurchasePrice *float64 `json:"purchasePrice" form:"purchase_price"`
	Condition     string   `json:"condition" form:"condition"`
	Location      string   `json:"location" form:"location"`
	Status        string   `json:"status" form:"status"`
	Notes         string   `json:"notes" form:"notes"`
	GunWarranty   bool     `json:"gunWarranty" form:"gun_warranty"`
	BuyerName     string   `json:"buyerName" form:"buyer_name"`
	BuyerAddress  string   `json:"buyerAddress" form:"buyer_address"`
	SoldDate      string   `json:"soldDate" form:"sold_date"`
	CreatedAt     string   `json:"createdAt"`
	UpdatedAt     string   `json:"updatedAt"`
}

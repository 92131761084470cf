package service

import (
	"time"

	"github.com/gogorichielab/ppcollection/database"
	"github.com/gogorichielab/ppcollection/database/model"
	"github.com/gogorichielab/ppcollection/logger"
	"github.com/gogorichielab/ppcollection/util/crypto"
	"github.com/gogorichielab/ppcollection/util/random"

	"gorm.io/gorm"
)

// tokenBytes is the entropy of invite and reset tokens (192 bits, hex-encoded).
const tokenBytes = 24

// SafeUser is the sanitized user projection handed to controllers.
// It never carries the password hash.
type SafeUser struct {
	Id        int    `json:"id"`
	Username  string `json:"username"`
	InvitedBy *int   `json:"invitedBy"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func toSafeUser(u *model.User) *SafeUser {
	if u == nil {
		return nil
	}
	return &SafeUser{
		Id:        u.Id,
		Username:  u.Username,
		InvitedBy: u.InvitedBy,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// InviteView is an invite joined with the inviter's username for display.
type InviteView struct {
	model.UserInvite
	InviterUsername string `json:"inviterUsername"`
}

// ResetTokenView is a reset token joined with the target user's username.
type ResetTokenView struct {
	model.PasswordResetToken
	Username string `json:"username"`
}

// UserService owns the users, user_invites and password_reset_tokens
// tables. Invite acceptance and reset-token use are the only operations
// that need atomicity and run inside a single transaction.
type UserService struct{}

func (s *UserService) FindById(id int) (*model.User, error) {
	return s.findById(database.GetDB(), id)
}

func (s *UserService) findById(db *gorm.DB, id int) (*model.User, error) {
	user := &model.User{}
	err := db.Model(model.User{}).Where("id = ?", id).First(user).Error
	if database.IsNotFound(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return user, nil
}

// FindSafeById returns the sanitized projection, or (nil, nil) when absent.
func (s *UserService) FindSafeById(id int) (*SafeUser, error) {
	user, err := s.FindById(id)
	if err != nil {
		return nil, err
	}
	return toSafeUser(user), nil
}

// FindByUsername looks a user up by exact, case-sensitive match.
func (s *UserService) FindByUsername(username string) (*model.User, error) {
	return s.findByUsername(database.GetDB(), username)
}

func (s *UserService) findByUsername(db *gorm.DB, username string) (*model.User, error) {
	user := &model.User{}
	err := db.Model(model.User{}).Where("username = ?", username).First(user).Error
	if database.IsNotFound(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return user, nil
}

// Create inserts a new user and returns the sanitized projection.
// Fails with ErrUsernameTaken when the username already exists.
func (s *UserService) Create(username string, passwordHash string, invitedBy *int) (*SafeUser, error) {
	return s.create(database.GetDB(), username, passwordHash, invitedBy)
}

func (s *UserService) create(db *gorm.DB, username string, passwordHash string, invitedBy *int) (*SafeUser, error) {
	existing, err := s.findByUsername(db, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	now := model.Now()
	user := &model.User{
		Username:     username,
		PasswordHash: passwordHash,
		InvitedBy:    invitedBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := db.Create(user).Error; err != nil {
		return nil, err
	}
	return toSafeUser(user), nil
}

// CheckUser validates credentials against the user table. Returns nil on
// any failure; the bcrypt comparison is constant-time.
func (s *UserService) CheckUser(username string, password string) *model.User {
	user, err := s.FindByUsername(username)
	if err != nil {
		logger.Warning("check user err:", err)
		return nil
	}
	if user == nil {
		return nil
	}
	if !crypto.CheckPasswordHash(user.PasswordHash, password) {
		return nil
	}
	return user
}

// UpdatePassword replaces the stored hash unconditionally; verifying the
// current password first is the caller's job.
func (s *UserService) UpdatePassword(userId int, newHash string) error {
	return s.updatePassword(database.GetDB(), userId, newHash)
}

func (s *UserService) updatePassword(db *gorm.DB, userId int, newHash string) error {
	return db.Model(model.User{}).
		Where("id = ?", userId).
		Updates(map[string]any{"password_hash": newHash, "updated_at": model.Now()}).
		Error
}

// ChangePassword verifies the current password and applies the length
// policy before storing the new hash.
func (s *UserService) ChangePassword(userId int, currentPassword string, newPassword string) error {
	user, err := s.FindById(userId)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if !crypto.CheckPasswordHash(user.PasswordHash, currentPassword) {
		return ErrWrongPassword
	}
	if len(newPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}

	newHash, err := crypto.HashPasswordAsBcrypt(newPassword)
	if err != nil {
		return err
	}
	return s.UpdatePassword(userId, newHash)
}

// UpdateUsername renames a user. Uniqueness is case-sensitive exact match,
// consistent with the unique index and the lookup queries.
func (s *UserService) UpdateUsername(userId int, newUsername string) error {
	db := database.GetDB()
	existing, err := s.findByUsername(db, newUsername)
	if err != nil {
		return err
	}
	if existing != nil && existing.Id != userId {
		return ErrUsernameTaken
	}
	return db.Model(model.User{}).
		Where("id = ?", userId).
		Updates(map[string]any{"username": newUsername, "updated_at": model.Now()}).
		Error
}

// ListUsers returns every user as a sanitized projection, ordered by id.
func (s *UserService) ListUsers() ([]*SafeUser, error) {
	var users []model.User
	err := database.GetDB().Model(model.User{}).Order("id ASC").Find(&users).Error
	if err != nil {
		return nil, err
	}
	out := make([]*SafeUser, 0, len(users))
	for i := range users {
		out = append(out, toSafeUser(&users[i]))
	}
	return out, nil
}

// CreateInvite generates an unguessable token and persists the invite.
// The returned view is the only place the creator sees the token.
func (s *UserService) CreateInvite(email string, invitedBy *int, expiresAt string) (*InviteView, error) {
	invite := &model.UserInvite{
		Token:     random.Token(tokenBytes),
		Email:     email,
		InvitedBy: invitedBy,
		ExpiresAt: expiresAt,
		CreatedAt: model.Now(),
	}
	if err := database.GetDB().Create(invite).Error; err != nil {
		return nil, err
	}
	return s.FindInviteByToken(invite.Token)
}

// FindInviteByToken returns the invite with the inviter's username joined,
// or (nil, nil) when absent.
func (s *UserService) FindInviteByToken(token string) (*InviteView, error) {
	return s.findInviteByToken(database.GetDB(), token)
}

func (s *UserService) findInviteByToken(db *gorm.DB, token string) (*InviteView, error) {
	view := &InviteView{}
	err := db.Model(model.UserInvite{}).
		Select("user_invites.*, inviter.username AS inviter_username").
		Joins("LEFT JOIN users inviter ON inviter.id = user_invites.invited_by").
		Where("user_invites.token = ?", token).
		First(view).Error
	if database.IsNotFound(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return view, nil
}

// AcceptInvite redeems an invite and creates the new user as one atomic
// unit. On any failure no user is created and the invite stays untouched.
func (s *UserService) AcceptInvite(token string, username string, password string) (*SafeUser, error) {
	passwordHash, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return nil, err
	}

	var safeUser *SafeUser
	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		invite, err := s.findInviteByToken(tx, token)
		if err != nil {
			return err
		}
		if invite == nil {
			return ErrInviteNotFound
		}
		if invite.AcceptedAt != "" {
			return ErrInviteAlreadyUsed
		}
		if isExpired(invite.ExpiresAt) {
			return ErrInviteExpired
		}

		safeUser, err = s.create(tx, username, passwordHash, invite.InvitedBy)
		if err != nil {
			return err
		}

		return tx.Model(model.UserInvite{}).
			Where("id = ?", invite.Id).
			Updates(map[string]any{
				"accepted_at":      model.Now(),
				"accepted_user_id": safeUser.Id,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return safeUser, nil
}

// CreatePasswordResetToken issues a single-use reset token for a user,
// with the same token discipline as invites.
func (s *UserService) CreatePasswordResetToken(userId int, createdBy *int, expiresAt string) (*ResetTokenView, error) {
	user, err := s.FindById(userId)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	token := &model.PasswordResetToken{
		Token:     random.Token(tokenBytes),
		UserId:    userId,
		CreatedBy: createdBy,
		ExpiresAt: expiresAt,
		CreatedAt: model.Now(),
	}
	if err := database.GetDB().Create(token).Error; err != nil {
		return nil, err
	}
	return s.FindPasswordResetToken(token.Token)
}

// FindPasswordResetToken returns the token with the target user's username
// joined, or (nil, nil) when absent.
func (s *UserService) FindPasswordResetToken(token string) (*ResetTokenView, error) {
	return s.findPasswordResetToken(database.GetDB(), token)
}

func (s *UserService) findPasswordResetToken(db *gorm.DB, token string) (*ResetTokenView, error) {
	view := &ResetTokenView{}
	err := db.Model(model.PasswordResetToken{}).
		Select("password_reset_tokens.*, u.username AS username").
		Joins("JOIN users u ON u.id = password_reset_tokens.user_id").
		Where("password_reset_tokens.token = ?", token).
		First(view).Error
	if database.IsNotFound(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return view, nil
}

// UsePasswordResetToken replaces the target user's password and marks the
// token used as one atomic unit.
func (s *UserService) UsePasswordResetToken(token string, newPassword string) (*SafeUser, error) {
	newHash, err := crypto.HashPasswordAsBcrypt(newPassword)
	if err != nil {
		return nil, err
	}

	var safeUser *SafeUser
	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		resetToken, err := s.findPasswordResetToken(tx, token)
		if err != nil {
			return err
		}
		if resetToken == nil {
			return ErrResetTokenNotFound
		}
		if resetToken.UsedAt != "" {
			return ErrResetTokenUsed
		}
		if isExpired(resetToken.ExpiresAt) {
			return ErrResetTokenExpired
		}

		if err := s.updatePassword(tx, resetToken.UserId, newHash); err != nil {
			return err
		}

		if err := tx.Model(model.PasswordResetToken{}).
			Where("id = ?", resetToken.Id).
			Update("used_at", model.Now()).Error; err != nil {
			return err
		}

		user, err := s.findById(tx, resetToken.UserId)
		if err != nil {
			return err
		}
		safeUser = toSafeUser(user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return safeUser, nil
}

// isExpired checks an expiry timestamp against wall-clock now. An empty
// value never expires. A malformed value is treated as non-expiring so
// corrupt data cannot lock anyone out, but it is logged rather than
// silently accepted.
func isExpired(expiresAt string) bool {
	if expiresAt == "" {
		return false
	}
	t, err := time.Parse(model.TimeLayout, expiresAt)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, expiresAt); err2 == nil {
			return t2.Before(time.Now())
		}
		logger.Warningf("malformed expiry timestamp %q, treating as non-expiring", expiresAt)
		return false
	}
	return t.Before(time.Now().UTC())
}

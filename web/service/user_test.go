package service

import (
	"testing"
	"time"

	"github.com/gogorichielab/ppcollection/database/model"
	"github.com/gogorichielab/ppcollection/util/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCreateUser(t *testing.T, svc *UserService, username string, password string) *SafeUser {
	t.Helper()
	hash, err := crypto.HashPasswordAsBcrypt(password)
	require.NoError(t, err)
	user, err := svc.Create(username, hash, nil)
	require.NoError(t, err)
	return user
}

func pastTimestamp() string {
	return time.Now().UTC().Add(-time.Hour).Format(model.TimeLayout)
}

func futureTimestamp() string {
	return time.Now().UTC().Add(time.Hour).Format(model.TimeLayout)
}

func TestUserServiceCreateRejectsDuplicateUsername(t *testing.T) {
	setup(t)
	svc := UserService{}

	mustCreateUser(t, &svc, "alice", "a long enough password")
	hash, err := crypto.HashPasswordAsBcrypt("another long password")
	require.NoError(t, err)

	_, err = svc.Create("alice", hash, nil)
	assert.ErrorIs(t, err, ErrUsernameTaken)

	users, err := svc.ListUsers()
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserServiceCheckUser(t *testing.T) {
	setup(t)
	svc := UserService{}

	mustCreateUser(t, &svc, "alice", "a long enough password")

	user := svc.CheckUser("alice", "a long enough password")
	require.NotNil(t, user)
	assert.Equal(t, "alice", user.Username)

	assert.Nil(t, svc.CheckUser("alice", "wrong password"))
	assert.Nil(t, svc.CheckUser("nobody", "a long enough password"))
}

func TestUserServiceChangePassword(t *testing.T) {
	setup(t)
	svc := UserService{}

	user := mustCreateUser(t, &svc, "alice", "original password 1234")

	err := svc.ChangePassword(user.Id, "wrong password", "replacement password 1")
	assert.ErrorIs(t, err, ErrWrongPassword)

	err = svc.ChangePassword(user.Id, "original password 1234", "short12345")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	// failed attempts leave the old credentials working
	assert.NotNil(t, svc.CheckUser("alice", "original password 1234"))

	require.NoError(t, svc.ChangePassword(user.Id, "original password 1234", "replacement password 1"))
	assert.Nil(t, svc.CheckUser("alice", "original password 1234"))
	assert.NotNil(t, svc.CheckUser("alice", "replacement password 1"))
}

func TestUserServiceUpdateUsername(t *testing.T) {
	setup(t)
	svc := UserService{}

	alice := mustCreateUser(t, &svc, "alice", "a long enough password")
	mustCreateUser(t, &svc, "bob", "a long enough password")

	assert.ErrorIs(t, svc.UpdateUsername(alice.Id, "bob"), ErrUsernameTaken)

	// renaming to your own current name is allowed
	assert.NoError(t, svc.UpdateUsername(alice.Id, "alice"))

	require.NoError(t, svc.UpdateUsername(alice.Id, "alicia"))
	renamed, err := svc.FindByUsername("alicia")
	require.NoError(t, err)
	require.NotNil(t, renamed)
	assert.Equal(t, alice.Id, renamed.Id)
}

func TestUserServiceAcceptInvite(t *testing.T) {
	setup(t)
	svc := UserService{}

	inviter := mustCreateUser(t, &svc, "admin2", "a long enough password")

	invite, err := svc.CreateInvite("new@example.com", &inviter.Id, futureTimestamp())
	require.NoError(t, err)
	assert.Len(t, invite.Token, tokenBytes*2)
	assert.Equal(t, "admin2", invite.InviterUsername)

	user, err := svc.AcceptInvite(invite.Token, "newbie", "a long enough password")
	require.NoError(t, err)
	assert.Equal(t, "newbie", user.Username)
	require.NotNil(t, user.InvitedBy)
	assert.Equal(t, inviter.Id, *user.InvitedBy)

	redeemed, err := svc.FindInviteByToken(invite.Token)
	require.NoError(t, err)
	assert.NotEmpty(t, redeemed.AcceptedAt)
	require.NotNil(t, redeemed.AcceptedUserId)
	assert.Equal(t, user.Id, *redeemed.AcceptedUserId)

	// a redeemed invite cannot be used again
	_, err = svc.AcceptInvite(invite.Token, "other", "a long enough password")
	assert.ErrorIs(t, err, ErrInviteAlreadyUsed)
}

func TestUserServiceAcceptInviteUnknownToken(t *testing.T) {
	setup(t)
	svc := UserService{}

	_, err := svc.AcceptInvite("deadbeef", "newbie", "a long enough password")
	assert.ErrorIs(t, err, ErrInviteNotFound)
}

func TestUserServiceAcceptInviteExpired(t *testing.T) {
	setup(t)
	svc := UserService{}

	invite, err := svc.CreateInvite("late@example.com", nil, pastTimestamp())
	require.NoError(t, err)

	_, err = svc.AcceptInvite(invite.Token, "latecomer", "a long enough password")
	assert.ErrorIs(t, err, ErrInviteExpired)

	users, err := svc.ListUsers()
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestUserServiceAcceptInviteMalformedExpiry(t *testing.T) {
	setup(t)
	svc := UserService{}

	// an unparseable expiry never expires
	invite, err := svc.CreateInvite("odd@example.com", nil, "not-a-timestamp")
	require.NoError(t, err)

	user, err := svc.AcceptInvite(invite.Token, "survivor", "a long enough password")
	require.NoError(t, err)
	assert.Equal(t, "survivor", user.Username)
}

func TestUserServiceAcceptInviteUsernameTaken(t *testing.T) {
	setup(t)
	svc := UserService{}

	mustCreateUser(t, &svc, "alice", "a long enough password")

	invite, err := svc.CreateInvite("dup@example.com", nil, "")
	require.NoError(t, err)

	_, err = svc.AcceptInvite(invite.Token, "alice", "a long enough password")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	// the failed acceptance rolls back, leaving the invite redeemable
	fresh, err := svc.FindInviteByToken(invite.Token)
	require.NoError(t, err)
	assert.Empty(t, fresh.AcceptedAt)

	users, err := svc.ListUsers()
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserServicePasswordResetToken(t *testing.T) {
	setup(t)
	svc := UserService{}

	user := mustCreateUser(t, &svc, "alice", "original password 1234")

	token, err := svc.CreatePasswordResetToken(user.Id, nil, futureTimestamp())
	require.NoError(t, err)
	assert.Len(t, token.Token, tokenBytes*2)
	assert.Equal(t, "alice", token.Username)

	reset, err := svc.UsePasswordResetToken(token.Token, "replacement password 1")
	require.NoError(t, err)
	assert.Equal(t, user.Id, reset.Id)

	assert.Nil(t, svc.CheckUser("alice", "original password 1234"))
	assert.NotNil(t, svc.CheckUser("alice", "replacement password 1"))

	// single use only
	_, err = svc.UsePasswordResetToken(token.Token, "yet another password 1")
	assert.ErrorIs(t, err, ErrResetTokenUsed)
}

func TestUserServicePasswordResetTokenExpired(t *testing.T) {
	setup(t)
	svc := UserService{}

	user := mustCreateUser(t, &svc, "alice", "original password 1234")

	token, err := svc.CreatePasswordResetToken(user.Id, nil, pastTimestamp())
	require.NoError(t, err)

	_, err = svc.UsePasswordResetToken(token.Token, "replacement password 1")
	assert.ErrorIs(t, err, ErrResetTokenExpired)

	// the old password still works after a failed reset
	assert.NotNil(t, svc.CheckUser("alice", "original password 1234"))
}

func TestUserServicePasswordResetTokenUnknown(t *testing.T) {
	setup(t)
	svc := UserService{}

	_, err := svc.UsePasswordResetToken("deadbeef", "replacement password 1")
	assert.ErrorIs(t, err, ErrResetTokenNotFound)
}

func TestUserServiceCreateResetTokenForMissingUser(t *testing.T) {
	setup(t)
	svc := UserService{}

	_, err := svc.CreatePasswordResetToken(9999, nil, "")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

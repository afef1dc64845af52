package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"syncnote/syncnote/broker"
	"syncnote/syncnote/models"
	"syncnote/syncnote/store"
	"syncnote/syncnote/utils/password"
	"syncnote/syncnote/utils/token"
)

// Use the JWTClaims from token package
type JWTClaims = token.JWTClaims

type AuthServiceInterface interface {
	Register(ctx context.Context, st store.Store, username, email, pass, securityQuestion, securityAnswer string) (string, error)
	Authenticate(ctx context.Context, st store.Store, username, pass string) (models.User, string, error)
	ValidateToken(tokenString string) (*JWTClaims, error)
	CheckUsernameExists(ctx context.Context, st store.Store, username string) (bool, error)
	CheckEmailExists(ctx context.Context, st store.Store, email string) (bool, error)
	GetUserByID(ctx context.Context, st store.Store, id string) (models.User, error)
	GetUserByUsername(ctx context.Context, st store.Store, username string) (models.User, error)
	VerifySecurityAnswer(ctx context.Context, st store.Store, username, answer string) bool
	ResetPassword(ctx context.Context, st store.Store, username, newPassword string) bool
	ChangePassword(ctx context.Context, st store.Store, userID, currentPassword, newPassword string) bool
}

type AuthService struct {
	jwtSecret     []byte
	jwtExpiration time.Duration
	events        *broker.Producer
}

func NewAuthService(jwtSecret string, jwtExpirationHours int, events *broker.Producer) *AuthService {
	return &AuthService{
		jwtSecret:     []byte(jwtSecret),
		jwtExpiration: time.Duration(jwtExpirationHours) * time.Hour,
		events:        events,
	}
}

// Register creates an account plus its username and email index entries in a
// single multi-path write. The two existence checks run before the write, so
// a concurrent registration in that window can still slip through duplicates;
// the store offers no multi-key constraint to close that race.
func (s *AuthService) Register(ctx context.Context, st store.Store, username, email, pass, securityQuestion, securityAnswer string) (string, error) {
	normalizedUsername := strings.ToLower(strings.TrimSpace(username))
	normalizedEmail := strings.ToLower(strings.TrimSpace(email))

	usernameExists, err := s.CheckUsernameExists(ctx, st, normalizedUsername)
	if err != nil {
		return "", err
	}
	if usernameExists {
		return "", ErrUsernameTaken
	}

	emailExists, err := s.CheckEmailExists(ctx, st, normalizedEmail)
	if err != nil {
		return "", err
	}
	if emailExists {
		return "", ErrEmailTaken
	}

	userID, err := st.PushID(ctx, usersRef)
	if err != nil {
		return "", err
	}

	passwordHash, err := password.Hash(pass)
	if err != nil {
		return "", err
	}
	answerHash, err := password.Hash(password.NormalizeAnswer(securityAnswer))
	if err != nil {
		return "", err
	}

	user := models.User{
		ID:                 userID,
		Username:           normalizedUsername,
		Email:              normalizedEmail,
		PasswordHash:       passwordHash,
		SecurityQuestion:   securityQuestion,
		SecurityAnswerHash: answerHash,
		CreatedAt:          time.Now().UnixMilli(),
	}

	updates := map[string]interface{}{
		store.Join(usersRef, userID):                     user,
		store.Join(usernamesRef, normalizedUsername):     userID,
		store.Join(emailsRef, emailKey(normalizedEmail)): userID,
	}
	if err := st.MultiWrite(ctx, updates); err != nil {
		return "", err
	}

	publishEvent(s.events, broker.UserEventsSubject, string(broker.UserCreated), "user", userID, map[string]interface{}{
		"user_id":  userID,
		"username": normalizedUsername,
	})

	return userID, nil
}

// Authenticate resolves the username index, verifies the password and returns
// the account together with a signed session token. The lastLogin stamp is
// best-effort; its failure does not fail the login.
func (s *AuthService) Authenticate(ctx context.Context, st store.Store, username, pass string) (models.User, string, error) {
	user, err := s.GetUserByUsername(ctx, st, username)
	if err != nil {
		return models.User{}, "", ErrInvalidCredentials
	}

	if !password.Verify(pass, user.PasswordHash) {
		return models.User{}, "", ErrInvalidCredentials
	}

	user.LastLogin = time.Now().UnixMilli()
	if err := st.Write(ctx, store.Join(usersRef, user.ID), user); err != nil {
		log.Debug().Err(err).Str("user_id", user.ID).Msg("failed to stamp last login")
	}

	tokenString, err := token.GenerateToken(user.ID, user.Username, s.jwtSecret, s.jwtExpiration)
	if err != nil {
		return models.User{}, "", err
	}

	return user, tokenString, nil
}

// ValidateToken uses the token utility to validate tokens
func (s *AuthService) ValidateToken(tokenString string) (*JWTClaims, error) {
	return token.ValidateToken(tokenString, s.jwtSecret)
}

func (s *AuthService) CheckUsernameExists(ctx context.Context, st store.Store, username string) (bool, error) {
	normalized := strings.ToLower(strings.TrimSpace(username))
	snap, err := st.Read(ctx, store.Join(usernamesRef, normalized))
	if err != nil {
		return false, err
	}
	return snap.Exists(), nil
}

func (s *AuthService) CheckEmailExists(ctx context.Context, st store.Store, email string) (bool, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	snap, err := st.Read(ctx, store.Join(emailsRef, emailKey(normalized)))
	if err != nil {
		return false, err
	}
	return snap.Exists(), nil
}

func (s *AuthService) GetUserByID(ctx context.Context, st store.Store, id string) (models.User, error) {
	snap, err := st.Read(ctx, store.Join(usersRef, id))
	if err != nil {
		return models.User{}, err
	}
	if !snap.Exists() {
		return models.User{}, ErrUserNotFound
	}

	var user models.User
	if err := snap.Decode(&user); err != nil {
		return models.User{}, err
	}
	user.ID = snap.Key
	return user, nil
}

func (s *AuthService) GetUserByUsername(ctx context.Context, st store.Store, username string) (models.User, error) {
	normalized := strings.ToLower(strings.TrimSpace(username))
	snap, err := st.Read(ctx, store.Join(usernamesRef, normalized))
	if err != nil {
		return models.User{}, err
	}
	if !snap.Exists() {
		return models.User{}, ErrUserNotFound
	}

	var userID string
	if err := snap.Decode(&userID); err != nil {
		return models.User{}, err
	}
	return s.GetUserByID(ctx, st, userID)
}

// VerifySecurityAnswer never surfaces errors: an unknown user, a missing
// security answer and a wrong answer all report false.
func (s *AuthService) VerifySecurityAnswer(ctx context.Context, st store.Store, username, answer string) bool {
	user, err := s.GetUserByUsername(ctx, st, username)
	if err != nil || user.SecurityAnswerHash == "" {
		return false
	}
	return password.Verify(password.NormalizeAnswer(answer), user.SecurityAnswerHash)
}

func (s *AuthService) ResetPassword(ctx context.Context, st store.Store, username, newPassword string) bool {
	user, err := s.GetUserByUsername(ctx, st, username)
	if err != nil {
		return false
	}

	newHash, err := password.Hash(newPassword)
	if err != nil {
		return false
	}

	user.PasswordHash = newHash
	return st.Write(ctx, store.Join(usersRef, user.ID), user) == nil
}

// ChangePassword re-reads the stored hash and verifies the current password
// before overwriting it.
func (s *AuthService) ChangePassword(ctx context.Context, st store.Store, userID, currentPassword, newPassword string) bool {
	user, err := s.GetUserByID(ctx, st, userID)
	if err != nil {
		return false
	}

	if !password.Verify(currentPassword, user.PasswordHash) {
		return false
	}

	newHash, err := password.Hash(newPassword)
	if err != nil {
		return false
	}

	user.PasswordHash = newHash
	return st.Write(ctx, store.Join(usersRef, user.ID), user) == nil
}

var AuthServiceInstance AuthServiceInterface

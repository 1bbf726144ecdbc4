package service

import (
	"strings"

	"go.uber.org/zap"

	"github.com/atinyakov/TodoSync/internal/auth"
	"github.com/atinyakov/TodoSync/internal/models"
	"github.com/atinyakov/TodoSync/internal/repository"
	"github.com/atinyakov/TodoSync/internal/storage"
)

// AuthService registers users and rotates their auth tokens. Token issuance is
// delegated to the JWT manager; this service only decides who gets one.
type AuthService struct {
	store  *storage.Store
	users  *repository.Repository[models.User]
	tokens *auth.JWTManager
	log    *zap.Logger
}

// NewAuthService constructs the auth service.
func NewAuthService(store *storage.Store, users *repository.Repository[models.User], tokens *auth.JWTManager, log *zap.Logger) *AuthService {
	return &AuthService{store: store, users: users, tokens: tokens, log: log}
}

// Register creates a new user with a unique username and issues its first
// token. The uniqueness check and the insert happen inside one atomic mutation
// so two concurrent registrations of the same name cannot both succeed.
func (s *AuthService) Register(username string) (models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.User{}, ErrInvalidInput
	}

	id := newID()
	token, err := s.tokens.Generate(models.Identity{ID: id, Username: username})
	if err != nil {
		return models.User{}, err
	}
	user := models.User{ID: id, Username: username, Token: token}

	_, err = s.store.Mutate(func(doc models.Document) (models.Document, error) {
		for _, u := range doc.Users {
			if u.Username == username {
				return models.Document{}, ErrUserExists
			}
		}
		doc.Users = append(doc.Users, user)
		return doc, nil
	})
	if err != nil {
		return models.User{}, err
	}

	s.log.Info("user registered", zap.String("userID", user.ID), zap.String("username", username))
	return user, nil
}

// Authorize issues a fresh token for an existing user and persists it as the
// user's current token. Unknown usernames yield ErrInvalidCredentials.
func (s *AuthService) Authorize(username string) (models.User, error) {
	var found models.User
	ok := false
	for _, u := range s.users.GetAll() {
		if u.Username == username {
			found, ok = u, true
			break
		}
	}
	if !ok {
		return models.User{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(models.Identity{ID: found.ID, Username: found.Username})
	if err != nil {
		return models.User{}, err
	}

	// Rotate the stored token. Users are never deleted, so the two-step
	// find-then-update cannot lose the row.
	err = s.users.Update(func(u *models.User) {
		u.Token = token
	}, func(u models.User) bool {
		return u.ID == found.ID
	})
	if err != nil {
		return models.User{}, err
	}

	found.Token = token
	return found, nil
}

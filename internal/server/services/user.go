// Package services holds the server's business logic: the signup/signin flow,
// token-based identity resolution and owner-checked bookmark access.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/bookmarks/internal/common"
	"github.com/dmitrijs2005/bookmarks/internal/logging"
	"github.com/dmitrijs2005/bookmarks/internal/server/auth"
	"github.com/dmitrijs2005/bookmarks/internal/server/models"
	"github.com/dmitrijs2005/bookmarks/internal/server/repositories/repomanager"
)

type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, encoded, password string) (bool, error)
}

type TokenIssuer interface {
	Issue(userID int64, email string) (string, error)
	Verify(token string) (*auth.Claims, error)
}

// UserService implements signup, signin, token authentication and the
// caller's own profile.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      PasswordHasher
	issuer      TokenIssuer
	logger      logging.Logger

	dummyMu   sync.Mutex
	dummyHash string
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, h PasswordHasher, i TokenIssuer, l logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		hasher:      h,
		issuer:      i,
		logger:      l.With("module", "users"),
	}
}

// SignUp creates the account and returns an access token for it. A taken
// email yields common.ErrDuplicateCredential; any other store failure is
// common.ErrorInternal.
func (s *UserService) SignUp(ctx context.Context, c Credentials) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}

	hash, err := s.hasher.Hash(ctx, c.Password)
	if err != nil {
		return "", fmt.Errorf("%w: hash password: %v", common.ErrorInternal, err)
	}

	repo := s.repomanager.Users(s.db)
	u, err := repo.Create(ctx, &models.User{Email: c.Email, Hash: hash})
	if err != nil {
		var cv *common.ConstraintViolationError
		if errors.As(err, &cv) && cv.Field == "email" {
			s.logger.Info(ctx, "signup rejected, email taken")
			return "", common.ErrDuplicateCredential
		}
		return "", fmt.Errorf("%w: create user: %v", common.ErrorInternal, err)
	}

	s.logger.Info(ctx, "user signed up", "user_id", u.ID)
	return s.issue(u)
}

// SignIn checks the password and returns a fresh access token. An unknown
// email and a wrong password are both common.ErrInvalidCredential.
func (s *UserService) SignIn(ctx context.Context, c Credentials) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}

	repo := s.repomanager.Users(s.db)
	u, err := repo.GetByEmail(ctx, c.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// burn the same hashing cost so absent accounts are not faster
			s.verifyDummy(ctx, c.Password)
			return "", common.ErrInvalidCredential
		}
		return "", fmt.Errorf("%w: load user: %v", common.ErrorInternal, err)
	}

	ok, err := s.hasher.Verify(ctx, u.Hash, c.Password)
	if err != nil {
		return "", fmt.Errorf("%w: verify password: %v", common.ErrorInternal, err)
	}
	if !ok {
		s.logger.Info(ctx, "signin rejected", "user_id", u.ID)
		return "", common.ErrInvalidCredential
	}

	s.logger.Info(ctx, "user signed in", "user_id", u.ID)
	return s.issue(u)
}

// Authenticate resolves a bearer token to its user. Any failure, including
// a user that no longer exists, is common.ErrUnauthenticated.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.issuer.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUnauthenticated, err)
	}
	id, err := claims.UserID()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUnauthenticated, err)
	}

	u, err := s.repomanager.Users(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUnauthenticated
		}
		return nil, fmt.Errorf("%w: load user: %v", common.ErrorInternal, err)
	}

	return u, nil
}

// Me returns the caller's profile.
func (s *UserService) Me(ctx context.Context, userID int64) (*models.User, error) {
	u, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUnauthenticated
		}
		return nil, fmt.Errorf("%w: load user: %v", common.ErrorInternal, err)
	}
	return u, nil
}

// EditUser applies patch to the caller's own row. The target is always the
// authenticated id; there is no way to name another user.
func (s *UserService) EditUser(ctx context.Context, userID int64, patch models.UserPatch) (*models.User, error) {
	if patch.Empty() {
		return s.Me(ctx, userID)
	}

	u, err := s.repomanager.Users(s.db).Update(ctx, userID, patch)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUnauthenticated
		}
		return nil, fmt.Errorf("%w: update user: %v", common.ErrorInternal, err)
	}
	return u, nil
}

func (s *UserService) issue(u *models.User) (string, error) {
	token, err := s.issuer.Issue(u.ID, u.Email)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return token, nil
}

func (s *UserService) verifyDummy(ctx context.Context, password string) {
	if hash := s.dummy(ctx); hash != "" {
		_, _ = s.hasher.Verify(ctx, hash, password)
	}
}

// dummy returns the stand-in hash for unknown emails. A failed attempt is not
// kept, so the next signin tries again.
func (s *UserService) dummy(ctx context.Context) string {
	s.dummyMu.Lock()
	defer s.dummyMu.Unlock()

	if s.dummyHash == "" {
		hash, err := s.hasher.Hash(context.WithoutCancel(ctx), "dummy-password")
		if err != nil {
			s.logger.Warn(ctx, "dummy hash failed", "error", err)
			return ""
		}
		s.dummyHash = hash
	}
	return s.dummyHash
}

package service

import (
	"context"
	"errors"

	"github.com/labstack/gommon/log"
	"gorm.io/gorm"

	"github.com/iliyamo/canteen-preorder/internal/database"
	"github.com/iliyamo/canteen-preorder/internal/model"
	"github.com/iliyamo/canteen-preorder/internal/repository"
	"github.com/iliyamo/canteen-preorder/internal/utils"
)

var (
	// ErrInvalidCredentials covers both an unknown user number and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrLoginDisabled is returned when no signing secret is configured.
	ErrLoginDisabled = errors.New("local login disabled")
)

// AuthSettings configures locally issued access tokens.
type AuthSettings struct {
	Secret   string
	Issuer   string
	Audience string
	TTLMin   int
}

// AuthService checks user number + password pairs against the stored
// bcrypt hashes, the same check the identity provider's database hook
// performs, and issues short lived HS256 tokens.
type AuthService struct {
	db  *gorm.DB
	cfg AuthSettings
}

func NewAuthService(db *gorm.DB, cfg AuthSettings) *AuthService {
	return &AuthService{db: db, cfg: cfg}
}

func (s *AuthService) Login(ctx context.Context, userNumber, password string) (utils.AccessToken, *model.User, error) {
	if s.cfg.Secret == "" {
		return utils.AccessToken{}, nil, ErrLoginDisabled
	}
	var u *model.User
	err := database.UnitOfWork(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		u, err = repository.NewUserRepo(tx).GetByNumber(ctx, userNumber)
		return err
	})
	if errors.Is(err, repository.ErrUserNotFound) {
		return utils.AccessToken{}, nil, ErrInvalidCredentials
	}
	if err != nil {
		return utils.AccessToken{}, nil, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		log.Warnf("failed login for user number %s", userNumber)
		return utils.AccessToken{}, nil, ErrInvalidCredentials
	}
	tok, err := utils.NewAccessToken(s.cfg.Secret, utils.TokenClaims{
		Issuer:   s.cfg.Issuer,
		Audience: s.cfg.Audience,
		Subject:  u.UserNumber,
		Nickname: u.ISICID,
	}, s.cfg.TTLMin)
	if err != nil {
		return utils.AccessToken{}, nil, err
	}
	return tok, u, nil
}

package usecase

import (
	"context"
	"errors"

	"hospicloud/internal/delivery/dto"
	"hospicloud/internal/infrastructure/identity"
	"hospicloud/pkg/apperror"

	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidCredentials = apperror.Unauthorized("Invalid email or password")
)

type AuthUsecase interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
}

type authUsecase struct {
	log      *logrus.Logger
	provider identity.Provider
}

func NewAuthUsecase(log *logrus.Logger, provider identity.Provider) AuthUsecase {
	return &authUsecase{
		log:      log,
		provider: provider,
	}
}

// Login exchanges credentials for an access token issued by the identity
// provider.
func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	token, err := u.provider.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return nil, ErrInvalidCredentials
		}
		u.log.Warnf("Failed to sign in: %+v", err)
		return nil, apperror.Internal(err)
	}

	return &dto.TokenResponse{
		AccessToken: token.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   token.ExpiresIn,
	}, nil
}

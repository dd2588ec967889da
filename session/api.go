package session

import (
	"context"
	"io"

	"github.com/aubattle/battle-client/gateway"
	"github.com/aubattle/battle-client/identity"
)

// API is what the manager needs from the backend gateway. *gateway.Client
// satisfies it; tests substitute a fake.
type API interface {
	Login(ctx context.Context, data identity.LoginData) (gateway.LoginResult, error)
	Signup(ctx context.Context, data identity.SignupData) (gateway.SignupResult, error)
	Profile(ctx context.Context, credential string) (identity.Profile, error)
	UpdateProfile(ctx context.Context, credential string, patch identity.Patch) (identity.Profile, error)
	UploadAvatar(ctx context.Context, credential, filename string, file io.Reader) (string, error)
	ChangePassword(ctx context.Context, credential, oldPassword, newPassword string) (string, error)
	CoinBalance(ctx context.Context, credential string, userID int64) (float64, error)
}

var _ API = (*gateway.Client)(nil)

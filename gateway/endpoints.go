package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/aubattle/battle-client/identity"
)

// LoginResult is the wire response of POST /auth/login.
type LoginResult struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	UserID  int64  `json:"user_id"`
	Role    string `json:"role"`
}

// SignupResult is the wire response of POST /auth/signup. The endpoint
// returns only a token; the subject must be derived elsewhere.
type SignupResult struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// Timeframe selects a leaderboard window.
type Timeframe string

const (
	TimeframeDaily   Timeframe = "daily"
	TimeframeWeekly  Timeframe = "weekly"
	TimeframeMonthly Timeframe = "monthly"
)

// LeaderboardEntry is one row of the ranked coin winners list.
type LeaderboardEntry struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	CoinsWon  float64 `json:"coins_won"`
	AvatarURL string  `json:"avatar_url"`
}

// Update is a platform news item.
type Update struct {
	ID          int64  `json:"id"`
	Heading     string `json:"heading"`
	Description string `json:"description"`
	Content     string `json:"content"`
	CreatedAt   string `json:"created_at"`
}

// WithdrawalRequest is the payload of POST /withdraw.
type WithdrawalRequest struct {
	Amount         string `json:"amount"`
	Method         string `json:"method"` // JazzCash | EasyPaisa
	AccountDetails string `json:"account_details"`
}

// WithdrawalEntry is one row of the withdrawal history.
type WithdrawalEntry struct {
	Amount    float64 `json:"amount"`
	Method    string  `json:"method"`
	Status    string  `json:"status"` // approved | rejected | pending
	CreatedAt string  `json:"created_at"`
}

type messageResult struct {
	Message string `json:"message"`
}

// Login exchanges credentials for a bearer token and a minimal identity
// descriptor.
func (c *Client) Login(ctx context.Context, data identity.LoginData) (LoginResult, error) {
	var out LoginResult
	err := c.do(ctx, http.MethodPost, c.baseURL+"/auth/login", "", data, &out)
	return out, err
}

// Signup registers a new account. The full payload, confirmation included,
// is forwarded because the backend validates it server-side.
func (c *Client) Signup(ctx context.Context, data identity.SignupData) (SignupResult, error) {
	var out SignupResult
	err := c.do(ctx, http.MethodPost, c.baseURL+"/auth/signup", "", data, &out)
	return out, err
}

// ForgotPassword requests a reset email for the account.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	var out messageResult
	body := map[string]string{"email": email}
	err := c.do(ctx, http.MethodPost, c.baseURL+"/auth/forgot-password", "", body, &out)
	return out.Message, err
}

// ResetPasswordData is the payload of POST /auth/reset-password.
type ResetPasswordData struct {
	Email                string `json:"email"`
	Token                string `json:"token"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// ResetPassword completes an emailed password reset.
func (c *Client) ResetPassword(ctx context.Context, data ResetPasswordData) (string, error) {
	var out messageResult
	err := c.do(ctx, http.MethodPost, c.baseURL+"/auth/reset-password", "", data, &out)
	return out.Message, err
}

// Profile fetches the authenticated account's profile.
func (c *Client) Profile(ctx context.Context, credential string) (identity.Profile, error) {
	var out identity.Profile
	err := c.do(ctx, http.MethodGet, c.baseURL+"/profile", credential, nil, &out)
	return out, err
}

// UpdateProfile applies a partial profile update and returns the backend's
// view of the profile afterwards.
func (c *Client) UpdateProfile(ctx context.Context, credential string, patch identity.Patch) (identity.Profile, error) {
	var out identity.Profile
	err := c.do(ctx, http.MethodPut, c.baseURL+"/profile", credential, patch, &out)
	return out, err
}

// UploadAvatar replaces the account avatar and returns its new URL.
func (c *Client) UploadAvatar(ctx context.Context, credential, filename string, file io.Reader) (string, error) {
	var out struct {
		AvatarURL string `json:"avatar_url"`
	}
	err := c.doMultipart(ctx, c.baseURL+"/profile/avatar", credential, "avatar", filename, file, &out)
	return out.AvatarURL, err
}

// ChangePassword rotates the account password.
func (c *Client) ChangePassword(ctx context.Context, credential, oldPassword, newPassword string) (string, error) {
	var out messageResult
	body := map[string]string{
		"oldPassword": oldPassword,
		"newPassword": newPassword,
	}
	err := c.do(ctx, http.MethodPut, c.baseURL+"/profile/change-password", credential, body, &out)
	return out.Message, err
}

// CoinBalance fetches the coin balance for a user id.
func (c *Client) CoinBalance(ctx context.Context, credential string, userID int64) (float64, error) {
	var out struct {
		Coins float64 `json:"coins"`
	}
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s/coins/balance/%d", c.baseURL, userID), credential, nil, &out)
	return out.Coins, err
}

// Leaderboard fetches the ranked winners for a timeframe. Entries without a
// stored avatar get a deterministic name-based placeholder so callers always
// have something to render.
func (c *Client) Leaderboard(ctx context.Context, credential string, tf Timeframe) ([]LeaderboardEntry, error) {
	var out []LeaderboardEntry
	err := c.do(ctx, http.MethodGet, c.baseURL+"/admin/leaderboard/"+string(tf), credential, nil, &out)
	if err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].AvatarURL == "" {
			out[i].AvatarURL = placeholderAvatar(out[i].Name)
		}
	}
	return out, nil
}

func placeholderAvatar(name string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) +
		"&background=00eafa&color=0c0a3a&rounded=true&bold=true"
}

// Updates fetches the platform news feed.
func (c *Client) Updates(ctx context.Context, credential string) ([]Update, error) {
	var out []Update
	err := c.do(ctx, http.MethodGet, c.baseURL+"/updates", credential, nil, &out)
	return out, err
}

// SubmitWithdrawal files a coin withdrawal. This endpoint lives on the
// withdrawal service host, not the primary API.
func (c *Client) SubmitWithdrawal(ctx context.Context, credential string, req WithdrawalRequest) (string, error) {
	var out messageResult
	err := c.do(ctx, http.MethodPost, c.withdrawURL+"/withdraw", credential, req, &out)
	return out.Message, err
}

// WithdrawalHistory fetches past withdrawal requests.
func (c *Client) WithdrawalHistory(ctx context.Context, credential string) ([]WithdrawalEntry, error) {
	var out []WithdrawalEntry
	err := c.do(ctx, http.MethodGet, c.baseURL+"/withdraw-history", credential, nil, &out)
	return out, err
}

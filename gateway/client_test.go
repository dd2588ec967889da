package gateway_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aubattle/battle-client/gateway"
	"github.com/aubattle/battle-client/identity"
)

// respondWith builds a client whose backend answers every request with a
// fixed status and body.
func respondWith(t *testing.T, status int, body string) *gateway.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return gateway.New(srv.URL)
}

func profileCall(t *testing.T, c *gateway.Client) error {
	t.Helper()
	_, err := c.Profile(context.Background(), "token-1")
	return err
}

func TestNormalization_FailureBodies(t *testing.T) {
	t.Run("laravel validation map wins over message", func(t *testing.T) {
		body := `{"message":"The given data was invalid.","errors":{"email":["The email field is required.","second"]}}`
		err := profileCall(t, respondWith(t, http.StatusUnprocessableEntity, body))
		ge, ok := gateway.AsError(err)
		require.True(t, ok)
		require.Equal(t, gateway.KindValidation, ge.Kind)
		require.Equal(t, "The email field is required.", ge.Message)
	})

	t.Run("error string on 401 maps to unauthorized", func(t *testing.T) {
		err := profileCall(t, respondWith(t, http.StatusUnauthorized, `{"error":"Token has expired"}`))
		ge, ok := gateway.AsError(err)
		require.True(t, ok)
		require.Equal(t, gateway.KindUnauthorized, ge.Kind)
		require.Equal(t, "Token has expired", ge.Message)
	})

	t.Run("message string on 404 maps to not found", func(t *testing.T) {
		err := profileCall(t, respondWith(t, http.StatusNotFound, `{"message":"No such user"}`))
		ge, ok := gateway.AsError(err)
		require.True(t, ok)
		require.Equal(t, gateway.KindNotFound, ge.Kind)
		require.Equal(t, "No such user", ge.Message)
	})

	t.Run("message string on 500 maps to server", func(t *testing.T) {
		err := profileCall(t, respondWith(t, http.StatusInternalServerError, `{"message":"boom"}`))
		ge, ok := gateway.AsError(err)
		require.True(t, ok)
		require.Equal(t, gateway.KindServer, ge.Kind)
		require.Equal(t, "boom", ge.Message)
	})

	t.Run("json without known fields falls back to status text", func(t *testing.T) {
		err := profileCall(t, respondWith(t, http.StatusBadRequest, `{"unexpected":true}`))
		ge, ok := gateway.AsError(err)
		require.True(t, ok)
		require.Equal(t, gateway.KindValidation, ge.Kind)
		require.Contains(t, ge.Message, "400")
	})

	t.Run("html error page is replaced with a generic message", func(t *testing.T) {
		err := profileCall(t, respondWith(t, http.StatusBadGateway, "<html><body>nginx</body></html>"))
		ge, ok := gateway.AsError(err)
		require.True(t, ok)
		require.Equal(t, gateway.KindMalformed, ge.Kind)
		require.NotContains(t, ge.Message, "<")
	})

	t.Run("plain text body is surfaced verbatim", func(t *testing.T) {
		err := profileCall(t, respondWith(t, http.StatusBadRequest, "email already taken"))
		ge, ok := gateway.AsError(err)
		require.True(t, ok)
		require.Equal(t, gateway.KindValidation, ge.Kind)
		require.Equal(t, "email already taken", ge.Message)
	})
}

func TestNormalization_SuccessBodies(t *testing.T) {
	t.Run("200 with empty body is a zero-value success", func(t *testing.T) {
		prof, err := respondWith(t, http.StatusOK, "").Profile(context.Background(), "token-1")
		require.NoError(t, err)
		require.Zero(t, prof.ID)
	})

	t.Run("204 is success", func(t *testing.T) {
		_, err := respondWith(t, http.StatusNoContent, "").ForgotPassword(context.Background(), "a@b.com")
		require.NoError(t, err)
	})

	t.Run("2xx with invalid json is malformed", func(t *testing.T) {
		err := profileCall(t, respondWith(t, http.StatusOK, "not json at all"))
		ge, ok := gateway.AsError(err)
		require.True(t, ok)
		require.Equal(t, gateway.KindMalformed, ge.Kind)
	})
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening any more
	c := gateway.New(srv.URL)

	err := profileCall(t, c)
	ge, ok := gateway.AsError(err)
	require.True(t, ok)
	require.Equal(t, gateway.KindNetwork, ge.Kind)
	require.Zero(t, ge.Status)
}

func TestClient_RequestHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = io.WriteString(w, `{"id":7,"name":"Alia","role":"user","balance":"10.50"}`)
	}))
	defer srv.Close()

	prof, err := gateway.New(srv.URL).Profile(context.Background(), "secret-token")
	require.NoError(t, err)
	require.Equal(t, "Bearer secret-token", got.Get("Authorization"))
	require.Equal(t, "application/json", got.Get("Accept"))
	require.NotEmpty(t, got.Get("X-Request-Id"))

	id := prof.Identity()
	require.Equal(t, int64(7), id.ID)
	require.Equal(t, 10.5, id.Balance)
}

func TestClient_Login(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "user@x.com", body["email"])

		_, _ = io.WriteString(w, `{"message":"ok","token":"tok-1","user_id":42,"role":"admin"}`)
	}))
	defer srv.Close()

	result, err := gateway.New(srv.URL).Login(context.Background(), identity.LoginData{
		Email:    "user@x.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	require.Equal(t, "tok-1", result.Token)
	require.Equal(t, int64(42), result.UserID)
	require.Equal(t, "admin", result.Role)
}

func TestClient_UploadAvatar(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/profile/avatar", r.URL.Path)
		require.Contains(t, r.Header.Get("Content-Type"), "multipart/form-data")

		file, header, err := r.FormFile("avatar")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "me.png", header.Filename)

		data, err := io.ReadAll(file)
		require.NoError(t, err)
		require.Equal(t, "png-bytes", string(data))

		_, _ = io.WriteString(w, `{"avatar_url":"https://cdn.example/me.png"}`)
	}))
	defer srv.Close()

	url, err := gateway.New(srv.URL).UploadAvatar(context.Background(), "tok", "me.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example/me.png", url)
}

func TestClient_WithdrawalUsesSeparateHost(t *testing.T) {
	var mainHits, withdrawHits int
	mainSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mainHits++
	}))
	defer mainSrv.Close()
	withdrawSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		withdrawHits++
		require.Equal(t, "/withdraw", r.URL.Path)
		_, _ = io.WriteString(w, `{"message":"withdrawal requested"}`)
	}))
	defer withdrawSrv.Close()

	c := gateway.New(mainSrv.URL, gateway.WithWithdrawBaseURL(withdrawSrv.URL))
	msg, err := c.SubmitWithdrawal(context.Background(), "tok", gateway.WithdrawalRequest{
		Amount: "500", Method: "JazzCash", AccountDetails: "0300-1234567",
	})
	require.NoError(t, err)
	require.Equal(t, "withdrawal requested", msg)
	require.Zero(t, mainHits)
	require.Equal(t, 1, withdrawHits)
}

func TestClient_LeaderboardPlaceholderAvatar(t *testing.T) {
	body := `[{"id":1,"name":"Zed Khan","coins_won":900,"avatar_url":""},{"id":2,"name":"Mia","coins_won":700,"avatar_url":"https://cdn.example/mia.png"}]`
	c := respondWith(t, http.StatusOK, body)

	entries, err := c.Leaderboard(context.Background(), "tok", gateway.TimeframeWeekly)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Contains(t, entries[0].AvatarURL, "ui-avatars.com")
	require.Contains(t, entries[0].AvatarURL, "Zed+Khan")
	require.Equal(t, "https://cdn.example/mia.png", entries[1].AvatarURL)
}

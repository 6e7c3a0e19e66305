package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/modverse-client/internal/models"
	"github.com/pribylovaa/modverse-client/internal/tokenstore"
	"github.com/pribylovaa/modverse-client/mocks"
)

func TestSession_LogoutClearsEverything(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tok := tokenstore.NewTokens(tokenstore.NewMemory())
	require.NoError(t, tok.SetAccess(ctx, "a"))
	require.NoError(t, tok.SetRefresh(ctx, "r"))

	s := New(tok)
	s.SetLoggedIn(true)
	s.SetProfile(&models.User{ID: 7, UserName: "neo"})

	require.NoError(t, s.Logout(ctx))

	require.False(t, s.IsLoggedIn())
	require.Nil(t, s.Profile())
	_, ok, _ := tok.Access(ctx)
	require.False(t, ok)
	_, ok, _ = tok.Refresh(ctx)
	require.False(t, ok)
}

func TestSession_LogoutStoreError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	st := mocks.NewMockStore(ctrl)
	st.EXPECT().
		Delete(gomock.Any(), tokenstore.KeyAccessToken, tokenstore.KeyRefreshToken).
		Return(errors.New("disk full"))

	s := New(tokenstore.NewTokens(st))
	s.SetLoggedIn(true)

	err := s.Logout(context.Background())
	require.Error(t, err)
	// состояние в памяти сброшено даже при ошибке хранилища.
	require.False(t, s.IsLoggedIn())
}

func TestSession_ProfileIsCopied(t *testing.T) {
	t.Parallel()

	s := New(tokenstore.NewTokens(tokenstore.NewMemory()))
	u := &models.User{ID: 1, UserName: "a"}
	s.SetProfile(u)
	u.UserName = "changed"

	got := s.Profile()
	require.Equal(t, "a", got.UserName)

	got.UserName = "mutated"
	require.Equal(t, "a", s.Profile().UserName)
}

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return s
}

func TestParseClaims(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	tests := []struct {
		name    string
		token   string
		want    Claims
		wantErr bool
	}{
		{
			name:  "string id",
			token: sign(t, jwt.MapClaims{"id": "42", "role": "admin", "exp": exp.Unix()}),
			want:  Claims{UserID: 42, Role: "admin", ExpiresAt: exp},
		},
		{
			name:  "bearer prefix and numeric id",
			token: "Bearer " + sign(t, jwt.MapClaims{"id": 5, "role": "user", "exp": exp.Unix()}),
			want:  Claims{UserID: 5, Role: "user", ExpiresAt: exp},
		},
		{
			name:  "no exp",
			token: sign(t, jwt.MapClaims{"id": "1"}),
			want:  Claims{UserID: 1},
		},
		{name: "empty", token: "", wantErr: true},
		{name: "garbage", token: "not.a.jwt", wantErr: true},
		{name: "bad id", token: sign(t, jwt.MapClaims{"id": "x"}), wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseClaims(tt.token)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidToken)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want.UserID, got.UserID)
			require.Equal(t, tt.want.Role, got.Role)
			require.True(t, tt.want.ExpiresAt.Equal(got.ExpiresAt))
		})
	}
}

func TestClaims_Expired(t *testing.T) {
	t.Parallel()

	now := time.Now()
	require.False(t, Claims{}.Expired(now))
	require.False(t, Claims{ExpiresAt: now.Add(time.Minute)}.Expired(now))
	require.True(t, Claims{ExpiresAt: now}.Expired(now))
	require.True(t, Claims{ExpiresAt: now.Add(-time.Minute)}.Expired(now))
}

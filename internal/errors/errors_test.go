package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/pribylovaa/modverse-client/internal/models"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Is_Sentinels(t *testing.T) {
	tcs := []struct {
		name string
		code models.Code
		want error
	}{
		{"unknown", models.CodeUnknown, ErrUnknown},
		{"not_found", models.CodeDataNotExist, ErrNotFound},
		{"email_exists", models.CodeEmailExists, ErrEmailExists},
		{"user_exists", models.CodeUserExists, ErrUserExists},
		{"login_failed", models.CodeLoginFailed, ErrLoginFailed},
		{"token_expired", models.CodeTokenExpired, ErrTokenExpired},
		{"code_invalid", models.CodeVerifyCodeInvalid, ErrVerifyCodeInvalid},
		{"login_repeat", models.CodeLoginRepeat, ErrLoginRepeat},
		{"origin_password", models.CodeOriginPassword, ErrOriginPassword},
		{"user_disabled", models.CodeUserDisabled, ErrUserDisabled},
		{"rate_limited", models.CodeRateLimited, ErrRateLimited},
		{"unmapped_code", models.Code(42), ErrUnknown},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", &APIError{Status: http.StatusBadRequest, Code: tc.code})
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestAPIError_Is_DoesNotMatchOthers(t *testing.T) {
	err := &APIError{Code: models.CodeTokenExpired}
	require.NotErrorIs(t, err, ErrNotFound)
	require.NotErrorIs(t, err, ErrUnknown)
}

func TestAPIError_Error_Text(t *testing.T) {
	withServerText := &APIError{Status: 401, Code: models.CodeTokenExpired, Message: "token invalid"}
	require.Equal(t, "api: status 401, code 6: token invalid", withServerText.Error())

	fallback := &APIError{Code: models.CodeRateLimited}
	require.Equal(t, "api: code -1: please do not request codes too often", fallback.Error())
}

func TestFromEnvelope(t *testing.T) {
	require.NoError(t, FromEnvelope[any](nil))
	require.NoError(t, FromEnvelope(&models.Envelope[int]{Code: models.CodeOK, Data: 1}))

	err := FromEnvelope(&models.Envelope[any]{Code: models.CodeEmailExists, Error: "email exists"})
	require.ErrorIs(t, err, ErrEmailExists)

	code, ok := CodeOf(err)
	require.True(t, ok)
	require.Equal(t, models.CodeEmailExists, code)
}

func TestCodeOf_NotAPIError(t *testing.T) {
	_, ok := CodeOf(errors.New("boom"))
	require.False(t, ok)
}

func TestConnectionError_UnwrapAndTimeout(t *testing.T) {
	err := &ConnectionError{Method: http.MethodGet, Path: "/game", Err: context.DeadlineExceeded}

	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.True(t, err.Timeout())
	require.Contains(t, err.Error(), "GET /game")

	refused := &ConnectionError{Method: http.MethodGet, Path: "/game", Err: errors.New("connection refused")}
	require.False(t, refused.Timeout())
}

func TestMessage_AllCodesNonEmpty(t *testing.T) {
	for code := models.CodeRateLimited; code <= models.CodeUserDisabled; code++ {
		require.NotEmpty(t, Message(code), "code %d", code)
	}
	require.Equal(t, "unknown error", Message(models.Code(99)))
}

package apitest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pribylovaa/modverse-client/internal/models"
)

type ctxKey string

const ctxUserID ctxKey = "uid"

// UserID возвращает id пользователя, прошедшего проверку токена.
func UserID(r *http.Request) uint64 {
	id, _ := r.Context().Value(ctxUserID).(uint64)
	return id
}

type claims struct {
	ID   string `json:"id"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (s *Server) parse(header string) (uint64, string, error) {
	tok := strings.TrimPrefix(header, "Bearer ")
	if tok == "" {
		return 0, "", errors.New("empty token")
	}

	var c claims
	_, err := jwt.ParseWithClaims(tok, &c,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return 0, "", err
	}

	id, err := strconv.ParseUint(c.ID, 10, 64)
	if err != nil {
		return 0, "", err
	}

	return id, c.Role, nil
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _, err := s.parse(r.Header.Get("Authorization"))
		if err != nil {
			s.rejected.Add(1)
			writeFail(w, http.StatusUnauthorized, models.CodeTokenExpired, "token invalid")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxUserID, id)))
	})
}

func (s *Server) issue(w http.ResponseWriter, a *account) {
	w.Header().Set("Authorization", "Bearer "+s.Mint(a.id, a.role, s.accessTTL))
	w.Header().Set("Refreshtoken", "Bearer "+s.Mint(a.id, a.role, s.refreshTTL))
}

func (s *Server) check(username, password string) (*account, models.Code) {
	s.mu.Lock()
	a, ok := s.accounts[username]
	s.mu.Unlock()

	if !ok || bcrypt.CompareHashAndPassword(a.passHash, []byte(password)) != nil {
		return nil, models.CodeLoginFailed
	}
	if a.status == models.StatusDisable {
		return nil, models.CodeUserDisabled
	}

	return a, models.CodeOK
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "" {
		writeFail(w, http.StatusConflict, models.CodeLoginRepeat, "login repeat")
		return
	}

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, models.CodeUnknown, err.Error())
		return
	}

	if req.CaptchaID != "" {
		s.mu.Lock()
		want, ok := s.captchas[req.CaptchaID]
		delete(s.captchas, req.CaptchaID)
		s.mu.Unlock()

		if !ok || want != req.CaptchaCode {
			writeFail(w, http.StatusUnauthorized, models.CodeVerifyCodeInvalid, "captcha invalid")
			return
		}
	}

	a, code := s.check(req.Username, req.Password)
	if code != models.CodeOK {
		writeFail(w, http.StatusInternalServerError, code, "login failed")
		return
	}

	s.issue(w, a)
	writeJSON(w, http.StatusOK, envelope(models.CodeOK, nil, ""))
}

func (s *Server) loginAdmin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, models.CodeUnknown, err.Error())
		return
	}

	a, code := s.check(req.Username, req.Password)
	if code != models.CodeOK {
		writeFail(w, http.StatusInternalServerError, code, "login failed")
		return
	}
	if a.role != models.RoleAdmin {
		writeFail(w, http.StatusUnauthorized, models.CodeUnknown, "not admin")
		return
	}

	writeJSON(w, http.StatusOK, envelope(models.CodeOK, "Bearer "+s.Mint(a.id, a.role, s.accessTTL), ""))
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, models.CodeUnknown, err.Error())
		return
	}

	if req.Code != VerifyCode {
		writeFail(w, http.StatusInternalServerError, models.CodeVerifyCodeInvalid, "code invalid")
		return
	}

	s.mu.Lock()
	_, exists := s.accounts[req.Username]
	emailTaken := false
	for _, a := range s.accounts {
		if a.email == req.Email {
			emailTaken = true
		}
	}
	s.mu.Unlock()

	switch {
	case exists:
		writeFail(w, http.StatusInternalServerError, models.CodeUserExists, "user exists")
		return
	case emailTaken:
		writeFail(w, http.StatusInternalServerError, models.CodeEmailExists, "email exists")
		return
	}

	s.AddUser(req.Username, req.Email, req.Password, models.RoleUser)
	writeJSON(w, http.StatusCreated, envelope(models.CodeOK, nil, ""))
}

func (s *Server) sendVerify(w http.ResponseWriter, _ *http.Request) {
	s.verifyCalls.Add(1)
	writeJSON(w, http.StatusOK, envelope(models.CodeOK, nil, ""))
}

func (s *Server) sendResetEmail(w http.ResponseWriter, _ *http.Request) {
	s.resetCalls.Add(1)
	writeJSON(w, http.StatusOK, envelope(models.CodeOK, nil, ""))
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	s.refreshCalls.Add(1)

	s.mu.Lock()
	gate := s.refreshGate
	s.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		case <-time.After(10 * time.Second):
		}
	}

	if s.refreshFail.Load() {
		writeFail(w, http.StatusUnauthorized, models.CodeTokenExpired, "token invalid")
		return
	}

	id, role, err := s.parse(r.Header.Get("Authorization"))
	if err != nil {
		writeFail(w, http.StatusUnauthorized, models.CodeTokenExpired, "token invalid")
		return
	}

	w.Header().Set("Authorization", "Bearer "+s.Mint(id, role, s.accessTTL))
	w.Header().Set("Refreshtoken", "Bearer "+s.Mint(id, role, s.refreshTTL))
	writeJSON(w, http.StatusOK, envelope(models.CodeOK, nil, ""))
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, models.CodeUnknown, err.Error())
		return
	}
	if req.Token != ResetToken {
		writeFail(w, http.StatusUnauthorized, models.CodeTokenExpired, "token invalid")
		return
	}

	writeJSON(w, http.StatusOK, envelope(models.CodeOK, nil, ""))
}

func (s *Server) captcha(w http.ResponseWriter, _ *http.Request) {
	id := uuid.NewString()

	s.mu.Lock()
	s.captchas[id] = CaptchaCode
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, envelope(models.CodeOK, models.Captcha{
		CaptchaID: id,
		Image:     "data:image/png;base64,iVBORw0KGgo=",
	}, ""))
}

func (s *Server) isLogin(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, envelope(models.CodeOK, true, ""))
}

func (s *Server) byID(id uint64) *account {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.accounts {
		if a.id == id {
			return a
		}
	}
	return nil
}

func (s *Server) updatePassword(w http.ResponseWriter, r *http.Request) {
	var req models.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, models.CodeUnknown, err.Error())
		return
	}

	a := s.byID(UserID(r))
	if a == nil {
		writeFail(w, http.StatusInternalServerError, models.CodeDataNotExist, "user not found")
		return
	}
	if bcrypt.CompareHashAndPassword(a.passHash, []byte(req.OldPassword)) != nil {
		writeFail(w, http.StatusInternalServerError, models.CodeOriginPassword, "origin password")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.MinCost)
	if err != nil {
		writeFail(w, http.StatusInternalServerError, models.CodeUnknown, err.Error())
		return
	}

	s.mu.Lock()
	a.passHash = hash
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, envelope(models.CodeOK, nil, ""))
}

func (s *Server) myProfile(w http.ResponseWriter, r *http.Request) {
	a := s.byID(UserID(r))
	if a == nil {
		writeFail(w, http.StatusInternalServerError, models.CodeDataNotExist, "user not found")
		return
	}

	writeJSON(w, http.StatusOK, envelope(models.CodeOK, models.User{
		ID:        a.id,
		UserName:  a.name,
		Role:      a.role,
		Status:    a.status,
		Email:     a.email,
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}, ""))
}

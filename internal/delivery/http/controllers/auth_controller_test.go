package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusticketing/internal/delivery/http/helpers"
	"campusticketing/internal/domain"
)

// fakeAuthService implements domain.AuthService for handler tests.
type fakeAuthService struct {
	signUpErr       error
	loginErr        error
	user            *domain.User
	token           string
	lastSignUpName  string
	lastSignUpEmail string
	lastStudentID   *string
	lastLoginEmail  string
}

func (f *fakeAuthService) SignUp(ctx context.Context, name, email, password string, studentID *string) (*domain.User, string, error) {
	f.lastSignUpName = name
	f.lastSignUpEmail = email
	f.lastStudentID = studentID
	if f.signUpErr != nil {
		return nil, "", f.signUpErr
	}
	return f.user, f.token, nil
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	f.lastLoginEmail = email
	if f.loginErr != nil {
		return nil, "", f.loginErr
	}
	return f.user, f.token, nil
}

func sampleUser() *domain.User {
	return &domain.User{
		ID:    testUserID,
		Name:  "Alice",
		Email: "alice@example.com",
		Role:  domain.RoleStudent,
	}
}

func TestAuthController_SignUp(t *testing.T) {
	tests := []struct {
		name          string
		payload       string
		svc           *fakeAuthService
		wantStatus    int
		wantBodyCode  string
		wantStudentID *string
	}{
		{
			name:       "success",
			payload:    `{"name":"Alice","email":"alice@example.com","password":"secret1"}`,
			svc:        &fakeAuthService{user: sampleUser(), token: "tok"},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "success with student id",
			payload:    `{"name":"Alice","email":"alice@example.com","password":"secret1","student_id":"S12345"}`,
			svc:        &fakeAuthService{user: sampleUser(), token: "tok"},
			wantStatus: http.StatusCreated,
		},
		{
			name:         "missing name",
			payload:      `{"email":"alice@example.com","password":"secret1"}`,
			svc:          &fakeAuthService{},
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "bad email",
			payload:      `{"name":"Alice","email":"nope","password":"secret1"}`,
			svc:          &fakeAuthService{},
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "short password",
			payload:      `{"name":"Alice","email":"alice@example.com","password":"12345"}`,
			svc:          &fakeAuthService{},
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "duplicate email",
			payload:      `{"name":"Alice","email":"alice@example.com","password":"secret1"}`,
			svc:          &fakeAuthService{signUpErr: domain.ErrDuplicateEmail},
			wantStatus:   http.StatusConflict,
			wantBodyCode: helpers.ErrCodeDuplicateEmail,
		},
		{
			name:         "duplicate student id",
			payload:      `{"name":"Alice","email":"alice@example.com","password":"secret1","student_id":"S12345"}`,
			svc:          &fakeAuthService{signUpErr: domain.ErrDuplicateStudentID},
			wantStatus:   http.StatusConflict,
			wantBodyCode: helpers.ErrCodeConflict,
		},
		{
			name:         "internal error",
			payload:      `{"name":"Alice","email":"alice@example.com","password":"secret1"}`,
			svc:          &fakeAuthService{signUpErr: errors.New("db down")},
			wantStatus:   http.StatusInternalServerError,
			wantBodyCode: helpers.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewAuthController(testLogger, tt.svc)

			req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString(tt.payload))
			rr := httptest.NewRecorder()
			ctrl.SignUp(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			envelope := decodeEnvelope(t, rr)
			if tt.wantBodyCode != "" {
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
				return
			}
			require.Nil(t, envelope.Error)

			raw, err := json.Marshal(envelope.Data)
			require.NoError(t, err)
			var resp AuthResponse
			require.NoError(t, json.Unmarshal(raw, &resp))
			assert.Equal(t, "tok", resp.Token)
			assert.Equal(t, "Bearer", resp.TokenType)
			require.NotNil(t, resp.User)
			assert.Equal(t, "alice@example.com", resp.User.Email)
		})
	}
}

func TestAuthController_SignUp_passes_student_id(t *testing.T) {
	svc := &fakeAuthService{user: sampleUser(), token: "tok"}
	ctrl := NewAuthController(testLogger, svc)

	payload := `{"name":"Alice","email":"alice@example.com","password":"secret1","student_id":" S12345 "}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString(payload))
	rr := httptest.NewRecorder()
	ctrl.SignUp(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	require.NotNil(t, svc.lastStudentID)
	assert.Equal(t, "S12345", *svc.lastStudentID, "student id trimmed")
}

func TestAuthController_SignUp_omits_student_id_when_blank(t *testing.T) {
	svc := &fakeAuthService{user: sampleUser(), token: "tok"}
	ctrl := NewAuthController(testLogger, svc)

	payload := `{"name":"Alice","email":"alice@example.com","password":"secret1","student_id":"  "}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString(payload))
	rr := httptest.NewRecorder()
	ctrl.SignUp(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Nil(t, svc.lastStudentID)
}

func TestAuthController_Login(t *testing.T) {
	tests := []struct {
		name         string
		payload      string
		svc          *fakeAuthService
		wantStatus   int
		wantBodyCode string
	}{
		{
			name:       "success",
			payload:    `{"email":"alice@example.com","password":"secret1"}`,
			svc:        &fakeAuthService{user: sampleUser(), token: "tok"},
			wantStatus: http.StatusOK,
		},
		{
			name:         "missing fields",
			payload:      `{}`,
			svc:          &fakeAuthService{},
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "bad credentials",
			payload:      `{"email":"alice@example.com","password":"wrong"}`,
			svc:          &fakeAuthService{loginErr: domain.ErrInvalidInput},
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
		{
			name:         "internal error",
			payload:      `{"email":"alice@example.com","password":"secret1"}`,
			svc:          &fakeAuthService{loginErr: errors.New("db down")},
			wantStatus:   http.StatusInternalServerError,
			wantBodyCode: helpers.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewAuthController(testLogger, tt.svc)

			req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(tt.payload))
			rr := httptest.NewRecorder()
			ctrl.Login(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			envelope := decodeEnvelope(t, rr)
			if tt.wantBodyCode != "" {
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
			} else {
				require.Nil(t, envelope.Error)
			}
		})
	}
}

package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"neurogen-backend/internal/adapters/persistence/models"
	"neurogen-backend/internal/config"
	"neurogen-backend/internal/core/domain"
	"neurogen-backend/internal/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeUserRepo is an in-memory UserRepository
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	u := *stored
	return &u, nil
}

func (r *fakeUserRepo) ExistsByID(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[id]
	return ok, nil
}

func (r *fakeUserRepo) ListByRole(ctx context.Context, role string) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.User
	for _, u := range r.users {
		if u.Role == role {
			stored := *u
			out = append(out, &stored)
		}
	}
	return out, nil
}

func newAuthFixture() (*AuthService, *fakeUserRepo) {
	repo := newFakeUserRepo()
	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:      "test-secret",
			ExpiryHours: 24,
		},
	}
	return NewAuthService(repo, cfg), repo
}

func registerPatient(t *testing.T, svc *AuthService) *models.UserResponse {
	t.Helper()
	user, err := svc.Register(context.Background(), &RegisterInput{
		ID:       "patient_demo",
		Password: "12345678",
		Role:     "PATIENT",
		Name:     "李患者",
		Gender:   "女",
		Age:      32,
	})
	require.NoError(t, err)
	return user
}

func TestRegister(t *testing.T) {
	svc, repo := newAuthFixture()

	user := registerPatient(t, svc)
	assert.Equal(t, "patient_demo", user.ID)
	assert.Equal(t, "PATIENT", user.Role)
	assert.Equal(t, "李患者", user.Name)

	// Password is stored hashed, never verbatim
	stored, err := repo.GetByID(context.Background(), "patient_demo")
	require.NoError(t, err)
	assert.NotEqual(t, "12345678", stored.PasswordHash)
	assert.NotEmpty(t, stored.PasswordHash)
}

func TestRegister_DoctorProfile(t *testing.T) {
	svc, _ := newAuthFixture()

	department := "神经内科"
	title := "主治医师"
	hospital := "北京协和医院"

	user, err := svc.Register(context.Background(), &RegisterInput{
		ID:         "110101199501011234",
		Password:   "12345678",
		Role:       "DOCTOR",
		Name:       "张医生",
		Department: &department,
		Title:      &title,
		Hospital:   &hospital,
	})
	require.NoError(t, err)

	assert.Equal(t, "DOCTOR", user.Role)
	require.NotNil(t, user.Department)
	assert.Equal(t, "神经内科", *user.Department)
}

func TestRegister_DuplicateID(t *testing.T) {
	svc, _ := newAuthFixture()
	registerPatient(t, svc)

	// Same ID again, even with a different role
	_, err := svc.Register(context.Background(), &RegisterInput{
		ID:       "patient_demo",
		Password: "12345678",
		Role:     "DOCTOR",
		Name:     "张医生",
	})
	assert.True(t, errors.Is(err, domain.ErrUserAlreadyExists))
}

func TestRegister_InvalidInput(t *testing.T) {
	svc, _ := newAuthFixture()

	tests := []struct {
		name    string
		input   RegisterInput
		wantErr error
	}{
		{
			name:    "unknown role",
			input:   RegisterInput{ID: "u1", Password: "12345678", Role: "ADMIN", Name: "x"},
			wantErr: domain.ErrInvalidRole,
		},
		{
			name:    "lowercase role",
			input:   RegisterInput{ID: "u1", Password: "12345678", Role: "patient", Name: "x"},
			wantErr: domain.ErrInvalidRole,
		},
		{
			name:    "short password",
			input:   RegisterInput{ID: "u1", Password: "1234567", Role: "PATIENT", Name: "x"},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "missing id",
			input:   RegisterInput{Password: "12345678", Role: "PATIENT", Name: "x"},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "missing name",
			input:   RegisterInput{ID: "u1", Password: "12345678", Role: "PATIENT"},
			wantErr: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), &tt.input)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newAuthFixture()
	registerPatient(t, svc)

	resp, err := svc.Login(context.Background(), &LoginInput{
		ID:       "patient_demo",
		Password: "12345678",
		Role:     "PATIENT",
	})
	require.NoError(t, err)

	assert.Equal(t, "patient_demo", resp.User.ID)
	require.NotEmpty(t, resp.AccessToken)

	// The issued token carries the identity and validates against the
	// configured secret
	claims, err := jwt.ValidateAccessToken(resp.AccessToken, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, "patient_demo", claims.UserID)
	assert.Equal(t, "李患者", claims.Name)
	assert.Equal(t, "PATIENT", claims.Role)
}

func TestLogin_BadCredentials(t *testing.T) {
	svc, _ := newAuthFixture()
	registerPatient(t, svc)

	// Wrong password and unknown ID are indistinguishable
	_, err := svc.Login(context.Background(), &LoginInput{
		ID: "patient_demo", Password: "wrong-password", Role: "PATIENT",
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidCredentials))

	_, err = svc.Login(context.Background(), &LoginInput{
		ID: "nobody", Password: "12345678", Role: "PATIENT",
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidCredentials))
}

func TestLogin_RoleMismatch(t *testing.T) {
	svc, _ := newAuthFixture()
	registerPatient(t, svc)

	_, err := svc.Login(context.Background(), &LoginInput{
		ID: "patient_demo", Password: "12345678", Role: "DOCTOR",
	})
	assert.True(t, errors.Is(err, domain.ErrRoleMismatch))
}

func TestGetProfile(t *testing.T) {
	svc, _ := newAuthFixture()
	registerPatient(t, svc)

	user, err := svc.GetProfile(context.Background(), "patient_demo")
	require.NoError(t, err)
	assert.Equal(t, "李患者", user.Name)

	_, err = svc.GetProfile(context.Background(), "nobody")
	assert.True(t, errors.Is(err, domain.ErrUserNotFound))
}

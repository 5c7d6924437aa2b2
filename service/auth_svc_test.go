package service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"github.com/shelterhq/shelter-api/domain"
	"github.com/shelterhq/shelter-api/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func newAuthTestService(t *testing.T, repo *stubRepo) *Service {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	svc := newTestService(repo)
	svc.jwtPrivateKey = key
	return svc
}

// storedUser builds a user whose password field already carries the argon2
// hash, the shape a repository read returns.
func storedUser(t *testing.T, email, password string, role domain.Role) *domain.User {
	t.Helper()
	hash, err := util.CreateArgon2Hash(password)
	require.NoError(t, err)
	user := &domain.User{
		BaseEntity: domain.NewBaseEntity(),
		Name:       "Test User",
		Email:      email,
		Password:   domain.EncryptedPassword(hash),
		Role:       role,
	}
	user.ID = bson.NewObjectID()
	return user
}

func TestRegisterDefaultsToVolunteer(t *testing.T) {
	var created *domain.User
	repo := &stubRepo{
		createUser: func(_ context.Context, user *domain.User) error {
			user.ID = bson.NewObjectID()
			created = user
			return nil
		},
	}
	svc := newAuthTestService(t, repo)

	user, token, err := svc.Register(context.Background(), testOrigin, domain.RegisterInput{
		Name:     "New Volunteer",
		Email:    "vol@shelter.test",
		Password: "hunter22",
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, domain.RoleVolunteer, user.Role)
	assert.NotEmpty(t, token)

	claims, err := svc.VerifyToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UID)
	assert.Equal(t, domain.RoleVolunteer, claims.Role)

	svc.Audit.Wait()
	entries := repo.auditEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionUserCreate, entries[0].Action)
	assert.Equal(t, domain.ActionTypeInsert, entries[0].ActionType)
	assert.Nil(t, entries[0].ActorID)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	svc := newAuthTestService(t, &stubRepo{})
	_, _, err := svc.Register(context.Background(), testOrigin, domain.RegisterInput{
		Name:     "X",
		Email:    "x@shelter.test",
		Password: "pw",
		Role:     "superuser",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLoginUnknownEmailLeavesNoTrail(t *testing.T) {
	repo := &stubRepo{
		queryUsers: func(_ context.Context, opt *domain.QueryUserOptions) error {
			return nil
		},
	}
	svc := newAuthTestService(t, repo)

	_, _, err := svc.Login(context.Background(), testOrigin, "ghost@shelter.test", "pw")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	svc.Audit.Wait()
	assert.Empty(t, repo.auditEntries())
}

func TestLoginWrongPassword(t *testing.T) {
	user := storedUser(t, "staff@shelter.test", "correct-pw", domain.RoleStaff)
	updated := false
	repo := &stubRepo{
		queryUsers: func(_ context.Context, opt *domain.QueryUserOptions) error {
			opt.Result = []*domain.User{user}
			return nil
		},
		updateUser: func(_ context.Context, _ *domain.User) error {
			updated = true
			return nil
		},
	}
	svc := newAuthTestService(t, repo)

	// Wrong attempts each leave a LOGIN_FAILED entry and never touch the
	// user record.
	for i := 0; i < 3; i++ {
		_, _, err := svc.Login(context.Background(), testOrigin, user.Email, "wrong-pw")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	}
	assert.False(t, updated)
	assert.Zero(t, user.LastLogin)

	entries := repo.auditEntries()
	require.Len(t, entries, 3)
	for _, entry := range entries {
		assert.Equal(t, domain.ActionLoginFailed, entry.Action)
		assert.Nil(t, entry.ActorID)
		require.NotNil(t, entry.TargetID)
		assert.Equal(t, user.ID, *entry.TargetID)
		assert.Equal(t, user.Email, entry.Details["email"])
	}
}

func TestLoginSuccess(t *testing.T) {
	user := storedUser(t, "staff@shelter.test", "correct-pw", domain.RoleStaff)
	repo := &stubRepo{
		queryUsers: func(_ context.Context, opt *domain.QueryUserOptions) error {
			assert.Equal(t, []string{user.Email}, opt.Emails)
			opt.Result = []*domain.User{user}
			return nil
		},
		updateUser: func(_ context.Context, u *domain.User) error {
			assert.NotZero(t, u.LastLogin)
			return nil
		},
	}
	svc := newAuthTestService(t, repo)

	got, token, err := svc.Login(context.Background(), testOrigin, user.Email, "correct-pw")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.NotZero(t, got.LastLogin)

	claims, err := svc.VerifyToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UID)
	assert.Equal(t, domain.RoleStaff, claims.Role)
	require.NotNil(t, claims.ExpiresAt)

	entries := repo.auditEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionLoginSuccess, entries[0].Action)
	require.NotNil(t, entries[0].ActorID)
	assert.Equal(t, user.ID, *entries[0].ActorID)
}

func TestVerifyTokenGarbage(t *testing.T) {
	svc := newAuthTestService(t, &stubRepo{})
	_, err := svc.VerifyToken(context.Background(), "not.a.token")
	require.Error(t, err)
}

func TestVerifyTokenWrongKey(t *testing.T) {
	user := storedUser(t, "a@shelter.test", "pw", domain.RoleAdmin)
	signer := newAuthTestService(t, &stubRepo{})
	token, err := signer.signToken(user)
	require.NoError(t, err)

	verifier := newAuthTestService(t, &stubRepo{})
	_, err = verifier.VerifyToken(context.Background(), token)
	require.Error(t, err)
}

func TestGetUserByClaimsStaleSession(t *testing.T) {
	repo := &stubRepo{
		queryUsers: func(_ context.Context, opt *domain.QueryUserOptions) error {
			return nil
		},
	}
	svc := newAuthTestService(t, repo)

	_, err := svc.GetUserByClaims(context.Background(), &domain.Claims{
		UID:  bson.NewObjectID().Hex(),
		Role: domain.RoleStaff,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateAdminUserIfNotExists(t *testing.T) {
	var created *domain.User
	repo := &stubRepo{
		queryUsers: func(_ context.Context, opt *domain.QueryUserOptions) error {
			return nil
		},
		createUser: func(_ context.Context, user *domain.User) error {
			user.ID = bson.NewObjectID()
			created = user
			return nil
		},
	}
	svc := newAuthTestService(t, repo)

	err := svc.CreateAdminUserIfNotExists(context.Background(), "Admin", "admin@shelter.test", "pw")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, domain.RoleAdmin, created.Role)
}

func TestCreateAdminUserAlreadyExists(t *testing.T) {
	existing := storedUser(t, "admin@shelter.test", "pw", domain.RoleAdmin)
	repo := &stubRepo{
		queryUsers: func(_ context.Context, opt *domain.QueryUserOptions) error {
			opt.Result = []*domain.User{existing}
			return nil
		},
	}
	svc := newAuthTestService(t, repo)

	err := svc.CreateAdminUserIfNotExists(context.Background(), "Admin", existing.Email, "pw")
	require.NoError(t, err)
}

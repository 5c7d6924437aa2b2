package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shelterhq/shelter-api/domain"
	"github.com/shelterhq/shelter-api/pkg/logger"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const tokenIssuer = "shelter-api"

// Register creates a self-service account and signs the new user in. The
// requested role defaults to volunteer; an invalid role is rejected rather
// than coerced.
func (svc *Service) Register(ctx context.Context, origin domain.Origin, input domain.RegisterInput) (*domain.User, string, error) {
	if input.Name == "" || input.Email == "" || input.Password == "" {
		return nil, "", fmt.Errorf("%w: name, email and password are required", domain.ErrValidation)
	}
	if input.Role == "" {
		input.Role = domain.RoleVolunteer
	}
	if !input.Role.Valid() {
		return nil, "", fmt.Errorf("%w: unknown role %q", domain.ErrValidation, input.Role)
	}

	user := &domain.User{
		BaseEntity: domain.NewBaseEntity(),
		Name:       input.Name,
		Email:      input.Email,
		Password:   domain.EncryptedPassword(input.Password),
		Role:       input.Role,
	}
	if err := svc.Repo.CreateUser(ctx, user); err != nil {
		return nil, "", err
	}

	svc.Audit.Dispatch(&domain.AuditLog{
		Action:      domain.ActionUserCreate,
		ActionType:  domain.ActionTypeInsert,
		TargetModel: "User",
		TargetID:    &user.ID,
		IP:          origin.IP,
		UserAgent:   origin.UserAgent,
		Details:     bson.M{"email": user.Email, "role": string(user.Role)},
	})

	token, err := svc.signToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies credentials and mints a token. An unknown email and a wrong
// password are indistinguishable to the caller; only the latter leaves a
// LOGIN_FAILED trail, since only then is there a user to attribute it to.
func (svc *Service) Login(ctx context.Context, origin domain.Origin, email, password string) (*domain.User, string, error) {
	if email == "" || password == "" {
		return nil, "", fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}

	user, err := svc.userByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", domain.ErrInvalidCredentials
		}
		return nil, "", err
	}

	match, err := user.Password.Cmp(password)
	if err != nil {
		return nil, "", err
	}
	if !match {
		svc.Audit.Record(ctx, &domain.AuditLog{
			Action:      domain.ActionLoginFailed,
			ActionType:  domain.ActionTypeRead,
			TargetModel: "User",
			TargetID:    &user.ID,
			IP:          origin.IP,
			UserAgent:   origin.UserAgent,
			Details:     bson.M{"email": email},
		})
		return nil, "", domain.ErrInvalidCredentials
	}

	user.LastLogin = time.Now().UnixMilli()
	if err := svc.Repo.UpdateUser(ctx, user); err != nil {
		return nil, "", err
	}

	svc.Audit.Record(ctx, &domain.AuditLog{
		Action:      domain.ActionLoginSuccess,
		ActionType:  domain.ActionTypeRead,
		ActorID:     &user.ID,
		TargetModel: "User",
		TargetID:    &user.ID,
		IP:          origin.IP,
		UserAgent:   origin.UserAgent,
	})

	token, err := svc.signToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (svc *Service) Logout(ctx context.Context, origin domain.Origin, operator *domain.Claims) error {
	svc.Audit.Record(ctx, &domain.AuditLog{
		Action:      domain.ActionLogout,
		ActionType:  domain.ActionTypeRead,
		ActorID:     actorID(operator),
		TargetModel: "User",
		TargetID:    actorID(operator),
		IP:          origin.IP,
		UserAgent:   origin.UserAgent,
	})
	return nil
}

// VerifyToken parses and validates a signed token and returns its claims.
func (svc *Service) VerifyToken(ctx context.Context, tokenString string) (*domain.Claims, error) {
	claims := &domain.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return &svc.jwtPrivateKey.PublicKey, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}

// GetUserByClaims resolves verified claims to the live user record. A valid
// token whose user has since been deleted yields ErrNotFound.
func (svc *Service) GetUserByClaims(ctx context.Context, claims *domain.Claims) (*domain.User, error) {
	if claims == nil {
		return nil, domain.ErrNotFound
	}
	uid, err := claims.GetBsonObjectUID()
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidID, claims.UID)
	}
	opt := &domain.QueryUserOptions{IDs: []bson.ObjectID{uid}}
	if err := svc.Repo.QueryUsers(ctx, opt); err != nil {
		return nil, err
	}
	if len(opt.Result) == 0 {
		return nil, domain.ErrNotFound
	}
	return opt.Result[0], nil
}

// CreateAdminUserIfNotExists seeds the bootstrap admin account on startup.
// An existing account with the same email is left untouched.
func (svc *Service) CreateAdminUserIfNotExists(ctx context.Context, name, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	if _, err := svc.userByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	user := &domain.User{
		BaseEntity: domain.NewBaseEntity(),
		Name:       name,
		Email:      email,
		Password:   domain.EncryptedPassword(password),
		Role:       domain.RoleAdmin,
	}
	if err := svc.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil
		}
		return err
	}
	logger.Logger(ctx).Info().Str("email", email).Msg("admin account created")
	return nil
}

func (svc *Service) userByEmail(ctx context.Context, email string) (*domain.User, error) {
	opt := &domain.QueryUserOptions{Emails: []string{email}}
	if err := svc.Repo.QueryUsers(ctx, opt); err != nil {
		return nil, err
	}
	if len(opt.Result) == 0 {
		return nil, domain.ErrNotFound
	}
	return opt.Result[0], nil
}

func (svc *Service) signToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := &domain.Claims{
		UID:  user.ID.Hex(),
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(svc.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(svc.jwtPrivateKey)
}

package rest_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/shelterhq/shelter-api/config"
	"github.com/shelterhq/shelter-api/domain"
	"github.com/shelterhq/shelter-api/rest"
)

func (suite *HandlerTestSuite) TestNoTokenIs401WithoutTrail() {
	rec := suite.serve(httptest.NewRequest(http.MethodGet, "/api/animals", nil))

	suite.Equal(http.StatusUnauthorized, rec.Code)
	suite.Empty(suite.Sink.all(), "Anonymous noise must not reach the audit trail")
}

func (suite *HandlerTestSuite) TestInvalidTokenLeavesAuthFailure() {
	suite.Svc.verifyToken = func(_ context.Context, _ string) (*domain.Claims, error) {
		return nil, errors.New("token is expired")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/animals", nil)
	req.Header.Set("Authorization", "Bearer expired-token")
	rec := suite.serve(req)

	suite.Equal(http.StatusUnauthorized, rec.Code)
	entries := suite.Sink.all()
	suite.Require().Len(entries, 1)
	suite.Equal(domain.ActionAuthFailure, entries[0].Action)
	suite.Nil(entries[0].ActorID, "Failed verification has no actor")
}

func (suite *HandlerTestSuite) TestStaleSessionIs401WithoutTrail() {
	suite.Svc.verifyToken = func(_ context.Context, _ string) (*domain.Claims, error) {
		return &domain.Claims{UID: "abc", Role: domain.RoleStaff}, nil
	}
	suite.Svc.resolveUser = func(_ context.Context, _ *domain.Claims) (*domain.User, error) {
		return nil, domain.ErrNotFound
	}

	req := httptest.NewRequest(http.MethodGet, "/api/animals", nil)
	req.Header.Set("Authorization", "Bearer orphan-token")
	rec := suite.serve(req)

	suite.Equal(http.StatusUnauthorized, rec.Code)
	suite.Empty(suite.Sink.all())
}

func (suite *HandlerTestSuite) TestRoleGateLeavesAuthorizationFailure() {
	suite.authorizeAs(domain.RoleVolunteer)

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := suite.serve(req)

	suite.Equal(http.StatusForbidden, rec.Code)
	entries := suite.Sink.all()
	suite.Require().Len(entries, 1)
	suite.Equal(domain.ActionAuthorizationFailure, entries[0].Action)
	suite.Equal("User", entries[0].TargetModel)
	suite.Equal([]string{"admin"}, entries[0].Details["requiredRoles"])
	suite.Equal("volunteer", entries[0].Details["userRole"])
}

func (suite *HandlerTestSuite) TestCookieFallback() {
	suite.authorizeAs(domain.RoleVolunteer)
	suite.Svc.listAnimals = func(_ context.Context, _ domain.Origin, _ *domain.Claims, _ map[string][]string) (*domain.Page[*domain.Animal], error) {
		return domain.NewPage([]*domain.Animal{}, 0, 1, 25), nil
	}

	req := httptest.NewRequest(http.MethodGet, "/api/animals", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "cookie-token"})
	rec := suite.serve(req)

	suite.Equal(http.StatusOK, rec.Code)
}

func (suite *HandlerTestSuite) TestRateLimitTripsWithTrail() {
	handler, err := rest.NewHandler(rest.Params{
		Svc:       suite.Svc,
		Audit:     suite.Handler.Audit,
		RateLimit: config.RateLimitConfig{WindowSeconds: 60, MaxRequests: 2},
	})
	suite.Require().NoError(err)

	gated := handler.RateLimitMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/public/animals", nil)
		req.RemoteAddr = "198.51.100.9:4000"
		gated.ServeHTTP(rec, req)
		suite.Equal(http.StatusOK, rec.Code)
	}

	limited := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/public/animals", nil)
	req.RemoteAddr = "198.51.100.9:4000"
	gated.ServeHTTP(limited, req)
	suite.Equal(http.StatusTooManyRequests, limited.Code)

	// The window is per IP, so another client is unaffected.
	other := httptest.NewRecorder()
	otherReq := httptest.NewRequest(http.MethodGet, "/api/public/animals", nil)
	otherReq.RemoteAddr = "203.0.113.4:4000"
	gated.ServeHTTP(other, otherReq)
	suite.Equal(http.StatusOK, other.Code)

	suite.Handler.Audit.Wait()
	entries := suite.Sink.all()
	suite.Require().Len(entries, 1)
	suite.Equal(domain.ActionRateLimitExceeded, entries[0].Action)
	suite.Equal("198.51.100.9", entries[0].IP)
}

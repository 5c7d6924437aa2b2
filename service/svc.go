package service

import (
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/shelterhq/shelter-api/audit"
	"github.com/shelterhq/shelter-api/config"
	"github.com/shelterhq/shelter-api/domain"
	"github.com/shelterhq/shelter-api/pkg/util"
	"go.uber.org/fx"
)

const defaultTokenTTL = 3 * time.Hour

type Params struct {
	fx.In
	Repo      domain.Repository
	Audit     *audit.Logger
	KeyConfig config.KeyConfig
}

func NewService(params Params) (domain.Service, error) {
	jwtPrivateKey, err := util.InitRSAPrivateKey(params.KeyConfig.RsaPrivateKeyPem.Value())
	if err != nil {
		return nil, fmt.Errorf("initialize RSA private key: %w", err)
	}

	tokenTTL := defaultTokenTTL
	if params.KeyConfig.TokenTTLMinutes > 0 {
		tokenTTL = time.Duration(params.KeyConfig.TokenTTLMinutes) * time.Minute
	}

	svc := &Service{
		Repo:          params.Repo,
		Audit:         params.Audit,
		jwtPrivateKey: jwtPrivateKey,
		tokenTTL:      tokenTTL,
	}

	return svc, nil
}

type Service struct {
	Repo          domain.Repository
	Audit         *audit.Logger
	jwtPrivateKey *rsa.PrivateKey
	tokenTTL      time.Duration
}

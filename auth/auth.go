package auth

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	EnvAPIID   = "API_ID"
	EnvAPIHash = "API_HASH"
)

// Credentials identify this application to the messaging platform.
type Credentials struct {
	APIID   int
	APIHash string
}

type IProvider interface {
	// Credentials returns the platform API credentials, or error if any is missing.
	Credentials() (*Credentials, error)
}

// EnvProvider reads credentials from the API_ID and API_HASH environment variables.
type EnvProvider struct {
	v *viper.Viper
}

func NewEnvProvider() *EnvProvider {
	v := viper.New()
	v.AutomaticEnv()
	_ = v.BindEnv("api_id", EnvAPIID)
	_ = v.BindEnv("api_hash", EnvAPIHash)
	return &EnvProvider{v: v}
}

func (p *EnvProvider) Credentials() (*Credentials, error) {
	idStr := strings.TrimSpace(p.v.GetString("api_id"))
	hash := strings.TrimSpace(p.v.GetString("api_hash"))

	if idStr == "" {
		return nil, errors.Errorf("env %s is required", EnvAPIID)
	}
	if hash == "" {
		return nil, errors.Errorf("env %s is required", EnvAPIHash)
	}

	id, err := strconv.Atoi(idStr)
	if err != nil {
		return nil, errors.Wrapf(err, "error parse %s as integer", EnvAPIID)
	}
	return &Credentials{APIID: id, APIHash: hash}, nil
}

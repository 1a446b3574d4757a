package kiturami

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://igis.krb.co.kr/api"

	// The vendor API tolerates roughly one call every two seconds;
	// every request pays this delay after completing.
	defaultRequestDelay = 2 * time.Second

	requestTimeout = 10 * time.Second
)

// Temperature ranges accepted by the controllers.
const (
	MinHeatTemp = 10
	MaxHeatTemp = 45
	MinBathTemp = 50
	MaxBathTemp = 80
)

// Config defines runtime configuration for the Kiturami client.
type Config struct {
	BaseURL      string
	MemberID     string
	Password     string
	PasswordFile string
	RequestDelay *time.Duration
}

// ConfigFromEnv reads KRB_USERNAME, KRB_PASSWORD or KRB_PASSWORD_FILE,
// and the optional KRB_BASE_URL override.
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		BaseURL:      strings.TrimSpace(os.Getenv("KRB_BASE_URL")),
		MemberID:     strings.TrimSpace(os.Getenv("KRB_USERNAME")),
		Password:     os.Getenv("KRB_PASSWORD"),
		PasswordFile: strings.TrimSpace(os.Getenv("KRB_PASSWORD_FILE")),
	}
	if cfg.MemberID == "" {
		return Config{}, fmt.Errorf("KRB_USERNAME is required")
	}
	if cfg.Password == "" && cfg.PasswordFile == "" {
		return Config{}, fmt.Errorf("KRB_PASSWORD or KRB_PASSWORD_FILE is required")
	}
	return cfg, nil
}

func (c Config) password() (string, error) {
	if c.Password != "" {
		return c.Password, nil
	}
	if c.PasswordFile == "" {
		return "", fmt.Errorf("kiturami password is required")
	}
	data, err := os.ReadFile(c.PasswordFile)
	if err != nil {
		return "", fmt.Errorf("read password file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (c Config) requestDelay() time.Duration {
	if c.RequestDelay != nil {
		return *c.RequestDelay
	}
	return defaultRequestDelay
}

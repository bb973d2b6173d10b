package notify

import (
	"context"
	"fmt"
	"strings"
)

// Provider names accepted by New.
const (
	ProviderAuto   = ""
	ProviderNone   = "none"
	ProviderSES    = "ses"
	ProviderResend = "resend"
)

// Config selects and configures an email provider.
type Config struct {
	Provider     string
	ResendAPIKey string
	SESAccessKey string
	SESSecretKey string
	SESRegion    string
}

// resolve picks a provider when none was named: Resend if a key is present,
// then SES if both AWS keys are present, otherwise none.
func (c Config) resolve() string {
	p := strings.ToLower(strings.TrimSpace(c.Provider))
	if p != ProviderAuto {
		return p
	}
	switch {
	case c.ResendAPIKey != "":
		return ProviderResend
	case c.SESAccessKey != "" && c.SESSecretKey != "":
		return ProviderSES
	default:
		return ProviderNone
	}
}

// New returns the Notifier for cfg and the resolved provider name. Missing
// credentials yield Disabled; a named provider with bad credentials is an error.
func New(ctx context.Context, cfg Config) (Notifier, string, error) {
	provider := cfg.resolve()
	switch provider {
	case ProviderNone:
		return Disabled{}, provider, nil
	case ProviderResend:
		n, err := NewResendNotifier(cfg.ResendAPIKey)
		if err != nil {
			return nil, provider, err
		}
		return n, provider, nil
	case ProviderSES:
		if cfg.SESAccessKey == "" || cfg.SESSecretKey == "" {
			return nil, provider, fmt.Errorf("ses: access key and secret key are required")
		}
		n, err := NewSESNotifier(ctx, cfg.SESAccessKey, cfg.SESSecretKey, cfg.SESRegion)
		if err != nil {
			return nil, provider, err
		}
		return n, provider, nil
	default:
		return nil, provider, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}

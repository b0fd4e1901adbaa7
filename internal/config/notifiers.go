package config

import (
	"fmt"
	"os"

	"github.com/floodwatch-ke/floodwatch/internal/database"
	"github.com/floodwatch-ke/floodwatch/internal/notify"
	"gopkg.in/yaml.v3"
)

// NotifierConfig is the YAML file describing the outbound gateways.
type NotifierConfig struct {
	Email EmailConfig `yaml:"email"`
	SMS   SMSConfig   `yaml:"sms"`
}

// EmailConfig selects and configures the email provider.
type EmailConfig struct {
	Provider string          `yaml:"provider"`
	SendGrid *SendGridConfig `yaml:"sendgrid,omitempty"`
}

// SendGridConfig holds SendGrid credentials.
type SendGridConfig struct {
	APIKey    string `yaml:"api_key"`
	FromName  string `yaml:"from_name"`
	FromEmail string `yaml:"from_email"`
}

// SMSConfig selects and configures the SMS provider.
type SMSConfig struct {
	Provider string        `yaml:"provider"`
	Twilio   *TwilioConfig `yaml:"twilio,omitempty"`
}

// TwilioConfig holds Twilio credentials.
type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
}

// LoadNotifierConfig reads the notifier YAML file. Credentials support
// ${ENV_VAR} expansion so the file can be committed without secrets.
func LoadNotifierConfig(path string) (*NotifierConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	expanded := os.Expand(string(data), os.Getenv)

	var cfg NotifierConfig
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse notifier config: %w", err)
	}
	return &cfg, nil
}

// BuildNotifiers constructs the channel adapters declared in the config.
func BuildNotifiers(cfg *NotifierConfig) (map[database.SubscriptionMethod]notify.Notifier, error) {
	channels := make(map[database.SubscriptionMethod]notify.Notifier)

	switch cfg.Email.Provider {
	case "sendgrid":
		if cfg.Email.SendGrid == nil {
			return nil, fmt.Errorf("missing sendgrid config for email provider")
		}
		sg := cfg.Email.SendGrid
		channels[database.MethodEmail] = notify.NewEmailNotifier(sg.APIKey, sg.FromName, sg.FromEmail)
	case "":
		// email channel disabled
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Email.Provider)
	}

	switch cfg.SMS.Provider {
	case "twilio":
		if cfg.SMS.Twilio == nil {
			return nil, fmt.Errorf("missing twilio config for sms provider")
		}
		tw := cfg.SMS.Twilio
		channels[database.MethodSMS] = notify.NewSMSNotifier(tw.AccountSID, tw.AuthToken, tw.FromNumber)
	case "":
		// sms channel disabled
	default:
		return nil, fmt.Errorf("unknown sms provider %q", cfg.SMS.Provider)
	}

	return channels, nil
}

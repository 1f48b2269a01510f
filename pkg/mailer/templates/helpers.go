package templates

import (
	"time"

	"github.com/elysian/registration-service/config"
)

// Option pattern
type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

func WithWelcomeMessage(msg string) Option {
	return func(d *EmailData) { d.WelcomeMessage = msg }
}

// NewBaseEmailData fills the company fields from config, then applies opts.
func NewBaseEmailData(cfg *config.Config, typ, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:  name,
		Email: email,
		Type:  typ,

		CompanyName: cfg.CompanyName,
		AppName:     cfg.AppName,
		SupportURL:  cfg.SupportURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// NewWelcomeData is the shared part of every welcome email; the sender adds
// Name, Email and WelcomeMessage per user.
func NewWelcomeData(cfg *config.Config, opts ...Option) map[string]any {
	return ToMap(NewBaseEmailData(cfg, Welcome, "", "", opts...))
}

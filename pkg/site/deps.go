// Package site serves the public presentation tier: page payloads, the RSVP
// relay, the contact form and the admin/ops endpoints.
package site

import (
	"time"

	"github.com/rs/zerolog"

	"wedding-site/pkg/cms"
	"wedding-site/pkg/config"
	"wedding-site/pkg/locale"
	"wedding-site/pkg/logger"
	"wedding-site/pkg/navigation"
	"wedding-site/pkg/notify"
	"wedding-site/pkg/ratelimit"
	"wedding-site/pkg/seo"
	"wedding-site/pkg/utils"
)

// Admin login throttling.
const (
	LoginAttempts = 5
	LoginWindow   = 15 * time.Minute
)

// Deps 展示层共享依赖
type Deps struct {
	Config     *config.Config
	CMS        *cms.Client
	Locales    *locale.Resolver
	Nav        *navigation.Assembler
	SEO        *seo.Builder
	Mailer     notify.Mailer
	Dispatcher *notify.Dispatcher
	Limiter    *ratelimit.Limiter
	// LoginLimiter throttles admin login attempts per client IP.
	LoginLimiter *ratelimit.Limiter
	Tokens       *utils.JWTService
	Log          zerolog.Logger
	Now          func() time.Time
}

// NewDeps wires the presentation tier from configuration. The caller owns
// the dispatcher and limiter lifecycles (Close and Run).
func NewDeps(cfg *config.Config, log zerolog.Logger) *Deps {
	client := cms.NewClient(cfg.CMSURL, cfg.APIToken, logger.Component(log, "cms"))

	var mailer notify.Mailer = notify.LogMailer{Log: logger.Component(log, "mail")}
	if cfg.MailEnabled() {
		mailer = notify.NewResendMailer(cfg.ResendAPIKey, "")
	}

	return &Deps{
		Config:       cfg,
		CMS:          client,
		Locales:      locale.NewResolver(client, cfg.LocalesCacheTTL, logger.Component(log, "locale")),
		Nav:          navigation.NewAssembler(client, logger.Component(log, "navigation")),
		SEO:          seo.NewBuilder(cfg.SiteURL, cfg.SiteName, client.AbsoluteURL),
		Mailer:       mailer,
		Dispatcher:   notify.NewDispatcher(mailer, logger.Component(log, "notify"), notify.DispatcherOptions{}),
		Limiter:      ratelimit.New(cfg.ContactRateLimit, cfg.ContactRateWindow),
		LoginLimiter: ratelimit.New(LoginAttempts, LoginWindow),
		Tokens:       utils.NewJWTService(cfg.JWTSecret),
		Log:          log,
		Now:          time.Now,
	}
}

func (d *Deps) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

// sender formats the From header, e.g. "Contact <onboarding@resend.dev>".
func (d *Deps) sender() string {
	name := d.Config.CompanyName
	if name == "" {
		name = "Contact"
	}
	return name + " <" + d.Config.ResendFromEmail + ">"
}

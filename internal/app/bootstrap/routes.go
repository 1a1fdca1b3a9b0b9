// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	contributionsfeature "github.com/anisham/contribhub/internal/app/features/contributions"
	dashboardfeature "github.com/anisham/contribhub/internal/app/features/dashboard"
	errorsfeature "github.com/anisham/contribhub/internal/app/features/errors"
	groupsfeature "github.com/anisham/contribhub/internal/app/features/groups"
	healthfeature "github.com/anisham/contribhub/internal/app/features/health"
	loginfeature "github.com/anisham/contribhub/internal/app/features/login"
	membersfeature "github.com/anisham/contribhub/internal/app/features/members"
	notificationsfeature "github.com/anisham/contribhub/internal/app/features/notifications"
	paymentsfeature "github.com/anisham/contribhub/internal/app/features/payments"
	settingsfeature "github.com/anisham/contribhub/internal/app/features/settings"
	contribstore "github.com/anisham/contribhub/internal/app/store/contributions"
	groupstore "github.com/anisham/contribhub/internal/app/store/groups"
	memberstore "github.com/anisham/contribhub/internal/app/store/members"
	notifstore "github.com/anisham/contribhub/internal/app/store/notifications"
	paymentstore "github.com/anisham/contribhub/internal/app/store/paymentrequests"
	settingsstore "github.com/anisham/contribhub/internal/app/store/settings"
	"github.com/anisham/contribhub/internal/app/system/auth"
	"github.com/anisham/contribhub/internal/app/system/inputval"
	"github.com/anisham/contribhub/internal/app/system/mailer"
	"github.com/anisham/contribhub/internal/app/system/notify"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// ContribHub serves a JSON API: it builds the session manager, the input
// validator, the stores, and the notifier, then mounts a feature router per
// application area. Role checks happen inside each feature's Routes.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	val := inputval.New()
	errLog := errorsfeature.NewErrorLogger(logger)

	db := deps.MongoDatabase
	groups := groupstore.New(db)
	members := memberstore.New(db)
	contribs := contribstore.New(db)
	payments := paymentstore.New(db)
	notifs := notifstore.New(db)
	settings := settingsstore.New(db)

	// The mailer is optional; when disabled the notifier still records
	// in-app notifications and simply skips email delivery.
	var mail *mailer.Mailer
	if appCfg.MailEnabled {
		mail = mailer.New(appCfg.MailSMTPHost, appCfg.MailSMTPPort, appCfg.MailSMTPUser, appCfg.MailSMTPPass, appCfg.MailFrom, appCfg.MailFromName, logger)
	}
	notifier := notify.New(notifs, mail, appCfg.SiteName, logger)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	// This makes the current user available to all handlers via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(members, sessionMgr, val, errLog, appCfg.AdminUsername, appCfg.AdminPasswordHash, logger)
	r.Mount("/auth", loginfeature.Routes(loginHandler))

	// Group setup and membership
	groupsHandler := groupsfeature.NewHandler(groups, members, val, errLog, logger)
	r.Mount("/groups", groupsfeature.Routes(groupsHandler))

	membersHandler := membersfeature.NewHandler(members, groups, contribs, val, errLog, logger)
	r.Mount("/members", membersfeature.Routes(membersHandler))

	// Contribution ledger and payment workflow
	contribsHandler := contributionsfeature.NewHandler(contribs, groups, errLog, logger)
	r.Mount("/contributions", contributionsfeature.Routes(contribsHandler))

	paymentsHandler := paymentsfeature.NewHandler(db, payments, contribs, members, notifier, val, errLog, logger)
	r.Mount("/payments", paymentsfeature.Routes(paymentsHandler))

	// Notifications, including the SSE stream
	notificationsHandler := notificationsfeature.NewHandler(db, notifs, errLog, logger)
	r.Mount("/notifications", notificationsfeature.Routes(notificationsHandler))

	// Payment gateway settings and UPI links
	settingsHandler := settingsfeature.NewHandler(settings, val, errLog, appCfg.SiteName, logger)
	r.Mount("/settings", settingsfeature.Routes(settingsHandler))

	// Aggregate fund dashboard
	dashboardHandler := dashboardfeature.NewHandler(groups, members, contribs, errLog, logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler))

	return r, nil
}

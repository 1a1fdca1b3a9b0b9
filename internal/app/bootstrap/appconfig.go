// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (HTTP ports, TLS,
// logging, CORS); AppConfig carries everything specific to ContribHub.
// The struct is passed to most lifecycle hooks, so any configuration
// needed during startup, request handling, or shutdown lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string // secret key for signing session cookies (must be strong in production)
	SessionName   string // cookie name for sessions
	SessionDomain string // cookie domain (blank means current host)

	// Admin credentials. The admin is not a member document; it signs in
	// with these. The password is configured as a bcrypt hash, never
	// plaintext.
	AdminUsername     string
	AdminPasswordHash string

	// Email/SMTP configuration (best-effort payment notifications)
	MailSMTPHost string
	MailSMTPPort int
	MailSMTPUser string
	MailSMTPPass string
	MailFrom     string
	MailFromName string
	MailEnabled  bool

	// SiteName appears in notification emails and UPI payment links.
	SiteName string
}

package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`

	// Session token signing
	TokenSigningKey string `envconfig:"TOKEN_SIGNING_KEY"` // base64, 32+ bytes
	TokenTTLHours   uint   `envconfig:"TOKEN_TTL_HOURS" default:"168"` // 7 days

	// Federated identity (Cognito)
	CognitoClientID  string `envconfig:"COGNITO_CLIENT_ID"`
	CognitoIssuerURL string `envconfig:"COGNITO_ISSUER_URL"`

	// Trust-on-lookup token issue. Registration-bootstrap escape hatch
	// only; leave off outside development.
	AllowInsecureTokenIssue bool `envconfig:"ALLOW_INSECURE_TOKEN_ISSUE" default:"false"`

	// Stripe
	StripeSecretKey   string `envconfig:"STRIPE_SECRET_KEY"`
	StripeSuccessURL  string `envconfig:"STRIPE_SUCCESS_URL" default:"http://localhost:5173/funding?paid=true"`
	StripeCancelURL   string `envconfig:"STRIPE_CANCEL_URL" default:"http://localhost:5173/funding"`
	PaymentTimeoutSec uint   `envconfig:"PAYMENT_TIMEOUT_SEC" default:"10"`
}

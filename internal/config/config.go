package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	Database    Database
	Auth        Auth      `envPrefix:"AUTH_"`
	SMTP        SMTP      `envPrefix:"SMTP_"`
	Push        Push      `envPrefix:"PUSH_"`
	Billing     Billing   `envPrefix:"BILLING_"`
	Scheduler   Scheduler `envPrefix:"SCHEDULER_"`
	Storage     Storage   `envPrefix:"STORAGE_"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

type Database struct {
	// sqlite or mysql
	Driver string `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	URL    string `env:"DATABASE_URL" envDefault:"tuned.db"`
}

type Auth struct {
	JWTSecret string `env:"JWT_SECRET,required"`
}

type SMTP struct {
	Host string `env:"HOST"`
	Port string `env:"PORT" envDefault:"587"`
	From string `env:"FROM" envDefault:"noreply@tuned.example"`
}

type Push struct {
	// Webhook endpoint of the real-time push gateway. Empty disables push.
	WebhookURL string `env:"WEBHOOK_URL"`
}

type Billing struct {
	// Reward-point conversion: how many points make one currency unit.
	PointsPerUnit int `env:"POINTS_PER_UNIT" envDefault:"100"`
	// Flat tax rate applied to new invoices, percent.
	TaxRatePct float64 `env:"TAX_RATE_PCT" envDefault:"0"`
}

type Scheduler struct {
	PaymentReminderDelay time.Duration `env:"PAYMENT_REMINDER_DELAY" envDefault:"30m"`
	OverdueSweepInterval time.Duration `env:"OVERDUE_SWEEP_INTERVAL" envDefault:"1h"`
	DueSoonSweepInterval time.Duration `env:"DUE_SOON_SWEEP_INTERVAL" envDefault:"24h"`
	DueSoonWindow        time.Duration `env:"DUE_SOON_WINDOW" envDefault:"24h"`
}

type Storage struct {
	// Root directory for uploaded order files and deliveries.
	Dir string `env:"DIR" envDefault:"uploads"`
}

package config

import (
	"os"
	"time"

	"github.com/spf13/cast"
)

type CommenceConfig struct {
	HTTP struct {
		Listen string `cfg:"LISTEN"`
	} `cfg:"HTTP"`

	Database struct {
		DSN string `cfg:"DSN"`
	} `cfg:"DATABASE"`

	// 支付服务配置
	Payment struct {
		DefaultChannel string        `cfg:"DEFAULT_CHANNEL" default:"razorpay"`
		Timeout        time.Duration `cfg:"TIMEOUT" default:"5s"`
	} `cfg:"PAYMENT"`

	Razorpay struct {
		KeyID     string `cfg:"KEY_ID"`
		KeySecret string `cfg:"KEY_SECRET"`
		BaseURL   string `cfg:"BASE_URL" default:"https://api.razorpay.com"`
	} `cfg:"RAZORPAY"`

	PayPal struct {
		Enabled      bool   `cfg:"ENABLED" default:"false"`
		ClientID     string `cfg:"CLIENT_ID"`
		ClientSecret string `cfg:"CLIENT_SECRET"`
	} `cfg:"PAYPAL"`

	SMTP struct {
		Host     string `cfg:"HOST"`
		Port     int    `cfg:"PORT" default:"587"`
		Username string `cfg:"USERNAME"`
		Password string `cfg:"PASSWORD"`
		From     string `cfg:"FROM"`
	} `cfg:"SMTP"`

	Notify struct {
		OperatorEmail string        `cfg:"OPERATOR_EMAIL"`
		FollowupCap   int           `cfg:"FOLLOWUP_CAP" default:"2"`
		InitialDelay  time.Duration `cfg:"INITIAL_DELAY" default:"10m"`
	} `cfg:"NOTIFY"`

	Monitor struct {
		ReconcileInterval time.Duration `cfg:"RECONCILE_INTERVAL" default:"5m"`
		FollowupInterval  time.Duration `cfg:"FOLLOWUP_INTERVAL" default:"30m"`
		PendingGrace      time.Duration `cfg:"PENDING_GRACE" default:"30m"`
		RecentWindow      time.Duration `cfg:"RECENT_WINDOW" default:"24h"`
		FollowupMinAge    time.Duration `cfg:"FOLLOWUP_MIN_AGE" default:"2h"`
	} `cfg:"MONITOR"`

	Events struct {
		Enabled      bool   `cfg:"ENABLED" default:"false"`
		AWSRegion    string `cfg:"AWS_REGION"`
		AWSAccessKey string `cfg:"AWS_ACCESS_KEY"`
		AWSSecret    string `cfg:"AWS_SECRET"`
		SQSQueueURL  string `cfg:"SQS_QUEUE_URL"`
	} `cfg:"EVENTS"`
}

var Config *CommenceConfig

// Load 从环境变量读取配置
func Load() *CommenceConfig {
	cfg := &CommenceConfig{}

	cfg.HTTP.Listen = env("DONORBOX_HTTP_LISTEN", ":8080")
	cfg.Database.DSN = env("DONORBOX_DATABASE_DSN", "")

	cfg.Payment.DefaultChannel = env("DONORBOX_PAYMENT_DEFAULT_CHANNEL", "razorpay")
	cfg.Payment.Timeout = cast.ToDuration(env("DONORBOX_PAYMENT_TIMEOUT", "5s"))

	cfg.Razorpay.KeyID = env("DONORBOX_RAZORPAY_KEY_ID", "")
	cfg.Razorpay.KeySecret = env("DONORBOX_RAZORPAY_KEY_SECRET", "")
	cfg.Razorpay.BaseURL = env("DONORBOX_RAZORPAY_BASE_URL", "https://api.razorpay.com")

	cfg.PayPal.Enabled = cast.ToBool(env("DONORBOX_PAYPAL_ENABLED", "false"))
	cfg.PayPal.ClientID = env("DONORBOX_PAYPAL_CLIENT_ID", "")
	cfg.PayPal.ClientSecret = env("DONORBOX_PAYPAL_CLIENT_SECRET", "")

	cfg.SMTP.Host = env("DONORBOX_SMTP_HOST", "")
	cfg.SMTP.Port = cast.ToInt(env("DONORBOX_SMTP_PORT", "587"))
	cfg.SMTP.Username = env("DONORBOX_SMTP_USERNAME", "")
	cfg.SMTP.Password = env("DONORBOX_SMTP_PASSWORD", "")
	cfg.SMTP.From = env("DONORBOX_SMTP_FROM", "")

	cfg.Notify.OperatorEmail = env("DONORBOX_NOTIFY_OPERATOR_EMAIL", "")
	cfg.Notify.FollowupCap = cast.ToInt(env("DONORBOX_NOTIFY_FOLLOWUP_CAP", "2"))
	cfg.Notify.InitialDelay = cast.ToDuration(env("DONORBOX_NOTIFY_INITIAL_DELAY", "10m"))

	cfg.Monitor.ReconcileInterval = cast.ToDuration(env("DONORBOX_MONITOR_RECONCILE_INTERVAL", "5m"))
	cfg.Monitor.FollowupInterval = cast.ToDuration(env("DONORBOX_MONITOR_FOLLOWUP_INTERVAL", "30m"))
	cfg.Monitor.PendingGrace = cast.ToDuration(env("DONORBOX_MONITOR_PENDING_GRACE", "30m"))
	cfg.Monitor.RecentWindow = cast.ToDuration(env("DONORBOX_MONITOR_RECENT_WINDOW", "24h"))
	cfg.Monitor.FollowupMinAge = cast.ToDuration(env("DONORBOX_MONITOR_FOLLOWUP_MIN_AGE", "2h"))

	cfg.Events.Enabled = cast.ToBool(env("DONORBOX_EVENTS_ENABLED", "false"))
	cfg.Events.AWSRegion = env("DONORBOX_EVENTS_AWS_REGION", "")
	cfg.Events.AWSAccessKey = env("DONORBOX_EVENTS_AWS_ACCESS_KEY", "")
	cfg.Events.AWSSecret = env("DONORBOX_EVENTS_AWS_SECRET", "")
	cfg.Events.SQSQueueURL = env("DONORBOX_EVENTS_SQS_QUEUE_URL", "")

	return cfg
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

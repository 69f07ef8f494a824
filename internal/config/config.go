package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"marketplace-leads/internal/locker"
	"marketplace-leads/internal/notifier"
	"marketplace-leads/internal/smtp"
)

const (
	DefaultJobName = "CheckTableForLeads"

	ProviderSes  = "ses"
	ProviderSmtp = "smtp"
)

type AwsConfig struct {
	BaseEndpoint string `yaml:"base_endpoint"`
	sdkConfig    aws.Config
}

type JobConfig struct {
	Name string `yaml:"name"`
}

type TablesConfig struct {
	Leads     string `yaml:"leads" validate:"required"`
	Watermark string `yaml:"watermark" validate:"required"`
}

type EmailConfig struct {
	Provider string `yaml:"provider" validate:"required,oneof=ses smtp"`
	From     string `yaml:"from" validate:"required,email"`
	To       string `yaml:"to" validate:"required,email"`
}

type SmtpConfig struct {
	Host             string `yaml:"host" validate:"required"`
	Port             int    `yaml:"port" validate:"required"`
	User             string `yaml:"user" validate:"required"`
	Password         string `yaml:"password" validate:"required"`
	AllowInsecureTls bool   `yaml:"allow_insecure_tls"`
}

type PipelineConfig struct {
	// Interval between passes in seconds; 0 runs a single pass.
	Interval int `yaml:"interval" validate:"gte=0"`
}

type LockConfig struct {
	Driver    string        `yaml:"driver" validate:"omitempty,oneof=fs redis"`
	Path      string        `yaml:"path" validate:"required_if=Driver fs"`
	RedisAddr string        `yaml:"redis_addr" validate:"required_if=Driver redis"`
	Expiry    time.Duration `yaml:"expiry" validate:"gte=0"`
}

type HealthCheckServerConfig struct {
	Port int `yaml:"port" validate:"gte=0,lte=65535"`
}

type HealthCheckConfig struct {
	Server HealthCheckServerConfig `yaml:"server"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
}

type Config struct {
	Aws         AwsConfig         `yaml:"aws,flow"`
	Job         JobConfig         `yaml:"job"`
	Tables      TablesConfig      `yaml:"tables" validate:"required"`
	Email       EmailConfig       `yaml:"email" validate:"required"`
	Smtp        SmtpConfig        `yaml:"smtp,flow" validate:"-"`
	Pipeline    PipelineConfig    `yaml:"pipeline"`
	Lock        LockConfig        `yaml:"lock"`
	HealthCheck HealthCheckConfig `yaml:"health-check,flow"`
	Log         LogConfig         `yaml:"log"`
}

func NewFromYamlContent(yamlContent []byte) (*Config, error) {
	cfg := &Config{}
	yamlString := os.ExpandEnv(string(yamlContent))
	reader := strings.NewReader(yamlString)

	if err := cfg.load(reader); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) load(r io.Reader) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	decodeErr := decoder.Decode(c)
	if errors.Is(decodeErr, io.EOF) {
		decodeErr = nil
	}

	if c.Job.Name == "" {
		c.Job.Name = DefaultJobName
	}
	if c.Email.Provider == "" {
		c.Email.Provider = ProviderSes
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	err := validate.Struct(c)
	if err == nil && c.Email.Provider == ProviderSmtp {
		err = validate.Struct(c.Smtp)
	}
	if err == nil && c.Pipeline.Interval > 0 && c.HealthCheck.Server.Port == 0 {
		err = errors.New("health-check.server.port is required when pipeline.interval is set")
	}

	if decodeErr != nil && err != nil {
		return fmt.Errorf("%w\n%w", err, decodeErr)
	}
	if decodeErr != nil {
		return decodeErr
	}
	if err != nil {
		return err
	}

	awsConfig, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		return err
	}

	if c.Aws.BaseEndpoint != "" {
		awsConfig.BaseEndpoint = aws.String(c.Aws.BaseEndpoint)
	}

	c.Aws.sdkConfig = awsConfig
	return nil
}

func (c *Config) GetAwsConfig() aws.Config {
	return c.Aws.sdkConfig
}

func (c *Config) GetJobName() string {
	return c.Job.Name
}

func (c *Config) GetLeadsTable() string {
	return c.Tables.Leads
}

func (c *Config) GetWatermarkTable() string {
	return c.Tables.Watermark
}

func (c *Config) GetEmailProvider() string {
	return c.Email.Provider
}

func (c *Config) GetNotifierConfig() notifier.Config {
	return notifier.Config{
		From: c.Email.From,
		To:   c.Email.To,
	}
}

func (c *Config) GetSmtpConfig() smtp.Config {
	return smtp.Config{
		Host:             c.Smtp.Host,
		Port:             c.Smtp.Port,
		User:             c.Smtp.User,
		Password:         c.Smtp.Password,
		AllowInsecureTls: c.Smtp.AllowInsecureTls,
	}
}

func (c *Config) GetLockConfig() locker.Config {
	return locker.Config{
		Driver:    c.Lock.Driver,
		Path:      c.Lock.Path,
		RedisAddr: c.Lock.RedisAddr,
		Expiry:    c.Lock.Expiry,
	}
}

func (c *Config) GetPipelineInterval() int {
	return c.Pipeline.Interval
}

func (c *Config) GetHealthCheckServerPort() int {
	return c.HealthCheck.Server.Port
}

func (c *Config) GetLogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

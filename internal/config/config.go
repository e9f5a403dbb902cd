package config

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	PrivateKey         string     `mapstructure:"private_key" validate:"required"`
	DID                string     `mapstructure:"did"`
	Port               int        `mapstructure:"port" validate:"required,min=1,max=65535"`
	AWSConfig          aws.Config `mapstructure:"aws_config"`
	AllowanceTableName string     `mapstructure:"allowance_table_name" validate:"required"`
	BalanceTableName   string     `mapstructure:"balance_table_name" validate:"required"`
	EventsTableName    string     `mapstructure:"events_table_name" validate:"required"`
	PeriodTable        string     `mapstructure:"period_table" validate:"required"`
	MetricsAuthToken   string     `mapstructure:"metrics_auth_token"`
	AdminUser          string     `mapstructure:"admin_user"`
	AdminPassword      string     `mapstructure:"admin_password"`
}

func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	cfg.AWSConfig = awsCfg

	return &cfg, nil
}

func (c *Config) validate() error {
	return validator.New(validator.WithRequiredStructEnabled()).Struct(c)
}

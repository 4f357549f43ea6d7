// Copyright 2025 Minija Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/minija-farm/minija/internal/pkg/notify"
	"github.com/minija-farm/minija/pkg/cache"
	"github.com/minija-farm/minija/pkg/database"
	"github.com/minija-farm/minija/pkg/http"
	"github.com/minija-farm/minija/pkg/log"
)

// VerificationConfig tunes the email verification flow.
type VerificationConfig struct {
	CodeLength            int `mapstructure:"codeLength"`
	CodeExpiryMinutes     int `mapstructure:"codeExpiryMinutes"`
	MaxAttempts           int `mapstructure:"maxAttempts"`
	ResendCooldownSeconds int `mapstructure:"resendCooldownSeconds"`
}

// InvitationConfig tunes the invitation workflow.
type InvitationConfig struct {
	ExpiryDays  int `mapstructure:"expiryDays"`
	MemberLimit int `mapstructure:"memberLimit"`
}

type AppConfig struct {
	Log          log.Conf
	Http         http.Http
	Database     database.Database
	Redis        cache.Redis
	Smtp         notify.Smtp
	Verification VerificationConfig
	Invitation   InvitationConfig
}

var (
	cfg  AppConfig
	once sync.Once
)

func NewConf(confDir string) AppConfig {
	once.Do(func() {
		var err error
		cfg, err = LoadConfigFile(confDir)
		if err != nil {
			panic(fmt.Sprintf("load config file error: %s", err))
		}
	})
	return cfg
}

// LoadConfigFile load config file
func LoadConfigFile(confDir string) (AppConfig, error) {

	config := viper.New()
	config.SetConfigFile(confDir)
	if err := config.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("failed to read configuration file: %v", err)
	}

	config.WatchConfig()
	config.OnConfigChange(func(e fsnotify.Event) {
		log.Infof("configuration changed, reloading: %s", e.Name)
		if err := config.Unmarshal(&cfg); err != nil {
			log.Errorf("failed to unmarshal configuration file: %v", err)
		}
	})
	if err := config.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal configuration file: %v", err)
	}
	applyDefaults(&cfg)
	log.Infow("config file loaded",
		"path", confDir,
	)

	return cfg, nil
}

func applyDefaults(c *AppConfig) {
	if c.Verification.CodeLength <= 0 {
		c.Verification.CodeLength = 6
	}
	if c.Verification.CodeExpiryMinutes <= 0 {
		c.Verification.CodeExpiryMinutes = 10
	}
	if c.Verification.MaxAttempts <= 0 {
		c.Verification.MaxAttempts = 5
	}
	if c.Verification.ResendCooldownSeconds <= 0 {
		c.Verification.ResendCooldownSeconds = 60
	}
	if c.Invitation.ExpiryDays <= 0 {
		c.Invitation.ExpiryDays = 7
	}
	if c.Invitation.MemberLimit <= 0 {
		c.Invitation.MemberLimit = 50
	}
}

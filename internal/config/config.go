// Package config loads flairbot's INI settings and secret overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
)

// AuthType selects the OAuth2 grant used to obtain a session.
type AuthType string

const (
	AuthScript AuthType = "script"
	AuthWebapp AuthType = "webapp"
)

// Config is built once at startup and passed by value to every component.
type Config struct {
	AppID     string
	AppSecret string
	UserAgent string
	AuthType  AuthType

	// webapp grant
	RefreshToken string
	// script grant
	Username string
	Password string

	Subreddit string
	Subject   string
	Logging   bool
}

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Environment variables that override secrets from the INI file.
const (
	EnvAppID     = "FLAIRBOT_APP_ID"
	EnvAppSecret = "FLAIRBOT_APP_SECRET"
	EnvToken     = "FLAIRBOT_TOKEN"
	EnvUsername  = "FLAIRBOT_USERNAME"
	EnvPassword  = "FLAIRBOT_PASSWD"
)

// Load parses the INI file at path, applies environment overrides from
// lookup (which may be nil) and validates the result.
func Load(path string, lookup LookupFunc) (Config, error) {
	file, err := ini.LoadSources(ini.LoadOptions{
		InsensitiveKeys: true,
		// values are taken verbatim: ';' and '#' may appear in passwords and subjects
		IgnoreInlineComment:     true,
		PreserveSurroundedQuote: true,
	}, path)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	cfg := fromINI(file)
	if lookup != nil {
		cfg.applyEnv(lookup)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func fromINI(file *ini.File) Config {
	app := file.Section("app")
	cfg := Config{
		AppID:        app.Key("app_id").String(),
		AppSecret:    app.Key("app_secret").String(),
		UserAgent:    app.Key("user_agent").String(),
		AuthType:     AuthScript,
		RefreshToken: file.Section("auth-webapp").Key("token").String(),
		Username:     file.Section("auth-script").Key("username").String(),
		Password:     file.Section("auth-script").Key("passwd").String(),
		Subreddit:    file.Section("subreddit").Key("name").String(),
		Subject:      file.Section("subject").Key("subject").String(),
		// only the literal "False" disables logging
		Logging: file.Section("log").Key("logging").String() != "False",
	}
	if AuthType(app.Key("auth_type").String()) == AuthWebapp {
		cfg.AuthType = AuthWebapp
	}
	return cfg
}

func (c *Config) applyEnv(lookup LookupFunc) {
	override := func(dst *string, key string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	override(&c.AppID, EnvAppID)
	override(&c.AppSecret, EnvAppSecret)
	override(&c.RefreshToken, EnvToken)
	override(&c.Username, EnvUsername)
	override(&c.Password, EnvPassword)
}

// Validate reports every missing setting at once.
func (c Config) Validate() error {
	var result *multierror.Error
	require := func(val, name string) {
		if val == "" {
			result = multierror.Append(result, fmt.Errorf("missing %s", name))
		}
	}
	require(c.AppID, "app.app_id")
	require(c.UserAgent, "app.user_agent")
	switch c.AuthType {
	case AuthWebapp:
		require(c.RefreshToken, "auth-webapp.token")
	default:
		require(c.Username, "auth-script.username")
		require(c.Password, "auth-script.passwd")
	}
	require(c.Subreddit, "subreddit.name")
	require(c.Subject, "subject.subject")
	return result.ErrorOrNil()
}

// LoadEnvFile exports the variables in a dotenv file into the process
// environment without overwriting variables that are already set. A missing
// file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

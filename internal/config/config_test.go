package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/go-multierror"
)

const scriptINI = `[app]
app_id = abc123
app_secret = s3cret
user_agent = flairbot/1.0 by modteam
auth_type = script

[auth-webapp]
token =

[auth-script]
username = flairbot
passwd = hunter2

[subreddit]
name = future_fight

[subject]
subject = Flair Request

[log]
logging = True
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "conf.ini")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func mapLookup(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestLoadScript(t *testing.T) {
	cfg, err := Load(writeConfig(t, scriptINI), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Config{
		AppID:     "abc123",
		AppSecret: "s3cret",
		UserAgent: "flairbot/1.0 by modteam",
		AuthType:  AuthScript,
		Username:  "flairbot",
		Password:  "hunter2",
		Subreddit: "future_fight",
		Subject:   "Flair Request",
		Logging:   true,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadWebapp(t *testing.T) {
	body := strings.Replace(scriptINI, "auth_type = script", "auth_type = webapp", 1)
	body = strings.Replace(body, "token =", "token = refresh-tok", 1)
	cfg, err := Load(writeConfig(t, body), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AuthType != AuthWebapp {
		t.Fatalf("auth type = %q, want webapp", cfg.AuthType)
	}
	if cfg.RefreshToken != "refresh-tok" {
		t.Fatalf("token = %q", cfg.RefreshToken)
	}
}

func TestLoggingToggle(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{value: "True", want: true},
		{value: "False", want: false},
		{value: "false", want: true},
		{value: "no", want: true},
		{value: "", want: true},
	}
	for _, tt := range tests {
		tc := tt
		t.Run("value="+tc.value, func(t *testing.T) {
			body := strings.Replace(scriptINI, "logging = True", "logging = "+tc.value, 1)
			cfg, err := Load(writeConfig(t, body), nil)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if cfg.Logging != tc.want {
				t.Fatalf("logging = %v, want %v", cfg.Logging, tc.want)
			}
		})
	}
}

func TestValuesKeepCommentCharacters(t *testing.T) {
	body := strings.Replace(scriptINI, "passwd = hunter2", "passwd = hunter2#x;y", 1)
	body = strings.Replace(body, "subject = Flair Request", "subject = Flair; Request #1", 1)
	body = strings.Replace(body, "user_agent = flairbot/1.0 by modteam", `user_agent = "flairbot/1.0"`, 1)
	cfg, err := Load(writeConfig(t, body), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Password != "hunter2#x;y" {
		t.Fatalf("password = %q", cfg.Password)
	}
	if cfg.Subject != "Flair; Request #1" {
		t.Fatalf("subject = %q", cfg.Subject)
	}
	if cfg.UserAgent != `"flairbot/1.0"` {
		t.Fatalf("quoted value must be kept verbatim, got %q", cfg.UserAgent)
	}
}

func TestUnknownAuthTypeFallsBackToScript(t *testing.T) {
	body := strings.Replace(scriptINI, "auth_type = script", "auth_type = installed", 1)
	cfg, err := Load(writeConfig(t, body), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AuthType != AuthScript {
		t.Fatalf("auth type = %q, want script", cfg.AuthType)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "conf.ini"), nil); err == nil {
		t.Fatalf("expected error for missing config")
	}
}

func TestValidateReportsAllMissing(t *testing.T) {
	_, err := Load(writeConfig(t, "[app]\nauth_type = script\n"), nil)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	var merr *multierror.Error
	if !errors.As(err, &merr) {
		t.Fatalf("expected multierror, got %T: %v", err, err)
	}
	if len(merr.Errors) != 6 {
		t.Fatalf("expected 6 missing settings, got %d: %v", len(merr.Errors), merr)
	}
	for _, key := range []string{"app.app_id", "app.user_agent", "auth-script.passwd", "subject.subject"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("error %q does not mention %s", err, key)
		}
	}
}

func TestEnvOverrides(t *testing.T) {
	body := strings.Replace(scriptINI, "passwd = hunter2", "passwd =", 1)
	env := mapLookup(map[string]string{
		EnvPassword:  "from-env",
		EnvAppSecret: "env-secret",
		EnvAppID:     "",
	})
	cfg, err := Load(writeConfig(t, body), env)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Password != "from-env" {
		t.Fatalf("password = %q", cfg.Password)
	}
	if cfg.AppSecret != "env-secret" {
		t.Fatalf("app secret = %q", cfg.AppSecret)
	}
	if cfg.AppID != "abc123" {
		t.Fatalf("empty env value must not override, got %q", cfg.AppID)
	}
}

func TestLoadEnvFile(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("missing env file should be ignored: %v", err)
	}

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("FLAIRBOT_TEST_ONLY_VAR=loaded\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("FLAIRBOT_TEST_ONLY_VAR") })
	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("load env file: %v", err)
	}
	if got := os.Getenv("FLAIRBOT_TEST_ONLY_VAR"); got != "loaded" {
		t.Fatalf("env var = %q", got)
	}
}

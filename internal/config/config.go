package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultUserAgent       = "github.com/jarmeli1/reddit-rss-alerts"
	defaultLookbackMinutes = 60
)

func checkFilePermissions(path string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if perm := info.Mode().Perm(); perm&0077 != 0 {
		return fmt.Errorf("config file %s has insecure permissions %04o; should be 0600", path, perm)
	}
	return nil
}

type Config struct {
	Mailbox MailboxConfig `yaml:"mailbox"`
	Reddit  RedditConfig  `yaml:"reddit"`
	Alerts  AlertsConfig  `yaml:"alerts,omitempty"`
	Email   EmailConfig   `yaml:"email,omitempty"`
	State   StateConfig   `yaml:"state,omitempty"`
}

// MailboxConfig holds IMAP settings for the inbox the drivers poll.
type MailboxConfig struct {
	Host     string `yaml:"host"`     // e.g., "imap.gmail.com"
	Port     int    `yaml:"port"`     // e.g., 993
	Folder   string `yaml:"folder"`   // Mailbox to poll (default: "INBOX")
	User     string `yaml:"user"`     // Account address
	Password string `yaml:"password"` // App password (not main password)
}

// RedditConfig holds credentials and routing prefixes for the Reddit side.
type RedditConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	UserAgent    string `yaml:"user_agent,omitempty"`
	Subreddit    string `yaml:"subreddit"`    // Target board for new posts
	PostPrefix   string `yaml:"post_prefix"`  // Subject prefix claiming the post workflow
	ReplyPrefix  string `yaml:"reply_prefix"` // Subject prefix claiming the reply workflow
}

// AlertsConfig drives the feed-to-email workflow.
type AlertsConfig struct {
	Subreddit       string `yaml:"subreddit"`
	LookbackMinutes int    `yaml:"lookback_minutes"`
	IncludeKeywords string `yaml:"include_keywords,omitempty"` // comma-separated
	ExcludeKeywords string `yaml:"exclude_keywords,omitempty"` // comma-separated
	To              string `yaml:"to"`
	SenderName      string `yaml:"sender_name,omitempty"`
	FeedUserAgent   string `yaml:"feed_user_agent,omitempty"`
}

type EmailConfig struct {
	Provider       string     `yaml:"provider"` // "smtp", "resend", "sendgrid"
	From           string     `yaml:"from"`
	SMTP           SMTPConfig `yaml:"smtp,omitempty"`
	ResendAPIKey   string     `yaml:"resend_api_key,omitempty"`
	SendGridAPIKey string     `yaml:"sendgrid_api_key,omitempty"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// StateConfig locates the persisted seen-set document (a GitHub Gist).
type StateConfig struct {
	GistID    string `yaml:"gist_id"`
	GistToken string `yaml:"gist_token"`
	Filename  string `yaml:"filename,omitempty"` // file inside the gist (default: "seen.json")
}

func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".reddit-rss-alerts", "config.yaml")
}

func Load(path string) (*Config, error) {
	if err := checkFilePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: %v\n", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Mailbox.Host == "" {
		c.Mailbox.Host = "imap.gmail.com"
	}
	if c.Mailbox.Port == 0 {
		c.Mailbox.Port = 993
	}
	if c.Mailbox.Folder == "" {
		c.Mailbox.Folder = "INBOX"
	}

	if c.Reddit.UserAgent == "" {
		c.Reddit.UserAgent = defaultUserAgent
	}
	if c.Reddit.PostPrefix == "" {
		c.Reddit.PostPrefix = "[Reddit]"
	}
	if c.Reddit.ReplyPrefix == "" {
		c.Reddit.ReplyPrefix = "Re: [r/"
	}

	if c.Alerts.LookbackMinutes == 0 {
		c.Alerts.LookbackMinutes = defaultLookbackMinutes
	}
	if c.Alerts.SenderName == "" {
		c.Alerts.SenderName = "Reddit Alerts"
	}
	if c.Alerts.FeedUserAgent == "" {
		c.Alerts.FeedUserAgent = defaultUserAgent
	}

	if c.Email.Provider == "" {
		c.Email.Provider = "smtp"
	}
	if c.Email.SMTP.Host == "" {
		c.Email.SMTP.Host = "smtp.gmail.com"
	}
	if c.Email.SMTP.Port == 0 {
		c.Email.SMTP.Port = 587
	}

	if c.State.Filename == "" {
		c.State.Filename = "seen.json"
	}
}

func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// ValidateMailbox checks the settings both inbox drivers need.
func (c *Config) ValidateMailbox() error {
	if c.Mailbox.User == "" {
		return fmt.Errorf("mailbox: user is required")
	}
	if c.Mailbox.Password == "" {
		return fmt.Errorf("mailbox: password (app password) is required")
	}
	if c.Mailbox.Host == "" {
		return fmt.Errorf("mailbox: host is required")
	}
	if c.Mailbox.Port == 0 {
		return fmt.Errorf("mailbox: port is required")
	}
	return nil
}

// ValidateReddit checks the credentials the submission adapter needs.
// requireSubreddit is set by the post workflow, which must know its target board.
func (c *Config) ValidateReddit(requireSubreddit bool) error {
	if c.Reddit.ClientID == "" {
		return fmt.Errorf("reddit: client_id is required")
	}
	if c.Reddit.ClientSecret == "" {
		return fmt.Errorf("reddit: client_secret is required")
	}
	if c.Reddit.Username == "" {
		return fmt.Errorf("reddit: username is required")
	}
	if c.Reddit.Password == "" {
		return fmt.Errorf("reddit: password is required")
	}
	if requireSubreddit && c.Reddit.Subreddit == "" {
		return fmt.Errorf("reddit: subreddit is required for posting")
	}
	return nil
}

// ValidateAlerts checks everything the feed workflow needs before any network I/O.
func (c *Config) ValidateAlerts() error {
	if c.Alerts.Subreddit == "" {
		return fmt.Errorf("alerts: subreddit is required")
	}
	if c.Alerts.To == "" {
		return fmt.Errorf("alerts: to (recipient address) is required")
	}
	if c.Email.From == "" {
		return fmt.Errorf("email: from address is required")
	}
	switch c.Email.Provider {
	case "smtp":
		if c.Email.SMTP.Host == "" {
			return fmt.Errorf("email.smtp: host is required")
		}
		if c.Email.SMTP.Port == 0 {
			return fmt.Errorf("email.smtp: port is required")
		}
		if c.Email.SMTP.Username == "" {
			return fmt.Errorf("email.smtp: username is required")
		}
		if c.Email.SMTP.Password == "" {
			return fmt.Errorf("email.smtp: password is required")
		}
	case "resend":
		if c.Email.ResendAPIKey == "" {
			return fmt.Errorf("email: resend_api_key is required")
		}
	case "sendgrid":
		if c.Email.SendGridAPIKey == "" {
			return fmt.Errorf("email: sendgrid_api_key is required")
		}
	default:
		return fmt.Errorf("email: unknown provider %q (smtp, resend, sendgrid)", c.Email.Provider)
	}
	if c.State.GistID == "" {
		return fmt.Errorf("state: gist_id is required")
	}
	if c.State.GistToken == "" {
		return fmt.Errorf("state: gist_token is required")
	}
	return nil
}

// SplitKeywords turns a comma-separated keyword setting into a
// case-folded list, dropping empty segments.
func SplitKeywords(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jarmeli1/reddit-rss-alerts/internal/config"
	"github.com/jarmeli1/reddit-rss-alerts/internal/email"
	"github.com/jarmeli1/reddit-rss-alerts/internal/feed"
	"github.com/jarmeli1/reddit-rss-alerts/internal/history"
	"github.com/jarmeli1/reddit-rss-alerts/internal/inbox"
	"github.com/jarmeli1/reddit-rss-alerts/internal/reddit"
	"github.com/jarmeli1/reddit-rss-alerts/internal/runner"
	"github.com/jarmeli1/reddit-rss-alerts/internal/state"
	"github.com/jarmeli1/reddit-rss-alerts/internal/template"
)

var cfgFile string

func resolveConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "bridge",
		Short: "Bridge - email-to-Reddit posting and subreddit feed alerts",
		Long: `Bridge connects a mailbox and a subreddit in both directions.

Prefixed emails become Reddit posts or comments, and new subreddit
feed entries become alert emails. Each command performs one batch
pass and exits, so the tool fits cron or any scheduled runner.`,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.reddit-rss-alerts/config.yaml)")

	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(postCmd())
	rootCmd.AddCommand(replyCmd())
	rootCmd.AddCommand(alertsCmd())
	rootCmd.AddCommand(statusCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration interactively",
		Long:  "Create a new configuration file with your mailbox, Reddit, and alert settings.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit()
		},
	}
}

func postCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "post",
		Short: "Turn unread prefixed emails into Reddit posts",
		Long:  "Scan the mailbox for unread emails whose subject carries the post prefix and submit each one as a new self post.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPost()
		},
	}
}

func replyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reply",
		Short: "Turn unread reply emails into Reddit comments",
		Long:  "Scan the mailbox for unread emails whose subject carries the reply prefix and post each one as a comment on the linked thread.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReply()
		},
	}
}

func alertsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "alerts",
		Short: "Email new subreddit feed entries",
		Long:  "Poll the subreddit's newest-posts feed and email every entry that is new, recent, and passes the keyword filters.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAlerts()
		},
	}
}

func statusCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show recent run history",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of recent runs to show")
	return cmd
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// recordRun persists the run outcome; history failures never fail the run.
func recordRun(run history.Run) {
	store, err := history.NewStore(history.DefaultDBPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to open history: %v\n", err)
		return
	}
	defer store.Close()

	if err := store.RecordRun(&run); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to record run: %v\n", err)
	}
}

func runPost() error {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return err
	}
	if err := cfg.ValidateMailbox(); err != nil {
		return err
	}
	if err := cfg.ValidateReddit(true); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	mailbox := inbox.NewMailbox(cfg.Mailbox)
	if err := mailbox.Connect(ctx); err != nil {
		return err
	}
	defer mailbox.Disconnect()

	r := &runner.PostRunner{
		Mailbox: mailbox,
		Poster:  reddit.NewClient(cfg.Reddit),
		Router: inbox.Router{
			Primary: cfg.Reddit.PostPrefix,
			Sibling: cfg.Reddit.ReplyPrefix,
		},
		Subreddit: cfg.Reddit.Subreddit,
	}

	started := time.Now()
	summary, err := r.Run(ctx)
	recordRun(history.Run{
		Workflow:   history.WorkflowPost,
		Delivered:  summary.Posted,
		Skipped:    summary.Skipped,
		Deferred:   summary.Deferred,
		Error:      errString(err),
		StartedAt:  started,
		FinishedAt: time.Now(),
	})
	if err != nil {
		return err
	}

	fmt.Println(summary)
	return nil
}

func runReply() error {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return err
	}
	if err := cfg.ValidateMailbox(); err != nil {
		return err
	}
	if err := cfg.ValidateReddit(false); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	mailbox := inbox.NewMailbox(cfg.Mailbox)
	if err := mailbox.Connect(ctx); err != nil {
		return err
	}
	defer mailbox.Disconnect()

	r := &runner.ReplyRunner{
		Mailbox:   mailbox,
		Commenter: reddit.NewClient(cfg.Reddit),
		Router: inbox.Router{
			Primary: cfg.Reddit.ReplyPrefix,
			Sibling: cfg.Reddit.PostPrefix,
		},
	}

	started := time.Now()
	summary, err := r.Run(ctx)
	recordRun(history.Run{
		Workflow:   history.WorkflowReply,
		Delivered:  summary.Commented,
		Skipped:    summary.Skipped,
		Deferred:   summary.Deferred,
		Error:      errString(err),
		StartedAt:  started,
		FinishedAt: time.Now(),
	})
	if err != nil {
		return err
	}

	fmt.Println(summary)
	return nil
}

func runAlerts() error {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return err
	}
	if err := cfg.ValidateAlerts(); err != nil {
		return err
	}

	sender, err := email.NewSender(cfg.Email)
	if err != nil {
		return err
	}
	engine, err := template.NewEngine()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	r := &runner.AlertRunner{
		Source:    feed.NewFetcher(cfg.Alerts.FeedUserAgent),
		Store:     state.NewGistStore(cfg.State),
		Sender:    sender,
		Renderer:  engine,
		Subreddit: cfg.Alerts.Subreddit,
		Lookback:  time.Duration(cfg.Alerts.LookbackMinutes) * time.Minute,
		Include:   config.SplitKeywords(cfg.Alerts.IncludeKeywords),
		Exclude:   config.SplitKeywords(cfg.Alerts.ExcludeKeywords),
		From:      cfg.Email.From,
		FromName:  cfg.Alerts.SenderName,
		To:        cfg.Alerts.To,
	}

	started := time.Now()
	summary, err := r.Run(ctx)
	recordRun(history.Run{
		Workflow:   history.WorkflowAlerts,
		Delivered:  summary.Sent,
		Error:      errString(err),
		StartedAt:  started,
		FinishedAt: time.Now(),
	})
	if err != nil {
		return err
	}

	fmt.Println(summary)
	return nil
}

func runStatus(limit int) error {
	store, err := history.NewStore(history.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	total, failed, delivered, err := store.Stats()
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	fmt.Println("📊 Bridge Statistics")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("  Total runs: %d\n", total)
	fmt.Printf("  Failed runs: %d\n", failed)
	fmt.Printf("  Items delivered: %d\n", delivered)

	runs, err := store.RecentRuns(limit)
	if err != nil {
		return fmt.Errorf("failed to get recent runs: %w", err)
	}

	if len(runs) > 0 {
		fmt.Println()
		fmt.Printf("📜 Recent Runs (last %d)\n", limit)
		fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

		for _, r := range runs {
			status := "✅"
			if r.Error != "" {
				status = "❌"
			}
			fmt.Printf("%s %s - %s: delivered %d, skipped %d, deferred %d\n",
				status,
				r.StartedAt.Format("2006-01-02 15:04"),
				r.Workflow,
				r.Delivered,
				r.Skipped,
				r.Deferred,
			)
			if r.Error != "" {
				fmt.Printf("   Error: %s\n", r.Error)
			}
		}
	}

	return nil
}

func runInit() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("🔧 Bridge Configuration Setup")
	fmt.Println("==============================")
	fmt.Println()

	cfg := &config.Config{}

	fmt.Println("📬 Mailbox (IMAP)")
	fmt.Println("  (See https://support.google.com/accounts/answer/185833 for app password setup)")
	fmt.Println()
	cfg.Mailbox.User = prompt(reader, "  Gmail address: ")
	cfg.Mailbox.Password = prompt(reader, "  App password (16-character code): ")

	fmt.Println()
	fmt.Println("🤖 Reddit API (script app credentials)")
	fmt.Println()
	cfg.Reddit.ClientID = prompt(reader, "  Client ID: ")
	cfg.Reddit.ClientSecret = prompt(reader, "  Client secret: ")
	cfg.Reddit.Username = prompt(reader, "  Reddit username: ")
	cfg.Reddit.Password = prompt(reader, "  Reddit password: ")
	cfg.Reddit.Subreddit = prompt(reader, "  Subreddit for new posts: ")

	fmt.Println()
	fmt.Println("🔔 Feed Alerts")
	fmt.Println()
	cfg.Alerts.Subreddit = prompt(reader, "  Subreddit to watch: ")
	cfg.Alerts.To = prompt(reader, "  Alert recipient address: ")
	cfg.Alerts.IncludeKeywords = prompt(reader, "  Include keywords, comma-separated (optional): ")
	cfg.Alerts.ExcludeKeywords = prompt(reader, "  Exclude keywords, comma-separated (optional): ")

	fmt.Println()
	fmt.Println("💾 Seen-Set Gist")
	fmt.Println()
	cfg.State.GistID = prompt(reader, "  Gist ID: ")
	cfg.State.GistToken = prompt(reader, "  Gist token (needs gist scope): ")

	cfg.Email.Provider = "smtp"
	cfg.Email.From = cfg.Mailbox.User
	cfg.Email.SMTP.Username = cfg.Mailbox.User
	cfg.Email.SMTP.Password = cfg.Mailbox.Password

	configPath := resolveConfigPath()
	if err := config.Save(configPath, cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Printf("✅ Configuration saved to: %s\n", configPath)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Review and edit the config file if needed")
	fmt.Println("  2. Run 'bridge post' to submit prefixed emails as posts")
	fmt.Println("  3. Run 'bridge reply' to post reply emails as comments")
	fmt.Println("  4. Run 'bridge alerts' to email new feed entries")

	return nil
}

func prompt(reader *bufio.Reader, message string) string {
	fmt.Print(message)
	input, err := reader.ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(input)
}

func errString(err error) string {
	if err != nil {
		return err.Error()
	}
	return ""
}

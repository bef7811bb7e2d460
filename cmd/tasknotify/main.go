package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/nhle/tasknotify/internal/api"
	"github.com/nhle/tasknotify/internal/app"
	"github.com/nhle/tasknotify/internal/audio"
	"github.com/nhle/tasknotify/internal/browser"
	"github.com/nhle/tasknotify/internal/credential"
	"github.com/nhle/tasknotify/internal/devserver"
	"github.com/nhle/tasknotify/internal/logx"
	"github.com/nhle/tasknotify/internal/model"
	"github.com/nhle/tasknotify/internal/notify"
	"github.com/nhle/tasknotify/internal/session"
	"github.com/nhle/tasknotify/internal/store"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

// devTokenTTL is the lifetime of tokens minted by the dev server.
const devTokenTTL = 30 * 24 * time.Hour

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := os.Getenv("TASKNOTIFY_CONFIG")
	if configPath == "" {
		configPath = model.DefaultConfigPath()
	}
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return err
	}

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "version", "-v":
			fmt.Println("tasknotify " + version)
			return nil
		case "help", "--help", "-h":
			printHelp()
			return nil
		case "login":
			return runLogin(cfg)
		case "logout":
			return runLogout()
		case "devserver":
			return runDevServer(cfg, os.Args[2:])
		case "emit":
			return runEmit(cfg, os.Args[2:])
		default:
			printHelp()
			return fmt.Errorf("unknown command %q", os.Args[1])
		}
	}

	return runTUI(cfg, configPath)
}

func runTUI(cfg *model.Config, configPath string) error {
	log, closer, err := logx.NewFile(cfg.Log)
	if err != nil {
		return err
	}
	defer closer.Close() //nolint:errcheck

	token, err := credential.Token()
	if errors.Is(err, credential.ErrNoToken) {
		printSignInHint()
		return nil
	}
	if err != nil {
		return err
	}

	gate := session.New(token)
	client := api.New(cfg.Server.BaseURL, gate,
		api.WithOnUnauthorized(func() { gate.End("token rejected by server") }),
		api.WithLogger(log),
	)

	// Only a 401 means there is no session; anything else is transient
	// and the poller keeps retrying on its own schedule.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	me, err := client.Me(ctx)
	cancel()
	switch {
	case api.IsAuthError(err):
		printSignInHint()
		return nil
	case err != nil:
		log.Warn().Err(err).Msg("could not verify session, starting anyway")
	default:
		gate.SetUser(*me)
	}

	nav := browser.NewNavigator(cfg.Server.WebURL, nil)
	bridge := app.NewBridge()
	svc, err := notify.New(notify.Options{
		Directory:   client,
		Gate:        gate,
		Sink:        logx.NewSink(log),
		ToastView:   bridge,
		Navigator:   nav,
		CenterView:  bridge,
		Alerter:     bridge,
		AudioOpener: openAudio,
		Config:      *cfg.AppConfig,
		CronLogger:  logx.NewCronLogger(log),
		IsPermanent: api.IsPermanent,
	})
	if err != nil {
		return err
	}
	defer svc.Close()

	if _, err := os.Stat(configPath); err == nil {
		cfg.WatchAudio(bridge.AudioChanged)
	}

	root := app.New(app.Options{
		Service:    svc,
		Bridge:     bridge,
		Session:    gate,
		Navigator:  nav,
		Profile:    client,
		Config:     cfg.AppConfig,
		ConfigPath: configPath,
	})

	p := tea.NewProgram(root, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	bridge.Close()
	return nil
}

// openAudio adapts the oto device to the chime's opener.
func openAudio(sampleRate int) (notify.AudioContext, error) {
	ctx, err := audio.Open(sampleRate)
	if err != nil {
		return nil, err
	}
	return ctx, nil
}

func runLogin(cfg *model.Config) error {
	var token string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("API token").
				Description("Paste the bearer token for " + cfg.Server.BaseURL).
				EchoMode(huh.EchoModePassword).
				Value(&token).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("token is required")
					}
					return nil
				}),
		),
	)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return fmt.Errorf("reading token: %w", err)
	}
	token = strings.TrimSpace(token)

	gate := session.New(token)
	client := api.New(cfg.Server.BaseURL, gate)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	me, err := client.Me(ctx)
	if err != nil {
		if api.IsAuthError(err) {
			return fmt.Errorf("the server rejected this token")
		}
		return fmt.Errorf("verifying token: %w", err)
	}

	if err := credential.Set(credential.TokenKey, token); err != nil {
		return err
	}
	fmt.Printf("Signed in as %s.\n", me.DisplayName())
	return nil
}

func runLogout() error {
	if err := credential.Delete(credential.TokenKey); err != nil {
		return err
	}
	fmt.Println("Signed out.")
	return nil
}

func runDevServer(cfg *model.Config, args []string) error {
	log := logx.NewConsole(cfg.Log.Level)

	username := "demo"
	if len(args) > 0 {
		username = args[0]
	}

	dbPath := cfg.DevServer.DBPath
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return fmt.Errorf("creating database directory: %w", err)
		}
	}
	st, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := st.EnsureUser(ctx, username, ""); err != nil {
		return err
	}

	srv := devserver.New(st, cfg.DevServer.JWTSecret, log)
	token, err := srv.MintToken(username, devTokenTTL)
	if err != nil {
		return err
	}

	fmt.Printf("Token for %s (valid %s):\n\n  %s\n\n", username, devTokenTTL, token)
	fmt.Printf("Run `tasknotify login` and paste it, or export %s.\n\n", credential.TokenEnv)

	return srv.Run(ctx, cfg.DevServer.Addr)
}

func runEmit(cfg *model.Config, args []string) error {
	fs := flag.NewFlagSet("emit", flag.ContinueOnError)
	taskID := fs.Int64("task", 0, "task id for navigation")
	projectID := fs.Int64("project", 0, "project id for navigation")
	taskTitle := fs.String("task-title", "", "task title")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) < 2 {
		return fmt.Errorf("usage: tasknotify emit [--task ID --project ID] <type> <title> [message]")
	}

	typ := model.NotificationType(rest[0])
	if !typ.Known() {
		return fmt.Errorf("unknown notification type %q", rest[0])
	}
	req := api.CreateNotificationRequest{
		Type:      typ,
		Title:     rest[1],
		TaskTitle: *taskTitle,
	}
	if len(rest) > 2 {
		req.Message = strings.Join(rest[2:], " ")
	}
	if *taskID > 0 && *projectID > 0 {
		req.TaskID = taskID
		req.ProjectID = projectID
	}

	token, err := credential.Token()
	if err != nil {
		return err
	}
	client := api.New(cfg.Server.BaseURL, session.New(token))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	n, err := client.CreateNotification(ctx, req)
	if err != nil {
		return err
	}
	fmt.Printf("Created notification #%d.\n", n.ID)
	return nil
}

func printSignInHint() {
	fmt.Println("You are not signed in. Run `tasknotify login` to continue.")
}

func printHelp() {
	fmt.Print(`tasknotify - task notifications in your terminal

Usage:
  tasknotify                      start the notification client
  tasknotify login                store an API token
  tasknotify logout               forget the stored token
  tasknotify devserver [user]     run a local backend and print a token
  tasknotify emit <type> <title> [message]
                                  create a notification on the dev server
  tasknotify version              print the version

Notification types:
`)
	for _, t := range model.NotificationTypes {
		fmt.Printf("  %-18s %s\n", t, t.Label())
	}
}

package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tinytelemetry/starboard/internal/keynote"
	"github.com/tinytelemetry/starboard/internal/socketrpc"
	"github.com/tinytelemetry/starboard/internal/stars"
	"github.com/tinytelemetry/starboard/internal/tui"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)

func main() {
	var configPath string
	var repo string
	var setToken string
	var clearToken bool
	var showVersion bool
	var useSocket bool

	flag.StringVar(&configPath, "config", "", "config file (default is $HOME/.config/starboard/config.yml)")
	flag.StringVar(&repo, "repo", "", "override the repository to watch (owner/name)")
	flag.StringVar(&setToken, "set-token", "", "store a GitHub API token in the local note and exit")
	flag.BoolVar(&clearToken, "clear-token", false, "remove the stored GitHub API token and exit")
	flag.BoolVar(&useSocket, "socket", false, "read the count from a running starboard service instead of GitHub")
	flag.BoolVar(&showVersion, "version", false, "print version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("Starboard - Star Counter\n")
		fmt.Printf("  Version:    %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Built:      %s\n", buildTime)
		fmt.Printf("  Go version: %s\n", goVersion)
		return
	}

	cfg, err := loadCLIConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if repo != "" {
		cfg.Repo = repo
	}
	if useSocket && cfg.SocketPath == "" {
		cfg.SocketPath = socketrpc.DefaultSocketPath()
	}

	note, err := keynote.Open(cfg.NotesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if setToken != "" || clearToken {
		if err := updateToken(note, cfg.TokenKey, setToken, clearToken); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := runTUI(cfg, note); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func updateToken(note *keynote.Note, key, value string, remove bool) error {
	if remove {
		if err := note.Delete(key); err != nil {
			return err
		}
		fmt.Printf("Removed %s from %s\n", key, note.Path())
		return nil
	}
	if err := note.Set(key, strings.TrimSpace(value)); err != nil {
		return err
	}
	fmt.Printf("Stored %s in %s\n", key, note.Path())
	return nil
}

func runTUI(cfg cliConfig, note *keynote.Note) error {
	cleanupLogger := configureRuntimeLogger()
	defer cleanupLogger()

	fetcher, source, closeFetcher, err := newFetcher(cfg, note)
	if err != nil {
		return err
	}
	defer closeFetcher()

	page := tui.NewCounterPage(tui.CounterPageConfig{
		Fetcher:  fetcher,
		Repo:     source,
		Interval: cfg.PollInterval,
		Timeout:  cfg.RequestTimeout,
		Branding: cfg.branding(),
	})
	app := tui.NewApp(page)
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		if strings.Contains(err.Error(), "TTY") || strings.Contains(err.Error(), "/dev/tty") {
			return fmt.Errorf("TUI requires a real terminal")
		}
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// newFetcher returns the service socket client when a socket path is set,
// otherwise a direct GitHub client. The label names the source in the
// status line.
func newFetcher(cfg cliConfig, note *keynote.Note) (stars.Fetcher, string, func(), error) {
	if cfg.SocketPath != "" {
		client, err := socketrpc.Dial(cfg.SocketPath)
		if err != nil {
			return nil, "", nil, fmt.Errorf("cannot connect to starboard service at %s: %w", cfg.SocketPath, err)
		}
		return client, cfg.Repo + " via service", func() { client.Close() }, nil
	}

	client := stars.NewClient(stars.Config{
		BaseURL:   cfg.APIBaseURL,
		Repo:      cfg.Repo,
		UserAgent: "starboard/" + version,
		Token:     note.Lookup(cfg.TokenKey),
	})
	return client, cfg.Repo, func() {}, nil
}

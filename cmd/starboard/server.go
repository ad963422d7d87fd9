package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/tinytelemetry/starboard/internal/counter"
	"github.com/tinytelemetry/starboard/internal/httpserver"
	"github.com/tinytelemetry/starboard/internal/keynote"
	"github.com/tinytelemetry/starboard/internal/socketrpc"
	"github.com/tinytelemetry/starboard/internal/stars"
	"golang.org/x/sync/errgroup"
)

// runServer polls the star count and serves the page until SIGINT/SIGTERM.
func runServer(cfg appConfig) error {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	note, err := keynote.Open(cfg.NotesPath)
	if err != nil {
		return fmt.Errorf("failed to open token note: %w", err)
	}

	client := stars.NewClient(stars.Config{
		BaseURL:   cfg.APIBaseURL,
		Repo:      cfg.Repo,
		UserAgent: "starboard/" + version,
		Token:     note.Lookup(cfg.TokenKey),
	})

	store := counter.NewStore()
	poller := stars.NewPoller(client, store, cfg.PollInterval, cfg.RequestTimeout)

	apiServer := httpserver.NewServer(cfg.APIAddr, store, httpserver.Options{
		Repo:         cfg.Repo,
		Branding:     cfg.branding(),
		PollInterval: cfg.PollInterval,
	})
	if err := apiServer.Start(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	defer apiServer.Stop()

	// Socket RPC is optional: terminal pages fall back to polling directly.
	var rpcServer *socketrpc.Server
	if cfg.SocketPath != "" {
		rpcServer = socketrpc.NewServer(cfg.SocketPath, store)
		if err := rpcServer.Start(); err != nil {
			log.Printf("server: socket rpc disabled: %v", err)
			rpcServer = nil
		} else {
			defer rpcServer.Stop()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printStartupBanner(cfg, client.Endpoint(), apiServer.Addr(), rpcServer != nil)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return poller.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		fmt.Println("\nShutting down gracefully...")
		return apiServer.Stop()
	})

	if err := g.Wait(); err != nil {
		log.Printf("server: errgroup exited with error: %v", err)
	}
	return nil
}

func printStartupBanner(cfg appConfig, endpoint, addr string, socket bool) {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cyan := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	bold := lipgloss.NewStyle().Bold(true)

	check := green.Render("●")

	fmt.Println()
	fmt.Println(cyan.Bold(true).Render("    ★ starboard"))
	fmt.Println("    " + dim.Render("v"+version))
	fmt.Println()
	fmt.Println(bold.Render("    Watching"))
	fmt.Printf("    %s  Repository     %s\n", check, cyan.Render(cfg.Repo))
	fmt.Printf("    %s  Endpoint       %s\n", check, dim.Render(endpoint))
	fmt.Printf("    %s  Interval       %s\n", check, cfg.PollInterval)
	fmt.Println()
	fmt.Println(bold.Render("    Serving"))
	fmt.Printf("    %s  Page           %s\n", check, cyan.Render("http://"+addr+"/"))
	fmt.Printf("    %s  State          %s\n", check, cyan.Render("http://"+addr+"/api/stars"))
	if socket {
		fmt.Printf("    %s  Socket         %s\n", check, dim.Render(cfg.SocketPath))
	}
	fmt.Println()
}

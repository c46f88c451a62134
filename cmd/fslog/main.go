// fslog - Fantasy Strike match tracker
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	flag "github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/grimkor/fs-log-parser/internal/api"
	"github.com/grimkor/fs-log-parser/internal/collector"
	"github.com/grimkor/fs-log-parser/internal/config"
	"github.com/grimkor/fs-log-parser/internal/notify"
	"github.com/grimkor/fs-log-parser/internal/storage"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		cmdServe(os.Args[2:])
	case "stats":
		cmdStats(os.Args[2:])
	case "config":
		cmdConfig(os.Args[2:])
	case "version":
		fmt.Println(version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`fslog - Fantasy Strike match tracker

Usage:
  fslog serve  [--config path]          tail the game log and serve the API
  fslog stats  [--config path]          print the win/loss summary
  fslog config get [key]                read persisted settings
  fslog config set <key> [value]        write a persisted setting
  fslog version                         print version`)
}

// loadConfig loads the config file, falling back to defaults when no file is
// given and none exists at the default location.
func loadConfig(path string) *config.Config {
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		return cfg
	}
	if _, err := os.Stat("config.yml"); err == nil {
		cfg, err := config.Load("config.yml")
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		return cfg
	}
	return config.Default()
}

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	logPath := fs.String("log", "", "path to the game log (overrides config)")
	fs.Parse(args)

	cfg := loadConfig(*configPath)
	if *logPath != "" {
		cfg.Log.Path = *logPath
	}
	if cfg.Log.Path == "" {
		log.Fatalf("No game log configured. Set log.path in the config file or pass --log.")
	}

	log.Printf("fslog %s starting...", version)

	store, err := storage.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()
	log.Printf("Database initialized at %s", cfg.Database.Path)

	// Notification sinks: WebSocket hub always, NATS when enabled
	hub := notify.NewHub()
	go hub.Run()
	sinks := notify.Multi{hub}

	var natsSink *notify.NATS
	if cfg.NATS.Enabled {
		natsSink, err = notify.NewNATS(cfg.NATS)
		if err != nil {
			log.Fatalf("Failed to start NATS sink: %v", err)
		}
		defer natsSink.Close()
		sinks = append(sinks, natsSink)
		log.Printf("NATS sink publishing on %s.*", cfg.NATS.SubjectPrefix)
	}

	manager := collector.NewManager(cfg, store, sinks)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := manager.Start(ctx); err != nil {
		log.Fatalf("Failed to start manager: %v", err)
	}

	router := api.NewRouter(store, hub)
	addr := fmt.Sprintf("%s:%d", cfg.Server.ListenAddr, cfg.Server.HTTPPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on %s", addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case sig := <-sigCh:
		log.Printf("Received signal %v, shutting down...", sig)
	case err := <-serverErr:
		log.Fatalf("HTTP server error: %v", err)
	}

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer httpCancel()
	if err := server.Shutdown(httpCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	manager.Stop()
	cancel()
	log.Println("Shutdown complete")
}

func cmdStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	fs.Parse(args)

	cfg := loadConfig(*configPath)
	store, err := storage.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	summary, err := store.WinLossSummary(context.Background())
	if err != nil {
		log.Fatalf("Failed to compute stats: %v", err)
	}
	if len(summary) == 0 {
		fmt.Println("No completed matches recorded yet.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tTOTAL\tWINS\tLOSSES\tWINS(30D)\tLOSSES(30D)\tBEST RANK\tFIRST RANK")
	for _, s := range summary {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\t%s\t%s\n",
			s.MatchType, s.Total, s.Wins, s.Losses, s.Wins30, s.Losses30, s.BestRank, s.FirstRank)
	}
	w.Flush()
}

func cmdConfig(args []string) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	fs.Parse(args)
	rest := fs.Args()

	if len(rest) < 1 {
		fmt.Fprintln(os.Stderr, "Error: config subcommand required: get, set")
		os.Exit(1)
	}

	cfg := loadConfig(*configPath)
	store, err := storage.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	switch rest[0] {
	case "get":
		settings, err := store.GetConfig(ctx)
		if err != nil {
			log.Fatalf("Failed to read config: %v", err)
		}
		if len(rest) > 1 {
			fmt.Println(settings[rest[1]])
			return
		}
		for key, value := range settings {
			fmt.Printf("%s=%s\n", key, value)
		}
	case "set":
		if len(rest) < 2 {
			fmt.Fprintln(os.Stderr, "Error: usage: fslog config set <key> [value]")
			os.Exit(1)
		}
		key := rest[1]
		var value string
		if len(rest) > 2 {
			value = rest[2]
		} else {
			value = promptValue(key)
		}
		if err := store.SetConfig(ctx, map[string]string{key: value}); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("%s=%s\n", key, value)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown config command: %s (use: get, set)\n", rest[0])
		os.Exit(1)
	}
}

// promptValue reads a value interactively; only possible on a terminal
func promptValue(key string) string {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: no value given and stdin is not a terminal")
		os.Exit(1)
	}
	fmt.Printf("%s: ", key)
	reader := bufio.NewReader(os.Stdin)
	value, err := reader.ReadString('\n')
	if err != nil {
		log.Fatalf("Failed to read value: %v", err)
	}
	return strings.TrimSpace(value)
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/localweb/auth-front/internal/config"
	"github.com/localweb/auth-front/internal/cookiecodec"
	"github.com/localweb/auth-front/internal/idp"
	"github.com/localweb/auth-front/internal/log"
	"github.com/localweb/auth-front/internal/server"
)

var BuildVersion = "dev"

func main() {
	version := flag.Bool("version", false, "print version and exit")
	help := flag.Bool("help", false, "print help and exit")
	flag.Parse()
	if *help {
		flag.Usage()
		return
	}
	if *version {
		fmt.Println(BuildVersion)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.LogError("Failed to load config: %v", err)
		os.Exit(1)
	}

	codec, err := cookiecodec.NewCodec([]byte(cfg.SigningKey))
	if err != nil {
		log.LogError("Failed to initialize cookie codec: %v", err)
		os.Exit(1)
	}

	handlers := server.NewAuthHandlers(cfg, idp.NewRegistry(), codec)
	httpServer := server.NewHTTPServer(server.NewRouter(handlers), cfg.Addr())

	log.LogInfoWithFields("main", "Starting auth-front", map[string]any{
		"version":     BuildVersion,
		"addr":        cfg.Addr(),
		"rolesSource": cfg.RolesSource,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.LogError("Server failed: %v", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Stop(shutdownCtx); err != nil {
			log.LogError("Shutdown failed: %v", err)
			os.Exit(1)
		}
	}
}

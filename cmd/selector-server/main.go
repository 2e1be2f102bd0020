package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"charselect/internal/catalog"
	"charselect/internal/events"
	"charselect/internal/iconproxy"
	"charselect/pkg/database"
	"charselect/pkg/utils"
)

func main() {
	cfg := utils.LoadServerConfig()

	dbCfg := database.DefaultConfig()
	db := database.MustOpen(dbCfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	router := gin.Default()
	_ = router.SetTrustedProxies(cfg.TrustedProxies)

	hub := events.NewHub()
	store := catalog.NewStore(cfg.DataDir, nil)
	router.GET("/ws", events.WSHandler(hub, store.Files))

	catalog.NewHandler(store).RegisterRoutes(router)

	iconRepo := iconproxy.NewRepo(db)
	proxy, err := iconproxy.NewProxy(iconproxy.Config{
		Dir:      cfg.CacheDir,
		Timeout:  cfg.IconTimeout,
		MaxBytes: cfg.IconMaxBytes,
		MemItems: cfg.IconMemItems,
		MemBytes: cfg.IconMemBytes,
		MaxSide:  cfg.IconMaxSide,
	}, iconRepo, nil)
	if err != nil {
		log.Fatalf("icon proxy init failed: %v", err)
	}
	iconproxy.NewHandler(proxy).RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": dbCfg.Path, "data_dir": cfg.DataDir})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":     "not_ready",
				"db_error":   err.Error(),
				"ws_clients": stats.WSClients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":     "ready",
			"db":         "ok",
			"ws_clients": stats.WSClients,
		})
	})

	router.GET("/debug", func(c *gin.Context) {
		stats := hub.Stats()
		items, bytes := proxy.Stats()
		cached, _ := iconRepo.Count(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{
			"data_dir":       cfg.DataDir,
			"datasets":       store.Files(),
			"ws_clients":     stats.WSClients,
			"events_sent":    stats.Sent,
			"icon_mem_items": items,
			"icon_mem_bytes": bytes,
			"icon_disk":      cached,
		})
	})

	httpSrv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		watcher := catalog.NewWatcher(store, hub, nil)
		if err := watcher.Run(ctx); err != nil {
			// the server stays useful without live reload
			log.Printf("[watch] disabled: %v", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("HTTP server listening on %s (data: %s)", cfg.Addr, cfg.DataDir)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down")
	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("server stopped")
}

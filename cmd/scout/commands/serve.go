package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/scout/internal/api"
	"github.com/wonny/scout/internal/api/handlers"
	"github.com/wonny/scout/internal/contracts"
	"github.com/wonny/scout/internal/external"
	"github.com/wonny/scout/internal/external/ai"
	"github.com/wonny/scout/internal/external/kiwoom"
	"github.com/wonny/scout/internal/external/naver"
	"github.com/wonny/scout/internal/paper"
	"github.com/wonny/scout/internal/scanner"
	"github.com/wonny/scout/internal/scheduler"
	"github.com/wonny/scout/internal/scoring"
	"github.com/wonny/scout/internal/trader"
	"github.com/wonny/scout/pkg/cache"
	"github.com/wonny/scout/pkg/config"
	"github.com/wonny/scout/pkg/database"
	"github.com/wonny/scout/pkg/httputil"
	"github.com/wonny/scout/pkg/logger"
	"github.com/wonny/scout/pkg/redis"
)

// serveCmd runs the whole service
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "전체 서비스 실행 (파이프라인 + 매매 루프 + API + 스케줄러)",
	Long: `스캔 파이프라인, 매매 판단 루프, 모니터링 API, 정리 작업
스케줄러를 한 프로세스에서 실행합니다.

Example:
  go run ./cmd/scout serve
  go run ./cmd/scout serve --port 8091`,
	RunE: runServe,
}

var servePort string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&servePort, "port", "", "API 서버 포트 (기본: PORT 환경변수)")
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Scout Trading Bot ===")

	// 1. Config + logger
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if servePort != "" {
		cfg.Port = servePort
	}

	log := logger.New(cfg)
	log.WithFields(map[string]interface{}{
		"env":   cfg.Env,
		"paper": cfg.Trading.PaperTrading,
	}).Info("Initializing service")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Database (모의매매 원장 + 학습 이력). 미설정 시 원장 없이 기동.
	var ledger *paper.Repository
	if cfg.Database.URL != "" {
		db, err := database.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()
		ledger = paper.NewRepository(db.Pool, log)
		log.Info("Connected to database")
	} else {
		log.Warn("DATABASE_URL not set, running without paper ledger")
	}

	// 3. Redis (선택적 — 분산 캐시/리밋)
	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	// 4. Market data feeds
	kiwoomHTTP := httputil.New(log, 10*time.Second)
	kiwoomClient := kiwoom.NewClient(cfg.Kiwoom, kiwoomHTTP, log)

	var naverLimiter httputil.RateWaiter
	if redisClient.Enabled() {
		rl := redis.NewRateLimiter(redisClient, "scout")
		naverLimiter = httputil.WaiterFunc(func(ctx context.Context) error {
			return rl.Wait(ctx, redis.NaverRateLimit)
		})
	}
	naverHTTP := httputil.New(log, 15*time.Second)
	naverClient := naver.NewClient(cfg.Naver, naverHTTP, naverLimiter, log)

	provider := external.NewProvider(kiwoomClient, naverClient, log)

	// 5. Scan pipeline
	ttlCache := cache.New()

	var outcomes contracts.OutcomeRepository
	if ledger != nil {
		outcomes = ledger
	}
	adaptive := scanner.NewAdaptiveLayer(ctx, provider, ttlCache, outcomes, log)

	fastScanner := scanner.NewFastScanner(provider, adaptive, cfg.Scan, log)
	deepScanner := scanner.NewDeepScanner(provider, ttlCache, cfg.Scan, log)
	pipeline := scanner.NewPipeline(fastScanner, deepScanner, cfg.Scan, log)

	// 6. Scoring + AI
	scorer := scoring.NewSystem(cfg.Scoring, ttlCache, log)

	var analyzer contracts.StockAnalyzer
	if cfg.AI.BaseURL != "" {
		analyzer = ai.NewAnalyzer(cfg.AI, httputil.New(log, cfg.AI.Timeout), log)
	} else {
		log.Warn("AI_BASE_URL not set, running with score gate only")
	}

	// 7. Order executor: 모의매매는 원장, 실매매는 증권사
	var executor contracts.OrderExecutor
	var positions trader.OpenPositionChecker
	if cfg.Trading.PaperTrading {
		if ledger == nil {
			return fmt.Errorf("paper trading requires DATABASE_URL")
		}
		executor = ledger
		positions = ledger
	} else {
		executor = kiwoomClient
		if ledger != nil {
			positions = ledger
		}
	}

	loop := trader.NewLoop(pipeline, scorer, analyzer, executor, positions,
		cfg.Trading, cfg.Scan.AIInterval, log)

	// 8. API server + websocket stream
	hub := api.NewHub(log)
	loop.OnWatchlist(func(watchlist []*trader.ScoredCandidate) {
		hub.Broadcast(map[string]interface{}{
			"type":      "watchlist",
			"count":     len(watchlist),
			"watchlist": watchlist,
		})
	})

	scanHandler := handlers.NewScanHandler(pipeline, adaptive, loop, scorer, provider, ledger, log)
	router := api.NewRouter(scanHandler, hub, log)
	server := api.New(cfg, log, router)

	// 9. Scheduler
	sched := scheduler.New(log)
	if err := sched.AddJob(&scheduler.CacheSweepJob{Cache: ttlCache, Log: log}); err != nil {
		return err
	}
	if ledger != nil {
		if err := sched.AddJob(&scheduler.DailySummaryJob{Ledger: ledger, Log: log}); err != nil {
			return err
		}
	}
	if redisClient.Enabled() {
		snapshotCache := redis.NewCache(redisClient, "scout")
		if err := sched.AddJob(&scheduler.WatchlistSnapshotJob{
			Pipeline: pipeline,
			Cache:    snapshotCache,
			Log:      log,
		}); err != nil {
			return err
		}
	}
	sched.Start()
	defer sched.Stop()

	// 10. Run
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()
	go loop.Run(ctx)

	fmt.Printf("\n✅ Service running on http://localhost:%s\n", cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	<-ctx.Done()
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Service stopped")
	return nil
}

package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/scout/internal/external"
	"github.com/wonny/scout/internal/external/kiwoom"
	"github.com/wonny/scout/internal/external/naver"
	"github.com/wonny/scout/internal/scanner"
	"github.com/wonny/scout/pkg/cache"
	"github.com/wonny/scout/pkg/config"
	"github.com/wonny/scout/pkg/httputil"
	"github.com/wonny/scout/pkg/logger"
)

// scanCmd runs the scan pipeline once and prints the watchlist
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "스캔 파이프라인 1회 실행",
	Long: `1차/2차 스캔을 한 번 실행하고 감시 목록을 출력합니다.
매매 판단이나 주문은 하지 않습니다.

Example:
  go run ./cmd/scout scan
  go run ./cmd/scout scan --fast-only`,
	RunE: runScan,
}

var scanFastOnly bool

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().BoolVar(&scanFastOnly, "fast-only", false, "1차 스캔만 실행")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	kiwoomClient := kiwoom.NewClient(cfg.Kiwoom, httputil.New(log, 10*time.Second), log)
	naverClient := naver.NewClient(cfg.Naver, httputil.New(log, 15*time.Second), nil, log)
	provider := external.NewProvider(kiwoomClient, naverClient, log)

	ttlCache := cache.New()
	adaptive := scanner.NewAdaptiveLayer(ctx, provider, ttlCache, nil, log)
	fastScanner := scanner.NewFastScanner(provider, adaptive, cfg.Scan, log)

	candidates := fastScanner.Scan(ctx)
	fmt.Printf("\n1차 스캔: %d 종목\n", len(candidates))
	for i, c := range candidates {
		fmt.Printf("  %2d. %-6s %-20s %8d원 %+.2f%% (%.0f점)\n",
			i+1, c.Code, c.Name, c.Price, c.Rate, c.FastScanScore)
	}

	if scanFastOnly || len(candidates) == 0 {
		return nil
	}

	deepScanner := scanner.NewDeepScanner(provider, ttlCache, cfg.Scan, log)
	watchlist := deepScanner.Scan(ctx, candidates)

	fmt.Printf("\n2차 스캔: %d 종목\n", len(watchlist))
	for i, c := range watchlist {
		inst := int64(0)
		if c.InstitutionalNetBuy != nil {
			inst = *c.InstitutionalNetBuy
		}
		fmt.Printf("  %2d. %-6s %-20s 누적 %.0f점 (기관 %+d원)\n",
			i+1, c.Code, c.Name, c.DeepScanScore, inst)
	}

	return nil
}

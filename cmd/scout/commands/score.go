package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/scout/internal/contracts"
	"github.com/wonny/scout/internal/external"
	"github.com/wonny/scout/internal/external/kiwoom"
	"github.com/wonny/scout/internal/external/naver"
	"github.com/wonny/scout/internal/scanner"
	"github.com/wonny/scout/internal/scoring"
	"github.com/wonny/scout/pkg/cache"
	"github.com/wonny/scout/pkg/config"
	"github.com/wonny/scout/pkg/httputil"
	"github.com/wonny/scout/pkg/logger"
)

// scoreCmd scores a single ticker on demand
var scoreCmd = &cobra.Command{
	Use:   "score [종목코드]",
	Short: "종목 하나를 440점 체계로 채점",
	Long: `지정한 종목의 현재 데이터를 보강한 뒤 10개 기준으로 채점합니다.

Example:
  go run ./cmd/scout score 005930
  go run ./cmd/scout score 005930 --scan-type volume_based`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

var scoreScanType string

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreCmd.Flags().StringVar(&scoreScanType, "scan-type", "default",
		"가중치 프로파일 (default|volume_based|price_change|ai_driven)")
}

func runScore(cmd *cobra.Command, args []string) error {
	code := args[0]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	kiwoomClient := kiwoom.NewClient(cfg.Kiwoom, httputil.New(log, 10*time.Second), log)
	naverClient := naver.NewClient(cfg.Naver, httputil.New(log, 15*time.Second), nil, log)
	provider := external.NewProvider(kiwoomClient, naverClient, log)

	// 채점 대상 스냅샷 구성: 스크리너에서 기본 시세를 찾고 2차 보강을 거친다
	candidate, err := findInUniverse(ctx, provider, cfg, code)
	if err != nil {
		return err
	}

	ttlCache := cache.New()
	deepScanner := scanner.NewDeepScanner(provider, ttlCache, singleCandidateScan(cfg.Scan), log)
	enriched := deepScanner.Scan(ctx, []*contracts.StockCandidate{candidate})
	if len(enriched) > 0 {
		candidate = enriched[0]
	}

	scorer := scoring.NewSystem(cfg.Scoring, nil, log)
	result, err := scorer.Calculate(candidate, scoring.ScanType(scoreScanType))
	if err != nil {
		return fmt.Errorf("scoring failed: %w", err)
	}

	fmt.Printf("\n%s (%s) — %s 프로파일\n", candidate.Name, candidate.Code, result.ScanType)
	fmt.Printf("총점: %.1f / %.0f (%.1f%%, 등급 %s)\n\n",
		result.TotalScore, result.MaxScore, result.Percentage, result.Grade)
	fmt.Printf("  거래량 급증     %6.1f\n", result.Scores.VolumeSurge)
	fmt.Printf("  가격 모멘텀     %6.1f\n", result.Scores.PriceMomentum)
	fmt.Printf("  기관 매수세     %6.1f\n", result.Scores.InstitutionalBuying)
	fmt.Printf("  호가 강도       %6.1f\n", result.Scores.BidStrength)
	fmt.Printf("  체결 강도       %6.1f\n", result.Scores.ExecutionIntensity)
	fmt.Printf("  거래원 활동     %6.1f\n", result.Scores.BrokerActivity)
	fmt.Printf("  프로그램 매매   %6.1f\n", result.Scores.ProgramTrading)
	fmt.Printf("  기술적 지표     %6.1f\n", result.Scores.TechnicalIndicators)
	fmt.Printf("  시장 모멘텀     %6.1f\n", result.Scores.MarketMomentum)
	fmt.Printf("  변동성 패턴     %6.1f\n", result.Scores.VolatilityPattern)

	return nil
}

// findInUniverse locates a ticker in the screened universe.
// 스크리너에 없으면 조건 미달이므로 채점 대상이 아니다.
func findInUniverse(ctx context.Context, provider contracts.MarketDataProvider, cfg *config.Config, code string) (*contracts.StockCandidate, error) {
	screened, err := provider.Screen(ctx, contracts.ScreenFilter{
		MinPrice:     cfg.Scan.MinPrice,
		MaxPrice:     cfg.Scan.MaxPrice,
		MinVolume:    cfg.Scan.MinVolume,
		MinRate:      cfg.Scan.MinRate,
		MaxRate:      cfg.Scan.MaxRate,
		MinMarketCap: cfg.Scan.MinMarketCap,
	})
	if err != nil {
		return nil, fmt.Errorf("screen: %w", err)
	}

	for _, s := range screened {
		if s.Code == code {
			return &contracts.StockCandidate{
				Code:   s.Code,
				Name:   s.Name,
				Price:  s.Price,
				Volume: s.Volume,
				Rate:   s.Rate,
			}, nil
		}
	}

	return nil, fmt.Errorf("stock %s not in screened universe", code)
}

// singleCandidateScan relaxes the deep scan caps for a one-off scoring run.
func singleCandidateScan(cfg config.ScanConfig) config.ScanConfig {
	cfg.DeepMaxCandidates = 1
	cfg.MinInstitutionalBuy = 0
	return cfg
}

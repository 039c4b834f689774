package commands

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "scout",
	Short: "국내주식 3단계 스캔 자동매매 봇",
	Long: `Scout - 3단계 스캔 파이프라인 기반 국내주식 자동매매 봇

1차 스캔(10초)으로 유니버스를 빠르게 거르고, 2차 스캔(60초)으로
수급/호가/기술적 지표를 보강한 뒤, 매수 판단 시점에만 AI 분석을
지연 호출합니다.

Commands:
  serve  전체 서비스 실행 (파이프라인 + 매매 루프 + API + 스케줄러)
  scan   스캔 파이프라인 1회 실행 후 결과 출력
  score  종목 하나를 440점 체계로 채점`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

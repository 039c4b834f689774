package scoring

// ScanType selects a per-criterion weight multiplier profile.
// 같은 10개 기준 공식에 프로파일별 배수(0.7~1.5)만 곱한다 —
// 스캔 전략마다 채점 로직을 복제하지 않기 위한 장치.
type ScanType string

const (
	ScanTypeDefault     ScanType = "default"
	ScanTypeVolumeBased ScanType = "volume_based"
	ScanTypePriceChange ScanType = "price_change"
	ScanTypeAIDriven    ScanType = "ai_driven"
)

// WeightProfile holds the ten per-criterion multipliers.
type WeightProfile struct {
	VolumeSurge         float64
	PriceMomentum       float64
	InstitutionalBuying float64
	BidStrength         float64
	ExecutionIntensity  float64
	BrokerActivity      float64
	ProgramTrading      float64
	TechnicalIndicators float64
	MarketMomentum      float64
	VolatilityPattern   float64
}

// defaultProfile applies every formula at face value.
var defaultProfile = WeightProfile{
	VolumeSurge:         1.0,
	PriceMomentum:       1.0,
	InstitutionalBuying: 1.0,
	BidStrength:         1.0,
	ExecutionIntensity:  1.0,
	BrokerActivity:      1.0,
	ProgramTrading:      1.0,
	TechnicalIndicators: 1.0,
	MarketMomentum:      1.0,
	VolatilityPattern:   1.0,
}

// volumeBasedProfile emphasizes turnover and order-flow signals.
var volumeBasedProfile = WeightProfile{
	VolumeSurge:         1.5,
	PriceMomentum:       0.9,
	InstitutionalBuying: 1.0,
	BidStrength:         1.2,
	ExecutionIntensity:  1.2,
	BrokerActivity:      1.1,
	ProgramTrading:      1.1,
	TechnicalIndicators: 0.8,
	MarketMomentum:      1.0,
	VolatilityPattern:   0.7,
}

// priceChangeProfile emphasizes momentum.
var priceChangeProfile = WeightProfile{
	VolumeSurge:         1.1,
	PriceMomentum:       1.5,
	InstitutionalBuying: 0.9,
	BidStrength:         0.9,
	ExecutionIntensity:  1.0,
	BrokerActivity:      0.8,
	ProgramTrading:      0.8,
	TechnicalIndicators: 1.0,
	MarketMomentum:      1.3,
	VolatilityPattern:   0.9,
}

// aiDrivenProfile emphasizes the signals the analyzer reasons about.
var aiDrivenProfile = WeightProfile{
	VolumeSurge:         0.9,
	PriceMomentum:       0.9,
	InstitutionalBuying: 1.2,
	BidStrength:         0.9,
	ExecutionIntensity:  0.9,
	BrokerActivity:      0.7,
	ProgramTrading:      0.8,
	TechnicalIndicators: 1.3,
	MarketMomentum:      1.2,
	VolatilityPattern:   1.1,
}

// ProfileFor returns the weight profile for a scan type.
// 알 수 없는 타입은 기본 프로파일로 떨어진다.
func ProfileFor(scanType ScanType) WeightProfile {
	switch scanType {
	case ScanTypeVolumeBased:
		return volumeBasedProfile
	case ScanTypePriceChange:
		return priceChangeProfile
	case ScanTypeAIDriven:
		return aiDrivenProfile
	default:
		return defaultProfile
	}
}

// Per-criterion base maxima (배수 적용 전).
const (
	maxVolumeSurge         = 60.0
	maxPriceMomentum       = 60.0
	maxInstitutionalBuying = 60.0
	maxBidStrength         = 40.0
	maxExecutionIntensity  = 40.0
	maxBrokerActivity      = 40.0
	maxProgramTrading      = 40.0
	maxTechnicalIndicators = 40.0
	maxMarketMomentum      = 40.0
	maxVolatilityPattern   = 20.0
)

// MaxScore returns the theoretical maximum under this profile.
// 기본 프로파일에서 440.
func (w WeightProfile) MaxScore() float64 {
	return round1(maxVolumeSurge*w.VolumeSurge) +
		round1(maxPriceMomentum*w.PriceMomentum) +
		round1(maxInstitutionalBuying*w.InstitutionalBuying) +
		round1(maxBidStrength*w.BidStrength) +
		round1(maxExecutionIntensity*w.ExecutionIntensity) +
		round1(maxBrokerActivity*w.BrokerActivity) +
		round1(maxProgramTrading*w.ProgramTrading) +
		round1(maxTechnicalIndicators*w.TechnicalIndicators) +
		round1(maxMarketMomentum*w.MarketMomentum) +
		round1(maxVolatilityPattern*w.VolatilityPattern)
}

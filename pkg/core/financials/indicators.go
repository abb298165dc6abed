package financials

import "strings"

// Period buckets of the summary, oldest first.
const (
	PeriodPrior4  = "4期前"
	PeriodPrior3  = "3期前"
	PeriodPrior2  = "2期前"
	PeriodPrior1  = "1期前"
	PeriodCurrent = "当期"
)

// PeriodBuckets lists every bucket in chronological order.
var PeriodBuckets = []string{PeriodPrior4, PeriodPrior3, PeriodPrior2, PeriodPrior1, PeriodCurrent}

// Indicator names used as summary keys.
const (
	IndicatorRevenue          = "売上高"
	IndicatorOrdinaryIncome   = "経常利益"
	IndicatorNetIncome        = "当期純利益"
	IndicatorComprehensive    = "包括利益"
	IndicatorNetAssets        = "純資産"
	IndicatorTotalAssets      = "総資産"
	IndicatorBPS              = "BPS"
	IndicatorEPS              = "EPS"
	IndicatorDilutedEPS       = "潜在株式調整後EPS"
	IndicatorEquityRatio      = "自己資本比率"
	IndicatorROE              = "ROE"
	IndicatorPER              = "PER"
	IndicatorOperatingCF      = "営業CF"
	IndicatorInvestingCF      = "投資CF"
	IndicatorFinancingCF      = "財務CF"
	IndicatorCashEquivalents  = "現金同等物"
	IndicatorEmployees        = "従業員数"
	IndicatorDividendPerShare = "1株配当"
	IndicatorPayoutRatio      = "配当性向"
)

// Indicators lists every indicator name in display order.
var Indicators = []string{
	IndicatorRevenue, IndicatorOrdinaryIncome, IndicatorNetIncome, IndicatorComprehensive,
	IndicatorNetAssets, IndicatorTotalAssets, IndicatorBPS, IndicatorEPS, IndicatorDilutedEPS,
	IndicatorEquityRatio, IndicatorROE, IndicatorPER, IndicatorOperatingCF, IndicatorInvestingCF,
	IndicatorFinancingCF, IndicatorCashEquivalents, IndicatorEmployees, IndicatorDividendPerShare,
	IndicatorPayoutRatio,
}

type indicatorDef struct {
	Name        string
	MultiPeriod bool
}

// indicatorTable maps jpcrp_cor element ids from the "経営指標等" (summary of
// business results) block to indicator names. Adding an indicator is a new
// entry here.
var indicatorTable = map[string]indicatorDef{
	"jpcrp_cor:NetSalesSummaryOfBusinessResults":                                   {IndicatorRevenue, true},
	"jpcrp_cor:RevenueIFRSSummaryOfBusinessResults":                                {IndicatorRevenue, true},
	"jpcrp_cor:RevenuesUSGAAPSummaryOfBusinessResults":                             {IndicatorRevenue, true},
	"jpcrp_cor:OrdinaryIncomeLossSummaryOfBusinessResults":                         {IndicatorOrdinaryIncome, false},
	"jpcrp_cor:NetAssetsSummaryOfBusinessResults":                                  {IndicatorNetAssets, false},
	"jpcrp_cor:TotalAssetsSummaryOfBusinessResults":                                {IndicatorTotalAssets, false},
	"jpcrp_cor:NetAssetsPerShareSummaryOfBusinessResults":                          {IndicatorBPS, false},
	"jpcrp_cor:BasicEarningsLossPerShareSummaryOfBusinessResults":                  {IndicatorEPS, false},
	"jpcrp_cor:DilutedEarningsPerShareSummaryOfBusinessResults":                    {IndicatorDilutedEPS, false},
	"jpcrp_cor:EquityToAssetRatioSummaryOfBusinessResults":                         {IndicatorEquityRatio, false},
	"jpcrp_cor:RateOfReturnOnEquitySummaryOfBusinessResults":                       {IndicatorROE, false},
	"jpcrp_cor:PriceEarningsRatioSummaryOfBusinessResults":                         {IndicatorPER, false},
	"jpcrp_cor:CashAndCashEquivalentsSummaryOfBusinessResults":                     {IndicatorCashEquivalents, false},
	"jpcrp_cor:NumberOfEmployees":                                                  {IndicatorEmployees, false},
	"jpcrp_cor:DividendPaidPerShareSummaryOfBusinessResults":                       {IndicatorDividendPerShare, false},
	"jpcrp_cor:PayoutRatioSummaryOfBusinessResults":                                {IndicatorPayoutRatio, false},
	"jpcrp_cor:ComprehensiveIncomeSummaryOfBusinessResults":                        {IndicatorComprehensive, false},
	"jpcrp_cor:ProfitLossAttributableToOwnersOfParentSummaryOfBusinessResults":     {IndicatorNetIncome, false},
	"jpcrp_cor:NetCashProvidedByUsedInOperatingActivitiesSummaryOfBusinessResults": {IndicatorOperatingCF, false},
	"jpcrp_cor:NetCashProvidedByUsedInInvestingActivitiesSummaryOfBusinessResults": {IndicatorInvestingCF, false},
	"jpcrp_cor:NetCashProvidedByUsedInFinancingActivitiesSummaryOfBusinessResults": {IndicatorFinancingCF, false},
}

// relativePeriods maps the 相対年度 column to a bucket. Duration rows use the
// bare label, instant rows the "末" (end of period) form.
var relativePeriods = map[string]string{
	"四期前":  PeriodPrior4,
	"四期前末": PeriodPrior4,
	"三期前":  PeriodPrior3,
	"三期前末": PeriodPrior3,
	"前々期":  PeriodPrior2,
	"前々期末": PeriodPrior2,
	"前期":   PeriodPrior1,
	"前期末":  PeriodPrior1,
	"当期":   PeriodCurrent,
	"当期末":  PeriodCurrent,
}

const nonConsolidatedSuffix = "_NonConsolidatedMember"

// nonConsolidatedOnly lists indicators that are reported per share on the
// parent-only basis; their consolidated-context rows are dropped.
var nonConsolidatedOnly = map[string]bool{
	IndicatorDividendPerShare: true,
	IndicatorPayoutRatio:      true,
}

// keepForScope decides from the context id, not the 連結・個別 column,
// whether a row belongs in the summary.
func keepForScope(indicator, contextID string) bool {
	if !nonConsolidatedOnly[indicator] {
		return true
	}
	return strings.HasSuffix(contextID, nonConsolidatedSuffix)
}

// bucketFor returns the target bucket of a row, or false when the row's
// period is not collected for this indicator.
func bucketFor(def indicatorDef, relativePeriod string) (string, bool) {
	bucket, ok := relativePeriods[strings.TrimSpace(relativePeriod)]
	if !ok {
		return "", false
	}
	if !def.MultiPeriod && bucket != PeriodCurrent {
		return "", false
	}
	return bucket, true
}

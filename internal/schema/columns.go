package schema

// Legacy column identifiers, as found in exports downloaded from the
// 국토교통부 실거래가 공개시스템 (rt.molit.go.kr).
const (
	ColNo           = "NO"          // display ordinal, regenerated on normalization
	ColRegion       = "시군구"         // "<시도> <시군구> <법정동>"
	ColComplex      = "단지명"         // apartment complex name
	ColArea         = "전용면적(㎡)"     // exclusive area, square meters
	ColYearMonth    = "계약년월"        // contract year-month, YYYYMM
	ColDay          = "계약일"         // contract day of month
	ColAmount       = "거래금액(만원)"    // deal amount, 10,000 KRW units
	ColFloor        = "층"           // floor
	ColBuildYear    = "건축년도"        // year the building was completed
	ColCancelDate   = "해제사유발생일"     // cancellation date; blank-ish means not cancelled
	ColTradeDate    = "거래일자"        // derived: calendar date of the contract
	ColPyeong       = "평수"          // derived: area in pyeong (㎡ / 3.3)
	ColPricePyeong  = "평당가(만원)"     // derived: amount per pyeong
)

// New-API column identifiers, as returned by the MOLIT open-data API
// format introduced 2024-07-17.
const (
	APIRegionCode = "sggCd"      // 5-digit district code
	APIDongName   = "umdNm"      // legal dong name
	APIComplex    = "aptNm"      // apartment complex name
	APIArea       = "excluUseAr" // exclusive area, square meters
	APIYear       = "dealYear"   // contract year
	APIMonth      = "dealMonth"  // contract month
	APIDay        = "dealDay"    // contract day
	APIAmount     = "dealAmount" // amount string with thousands separators
	APIFloor      = "floor"      // floor
	APIBuildYear  = "buildYear"  // year the building was completed
	APICancelDate = "cdealDay"   // cancellation date (optional column)
)

// legacyIndicators and apiIndicators are the minimal column sets used to
// classify a table's shape. Detection is by column presence only; row
// content is never inspected.
var (
	legacyIndicators = []string{ColRegion, ColComplex, ColAmount}
	apiIndicators    = []string{APIRegionCode, APIComplex, APIAmount}
)

// RequiredAPIColumns lists every new-API column the normalizer needs.
// APICancelDate is deliberately absent: cancellation data is optional.
var RequiredAPIColumns = []string{
	APIRegionCode, APIComplex, APIArea,
	APIYear, APIMonth, APIDay,
	APIAmount, APIFloor, APIBuildYear,
}

// LegacyColumns lists the canonical legacy shape in output order.
var LegacyColumns = []string{
	ColNo, ColRegion, ColComplex, ColArea, ColYearMonth,
	ColDay, ColAmount, ColFloor, ColBuildYear, ColCancelDate,
}

package analytics

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"

	"github.com/aptview/aptview/internal/schema"
)

// GroupKey selects how transactions are matched between the past and the
// recent window when measuring appreciation.
type GroupKey int

const (
	// GroupByComplex matches on 단지명 alone.
	GroupByComplex GroupKey = iota
	// GroupByComplexArea additionally requires the same size band.
	GroupByComplexArea
	// GroupByComplexAreaFloor additionally requires the same floor band.
	GroupByComplexAreaFloor
)

// shortAreaBands are the compact labels used inside composite group keys.
var shortAreaBands = []string{"소형", "중소형", "중형", "중대형", "대형"}

// shortFloorBands are the compact labels used inside composite group keys.
var shortFloorBands = []string{"저층", "중층", "고층", "초고층", "기타"}

// AppreciationEntry compares one group's mean price across the two windows.
type AppreciationEntry struct {
	Key           string // composite group key
	Complex       string // 단지명 part of the key
	PastMean      float64
	CurrentMean   float64
	ChangeAmount  float64 // CurrentMean - PastMean, 만원
	ChangePercent float64
	PastCount     int
	CurrentCount  int
}

// Appreciation splits the table at cutoff (거래일자 > cutoff is "current"),
// groups both windows by the chosen key, and reports the mean-price change
// for every group present in both windows, sorted by percent change
// descending. Groups without past observations are omitted: there is
// nothing to appreciate from.
func Appreciation(df dataframe.DataFrame, cutoff time.Time, key GroupKey) []AppreciationEntry {
	keys, complexes := groupKeys(df, key)
	dates := df.Col(schema.ColTradeDate).Records()
	amounts := df.Col(schema.ColAmount).Float()
	cut := cutoff.Format("2006-01-02")

	type window struct {
		sum float64
		n   int
	}
	past := make(map[string]*window)
	current := make(map[string]*window)
	complexOf := make(map[string]string)

	for i := range keys {
		if math.IsNaN(amounts[i]) {
			continue
		}
		w := past
		if dates[i] > cut {
			w = current
		}
		v, ok := w[keys[i]]
		if !ok {
			v = &window{}
			w[keys[i]] = v
		}
		v.sum += amounts[i]
		v.n++
		complexOf[keys[i]] = complexes[i]
	}

	var entries []AppreciationEntry
	for k, cur := range current {
		p, ok := past[k]
		if !ok || p.n == 0 || p.sum == 0 {
			continue
		}
		pastMean := p.sum / float64(p.n)
		curMean := cur.sum / float64(cur.n)
		entries = append(entries, AppreciationEntry{
			Key:           k,
			Complex:       complexOf[k],
			PastMean:      pastMean,
			CurrentMean:   curMean,
			ChangeAmount:  curMean - pastMean,
			ChangePercent: (curMean - pastMean) / pastMean * 100,
			PastCount:     p.n,
			CurrentCount:  cur.n,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].ChangePercent != entries[j].ChangePercent {
			return entries[i].ChangePercent > entries[j].ChangePercent
		}
		return entries[i].Key < entries[j].Key
	})
	return entries
}

// Premium is the markup of one recent transaction over its group's past
// mean price.
type Premium struct {
	Complex     string
	Date        string
	Amount      float64
	PastMean    float64
	Premium     float64 // Amount - PastMean, 만원
	PremiumRate float64 // percent
}

// Premiums computes, for every transaction after cutoff whose group also
// traded before it, the premium over the group's past mean. Sorted by
// premium descending.
func Premiums(df dataframe.DataFrame, cutoff time.Time, key GroupKey) []Premium {
	keys, complexes := groupKeys(df, key)
	dates := df.Col(schema.ColTradeDate).Records()
	amounts := df.Col(schema.ColAmount).Float()
	cut := cutoff.Format("2006-01-02")

	pastSum := make(map[string]float64)
	pastN := make(map[string]int)
	for i := range keys {
		if math.IsNaN(amounts[i]) || dates[i] > cut {
			continue
		}
		pastSum[keys[i]] += amounts[i]
		pastN[keys[i]]++
	}

	var premiums []Premium
	for i := range keys {
		if math.IsNaN(amounts[i]) || dates[i] <= cut {
			continue
		}
		n := pastN[keys[i]]
		if n == 0 {
			continue
		}
		pastMean := pastSum[keys[i]] / float64(n)
		if pastMean <= 0 {
			continue
		}
		premiums = append(premiums, Premium{
			Complex:     complexes[i],
			Date:        dates[i],
			Amount:      amounts[i],
			PastMean:    pastMean,
			Premium:     amounts[i] - pastMean,
			PremiumRate: (amounts[i] - pastMean) / pastMean * 100,
		})
	}
	sort.SliceStable(premiums, func(i, j int) bool { return premiums[i].Premium > premiums[j].Premium })
	return premiums
}

// groupKeys builds the composite key for each row plus the 단지명 column.
func groupKeys(df dataframe.DataFrame, key GroupKey) (keys, complexes []string) {
	complexes = df.Col(schema.ColComplex).Records()
	if key == GroupByComplex {
		return complexes, complexes
	}

	areas := df.Col(schema.ColArea).Float()
	var floors []string
	if key == GroupByComplexAreaFloor {
		floors = df.Col(schema.ColFloor).Records()
	}

	keys = make([]string, len(complexes))
	for i := range complexes {
		parts := []string{complexes[i], shortAreaBand(areas[i])}
		if floors != nil {
			parts = append(parts, shortFloorBand(floors[i]))
		}
		keys[i] = strings.Join(parts, "_")
	}
	return keys, complexes
}

func shortAreaBand(sqm float64) string {
	switch {
	case sqm < 60:
		return shortAreaBands[0]
	case sqm < 85:
		return shortAreaBands[1]
	case sqm < 102:
		return shortAreaBands[2]
	case sqm < 135:
		return shortAreaBands[3]
	default:
		return shortAreaBands[4]
	}
}

func shortFloorBand(raw string) string {
	n, ok := parseFloor(raw)
	if !ok {
		return shortFloorBands[4]
	}
	switch {
	case n <= 5:
		return shortFloorBands[0]
	case n <= 15:
		return shortFloorBands[1]
	case n <= 30:
		return shortFloorBands[2]
	default:
		return shortFloorBands[3]
	}
}

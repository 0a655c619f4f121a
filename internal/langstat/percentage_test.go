package langstat

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func totalsOf(pairs ...any) *Totals {
	t := NewTotals()
	for i := 0; i < len(pairs); i += 2 {
		t.Set(pairs[i].(string), int64(pairs[i+1].(int)))
	}
	return t
}

func sum(usages []Usage) float64 {
	s := 0.0
	for _, u := range usages {
		s += u.Percentage
	}
	return s
}

func TestCalcPercentage_TieKeepsInputOrder(t *testing.T) {
	got := CalcPercentage(totalsOf("A", 50, "B", 50))
	assert.Equal(t, []Usage{{"A", 50.0}, {"B", 50.0}}, got)

	got = CalcPercentage(totalsOf("B", 50, "A", 50))
	assert.Equal(t, []Usage{{"B", 50.0}, {"A", 50.0}}, got)
}

func TestCalcPercentage_Empty(t *testing.T) {
	got := CalcPercentage(NewTotals())
	require.NotNil(t, got)
	assert.Empty(t, got)

	assert.Empty(t, CalcPercentage(nil))
}

func TestCalcPercentage_ZeroTotal(t *testing.T) {
	got := CalcPercentage(totalsOf("Go", 0, "Rust", 0))
	assert.Equal(t, []Usage{{"Go", 0}, {"Rust", 0}}, got)
}

func TestCalcPercentage_OneToTwo(t *testing.T) {
	got := CalcPercentage(totalsOf("A", 1, "B", 2))
	assert.Equal(t, []Usage{{"B", 66.7}, {"A", 33.3}}, got)
	assert.InDelta(t, 100.0, sum(got), 1e-9)
}

func TestCalcPercentage_ThirdsAreNotRenormalized(t *testing.T) {
	got := CalcPercentage(totalsOf("A", 1, "B", 1, "C", 1))
	assert.Equal(t, []Usage{{"A", 33.3}, {"B", 33.3}, {"C", 33.3}}, got)
	assert.InDelta(t, 99.9, sum(got), 1e-9)
}

func TestCalcPercentage_SortsDescending(t *testing.T) {
	got := CalcPercentage(totalsOf("CSS", 10, "TypeScript", 70, "HTML", 20))
	require.Len(t, got, 3)
	assert.Equal(t, "TypeScript", got[0].Language)
	assert.Equal(t, "HTML", got[1].Language)
	assert.Equal(t, "CSS", got[2].Language)
}

func TestRound1_HalfAwayFromZero(t *testing.T) {
	tests := map[float64]float64{
		12.25:  12.3,
		12.24:  12.2,
		0.05:   0.1,
		99.95:  100.0,
		-0.25:  -0.3,
		33.333: 33.3,
	}
	for in, want := range tests {
		assert.InDelta(t, want, round1(in), 1e-9, "round1(%v)", in)
	}
}

func TestAdd_PreservesFirstSeenOrder(t *testing.T) {
	dst := NewTotals()
	Add(dst, totalsOf("Go", 100, "Shell", 5))
	Add(dst, totalsOf("TypeScript", 300, "Go", 50))
	Add(dst, nil)

	var keys []string
	for p := dst.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	assert.Equal(t, []string{"Go", "Shell", "TypeScript"}, keys)

	goBytes, _ := dst.Get("Go")
	assert.Equal(t, int64(150), goBytes)
}

func TestTotals_UnmarshalKeepsPayloadOrder(t *testing.T) {
	totals := NewTotals()
	require.NoError(t, json.Unmarshal([]byte(`{"Rust": 10, "Go": 10, "C": 10}`), totals))

	got := CalcPercentage(totals)
	assert.Equal(t, "Rust", got[0].Language)
	assert.Equal(t, "Go", got[1].Language)
	assert.Equal(t, "C", got[2].Language)
}

func TestUsageJSON(t *testing.T) {
	raw, err := json.Marshal(Usage{Language: "Go", Percentage: 42.5})
	require.NoError(t, err)
	assert.JSONEq(t, `{"language":"Go","percentage":42.5}`, string(raw))
}

package correlation

import (
	"testing"

	"github.com/lcalzada-xor/iotsec/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestSeverityRank(t *testing.T) {
	assert.Equal(t, 1, SeverityRank("CRITICAL"))
	assert.Equal(t, 2, SeverityRank("high"))
	assert.Equal(t, 3, SeverityRank(" Medium "))
	assert.Equal(t, 4, SeverityRank("low"))
	assert.Equal(t, 5, SeverityRank("none"))
	assert.Equal(t, 5, SeverityRank(""))
}

func TestRelevanceFilter_Gate(t *testing.T) {
	f := NewRelevanceFilter(nil, 0)

	records := []domain.VulnerabilityRecord{
		rec("A", "low", "Uses a DEFAULT PASSWORD for telnet"),
		rec("B", "high", "Buffer overflow in parser"),
		rec("C", "medium", "Unauthenticated API"),
		rec("D", "critical", "Denial of Service via malformed packet"),
		rec("E", "low", "Outdated firmware"),
		rec("F", "low", "Remote access over cloud relay"),
		rec("G", "low", "Unauthorized configuration change"),
	}

	gated := f.Gate(records)
	ids := make([]string, 0, len(gated))
	for _, r := range gated {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"A", "C", "D", "E", "F", "G"}, ids)

	assert.Empty(t, f.Gate([]domain.VulnerabilityRecord{rec("X", "high", "XSS in admin page")}))
	assert.Empty(t, f.Gate(nil))
}

func TestRelevanceFilter_RankIsStable(t *testing.T) {
	f := NewRelevanceFilter(nil, 0)
	records := []domain.VulnerabilityRecord{
		rec("1", "bogus", "firmware"),
		rec("2", "low", "firmware"),
		rec("3", "HIGH", "firmware"),
		rec("4", "critical", "firmware"),
		rec("5", "high", "firmware"),
	}

	ranked := f.Rank(records)
	var ids []string
	for _, r := range ranked {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"4", "3", "5", "2", "1"}, ids)
	assert.Equal(t, "1", records[0].ID, "input must not be reordered")
}

func TestRelevanceFilter_FilterVsUnranked(t *testing.T) {
	f := NewRelevanceFilter(nil, 3)
	records := []domain.VulnerabilityRecord{
		rec("L1", "low", "default password"),
		rec("L2", "low", "firmware"),
		rec("M1", "medium", "remote access"),
		rec("C1", "critical", "unauthenticated"),
		rec("N1", "high", "cross-site scripting"),
	}

	unranked := f.FilterUnranked(records)
	assert.Equal(t, []domain.VulnerabilityRecord{records[0], records[1], records[2]}, unranked)

	ranked := f.Filter(records)
	assert.Equal(t, []domain.VulnerabilityRecord{records[3], records[2], records[0]}, ranked)
}

func TestRelevanceFilter_Cap(t *testing.T) {
	f := NewRelevanceFilter([]string{"Bluetooth"}, 2)
	records := []domain.VulnerabilityRecord{
		rec("1", "low", "bluetooth pairing"),
		rec("2", "low", "BLUETOOTH spoofing"),
		rec("3", "low", "bluetooth"),
	}
	assert.Len(t, f.Cap(records), 2)
	assert.Len(t, f.Cap(records[:1]), 1)
	assert.Len(t, f.FilterUnranked(records), 2)
}

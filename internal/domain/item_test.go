package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusForVerdict(t *testing.T) {
	assert.Equal(t, StatusProfitable, StatusForVerdict(Verdict{InvestmentValue: RankS}))
	assert.Equal(t, StatusProfitable, StatusForVerdict(Verdict{InvestmentValue: RankA}))
	assert.Equal(t, StatusProfitable, StatusForVerdict(Verdict{InvestmentValue: RankB}))
	assert.Equal(t, StatusDiscarded, StatusForVerdict(Verdict{InvestmentValue: RankC}))
	assert.Equal(t, StatusDiscarded, StatusForVerdict(Verdict{InvestmentValue: "unknown"}))
}

func TestAlertable(t *testing.T) {
	assert.True(t, Alertable(Verdict{InvestmentValue: RankS}))
	assert.True(t, Alertable(Verdict{InvestmentValue: RankA}))
	assert.False(t, Alertable(Verdict{InvestmentValue: RankB}))
	assert.False(t, Alertable(Verdict{InvestmentValue: RankC}))
}

package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/smallbiznis/referralhub/internal/dashboard/domain"
	memberdomain "github.com/smallbiznis/referralhub/internal/member/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	doc, err := Render(Data{
		Title:       "referralhub",
		GeneratedAt: time.Date(2025, 5, 10, 9, 30, 0, 0, time.UTC),
		Overview: &domain.Overview{
			Members:     domain.MemberOverview{Total: 3, Active: 2, Inactive: 1},
			Indications: domain.IndicationOverview{Total: 3, Open: 1, InProgress: 1, Closed: 1, ConversionRate: 100, TotalGenerated: 10000},
			TopReferrers: []domain.Ranking{
				{Member: memberdomain.Summary{ID: 1, FullName: "Ana", Company: "Acme"}, Total: 3},
			},
		},
		Chart: &domain.Chart{
			LastSixMonths: []domain.MonthBucket{{Month: "mai", Period: "2025-05", Open: 1}},
		},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
}

func TestRenderRequiresData(t *testing.T) {
	_, err := Render(Data{})
	assert.Error(t, err)
}

func TestFormatMoney(t *testing.T) {
	cases := map[float64]string{
		0:         "R$ 0,00",
		10000:     "R$ 10.000,00",
		1234567.5: "R$ 1.234.567,50",
		999.999:   "R$ 1.000,00",
		-12.3:     "-R$ 12,30",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatMoney(in))
	}
}

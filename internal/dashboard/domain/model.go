package domain

import (
	"context"

	memberdomain "github.com/smallbiznis/referralhub/internal/member/domain"
	referraldomain "github.com/smallbiznis/referralhub/internal/referral/domain"
)

// MonthsWindow is the number of calendar months in the history chart,
// including the current one.
const MonthsWindow = 6

type MemberOverview struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"ativos"`
	Inactive int64 `json:"inativos"`
}

type IndicationOverview struct {
	Total          int64   `json:"total"`
	Open           int64   `json:"abertas"`
	InProgress     int64   `json:"emAndamento"`
	Closed         int64   `json:"fechadas"`
	Lost           int64   `json:"perdidas"`
	ConversionRate float64 `json:"taxaConversao"`
	TotalGenerated float64 `json:"valorTotalGerado"`
}

type Ranking struct {
	Member memberdomain.Summary `json:"membro"`
	Total  int64                `json:"totalIndicacoes"`
}

type Overview struct {
	Members                 MemberOverview     `json:"membros"`
	Indications             IndicationOverview `json:"indicacoes"`
	CurrentMonthIndications int64              `json:"indicacoesMesAtual"`
	CurrentMonthThanks      int64              `json:"obrigadosMesAtual"`
	TopReferrers            []Ranking          `json:"topMembrosIndicadores"`
	TopReferred             []Ranking          `json:"topMembrosIndicados"`
}

type StatusCount struct {
	Status referraldomain.Status `json:"status"`
	Count  int64                 `json:"quantidade"`
}

// MonthBucket counts the indications opened in one calendar month. In
// progress indications are not part of this breakdown.
type MonthBucket struct {
	Month  string `json:"mes"`
	Period string `json:"periodo"`
	Open   int64  `json:"abertas"`
	Closed int64  `json:"fechadas"`
	Lost   int64  `json:"perdidas"`
}

type Chart struct {
	ByStatus      []StatusCount `json:"porStatus"`
	LastSixMonths []MonthBucket `json:"ultimos6Meses"`
}

// Service is read-only. Every call recomputes from the store and the
// queries of one call are not isolated from concurrent writes.
type Service interface {
	Overview(ctx context.Context) (*Overview, error)
	CurrentMonthIndications(ctx context.Context) (int64, error)
	CurrentMonthThanks(ctx context.Context) (int64, error)
	TopReferrers(ctx context.Context, n int) ([]Ranking, error)
	TopReferred(ctx context.Context, n int) ([]Ranking, error)
	ByStatus(ctx context.Context) ([]StatusCount, error)
	LastSixMonths(ctx context.Context) ([]MonthBucket, error)
	Chart(ctx context.Context) (*Chart, error)
	Report(ctx context.Context) ([]byte, error)
}

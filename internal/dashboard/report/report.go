// Package report renders the dashboard as a PDF document.
package report

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/smallbiznis/referralhub/internal/dashboard/domain"
)

type Data struct {
	Title       string
	GeneratedAt time.Time
	Overview    *domain.Overview
	Chart       *domain.Chart
}

var (
	headerText = props.Text{Style: fontstyle.Bold, Size: 9}
	cellText   = props.Text{Size: 9}
	numberText = props.Text{Size: 9, Align: align.Right}
	numberHead = props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}
)

func Render(data Data) ([]byte, error) {
	if data.Overview == nil || data.Chart == nil {
		return nil, errors.New("report: overview and chart are required")
	}
	title := strings.TrimSpace(data.Title)
	if title == "" {
		title = "referralhub"
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Página {current} de {total}",
			Place:   props.RightBottom,
		}).
		Build()
	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, title+" - Relatório do painel", props.Text{
			Size:  16,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)
	m.AddRow(8,
		text.NewCol(12, "Gerado em "+data.GeneratedAt.Format("02/01/2006 15:04 MST"), props.Text{Size: 8}),
	)

	ov := data.Overview
	section(m, "Membros")
	pair(m, "Total", fmt.Sprintf("%d", ov.Members.Total))
	pair(m, "Ativos", fmt.Sprintf("%d", ov.Members.Active))
	pair(m, "Inativos", fmt.Sprintf("%d", ov.Members.Inactive))

	section(m, "Indicações")
	pair(m, "Total", fmt.Sprintf("%d", ov.Indications.Total))
	pair(m, "Abertas", fmt.Sprintf("%d", ov.Indications.Open))
	pair(m, "Em andamento", fmt.Sprintf("%d", ov.Indications.InProgress))
	pair(m, "Fechadas", fmt.Sprintf("%d", ov.Indications.Closed))
	pair(m, "Perdidas", fmt.Sprintf("%d", ov.Indications.Lost))
	pair(m, "Taxa de conversão", fmt.Sprintf("%.2f%%", ov.Indications.ConversionRate))
	pair(m, "Valor total gerado", formatMoney(ov.Indications.TotalGenerated))
	pair(m, "Indicações no mês", fmt.Sprintf("%d", ov.CurrentMonthIndications))
	pair(m, "Obrigados no mês", fmt.Sprintf("%d", ov.CurrentMonthThanks))

	ranking(m, "Top membros indicadores", ov.TopReferrers)
	ranking(m, "Top membros indicados", ov.TopReferred)

	section(m, "Últimos 6 meses")
	m.AddRow(7,
		text.NewCol(3, "Mês", headerText),
		text.NewCol(3, "Abertas", numberHead),
		text.NewCol(3, "Fechadas", numberHead),
		text.NewCol(3, "Perdidas", numberHead),
	)
	for _, b := range data.Chart.LastSixMonths {
		m.AddRow(6,
			text.NewCol(3, b.Month+"/"+b.Period[:4], cellText),
			text.NewCol(3, fmt.Sprintf("%d", b.Open), numberText),
			text.NewCol(3, fmt.Sprintf("%d", b.Closed), numberText),
			text.NewCol(3, fmt.Sprintf("%d", b.Lost), numberText),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

func section(m core.Maroto, title string) {
	m.AddRow(12, text.NewCol(12, title, props.Text{Size: 12, Style: fontstyle.Bold, Top: 4}))
}

func pair(m core.Maroto, label, value string) {
	m.AddRow(6,
		text.NewCol(6, label, cellText),
		col.New(2),
		text.NewCol(4, value, numberText),
	)
}

func ranking(m core.Maroto, title string, rows []domain.Ranking) {
	section(m, title)
	if len(rows) == 0 {
		m.AddRow(6, text.NewCol(12, "Sem indicações registradas", cellText))
		return
	}
	m.AddRow(7,
		text.NewCol(1, "#", headerText),
		text.NewCol(5, "Membro", headerText),
		text.NewCol(4, "Empresa", headerText),
		text.NewCol(2, "Indicações", numberHead),
	)
	for i, r := range rows {
		m.AddRow(6,
			text.NewCol(1, fmt.Sprintf("%d", i+1), cellText),
			text.NewCol(5, r.Member.FullName, cellText),
			text.NewCol(4, r.Member.Company, cellText),
			text.NewCol(2, fmt.Sprintf("%d", r.Total), numberText),
		)
	}
}

// formatMoney renders a BRL amount as "R$ 1.234,56".
func formatMoney(v float64) string {
	cents := int64(math.Round(v * 100))
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	whole := fmt.Sprintf("%d", cents/100)
	var grouped strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(r)
	}
	return fmt.Sprintf("%sR$ %s,%02d", sign, grouped.String(), cents%100)
}

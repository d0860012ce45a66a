package service

import (
	"context"
	"math"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/referralhub/internal/clock"
	"github.com/smallbiznis/referralhub/internal/config"
	"github.com/smallbiznis/referralhub/internal/dashboard/domain"
	"github.com/smallbiznis/referralhub/internal/dashboard/report"
	memberdomain "github.com/smallbiznis/referralhub/internal/member/domain"
	referraldomain "github.com/smallbiznis/referralhub/internal/referral/domain"
	"github.com/smallbiznis/referralhub/pkg/apperror"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var monthLabels = [...]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Clock      clock.Clock
	Config     config.Config
	Settings   *config.DashboardConfigHolder `optional:"true"`
	MemberRepo memberdomain.Repository
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	clock      clock.Clock
	loc        *time.Location
	appName    string
	settings   *config.DashboardConfigHolder
	memberRepo memberdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("dashboard.service"),
		clock:      p.Clock,
		loc:        p.Config.Location(),
		appName:    p.Config.AppName,
		settings:   p.Settings,
		memberRepo: p.MemberRepo,
	}
}

func (s *Service) Overview(ctx context.Context) (*domain.Overview, error) {
	members, err := s.memberOverview(ctx)
	if err != nil {
		return nil, err
	}
	indications, err := s.indicationOverview(ctx)
	if err != nil {
		return nil, err
	}
	monthIndications, err := s.CurrentMonthIndications(ctx)
	if err != nil {
		return nil, err
	}
	monthThanks, err := s.CurrentMonthThanks(ctx)
	if err != nil {
		return nil, err
	}

	limit := s.settings.Get().TopLimit
	topReferrers, err := s.TopReferrers(ctx, limit)
	if err != nil {
		return nil, err
	}
	topReferred, err := s.TopReferred(ctx, limit)
	if err != nil {
		return nil, err
	}

	return &domain.Overview{
		Members:                 members,
		Indications:             indications,
		CurrentMonthIndications: monthIndications,
		CurrentMonthThanks:      monthThanks,
		TopReferrers:            topReferrers,
		TopReferred:             topReferred,
	}, nil
}

func (s *Service) memberOverview(ctx context.Context) (domain.MemberOverview, error) {
	var out domain.MemberOverview
	db := s.db.WithContext(ctx)
	if err := db.Model(&memberdomain.Member{}).Count(&out.Total).Error; err != nil {
		return out, apperror.Internal(err)
	}
	if err := db.Model(&memberdomain.Member{}).Where("status = ?", memberdomain.StatusActive).Count(&out.Active).Error; err != nil {
		return out, apperror.Internal(err)
	}
	out.Inactive = out.Total - out.Active
	return out, nil
}

func (s *Service) indicationOverview(ctx context.Context) (domain.IndicationOverview, error) {
	var out domain.IndicationOverview
	db := s.db.WithContext(ctx)
	if err := db.Model(&referraldomain.Indication{}).Count(&out.Total).Error; err != nil {
		return out, apperror.Internal(err)
	}

	counts, err := s.countByStatus(ctx, nil)
	if err != nil {
		return out, err
	}
	out.Open = counts[referraldomain.StatusOpen]
	out.InProgress = counts[referraldomain.StatusInProgress]
	out.Closed = counts[referraldomain.StatusClosed]
	out.Lost = counts[referraldomain.StatusLost]
	out.ConversionRate = conversionRate(out.Closed, out.Lost)

	var generated float64
	err = db.Model(&referraldomain.Indication{}).
		Select("COALESCE(SUM(closed_value), 0)").
		Where("status = ?", referraldomain.StatusClosed).
		Row().
		Scan(&generated)
	if err != nil {
		return out, apperror.Internal(err)
	}
	out.TotalGenerated = generated
	return out, nil
}

// conversionRate is closed / (closed + lost) as a percentage with two
// decimals, and 0 when nothing was finalized.
func conversionRate(closed, lost int64) float64 {
	finalized := closed + lost
	if finalized == 0 {
		return 0
	}
	rate := float64(closed) / float64(finalized) * 100
	return math.Round(rate*100) / 100
}

func (s *Service) CurrentMonthIndications(ctx context.Context) (int64, error) {
	return s.countSinceMonthStart(ctx, &referraldomain.Indication{}, "referred_at")
}

func (s *Service) CurrentMonthThanks(ctx context.Context) (int64, error) {
	return s.countSinceMonthStart(ctx, &referraldomain.Thanks{}, "thanked_at")
}

// countSinceMonthStart counts rows with column in [first instant of the
// current local month, now).
func (s *Service) countSinceMonthStart(ctx context.Context, model any, column string) (int64, error) {
	now := s.clock.Now().In(s.loc)
	start := monthStart(now, 0)

	var count int64
	err := s.db.WithContext(ctx).
		Model(model).
		Where(column+" >= ? AND "+column+" < ?", start.UTC(), now.UTC()).
		Count(&count).Error
	if err != nil {
		return 0, apperror.Internal(err)
	}
	return count, nil
}

func (s *Service) TopReferrers(ctx context.Context, n int) ([]domain.Ranking, error) {
	return s.top(ctx, "referrer_id", n)
}

func (s *Service) TopReferred(ctx context.Context, n int) ([]domain.Ranking, error) {
	return s.top(ctx, "referred_id", n)
}

type rankRow struct {
	MemberID snowflake.ID `gorm:"column:member_id"`
	Total    int64        `gorm:"column:total"`
}

// top ranks members by indication count on column. Ties go to the lower
// member id.
func (s *Service) top(ctx context.Context, column string, n int) ([]domain.Ranking, error) {
	if n <= 0 {
		n = config.DefaultDashboardTopLimit
	}

	var rows []rankRow
	err := s.db.WithContext(ctx).
		Model(&referraldomain.Indication{}).
		Select(column + " AS member_id, COUNT(*) AS total").
		Group(column).
		Order("total DESC, member_id ASC").
		Limit(n).
		Scan(&rows).Error
	if err != nil {
		return nil, apperror.Internal(err)
	}

	ids := make([]snowflake.ID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.MemberID)
	}
	members, err := s.memberRepo.FindByIDs(ctx, s.db, ids)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	byID := make(map[snowflake.ID]memberdomain.Member, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}

	out := make([]domain.Ranking, 0, len(rows))
	for _, row := range rows {
		m, ok := byID[row.MemberID]
		if !ok {
			s.log.Warn("ranked member missing", zap.String("member_id", row.MemberID.String()))
			continue
		}
		out = append(out, domain.Ranking{Member: m.Summary(), Total: row.Total})
	}
	return out, nil
}

// ByStatus lists only the statuses that occur, in lifecycle order.
func (s *Service) ByStatus(ctx context.Context) ([]domain.StatusCount, error) {
	counts, err := s.countByStatus(ctx, nil)
	if err != nil {
		return nil, err
	}
	out := make([]domain.StatusCount, 0, len(counts))
	for _, status := range referraldomain.Statuses {
		if n := counts[status]; n > 0 {
			out = append(out, domain.StatusCount{Status: status, Count: n})
		}
	}
	return out, nil
}

type statusRow struct {
	Status referraldomain.Status `gorm:"column:status"`
	Total  int64                 `gorm:"column:total"`
}

type window struct {
	from, to time.Time
}

func (s *Service) countByStatus(ctx context.Context, w *window) (map[referraldomain.Status]int64, error) {
	stmt := s.db.WithContext(ctx).
		Model(&referraldomain.Indication{}).
		Select("status, COUNT(*) AS total")
	if w != nil {
		stmt = stmt.Where("referred_at >= ? AND referred_at < ?", w.from.UTC(), w.to.UTC())
	}

	var rows []statusRow
	if err := stmt.Group("status").Scan(&rows).Error; err != nil {
		return nil, apperror.Internal(err)
	}
	counts := make(map[referraldomain.Status]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

// LastSixMonths returns one bucket per calendar month, oldest first, ending
// with the current month. Months are local to the configured time zone.
func (s *Service) LastSixMonths(ctx context.Context) ([]domain.MonthBucket, error) {
	now := s.clock.Now().In(s.loc)

	out := make([]domain.MonthBucket, 0, domain.MonthsWindow)
	for offset := domain.MonthsWindow - 1; offset >= 0; offset-- {
		start := monthStart(now, offset)
		end := start.AddDate(0, 1, 0)

		counts, err := s.countByStatus(ctx, &window{from: start, to: end})
		if err != nil {
			return nil, err
		}
		out = append(out, domain.MonthBucket{
			Month:  monthLabels[start.Month()-1],
			Period: start.Format("2006-01"),
			Open:   counts[referraldomain.StatusOpen],
			Closed: counts[referraldomain.StatusClosed],
			Lost:   counts[referraldomain.StatusLost],
		})
	}
	return out, nil
}

func (s *Service) Chart(ctx context.Context) (*domain.Chart, error) {
	byStatus, err := s.ByStatus(ctx)
	if err != nil {
		return nil, err
	}
	months, err := s.LastSixMonths(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.Chart{ByStatus: byStatus, LastSixMonths: months}, nil
}

func (s *Service) Report(ctx context.Context) ([]byte, error) {
	overview, err := s.Overview(ctx)
	if err != nil {
		return nil, err
	}
	chart, err := s.Chart(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := report.Render(report.Data{
		Title:       s.appName,
		GeneratedAt: s.clock.Now().In(s.loc),
		Overview:    overview,
		Chart:       chart,
	})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return doc, nil
}

// monthStart returns the first instant of the month monthsBack months before
// t, in t's location.
func monthStart(t time.Time, monthsBack int) time.Time {
	return time.Date(t.Year(), t.Month()-time.Month(monthsBack), 1, 0, 0, 0, 0, t.Location())
}

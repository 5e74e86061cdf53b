// Package dashboard computes the admin dashboard figures: today against
// yesterday for revenue, orders, customers and visitors, plus the revenue of
// the trailing seven days.
package dashboard

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type Metric struct {
	Value         float64 `json:"value"`
	PercentChange float64 `json:"percentChange"`
}

type DailySample struct {
	Name    string  `json:"name"`
	Revenue float64 `json:"revenue"`
}

// Stats is the body of GET /api/dashboard-stats.
// swagger:model DashboardStats
type Stats struct {
	Revenue     Metric        `json:"revenue"`
	Orders      Metric        `json:"orders"`
	Customers   Metric        `json:"customers"`
	Visitors    Metric        `json:"visitors"`
	WeeklySales []DailySample `json:"weeklySales"`
}

// Source answers the aggregate queries over [from, to).
type Source interface {
	Revenue(ctx context.Context, from, to time.Time, status string) (decimal.Decimal, error)
	NewOrders(ctx context.Context, from, to time.Time) (int64, error)
	NewCustomers(ctx context.Context, from, to time.Time) (int64, error)
	Visitors(ctx context.Context, from, to time.Time) (int64, error)
}

// PercentChange is (current-previous)/previous*100. With no previous value it
// is 100 when there is something now and 0 otherwise.
func PercentChange(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return (current - previous) / previous * 100
}

type Aggregator struct {
	Source          Source
	CompletedStatus string
	Now             func() time.Time
	Location        *time.Location
}

// Compute runs every query concurrently against one clock reading. The first
// failing query cancels the rest and no figures are returned.
func (a *Aggregator) Compute(ctx context.Context) (*Stats, error) {
	loc := a.Location
	if loc == nil {
		loc = time.Local
	}
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	today := dayStart(now().In(loc))
	yesterday := today.AddDate(0, 0, -1)
	tomorrow := today.AddDate(0, 0, 1)

	var (
		revToday, revYesterday decimal.Decimal
		ordToday, ordYesterday int64
		cusToday, cusYesterday int64
		visToday, visYesterday int64
		weekly                 [7]decimal.Decimal
	)

	g, ctx := errgroup.WithContext(ctx)
	revenue := func(dst *decimal.Decimal, from, to time.Time) {
		g.Go(func() error {
			v, err := a.Source.Revenue(ctx, from, to, a.CompletedStatus)
			*dst = v
			return err
		})
	}
	count := func(dst *int64, q func(context.Context, time.Time, time.Time) (int64, error), from, to time.Time) {
		g.Go(func() error {
			v, err := q(ctx, from, to)
			*dst = v
			return err
		})
	}

	revenue(&revToday, today, tomorrow)
	revenue(&revYesterday, yesterday, today)
	count(&ordToday, a.Source.NewOrders, today, tomorrow)
	count(&ordYesterday, a.Source.NewOrders, yesterday, today)
	count(&cusToday, a.Source.NewCustomers, today, tomorrow)
	count(&cusYesterday, a.Source.NewCustomers, yesterday, today)
	count(&visToday, a.Source.Visitors, today, tomorrow)
	count(&visYesterday, a.Source.Visitors, yesterday, today)

	days := WeekDays(today)
	for i, d := range days {
		revenue(&weekly[i], d, d.AddDate(0, 0, 1))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	st := &Stats{
		Revenue:     metric(revToday.InexactFloat64(), revYesterday.InexactFloat64()),
		Orders:      metric(float64(ordToday), float64(ordYesterday)),
		Customers:   metric(float64(cusToday), float64(cusYesterday)),
		Visitors:    metric(float64(visToday), float64(visYesterday)),
		WeeklySales: make([]DailySample, 0, len(days)),
	}
	for i, d := range days {
		st.WeeklySales = append(st.WeeklySales, DailySample{
			Name:    d.Weekday().String()[:3],
			Revenue: weekly[i].InexactFloat64(),
		})
	}
	return st, nil
}

// WeekDays returns the starts of the seven days ending with today, oldest first.
func WeekDays(today time.Time) []time.Time {
	out := make([]time.Time, 7)
	for i := range out {
		out[i] = today.AddDate(0, 0, i-6)
	}
	return out
}

func metric(current, previous float64) Metric {
	return Metric{Value: current, PercentChange: PercentChange(current, previous)}
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/pegasusmrx/store-backend/internal/store"
)

type StatsHandler struct {
	Store *store.Store
}

func NewStatsHandler(s *store.Store) *StatsHandler {
	return &StatsHandler{Store: s}
}

type chartPoint struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func orderDate(o store.Order) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, o.Date)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func orderTotal(o store.Order) decimal.Decimal {
	v, err := decimal.NewFromString(o.Total)
	if err != nil {
		return decimal.Zero
	}
	return v
}

// Get computes the dashboard numbers: completed revenue, month-over-month
// growth, today's order count, and seven-day revenue/order charts.
func (h *StatsHandler) Get(c *fiber.Ctx) error {
	var doc *store.Document
	err := h.Store.View(func(d *store.Document) error {
		doc = d
		return nil
	})
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to calculate statistics")
	}
	return ok(c, computeStats(doc, time.Now()))
}

func computeStats(doc *store.Document, now time.Time) fiber.Map {
	curYear, curMonth, _ := now.Date()
	// Step back from the first of the month, not from now: AddDate on day 31
	// normalizes through short months and lands back in the current one.
	firstOfMonth := time.Date(curYear, curMonth, 1, 0, 0, 0, 0, now.Location())
	lastYear, lastMonth, _ := firstOfMonth.AddDate(0, -1, 0).Date()

	totalRevenue := decimal.Zero
	currentMonthRevenue := decimal.Zero
	lastMonthRevenue := decimal.Zero
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	newOrdersToday := 0

	for _, o := range doc.Orders {
		d, dok := orderDate(o)
		if dok && !d.Before(todayStart) {
			newOrdersToday++
		}
		if o.Status != store.StatusCompleted {
			continue
		}
		total := orderTotal(o)
		totalRevenue = totalRevenue.Add(total)
		if !dok {
			continue
		}
		y, m, _ := d.Date()
		if y == curYear && m == curMonth {
			currentMonthRevenue = currentMonthRevenue.Add(total)
		}
		if y == lastYear && m == lastMonth {
			lastMonthRevenue = lastMonthRevenue.Add(total)
		}
	}

	growth := decimal.Zero
	switch {
	case lastMonthRevenue.IsPositive():
		growth = currentMonthRevenue.Sub(lastMonthRevenue).
			Div(lastMonthRevenue).Mul(decimal.NewFromInt(100))
	case currentMonthRevenue.IsPositive():
		growth = decimal.NewFromInt(100)
	}

	revenueChart := make([]chartPoint, 0, 7)
	ordersChart := make([]chartPoint, 0, 7)
	for i := 6; i >= 0; i-- {
		dayStart := todayStart.AddDate(0, 0, -i)
		dayEnd := dayStart.AddDate(0, 0, 1)
		label := dayStart.Format("Jan 2")

		dayRevenue := decimal.Zero
		dayOrders := 0
		for _, o := range doc.Orders {
			d, dok := orderDate(o)
			if !dok || d.Before(dayStart) || !d.Before(dayEnd) {
				continue
			}
			dayOrders++
			if o.Status == store.StatusCompleted {
				dayRevenue = dayRevenue.Add(orderTotal(o))
			}
		}
		revenueChart = append(revenueChart, chartPoint{Name: label, Value: dayRevenue.StringFixed(2)})
		ordersChart = append(ordersChart, chartPoint{Name: label, Value: fmt.Sprintf("%d", dayOrders)})
	}

	sign := "+"
	if growth.IsNegative() {
		sign = ""
	}

	return fiber.Map{
		"revenue":  "$" + totalRevenue.StringFixed(2),
		"orders":   len(doc.Orders),
		"products": len(doc.Products),
		"balance":  "$" + totalRevenue.StringFixed(2),

		"revenueTrend":   fmt.Sprintf("%s%s%% from last month", sign, growth.StringFixed(0)),
		"ordersTrend":    fmt.Sprintf("+%d new today", newOrdersToday),
		"revenueTrendUp": !growth.IsNegative(),
		"ordersTrendUp":  newOrdersToday > 0,

		"chartData":       revenueChart,
		"ordersChartData": ordersChart,

		"salesCount":   doc.Profile.SalesCount,
		"reviewsCount": len(doc.Reviews),
	}
}

// Finance returns the whole document for the admin finance view.
func (h *StatsHandler) Finance(c *fiber.Ctx) error {
	var doc *store.Document
	err := h.Store.View(func(d *store.Document) error {
		doc = d
		return nil
	})
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to load finance data")
	}
	return ok(c, doc)
}

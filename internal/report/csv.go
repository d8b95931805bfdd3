package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/resellhub/storefront/internal/models"
)

// Exports quote every field, double embedded quotes and join rows with CRLF,
// header row first. encoding/csv only quotes when it has to, so the exact
// format is written by hand here.

func AccountsCSV(accts []models.Account) string {
	rows := make([][]string, 0, len(accts))
	for _, a := range accts {
		rows = append(rows, []string{
			a.DisplayName(),
			a.Email,
			string(a.Role),
			dateOrDash(a.CreatedAt),
		})
	}
	return writeCSV([]string{"Name", "Email", "Role", "Registered"}, rows)
}

// OrdersCSV is the admin-side export. The status column is the literal
// "Completed" for every row, matching the report consumers downstream.
func OrdersCSV(orders []models.Order) string {
	rows := make([][]string, 0, len(orders))
	for _, o := range orders {
		user := o.Name
		if user == "" {
			user = o.UserID
		}
		rows = append(rows, []string{
			o.ID,
			user,
			fixed2(o.Total),
			dateOrDash(o.CreatedAt),
			"Completed",
			productsCell(o.Items),
		})
	}
	return writeCSV([]string{"Order ID", "User", "Total (£)", "Date", "Status", "Products"}, rows)
}

// HistoryCSV is the self-service order-history export.
func HistoryCSV(orders []models.Order) string {
	rows := make([][]string, 0, len(orders))
	for _, o := range orders {
		status := o.Status
		if status == "" {
			status = models.OrderStatusPending
		}
		rows = append(rows, []string{
			o.ID,
			dateOrDash(o.CreatedAt),
			fixed2(o.Total),
			string(status),
			productsCell(o.Items),
		})
	}
	return writeCSV([]string{"Order ID", "Date", "Total (£)", "Status", "Products"}, rows)
}

func productsCell(items []models.CartItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, fmt.Sprintf("%s (x%d)", it.Name, it.Quantity))
	}
	return strings.Join(parts, "; ")
}

func dateOrDash(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02")
}

func fixed2(s string) string {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return s
	}
	return d.StringFixed(2)
}

func writeCSV(header []string, rows [][]string) string {
	var b strings.Builder
	writeRow(&b, header)
	for _, row := range rows {
		b.WriteString("\r\n")
		writeRow(&b, row)
	}
	return b.String()
}

func writeRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
}

package report

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/moznion/go-optional"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	totalStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
)

var columns = []string{
	"Name", "Code", "NAV", "Unit Cost", "Share", "Value",
	"Purchase", "Bottleneck", "Cost", "Output", "Earn", "Rate %",
}

// RenderTable renders rows as a bordered text table. The total row is bold.
func RenderTable(rows []Row) string {
	body := make([][]string, 0, len(rows))
	for _, r := range rows {
		body = append(body, []string{
			r.Name,
			r.Code,
			optionalCell(r.NetValue, "%.4f"),
			optionalCell(r.UnitCost, "%.4f"),
			optionalCell(r.Share, "%.2f"),
			fmt.Sprintf("%.2f", r.CurrentValue),
			fmt.Sprintf("%.2f", r.Purchase),
			fmt.Sprintf("%.2f", r.Bottleneck),
			fmt.Sprintf("%.2f", r.CostAmount),
			fmt.Sprintf("%.2f", r.Output),
			fmt.Sprintf("%.2f", r.Earn),
			fmt.Sprintf("%.4f", r.Rate),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers(columns...).
		Rows(body...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row >= 0 && row < len(rows) && rows[row].Code == TotalCode:
				return totalStyle
			default:
				return cellStyle
			}
		})

	return t.String()
}

func optionalCell(v optional.Option[float64], format string) string {
	value, err := v.Take()
	if err != nil {
		return "-"
	}

	return fmt.Sprintf(format, value)
}

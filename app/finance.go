package app

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"

	"github.com/radum/pontaj/finance"
	"github.com/radum/pontaj/internal/ui"
)

func euro(v float64) string {
	return fmt.Sprintf("%.2f €", v)
}

// printFinance renders the projection tables and the earned-so-far line.
func printFinance(b finance.Breakdown, grossEarned, netEarned float64) {
	ui.PrintTable([][]string{
		{"", "HOURLY", "DAILY", "WEEKLY", "MONTHLY", "YEARLY"},
		{
			"GROSS",
			euro(b.Gross.Hourly),
			euro(b.Gross.Daily),
			euro(b.Gross.Weekly),
			euro(b.Gross.Monthly),
			euro(b.Gross.Yearly),
		},
		{
			ui.Green("NET"),
			ui.Green(euro(b.Net.Hourly)),
			ui.Green(euro(b.Net.Daily)),
			ui.Green(euro(b.Net.Weekly)),
			ui.Green(euro(b.Net.Monthly)),
			ui.Green(euro(b.Net.Yearly)),
		},
	}, os.Stdout)

	ui.PrintTable([][]string{
		{"YEARLY TAXES", ""},
		{"Income tax", euro(b.Taxes.IncomeTax)},
		{"Social contributions", euro(b.Taxes.SocialContributions)},
		{"Solidarity surcharge", euro(b.Taxes.SolidaritySurcharge)},
		{"Total", ui.Yellow(euro(b.Taxes.Total))},
	}, os.Stdout)

	pterm.Printfln(
		"Earned so far: %s gross, %s net",
		ui.Highlight(euro(grossEarned)),
		ui.Green(euro(netEarned)),
	)
}

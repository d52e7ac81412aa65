package handler

import (
	"fmt"
	"strings"

	"pricetrack/internal/domain/service/series"
)

const startMessage = `<b>pricetrack</b>

/latest - newest price of the primary source
/sources - points and price range per source
/scan [sourceId...] - read marketplace listings now`

func formatLatest(r series.Report) string {
	p := r.PrimaryLatest
	if p == nil {
		return "The series has no sale price from the primary source."
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "<b>%s</b>\n", escape(r.Document.Product.Name))
	fmt.Fprintf(&sb, "%s: %s %s", p.Date, p.Display.Amount.StringFixed(2), p.Display.Currency)

	if p.Display.FX != nil {
		fmt.Fprintf(&sb, " (%s)", escape(p.Price.String()))
	}

	if r.AllTimeLow {
		sb.WriteString("\nAll-time low.")
	}

	return sb.String()
}

func formatSources(r series.Report) string {
	if len(r.Summaries) == 0 {
		return "The series is empty."
	}

	var sb strings.Builder

	sb.WriteString("<b>Sources</b>")

	for _, s := range r.Summaries {
		fmt.Fprintf(&sb, "\n%s: %d points, %s to %s, latest %s on %s",
			escape(s.SourceID),
			s.Points,
			s.Min.StringFixed(2),
			s.Max.StringFixed(2),
			s.Latest.StringFixed(2),
			s.LatestDate,
		)
	}

	return sb.String()
}

// commandArgs drops the command itself, "/scan@bot ebay kijiji" gives
// [ebay kijiji].
func commandArgs(text string) []string {
	fields := strings.Fields(text)
	if len(fields) < 2 { //nolint:mnd // skip
		return nil
	}

	return fields[1:]
}

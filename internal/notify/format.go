package notify

import (
	"fmt"
	"strings"

	"DeBrief/internal/domain/models"
)

// Format renders an alert as chat text.
func Format(a *models.Alert) string {
	var b strings.Builder
	switch a.Kind {
	case models.AlertNews:
		if a.Breaking {
			fmt.Fprintf(&b, "🚨 [BREAKING] %s\n📰 %s", a.Symbol, a.Title)
		} else {
			fmt.Fprintf(&b, "📰 [%s] %s", a.Symbol, a.Title)
		}
	case models.AlertFiling:
		prefix := "📄"
		if a.Breaking {
			prefix = "🚨📄"
		}
		fmt.Fprintf(&b, "%s [%s filing] %s", prefix, a.Symbol, a.Title)
	case models.AlertPriceMove:
		emoji := "🚀"
		if a.Value < 0 {
			emoji = "📉"
		}
		fmt.Fprintf(&b, "[%s] %s %+.2f%%", a.Symbol, emoji, a.Value)
	case models.AlertRSI:
		emoji := "🔥"
		if a.Value <= 50 {
			emoji = "💧"
		}
		fmt.Fprintf(&b, "[%s] %s %s (%.1f)", a.Symbol, emoji, a.Title, a.Value)
	case models.AlertDigest:
		b.WriteString(a.Title)
	default:
		fmt.Fprintf(&b, "[%s] 📊 %s", a.Symbol, a.Title)
	}
	if a.Body != "" {
		b.WriteString("\n")
		b.WriteString(a.Body)
	}
	if a.Link != "" {
		b.WriteString("\n")
		b.WriteString(a.Link)
	}
	return b.String()
}

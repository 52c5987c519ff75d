package qualify

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// dollars formats whole-dollar amounts with digit grouping.
func dollars(v float64) string {
	return printer.Sprintf("$%.0f", v)
}

// count formats thresholds that are whole numbers in practice.
func count(v float64) string {
	return printer.Sprintf("%.0f", v)
}

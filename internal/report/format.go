package report

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NA is rendered for any field no provider supplied.
const NA = "N/A"

var printer = message.NewPrinter(language.BritishEnglish)

var minorUnits = map[string]string{
	money.GBP: "p",
	money.USD: "¢",
	money.EUR: "c",
}

// GroupInt renders n with thousands separators.
func GroupInt(n int64) string {
	return printer.Sprintf("%d", n)
}

// GroupNull renders a rounded, grouped value or N/A.
func GroupNull(d decimal.NullDecimal) string {
	if !d.Valid {
		return NA
	}
	return GroupInt(d.Decimal.Round(0).IntPart())
}

// SignedPercent renders a percentage with an explicit sign and two decimals.
func SignedPercent(d decimal.Decimal) string {
	s := d.StringFixed(2)
	if !strings.HasPrefix(s, "-") {
		s = "+" + s
	}
	return s + "%"
}

// Money renders an amount in major units, e.g. £1,234.50.
func Money(major decimal.Decimal, code string) string {
	cur := money.GetCurrency(code)
	if cur == nil {
		return major.StringFixed(2) + " " + code
	}
	scale := decimal.New(1, int32(cur.Fraction))
	minor := major.Mul(scale).Round(0).IntPart()
	return money.New(minor, cur.Code).Display()
}

// Symbol returns the currency grapheme, or the code followed by a space.
func Symbol(code string) string {
	if cur := money.GetCurrency(code); cur != nil && cur.Grapheme != "" {
		return cur.Grapheme
	}
	return code + " "
}

func (b *Builder) minor(d decimal.Decimal) string {
	if unit, ok := minorUnits[b.Currency]; ok {
		return d.StringFixed(2) + unit
	}
	return d.StringFixed(2)
}

var markdownEscaper = strings.NewReplacer(
	"_", `\_`,
	"*", `\*`,
	"`", "\\`",
	"[", `\[`,
)

// EscapeMarkdown escapes the characters Telegram's legacy Markdown mode treats as entities.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

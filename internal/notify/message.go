package notify

import (
	"fmt"
	"html"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/mmeshcher/puntodeagua/internal/model"
	"github.com/mmeshcher/puntodeagua/internal/validation"
)

const timestampLayout = "02/01/2006 15:04"

var currencyPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatUSD форматирует сумму в долларах США с разделителями разрядов: $1,234.50.
func FormatUSD(amount float64) string {
	return currencyPrinter.Sprintf("$%.2f", amount)
}

// FormatOrderMessage строит HTML-сообщение о новом заказе.
// Строки с нулевым количеством бутылей, банк и референс без значения опускаются.
func FormatOrderMessage(o model.Order, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}

	var b strings.Builder

	b.WriteString("<b>💧 Nuevo Pedido de Botellones 💧</b>\n\n")
	fmt.Fprintf(&b, "<b>👤 Cliente:</b> %s\n", html.EscapeString(o.CustomerName))

	if normalized := validation.NormalizePhone(o.Phone); normalized != "" {
		fmt.Fprintf(&b, "<b>📞 Teléfono:</b> <a href=\"%s\">+%s</a>\n", validation.WhatsAppLink(o.Phone), normalized)
	} else {
		b.WriteString("<b>📞 Teléfono:</b> -\n")
	}

	fmt.Fprintf(&b, "<b>📍 Dirección:</b> <a href=\"%s\">%s</a>\n",
		html.EscapeString(validation.MapsLink(o.Address)), html.EscapeString(o.Address))
	fmt.Fprintf(&b, "<b>📅 Fecha de Pedido:</b> %s\n\n", o.CreatedAt.In(loc).Format(timestampLayout))

	b.WriteString("<b>📦 Detalle del Pedido:</b>\n")
	writeQuantity(&b, o.Quantities.Large18L, "18Lts")
	writeQuantity(&b, o.Quantities.Medium12L, "12Lts")
	writeQuantity(&b, o.Quantities.Small5L, "5Lts")

	b.WriteString("\n<i>📝 Los precios incluyen recarga y servicio a domicilio.</i>\n")
	fmt.Fprintf(&b, "<b>💲 Total a Pagar:</b> %s\n\n", FormatUSD(o.Total.InexactFloat64()))

	fmt.Fprintf(&b, "<b>💳 Método de Pago:</b> %s\n", html.EscapeString(o.PaymentMethod))
	if o.Bank != "" {
		fmt.Fprintf(&b, "<b>🏦 Banco:</b> %s\n", html.EscapeString(o.Bank))
	}
	if o.Reference != "" {
		fmt.Fprintf(&b, "<b>🔢 Referencia:</b> %s\n", html.EscapeString(o.Reference))
	}

	return b.String()
}

func writeQuantity(b *strings.Builder, n int, size string) {
	if n > 0 {
		fmt.Fprintf(b, "  - %d botellones de %s\n", n, size)
	}
}

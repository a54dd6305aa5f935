package mail

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/usecase"

	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const confirmationMarkdown = `# Thank you for your order, {{.Name}}!

Your order **{{.Order.OrderNumber}}** was received on {{.Placed}} and is now being processed.

| Item | Qty | Price | Total |
|------|----:|------:|------:|
{{- range .Order.Items}}
| {{cell .Name}}{{if .Options}} ({{cell .Options}}){{end}} | {{.Quantity}} | {{money .UnitPrice}} | {{money .LineTotal}} |
{{- end}}

- Subtotal: {{money .Order.Subtotal}}
- Shipping: {{if .Order.ShippingCost.IsZero}}Free{{else}}{{money .Order.ShippingCost}}{{end}}
{{- if .Order.TaxEnabled}}
- Tax ({{.Order.TaxRate.String}}%): {{money .Order.TaxAmount}}
{{- end}}
- **Total: {{money .Order.Total}}**

**Delivery to:** {{.Order.ShippingAddress}}

{{if .Order.ShippingMessage}}{{.Order.ShippingMessage}}

{{end}}**Payment:** {{.Order.PaymentMethod}}

[View your order]({{.Order.OrderURL}})

{{.Store}}
`

var (
	markdown = goldmark.New(goldmark.WithExtensions(extension.Table))
	policy   = newEmailPolicy()
)

func newEmailPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("style").OnElements("td", "th")
	p.RequireNoFollowOnLinks(false)
	return p
}

type Rendered struct {
	Subject string
	Text    string
	HTML    string
}

// 注文から確認メールの本文を作る
type Renderer struct {
	storeName string
	currency  string
	tmpl      *template.Template
}

func NewRenderer(storeName, currency string) *Renderer {
	if currency == "" {
		currency = "KES"
	}
	r := &Renderer{storeName: storeName, currency: currency}
	r.tmpl = template.Must(template.New("confirmation").Funcs(template.FuncMap{
		"money": func(d decimal.Decimal) string { return usecase.FormatAmount(r.currency, d) },
		"cell":  func(s string) string { return strings.ReplaceAll(s, "|", "/") },
	}).Parse(confirmationMarkdown))
	return r
}

func (r *Renderer) OrderConfirmation(o usecase.OrderEmail, name string) (Rendered, error) {
	if name == "" {
		name = o.CustomerName
	}
	var md bytes.Buffer
	err := r.tmpl.Execute(&md, map[string]any{
		"Name":   name,
		"Order":  o,
		"Placed": o.PlacedAt.Format("2 Jan 2006 15:04"),
		"Store":  r.storeName,
	})
	if err != nil {
		return Rendered{}, fmt.Errorf("render confirmation markdown: %w", err)
	}

	var html bytes.Buffer
	if err := markdown.Convert(md.Bytes(), &html); err != nil {
		return Rendered{}, fmt.Errorf("convert confirmation markdown: %w", err)
	}

	return Rendered{
		Subject: fmt.Sprintf("%s: order %s confirmed", r.storeName, o.OrderNumber),
		Text:    md.String(),
		HTML:    policy.Sanitize(html.String()),
	}, nil
}

package mailer

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"

	"github.com/fjod/ecomart/notification-service/internal/domain"
)

const currencySymbol = "₹"

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	htmlTmpl = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/order_confirmation.html.tmpl"))
	textTmpl = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/order_confirmation.txt.tmpl"))
)

func Subject(orderID string) string {
	return "Your TechStore Order #" + orderID
}

type line struct {
	Name      string
	Quantity  int
	Price     string
	LineTotal string
}

type confirmation struct {
	CustomerName string
	OrderID      string
	PlacedOn     string
	Items        []line
	Total        string
	Currency     string
	OrdersURL    string
	Year         int
}

// Renderer turns an OrderEmail into a Message.
type Renderer struct {
	ordersURL string
	now       func() time.Time
}

func NewRenderer(ordersURL string) *Renderer {
	return &Renderer{ordersURL: ordersURL, now: time.Now}
}

// Render expects e to have passed Validate.
func (r *Renderer) Render(e domain.OrderEmail) (Message, error) {
	now := r.now()
	data := confirmation{
		CustomerName: e.CustomerName,
		OrderID:      e.OrderID,
		PlacedOn:     now.Format("02 Jan 2006, 15:04"),
		Total:        e.TotalAmount.StringFixed(2),
		Currency:     currencySymbol,
		OrdersURL:    r.ordersURL,
		Year:         now.Year(),
	}
	for _, it := range e.Items {
		data.Items = append(data.Items, line{
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     it.Price.StringFixed(2),
			LineTotal: it.LineTotal().StringFixed(2),
		})
	}

	var html, text bytes.Buffer
	if err := htmlTmpl.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("render html: %w", err)
	}
	if err := textTmpl.Execute(&text, data); err != nil {
		return Message{}, fmt.Errorf("render text: %w", err)
	}

	return Message{
		To:      e.To,
		Subject: Subject(e.OrderID),
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}

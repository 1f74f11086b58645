// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/construmax/construmax-backend/internal/config"
	"github.com/construmax/construmax-backend/internal/models"
)

type NotificationService struct {
	config *config.Config
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(cfg *config.Config) *NotificationService {
	return &NotificationService{config: cfg}
}

// SendOrderConfirmation emails the customer and then each configured
// admin address. Sends are spaced out a little so a cheap SMTP relay
// does not throttle us; the first failure is logged and aborts the rest.
func (s *NotificationService) SendOrderConfirmation(order *models.Order) {
	tmpl := s.getEmailTemplate("order_confirmation")

	data := map[string]interface{}{
		"CustomerName":   order.CustomerName,
		"OrderNumber":    order.OrderNumber,
		"Items":          order.Items,
		"Subtotal":       formatUYU(order.Subtotal),
		"Shipping":       formatUYU(order.Shipping),
		"Total":          formatUYU(order.Total),
		"DeliveryMethod": deliveryLabel(order.DeliveryMethod),
		"PaymentMethod":  paymentLabel(order.PaymentMethod),
	}

	subject := "Confirmación de pedido " + order.OrderNumber
	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		logrus.WithError(err).Error("Failed to render order confirmation template")
		return
	}
	text := confirmationText(order)

	recipients := append([]string{order.CustomerEmail}, s.config.Admin.NotifyEmails...)
	for i, to := range recipients {
		if i > 0 {
			time.Sleep(2 * time.Second)
		}
		if err := s.sendEmail(to, subject, body, text); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"order_number": order.OrderNumber,
				"recipient":    to,
			}).Error("Failed to send order confirmation email")
			return
		}
	}
}

// SendOrderStatusUpdate tells the customer their order moved forward.
func (s *NotificationService) SendOrderStatusUpdate(order *models.Order) {
	tmpl := s.getEmailTemplate("order_status")

	data := map[string]interface{}{
		"CustomerName": order.CustomerName,
		"OrderNumber":  order.OrderNumber,
		"Status":       statusLabel(order.Status),
	}

	subject := fmt.Sprintf("Pedido %s: %s", order.OrderNumber, statusLabel(order.Status))
	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		logrus.WithError(err).Error("Failed to render order status template")
		return
	}

	text := fmt.Sprintf("Hola %s,\r\n\r\nTu pedido %s ahora está: %s.\r\n\r\nEquipo ConstruMax\r\n",
		order.CustomerName, order.OrderNumber, statusLabel(order.Status))

	if err := s.sendEmail(order.CustomerEmail, subject, body, text); err != nil {
		logrus.WithError(err).WithField("order_number", order.OrderNumber).
			Error("Failed to send order status email")
	}
}

// sendEmail delivers a multipart/alternative message so text-only clients
// still get a readable copy.
func (s *NotificationService) sendEmail(to, subject, htmlBody, textBody string) error {
	if s.config.Email.SMTPHost == "" {
		logrus.WithFields(logrus.Fields{
			"recipient": to,
			"subject":   subject,
		}).Info("SMTP not configured, skipping email")
		return nil
	}

	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	const boundary = "construmax-alt"
	var msg bytes.Buffer
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", s.config.Email.FromName, s.config.Email.FromEmail)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

	fmt.Fprintf(&msg, "--%s\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s\r\n", boundary, textBody)
	fmt.Fprintf(&msg, "--%s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s\r\n", boundary, htmlBody)
	fmt.Fprintf(&msg, "--%s--\r\n", boundary)

	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg.Bytes())
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) getEmailTemplate(templateType string) EmailTemplate {
	templates := map[string]EmailTemplate{
		"order_confirmation": {
			Subject: "Confirmación de pedido",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>¡Gracias por tu pedido, {{.CustomerName}}!</h2>
	<p>Recibimos tu pedido <strong>{{.OrderNumber}}</strong> y lo estamos procesando.</p>
	<table border="0" cellpadding="4">
		<tr><th align="left">Producto</th><th align="right">Cantidad</th><th align="right">Precio</th></tr>
		{{range .Items}}
		<tr><td>{{.ProductName}}</td><td align="right">{{.Quantity}}</td><td align="right">$ {{printf "%.2f" .LineTotal}}</td></tr>
		{{end}}
	</table>
	<p>Subtotal: {{.Subtotal}}<br>
	Envío: {{.Shipping}}<br>
	<strong>Total: {{.Total}}</strong></p>
	<p>Entrega: {{.DeliveryMethod}}<br>
	Pago: {{.PaymentMethod}}</p>
	<p>Nos pondremos en contacto para coordinar.<br>Equipo ConstruMax</p>
</body>
</html>`,
		},
		"order_status": {
			Subject: "Actualización de pedido",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hola {{.CustomerName}},</h2>
	<p>Tu pedido <strong>{{.OrderNumber}}</strong> ahora está: <strong>{{.Status}}</strong>.</p>
	<p>Equipo ConstruMax</p>
</body>
</html>`,
		},
	}

	if tmpl, exists := templates[templateType]; exists {
		return tmpl
	}

	return EmailTemplate{
		Subject: "Notificación",
		Body:    "<p>{{.Message}}</p>",
	}
}

func confirmationText(order *models.Order) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "¡Gracias por tu pedido, %s!\r\n\r\n", order.CustomerName)
	fmt.Fprintf(&b, "Recibimos tu pedido %s y lo estamos procesando.\r\n\r\n", order.OrderNumber)
	for _, item := range order.Items {
		fmt.Fprintf(&b, "- %s x%g: $ %.2f\r\n", item.ProductName, item.Quantity, item.LineTotal)
	}
	fmt.Fprintf(&b, "\r\nSubtotal: %s\r\nEnvío: %s\r\nTotal: %s\r\n\r\n",
		formatUYU(order.Subtotal), formatUYU(order.Shipping), formatUYU(order.Total))
	fmt.Fprintf(&b, "Entrega: %s\r\nPago: %s\r\n\r\n",
		deliveryLabel(order.DeliveryMethod), paymentLabel(order.PaymentMethod))
	b.WriteString("Nos pondremos en contacto para coordinar.\r\nEquipo ConstruMax\r\n")
	return b.String()
}

func formatUYU(amount float64) string {
	return fmt.Sprintf("$ %.2f UYU", amount)
}

func deliveryLabel(m models.DeliveryMethod) string {
	switch m {
	case models.DeliveryMethodPickup:
		return "Retiro en local"
	case models.DeliveryMethodDelivery:
		return "Envío a domicilio"
	}
	return string(m)
}

func paymentLabel(m models.PaymentMethod) string {
	switch m {
	case models.PaymentMethodCash:
		return "Efectivo"
	case models.PaymentMethodTransfer:
		return "Transferencia bancaria"
	case models.PaymentMethodGateway:
		return "Pago online"
	}
	return string(m)
}

func statusLabel(s models.OrderStatus) string {
	switch s {
	case models.OrderStatusPending:
		return "Pendiente"
	case models.OrderStatusConfirmed:
		return "Confirmado"
	case models.OrderStatusPreparing:
		return "En preparación"
	case models.OrderStatusReady:
		return "Listo para entregar"
	case models.OrderStatusDelivered:
		return "Entregado"
	case models.OrderStatusCancelled:
		return "Cancelado"
	}
	return string(s)
}

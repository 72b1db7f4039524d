package mail

import (
	"bytes"
	"fmt"
	"strconv"
	"text/template"

	"gopkg.in/gomail.v2"

	"github.com/ia4pymes/chatbot-admin/internal/entity"
)

func NewEmailSender(host string, port int, user, password, from, fromName string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		FromName: fromName,
	}
}

var hotLeadTmpl = template.Must(template.New("hot_lead").Parse(`
<h2>🔥 Lead caliente</h2>
<p><strong>{{.LeadName}}</strong> acaba de calificar como lead caliente.</p>
<ul>
	<li>Canal: {{.Channel}}</li>
	<li>Contacto: {{.Contact}}</li>
</ul>
<p>Entra al panel y contáctalo cuanto antes.</p>
`))

var digestTmpl = template.Must(template.New("digest").Parse(`
<h2>Resumen diario</h2>
<p>Hola {{.Username}}, en las últimas 24 horas han entrado <strong>{{.Count}}</strong> leads nuevos:</p>
<ul>
{{range .Leads}}	<li>{{.Contact.Name}} ({{.Channel}}{{if .Contact.Email}}, {{.Contact.Email}}{{end}})</li>
{{end}}</ul>
`))

func (s *EmailSender) SendHotLeadAlert(to, leadName, channel, contact string) error {
	var body bytes.Buffer
	if err := hotLeadTmpl.Execute(&body, hotLeadData{LeadName: leadName, Channel: channel, Contact: contact}); err != nil {
		return fmt.Errorf("error procesando la plantilla: %w", err)
	}

	subject := fmt.Sprintf("🔥 Lead caliente: %s", leadName)
	return s.send(to, subject, body.String())
}

func (s *EmailSender) SendDailyDigest(to, username string, leads []entity.Lead) error {
	var body bytes.Buffer
	if err := digestTmpl.Execute(&body, digestData{Username: username, Count: len(leads), Leads: leads}); err != nil {
		return fmt.Errorf("error procesando la plantilla: %w", err)
	}

	subject := fmt.Sprintf("Resumen diario: %d leads nuevos", len(leads))
	return s.send(to, subject, body.String())
}

func (s *EmailSender) send(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.From, s.FromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("error enviando email SMTP: %w", err)
	}
	return nil
}

// SendTest prueba unas credenciales SMTP recién configuradas en el
// panel mandando un correo al propio buzón.
func SendTest(creds *entity.EmailCredentials, to string) error {
	port, err := strconv.Atoi(creds.SMTPPort)
	if err != nil {
		return fmt.Errorf("puerto SMTP inválido: %s", creds.SMTPPort)
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", creds.SMTPUser, creds.FromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Prueba de configuración SMTP")
	m.SetBody("text/html", "<p>Si estás leyendo esto, tus credenciales SMTP funcionan. ✅</p>")

	d := gomail.NewDialer(creds.SMTPHost, port, creds.SMTPUser, creds.SMTPPassword)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("las credenciales SMTP no funcionan: %w", err)
	}
	return nil
}

package mail

import "github.com/ia4pymes/chatbot-admin/internal/entity"

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
}

type hotLeadData struct {
	LeadName string
	Channel  string
	Contact  string
}

type digestData struct {
	Username string
	Count    int
	Leads    []entity.Lead
}

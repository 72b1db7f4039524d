package whatsapp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

// Client habla con la Cloud API de Meta para mandar plantillas de
// WhatsApp (los avisos internos del panel, no el bot).
type Client struct {
	accessToken string
	phoneID     string
	baseURL     string
	http        *http.Client
}

func NewClient() *Client {
	return &Client{
		accessToken: os.Getenv("WHATSAPP_ACCESS_TOKEN"),
		phoneID:     os.Getenv("WHATSAPP_PHONE_ID"),
		baseURL:     "https://graph.facebook.com/v18.0",
		http:        &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) SendTemplate(input SendTemplateInput) error {
	if c.accessToken == "" || c.phoneID == "" {
		log.Println("⚠️ WhatsApp: ACCESS_TOKEN o PHONE_ID sin configurar")
		return fmt.Errorf("whatsapp no configurado")
	}

	params := make([]map[string]string, len(input.Parameters))
	for i, p := range input.Parameters {
		params[i] = map[string]string{"type": "text", "text": p}
	}

	payload := map[string]any{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                input.PhoneNumber,
		"type":              "template",
		"template": map[string]any{
			"name": input.TemplateName,
			"language": map[string]string{
				"code": "es_ES",
			},
			"components": []map[string]any{
				{
					"type":       "body",
					"parameters": params,
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneID)
	req, err := http.NewRequest("POST", url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error de red con la Cloud API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		var apiErr apiError
		json.Unmarshal(raw, &apiErr)
		if apiErr.Error.Message != "" {
			return fmt.Errorf("la Cloud API rechazó el mensaje: %s (code %d)", apiErr.Error.Message, apiErr.Error.Code)
		}
		return fmt.Errorf("la Cloud API devolvió %d: %s", resp.StatusCode, string(raw))
	}

	return nil
}

// SendHotLeadAlert implementa el contrato del worker de notificaciones.
func (c *Client) SendHotLeadAlert(phone, leadName, channel string) error {
	if phone == "" || leadName == "" {
		log.Printf("⚠️ WhatsApp: datos incompletos para el aviso (phone: %s, name: %s)", phone, leadName)
		return nil
	}

	templateName := os.Getenv("WHATSAPP_HOT_LEAD_TEMPLATE")
	if templateName == "" {
		templateName = "lead_caliente"
	}

	return c.SendTemplate(SendTemplateInput{
		PhoneNumber:  phone,
		TemplateName: templateName,
		Parameters:   []string{leadName, channel},
	})
}

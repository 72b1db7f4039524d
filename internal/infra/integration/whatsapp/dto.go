package whatsapp

type SendTemplateInput struct {
	PhoneNumber  string
	TemplateName string
	Parameters   []string
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

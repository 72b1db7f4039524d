package usecase

// DomainError: el cliente se equivocó (datos inválidos, lead inexistente...).
// El handler lo traduce a un 4xx con el mensaje tal cual.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	_, ok := err.(*DomainError)
	return ok
}

// TechnicalError: fallo nuestro (base de datos, broker, SMTP...).
// El handler devuelve un 5xx genérico sin filtrar detalles internos.
type TechnicalError struct {
	Code    string
	Message string
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func IsTechnicalError(err error) bool {
	_, ok := err.(*TechnicalError)
	return ok
}

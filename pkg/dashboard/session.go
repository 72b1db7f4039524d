package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ia4pymes/chatbot-admin/internal/entity"
)

// Session es lo que sobrevive entre arranques del panel: quién eres y,
// si eres agencia, qué cliente estabas mirando.
type Session struct {
	Token          string                 `json:"token"`
	ClientID       string                 `json:"clientId"`
	Username       string                 `json:"username"`
	Email          string                 `json:"email"`
	AccountType    string                 `json:"accountType"`
	ManagedClients []entity.ManagedClient `json:"managedClients,omitempty"`
	SelectedClient string                 `json:"selectedClient,omitempty"`
}

func (s *Session) IsAgency() bool {
	return s.AccountType == entity.AccountTypeAgency
}

// CurrentClientID resuelve sobre qué cliente operan las llamadas: las
// cuentas individuales siempre son ellas mismas; las agencias usan el
// cliente seleccionado o, de entrada, el primero gestionado.
func (s *Session) CurrentClientID() string {
	if !s.IsAgency() {
		return s.ClientID
	}
	if s.SelectedClient != "" {
		return s.SelectedClient
	}
	if len(s.ManagedClients) > 0 {
		return s.ManagedClients[0].ClientID
	}
	return s.ClientID
}

// SelectClient cambia el cliente activo de una agencia.
func (s *Session) SelectClient(clientID string) error {
	if !s.IsAgency() {
		return errors.New("solo las cuentas de agencia pueden cambiar de cliente")
	}
	for _, mc := range s.ManagedClients {
		if mc.ClientID == clientID {
			s.SelectedClient = clientID
			return nil
		}
	}
	return fmt.Errorf("cliente no gestionado por esta agencia: %s", clientID)
}

// SessionStore persiste la sesión en un JSON del home del usuario.
type SessionStore struct {
	path string
}

func NewSessionStore(path string) *SessionStore {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		path = filepath.Join(home, ".chatbot-admin", "session.json")
	}
	return &SessionStore{path: path}
}

// Load devuelve nil sin error si no hay sesión guardada o si el
// fichero está corrupto: en ambos casos toca volver a loguearse.
func (st *SessionStore) Load() (*Session, error) {
	raw, err := os.ReadFile(st.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		os.Remove(st.path)
		return nil, nil
	}
	if sess.Token == "" || sess.ClientID == "" {
		return nil, nil
	}
	return &sess, nil
}

func (st *SessionStore) Save(sess *Session) error {
	if err := os.MkdirAll(filepath.Dir(st.path), 0o700); err != nil {
		return err
	}

	raw, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	// el token va dentro, nada de permisos de grupo
	return os.WriteFile(st.path, raw, 0o600)
}

func (st *SessionStore) Clear() error {
	err := os.Remove(st.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

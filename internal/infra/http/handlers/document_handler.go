package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/ia4pymes/chatbot-admin/internal/entity"
	"github.com/ia4pymes/chatbot-admin/internal/infra/storage"
)

// maxDocumentSize limita las subidas prefirmadas a 10 MB.
const maxDocumentSize = 10 << 20

type Uploader interface {
	PresignUpload(ctx context.Context, clientID, channel, fileName string, maxSize int64) (*storage.UploadTicket, error)
	Delete(ctx context.Context, clientID, channel, fileName string) error
}

type DocumentHandler struct {
	docRepo entity.DocumentRepository
	store   Uploader
}

func NewDocumentHandler(docRepo entity.DocumentRepository, store Uploader) *DocumentHandler {
	return &DocumentHandler{docRepo: docRepo, store: store}
}

type listDocumentsResponse struct {
	Success   bool              `json:"success"`
	Documents []entity.Document `json:"documents"`
}

// List atiende GET /api/documents?clientId=&channel=
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	clientID := q.Get("clientId")
	if clientID == "" {
		writeError(w, http.StatusBadRequest, "clientId es obligatorio")
		return
	}

	docs, err := h.docRepo.List(r.Context(), clientID, q.Get("channel"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error al listar los documentos")
		return
	}

	writeJSON(w, http.StatusOK, listDocumentsResponse{Success: true, Documents: docs})
}

type presignRequest struct {
	ClientID    string `json:"clientId"`
	Channel     string `json:"channel"`
	FileName    string `json:"fileName"`
	FileSize    int64  `json:"fileSize"`
	ContentType string `json:"contentType"`
}

type presignResponse struct {
	Success bool                  `json:"success"`
	Upload  *storage.UploadTicket `json:"upload"`
}

// Presign atiende POST /api/documents/presign. Registra el documento y
// devuelve el POST prefirmado para que el navegador suba directo al bucket.
func (h *DocumentHandler) Presign(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "Almacenamiento no configurado")
		return
	}

	var req presignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	if req.ClientID == "" || req.FileName == "" {
		writeError(w, http.StatusBadRequest, "clientId y fileName son obligatorios")
		return
	}
	if strings.Contains(req.FileName, "/") || strings.Contains(req.FileName, "..") {
		writeError(w, http.StatusBadRequest, "nombre de fichero inválido")
		return
	}
	if req.FileSize > maxDocumentSize {
		writeError(w, http.StatusBadRequest, "el fichero supera el máximo de 10MB")
		return
	}

	ticket, err := h.store.PresignUpload(r.Context(), req.ClientID, req.Channel, req.FileName, maxDocumentSize)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error al preparar la subida")
		return
	}

	doc := &entity.Document{
		FileName:    req.FileName,
		FileSize:    req.FileSize,
		ContentType: req.ContentType,
		Channel:     req.Channel,
		UploadedAt:  time.Now().UTC(),
	}
	if err := h.docRepo.Save(r.Context(), req.ClientID, doc); err != nil {
		writeError(w, http.StatusInternalServerError, "Error al registrar el documento")
		return
	}

	writeJSON(w, http.StatusOK, presignResponse{Success: true, Upload: ticket})
}

// Delete atiende DELETE /api/documents?clientId=&channel=&fileName=
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "Almacenamiento no configurado")
		return
	}

	q := r.URL.Query()
	clientID := q.Get("clientId")
	channel := q.Get("channel")
	fileName := q.Get("fileName")
	if clientID == "" || fileName == "" {
		writeError(w, http.StatusBadRequest, "clientId y fileName son obligatorios")
		return
	}

	if err := h.store.Delete(r.Context(), clientID, channel, fileName); err != nil {
		writeError(w, http.StatusInternalServerError, "Error al borrar el fichero")
		return
	}
	if err := h.docRepo.Delete(r.Context(), clientID, channel, fileName); err != nil {
		writeError(w, http.StatusNotFound, "Documento no encontrado")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

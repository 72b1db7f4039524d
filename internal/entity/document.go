package entity

import (
	"context"
	"time"
)

// Document is the metadata of one knowledge-base file. The file body lives
// in object storage; uploads go straight there via pre-signed URLs.
type Document struct {
	FileName    string    `json:"fileName"`
	FileSize    int64     `json:"fileSize"`
	ContentType string    `json:"contentType,omitempty"`
	Channel     string    `json:"channel"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

type DocumentRepository interface {
	List(ctx context.Context, clientID, channel string) ([]Document, error)
	Save(ctx context.Context, clientID string, doc *Document) error
	Delete(ctx context.Context, clientID, channel, fileName string) error
}

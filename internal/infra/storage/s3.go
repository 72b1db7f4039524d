package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Store guarda los documentos que alimentan al bot. El panel nunca
// sube el fichero a través del gateway: pedimos un POST prefirmado y el
// navegador habla directo con el bucket.
type S3Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	expiry  time.Duration
}

// UploadTicket es lo que el panel necesita para el POST multipart.
type UploadTicket struct {
	URL    string            `json:"url"`
	Fields map[string]string `json:"fields"`
	Key    string            `json:"key"`
}

func NewS3Store(ctx context.Context, bucket, region, accessKey, secretKey string) (*S3Store, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("fallo al cargar la config de AWS: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return &S3Store{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  bucket,
		expiry:  15 * time.Minute,
	}, nil
}

func objectKey(clientID, channel, fileName string) string {
	return fmt.Sprintf("%s/%s/%s", clientID, channel, fileName)
}

func (s *S3Store) PresignUpload(ctx context.Context, clientID, channel, fileName string, maxSize int64) (*UploadTicket, error) {
	key := objectKey(clientID, channel, fileName)

	req, err := s.presign.PresignPostObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(o *s3.PresignPostOptions) {
		o.Expires = s.expiry
		o.Conditions = []interface{}{
			[]interface{}{"content-length-range", 1, maxSize},
		}
	})
	if err != nil {
		return nil, fmt.Errorf("fallo al prefirmar la subida de %s: %w", key, err)
	}

	return &UploadTicket{URL: req.URL, Fields: req.Values, Key: key}, nil
}

func (s *S3Store) Delete(ctx context.Context, clientID, channel, fileName string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(clientID, channel, fileName)),
	})
	if err != nil {
		return fmt.Errorf("fallo al borrar el objeto: %w", err)
	}
	return nil
}

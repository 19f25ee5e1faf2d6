package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jhoicas/warehouse-tracker/internal/domain"
	"github.com/jhoicas/warehouse-tracker/internal/domain/entity"
	"github.com/jhoicas/warehouse-tracker/internal/domain/repository"
)

var (
	_ repository.DocumentStore     = (*Store)(nil)
	_ repository.DocumentInspector = (*Store)(nil)
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Options conexión a un endpoint compatible con S3 (AWS, MinIO, SeaweedFS).
type Options struct {
	Endpoint       string // vacío = endpoint de AWS de la región
	Region         string
	Bucket         string
	AccessKey      string // vacío = cadena de credenciales por defecto del SDK
	SecretKey      string
	ForcePathStyle bool
	Timeout        time.Duration
}

// Store DocumentStore sobre un objeto S3. La clave es ref.ID o, si está vacío, ref.Path.
type Store struct {
	api    *s3.Client
	bucket string
}

// NewStore carga la configuración del SDK y construye el cliente.
func NewStore(ctx context.Context, opts Options) (*Store, error) {
	if opts.Bucket == "" {
		return nil, errors.New("s3: bucket requerido")
	}
	region := opts.Region
	if region == "" {
		region = "us-east-1"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	// BuildableClient admite WithTransportOptions, que el SDK necesita para AWS_CA_BUNDLE.
	loaders := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
		awsconfig.WithHTTPClient(awshttp.NewBuildableClient().WithTimeout(timeout)),
	}
	if opts.AccessKey != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, fmt.Errorf("s3: cargar configuración: %w", err)
	}

	var transport http.RoundTripper = http.DefaultTransport
	if bc, ok := cfg.HTTPClient.(*awshttp.BuildableClient); ok {
		transport = bc.GetTransport()
	}
	httpClient := &http.Client{Timeout: timeout, Transport: otelhttp.NewTransport(transport)}

	endpoint := strings.TrimSpace(opts.Endpoint)
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.HTTPClient = httpClient
		o.UsePathStyle = opts.ForcePathStyle
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return &Store{api: client, bucket: opts.Bucket}, nil
}

func (s *Store) Download(ctx context.Context, ref entity.DocumentRef) ([]byte, error) {
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(ref)),
	})
	if err != nil {
		return nil, mapError("descargar", ref, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: s3: leer objeto: %v", domain.ErrStoreUnavailable, err)
	}
	return data, nil
}

func (s *Store) Upload(ctx context.Context, ref entity.DocumentRef, data []byte) error {
	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectKey(ref)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(xlsxContentType),
	})
	if err != nil {
		return mapError("subir", ref, err)
	}
	return nil
}

func (s *Store) Stat(ctx context.Context, ref entity.DocumentRef) (*entity.DocumentInfo, error) {
	key := objectKey(ref)
	out, err := s.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, mapError("consultar", ref, err)
	}
	info := &entity.DocumentInfo{
		Name: key,
		Size: aws.ToInt64(out.ContentLength),
		ETag: aws.ToString(out.ETag),
	}
	if out.LastModified != nil {
		info.ModifiedAt = *out.LastModified
	}
	return info, nil
}

func objectKey(ref entity.DocumentRef) string {
	if ref.ID != "" {
		return ref.ID
	}
	return strings.TrimLeft(ref.Path, "/")
}

// mapError traduce errores del SDK: credenciales rechazadas son ErrAuthFailure,
// todo lo demás (incluido objeto inexistente) ErrStoreUnavailable.
func mapError(op string, ref entity.DocumentRef, err error) error {
	var nsk *s3types.NoSuchKey
	if errors.As(err, &nsk) {
		return fmt.Errorf("%w: s3: %s %s: el objeto no existe", domain.ErrStoreUnavailable, op, ref)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken":
			return fmt.Errorf("%w: s3: %s %s: %s", domain.ErrAuthFailure, op, ref, apiErr.ErrorMessage())
		case "NotFound":
			return fmt.Errorf("%w: s3: %s %s: el objeto no existe", domain.ErrStoreUnavailable, op, ref)
		}
	}
	return fmt.Errorf("%w: s3: %s %s: %v", domain.ErrStoreUnavailable, op, ref, err)
}

package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// SourceEmbedded selects the dataset compiled into the binary.
const SourceEmbedded = "embedded"

const maxDatasetBytes = 16 << 20

//go:embed data/products.json
var embeddedProducts []byte

// S3Config represents the settings required to read the dataset from S3 or an
// S3-compatible API.
type S3Config struct {
	Region         string
	Endpoint       string
	AccessKey      string
	SecretKey      string
	ForcePathStyle bool
}

type objectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Loader reads a JSON dataset of items from the embedded copy, a local file or
// an s3://bucket/key object.
type Loader struct {
	S3 S3Config

	newS3 func(ctx context.Context, cfg S3Config) (objectGetter, error)
}

// Load resolves source and decodes its items.
func (l Loader) Load(ctx context.Context, source string) ([]Item, error) {
	source = strings.TrimSpace(source)
	log := zerolog.Ctx(ctx)

	var (
		raw []byte
		err error
	)
	switch {
	case source == "" || source == SourceEmbedded:
		raw = embeddedProducts
	case strings.HasPrefix(source, "s3://"):
		raw, err = l.loadS3(ctx, source)
	default:
		raw, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", source, err)
	}

	items, err := decodeItems(raw)
	if err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", source, err)
	}
	log.Debug().Str("source", source).Int("items", len(items)).Msg("catalog loaded")
	return items, nil
}

func (l Loader) loadS3(ctx context.Context, source string) ([]byte, error) {
	bucket, key, ok := strings.Cut(strings.TrimPrefix(source, "s3://"), "/")
	if !ok || bucket == "" || key == "" {
		return nil, errors.New("s3 source must look like s3://bucket/key")
	}

	connect := l.newS3
	if connect == nil {
		connect = newS3Client
	}
	client, err := connect(ctx, l.S3)
	if err != nil {
		return nil, err
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	defer out.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(out.Body, maxDatasetBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}
	if len(raw) > maxDatasetBytes {
		return nil, fmt.Errorf("dataset exceeds %d bytes", maxDatasetBytes)
	}
	return raw, nil
}

func newS3Client(ctx context.Context, cfg S3Config) (objectGetter, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws sdk config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.ForcePathStyle
		}
	}), nil
}

func decodeItems(raw []byte) ([]Item, error) {
	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	for i, item := range items {
		if strings.TrimSpace(item.ID) == "" || strings.TrimSpace(item.Name) == "" {
			return nil, fmt.Errorf("item %d: id and name are required", i)
		}
	}
	return items, nil
}

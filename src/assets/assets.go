// Package assets stores uploaded images in S3-compatible object storage and
// records them in the database.
package assets

import (
	"bytes"
	"context"
	"crypto/sha1"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
	"github.com/radixwiki/wiki/src/config"
	"github.com/radixwiki/wiki/src/db"
	"github.com/radixwiki/wiki/src/models"
	"github.com/radixwiki/wiki/src/oops"
	_ "golang.org/x/image/webp"
)

const MaxUploadBytes = 10 << 20

var AllowedContentTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

// InvalidAssetError is a problem with the upload itself, safe to show the
// uploader.
type InvalidAssetError struct {
	Message string
}

func (e *InvalidAssetError) Error() string {
	return e.Message
}

type Store struct {
	client    *s3.Client
	bucket    string
	publicUrl string
}

func NewStore(ctx context.Context, cfg config.S3Config) (*Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			),
		),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithEndpointResolver(aws.EndpointResolverFunc(func(service, region string) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL: cfg.Endpoint,
			}, nil
		})),
	)
	if err != nil {
		return nil, oops.New(err, "failed to load object storage config")
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})
	return &Store{
		client:    client,
		bucket:    cfg.Bucket,
		publicUrl: strings.TrimRight(cfg.PublicUrl, "/"),
	}, nil
}

func (s *Store) URL(a *models.Asset) string {
	return s.publicUrl + "/" + a.S3Key
}

var REIllegalFilenameChars = regexp.MustCompile(`[^\w\-.]`)

func SanitizeFilename(filename string) string {
	filename = REIllegalFilenameChars.ReplaceAllString(strings.TrimSpace(filename), "_")
	if filename == "" || strings.Trim(filename, "._") == "" {
		return "unnamed"
	}
	return filename
}

func AssetKey(id, filename string) string {
	return fmt.Sprintf("%s/%s", id, filename)
}

type ImageInfo struct {
	ContentType   string
	Width, Height int
}

// DetectImage sniffs the content type of an upload and reads its
// dimensions. Anything that isn't a supported, decodable image is an
// *InvalidAssetError.
func DetectImage(content []byte) (ImageInfo, error) {
	if len(content) == 0 {
		return ImageInfo{}, &InvalidAssetError{"The file is empty."}
	}
	if len(content) > MaxUploadBytes {
		return ImageInfo{}, &InvalidAssetError{fmt.Sprintf("Files can be at most %d MB.", MaxUploadBytes>>20)}
	}

	contentType := http.DetectContentType(content)
	if !AllowedContentTypes[contentType] {
		return ImageInfo{}, &InvalidAssetError{"Only PNG, JPEG, GIF and WebP images can be uploaded."}
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil {
		return ImageInfo{}, &InvalidAssetError{"The image could not be read."}
	}
	return ImageInfo{ContentType: contentType, Width: cfg.Width, Height: cfg.Height}, nil
}

type CreateInput struct {
	Content    []byte
	Filename   string
	UploaderID *uuid.UUID
}

func (s *Store) Create(ctx context.Context, dbConn db.ConnOrTx, in CreateInput) (*models.Asset, error) {
	filename := SanitizeFilename(in.Filename)
	info, err := DetectImage(in.Content)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	key := AssetKey(id.String(), filename)
	checksum := fmt.Sprintf("%x", sha1.Sum(in.Content))

	upload := func() error {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      &s.bucket,
			Key:         &key,
			Body:        bytes.NewReader(in.Content),
			ACL:         types.ObjectCannedACLPublicRead,
			ContentType: &info.ContentType,
		})
		return err
	}

	err = upload()
	if err != nil {
		var apiError smithy.APIError
		if errors.As(err, &apiError) && apiError.ErrorCode() == "NoSuchBucket" {
			_, err := s.client.CreateBucket(ctx, &s3.CreateBucketInput{
				Bucket: &s.bucket,
			})
			if err != nil {
				return nil, oops.New(err, "failed to create assets bucket")
			}

			err = upload()
			if err != nil {
				return nil, oops.New(err, "failed to upload asset")
			}
		} else {
			return nil, oops.New(err, "failed to upload asset")
		}
	}

	asset, err := db.QueryOne[models.Asset](ctx, dbConn,
		`
		INSERT INTO asset (id, s3_key, filename, size, mime_type, sha1sum, width, height, uploader_id)
		VALUES            ($1, $2,     $3,       $4,   $5,        $6,      $7,    $8,     $9)
		RETURNING $columns
		`,
		id,
		key,
		filename,
		len(in.Content),
		info.ContentType,
		checksum,
		info.Width,
		info.Height,
		in.UploaderID,
	)
	if err != nil {
		return nil, oops.New(err, "failed to save asset record")
	}

	return asset, nil
}

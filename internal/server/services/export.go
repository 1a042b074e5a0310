package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/bookmarks/internal/common"
	"github.com/dmitrijs2005/bookmarks/internal/logging"
	sc "github.com/dmitrijs2005/bookmarks/internal/server/config"
	"github.com/dmitrijs2005/bookmarks/internal/server/models"
	"github.com/dmitrijs2005/bookmarks/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// ExportURLValidity is how long the presigned download link works.
const ExportURLValidity = 15 * time.Minute

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}

	timeNow = time.Now
)

// snapshot is the JSON document written to the bucket.
type snapshot struct {
	UserID     int64             `json:"userId"`
	ExportedAt time.Time         `json:"exportedAt"`
	Bookmarks  []models.Bookmark `json:"bookmarks"`
}

// ExportService uploads a JSON snapshot of a user's bookmarks to an
// S3-compatible bucket and hands back a temporary download link.
type ExportService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	logger      logging.Logger
}

func NewExportService(db *sql.DB, m repomanager.RepositoryManager, cfg *sc.Config, l logging.Logger) *ExportService {
	return &ExportService{db: db, repomanager: m, config: cfg, logger: l.With("module", "export")}
}

// ExportKey builds exports/<user>/<yyyy>/<mm>/<dd>/<uuid>.json.
func ExportKey(userID int64, t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("exports/%d/%04d/%02d/%02d/%s.json", userID, t.Year(), t.Month(), t.Day(), uuid.New())
}

func (s *ExportService) getClient(ctx context.Context) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(s.config.S3Region),
	}
	if s.config.S3RootUser != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	}

	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.config.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
			// MinIO and friends serve buckets by path
			o.UsePathStyle = true
		}
	}), nil
}

// Export writes the caller's bookmarks to the bucket. Returns
// common.ErrFeatureDisabled when no bucket is configured.
func (s *ExportService) Export(ctx context.Context, userID int64) (*models.Export, error) {
	if !s.config.ExportEnabled() {
		return nil, common.ErrFeatureDisabled
	}

	items, err := s.repomanager.Bookmarks(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list bookmarks: %v", common.ErrorInternal, err)
	}
	if items == nil {
		items = []models.Bookmark{}
	}

	now := timeNow().UTC()
	body, err := json.Marshal(snapshot{UserID: userID, ExportedAt: now, Bookmarks: items})
	if err != nil {
		return nil, fmt.Errorf("%w: encode snapshot: %v", common.ErrorInternal, err)
	}

	client, err := s.getClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: s3 config: %v", common.ErrorInternal, err)
	}

	bucket := s.config.S3Bucket
	key := ExportKey(userID, now)

	if _, err := putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	}); err != nil {
		return nil, fmt.Errorf("%w: upload export: %v", common.ErrorInternal, err)
	}

	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(ExportURLValidity))
	if err != nil {
		return nil, fmt.Errorf("%w: presign export: %v", common.ErrorInternal, err)
	}

	s.logger.Info(ctx, "bookmarks exported", "user_id", userID, "count", len(items), "key", key)
	return &models.Export{Key: key, URL: req.URL, ExpiresAt: now.Add(ExportURLValidity)}, nil
}

package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/lentik/internal/common"
	"github.com/dmitrijs2005/lentik/internal/logging"
	sc "github.com/dmitrijs2005/lentik/internal/server/config"
	"github.com/dmitrijs2005/lentik/internal/server/events"
	"github.com/dmitrijs2005/lentik/internal/server/models"
	"github.com/dmitrijs2005/lentik/internal/server/repositories/repomanager"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const presignExpiry = 15 * time.Minute

var mediaTypes = map[string]bool{"image": true, "video": true}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}

	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput) error {
		_, err := c.DeleteObject(ctx, in)
		return err
	}
)

// GalleryUpload is a freshly registered item plus where to PUT its bytes.
type GalleryUpload struct {
	Item      *models.GalleryItem
	UploadURL string
}

// GalleryEntry is a listed item with a short-lived download URL.
type GalleryEntry struct {
	Item        models.GalleryItem
	DownloadURL string
}

// GalleryService keeps gallery metadata in Postgres and the media itself in
// S3-compatible storage reached only through presigned URLs.
type GalleryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hub         Broadcaster
	config      *sc.Config
	logger      logging.Logger
	now         func() time.Time
}

func NewGalleryService(db *sql.DB, m repomanager.RepositoryManager, hub Broadcaster, config *sc.Config, logger logging.Logger) *GalleryService {
	return &GalleryService{
		db:          db,
		repomanager: m,
		hub:         hub,
		config:      config,
		logger:      logger.With("module", "gallery"),
		now:         time.Now,
	}
}

// StorageKey allocates a fresh object key for familyID.
func StorageKey(familyID string, t time.Time) string {
	return fmt.Sprintf("families/%s/%04d/%02d/%v", familyID, t.Year(), int(t.Month()), uuid.New())
}

func (s *GalleryService) getS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

func (s *GalleryService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	client, err := s.getS3Client(ctx)
	if err != nil {
		return nil, err
	}
	return newS3PresignClient(client), nil
}

// AddItem registers a media item and returns a presigned PUT URL for its bytes.
func (s *GalleryService) AddItem(ctx context.Context, userID, familyID, mediaType string, caption *string) (*GalleryUpload, error) {
	if !mediaTypes[mediaType] {
		return nil, fmt.Errorf("%w: media_type must be image or video", common.ErrorValidation)
	}
	if _, err := requireMember(ctx, s.repomanager.Memberships(s.db), familyID, userID); err != nil {
		return nil, err
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		s.logger.Error(ctx, "s3 client setup failed", "error", err)
		return nil, common.ErrorInternal
	}

	bucket := s.config.S3Bucket
	key := StorageKey(familyID, s.now())

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		s.logger.Error(ctx, "presign put failed", "error", err)
		return nil, common.ErrorInternal
	}

	item, err := s.repomanager.Gallery(s.db).Create(ctx, &models.GalleryItem{
		FamilyID:   familyID,
		UploadedBy: userID,
		MediaType:  mediaType,
		StorageKey: key,
		Caption:    caption,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating gallery item: %w", err)
	}

	s.hub.BroadcastToFamily(ctx, familyID, events.GalleryItemAdded{
		ItemID:       item.ID,
		MediaType:    item.MediaType,
		Caption:      item.Caption,
		UploaderName: userName(ctx, s.repomanager.Users(s.db), userID),
	})
	return &GalleryUpload{Item: item, UploadURL: req.URL}, nil
}

// ListItems returns the family's items newest first, each with a presigned
// GET URL.
func (s *GalleryService) ListItems(ctx context.Context, userID, familyID string) ([]GalleryEntry, error) {
	if _, err := requireMember(ctx, s.repomanager.Memberships(s.db), familyID, userID); err != nil {
		return nil, err
	}
	items, err := s.repomanager.Gallery(s.db).ListByFamily(ctx, familyID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []GalleryEntry{}, nil
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		s.logger.Error(ctx, "s3 client setup failed", "error", err)
		return nil, common.ErrorInternal
	}

	bucket := s.config.S3Bucket
	out := make([]GalleryEntry, 0, len(items))
	for _, it := range items {
		key := it.StorageKey
		req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
			Bucket: &bucket,
			Key:    &key,
		}, s3.WithPresignExpires(presignExpiry))
		if err != nil {
			s.logger.Error(ctx, "presign get failed", "key", key, "error", err)
			return nil, common.ErrorInternal
		}
		out = append(out, GalleryEntry{Item: it, DownloadURL: req.URL})
	}
	return out, nil
}

// DeleteItem removes an item's metadata, then its stored object. The uploader
// and the family owner may delete. A storage failure leaves an orphaned object
// and is only logged.
func (s *GalleryService) DeleteItem(ctx context.Context, userID, familyID, itemID string) error {
	m, err := requireMember(ctx, s.repomanager.Memberships(s.db), familyID, userID)
	if err != nil {
		return err
	}
	repo := s.repomanager.Gallery(s.db)
	item, err := repo.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("error loading gallery item: %w", err)
	}
	if item.FamilyID != familyID {
		return common.ErrorNotFound
	}
	if item.UploadedBy != userID && m.Role != models.RoleOwner {
		return common.ErrorForbidden
	}

	if err := repo.Delete(ctx, itemID); err != nil {
		return fmt.Errorf("error deleting gallery item: %w", err)
	}

	client, err := s.getS3Client(ctx)
	if err != nil {
		s.logger.Warn(ctx, "s3 client setup failed, object kept", "key", item.StorageKey, "error", err)
		return nil
	}
	bucket, key := s.config.S3Bucket, item.StorageKey
	if err := deleteObject(client, ctx, &s3.DeleteObjectInput{Bucket: &bucket, Key: &key}); err != nil {
		s.logger.Warn(ctx, "object delete failed", "key", key, "error", err)
	}
	return nil
}

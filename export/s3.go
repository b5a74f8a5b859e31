package export

import (
	"context"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/greenwatch/ndvi-broker/util"
)

// S3Uploader mirrors exported files into a bucket on an S3-compatible
// object store
type S3Uploader struct {
	client *minio.Client
	bucket string
}

// NewS3Uploader connects to the object store described by the config
func NewS3Uploader(config util.ObjectStoreConfig) (*S3Uploader, error) {
	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKey, config.SecretKey, ""),
		Secure: config.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &S3Uploader{client: client, bucket: config.Bucket}, nil
}

// Upload implements the Uploader interface
func (u *S3Uploader) Upload(ctx context.Context, localPath string, objectName string) error {
	_, err := u.client.FPutObject(ctx, u.bucket, objectName, localPath, minio.PutObjectOptions{
		ContentType: "image/tiff",
	})
	return err
}

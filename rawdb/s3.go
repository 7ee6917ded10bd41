package rawdb

import (
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
)

// S3Backup uploads point-in-time snapshots of a store to an S3 bucket.
type S3Backup struct {
	uploader s3manageriface.UploaderAPI
	bucket   string
	prefix   string
}

func NewS3Backup(accKey, secretKey, region, bucket, prefix, endpoint string) (*S3Backup, error) {
	mySession := session.Must(session.NewSession())
	cred := credentials.NewStaticCredentials(accKey, secretKey, "")
	cfgs := aws.NewConfig().WithRegion(region).WithCredentials(cred)
	if endpoint != "" {
		cfgs.WithEndpoint(endpoint) // inject endpoint
		// if endpoint is an IP address, use path-style addressing.
		if u, err := url.Parse(endpoint); err == nil {
			if net.ParseIP(u.Hostname()) != nil {
				cfgs.S3ForcePathStyle = aws.Bool(true)
			}
		}
	}
	s3Api := s3.New(mySession, cfgs)
	if err := createS3Bucket(s3Api, bucket); err != nil {
		return nil, err
	}

	log.Info("run with s3 backup success", "bucket", bucket)
	return NewS3BackupWithUploader(&s3manager.Uploader{S3: s3Api, PartSize: s3manager.DefaultUploadPartSize, Concurrency: s3manager.DefaultUploadConcurrency}, bucket, prefix), nil
}

func NewS3BackupWithUploader(uploader s3manageriface.UploaderAPI, bucket, prefix string) *S3Backup {
	return &S3Backup{uploader: uploader, bucket: strings.ToLower(bucket), prefix: prefix}
}

// Upload streams a snapshot of db and returns the object key.
func (s *S3Backup) Upload(db Snapshotter, now time.Time) (string, error) {
	key := SnapshotKey(s.prefix, now)
	pr, pw := io.Pipe()
	go func() {
		_, err := db.Snapshot(pw)
		pw.CloseWithError(err)
	}()

	_, err := s.uploader.Upload(&s3manager.UploadInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   pr,
	})
	// unblock the writer when the upload aborted early
	pr.CloseWithError(err)
	if err != nil {
		return "", err
	}
	return key, nil
}

func SnapshotKey(prefix string, now time.Time) string {
	name := fmt.Sprintf("%s.%s", now.UTC().Format("20060102T150405Z"), boltName)
	if prefix == "" {
		return name
	}
	return strings.TrimSuffix(prefix, "/") + "/" + name
}

func createS3Bucket(svc s3iface.S3API, bucket string) error {
	// s3 bucket name only accept lower case
	_, err := svc.CreateBucket(&s3.CreateBucketInput{Bucket: aws.String(strings.ToLower(bucket))})
	if err != nil && !strings.Contains(err.Error(), "BucketAlreadyOwnedByYou") {
		return err
	}
	return nil
}

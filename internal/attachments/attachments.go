package attachments

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Presigner is the slice of *s3.PresignClient the resolver needs.
type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

var _ Presigner = (*s3.PresignClient)(nil)

// Resolver turns attachment ids into short-lived download URLs on the
// media bucket.
type Resolver struct {
	bucket    string
	presigner Presigner
}

func NewResolver(bucket string, presigner Presigner) *Resolver {
	return &Resolver{bucket: bucket, presigner: presigner}
}

func objectKey(topicID, attachmentID string) string {
	return fmt.Sprintf("attachments/topics/%s/%s", topicID, attachmentID)
}

func (r *Resolver) DownloadURL(ctx context.Context, topicID, attachmentID string) (string, error) {
	req, err := r.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(objectKey(topicID, attachmentID)),
	}, func(o *s3.PresignOptions) {
		o.Expires = 5 * time.Minute
	})
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

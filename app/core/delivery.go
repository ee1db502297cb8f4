// Author: Eryk Kulikowski @ KU Leuven (2023). Apache 2.0 License

package core

import (
	"bytes"
	"context"
	"time"

	"bimexport/app/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	cfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const presignedUrlExpiration = 15 * time.Minute

func newS3Client(ctx context.Context) (*s3.Client, error) {
	awsConfig, err := cfg.LoadDefaultConfig(ctx,
		cfg.WithRegion(config.GetConfig().Options.S3Config.AWSRegion),
	)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(config.GetConfig().Options.S3Config.AWSEndpoint)
		o.UsePathStyle = config.GetConfig().Options.S3Config.AWSPathstyle
	}), nil
}

// DeliverExport uploads an export result to the delivery bucket and returns a
// presigned download url for it.
func DeliverExport(ctx context.Context, key string, result ExportResult) (string, error) {
	client, err := newS3Client(ctx)
	if err != nil {
		return "", err
	}
	bucket := config.GetConfig().Options.S3Config.AWSBucket
	uploader := manager.NewUploader(client)
	_, err = uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(result.Data),
		ContentType: aws.String(result.ContentType),
	})
	if err != nil {
		return "", err
	}
	presignClient := s3.NewPresignClient(client)
	presigned, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, func(o *s3.PresignOptions) {
		o.Expires = presignedUrlExpiration
	})
	if err != nil {
		return "", err
	}
	return presigned.URL, nil
}

// Copyright (c) 2026 Eduvia. All rights reserved.
// Author: platform@eduvia.io

/*
Package storage provides the external asset host for user avatars.

It wraps an S3-compatible object store (Cloudflare R2, MinIO, AWS S3). The
[AssetStore] interface is what domain services depend on; the S3 client is
wired in at startup.
*/
package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Asset is a stored object reference: the key under which it lives and the
// public URL it is served from.
type Asset struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
}

// AssetStore uploads and deletes binary assets on the external host.
type AssetStore interface {

	/*
		Upload stores body under a generated key and returns its reference.

		Parameters:
		  - context: context.Context
		  - key: string (object key, e.g. "avatars/<uuid>")
		  - contentType: string
		  - body: []byte

		Returns:
		  - Asset: Public reference of the stored object
		  - error: Transport or credential failures
	*/
	Upload(context context.Context, key, contentType string, body []byte) (Asset, error)

	/*
		Delete removes the object with the given key.

		Parameters:
		  - context: context.Context
		  - publicID: string

		Returns:
		  - error: Transport failures. Deleting a missing object is not an error.
	*/
	Delete(context context.Context, publicID string) error
}

// # S3 Implementation

// S3Config holds the connection settings for the S3-compatible asset host.
type S3Config struct {
	Bucket        string
	Region        string
	Endpoint      string
	AccessKeyID   string
	SecretKey     string
	PublicBaseURL string
}

// S3Store implements [AssetStore] against an S3-compatible endpoint.
type S3Store struct {
	client *s3.Client
	cfg    S3Config
}

// NewS3Store builds the S3 client with static credentials and an optional
// custom endpoint (R2/MinIO).
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(options *s3.Options) {
		if cfg.Endpoint != "" {
			options.BaseEndpoint = aws.String(cfg.Endpoint)
			// Path-style addressing is required by most S3-compatible stores.
			options.UsePathStyle = true
		}
	})

	return &S3Store{client: client, cfg: cfg}, nil
}

// Upload stores the object and returns its public reference.
func (store *S3Store) Upload(context context.Context, key, contentType string, body []byte) (Asset, error) {
	_, err := store.client.PutObject(context, &s3.PutObjectInput{
		Bucket:      aws.String(store.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return Asset{}, fmt.Errorf("storage_upload_failed: %w", err)
	}

	return Asset{
		PublicID: key,
		URL:      store.publicURL(key),
	}, nil
}

// Delete removes the object. S3 DeleteObject is idempotent, so deleting an
// already-removed avatar succeeds.
func (store *S3Store) Delete(context context.Context, publicID string) error {
	_, err := store.client.DeleteObject(context, &s3.DeleteObjectInput{
		Bucket: aws.String(store.cfg.Bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return fmt.Errorf("storage_delete_failed: %w", err)
	}
	return nil
}

// publicURL joins the configured CDN base with the object key.
func (store *S3Store) publicURL(key string) string {
	base := strings.TrimSuffix(store.cfg.PublicBaseURL, "/")
	return base + "/" + key
}

package main

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/zzstoatzz/slate/blobstore"
	minioblob "github.com/zzstoatzz/slate/blobstore/minio"
	s3blob "github.com/zzstoatzz/slate/blobstore/s3"
	"github.com/zzstoatzz/slate/engine"
)

// mirrorOptions turns a --mirror URI into engine options. Supported forms:
//
//	file:///path/to/dir          local directory, CURRENT-file commit pointer
//	s3://bucket/prefix           S3, DynamoDB commit pointer when --commit-table is set
//	minio://endpoint/bucket/pfx  MinIO or other S3-compatible storage
//
// S3 credentials come from the default AWS chain; MinIO credentials from
// MINIO_ACCESS_KEY / MINIO_SECRET_KEY.
func mirrorOptions(ctx context.Context, mirrorURI, commitTable string) ([]engine.Option, error) {
	if mirrorURI == "" {
		return nil, nil
	}

	u, err := url.Parse(mirrorURI)
	if err != nil {
		return nil, fmt.Errorf("parse mirror URI: %w", err)
	}

	switch u.Scheme {
	case "file":
		store, err := blobstore.NewLocalStore(u.Path)
		if err != nil {
			return nil, fmt.Errorf("open local mirror: %w", err)
		}
		return []engine.Option{engine.WithMirror(store, store)}, nil

	case "s3":
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		store := s3blob.NewStore(awss3.NewFromConfig(cfg), u.Host, strings.TrimPrefix(u.Path, "/"))

		var commits blobstore.CommitStore
		if commitTable != "" {
			commits = s3blob.NewDDBCommitStore(dynamodb.NewFromConfig(cfg), commitTable, mirrorURI)
		}
		return []engine.Option{engine.WithMirror(store, commits)}, nil

	case "minio":
		bucket, prefix, ok := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
		if !ok || bucket == "" {
			return nil, fmt.Errorf("minio mirror URI needs endpoint/bucket: %s", mirrorURI)
		}
		client, err := minio.New(u.Host, &minio.Options{
			Creds:  credentials.NewEnvMinio(),
			Secure: u.Query().Get("insecure") != "true",
		})
		if err != nil {
			return nil, fmt.Errorf("connect to MinIO: %w", err)
		}
		return []engine.Option{engine.WithMirror(minioblob.NewStore(client, bucket, prefix), nil)}, nil

	default:
		return nil, fmt.Errorf("unsupported mirror scheme %q (want file, s3, or minio)", u.Scheme)
	}
}

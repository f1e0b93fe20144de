package discovery

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/fsroutes/pkg/router"
)

// S3 discovers route files stored in an S3 bucket, for example a deployed
// source bundle.
//
// Example usage:
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	src := discovery.S3{
//	    Client: s3.NewFromConfig(cfg),
//	    Bucket: "my-bucket",
//	    Prefix: "site/src/views/",
//	}
type S3 struct {
	// Client lists objects. *s3.Client satisfies it.
	Client s3.ListObjectsV2APIClient

	// Bucket is the bucket name.
	Bucket string

	// Prefix is the key prefix that corresponds to Folder.
	Prefix string

	// Folder is the path the router sees Prefix as.
	// Default: router.DefaultRouterPathFolder
	Folder string

	// IndexFileName selects routable files.
	// Default: router.DefaultIndexFileName
	IndexFileName string
}

// Discover lists every key below Prefix and returns one module per index file.
func (s S3) Discover(ctx context.Context) ([]router.Module, error) {
	if s.Client == nil {
		return nil, fmt.Errorf("s3 discovery: no client configured")
	}

	folder := s.Folder
	if folder == "" {
		folder = router.DefaultRouterPathFolder
	}
	index := s.IndexFileName
	if index == "" {
		index = router.DefaultIndexFileName
	}

	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.Bucket),
	}
	if s.Prefix != "" {
		input.Prefix = aws.String(s.Prefix)
	}

	var modules []router.Module

	paginator := s3.NewListObjectsV2Paginator(s.Client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3 list %s/%s failed: %w", s.Bucket, s.Prefix, err)
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			rel := strings.TrimPrefix(strings.TrimPrefix(key, s.Prefix), "/")
			if rel == "" || !hasIndexSuffix(rel, index) {
				continue
			}

			modPath := modulePath(folder, rel)
			modules = append(modules, router.Module{
				Path:   modPath,
				Loader: FileRef{Path: modPath, Location: "s3://" + s.Bucket + "/" + key},
			})
		}
	}

	sortModules(modules)
	return modules, nil
}

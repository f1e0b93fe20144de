package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/fsroutes/internal/config"
	"github.com/vango-dev/fsroutes/internal/errors"
	"github.com/vango-dev/fsroutes/pkg/discovery"
	"github.com/vango-dev/fsroutes/pkg/luahook"
	"github.com/vango-dev/fsroutes/pkg/manifest"
	"github.com/vango-dev/fsroutes/pkg/router"
)

// project bundles what every command needs from fsroutes.json.
type project struct {
	cfg    *config.Config
	source discovery.Source
	hooks  *luahook.Hooks
}

// loadProject reads the config named by --config, or the nearest one above
// the working directory, and builds the discovery source.
func loadProject() (*project, error) {
	var (
		cfg *config.Config
		err error
	)
	if configFile != "" {
		cfg, err = config.LoadFile(configFile)
	} else {
		cfg, err = config.LoadFromWorkingDir()
	}
	if err != nil {
		return nil, err
	}

	source, err := newSource(cfg)
	if err != nil {
		return nil, err
	}
	return &project{cfg: cfg, source: source}, nil
}

// newSource returns the discovery source the config selects.
func newSource(cfg *config.Config) (discovery.Source, error) {
	switch cfg.Source.Kind {
	case config.SourceS3:
		return discovery.S3{
			Client:        newS3Client(cfg.Source.Region),
			Bucket:        cfg.Source.Bucket,
			Prefix:        cfg.Source.Prefix,
			Folder:        cfg.Routes.RouterPathFolder,
			IndexFileName: cfg.Routes.IndexFileName,
		}, nil
	default:
		root := cfg.RoutesPath()
		if _, err := os.Stat(root); err != nil {
			return nil, errors.New("E201").
				WithDetail("Routes folder " + root + " does not exist").
				Wrap(err)
		}
		return discovery.Dir{
			Root:          root,
			Folder:        cfg.Routes.RouterPathFolder,
			IndexFileName: cfg.Routes.IndexFileName,
		}, nil
	}
}

// newS3Client builds an S3 client from the standard AWS environment
// variables. Without an access key the client makes anonymous requests,
// which is enough for public buckets. AWS_ENDPOINT_URL selects an
// S3-compatible endpoint such as MinIO.
func newS3Client(region string) *s3.Client {
	if region == "" {
		region = firstEnv("AWS_REGION", "AWS_DEFAULT_REGION")
	}

	opts := s3.Options{
		Region:      region,
		Credentials: aws.AnonymousCredentials{},
	}
	if key := os.Getenv("AWS_ACCESS_KEY_ID"); key != "" {
		opts.Credentials = aws.NewCredentialsCache(credentials{
			AccessKeyID:     key,
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
			Source:          "Environment",
		})
	}
	if endpoint := os.Getenv("AWS_ENDPOINT_URL"); endpoint != "" {
		opts.BaseEndpoint = aws.String(endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts)
}

// credentials is a fixed aws.CredentialsProvider.
type credentials aws.Credentials

func (c credentials) Retrieve(context.Context) (aws.Credentials, error) {
	return aws.Credentials(c), nil
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

// routerOptions builds router options from the config and applies the hook
// script, if one is configured. Hooks loaded by an earlier call are closed.
func (p *project) routerOptions() (router.Options, error) {
	opts, err := p.cfg.RouterOptions()
	if err != nil {
		return router.Options{}, err
	}
	opts.Logger = slog.Default()

	p.closeHooks()

	path := p.cfg.HooksPath()
	if path == "" {
		return opts, nil
	}

	hooks, err := luahook.LoadFile(path)
	if err != nil {
		return router.Options{}, errors.New("E301").
			Wrap(err).
			WithLocationFromError(err)
	}
	hooks.Apply(&opts)
	p.hooks = hooks

	slog.Debug("loaded hooks", "path", path)
	return opts, nil
}

func (p *project) closeHooks() {
	if p.hooks != nil {
		p.hooks.Close()
		p.hooks = nil
	}
}

// encodeOptions returns the manifest options from the output section.
func (p *project) encodeOptions() manifest.EncodeOptions {
	return manifest.EncodeOptions{
		RawPathKey:       p.cfg.Routes.RawPathKey,
		RelativeChildren: p.cfg.Output.RelativeChildren,
	}
}

// generate discovers modules and compiles them into routes.
func (p *project) generate(ctx context.Context, opts router.Options) ([]*router.Route, error) {
	modules, err := p.source.Discover(ctx)
	if err != nil {
		code := "E202"
		if p.cfg.Source.Kind == config.SourceS3 {
			code = "E203"
		}
		return nil, errors.New(code).Wrap(err)
	}
	slog.Debug("discovered modules", "count", len(modules))

	routes, err := router.New(opts).GenerateContext(ctx, modules)
	if err != nil {
		return nil, errors.New("E302").Wrap(err).WithLocationFromError(err)
	}
	return routes, nil
}

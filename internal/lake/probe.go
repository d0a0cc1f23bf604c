// Package lake checks the object storage behind a DuckLake data path.
package lake

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"lake-crud/internal/config"
)

// defaultRegion is used when no region is configured; S3-compatible stores
// generally ignore it but request signing needs one.
const defaultRegion = "us-east-1"

// Location is a parsed s3:// data path.
type Location struct {
	Bucket string
	Prefix string
}

func (l Location) String() string {
	if l.Prefix == "" {
		return "s3://" + l.Bucket
	}
	return "s3://" + l.Bucket + "/" + l.Prefix
}

// ParseS3Path splits an "s3://bucket/optional/prefix/" URI.
func ParseS3Path(p string) (Location, error) {
	u, err := url.Parse(p)
	if err != nil {
		return Location{}, fmt.Errorf("parse S3 path %q: %w", p, err)
	}
	if u.Scheme != "s3" {
		return Location{}, fmt.Errorf("expected s3:// scheme, got %q in %q", u.Scheme, p)
	}
	if u.Host == "" {
		return Location{}, fmt.Errorf("empty bucket in S3 path %q", p)
	}
	return Location{Bucket: u.Host, Prefix: strings.Trim(u.Path, "/")}, nil
}

// S3Probe checks that a lake data path can be reached with the configured
// credentials.
type S3Probe struct {
	client *s3.Client
}

// NewS3Probe creates a probe for the S3-compatible store described by s.
// Path-style addressing is used when s.URLStyle is "path".
func NewS3Probe(s config.S3Settings) *S3Probe {
	region := s.Region
	if region == "" {
		region = defaultRegion
	}
	opts := s3.Options{
		Region:       region,
		Credentials:  credentials.NewStaticCredentialsProvider(s.KeyID, s.Secret, ""),
		UsePathStyle: s.URLStyle == "path",
	}
	if s.Endpoint != "" {
		endpoint := s.Endpoint
		if !strings.Contains(endpoint, "://") {
			endpoint = "https://" + endpoint
		}
		opts.BaseEndpoint = aws.String(endpoint)
	}
	return &S3Probe{client: s3.New(opts)}
}

// CheckResult reports what the probe found.
type CheckResult struct {
	Location Location `json:"-"`
	Path     string   `json:"path"`
	// HasObjects is true when at least one object exists under the prefix,
	// i.e. the lake has written data before.
	HasObjects bool `json:"has_objects"`
}

// Check verifies that the bucket of dataPath exists and is readable, and
// whether anything has been written under its prefix yet.
func (p *S3Probe) Check(ctx context.Context, dataPath string) (CheckResult, error) {
	loc, err := ParseS3Path(dataPath)
	if err != nil {
		return CheckResult{}, err
	}

	if _, err := p.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(loc.Bucket)}); err != nil {
		return CheckResult{}, fmt.Errorf("head bucket %q: %w", loc.Bucket, err)
	}

	in := &s3.ListObjectsV2Input{
		Bucket:  aws.String(loc.Bucket),
		MaxKeys: aws.Int32(1),
	}
	if loc.Prefix != "" {
		in.Prefix = aws.String(loc.Prefix + "/")
	}
	out, err := p.client.ListObjectsV2(ctx, in)
	if err != nil {
		return CheckResult{}, fmt.Errorf("list %s: %w", loc, err)
	}

	return CheckResult{
		Location:   loc,
		Path:       loc.String(),
		HasObjects: len(out.Contents) > 0,
	}, nil
}

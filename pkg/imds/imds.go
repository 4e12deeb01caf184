// Package imds provides functions for interacting with the AWS Instance Metadata Service.
package imds

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	imdsTokenURL    = "http://169.254.169.254/latest/api/token"
	imdsMetadataURL = "http://169.254.169.254/latest/meta-data"

	headerToken = "X-aws-ec2-metadata-token"
	headerTTL   = "X-aws-ec2-metadata-token-ttl-seconds"

	defaultTokenTTL = 21600 // 6 hours in seconds
)

// Identity is the set of instance metadata the monitor tags its
// metric data with.
type Identity struct {
	InstanceID       string `json:"instance_id"`
	ImageID          string `json:"image_id"`
	InstanceType     string `json:"instance_type"`
	AvailabilityZone string `json:"availability_zone"`
	Region           string `json:"region"`
}

// FetchIdentity fetches the instance identity metadata using IMDSv2.
// All values are required; a missing field fails the whole fetch.
func FetchIdentity(ctx context.Context) (Identity, error) {
	return fetchIdentity(ctx, imdsTokenURL, imdsMetadataURL)
}

func fetchIdentity(ctx context.Context, tokenURL string, metadataURL string) (Identity, error) {
	identity := Identity{}

	var err error
	if identity.InstanceID, err = fetchMetadataByPath(ctx, tokenURL, metadataURL+"/instance-id"); err != nil {
		return Identity{}, fmt.Errorf("failed to fetch instance id: %w", err)
	}
	if identity.ImageID, err = fetchMetadataByPath(ctx, tokenURL, metadataURL+"/ami-id"); err != nil {
		return Identity{}, fmt.Errorf("failed to fetch image id: %w", err)
	}
	if identity.InstanceType, err = fetchMetadataByPath(ctx, tokenURL, metadataURL+"/instance-type"); err != nil {
		return Identity{}, fmt.Errorf("failed to fetch instance type: %w", err)
	}
	if identity.AvailabilityZone, err = fetchMetadataByPath(ctx, tokenURL, metadataURL+"/placement/availability-zone"); err != nil {
		return Identity{}, fmt.Errorf("failed to fetch availability zone: %w", err)
	}

	identity.Region = RegionFromAvailabilityZone(identity.AvailabilityZone)
	if identity.Region == "" {
		return Identity{}, fmt.Errorf("invalid availability zone %q", identity.AvailabilityZone)
	}

	return identity, nil
}

// RegionFromAvailabilityZone derives the region name from an availability
// zone by dropping the trailing zone letter (e.g., "us-east-1a" -> "us-east-1").
func RegionFromAvailabilityZone(az string) string {
	az = strings.TrimSpace(az)
	if len(az) < 2 {
		return ""
	}
	return az[:len(az)-1]
}

// FetchToken fetches a session token for instance metadata service v2.
// ref. https://docs.aws.amazon.com/AWSEC2/latest/UserGuide/configuring-instance-metadata-service.html
// e.g., curl -X PUT "http://169.254.169.254/latest/api/token" -H "X-aws-ec2-metadata-token-ttl-seconds: 21600"
func FetchToken(ctx context.Context) (string, error) {
	return fetchToken(ctx, imdsTokenURL)
}

// fetchToken retrieves a session token from the IMDSv2 endpoint.
func fetchToken(ctx context.Context, url string) (string, error) {
	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create IMDS token request: %w", err)
	}
	req.Header.Set(headerTTL, fmt.Sprintf("%d", defaultTokenTTL))

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch IMDS token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch IMDS token: received status code %d", resp.StatusCode)
	}

	tokenBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read IMDS token response body: %w", err)
	}

	return strings.TrimSpace(string(tokenBytes)), nil
}

// FetchMetadata fetches EC2 instance metadata using IMDSv2 at the specified path.
// ref. https://docs.aws.amazon.com/AWSEC2/latest/UserGuide/instancedata-data-retrieval.html
// e.g., curl -H "X-aws-ec2-metadata-token: $TOKEN" http://169.254.169.254/latest/meta-data/instance-id
func FetchMetadata(ctx context.Context, path string) (string, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return fetchMetadataByPath(ctx, imdsTokenURL, imdsMetadataURL+path)
}

// fetchMetadataByPath retrieves EC2 instance metadata from the specified path using IMDSv2.
func fetchMetadataByPath(ctx context.Context, tokenURL string, metadataURL string) (string, error) {
	token, err := fetchToken(ctx, tokenURL)
	if err != nil {
		return "", err
	}

	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, metadataURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create metadata request: %w", err)
	}
	req.Header.Set(headerToken, token)

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch metadata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch metadata: received status code %d", resp.StatusCode)
	}

	metadataBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read metadata response body: %w", err)
	}

	return strings.TrimSpace(string(metadataBytes)), nil
}

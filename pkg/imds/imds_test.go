package imds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "test-imds-token"

// newTestIMDS serves the IMDSv2 token endpoint and the given metadata
// paths, rejecting metadata requests without the session token.
func newTestIMDS(t *testing.T, metadata map[string]string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if r.Header.Get(headerTTL) == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(testToken + "\n"))
	})
	mux.HandleFunc("/meta-data/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(headerToken) != testToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		v, ok := metadata[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(v))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchIdentity(t *testing.T) {
	srv := newTestIMDS(t, map[string]string{
		"/meta-data/instance-id":                 "i-0123456789abcdef0\n",
		"/meta-data/ami-id":                      "ami-0abcdef1234567890\n",
		"/meta-data/instance-type":               "p4d.24xlarge\n",
		"/meta-data/placement/availability-zone": "us-east-1a\n",
	})

	identity, err := fetchIdentity(context.Background(), srv.URL+"/token", srv.URL+"/meta-data")
	require.NoError(t, err)

	// values must be trimmed text, not raw response bytes
	assert.Equal(t, "i-0123456789abcdef0", identity.InstanceID)
	assert.Equal(t, "ami-0abcdef1234567890", identity.ImageID)
	assert.Equal(t, "p4d.24xlarge", identity.InstanceType)
	assert.Equal(t, "us-east-1a", identity.AvailabilityZone)
	assert.Equal(t, "us-east-1", identity.Region)
}

func TestFetchIdentityMissingField(t *testing.T) {
	srv := newTestIMDS(t, map[string]string{
		"/meta-data/instance-id": "i-0123456789abcdef0",
	})

	_, err := fetchIdentity(context.Background(), srv.URL+"/token", srv.URL+"/meta-data")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "image id")
}

func TestFetchIdentityServerDown(t *testing.T) {
	srv := newTestIMDS(t, nil)
	srv.Close()

	_, err := fetchIdentity(context.Background(), srv.URL+"/token", srv.URL+"/meta-data")
	assert.Error(t, err)
}

func TestFetchMetadataByPath(t *testing.T) {
	srv := newTestIMDS(t, map[string]string{
		"/meta-data/instance-type": "  g5.xlarge  ",
	})

	v, err := fetchMetadataByPath(context.Background(), srv.URL+"/token", srv.URL+"/meta-data/instance-type")
	require.NoError(t, err)
	assert.Equal(t, "g5.xlarge", v)
}

func TestFetchTokenRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := fetchToken(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestRegionFromAvailabilityZone(t *testing.T) {
	tests := []struct {
		az   string
		want string
	}{
		{az: "us-east-1a", want: "us-east-1"},
		{az: "eu-west-2c", want: "eu-west-2"},
		{az: "ap-northeast-1d ", want: "ap-northeast-1"},
		{az: "", want: ""},
		{az: "a", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.az, func(t *testing.T) {
			assert.Equal(t, tt.want, RegionFromAvailabilityZone(tt.az))
		})
	}
}

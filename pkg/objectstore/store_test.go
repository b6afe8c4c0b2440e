package objectstore

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keyPattern = regexp.MustCompile(`^kappa-documents/[0-9a-f-]{36}_report\.pdf$`)

func TestObjectKey(t *testing.T) {
	key := ObjectKey("kappa-documents", "report.pdf")
	assert.Regexp(t, keyPattern, key)

	assert.NotEqual(t, key, ObjectKey("kappa-documents", "report.pdf"))
}

func TestObjectKey_StripsDirectories(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		suffix   string
	}{
		{"unix path", "../../etc/passwd", "_passwd"},
		{"windows path", `C:\Users\me\scan.png`, "_scan.png"},
		{"empty", "", "_upload"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := ObjectKey("djinn-images", tt.filename)
			assert.True(t, strings.HasPrefix(key, "djinn-images/"), key)
			assert.True(t, strings.HasSuffix(key, tt.suffix), key)
			assert.Equal(t, 1, strings.Count(key, "/"), key)
		})
	}
}

func TestURIRoundTrip(t *testing.T) {
	uri := FormatURI("selkie-documents", "ghost-recordings/abc_rec.wav")
	assert.Equal(t, "minio:selkie-documents/ghost-recordings/abc_rec.wav", uri)

	bucket, key, err := ParseURI(uri)
	require.NoError(t, err)
	assert.Equal(t, "selkie-documents", bucket)
	assert.Equal(t, "ghost-recordings/abc_rec.wav", key)
}

func TestParseURI_Invalid(t *testing.T) {
	for _, uri := range []string{"", "s3://bucket/key", "minio:", "minio:bucket", "minio:/key", "minio:bucket/"} {
		_, _, err := ParseURI(uri)
		assert.ErrorIs(t, err, ErrInvalidURI, uri)
	}
}

func TestNewMinioStore(t *testing.T) {
	s, err := NewMinioStore(Config{
		Endpoint:  "objectstore:9000",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Bucket:    "selkie-documents",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "selkie-documents", s.bucket)
}

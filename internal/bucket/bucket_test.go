package bucket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveURL(t *testing.T) {
	b := &Bucket{Config: &Config{
		S3Endpoint:   "fra1.digitaloceanspaces.com",
		S3BucketName: "marketplace-media",
		BaseFolder:   "products",
	}}

	assert.Nil(t, b.ResolveURL(""))

	abs := "https://cdn.example.com/img/1.jpg"
	got := b.ResolveURL(abs)
	require.NotNil(t, got)
	assert.Equal(t, abs, *got)

	got = b.ResolveURL("http://legacy.example.com/img/2.jpg")
	require.NotNil(t, got)
	assert.Equal(t, "http://legacy.example.com/img/2.jpg", *got)

	got = b.ResolveURL("2024/sneaker-front.jpg")
	require.NotNil(t, got)
	assert.Equal(t, "https://marketplace-media.fra1.digitaloceanspaces.com/products/2024/sneaker-front.jpg", *got)

	got = b.ResolveURL("/2024/sneaker-front.jpg")
	require.NotNil(t, got)
	assert.Equal(t, "https://marketplace-media.fra1.digitaloceanspaces.com/products/2024/sneaker-front.jpg", *got)
}

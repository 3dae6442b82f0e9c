package services

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatepulse-http-service/internal/infrastructure/config"
)

func newTestStorage(t *testing.T, publicBaseURL string) *StorageService {
	t.Helper()
	return &StorageService{Config: &config.Config{
		StorageRoot:          t.TempDir(),
		StorageBucket:        "visitor-selfies",
		StoragePublicBaseURL: publicBaseURL,
		StorageSigningKey:    "test-signing-key",
	}}
}

func TestParseDataURL(t *testing.T) {
	contentType, extension, payload, err := ParseDataURL("data:image/png;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)
	assert.Equal(t, "png", extension)
	assert.Equal(t, []byte("hello"), payload)

	// 子类型带"+"时取前半段
	_, extension, _, err = ParseDataURL("data:image/svg+xml;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "svg", extension)
}

func TestParseDataURLMalformed(t *testing.T) {
	malformed := []string{
		"",
		"not a data url",
		"data:text/plain;base64,aGVsbG8=",      // 非图片
		"data:image/png,aGVsbG8=",               // 缺少base64标记
		"data:image/png;base64,",                // 空内容
		"data:image/png;base64,not***base64!!!", // 非法base64
	}
	for _, input := range malformed {
		_, _, _, err := ParseDataURL(input)
		assert.ErrorIs(t, err, ErrMalformedDataURL, "input=%q", input)
	}
}

func TestNormalizeSelfiePath(t *testing.T) {
	cases := []struct {
		ref  string
		want string
	}{
		{"abc.jpg", "abc.jpg"},
		{"/abc.jpg", "abc.jpg"},
		{"visitor-selfies/abc.jpg", "abc.jpg"},
		{"/visitor-selfies/abc.jpg", "abc.jpg"},
		{"  visitor-selfies/abc.jpg  ", "abc.jpg"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeSelfiePath(tc.ref, "visitor-selfies"), "ref=%q", tc.ref)
	}
}

func TestSaveSelfieWritesObject(t *testing.T) {
	storage := newTestStorage(t, "")

	ref, err := storage.SaveSelfie("data:image/jpeg;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "visitor-selfies/"))
	assert.True(t, strings.HasSuffix(ref, ".jpeg"))

	path, err := storage.ObjectPath(NormalizeSelfiePath(ref, "visitor-selfies"))
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
}

func TestSaveSelfieRejectsMalformed(t *testing.T) {
	storage := newTestStorage(t, "")
	_, err := storage.SaveSelfie("not a data url")
	assert.ErrorIs(t, err, ErrMalformedDataURL)
}

func TestObjectPathRejectsTraversal(t *testing.T) {
	storage := newTestStorage(t, "")
	_, err := storage.ObjectPath("../secret.txt")
	assert.Error(t, err)
	_, err = storage.ObjectPath("")
	assert.Error(t, err)
}

func TestResolveDisplayURLPassthrough(t *testing.T) {
	storage := newTestStorage(t, "")

	// 绝对URL原样返回
	absolute := "https://cdn.example.com/x.jpg"
	resolved := storage.ResolveDisplayURL(absolute)
	require.NotNil(t, resolved)
	assert.Equal(t, absolute, *resolved)

	assert.Nil(t, storage.ResolveDisplayURL(""))
	assert.Nil(t, storage.ResolveDisplayURL("   "))
}

func TestResolveDisplayURLPublicBucket(t *testing.T) {
	storage := newTestStorage(t, "https://files.example.com/")

	resolved := storage.ResolveDisplayURL("visitor-selfies/abc.jpg")
	require.NotNil(t, resolved)
	assert.Equal(t, "https://files.example.com/visitor-selfies/abc.jpg", *resolved)

	// 前导斜杠和桶名前缀都会被剥离
	resolved = storage.ResolveDisplayURL("/visitor-selfies/abc.jpg")
	require.NotNil(t, resolved)
	assert.Equal(t, "https://files.example.com/visitor-selfies/abc.jpg", *resolved)

	assert.True(t, storage.PublicAccess())
}

func TestResolveDisplayURLSignedFallback(t *testing.T) {
	storage := newTestStorage(t, "")
	assert.False(t, storage.PublicAccess())

	resolved := storage.ResolveDisplayURL("abc.jpg")
	require.NotNil(t, resolved)
	assert.True(t, strings.HasPrefix(*resolved, "/files/visitor-selfies/abc.jpg?"))

	parsed, err := url.Parse(*resolved)
	require.NoError(t, err)
	expires, err := strconv.ParseInt(parsed.Query().Get("expires"), 10, 64)
	require.NoError(t, err)
	assert.True(t, storage.VerifySignature("abc.jpg", expires, parsed.Query().Get("sig")))
}

func TestVerifySignature(t *testing.T) {
	storage := newTestStorage(t, "")

	signed, err := storage.SignedURL("abc.jpg", SignedURLTTL)
	require.NoError(t, err)
	parsed, err := url.Parse(signed)
	require.NoError(t, err)

	expires, err := strconv.ParseInt(parsed.Query().Get("expires"), 10, 64)
	require.NoError(t, err)
	sig := parsed.Query().Get("sig")

	assert.True(t, storage.VerifySignature("abc.jpg", expires, sig))
	// 对象名或签名不匹配
	assert.False(t, storage.VerifySignature("other.jpg", expires, sig))
	assert.False(t, storage.VerifySignature("abc.jpg", expires, "deadbeef"))
	// 过期时间戳直接拒绝
	expired := time.Now().Add(-time.Minute).Unix()
	assert.False(t, storage.VerifySignature("abc.jpg", expired, sig))
}

func TestSignedURLRequiresKey(t *testing.T) {
	storage := newTestStorage(t, "")
	storage.Config.StorageSigningKey = ""
	_, err := storage.SignedURL("abc.jpg", SignedURLTTL)
	assert.Error(t, err)
}

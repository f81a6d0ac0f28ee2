package assets

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"driftchat/internal/utils"
)

// Asset URIs look like
// https://res.cloudinary.com/<cloud>/image/upload/v<version>/<folder>/<public_id>.<ext>
// and the destroy API wants the public ID including the folder path.
var publicIDPattern = regexp.MustCompile(`/v\d+/(.+)\.\w+$`)

// ExtractPublicID derives the asset store public ID from a delivery URI.
// Returns "" when the URI does not look like a managed asset.
func ExtractPublicID(uri string) string {
	if uri == "" {
		return ""
	}
	if match := publicIDPattern.FindStringSubmatch(uri); match != nil {
		return match[1]
	}

	// Fallback for unversioned URIs: last path segment without extension.
	parts := strings.Split(uri, "/")
	last := parts[len(parts)-1]
	if last == "" {
		return ""
	}
	if dot := strings.LastIndex(last, "."); dot > 0 {
		return last[:dot]
	}
	return last
}

// CloudinaryStore deletes assets through the Cloudinary-compatible destroy
// endpoint, authenticated with a SHA-1 request signature.
type CloudinaryStore struct {
	cloudName string
	apiKey    string
	apiSecret string
	baseURL   string
	client    *http.Client
}

func NewCloudinaryStore(cloudName, apiKey, apiSecret string) *CloudinaryStore {
	return &CloudinaryStore{
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		baseURL:   "https://api.cloudinary.com/v1_1",
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// NewCloudinaryStoreWithBase is used by tests to point the store at a local
// HTTP server.
func NewCloudinaryStoreWithBase(cloudName, apiKey, apiSecret, baseURL string) *CloudinaryStore {
	s := NewCloudinaryStore(cloudName, apiKey, apiSecret)
	s.baseURL = strings.TrimSuffix(baseURL, "/")
	return s
}

type destroyResponse struct {
	Result string `json:"result"`
}

// DeleteAsset destroys the asset behind uri. A "not found" result from the
// store counts as success: the asset is gone either way.
func (s *CloudinaryStore) DeleteAsset(ctx context.Context, uri string) error {
	publicID := ExtractPublicID(uri)
	if publicID == "" {
		return utils.NewValidationError("asset URI has no extractable public ID")
	}

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	signature := s.sign(publicID, timestamp)

	form := url.Values{}
	form.Set("public_id", publicID)
	form.Set("timestamp", timestamp)
	form.Set("api_key", s.apiKey)
	form.Set("signature", signature)

	endpoint := fmt.Sprintf("%s/%s/image/destroy", s.baseURL, s.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return utils.NewUpstreamAssetError(uri, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return utils.NewUpstreamAssetError(uri, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return utils.NewUpstreamAssetError(uri, fmt.Errorf("destroy returned status %d", resp.StatusCode))
	}

	var body destroyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return utils.NewUpstreamAssetError(uri, err)
	}
	if body.Result != "ok" && body.Result != "not found" {
		return utils.NewUpstreamAssetError(uri, fmt.Errorf("destroy result %q", body.Result))
	}

	return nil
}

// sign builds the request signature over the sorted parameter string plus
// the API secret, as the destroy endpoint requires.
func (s *CloudinaryStore) sign(publicID, timestamp string) string {
	payload := fmt.Sprintf("public_id=%s&timestamp=%s%s", publicID, timestamp, s.apiSecret)
	sum := sha1.Sum([]byte(payload))
	return hex.EncodeToString(sum[:])
}

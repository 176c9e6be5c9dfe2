package imagehost

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"affiliate-market/internal/config"

	"github.com/go-resty/resty/v2"
)

const defaultCloudinaryURL = "https://api.cloudinary.com/v1_1"

type Cloudinary struct {
	cfg    config.CloudinaryConfig
	client *resty.Client
	now    func() time.Time
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewCloudinary builds an uploader against the Cloudinary upload API.
// baseURL may be empty to use the public endpoint.
func NewCloudinary(cfg config.CloudinaryConfig, baseURL string) *Cloudinary {
	if baseURL == "" {
		baseURL = defaultCloudinaryURL
	}
	return &Cloudinary{
		cfg: cfg,
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(30 * time.Second).
			SetHeader("User-Agent", "affiliate-market/1.0"),
		now: time.Now,
	}
}

// New picks Cloudinary when credentials are present and Disabled otherwise.
func New(cfg config.CloudinaryConfig) Uploader {
	if !cfg.Enabled() {
		return Disabled{}
	}
	return NewCloudinary(cfg, "")
}

// sign implements Cloudinary's request signature: sorted params joined with &, then the secret, sha1 hex.
func sign(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + params[k]
	}

	sum := sha1.Sum([]byte(strings.Join(parts, "&") + secret))
	return hex.EncodeToString(sum[:])
}

func (c *Cloudinary) Upload(ctx context.Context, dataURL, folder, publicID string) (string, error) {
	if !IsDataURL(dataURL) {
		return "", ErrNotDataURL
	}

	params := map[string]string{
		"timestamp": strconv.FormatInt(c.now().Unix(), 10),
		"folder":    strings.Trim(c.cfg.Folder+"/"+folder, "/"),
		"format":    "webp",
	}
	if publicID != "" {
		params["public_id"] = publicID
		params["overwrite"] = "true"
	}

	form := map[string]string{
		"file":      dataURL,
		"api_key":   c.cfg.APIKey,
		"signature": sign(params, c.cfg.APISecret),
	}
	for k, v := range params {
		form[k] = v
	}

	var (
		result  uploadResponse
		failure errorResponse
	)
	resp, err := c.client.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&result).
		SetError(&failure).
		Post("/" + c.cfg.CloudName + "/image/upload")
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	if resp.IsError() {
		return "", fmt.Errorf("image upload rejected with status %d: %s", resp.StatusCode(), failure.Error.Message)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("image upload returned no url")
	}

	return result.SecureURL, nil
}

package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultAPIURL              = "https://www.googleapis.com/drive/v3"
	DefaultDownloadURLTemplate = "https://drive.google.com/uc?export=download&id=%s"
	DefaultPageSize            = 100
	DefaultMaxPages            = 20

	listFields   = "nextPageToken,incompleteSearch,files(id,name,mimeType,size,thumbnailLink,webViewLink,createdTime,modifiedTime)"
	folderFields = "id,name,mimeType,webViewLink,createdTime,modifiedTime"
)

// ClientConfig holds the listing client settings
type ClientConfig struct {
	APIURL              string
	DownloadURLTemplate string
	PageSize            int
	MaxPages            int
	Timeout             time.Duration
}

// Client lists public folders through the Drive REST API
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new listing client
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	cfg.APIURL = strings.TrimSuffix(cfg.APIURL, "/")
	if cfg.DownloadURLTemplate == "" {
		cfg.DownloadURLTemplate = DefaultDownloadURLTemplate
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultMaxPages
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// DownloadURL returns the download reference for a file identifier
func (c *Client) DownloadURL(fileID string) string {
	return fmt.Sprintf(c.cfg.DownloadURLTemplate, url.QueryEscape(fileID))
}

// List fetches one page of the folder's direct, non-trashed children.
// An authorization failure yields a Page with Inaccessible set and a nil error.
func (c *Client) List(ctx context.Context, folderID, pageToken string) (*Page, error) {
	query := url.Values{}
	query.Set("q", fmt.Sprintf("'%s' in parents and trashed=false", strings.ReplaceAll(folderID, "'", `\'`)))
	query.Set("fields", listFields)
	query.Set("pageSize", strconv.Itoa(c.cfg.PageSize))
	query.Set("supportsAllDrives", "true")
	query.Set("includeItemsFromAllDrives", "true")
	if pageToken != "" {
		query.Set("pageToken", pageToken)
	}

	endpoint := fmt.Sprintf("%s/files?%s", c.cfg.APIURL, query.Encode())

	c.logger.Debug("Listing folder",
		zap.String("folder_id", folderID),
		zap.Bool("continuation", pageToken != ""))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewNetworkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		c.logger.Info("Folder is not accessible",
			zap.String("folder_id", folderID),
			zap.Int("status_code", resp.StatusCode))
		return &Page{Records: []FileRecord{}, Inaccessible: true}, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleAPIError(resp)
	}

	var raw rawPage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, NewDecodeError(err)
	}

	records := make([]FileRecord, 0, len(raw.Files))
	for _, entry := range raw.Files {
		records = append(records, c.normalize(entry))
	}

	c.logger.Debug("Folder page listed",
		zap.String("folder_id", folderID),
		zap.Int("records", len(records)),
		zap.Bool("has_next_page", raw.NextPageToken != ""),
		zap.Bool("incomplete_search", raw.IncompleteSearch))

	return &Page{
		Records:       records,
		NextPageToken: raw.NextPageToken,
		Incomplete:    raw.IncompleteSearch,
	}, nil
}

// ListAll follows nextPageToken until the listing is exhausted or MaxPages
// pages have been read. Stopping at the page cap marks the result incomplete.
func (c *Client) ListAll(ctx context.Context, folderID string) (*Page, error) {
	result := &Page{Records: []FileRecord{}}
	token := ""

	for pageNum := 0; pageNum < c.cfg.MaxPages; pageNum++ {
		page, err := c.List(ctx, folderID, token)
		if err != nil {
			return nil, err
		}
		if page.Inaccessible {
			return page, nil
		}

		result.Records = append(result.Records, page.Records...)
		result.Incomplete = result.Incomplete || page.Incomplete
		token = page.NextPageToken
		if token == "" {
			return result, nil
		}
	}

	c.logger.Warn("Folder listing stopped at page limit",
		zap.String("folder_id", folderID),
		zap.Int("max_pages", c.cfg.MaxPages),
		zap.Int("records", len(result.Records)))
	result.NextPageToken = token
	result.Incomplete = true
	return result, nil
}

// GetFolderInfo fetches the folder's own metadata. The folder name is only
// cosmetic, so every failure is logged and reported as nil.
func (c *Client) GetFolderInfo(ctx context.Context, folderID string) *FileRecord {
	query := url.Values{}
	query.Set("fields", folderFields)
	query.Set("supportsAllDrives", "true")
	endpoint := fmt.Sprintf("%s/files/%s?%s", c.cfg.APIURL, url.PathEscape(folderID), query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.logger.Debug("Failed to build folder info request", zap.Error(err))
		return nil
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("Folder info request failed",
			zap.String("folder_id", folderID),
			zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("Folder info unavailable",
			zap.String("folder_id", folderID),
			zap.Int("status_code", resp.StatusCode))
		return nil
	}

	var entry rawEntry
	if err := json.NewDecoder(resp.Body).Decode(&entry); err != nil {
		c.logger.Debug("Failed to decode folder info",
			zap.String("folder_id", folderID),
			zap.Error(err))
		return nil
	}

	record := c.normalize(entry)
	return &record
}

// normalize converts a raw API entry into a FileRecord
func (c *Client) normalize(entry rawEntry) FileRecord {
	return FileRecord{
		ID:            entry.ID,
		Name:          entry.Name,
		MimeType:      entry.MimeType,
		Size:          entry.Size,
		ThumbnailLink: entry.ThumbnailLink,
		WebViewLink:   entry.WebViewLink,
		DownloadURL:   c.DownloadURL(entry.ID),
		CreatedTime:   parseTimestamp(entry.CreatedTime),
		ModifiedTime:  parseTimestamp(entry.ModifiedTime),
	}
}

// ReasonPhrase returns the reason text the server sent with resp, or the
// standard text for its status code when the server sent none
func ReasonPhrase(resp *http.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" {
		return http.StatusText(resp.StatusCode)
	}
	return reason
}

// handleAPIError converts a non-success response into a transport error
func (c *Client) handleAPIError(resp *http.Response) error {
	reason := ReasonPhrase(resp)

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err == nil {
		var apiErr apiErrorBody
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			reason = apiErr.Error.Message
		}
	}

	c.logger.Error("Listing request failed",
		zap.Int("status_code", resp.StatusCode),
		zap.String("reason", reason))

	return NewTransportError(resp.StatusCode, reason)
}

package api

import (
	// Go Internal Packages
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	// Local Packages
	errors "tx-tracker/errors"
	models "tx-tracker/models"

	// External Packages
	"go.uber.org/zap"
)

const transactionsPath = "/api/v1/transactions"

// Client calls the external transactions REST endpoint. The backend is a
// collaborator, not part of this codebase; the client only knows its query
// parameters and response envelope.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// SearchTransactions fetches one page of transactions matching the query.
// An HTTP failure or a non-"200" responseCode comes back as an error; the
// caller decides what to do with the working set.
func (c *Client) SearchTransactions(ctx context.Context, q models.TransactionQuery) (*models.TransactionsResponse, error) {
	endpoint := c.baseURL + transactionsPath + "?" + buildQuery(q)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.InvalidParamsErr(err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("fetching transactions", zap.String("url", endpoint))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.TransportErr(endpoint, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.E(errors.Transport,
			fmt.Sprintf("transactions endpoint returned HTTP %d", resp.StatusCode), nil)
	}

	var envelope models.TransactionsResponse
	if err = json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, errors.InvalidBodyErr(err)
	}

	if envelope.ResponseCode != "200" {
		return nil, errors.UpstreamErr(envelope.ResponseCode, envelope.ResponseMessage)
	}

	for i := range envelope.Data {
		envelope.Data[i].Normalize()
	}
	return &envelope, nil
}

func buildQuery(q models.TransactionQuery) string {
	params := url.Values{}
	if q.ReferenceNumber != "" {
		params.Set("referenceNumber", q.ReferenceNumber)
	}
	if q.Status != "" {
		params.Set("status", q.Status)
	}
	if q.StartDate != "" {
		params.Set("startDate", q.StartDate)
	}
	if q.EndDate != "" {
		params.Set("endDate", q.EndDate)
	}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = 10
	}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))
	return params.Encode()
}

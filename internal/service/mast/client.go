package mast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"TelescopeStatus/internal/domain/models"
	"TelescopeStatus/internal/domain/repository"
	xhttp "TelescopeStatus/pkg/http"
	"TelescopeStatus/pkg/logger"
	"TelescopeStatus/pkg/util"
)

const (
	DefaultBaseURL  = "https://mast.stsci.edu/api/v0/invoke"
	DefaultAuthURL  = "https://auth.mast.stsci.edu"
	DefaultPageSize = 50000
)

var errNoCollectionFacet = errors.New("mast: obs_collection facet missing from response")

// Client talks to the MAST invoke API.
type Client struct {
	http         *xhttp.Client
	baseURL      string
	authURL      string
	timeout      time.Duration
	pageSize     int
	pollInterval time.Duration
	maxPolls     int
	log          *logger.Logger

	mu    sync.RWMutex
	token string
}

var _ repository.Archive = (*Client)(nil)

// Option configures Client.
type Option func(*Client)

// WithBaseURL overrides the invoke endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithAuthURL overrides the auth service root.
func WithAuthURL(u string) Option {
	return func(c *Client) { c.authURL = strings.TrimRight(u, "/") }
}

// WithTimeout bounds each HTTP round trip.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithPageSize sets the page size used when no result cap is given.
func WithPageSize(n int) Option {
	return func(c *Client) { c.pageSize = n }
}

// WithPolling sets how long to wait between and how often to retry
// requests the service reports as still executing.
func WithPolling(interval time.Duration, max int) Option {
	return func(c *Client) {
		c.pollInterval = interval
		c.maxPolls = max
	}
}

// WithLogger sets the client logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient creates a MAST client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:      DefaultBaseURL,
		authURL:      DefaultAuthURL,
		timeout:      10 * time.Minute,
		pageSize:     DefaultPageSize,
		pollInterval: 2 * time.Second,
		maxPolls:     30,
		log:          logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http = xhttp.NewClient(xhttp.WithTimeout(c.timeout))
	return c
}

// Login checks token against the auth service and, if it identifies a
// user, sends it with every later request.
func (c *Client) Login(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("%w: empty token", models.ErrAuthentication)
	}

	var info sessionInfo
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     c.authURL + "/info",
		Headers: map[string]string{"Authorization": "token " + token},
	}, &info)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrAuthentication, err)
	}
	if info.Anon {
		return fmt.Errorf("%w: token is not associated with a user", models.ErrAuthentication)
	}

	c.mu.Lock()
	c.token = token
	c.mu.Unlock()

	c.log.Info("mast login succeeded", logger.String("user", info.Info.Username))
	return nil
}

// ListMissions returns the obs_collection values known to CAOM, sorted.
func (c *Client) ListMissions(ctx context.Context) ([]string, error) {
	resp, err := c.invoke(ctx, invokeRequest{
		Service: serviceAll,
		Format:  "extjs",
		Params:  map[string]interface{}{},
	})
	if err != nil {
		return nil, fmt.Errorf("list missions: %w", err)
	}

	var data extjsData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("list missions: decode facets: %w", err)
	}
	for _, tbl := range data.Tables {
		for _, col := range tbl.Columns {
			if col.Text != facetCollection {
				continue
			}
			missions := make([]string, 0, len(col.ExtendedProperties.HistObj))
			for name := range col.ExtendedProperties.HistObj {
				if name != facetHistKey {
					missions = append(missions, name)
				}
			}
			sort.Strings(missions)
			return missions, nil
		}
	}
	return nil, errNoCollectionFacet
}

// QueryObservations fetches CAOM observations of one collection whose
// t_min falls in [Start, End]. A positive MaxResults requests exactly
// one page of that size; otherwise every page is fetched.
func (c *Client) QueryObservations(ctx context.Context, q models.ObservationQuery) (*models.Table, error) {
	params := filteredParams{
		Columns: "*",
		Filters: []filter{
			{ParamName: "obs_collection", Values: []interface{}{q.Collection}},
			{ParamName: "t_min", Values: []interface{}{mjdRange{Min: util.ToMJD(q.Start), Max: util.ToMJD(q.End)}}},
		},
	}

	pageSize := c.pageSize
	if q.MaxResults > 0 {
		pageSize = q.MaxResults
	}

	var table *models.Table
	for page := 1; ; page++ {
		resp, err := c.invoke(ctx, invokeRequest{
			Service:  serviceFiltered,
			Format:   "json",
			Params:   params,
			Page:     page,
			PageSize: pageSize,
		})
		if err != nil {
			return nil, fmt.Errorf("query %s page %d: %w", q.Collection, page, err)
		}

		if table == nil {
			cols := make([]string, len(resp.Fields))
			for i, f := range resp.Fields {
				cols[i] = f.Name
			}
			table = models.NewTable(cols)
		}

		var rows []map[string]interface{}
		if len(resp.Data) > 0 {
			if err := json.Unmarshal(resp.Data, &rows); err != nil {
				return nil, fmt.Errorf("query %s page %d: decode rows: %w", q.Collection, page, err)
			}
		}
		for _, r := range rows {
			table.Append(r)
		}

		c.log.Debug("mast page fetched",
			logger.String("collection", q.Collection),
			logger.Int("page", page),
			logger.Int("rows", len(rows)),
		)

		if q.MaxResults > 0 || resp.Paging == nil || page >= resp.Paging.PagesFiltered || len(rows) == 0 {
			break
		}
	}
	return table, nil
}

func (c *Client) invoke(ctx context.Context, req invokeRequest) (*invokeResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	headers := map[string]string{
		"Content-Type": xhttp.ContentTypeForm,
		"Accept":       "text/plain",
	}
	c.mu.RLock()
	if c.token != "" {
		headers["Authorization"] = "token " + c.token
	}
	c.mu.RUnlock()

	for attempt := 0; ; attempt++ {
		var resp invokeResponse
		err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
			Method:  xhttp.MethodPost,
			URL:     c.baseURL,
			Headers: headers,
			Body:    map[string]string{"request": string(body)},
		}, &resp)
		if err != nil {
			return nil, err
		}

		switch resp.Status {
		case statusExecuting:
			if attempt >= c.maxPolls {
				return nil, fmt.Errorf("%s still executing after %d polls", req.Service, attempt+1)
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.pollInterval):
			}
			continue
		case statusError:
			return nil, fmt.Errorf("%s: %s", req.Service, resp.Msg)
		}
		return &resp, nil
	}
}

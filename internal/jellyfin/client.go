/*
Copyright (C) 2026 Fabian Bartl

SPDX-License-Identifier: MIT
*/

// Package jellyfin implements the catalog gateway against a Jellyfin
// server: username/password authentication, library discovery and
// batched item metadata retrieval. Responses are cached on disk so
// repeated runs within the cache window do not hammer the server.
package jellyfin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/FabianBartl/jellyfin-mediabar-listgen/internal/catalog"
	"github.com/FabianBartl/jellyfin-mediabar-listgen/internal/telemetry"
	"github.com/google/uuid"
	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/diskcache"
	"github.com/rs/zerolog"
)

const (
	appName    = "Jellyfin Media-Bar listgen"
	appVersion = "1.0.0"

	// itemBatchSize caps how many IDs go into one Items request so
	// URLs stay short enough for any reverse proxy in between.
	itemBatchSize = 60
)

// Config carries the gateway settings. Credentials are passed to
// Authenticate directly.
type Config struct {
	BaseURL string

	UseCache bool
	CacheDir string
	MaxAge   time.Duration
}

// Client talks to one Jellyfin server as one authenticated user. It
// implements catalog.Catalog.
type Client struct {
	http     *http.Client
	baseURL  string
	logger   zerolog.Logger
	useCache bool
	maxAge   time.Duration

	device   string
	deviceID string

	token  string
	userID string
}

// NewClient builds a client. Authenticate must be called before any
// catalog method.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		logger:   logger.With().Str("component", "jellyfin").Logger(),
		useCache: cfg.UseCache,
		maxAge:   cfg.MaxAge,
	}

	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "listgen"
	}
	c.device = host
	// The device ID is stable per host so Jellyfin sees one session
	// across runs instead of a new device every invocation.
	c.deviceID = strings.ReplaceAll(uuid.NewSHA1(uuid.NameSpaceOID, []byte(host)).String(), "-", "")

	if cfg.UseCache {
		transport := httpcache.NewTransport(diskcache.New(cfg.CacheDir))
		c.http = transport.Client()
		c.logger.Debug().Str("cache_dir", cfg.CacheDir).Msg("using disk response cache")
	} else {
		c.http = &http.Client{}
	}
	return c
}

func (c *Client) authHeader() string {
	header := fmt.Sprintf("MediaBrowser Client=%q, Device=%q, DeviceId=%q, Version=%q",
		appName, c.device, c.deviceID, appVersion)
	if c.token != "" {
		header += fmt.Sprintf(", Token=%q", c.token)
	}
	return header
}

type authResponse struct {
	AccessToken string `json:"AccessToken"`
	User        struct {
		ID string `json:"Id"`
	} `json:"User"`
}

// Authenticate logs in with the configured credentials and stores the
// access token and user ID for subsequent requests.
func (c *Client) Authenticate(ctx context.Context, username, password string) error {
	body, err := json.Marshal(map[string]string{"Username": username, "Pw": password})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/Users/AuthenticateByName", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.authHeader())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: authenticate: %v", catalog.ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: authenticate: http %d", catalog.ErrUnavailable, resp.StatusCode)
	}

	var auth authResponse
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return fmt.Errorf("%w: authenticate: %v", catalog.ErrUnavailable, err)
	}
	c.token = auth.AccessToken
	c.userID = auth.User.ID
	c.logger.Info().Str("user_id", c.userID).Msg("authenticated")
	return nil
}

// UserID returns the authenticated user's ID.
func (c *Client) UserID() string { return c.userID }

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := endpointLabel(path)

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", c.authHeader())
	if c.useCache && c.maxAge > 0 {
		req.Header.Set("Cache-Control", fmt.Sprintf("max-age=%d", int(c.maxAge.Seconds())))
	}

	c.logger.Debug().Str("url", u).Msg("get")
	resp, err := c.http.Do(req)
	if err != nil {
		telemetry.CatalogRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("%w: get %s: %v", catalog.ErrUnavailable, path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		telemetry.CatalogRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("%w: get %s: http %d", catalog.ErrUnavailable, path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		telemetry.CatalogRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("%w: get %s: decode: %v", catalog.ErrUnavailable, path, err)
	}
	telemetry.CatalogRequestsTotal.WithLabelValues(endpoint, "ok").Inc()
	return nil
}

// endpointLabel collapses per-user paths into a bounded metric label.
func endpointLabel(path string) string {
	switch {
	case strings.HasSuffix(path, "/Items"):
		return "items"
	case strings.HasSuffix(path, "/UserViews"):
		return "user_views"
	case strings.HasSuffix(path, "/Genres"):
		return "genres"
	default:
		return "users"
	}
}

type apiItem struct {
	ID             string   `json:"Id"`
	Name           string   `json:"Name"`
	SortName       string   `json:"SortName"`
	Type           string   `json:"Type"`
	Tags           []string `json:"Tags"`
	Genres         []string `json:"Genres"`
	OfficialRating string   `json:"OfficialRating"`
	CustomRating   string   `json:"CustomRating"`
	People         []struct {
		ID string `json:"Id"`
	} `json:"People"`
	CommunityRating *float64   `json:"CommunityRating"`
	CriticRating    *float64   `json:"CriticRating"`
	RunTimeTicks    *int64     `json:"RunTimeTicks"`
	ProductionYear  *int       `json:"ProductionYear"`
	PremiereDate    *time.Time `json:"PremiereDate"`
	DateCreated     *time.Time `json:"DateCreated"`
}

type itemsPage struct {
	Items []apiItem `json:"Items"`
}

func (a apiItem) toCatalog(libraryID string) catalog.Item {
	item := catalog.Item{
		ID:              a.ID,
		Name:            a.Name,
		SortName:        a.SortName,
		Type:            a.Type,
		LibraryID:       libraryID,
		Tags:            a.Tags,
		Genres:          a.Genres,
		OfficialRating:  a.OfficialRating,
		CustomRating:    a.CustomRating,
		CommunityRating: a.CommunityRating,
		CriticRating:    a.CriticRating,
		ProductionYear:  a.ProductionYear,
		PremiereDate:    a.PremiereDate,
		DateCreated:     a.DateCreated,
	}
	for _, p := range a.People {
		item.PeopleIDs = append(item.PeopleIDs, p.ID)
	}
	if a.RunTimeTicks != nil {
		minutes := float64(*a.RunTimeTicks) / 10_000_000 / 60
		item.RuntimeMinutes = &minutes
	}
	return item
}

// Library is one Jellyfin user view.
type Library struct {
	ID             string `json:"Id"`
	Name           string `json:"Name"`
	CollectionType string `json:"CollectionType"`
}

type librariesPage struct {
	Items []Library `json:"Items"`
}

// Libraries lists the user's views.
func (c *Client) Libraries(ctx context.Context) ([]Library, error) {
	params := url.Values{"userId": {c.userID}}
	var page librariesPage
	if err := c.getJSON(ctx, "/UserViews", params, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

// Items fetches all candidate items in the libraries selected by the
// query, one request per library.
func (c *Client) Items(ctx context.Context, q catalog.Query) ([]catalog.Item, error) {
	libraries, err := c.Libraries(ctx)
	if err != nil {
		return nil, err
	}

	var all []catalog.Item
	for _, lib := range libraries {
		if !librarySelected(lib, q) {
			continue
		}
		params := url.Values{
			"parentId":  {lib.ID},
			"Recursive": {"true"},
			"filters":   {"IsNotFolder"},
			"SortBy":    {"SortName,ProductionYear"},
			"SortOrder": {"Ascending"},
			"fields":    {"Tags,Genres,People,DateCreated,CriticRating,CustomRating"},
		}
		if len(q.ItemTypes) > 0 {
			params.Set("includeItemTypes", strings.Join(q.ItemTypes, ","))
		}
		var page itemsPage
		if err := c.getJSON(ctx, "/Users/"+c.userID+"/Items", params, &page); err != nil {
			return nil, err
		}
		c.logger.Debug().Str("library", lib.Name).Int("items", len(page.Items)).Msg("fetched library items")
		telemetry.CatalogItemsFetched.Add(float64(len(page.Items)))
		for _, it := range page.Items {
			all = append(all, it.toCatalog(lib.ID))
		}
	}
	return all, nil
}

func librarySelected(lib Library, q catalog.Query) bool {
	if len(q.LibraryIDs) > 0 && !containsFold(q.LibraryIDs, lib.ID) {
		return false
	}
	if containsFold(q.ExcludeLibraryIDs, lib.ID) {
		return false
	}
	if len(q.LibraryTypes) > 0 && !containsFold(q.LibraryTypes, lib.CollectionType) {
		return false
	}
	if containsFold(q.ExcludeLibTypes, lib.CollectionType) {
		return false
	}
	return true
}

func containsFold(values []string, candidate string) bool {
	for _, v := range values {
		if strings.EqualFold(v, candidate) {
			return true
		}
	}
	return false
}

// ItemsByID resolves explicit item IDs in chunks. The library ID of
// these items is unknown and left empty.
func (c *Client) ItemsByID(ctx context.Context, ids []string) ([]catalog.Item, error) {
	var all []catalog.Item
	for start := 0; start < len(ids); start += itemBatchSize {
		end := start + itemBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		params := url.Values{
			"ids":    {strings.Join(ids[start:end], ",")},
			"fields": {"Tags,Genres,People,DateCreated,CriticRating,CustomRating"},
		}
		var page itemsPage
		if err := c.getJSON(ctx, "/Users/"+c.userID+"/Items", params, &page); err != nil {
			return nil, err
		}
		telemetry.CatalogItemsFetched.Add(float64(len(page.Items)))
		for _, it := range page.Items {
			all = append(all, it.toCatalog(""))
		}
	}
	return all, nil
}

// Genre is one genre known to the server, useful when authoring
// filter rules.
type Genre struct {
	ID   string `json:"Id"`
	Name string `json:"Name"`
}

type genresPage struct {
	Items []Genre `json:"Items"`
}

// Genres lists the genres visible to the user.
func (c *Client) Genres(ctx context.Context) ([]Genre, error) {
	params := url.Values{"userId": {c.userID}}
	var page genresPage
	if err := c.getJSON(ctx, "/Genres", params, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

type apiUser struct {
	ID     string `json:"Id"`
	Name   string `json:"Name"`
	Policy struct {
		MaxParentalRating any `json:"MaxParentalRating"`
	} `json:"Policy"`
}

var digits = regexp.MustCompile(`[0-9]+`)

// ViewerAge derives the viewer age from the user's parental rating
// policy. It returns nil when the policy carries no numeric rating.
func (c *Client) ViewerAge(ctx context.Context, userID string) (*int, error) {
	var user apiUser
	if err := c.getJSON(ctx, "/Users/"+userID, nil, &user); err != nil {
		return nil, err
	}
	raw := user.Policy.MaxParentalRating
	if raw == nil {
		return nil, nil
	}
	// Ratings arrive as numbers or labels like "FSK-16"; the numeric
	// component is the age.
	match := digits.FindString(fmt.Sprint(raw))
	if match == "" {
		return nil, nil
	}
	var age int
	if _, err := fmt.Sscanf(match, "%d", &age); err != nil {
		return nil, nil
	}
	return &age, nil
}

package zendit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Nikolay-Tymoshchuk/zendit-to-csv/internal/logging"
)

// RoamingClient looks up the roaming countries of eSIM offers through the
// REST API. It satisfies core.RoamingLookup.
type RoamingClient struct {
	baseURL string
	apiKey  string
	delay   time.Duration
	client  *http.Client
}

// NewRoamingClient creates a lookup client. delay is waited after every
// request, successful or not.
func NewRoamingClient(baseURL, apiKey string, delay, timeout time.Duration) *RoamingClient {
	return &RoamingClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		delay:   delay,
		client:  &http.Client{Timeout: timeout},
	}
}

type esimOffer struct {
	OfferID string `json:"offerId"`
	Roaming []struct {
		Country string `json:"country"`
	} `json:"roaming"`
}

// RoamingCountries returns the country codes an eSIM offer roams in.
// An unknown offer (404) yields nil and no error.
func (c *RoamingClient) RoamingCountries(ctx context.Context, offerID string) ([]string, error) {
	logger := logging.WithFields(ctx, "offer_id", offerID)

	codes, err := c.fetch(ctx, offerID)
	if serr := sleep(ctx, c.delay); serr != nil && err == nil {
		err = serr
	}
	if err != nil {
		return nil, err
	}

	if len(codes) == 0 {
		logger.Warn("no roaming data in response")
	} else {
		logger.Info("roaming countries found", "count", len(codes))
	}
	return codes, nil
}

func (c *RoamingClient) fetch(ctx context.Context, offerID string) ([]string, error) {
	endpoint := c.baseURL + "/esim/offers/" + url.PathEscape(offerID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		logging.FromContext(ctx).Warn("esim offer not found", "offer_id", offerID)
		return nil, nil
	default:
		return nil, statusError(resp)
	}

	var offer esimOffer
	if err := json.NewDecoder(resp.Body).Decode(&offer); err != nil {
		return nil, fmt.Errorf("decode esim offer %s: %w", offerID, err)
	}

	codes := make([]string, 0, len(offer.Roaming))
	for _, r := range offer.Roaming {
		codes = append(codes, r.Country)
	}
	return codes, nil
}

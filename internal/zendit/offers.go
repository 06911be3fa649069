package zendit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Nikolay-Tymoshchuk/zendit-to-csv/internal/logging"
)

// offersQuery selects every field the converters read, plus pricing for
// anyone inspecting the saved pages. notesShort is an alias of title.
const offersQuery = `query offers($query: OffersQuery!) {
  offers(query: $query) {
    total
    list {
      offerId
      priceType
      type
      enabled
      details {
        __typename
        ... on TopupOfferDetails {
          durationDays
          data { gb type }
          sms { number type }
          voice { minutes type }
        }
        ... on ESimOfferDetails {
          durationDays
          data { gb type }
          sms { number type }
          voice { minutes type }
          dataSpeeds
          roamingDetails {
            dataSpeeds
            country { code name }
          }
        }
        ... on VoucherOfferDetails {
          requiredFields
          deliveryType
        }
      }
      brand { name }
      country { code name }
      regions
      notes
      subTypes
      notesShort: title
      cost { currency { code denomination } fixed fx max min }
      price { currency { code denomination } fixed fx margin max min overrideType suggestedFixed suggestedFx }
      zend { currency { code denomination } fixed fx max min }
    }
  }
}`

// FetcherConfig configures the console offers pager.
type FetcherConfig struct {
	URL      string
	ClientID string
	Cookie   string

	PageLimit   int
	MaxPages    int
	MaxFailures int

	RequestDelay  time.Duration
	RateLimitWait time.Duration
	Timeout       time.Duration
}

// Fetcher pages through the console offers query one request at a time.
type Fetcher struct {
	cfg    FetcherConfig
	client *http.Client
}

// NewFetcher creates a pager.
func NewFetcher(cfg FetcherConfig) *Fetcher {
	return &Fetcher{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// PageSink stores one fetched page. n is 1-based.
type PageSink func(n int, body []byte) error

// FetchSummary counts the requests of a FetchAll call.
type FetchSummary struct {
	Successful int
	Failed     int
	Offers     int
}

// Requests returns the number of requests made.
func (s FetchSummary) Requests() int {
	return s.Successful + s.Failed
}

type graphQLRequest struct {
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
	Query         string         `json:"query"`
}

type offersResponse struct {
	Data *struct {
		Offers *struct {
			Total int               `json:"total"`
			List  []json.RawMessage `json:"list"`
		} `json:"offers"`
	} `json:"data"`
}

// FetchAll requests pages until one comes back short or empty, the page cap
// is reached, or MaxFailures requests in a row fail. A failed request is
// retried at the same offset. Every non-empty page is handed to sink
// pretty-printed.
func (f *Fetcher) FetchAll(ctx context.Context, sink PageSink) (FetchSummary, error) {
	var (
		sum         FetchSummary
		consecutive int
		page        = 1
	)

	for {
		offset := (page - 1) * f.cfg.PageLimit
		logger := logging.WithFields(ctx, "page", page, "offset", offset, "limit", f.cfg.PageLimit)
		logger.Info("requesting offers page")

		body, count, err := f.fetchPage(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return sum, ctx.Err()
			}
			sum.Failed++
			consecutive++
			logger.Error("offers request failed", "error", err, "consecutive", consecutive)

			if consecutive >= f.cfg.MaxFailures {
				return sum, fmt.Errorf("giving up after %d consecutive failures: %w", consecutive, err)
			}
			if IsRateLimited(err) {
				logger.Warn("rate limited, backing off", "wait", f.cfg.RateLimitWait)
				if err := sleep(ctx, f.cfg.RateLimitWait); err != nil {
					return sum, err
				}
			}
			if err := sleep(ctx, f.cfg.RequestDelay); err != nil {
				return sum, err
			}
			continue
		}
		consecutive = 0

		if count == 0 {
			sum.Failed++
			logger.Warn("response holds no offers, stopping")
			return sum, nil
		}

		if err := sink(page, body); err != nil {
			return sum, fmt.Errorf("save page %d: %w", page, err)
		}
		sum.Successful++
		sum.Offers += count
		logger.Info("offers page saved", "offers", count)

		if count < f.cfg.PageLimit {
			logger.Info("short page, all offers fetched")
			return sum, nil
		}
		if f.cfg.MaxPages > 0 && page >= f.cfg.MaxPages {
			logger.Info("page cap reached", "max_pages", f.cfg.MaxPages)
			return sum, nil
		}

		page++
		if err := sleep(ctx, f.cfg.RequestDelay); err != nil {
			return sum, err
		}
	}
}

// fetchPage returns the indented response body and the number of offers in
// it. A response without an offer list reports zero offers.
//
// The body is saved as received, data wrapper and total included, because
// ingest.ReadPages reads those files later. That is why the request is posted
// by hand instead of through a typed GraphQL client.
func (f *Fetcher) fetchPage(ctx context.Context, offset int) ([]byte, int, error) {
	payload, err := json.Marshal(f.request(offset))
	if err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Referer", "https://console.zendit.io/")
	if f.cfg.Cookie != "" {
		req.Header.Set("Cookie", f.cfg.Cookie)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, statusError(resp)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, 0, fmt.Errorf("decode offers response: %w", err)
	}

	var parsed offersResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, 0, fmt.Errorf("decode offers response: %w", err)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		return nil, 0, err
	}

	count := 0
	if parsed.Data != nil && parsed.Data.Offers != nil {
		count = len(parsed.Data.Offers.List)
	}
	return pretty.Bytes(), count, nil
}

func (f *Fetcher) request(offset int) graphQLRequest {
	empty := map[string]any{"in": []string{}}
	return graphQLRequest{
		OperationName: "offers",
		Variables: map[string]any{
			"query": map[string]any{
				"clientId":   f.cfg.ClientID,
				"pagination": map[string]int{"limit": f.cfg.PageLimit, "offset": offset},
				"filter": map[string]any{
					"countryCode": empty,
					"regions":     empty,
					"brand":       empty,
					"subtype":     empty,
				},
			},
		},
		Query: offersQuery,
	}
}

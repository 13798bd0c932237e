package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/kawooya/remitta/internal/cache"
	"github.com/kawooya/remitta/internal/models"
	"github.com/kawooya/remitta/internal/repository"
)

const (
	// feedTimeout bounds the live fetch so a slow feed degrades to the
	// stored-rate fallback instead of stalling the request.
	feedTimeout = 5 * time.Second

	rateCacheKey = "rates:USD"
	rateCacheTTL = 5 * time.Minute

	SourceLive     = "live"
	SourceFallback = "fallback"
)

var ErrCurrencyNotFound = errors.New("currency not found")

// feedResponse is the shape of the USD-based rate feed:
// rates[code] = units of code per 1 USD.
type feedResponse struct {
	Result            string             `json:"result"`
	Rates             map[string]float64 `json:"rates"`
	TimeLastUpdateUTC string             `json:"time_last_update_utc"`
	TimeNextUpdateUTC string             `json:"time_next_update_utc"`
}

type Conversion struct {
	SenderAmount   float64 `json:"sender_amount"`
	ReceiverAmount float64 `json:"receiver_amount"`
	ConversionRate float64 `json:"conversion_rate"`
	FromCurrency   string  `json:"from_currency"`
	ToCurrency     string  `json:"to_currency"`
	Source         string  `json:"source"`
	RatesUpdatedAt string  `json:"rates_updated_at,omitempty"`
	FallbackReason string  `json:"fallback_reason,omitempty"`
}

type Converter struct {
	currencyRepo repository.CurrencyRepository
	cache        *cache.Cache
	client       *http.Client
	feedURL      string
}

// New builds a converter. The cache is optional; a nil cache simply means
// every conversion hits the feed.
func New(currencyRepo repository.CurrencyRepository, rateCache *cache.Cache, feedURL string) *Converter {
	return &Converter{
		currencyRepo: currencyRepo,
		cache:        rateCache,
		client:       &http.Client{Timeout: feedTimeout},
		feedURL:      feedURL,
	}
}

// Convert turns amount units of the from-currency into the to-currency.
// A missing currency is a hard error; any feed problem silently degrades
// to the stored rate_per_dollar values, so a usable result always comes
// back for two valid currencies.
func (c *Converter) Convert(ctx context.Context, amount float64, fromCurrencyID, toCurrencyID int64) (*Conversion, error) {
	fromCurrency, found, err := c.currencyRepo.GetOne(fromCurrencyID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrCurrencyNotFound
	}

	toCurrency, found, err := c.currencyRepo.GetOne(toCurrencyID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrCurrencyNotFound
	}

	feed, err := c.fetchRates(ctx)
	if err == nil {
		fromRate, fromOk := feed.Rates[fromCurrency.Code]
		toRate, toOk := feed.Rates[toCurrency.Code]

		if fromOk && toOk && fromRate > 0 {
			conversion := convert(amount, fromRate, toRate, fromCurrency, toCurrency)
			conversion.Source = SourceLive
			conversion.RatesUpdatedAt = feed.TimeLastUpdateUTC
			return conversion, nil
		}

		err = fmt.Errorf("feed is missing rate for %s or %s", fromCurrency.Code, toCurrency.Code)
	}

	conversion := convert(amount, fromCurrency.RatePerDollar, toCurrency.RatePerDollar, fromCurrency, toCurrency)
	conversion.Source = SourceFallback
	conversion.FallbackReason = err.Error()

	return conversion, nil
}

func convert(amount, fromRate, toRate float64, fromCurrency, toCurrency *models.Currency) *Conversion {
	amountInUSD := amount / fromRate
	receiverAmount := amountInUSD * toRate
	conversionRate := toRate / fromRate

	return &Conversion{
		SenderAmount:   amount,
		ReceiverAmount: round(receiverAmount, 2),
		ConversionRate: round(conversionRate, 6),
		FromCurrency:   fromCurrency.Code,
		ToCurrency:     toCurrency.Code,
	}
}

func (c *Converter) fetchRates(ctx context.Context) (*feedResponse, error) {
	// cached feed responses are good for a few minutes; cache errors are
	// not worth failing over, we just fetch live
	if c.cache != nil {
		if cached, err := c.cache.Get(rateCacheKey); err == nil {
			var feed feedResponse
			if err := json.Unmarshal([]byte(cached), &feed); err == nil {
				return &feed, nil
			}
		}
	}

	ctx, cancel := context.WithTimeout(ctx, feedTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rate feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var feed feedResponse
	if err := json.Unmarshal(body, &feed); err != nil {
		return nil, err
	}

	if feed.Result != "success" {
		return nil, fmt.Errorf("rate feed returned result %q", feed.Result)
	}

	if c.cache != nil {
		// best effort; a cache write failure must not surface
		_ = c.cache.Set(rateCacheKey, string(body), rateCacheTTL)
	}

	return &feed, nil
}

func round(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}

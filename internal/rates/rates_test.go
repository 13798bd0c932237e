package rates

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kawooya/remitta/internal/models"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCurrencyRepo implements CurrencyRepository but only mocks the needed methods.
type MockCurrencyRepo struct {
	mock.Mock
}

func (m *MockCurrencyRepo) Insert(currency *models.Currency) (*models.Currency, error) {
	return nil, nil
}

func (m *MockCurrencyRepo) GetOne(id int64) (*models.Currency, bool, error) {
	args := m.Called(id)
	currency, _ := args.Get(0).(*models.Currency)
	return currency, args.Bool(1), args.Error(2)
}

func (m *MockCurrencyRepo) GetByCode(code string) (*models.Currency, bool, error) {
	return nil, false, nil
}

func (m *MockCurrencyRepo) GetAll() ([]models.Currency, error) {
	return nil, nil
}

func (m *MockCurrencyRepo) Update(currency *models.Currency) (bool, error) {
	return false, nil
}

func (m *MockCurrencyRepo) Delete(id int64) (bool, error) {
	return false, nil
}

var (
	usd = &models.Currency{ID: 1, Name: "US Dollar", Code: "USD", Symbol: "$", RatePerDollar: 1}
	ugx = &models.Currency{ID: 2, Name: "Ugandan Shilling", Code: "UGX", Symbol: "USh", RatePerDollar: 3700}
)

func newFeedServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
}

func TestConvert_LiveFeed(t *testing.T) {
	mockCurrencyRepo := new(MockCurrencyRepo)
	mockCurrencyRepo.On("GetOne", int64(1)).Return(usd, true, nil)
	mockCurrencyRepo.On("GetOne", int64(2)).Return(ugx, true, nil)

	// live feed disagrees with the stored rates, so the source is observable
	feed := newFeedServer(t, `{
		"result": "success",
		"time_last_update_utc": "Fri, 29 Aug 2025 00:02:31 +0000",
		"rates": {"USD": 1, "UGX": 3800}
	}`)
	defer feed.Close()

	converter := New(mockCurrencyRepo, nil, feed.URL)

	conversion, err := converter.Convert(context.Background(), 10, 1, 2)
	require.NoError(t, err)

	require.Equal(t, SourceLive, conversion.Source)
	require.Equal(t, float64(38000), conversion.ReceiverAmount)
	require.Equal(t, float64(3800), conversion.ConversionRate)
	require.Equal(t, "USD", conversion.FromCurrency)
	require.Equal(t, "UGX", conversion.ToCurrency)
	require.NotEmpty(t, conversion.RatesUpdatedAt)
	require.Empty(t, conversion.FallbackReason)
}

func TestConvert_FallbackWhenFeedDown(t *testing.T) {
	mockCurrencyRepo := new(MockCurrencyRepo)
	mockCurrencyRepo.On("GetOne", int64(1)).Return(usd, true, nil)
	mockCurrencyRepo.On("GetOne", int64(2)).Return(ugx, true, nil)

	feed := newFeedServer(t, `{}`)
	feed.Close() // unreachable feed

	converter := New(mockCurrencyRepo, nil, feed.URL)

	conversion, err := converter.Convert(context.Background(), 10, 1, 2)
	require.NoError(t, err)

	require.Equal(t, SourceFallback, conversion.Source)
	require.Equal(t, float64(37000), conversion.ReceiverAmount)
	require.Equal(t, float64(3700), conversion.ConversionRate)
	require.NotEmpty(t, conversion.FallbackReason)
}

func TestConvert_FallbackWhenFeedMissingCurrency(t *testing.T) {
	mockCurrencyRepo := new(MockCurrencyRepo)
	mockCurrencyRepo.On("GetOne", int64(1)).Return(usd, true, nil)
	mockCurrencyRepo.On("GetOne", int64(2)).Return(ugx, true, nil)

	// the feed knows nothing about UGX
	feed := newFeedServer(t, `{"result": "success", "rates": {"USD": 1, "EUR": 0.9}}`)
	defer feed.Close()

	converter := New(mockCurrencyRepo, nil, feed.URL)

	conversion, err := converter.Convert(context.Background(), 10, 1, 2)
	require.NoError(t, err)

	require.Equal(t, SourceFallback, conversion.Source)
	require.Equal(t, float64(37000), conversion.ReceiverAmount)
	require.NotEmpty(t, conversion.FallbackReason)
}

func TestConvert_FallbackWhenFeedErrors(t *testing.T) {
	mockCurrencyRepo := new(MockCurrencyRepo)
	mockCurrencyRepo.On("GetOne", int64(1)).Return(usd, true, nil)
	mockCurrencyRepo.On("GetOne", int64(2)).Return(ugx, true, nil)

	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer feed.Close()

	converter := New(mockCurrencyRepo, nil, feed.URL)

	conversion, err := converter.Convert(context.Background(), 10, 1, 2)
	require.NoError(t, err)

	require.Equal(t, SourceFallback, conversion.Source)
	require.NotEmpty(t, conversion.FallbackReason)
}

func TestConvert_SameCurrencyIsIdentity(t *testing.T) {
	mockCurrencyRepo := new(MockCurrencyRepo)
	mockCurrencyRepo.On("GetOne", int64(2)).Return(ugx, true, nil)

	feed := newFeedServer(t, `{}`)
	feed.Close() // identity must hold even on the fallback path

	converter := New(mockCurrencyRepo, nil, feed.URL)

	conversion, err := converter.Convert(context.Background(), 250, 2, 2)
	require.NoError(t, err)

	require.Equal(t, float64(250), conversion.ReceiverAmount)
	require.Equal(t, float64(1), conversion.ConversionRate)
	require.Equal(t, "UGX", conversion.FromCurrency)
	require.Equal(t, "UGX", conversion.ToCurrency)
}

func TestConvert_UnknownCurrencyIsHardError(t *testing.T) {
	mockCurrencyRepo := new(MockCurrencyRepo)
	mockCurrencyRepo.On("GetOne", int64(1)).Return(usd, true, nil)
	mockCurrencyRepo.On("GetOne", int64(99)).Return(nil, false, nil)

	feed := newFeedServer(t, `{"result": "success", "rates": {"USD": 1, "UGX": 3700}}`)
	defer feed.Close()

	converter := New(mockCurrencyRepo, nil, feed.URL)

	conversion, err := converter.Convert(context.Background(), 10, 1, 99)
	require.ErrorIs(t, err, ErrCurrencyNotFound)
	require.Nil(t, conversion)
}

func TestConvert_Rounding(t *testing.T) {
	mockCurrencyRepo := new(MockCurrencyRepo)
	kes := &models.Currency{ID: 3, Name: "Kenyan Shilling", Code: "KES", Symbol: "KSh", RatePerDollar: 129.53}
	mockCurrencyRepo.On("GetOne", int64(2)).Return(ugx, true, nil)
	mockCurrencyRepo.On("GetOne", int64(3)).Return(kes, true, nil)

	feed := newFeedServer(t, `{}`)
	feed.Close()

	converter := New(mockCurrencyRepo, nil, feed.URL)

	conversion, err := converter.Convert(context.Background(), 1000, 2, 3)
	require.NoError(t, err)

	// amounts carry two decimals, rates six
	require.Equal(t, 35.01, conversion.ReceiverAmount)
	require.Equal(t, 0.035008, conversion.ConversionRate)
}

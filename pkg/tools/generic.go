package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/8090-inc/xrx-sample-apps/pkg/session"
)

const (
	defaultGeocodeURL  = "https://geocoding-api.open-meteo.com/v1/search"
	defaultForecastURL = "https://api.open-meteo.com/v1/forecast"
	defaultQuoteURL    = "https://query1.finance.yahoo.com/v8/finance/chart"
)

// TimeTool reports the current date and time.
type TimeTool struct {
	// Now is overridable for tests; nil means time.Now.
	Now func() time.Time
}

func (t *TimeTool) Name() string { return "get_current_time" }

func (t *TimeTool) Description() string {
	return "Get the current date and time as a formatted string."
}

func (t *TimeTool) Parameters() []Parameter { return nil }

func (t *TimeTool) Call(_ context.Context, _ *session.Session, _ map[string]any) (string, error) {
	now := time.Now
	if t.Now != nil {
		now = t.Now
	}
	return now().Format("2006-01-02 15:04:05"), nil
}

// WeatherTool looks up current conditions for a free-form location. The
// location is geocoded first, then the forecast endpoint is queried for
// current weather.
type WeatherTool struct {
	HTTPClient  *http.Client
	GeocodeURL  string
	ForecastURL string
}

func (w *WeatherTool) Name() string { return "get_current_weather" }

func (w *WeatherTool) Description() string {
	return "Get the current weather for a given location."
}

func (w *WeatherTool) Parameters() []Parameter {
	return []Parameter{
		{Name: "location", Description: "location (str): The name of the location or address."},
	}
}

func (w *WeatherTool) Call(ctx context.Context, _ *session.Session, params map[string]any) (string, error) {
	location, _ := params["location"].(string)
	if location == "" {
		return "", fmt.Errorf("location parameter is required")
	}

	place, err := w.geocode(ctx, location)
	if err != nil {
		return "", err
	}

	query := url.Values{}
	query.Set("latitude", fmt.Sprintf("%v", place.Latitude))
	query.Set("longitude", fmt.Sprintf("%v", place.Longitude))
	query.Set("current_weather", "true")
	query.Set("temperature_unit", "celsius")
	query.Set("windspeed_unit", "kmh")
	query.Set("precipitation_unit", "mm")

	var payload struct {
		CurrentWeather struct {
			Temperature   float64 `json:"temperature"`
			WindSpeed     float64 `json:"windspeed"`
			WindDirection float64 `json:"winddirection"`
		} `json:"current_weather"`
	}
	forecastURL := w.ForecastURL
	if forecastURL == "" {
		forecastURL = defaultForecastURL
	}
	if err := w.getJSON(ctx, forecastURL+"?"+query.Encode(), &payload); err != nil {
		return "", fmt.Errorf("fetch weather for %s: %w", location, err)
	}

	current := payload.CurrentWeather
	out := fmt.Sprintf("Weather for %s: \n", place.Address)
	out += fmt.Sprintf("Temperature: %v°C \n", current.Temperature)
	out += fmt.Sprintf("Wind speed: %v km/h \n", current.WindSpeed)
	out += fmt.Sprintf("Wind direction: %v° \n", current.WindDirection)
	return out, nil
}

type geocodedPlace struct {
	Address   string
	Latitude  float64
	Longitude float64
}

func (w *WeatherTool) geocode(ctx context.Context, location string) (geocodedPlace, error) {
	geocodeURL := w.GeocodeURL
	if geocodeURL == "" {
		geocodeURL = defaultGeocodeURL
	}
	query := url.Values{}
	query.Set("name", location)
	query.Set("count", "1")

	var payload struct {
		Results []struct {
			Name      string  `json:"name"`
			Admin1    string  `json:"admin1"`
			Country   string  `json:"country"`
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"results"`
	}
	if err := w.getJSON(ctx, geocodeURL+"?"+query.Encode(), &payload); err != nil {
		return geocodedPlace{}, fmt.Errorf("geocode %s: %w", location, err)
	}
	if len(payload.Results) == 0 {
		return geocodedPlace{}, fmt.Errorf("location not found: %s", location)
	}

	hit := payload.Results[0]
	parts := make([]string, 0, 3)
	for _, part := range []string{hit.Name, hit.Admin1, hit.Country} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return geocodedPlace{
		Address:   strings.Join(parts, ", "),
		Latitude:  hit.Latitude,
		Longitude: hit.Longitude,
	}, nil
}

func (w *WeatherTool) getJSON(ctx context.Context, rawURL string, out any) error {
	client := w.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	return getJSON(ctx, client, rawURL, out)
}

// StockTool reports the latest market price for a ticker symbol using the
// public quote chart endpoint.
type StockTool struct {
	HTTPClient *http.Client
	QuoteURL   string
}

func (s *StockTool) Name() string { return "get_stock_price" }

func (s *StockTool) Description() string {
	return "Get the current stock price for a given symbol."
}

func (s *StockTool) Parameters() []Parameter {
	return []Parameter{
		{Name: "symbol", Description: "symbol (str): The stock symbol (e.g., AAPL for Apple)."},
	}
}

func (s *StockTool) Call(ctx context.Context, _ *session.Session, params map[string]any) (string, error) {
	symbol, _ := params["symbol"].(string)
	if symbol == "" {
		return "", fmt.Errorf("symbol parameter is required")
	}

	quoteURL := s.QuoteURL
	if quoteURL == "" {
		quoteURL = defaultQuoteURL
	}
	client := s.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	var payload struct {
		Chart struct {
			Result []struct {
				Meta struct {
					RegularMarketPrice float64 `json:"regularMarketPrice"`
					Currency           string  `json:"currency"`
				} `json:"meta"`
			} `json:"result"`
		} `json:"chart"`
	}
	if err := getJSON(ctx, client, quoteURL+"/"+url.PathEscape(symbol), &payload); err != nil {
		return "", fmt.Errorf("fetch stock data for %s: %w", symbol, err)
	}
	if len(payload.Chart.Result) == 0 {
		return "", fmt.Errorf("no quote data for symbol %s", symbol)
	}

	price := payload.Chart.Result[0].Meta.RegularMarketPrice
	return fmt.Sprintf("The current market price of %s is: %v \n", symbol, price), nil
}

// GenericTools returns the tools available to every agent regardless of
// storefront configuration.
func GenericTools() []Tool {
	return []Tool{
		&TimeTool{},
		&WeatherTool{},
		&StockTool{},
	}
}

func getJSON(ctx context.Context, client *http.Client, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

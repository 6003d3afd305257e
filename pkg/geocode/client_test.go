package geocode

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestClientReverseGeocodeRequest(t *testing.T) {
	respBody := `{"city":"Lagos","locality":"Ikeja","principalSubdivision":"Lagos","countryName":"Nigeria"}`

	var capturedURL string
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(respBody)),
			Header:     http.Header{},
		}, nil
	})

	client := NewClient(WithBaseURL("http://geo.test/data"), WithHTTPClient(&http.Client{Transport: rt}))

	place, err := client.ReverseGeocode(context.Background(), 6.5244, 3.3792)
	if err != nil {
		t.Fatalf("reverse geocode: %v", err)
	}
	if !strings.HasPrefix(capturedURL, "http://geo.test/data/reverse-geocode-client?") {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
	if !strings.Contains(capturedURL, "latitude=6.5244") || !strings.Contains(capturedURL, "longitude=3.3792") {
		t.Fatalf("coordinates missing from URL %q", capturedURL)
	}
	if place.City != "Lagos" {
		t.Fatalf("unexpected city %q", place.City)
	}
	if place.Formatted != "Lagos, Nigeria" {
		t.Fatalf("unexpected formatted address %q", place.Formatted)
	}
}

func TestClientReverseGeocodeFallbacks(t *testing.T) {
	tests := []struct {
		name     string
		respBody string
		city     string
	}{
		{
			name:     "locality when city missing",
			respBody: `{"locality":"Surulere","principalSubdivision":"Lagos","countryName":"Nigeria"}`,
			city:     "Surulere",
		},
		{
			name:     "subdivision locality when both missing",
			respBody: `{"principalSubdivisionLocality":"Eti-Osa","principalSubdivision":"Lagos","countryName":"Nigeria"}`,
			city:     "Eti-Osa",
		},
		{
			name:     "unknown when nothing resolves",
			respBody: `{}`,
			city:     UnknownComponent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(strings.NewReader(tt.respBody)),
					Header:     http.Header{},
				}, nil
			})
			client := NewClient(WithHTTPClient(&http.Client{Transport: rt}))

			place, err := client.ReverseGeocode(context.Background(), 6.5, 3.3)
			if err != nil {
				t.Fatalf("reverse geocode: %v", err)
			}
			if place.City != tt.city {
				t.Fatalf("expected city %q, got %q", tt.city, place.City)
			}
		})
	}
}

func TestClientReverseGeocodeValidatesRange(t *testing.T) {
	client := NewClient()
	if _, err := client.ReverseGeocode(context.Background(), 91, 0); err == nil {
		t.Fatal("expected latitude out of range error")
	}
	if _, err := client.ReverseGeocode(context.Background(), 0, 181); err == nil {
		t.Fatal("expected longitude out of range error")
	}
}

func TestClientReverseGeocodeUpstreamFailure(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusBadGateway,
			Body:       io.NopCloser(strings.NewReader("upstream down")),
			Header:     http.Header{},
		}, nil
	})
	client := NewClient(WithHTTPClient(&http.Client{Transport: rt}))

	if _, err := client.ReverseGeocode(context.Background(), 6.5, 3.3); err == nil {
		t.Fatal("expected error for non-200 upstream response")
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Package zipcode resolve códigos postais dinamarqueses pela API DAWA.
package zipcode

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/matheusmosca/webshop/internal/problem"
)

var (
	ErrInvalidZipCode  = errors.New("invalid zip code")
	ErrUnknownZipCode  = errors.New("unknown zip code")
	ErrUpstreamFailure = errors.New("zip code service failure")
)

// ZipCode é a resposta exposta pela API
type ZipCode struct {
	ZipCode string `json:"zipCode"`
	City    string `json:"city"`
}

// postnummer é o recurso /postnumre/{nr} da DAWA
type postnummer struct {
	Nr   string `json:"nr"`
	Navn string `json:"navn"`
}

type Client struct {
	http *resty.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
	}
}

// Valid aceita exatamente quatro dígitos
func Valid(zip string) bool {
	if len(zip) != 4 {
		return false
	}
	for _, r := range zip {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Lookup busca a cidade do código postal
func (c *Client) Lookup(ctx context.Context, zip string) (*ZipCode, error) {
	if !Valid(zip) {
		return nil, problem.BadRequest(ErrInvalidZipCode, "Zip code must be 4 digits, was %q", zip)
	}

	var result postnummer
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("zip", zip).
		SetResult(&result).
		Get("/postnumre/{zip}")
	if err != nil {
		return nil, problem.BadGateway(errors.Join(ErrUpstreamFailure, err), "Zip code service is unavailable")
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, problem.NotFound(ErrUnknownZipCode, "Could not find zip code %s", zip)
	case resp.IsError():
		return nil, problem.BadGateway(ErrUpstreamFailure, "Zip code service answered %d", resp.StatusCode())
	case result.Navn == "":
		return nil, problem.NotFound(ErrUnknownZipCode, "Could not find zip code %s", zip)
	}

	return &ZipCode{ZipCode: zip, City: result.Navn}, nil
}

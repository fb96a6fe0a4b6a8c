// Package client fala com uma instância do webshop em execução.
package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/matheusmosca/webshop/internal/orders"
	"github.com/matheusmosca/webshop/internal/problem"
	"github.com/matheusmosca/webshop/internal/products"
)

// APIError é o problem detail devolvido pelo servidor
type APIError struct {
	problem.Details
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%d %s", e.Status, e.Title)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Title, e.Detail)
}

type productList struct {
	Embedded struct {
		ProductList []*products.Product `json:"productList"`
	} `json:"_embedded"`
}

type Client struct {
	http *resty.Client
}

func New(baseURL string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(10*time.Second).
			SetHeader("Accept", "application/hal+json, application/json").
			SetError(&APIError{}),
	}
}

func (c *Client) do(ctx context.Context, method, path string, result any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(result).
		Execute(method, path)
	if err != nil {
		return fmt.Errorf("failed to call %s %s: %w", method, path, err)
	}
	if resp.IsError() {
		if apiErr, ok := resp.Error().(*APIError); ok && apiErr.Status != 0 {
			return apiErr
		}
		return &APIError{Details: problem.Details{Status: resp.StatusCode(), Title: resp.Status()}}
	}
	return nil
}

func (c *Client) ListProducts(ctx context.Context) ([]*products.Product, error) {
	var list productList
	if err := c.do(ctx, resty.MethodGet, "/products", &list); err != nil {
		return nil, err
	}
	return list.Embedded.ProductList, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (*products.Product, error) {
	var product products.Product
	if err := c.do(ctx, resty.MethodGet, "/products/"+url.PathEscape(id), &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) GetOrder(ctx context.Context, id int64) (*orders.Order, error) {
	return c.order(ctx, resty.MethodGet, "/orders/"+strconv.FormatInt(id, 10))
}

func (c *Client) CompleteOrder(ctx context.Context, id int64) (*orders.Order, error) {
	return c.order(ctx, resty.MethodPut, "/orders/"+strconv.FormatInt(id, 10)+"/complete")
}

func (c *Client) CancelOrder(ctx context.Context, id int64) (*orders.Order, error) {
	return c.order(ctx, resty.MethodDelete, "/orders/"+strconv.FormatInt(id, 10)+"/cancel")
}

func (c *Client) order(ctx context.Context, method, path string) (*orders.Order, error) {
	var order orders.Order
	if err := c.do(ctx, method, path, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vendalink/vendalink-api/internal/application/dto"
	"github.com/vendalink/vendalink-api/internal/domain/entity"
)

const (
	shopeeBaseURL  = "https://partner.shopeemobile.com/api/v2"
	shopeePageSize = 50
)

// ShopeeClient busca pedidos na Open API v2 da Shopee. A API devolve listas
// de order_sn em get_order_list e os detalhes em get_order_detail; aqui os
// dois passos são combinados num FetchOrders só.
type ShopeeClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewShopeeClient(baseURL string) *ShopeeClient {
	if baseURL == "" {
		baseURL = shopeeBaseURL
	}
	return &ShopeeClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ── Estruturas internas da Open API da Shopee ────────────────────────────────

type shopeeListResponse struct {
	Error    string `json:"error"`
	Message  string `json:"message"`
	Response struct {
		More      bool `json:"more"`
		OrderList []struct {
			OrderSN string `json:"order_sn"`
		} `json:"order_list"`
		NextCursor string `json:"next_cursor"`
	} `json:"response"`
}

type shopeeDetailResponse struct {
	Error    string `json:"error"`
	Message  string `json:"message"`
	Response struct {
		OrderList []shopeeOrder `json:"order_list"`
	} `json:"response"`
}

type shopeeOrder struct {
	OrderSN     string          `json:"order_sn"`
	OrderStatus string          `json:"order_status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreateTime  int64           `json:"create_time"` // epoch segundos
	PackageList []struct {
		PackageNumber string `json:"package_number"`
	} `json:"package_list"`
	RecipientAddress struct {
		Name    string `json:"name"`
		Phone   string `json:"phone"`
		City    string `json:"city"`
		State   string `json:"state"`
		FullAddr string `json:"full_address"`
		Zipcode string `json:"zipcode"`
	} `json:"recipient_address"`
	BuyerUsername string `json:"buyer_username"`
}

// FetchOrders lista e detalha os pedidos criados desde `since`.
func (c *ShopeeClient) FetchOrders(ctx context.Context, store *entity.Store, since time.Time) ([]dto.OrderPayload, error) {
	if store.ExternalAccountID == "" || store.AccessToken == "" {
		return nil, fmt.Errorf("loja %s sem credenciais da Shopee", store.ID)
	}

	var payloads []dto.OrderPayload
	cursor := ""
	for {
		list, err := c.listPage(ctx, store, since, cursor)
		if err != nil {
			return nil, err
		}
		if len(list.Response.OrderList) == 0 {
			break
		}
		sns := make([]string, 0, len(list.Response.OrderList))
		for _, o := range list.Response.OrderList {
			sns = append(sns, o.OrderSN)
		}
		details, err := c.detail(ctx, store, sns)
		if err != nil {
			return nil, err
		}
		for _, o := range details {
			payloads = append(payloads, normalizeShopeeOrder(o))
		}
		if !list.Response.More {
			break
		}
		cursor = list.Response.NextCursor
	}
	return payloads, nil
}

func (c *ShopeeClient) listPage(ctx context.Context, store *entity.Store, since time.Time, cursor string) (*shopeeListResponse, error) {
	q := url.Values{}
	q.Set("shop_id", store.ExternalAccountID)
	q.Set("time_range_field", "create_time")
	q.Set("time_from", fmt.Sprint(since.Unix()))
	q.Set("time_to", fmt.Sprint(time.Now().Unix()))
	q.Set("page_size", fmt.Sprint(shopeePageSize))
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	var out shopeeListResponse
	if err := c.get(ctx, store, "/order/get_order_list", q, &out); err != nil {
		return nil, err
	}
	if out.Error != "" {
		return nil, fmt.Errorf("shopee: get_order_list: %s: %s", out.Error, out.Message)
	}
	return &out, nil
}

func (c *ShopeeClient) detail(ctx context.Context, store *entity.Store, orderSNs []string) ([]shopeeOrder, error) {
	q := url.Values{}
	q.Set("shop_id", store.ExternalAccountID)
	for _, sn := range orderSNs {
		q.Add("order_sn_list", sn)
	}
	q.Set("response_optional_fields", "total_amount,recipient_address,package_list,buyer_username")
	var out shopeeDetailResponse
	if err := c.get(ctx, store, "/order/get_order_detail", q, &out); err != nil {
		return nil, err
	}
	if out.Error != "" {
		return nil, fmt.Errorf("shopee: get_order_detail: %s: %s", out.Error, out.Message)
	}
	return out.Response.OrderList, nil
}

func (c *ShopeeClient) get(ctx context.Context, store *entity.Store, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+store.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("shopee: %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("shopee: ler resposta: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("shopee: %s: status %d: %s", path, resp.StatusCode, truncate(body, 200))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("shopee: decodificar resposta: %w", err)
	}
	return nil
}

func normalizeShopeeOrder(o shopeeOrder) dto.OrderPayload {
	raw, _ := json.Marshal(o)
	p := dto.OrderPayload{
		ExternalID:      o.OrderSN,
		ExternalOrderID: o.OrderSN,
		Status:          o.OrderStatus,
		Total:           o.TotalAmount,
		OrderCreatedAt:  time.Unix(o.CreateTime, 0).UTC(),
		CustomerName:    o.RecipientAddress.Name,
		CustomerPhone:   o.RecipientAddress.Phone,
		CustomerCity:    o.RecipientAddress.City,
		CustomerState:   o.RecipientAddress.State,
		CustomerAddress: o.RecipientAddress.FullAddr,
		CustomerZipCode: o.RecipientAddress.Zipcode,
		RawData:         raw,
	}
	if len(o.PackageList) > 0 {
		p.ExternalPackID = o.PackageList[0].PackageNumber
	}
	if p.CustomerName == "" {
		p.CustomerName = o.BuyerUsername
	}
	return p
}

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
	meliBaseURL  = "https://api.mercadolibre.com"
	meliPageSize = 50
)

// MercadoLivreClient busca pedidos do vendedor na API do Mercado Livre e os
// normaliza para o formato do ledger. Pagina até esgotar ou até o limite de
// páginas, devolvendo o que conseguiu — o job de sync tolera janelas parciais
// porque o upsert é idempotente.
type MercadoLivreClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewMercadoLivreClient constrói o cliente. baseURL vazio usa a API pública;
// os testes apontam para um servidor local.
func NewMercadoLivreClient(baseURL string) *MercadoLivreClient {
	if baseURL == "" {
		baseURL = meliBaseURL
	}
	return &MercadoLivreClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ── Estruturas internas da API do Mercado Livre ──────────────────────────────

type meliSearchResponse struct {
	Results []meliOrder `json:"results"`
	Paging  struct {
		Total  int `json:"total"`
		Offset int `json:"offset"`
		Limit  int `json:"limit"`
	} `json:"paging"`
}

type meliOrder struct {
	ID          int64           `json:"id"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	DateCreated time.Time       `json:"date_created"`
	PackID      *int64          `json:"pack_id"`
	Shipping    struct {
		ID *int64 `json:"id"`
	} `json:"shipping"`
	Buyer struct {
		Nickname  string `json:"nickname"`
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Phone     struct {
			AreaCode string `json:"area_code"`
			Number   string `json:"number"`
		} `json:"phone"`
	} `json:"buyer"`
}

// FetchOrders busca os pedidos criados a partir de `since` para a conta da
// loja. Requer ExternalAccountID (seller) e AccessToken válidos.
func (c *MercadoLivreClient) FetchOrders(ctx context.Context, store *entity.Store, since time.Time) ([]dto.OrderPayload, error) {
	if store.ExternalAccountID == "" || store.AccessToken == "" {
		return nil, fmt.Errorf("loja %s sem credenciais do Mercado Livre", store.ID)
	}

	var payloads []dto.OrderPayload
	offset := 0
	for {
		page, err := c.searchPage(ctx, store, since, offset)
		if err != nil {
			return nil, err
		}
		for _, o := range page.Results {
			payloads = append(payloads, normalizeMeliOrder(o))
		}
		offset += meliPageSize
		if offset >= page.Paging.Total || len(page.Results) == 0 {
			break
		}
	}
	return payloads, nil
}

func (c *MercadoLivreClient) searchPage(ctx context.Context, store *entity.Store, since time.Time, offset int) (*meliSearchResponse, error) {
	q := url.Values{}
	q.Set("seller", store.ExternalAccountID)
	q.Set("order.date_created.from", since.UTC().Format(time.RFC3339))
	q.Set("sort", "date_asc")
	q.Set("limit", fmt.Sprint(meliPageSize))
	q.Set("offset", fmt.Sprint(offset))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/orders/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+store.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mercado livre: orders/search: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("mercado livre: ler resposta: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mercado livre: status %d: %s", resp.StatusCode, truncate(body, 200))
	}

	var page meliSearchResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("mercado livre: decodificar resposta: %w", err)
	}
	return &page, nil
}

func normalizeMeliOrder(o meliOrder) dto.OrderPayload {
	raw, _ := json.Marshal(o)
	p := dto.OrderPayload{
		ExternalID:      fmt.Sprint(o.ID),
		ExternalOrderID: fmt.Sprint(o.ID),
		Status:          o.Status,
		Total:           o.TotalAmount,
		OrderCreatedAt:  o.DateCreated,
		CustomerName:    joinName(o.Buyer.FirstName, o.Buyer.LastName),
		CustomerEmail:   o.Buyer.Email,
		RawData:         raw,
	}
	if o.Shipping.ID != nil {
		p.ExternalShipmentID = fmt.Sprint(*o.Shipping.ID)
	}
	if o.PackID != nil {
		p.ExternalPackID = fmt.Sprint(*o.PackID)
	}
	if o.Buyer.Phone.Number != "" {
		p.CustomerPhone = o.Buyer.Phone.AreaCode + o.Buyer.Phone.Number
	}
	if p.CustomerName == "" {
		p.CustomerName = o.Buyer.Nickname
	}
	return p
}

func joinName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

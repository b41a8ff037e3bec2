// Package marketplace contém regras de domínio puras sobre os marketplaces
// suportados: a normalização dos status de pedido que cada plataforma reporta
// com vocabulário próprio.
package marketplace

import "strings"

// Buckets canônicos de status de pedido. O status bruto do marketplace é
// armazenado verbatim no Order; a agregação e os filtros usam só estes valores.
const (
	StatusPending     = "pending"
	StatusPaid        = "paid"
	StatusPreparing   = "preparing"
	StatusReadyToShip = "ready_to_ship"
	StatusShipped     = "shipped"
	StatusDelivered   = "delivered"
	StatusCancelled   = "cancelled"

	// StatusOther agrupa valores não reconhecidos; nunca é erro.
	StatusOther = "other"
)

// CanonicalStatuses é o conjunto fechado exposto para agregação, na ordem de
// exibição do dashboard (StatusOther fica fora, é só o bucket residual).
var CanonicalStatuses = []string{
	StatusPending,
	StatusPaid,
	StatusPreparing,
	StatusReadyToShip,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

// statusAliases mapeia os vocabulários conhecidos (MercadoLivre em minúsculas,
// Shopee em maiúsculas, variantes comuns) para os buckets canônicos. A chave é
// sempre o valor em minúsculas.
var statusAliases = map[string]string{
	// MercadoLivre
	"pending":            StatusPending,
	"payment_required":   StatusPending,
	"payment_in_process": StatusPending,
	"paid":               StatusPaid,
	"confirmed":          StatusPaid,
	"handling":           StatusPreparing,
	"preparing":          StatusPreparing,
	"invoiced":           StatusPreparing,
	"ready_to_ship":      StatusReadyToShip,
	"shipped":            StatusShipped,
	"in_transit":         StatusShipped,
	"delivered":          StatusDelivered,
	"cancelled":          StatusCancelled,
	"canceled":           StatusCancelled,

	// Shopee (reportados em maiúsculas; normalizados antes do lookup)
	"unpaid":             StatusPending,
	"to_confirm_receive": StatusShipped,
	"to_ship":            StatusPreparing,
	"processed":          StatusPreparing,
	"retry_ship":         StatusReadyToShip,
	"completed":          StatusDelivered,
	"in_cancel":          StatusCancelled,
}

// NormalizeStatus converte um status bruto de marketplace para o bucket
// canônico. Valores desconhecidos caem em StatusOther.
func NormalizeStatus(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return StatusOther
	}
	if canonical, ok := statusAliases[key]; ok {
		return canonical
	}
	return StatusOther
}

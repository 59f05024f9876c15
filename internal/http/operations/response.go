package operations

import (
	"time"

	"github.com/courtside/racketops/internal/operations"
)

type listResponse struct {
	Items []operationResponse `json:"items"`
	Total int                 `json:"total"`
}

type operationResponse struct {
	ID        string           `json:"id"`
	Kind      string           `json:"kind"`
	CreatedAt time.Time        `json:"createdAt"`
	Customer  customerResponse `json:"customer"`
	Title     string           `json:"title"`

	StatusLabel   string `json:"statusLabel"`
	PaymentLabel  string `json:"paymentLabel"`
	PaymentSource string `json:"paymentSource,omitempty"`

	Amount     int64  `json:"amount"`
	AmountNote string `json:"amountNote,omitempty"`

	Flow             int              `json:"flow"`
	SettlementAnchor string           `json:"settlementAnchor"`
	Related          *relatedResponse `json:"related,omitempty"`
	IsIntegrated     bool             `json:"isIntegrated"`

	Warnings []string `json:"warnings"`
	Pendings []string `json:"pendings"`
	Warn     bool     `json:"warn"`

	NextAction string `json:"nextAction,omitempty"`

	Stringing     *stringingResponse `json:"stringing,omitempty"`
	ReviewLevel   string             `json:"reviewLevel,omitempty"`
	ReviewReasons []string           `json:"reviewReasons,omitempty"`
}

type customerResponse struct {
	UserID string `json:"userId,omitempty"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Phone  string `json:"phone,omitempty"`
}

type relatedResponse struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
	Link string `json:"link"`
}

type stringingResponse struct {
	StringName string `json:"stringName"`
	Tension    string `json:"tension,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

func toResponse(it *operations.OperationItem) operationResponse {
	res := operationResponse{
		ID:        it.ID,
		Kind:      string(it.Kind),
		CreatedAt: it.CreatedAt,
		Customer: customerResponse{
			UserID: it.Customer.UserID,
			Name:   it.Customer.Name,
			Email:  it.Customer.Email,
			Phone:  it.Customer.Phone,
		},
		Title:            it.Title,
		StatusLabel:      it.StatusLabel,
		PaymentLabel:     it.PaymentLabel,
		PaymentSource:    it.PaymentSource,
		Amount:           it.Amount,
		AmountNote:       it.AmountNote,
		Flow:             int(it.Flow),
		SettlementAnchor: string(it.SettlementAnchor),
		IsIntegrated:     it.IsIntegrated,
		Warnings:         it.Warnings,
		Pendings:         it.Pendings,
		Warn:             it.Warn,
		NextAction:       it.NextAction,
		ReviewLevel:      string(it.ReviewLevel),
		ReviewReasons:    it.ReviewReasons,
	}

	// Reason slices are part of the contract even when empty.
	if res.Warnings == nil {
		res.Warnings = []string{}
	}

	if res.Pendings == nil {
		res.Pendings = []string{}
	}

	if it.Related != nil {
		res.Related = &relatedResponse{
			Kind: string(it.Related.Kind),
			ID:   it.Related.ID,
			Link: it.Related.Link,
		}
	}

	if it.Stringing != nil {
		res.Stringing = &stringingResponse{
			StringName: it.Stringing.StringName,
			Tension:    it.Stringing.Tension,
			Notes:      it.Stringing.Notes,
		}
	}

	return res
}

func toListResponse(res *operations.ListResult) listResponse {
	items := make([]operationResponse, 0, len(res.Items))
	for _, it := range res.Items {
		items = append(items, toResponse(it))
	}

	return listResponse{Items: items, Total: res.Total}
}

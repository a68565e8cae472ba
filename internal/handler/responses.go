package handler

import (
	"time"

	"github.com/mmeshcher/puntodeagua/internal/model"
	"github.com/mmeshcher/puntodeagua/internal/validation"
)

type accountResponse struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	Surname     string `json:"surname"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	Role        string `json:"role"`
	IsSuspended bool   `json:"is_suspended"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func newAccountResponse(a *model.Account) accountResponse {
	return accountResponse{
		ID:          a.ID,
		Email:       a.Email,
		Name:        a.Name,
		Surname:     a.Surname,
		Phone:       a.Phone,
		Address:     a.Address,
		Role:        string(a.Role),
		IsSuspended: a.Suspended(),
		CreatedAt:   a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   a.UpdatedAt.Format(time.RFC3339),
	}
}

func newAccountsResponse(accounts []model.Account) []accountResponse {
	resp := make([]accountResponse, 0, len(accounts))
	for i := range accounts {
		resp = append(resp, newAccountResponse(&accounts[i]))
	}
	return resp
}

type orderResponse struct {
	ID            int64            `json:"id"`
	AccountID     int64            `json:"account_id"`
	CustomerName  string           `json:"customer_name"`
	Phone         string           `json:"phone"`
	Address       string           `json:"address"`
	Quantities    model.Quantities `json:"quantities"`
	PaymentMethod string           `json:"payment_method"`
	Bank          string           `json:"bank,omitempty"`
	Reference     string           `json:"reference,omitempty"`
	Total         string           `json:"total"`
	Status        string           `json:"status"`
	Version       int64            `json:"version"`
	WhatsAppLink  string           `json:"whatsapp_link,omitempty"`
	MapsLink      string           `json:"maps_link"`
	CreatedAt     string           `json:"created_at"`
	UpdatedAt     string           `json:"updated_at"`
}

func newOrderResponse(o *model.Order) orderResponse {
	return orderResponse{
		ID:            o.ID,
		AccountID:     o.AccountID,
		CustomerName:  o.CustomerName,
		Phone:         o.Phone,
		Address:       o.Address,
		Quantities:    o.Quantities,
		PaymentMethod: o.PaymentMethod,
		Bank:          o.Bank,
		Reference:     o.Reference,
		Total:         o.Total.StringFixed(2),
		Status:        string(o.Status),
		Version:       o.Version,
		WhatsAppLink:  validation.WhatsAppLink(o.Phone),
		MapsLink:      validation.MapsLink(o.Address),
		CreatedAt:     o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     o.UpdatedAt.Format(time.RFC3339),
	}
}

func newOrdersResponse(orders []model.Order) []orderResponse {
	resp := make([]orderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, newOrderResponse(&orders[i]))
	}
	return resp
}

type bottlesResponse struct {
	Large18L  int64 `json:"18L"`
	Medium12L int64 `json:"12L"`
	Small5L   int64 `json:"5L"`
}

type summaryResponse struct {
	Period  string          `json:"period"`
	Revenue string          `json:"revenue"`
	Bottles bottlesResponse `json:"bottles"`
}

func newSummaryResponse(s *model.SalesSummary) summaryResponse {
	return summaryResponse{
		Period:  string(s.Period),
		Revenue: s.Revenue.StringFixed(2),
		Bottles: bottlesResponse{
			Large18L:  s.Large18L,
			Medium12L: s.Medium12L,
			Small5L:   s.Small5L,
		},
	}
}

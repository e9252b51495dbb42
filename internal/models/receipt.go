package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiptItem is a single line on a receipt.
type ReceiptItem struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// Receipt is a captured shopping receipt.
type Receipt struct {
	Model
	Merchant      string          `json:"merchant"`
	Total         decimal.Decimal `json:"total"`
	ImageURI      string          `json:"imageUri,omitempty"`
	TransactionID string          `json:"transactionId,omitempty"`
	Items         []ReceiptItem   `json:"items,omitempty"`
	UploadedAt    time.Time       `json:"uploadedAt"`
}

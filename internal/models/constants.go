package models

import "github.com/shopspring/decimal"

func init() {
	// Money travels as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

const (
	StatusPending   = "pendiente"
	StatusConfirmed = "confirmada"
	StatusCancelled = "cancelada"
)

const (
	DeliveryPending   = "pendiente"
	DeliveryDelivered = "entregado"
)

const (
	KindBooking        = "booking"
	KindProductInvoice = "product_invoice"
)

// ProductInvoiceLabel is the display label of product-only invoices.
const ProductInvoiceLabel = "Factura - Solo Productos"

const (
	ItemTypeService = "service"
	ItemTypeOffer   = "offer"
	ItemTypeProduct = "product"
)

const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

const (
	StockReasonSale       = "sale"
	StockReasonRestore    = "restore"
	StockReasonAdjustment = "adjustment"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	// MaxProducts caps the catalogue size.
	MaxProducts = 25
	// MaxActivePageProducts caps products shown on the public page.
	MaxActivePageProducts = 8

	// WorkerQueueSize is the in-memory sync queue capacity.
	WorkerQueueSize = 1000
)

// MaxAmount is the largest total accepted by discount validation.
var MaxAmount = decimal.RequireFromString("999999.99")

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

func ValidDeliveryStatus(s string) bool {
	return s == DeliveryPending || s == DeliveryDelivered
}

func ValidItemType(s string) bool {
	switch s {
	case ItemTypeService, ItemTypeOffer, ItemTypeProduct:
		return true
	}
	return false
}

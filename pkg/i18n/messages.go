// Package i18n resolves response and error message keys into English or
// Indonesian text, picked from the Accept-Language header.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys used outside the error types
const (
	KeySuccess         = "api.response.success"
	KeyUnexpected      = "error.unexpected"
	KeyValidation      = "validation.failed"
	KeyInvalidBody     = "request.invalid.body"
	KeyInvalidID       = "request.invalid.id"
	KeyInvalidQuery    = "request.invalid.query"
	KeyRouteNotFound   = "request.route.not.found"
	KeyRequestRejected = "request.rejected"

	KeyRequired = "validation.required"
	KeyMin      = "validation.min"
	KeyMax      = "validation.max"
	KeyEmail    = "validation.email"
	KeyCategory = "validation.category"
	KeyNoItems  = "validation.items.empty"
)

type text struct {
	en string
	id string
}

var messages = map[string]text{
	KeySuccess:         {"Request processed successfully", "Permintaan berhasil diproses"},
	KeyUnexpected:      {"An unexpected error occurred", "Terjadi kesalahan yang tidak terduga"},
	KeyValidation:      {"Validation failed", "Validasi gagal"},
	KeyInvalidBody:     {"Malformed request body", "Format body permintaan tidak valid"},
	KeyInvalidID:       {"Invalid id: %[1]v", "ID tidak valid: %[1]v"},
	KeyInvalidQuery:    {"Invalid value for query parameter %[1]v", "Nilai parameter query %[1]v tidak valid"},
	KeyRouteNotFound:   {"Route not found", "Rute tidak ditemukan"},
	KeyRequestRejected: {"Request rejected: %[1]v", "Permintaan ditolak: %[1]v"},

	"auth.unauthorized": {"Authentication required", "Autentikasi diperlukan"},

	KeyRequired: {"must not be blank", "wajib diisi"},
	KeyMin:      {"must be at least %[1]v", "minimal %[1]v"},
	KeyMax:      {"must be at most %[1]v", "maksimal %[1]v"},
	KeyEmail:    {"must be a valid email address", "harus berupa alamat email yang valid"},
	KeyCategory: {"must be one of %[1]v", "harus salah satu dari %[1]v"},
	KeyNoItems:  {"must contain at least one item", "harus berisi minimal satu item"},

	"customer.created.success": {"Customer created successfully", "Pelanggan berhasil dibuat"},
	"customer.not.found":       {"Customer with ID %[1]v not found", "Pelanggan dengan ID %[1]v tidak ditemukan"},
	"customer.email.duplicate": {"Customer with email %[1]v already exists", "Pelanggan dengan email %[1]v sudah terdaftar"},

	"product.created.success": {"Product created successfully", "Produk berhasil dibuat"},
	"product.updated.success": {"Product updated successfully", "Produk berhasil diperbarui"},
	"product.deleted.success": {"Product deleted successfully", "Produk berhasil dihapus"},
	"product.not.found":       {"Product with ID %[1]v not found", "Produk dengan ID %[1]v tidak ditemukan"},
	"product.name.duplicate":  {"Product with name %[1]v already exists", "Produk dengan nama %[1]v sudah ada"},
	"product.food.price.exceeded": {
		"FOOD products cannot be priced above 1,000,000",
		"Harga produk FOOD tidak boleh melebihi 1.000.000",
	},
	"product.price.update.completed.orders": {
		"Price cannot be changed for a product that has paid orders",
		"Harga tidak dapat diubah untuk produk yang memiliki pesanan lunas",
	},
	"product.deactivate.pending.orders": {
		"Product cannot be deactivated while it has pending orders",
		"Produk tidak dapat dinonaktifkan selama masih ada pesanan tertunda",
	},
	"product.delete.stock.not.zero": {
		"Product can only be deleted when stock is 0, current stock is %[1]v",
		"Produk hanya dapat dihapus jika stok 0, stok saat ini %[1]v",
	},

	"order.created.success":   {"Order created successfully", "Pesanan berhasil dibuat"},
	"order.paid.success":      {"Order paid successfully", "Pesanan berhasil dibayar"},
	"order.cancelled.success": {"Order cancelled successfully", "Pesanan berhasil dibatalkan"},
	"order.not.found":         {"Order with ID %[1]v not found", "Pesanan dengan ID %[1]v tidak ditemukan"},
	"order.product.not.active": {
		"Product %[1]v is not active",
		"Produk %[1]v tidak aktif",
	},
	"order.quantity.invalid": {
		"Quantity must be positive, got %[1]v",
		"Jumlah harus lebih dari 0, diterima %[1]v",
	},
	"order.insufficient.stock": {
		"Insufficient stock for %[1]v: available %[2]v, requested %[3]v",
		"Stok %[1]v tidak mencukupi: tersedia %[2]v, diminta %[3]v",
	},
	"order.pay.invalid.status": {
		"Only CREATED orders can be paid, current status is %[1]v",
		"Hanya pesanan berstatus CREATED yang dapat dibayar, status saat ini %[1]v",
	},
	"order.cancel.invalid.status": {
		"Only CREATED orders can be cancelled, current status is %[1]v",
		"Hanya pesanan berstatus CREATED yang dapat dibatalkan, status saat ini %[1]v",
	},
	"order.invalid.status": {
		"Order in status %[1]v cannot be changed",
		"Pesanan berstatus %[1]v tidak dapat diubah",
	},
}

var (
	supported = []language.Tag{language.English, language.Indonesian}
	matcher   = language.NewMatcher(supported)
	cat       = buildCatalog()
)

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, t := range messages {
		// SetString only fails on malformed tags
		_ = b.SetString(language.English, key, t.en)
		_ = b.SetString(language.Indonesian, key, t.id)
	}
	return b
}

// Match returns the supported language closest to an Accept-Language header.
// English is used when nothing matches.
func Match(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return language.English
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return language.English
	}
	return supported[index]
}

// Printer returns a message printer for the language matched from acceptLanguage
func Printer(acceptLanguage string) *message.Printer {
	return message.NewPrinter(Match(acceptLanguage), message.Catalog(cat))
}

// Translate renders key with args. Unknown keys are returned unchanged.
func Translate(p *message.Printer, key string, args ...any) string {
	if _, ok := messages[key]; !ok {
		return key
	}
	return p.Sprintf(key, args...)
}

// Known reports whether key has a catalog entry
func Known(key string) bool {
	_, ok := messages[key]
	return ok
}

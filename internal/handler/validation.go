package handler

import (
	"net/mail"
	"sort"
	"strings"

	"order-service/pkg/i18n"

	"github.com/shopspring/decimal"
	"golang.org/x/text/message"
)

var minPrice = decimal.RequireFromString("0.01")

// maxStock bounds a product's stock on create and the quantity of one order line
const maxStock = 1_000_000

type violation struct {
	field string
	key   string
	args  []interface{}
}

// ValidationError collects the field violations of one request
type ValidationError struct {
	violations []violation
}

func (v *ValidationError) add(field, key string, args ...interface{}) {
	v.violations = append(v.violations, violation{field: field, key: key, args: args})
}

func (v *ValidationError) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.add(field, i18n.KeyRequired)
	}
}

func (v *ValidationError) Error() string {
	fields := make([]string, 0, len(v.violations))
	for _, f := range v.violations {
		fields = append(fields, f.field)
	}
	sort.Strings(fields)
	return "invalid fields: " + strings.Join(fields, ", ")
}

// err returns v as an error, or nil when nothing was violated
func (v *ValidationError) err() error {
	if len(v.violations) == 0 {
		return nil
	}
	return v
}

// Fields renders each violation with p. The first violation of a field wins.
func (v *ValidationError) Fields(p *message.Printer) map[string]string {
	out := make(map[string]string, len(v.violations))
	for _, f := range v.violations {
		if _, seen := out[f.field]; seen {
			continue
		}
		out[f.field] = i18n.Translate(p, f.key, f.args...)
	}
	return out
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

package persistence

import "strings"

// SalesOrderSortFields is the whitelist of columns a client may order
// the order list by. Anything else falls back to created_at before the
// value gets near an ORDER BY clause.
var SalesOrderSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"number":          true,
	"dated":           true,
	"organization_id": true,
	"contragent_id":   true,
	"state":           true,
	"sum":             true,
	"priority":        true,
	"paid":            true,
}

// ValidateSortOrder normalizes a requested direction to ASC or DESC,
// defaulting to DESC.
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns field if the whitelist allows it, otherwise
// defaultField. The return value is the only thing interpolated into
// the ORDER BY clause.
func ValidateSortField(field string, allowed map[string]bool, defaultField string) string {
	field = strings.TrimSpace(field)
	if allowed[field] {
		return field
	}
	return defaultField
}

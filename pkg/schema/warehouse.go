// pkg/schema/warehouse.go
package schema

// WarehouseColumn describes one column of the analytical table.
type WarehouseColumn struct {
	Name string
	Type string // warehouse-native type
}

// Version identifies the warehouse table layout. Bump when columns change;
// loads are append-only and schema-additive, never destructive.
const Version = "v1"

// WarehouseColumns is the fixed, versioned column list for the analytical
// employees table. salary is textual because the masker replaces it with an
// opaque token before any row reaches the warehouse.
var WarehouseColumns = []WarehouseColumn{
	{Name: "employee_id", Type: "STRING"},
	{Name: "first_name", Type: "STRING"},
	{Name: "last_name", Type: "STRING"},
	{Name: "email", Type: "STRING"},
	{Name: "phone", Type: "STRING"},
	{Name: "ssn", Type: "STRING"},
	{Name: "department", Type: "STRING"},
	{Name: "position", Type: "STRING"},
	{Name: "salary", Type: "STRING"},
	{Name: "hire_date", Type: "DATE"},
	{Name: "street_address", Type: "STRING"},
	{Name: "city", Type: "STRING"},
	{Name: "state", Type: "STRING"},
	{Name: "zip_code", Type: "STRING"},
	{Name: "manager_id", Type: "STRING"},
	{Name: "performance_rating", Type: "STRING"},
	{Name: "created_at", Type: "TIMESTAMP_NTZ"},
	{Name: "data_source", Type: "STRING"},
	{Name: "masked_at", Type: "TIMESTAMP_NTZ"},
	{Name: "is_masked", Type: "BOOLEAN"},
}

package i18n

var enUSMessages = map[Code]string{
	"INVALID_CONFIGURATION": "The configuration is invalid: {{.Reason}}.",
	"INVALID_RATE":          "Animation speed must be a positive number{{if .Max}} no greater than {{.Max}}{{end}}, got {{.Rate}}.",
	"INVALID_ROW_COUNT":     "Row count must be positive, got {{.Rows}}.",
	"INVALID_BATCH_SIZE":    "Batch size must be positive, got {{.BatchSize}}.",
	"INVALID_POLICY":        "Unknown catch-up policy {{.Policy}}.",
	"UNKNOWN_INPUT":         "Unknown input {{.Kind}}.",
	"INVALID_STEPS":         "Step count must be positive, got {{.Steps}}.",
	"INVALID_FILTER":        "The filter expression is invalid.",
	"INVALID_PAGE_TOKEN":    "The page token is invalid.",
	"NOT_FOUND":             "The requested record was not found.",
}

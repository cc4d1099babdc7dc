package i18n

var ptBRMessages = map[Code]string{
	"INVALID_CONFIGURATION": "A configuração é inválida: {{.Reason}}.",
	"INVALID_RATE":          "A velocidade da animação deve ser um número positivo{{if .Max}} de no máximo {{.Max}}{{end}}, recebido {{.Rate}}.",
	"INVALID_ROW_COUNT":     "O número de linhas deve ser positivo, recebido {{.Rows}}.",
	"INVALID_BATCH_SIZE":    "O tamanho do lote deve ser positivo, recebido {{.BatchSize}}.",
	"INVALID_POLICY":        "Política de recuperação desconhecida {{.Policy}}.",
	"UNKNOWN_INPUT":         "Entrada desconhecida {{.Kind}}.",
	"INVALID_STEPS":         "O número de passos deve ser positivo, recebido {{.Steps}}.",
	"INVALID_FILTER":        "A expressão de filtro é inválida.",
	"INVALID_PAGE_TOKEN":    "O token de página é inválido.",
	"NOT_FOUND":             "O registro solicitado não foi encontrado.",
}

package reporter

import (
	"encoding/json"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/aleister1102/ocrdiff/internal/models"
)

// GetTemplateFunctions returns the functions available to report templates
func GetTemplateFunctions() template.FuncMap {
	return template.FuncMap{
		"json": func(v interface{}) (template.JS, error) {
			data, err := json.Marshal(v)
			if err != nil {
				return "", err
			}
			return template.JS(data), nil
		},
		"ToLower": strings.ToLower,
		"formatTime": func(t time.Time, layout string) string {
			if t.IsZero() {
				return "N/A"
			}
			return t.Format(layout)
		},
		"inc": func(i int) int {
			return i + 1
		},
		"operationLabel": operationLabel,
		"pageRef":        pageRef,
	}
}

// operationLabel names an operation the way the viewer's list does
func operationLabel(op models.Operation) string {
	switch op {
	case models.OperationDelete:
		return "删除"
	case models.OperationInsert:
		return "新增"
	default:
		return string(op)
	}
}

// pageRef formats a 1-based page number, or a dash when it is unknown
func pageRef(page int) string {
	if page <= 0 {
		return "-"
	}
	return "P" + strconv.Itoa(page)
}

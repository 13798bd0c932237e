package funcs

import (
	"fmt"
	"strings"
	"text/template"
	"time"
)

var TemplateFuncs = template.FuncMap{
	"now":          time.Now,
	"formatTime":   formatTime,
	"formatAmount": formatAmount,
	"upper":        strings.ToUpper,
	"lower":        strings.ToLower,
}

func formatTime(format string, t time.Time) string {
	return t.Format(format)
}

func formatAmount(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

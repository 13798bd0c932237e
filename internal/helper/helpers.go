package helper

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/kawooya/remitta/internal/errHandler"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type HelperRepository struct {
	baseUrl    *string
	WG         *sync.WaitGroup
	errHandler *errHandler.ErrorHandler
	printer    *message.Printer
}

func New(baseUrl *string, wg *sync.WaitGroup, errHandler *errHandler.ErrorHandler) *HelperRepository {
	return &HelperRepository{
		baseUrl:    baseUrl,
		WG:         wg,
		errHandler: errHandler,
		printer:    message.NewPrinter(language.English),
	}
}

func (h *HelperRepository) NewEmailData() map[string]any {
	data := map[string]any{
		"BaseURL": h.baseUrl,
	}

	return data
}

// FormatAmount renders an amount with thousands separators for
// notification and email copy, e.g. "UGX 37,000.00".
func (h *HelperRepository) FormatAmount(amount float64, code string) string {
	return h.printer.Sprintf("%s %.2f", code, amount)
}

// BackgroundTask runs fn in its own goroutine, recovering panics so a
// failing side task never takes down the request handler.
func (h *HelperRepository) BackgroundTask(r *http.Request, fn func() error) {
	h.WG.Add(1)

	go func() {
		defer h.WG.Done()

		defer func() {
			err := recover()
			if err != nil {
				h.errHandler.ReportServerError(nil, fmt.Errorf("%s", err))
			}
		}()

		err := fn()
		if err != nil {
			h.errHandler.ReportServerError(nil, err)
		}
	}()
}

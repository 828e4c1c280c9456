package validator

import (
	"bytes"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var disableConfigDir sync.Once

// pdfPageCount returns the page count of a PDF, or 0 when pdfcpu cannot
// parse it. It is a diagnostic only and never decides acceptance.
func pdfPageCount(content []byte) (count int) {
	disableConfigDir.Do(api.DisableConfigDir)

	defer func() {
		if recover() != nil {
			count = 0
		}
	}()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	n, err := api.PageCount(bytes.NewReader(content), conf)
	if err != nil {
		return 0
	}
	return n
}

package pdf

import (
	"bytes"
	"fmt"

	dpdf "github.com/dslipak/pdf"
)

// OpenWithDslipak parses an in-memory PDF using the dslipak/pdf library.
// It is the last resort when the other readers reject the file.
func OpenWithDslipak(data []byte) (doc Document, err error) {
	defer recoverBackend(BackendDslipak, &err)

	r, err := dpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF with dslipak: %w", err)
	}

	return &rscDocument[dpdf.Value]{
		backend: BackendDslipak,
		pages:   r.NumPage(),
		page: func(n int) dpdf.Value {
			return r.Page(n).V
		},
	}, nil
}

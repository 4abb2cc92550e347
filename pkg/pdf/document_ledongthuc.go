package pdf

import (
	"bytes"
	"fmt"

	lpdf "github.com/ledongthuc/pdf"
)

// OpenWithLedongthuc parses an in-memory PDF using the ledongthuc/pdf library
func OpenWithLedongthuc(data []byte) (doc Document, err error) {
	defer recoverBackend(BackendLedongthuc, &err)

	r, err := lpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF with ledongthuc: %w", err)
	}

	return &rscDocument[lpdf.Value]{
		backend: BackendLedongthuc,
		pages:   r.NumPage(),
		page: func(n int) lpdf.Value {
			return r.Page(n).V
		},
	}, nil
}

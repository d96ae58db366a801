// Package pagination derives page metadata for paginated TourAPI listings.
package pagination

import "github.com/hojin-kr/kto-tour-client/pkg/envelope"

// Metadata describes one page of a listing. Derived per response, never
// persisted.
type Metadata struct {
	PageNo     int `json:"pageNo"`
	NumOfRows  int `json:"numOfRows"`
	TotalCount int `json:"totalCount"`
	TotalPages int `json:"totalPages"`
}

// Compute builds page metadata from a normalized body. Counts echoed back by
// the upstream are preferred; the requested values are the fallback when the
// upstream omits them. TotalPages is always recomputed, never trusted from
// the wire.
func Compute(body *envelope.Body, requestedPageNo, requestedNumOfRows int) Metadata {
	meta := Metadata{
		PageNo:    requestedPageNo,
		NumOfRows: requestedNumOfRows,
	}

	if body != nil {
		if body.PageNo > 0 {
			meta.PageNo = body.PageNo
		}
		if body.NumOfRows > 0 {
			meta.NumOfRows = body.NumOfRows
		}
		meta.TotalCount = body.TotalCount
	}

	meta.TotalPages = totalPages(meta.TotalCount, meta.NumOfRows)
	return meta
}

func totalPages(totalCount, numOfRows int) int {
	if numOfRows <= 0 || totalCount <= 0 {
		return 0
	}
	return (totalCount + numOfRows - 1) / numOfRows
}

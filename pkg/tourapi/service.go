// Package tourapi exposes the typed TourAPI operations consumed by the rest
// of the application: area lookup, listings, keyword search, detail, intro,
// image, and pet-info lookups. Each operation builds a request spec and
// delegates to the retrying client; failures propagate unchanged.
package tourapi

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hojin-kr/kto-tour-client/pkg/client"
	"github.com/hojin-kr/kto-tour-client/pkg/envelope"
	"github.com/hojin-kr/kto-tour-client/pkg/logging"
	"github.com/hojin-kr/kto-tour-client/pkg/pagination"
)

// Upstream endpoint operations.
const (
	endpointAreaCode = "areaCode2"
	endpointAreaList = "areaBasedList2"
	endpointSearch   = "searchKeyword2"
	endpointDetail   = "detailCommon2"
	endpointIntro    = "detailIntro2"
	endpointImages   = "detailImage2"
	endpointPetTour  = "detailPetTour2"
)

// ValidationError is a caller mistake: invalid or missing arguments.
// It is surfaced immediately and never retried.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Caller performs one resilient upstream call. *client.Client implements it;
// tests substitute fakes.
type Caller interface {
	Call(ctx context.Context, spec client.RequestSpec) (*envelope.Body, error)
}

// Service provides the typed endpoint operations.
type Service struct {
	caller Caller
	logger zerolog.Logger
}

// NewService creates a service on top of a caller.
func NewService(caller Caller) *Service {
	return &Service{
		caller: caller,
		logger: logging.NewLogger("tourapi"),
	}
}

// ListParams are the arguments for area-based listings. AreaCode and
// ContentTypeID are optional filters; empty values are dropped from the
// request.
type ListParams struct {
	AreaCode      string
	ContentTypeID string
	NumOfRows     int
	PageNo        int
}

// SearchParams are the arguments for keyword search.
type SearchParams struct {
	Keyword       string
	AreaCode      string
	ContentTypeID string
	NumOfRows     int
	PageNo        int
}

// LookupAreas returns administrative area codes. With a parentCode it
// returns that area's districts instead.
func (s *Service) LookupAreas(ctx context.Context, parentCode string) ([]AreaCode, error) {
	body, err := s.caller.Call(ctx, client.RequestSpec{
		Endpoint: endpointAreaCode,
		Query: map[string]string{
			"areaCode":  parentCode,
			"numOfRows": "100",
			"pageNo":    "1",
		},
	})
	if err != nil {
		return nil, err
	}
	return decodeItems[AreaCode](body.Items)
}

// ListByArea returns one page of tour items for the given filters.
func (s *Service) ListByArea(ctx context.Context, params ListParams) ([]TourItem, error) {
	items, _, err := s.ListByAreaPaged(ctx, params)
	return items, err
}

// ListByAreaPaged is the pagination-aware variant of ListByArea.
func (s *Service) ListByAreaPaged(ctx context.Context, params ListParams) ([]TourItem, pagination.Metadata, error) {
	body, err := s.caller.Call(ctx, client.RequestSpec{
		Endpoint: endpointAreaList,
		Query: map[string]string{
			"areaCode":      params.AreaCode,
			"contentTypeId": params.ContentTypeID,
			"numOfRows":     intParam(params.NumOfRows),
			"pageNo":        intParam(params.PageNo),
		},
	})
	if err != nil {
		return nil, pagination.Metadata{}, err
	}

	items, err := decodeItems[TourItem](body.Items)
	if err != nil {
		return nil, pagination.Metadata{}, err
	}
	return items, pagination.Compute(body, params.PageNo, params.NumOfRows), nil
}

// SearchByKeyword returns one page of tour items matching the keyword.
// Fails fast with ValidationError when the keyword is blank after trimming;
// no network call is made.
func (s *Service) SearchByKeyword(ctx context.Context, params SearchParams) ([]TourItem, error) {
	items, _, err := s.SearchByKeywordPaged(ctx, params)
	return items, err
}

// SearchByKeywordPaged is the pagination-aware variant of SearchByKeyword.
func (s *Service) SearchByKeywordPaged(ctx context.Context, params SearchParams) ([]TourItem, pagination.Metadata, error) {
	keyword := strings.TrimSpace(params.Keyword)
	if keyword == "" {
		return nil, pagination.Metadata{}, &ValidationError{Field: "keyword", Reason: "must not be blank"}
	}

	body, err := s.caller.Call(ctx, client.RequestSpec{
		Endpoint: endpointSearch,
		Query: map[string]string{
			"keyword":       keyword,
			"areaCode":      params.AreaCode,
			"contentTypeId": params.ContentTypeID,
			"numOfRows":     intParam(params.NumOfRows),
			"pageNo":        intParam(params.PageNo),
		},
	})
	if err != nil {
		return nil, pagination.Metadata{}, err
	}

	items, err := decodeItems[TourItem](body.Items)
	if err != nil {
		return nil, pagination.Metadata{}, err
	}
	return items, pagination.Compute(body, params.PageNo, params.NumOfRows), nil
}

// GetDetail returns the common detail record, or nil when the upstream has
// no entry for the content ID.
func (s *Service) GetDetail(ctx context.Context, contentID string) (*TourDetail, error) {
	if contentID == "" {
		return nil, &ValidationError{Field: "contentId", Reason: "must not be empty"}
	}

	body, err := s.caller.Call(ctx, client.RequestSpec{
		Endpoint: endpointDetail,
		Query:    map[string]string{"contentId": contentID},
	})
	if err != nil {
		return nil, err
	}
	return firstItem[TourDetail](body.Items)
}

// GetIntro returns the type-specific intro record, or nil when absent.
func (s *Service) GetIntro(ctx context.Context, contentID, contentTypeID string) (*TourIntro, error) {
	if contentID == "" {
		return nil, &ValidationError{Field: "contentId", Reason: "must not be empty"}
	}
	if contentTypeID == "" {
		return nil, &ValidationError{Field: "contentTypeId", Reason: "must not be empty"}
	}

	body, err := s.caller.Call(ctx, client.RequestSpec{
		Endpoint: endpointIntro,
		Query: map[string]string{
			"contentId":     contentID,
			"contentTypeId": contentTypeID,
		},
	})
	if err != nil {
		return nil, err
	}
	return firstItem[TourIntro](body.Items)
}

// GetImages returns the image gallery for a content ID, possibly empty.
func (s *Service) GetImages(ctx context.Context, contentID string) ([]TourImage, error) {
	if contentID == "" {
		return nil, &ValidationError{Field: "contentId", Reason: "must not be empty"}
	}

	body, err := s.caller.Call(ctx, client.RequestSpec{
		Endpoint: endpointImages,
		Query: map[string]string{
			"contentId": contentID,
			"imageYN":   "Y",
		},
	})
	if err != nil {
		return nil, err
	}
	return decodeItems[TourImage](body.Items)
}

// GetPetInfo returns the pet-accompaniment record, or nil when absent.
func (s *Service) GetPetInfo(ctx context.Context, contentID string) (*PetTourInfo, error) {
	if contentID == "" {
		return nil, &ValidationError{Field: "contentId", Reason: "must not be empty"}
	}

	body, err := s.caller.Call(ctx, client.RequestSpec{
		Endpoint: endpointPetTour,
		Query:    map[string]string{"contentId": contentID},
	})
	if err != nil {
		return nil, err
	}
	return firstItem[PetTourInfo](body.Items)
}

// TotalByArea returns the total listing count for an area. Only the count is
// needed, so the page is kept minimal.
func (s *Service) TotalByArea(ctx context.Context, areaCode string) (int, error) {
	_, meta, err := s.ListByAreaPaged(ctx, ListParams{AreaCode: areaCode, NumOfRows: 1, PageNo: 1})
	if err != nil {
		return 0, err
	}
	return meta.TotalCount, nil
}

// TotalByCategory returns the total listing count for a content type.
func (s *Service) TotalByCategory(ctx context.Context, contentTypeID string) (int, error) {
	_, meta, err := s.ListByAreaPaged(ctx, ListParams{ContentTypeID: contentTypeID, NumOfRows: 1, PageNo: 1})
	if err != nil {
		return 0, err
	}
	return meta.TotalCount, nil
}

// GrandTotal returns the unfiltered listing count.
func (s *Service) GrandTotal(ctx context.Context) (int, error) {
	_, meta, err := s.ListByAreaPaged(ctx, ListParams{NumOfRows: 1, PageNo: 1})
	if err != nil {
		return 0, err
	}
	return meta.TotalCount, nil
}

// intParam renders a positive int for the query string. Zero and negative
// values are treated as unset and dropped by the URL builder.
func intParam(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}

// decodeItems unmarshals every raw item into T.
func decodeItems[T any](items envelope.ItemList) ([]T, error) {
	out := make([]T, 0, len(items))
	for _, raw := range items {
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, &envelope.DecodeError{Reason: "item does not match expected shape", Err: err}
		}
		out = append(out, item)
	}
	return out, nil
}

// firstItem returns the first decoded item, or nil when the list is empty.
func firstItem[T any](items envelope.ItemList) (*T, error) {
	decoded, err := decodeItems[T](items)
	if err != nil {
		return nil, err
	}
	if len(decoded) == 0 {
		return nil, nil
	}
	return &decoded[0], nil
}

package service

import (
	"strings"

	"github.com/noah-isme/gema-content-admin/internal/dto"
	"github.com/noah-isme/gema-content-admin/internal/models"
	"github.com/noah-isme/gema-content-admin/internal/repository"
)

// normalizeListQuery clamps paging to the API bounds.
func normalizeListQuery(query dto.ListQuery) dto.ListQuery {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = dto.DefaultLimit
	}
	if query.Limit > dto.MaxLimit {
		query.Limit = dto.MaxLimit
	}
	query.Search = strings.TrimSpace(query.Search)
	query.Status = strings.ToLower(strings.TrimSpace(query.Status))
	query.ParentID = strings.TrimSpace(query.ParentID)
	query.Tool = strings.TrimSpace(query.Tool)
	query.Category = strings.TrimSpace(query.Category)
	return query
}

func contentFilter(query dto.ListQuery, parentField string) (repository.ContentFilter, error) {
	if query.ParentID != "" {
		if err := requireID(parentField, query.ParentID); err != nil {
			return repository.ContentFilter{}, err
		}
	}
	return repository.ContentFilter{
		Search:   query.Search,
		Status:   query.Status,
		ParentID: query.ParentID,
		Tool:     query.Tool,
		Category: query.Category,
		Page:     query.Page,
		PageSize: query.Limit,
	}, nil
}

func requireID(field, id string) error {
	if !models.IsCanonicalID(id) {
		return newValidationError(field, "invalid id %q", id)
	}
	return nil
}

func requireIDs(field string, ids []string) error {
	for _, id := range ids {
		if err := requireID(field, id); err != nil {
			return err
		}
	}
	return nil
}

func listResult[M any, R any](items []M, total int64, query dto.ListQuery, convert func(M) R) dto.ListResult[R] {
	out := make([]R, 0, len(items))
	for _, item := range items {
		out = append(out, convert(item))
	}
	return dto.ListResult[R]{
		Items:      out,
		Pagination: dto.NewPagination(query.Page, query.Limit, total),
	}
}

func trimmedOr(value *string, fallback string) string {
	if value == nil {
		return fallback
	}
	return strings.TrimSpace(*value)
}

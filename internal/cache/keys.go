package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// BuildKey joins a namespace and parts into a deterministic cache key, so the
// same logical resource always maps to the same key regardless of caller.
func BuildKey(namespace string, parts ...string) string {
	if len(parts) == 0 {
		return namespace
	}
	return namespace + ":" + strings.Join(parts, ":")
}

// HashFilters canonicalizes a filter set (keys sorted, empty values dropped)
// and digests it into a short fixed-length string. Reordered but equal filter
// sets collide to the same key.
func HashFilters(filters map[string]string) string {
	canonical := make(map[string]string, len(filters))
	for k, v := range filters {
		if v != "" {
			canonical[k] = v
		}
	}

	// json.Marshal emits map keys in sorted order, which is exactly the
	// canonical form needed here.
	data, _ := json.Marshal(canonical)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%x", sum)[:12]
}

func normalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// Key builders for the resource kinds the API caches.

func CompanyDetailKey(ticker string) string {
	return BuildKey("company", "detail", normalizeTicker(ticker))
}

// Variant parameters sit before the ticker so the ticker stays the last
// segment and company-wide invalidation can glob on it.
func CompanyTimeseriesKey(ticker string, days int) string {
	return BuildKey("company", "timeseries", strconv.Itoa(days), normalizeTicker(ticker))
}

func CompanyOwnershipKey(ticker string) string {
	return BuildKey("company", "ownership", normalizeTicker(ticker))
}

func CompanyNewsKey(ticker string, limit int) string {
	return BuildKey("company", "news", strconv.Itoa(limit), normalizeTicker(ticker))
}

func CompaniesListKey(filtersHash string) string {
	return BuildKey("companies", "list", filtersHash)
}

func DealDetailKey(dealID string) string {
	return BuildKey("deal", "detail", dealID)
}

func DealsListKey(filtersHash string) string {
	return BuildKey("deals", "list", filtersHash)
}

func SearchResultsKey(query string) string {
	return BuildKey("search", "results", strings.ToLower(query))
}

func CompsKey(filtersHash string) string {
	return BuildKey("comps", "list", filtersHash)
}

func CompsDetailKey(ticker string) string {
	return BuildKey("comps", "detail", normalizeTicker(ticker))
}

func PrecedentsKey(filtersHash string) string {
	return BuildKey("precedents", "list", filtersHash)
}

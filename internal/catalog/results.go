package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

type MatchingResults struct {
	RequestID int               `json:"request_id"`
	Items     []*MatchingResult `json:"items"`
}

func (r *MatchingResults) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Items)
}

// ProviderIDs returns provider ids in rank order.
func (r *MatchingResults) ProviderIDs() []int {
	ids := make([]int, 0, r.Len())
	if r == nil {
		return ids
	}
	for _, item := range r.Items {
		if item.Provider != nil {
			ids = append(ids, item.Provider.ID)
		}
	}
	return ids
}

// Report renders one line per result: rank, provider and score.
func (r *MatchingResults) Report() string {
	if r.Len() == 0 {
		return "no providers matched"
	}

	var b strings.Builder
	for _, item := range r.Items {
		name := ""
		id := 0
		if item.Provider != nil {
			id = item.Provider.ID
			name = item.Provider.CompanyName
		}
		fmt.Fprintf(&b, "#%d provider=%d %s score=%.2f\n", item.Rank, id, name, item.MatchScore)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *MatchingResults) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", fmt.Sprintf("matches_%d_*.json", r.RequestID))
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", err
	}
	return file.Name(), nil
}

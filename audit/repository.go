// audit/repository.go
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const indexName = "access-decisions"

type Repository interface {
	LogDecision(ctx context.Context, log AuditLog) error
	QueryDecisions(ctx context.Context, q Query) ([]AuditLog, error)
}

type ElasticsearchRepository struct {
	esClient *elasticsearch.Client
}

// NewElasticsearchRepository creates a new repository with a given Elasticsearch client URL.
func NewElasticsearchRepository(esURL string) (*ElasticsearchRepository, error) {
	return NewElasticsearchRepositoryWithConfig(elasticsearch.Config{
		Addresses: []string{esURL},
	})
}

func NewElasticsearchRepositoryWithConfig(cfg elasticsearch.Config) (*ElasticsearchRepository, error) {
	esClient, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &ElasticsearchRepository{esClient: esClient}, nil
}

// LogDecision indexes one decision. The log id is the document id, so a
// retried write does not duplicate it.
func (r *ElasticsearchRepository) LogDecision(ctx context.Context, log AuditLog) error {
	data, err := json.Marshal(log)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      indexName,
		DocumentID: log.ID,
		Body:       bytes.NewReader(data),
	}

	res, err := req.Do(ctx, r.esClient)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error indexing document: %s", res.String())
	}

	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source AuditLog `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func buildQuery(q Query) map[string]any {
	must := []any{
		map[string]any{"term": map[string]any{"business_id": q.BusinessID}},
		map[string]any{
			"range": map[string]any{
				"timestamp": map[string]any{
					"gte": q.From.Format(time.RFC3339Nano),
					"lte": q.To.Format(time.RFC3339Nano),
				},
			},
		},
	}
	if q.UserID != "" {
		must = append(must, map[string]any{"term": map[string]any{"user_id": q.UserID}})
	}
	if q.App != "" {
		must = append(must, map[string]any{"term": map[string]any{"app": q.App}})
	}
	return map[string]any{
		"query": map[string]any{"bool": map[string]any{"must": must}},
		"sort":  []any{map[string]any{"timestamp": map[string]any{"order": "desc"}}},
		"from":  q.Offset,
		"size":  q.Limit,
	}
}

// QueryDecisions returns the newest decisions first.
func (r *ElasticsearchRepository) QueryDecisions(ctx context.Context, q Query) ([]AuditLog, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(buildQuery(q)); err != nil {
		return nil, err
	}

	res, err := r.esClient.Search(
		r.esClient.Search.WithContext(ctx),
		r.esClient.Search.WithIndex(indexName),
		r.esClient.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		// nothing was indexed yet
		return []AuditLog{}, nil
	}
	if res.IsError() {
		return nil, fmt.Errorf("error searching documents: %s", res.String())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	logs := make([]AuditLog, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		logs = append(logs, hit.Source)
	}
	return logs, nil
}

// MemoryRepository keeps the newest decisions in process. It backs the service
// when Elasticsearch is not configured.
type MemoryRepository struct {
	mu   sync.RWMutex
	logs []AuditLog
	max  int
}

func NewMemoryRepository(max int) *MemoryRepository {
	if max <= 0 {
		max = 10000
	}
	return &MemoryRepository{max: max}
}

func (r *MemoryRepository) LogDecision(_ context.Context, log AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, log)
	if len(r.logs) > r.max {
		r.logs = r.logs[len(r.logs)-r.max:]
	}
	return nil
}

func (r *MemoryRepository) QueryDecisions(_ context.Context, q Query) ([]AuditLog, error) {
	r.mu.RLock()
	var matched []AuditLog
	for _, log := range r.logs {
		if log.BusinessID != q.BusinessID || log.Timestamp.Before(q.From) || log.Timestamp.After(q.To) {
			continue
		}
		if q.UserID != "" && log.UserID != q.UserID {
			continue
		}
		if q.App != "" && log.App != q.App {
			continue
		}
		matched = append(matched, log)
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Timestamp.After(matched[j].Timestamp) })
	if q.Offset >= len(matched) {
		return []AuditLog{}, nil
	}
	matched = matched[q.Offset:]
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

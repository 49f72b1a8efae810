package esindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/go-ddd-todo/internal/application"
	"github.com/oksasatya/go-ddd-todo/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

const taskMapping = `{
  "mappings": {
    "properties": {
      "user_id":     {"type": "keyword"},
      "list_id":     {"type": "keyword"},
      "title":       {"type": "text"},
      "description": {"type": "text"},
      "subtasks":    {"type": "text"},
      "completed":   {"type": "boolean"},
      "due_date":    {"type": "date"},
      "created_at":  {"type": "date"},
      "updated_at":  {"type": "date"}
    }
  }
}`

// TaskIndex mirrors tasks into an Elasticsearch index for full-text search.
type TaskIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewTaskIndex(es *elasticsearch.Client, index string) *TaskIndex {
	return &TaskIndex{es: es, index: index}
}

// EnsureIndex creates the index with its mapping when missing.
func (x *TaskIndex) EnsureIndex(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := x.es.Indices.Exists([]string{x.index}, x.es.Indices.Exists.WithContext(c))
	if err != nil {
		return err
	}
	_ = res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}
	res, err = x.es.Indices.Create(x.index,
		x.es.Indices.Create.WithContext(c),
		x.es.Indices.Create.WithBody(bytes.NewReader([]byte(taskMapping))),
	)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusBadRequest { // 400: created concurrently
		return fmt.Errorf("create index %s: %s", x.index, res.Status())
	}
	return nil
}

func taskDocument(t entity.Task) map[string]any {
	subs := make([]string, 0, len(t.Subtasks))
	for _, s := range t.Subtasks {
		subs = append(subs, s.Title)
	}
	doc := map[string]any{
		"id":         t.ID,
		"user_id":    t.UserID,
		"list_id":    t.ListID,
		"title":      t.Title,
		"subtasks":   subs,
		"completed":  t.Completed,
		"created_at": t.CreatedAt.Format(time.RFC3339Nano),
		"updated_at": t.UpdatedAt.Format(time.RFC3339Nano),
	}
	if t.Description != nil {
		doc["description"] = *t.Description
	}
	if t.DueDate != nil {
		doc["due_date"] = t.DueDate.UTC().Format(time.RFC3339Nano)
	}
	return doc
}

func (x *TaskIndex) IndexTask(ctx context.Context, t entity.Task) error {
	b, err := json.Marshal(taskDocument(t))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.index, DocumentID: t.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("index task %s: %s", t.ID, res.Status())
	}
	return nil
}

func (x *TaskIndex) DeleteTask(ctx context.Context, userID, id string) error {
	return x.deleteBy(ctx, ownerFilter(userID, map[string]any{"term": map[string]any{"_id": id}}))
}

func (x *TaskIndex) DeleteList(ctx context.Context, userID, listID string) error {
	return x.deleteBy(ctx, ownerFilter(userID, map[string]any{"term": map[string]any{"list_id": listID}}))
}

func (x *TaskIndex) deleteBy(ctx context.Context, query map[string]any) error {
	b, err := json.Marshal(map[string]any{"query": query})
	if err != nil {
		return err
	}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := x.es.DeleteByQuery([]string{x.index}, bytes.NewReader(b),
		x.es.DeleteByQuery.WithContext(c),
		x.es.DeleteByQuery.WithConflicts("proceed"),
	)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete by query: %s", res.Status())
	}
	return nil
}

// ownerFilter wraps extra filters so every query is pinned to one user.
func ownerFilter(userID string, extra ...map[string]any) map[string]any {
	filters := []map[string]any{{"term": map[string]any{"user_id": userID}}}
	filters = append(filters, extra...)
	return map[string]any{"bool": map[string]any{"filter": filters}}
}

func searchQuery(userID, q string, size int) map[string]any {
	query := ownerFilter(userID)
	query["bool"].(map[string]any)["must"] = []map[string]any{{
		"multi_match": map[string]any{
			"query":     q,
			"fields":    []string{"title^2", "description", "subtasks"},
			"fuzziness": "AUTO",
		},
	}}
	return map[string]any{"query": query, "size": size}
}

func (x *TaskIndex) Search(ctx context.Context, userID, q string, size int) ([]application.TaskHit, error) {
	b, err := json.Marshal(searchQuery(userID, q, size))
	if err != nil {
		return nil, err
	}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.es.Search(x.es.Search.WithContext(c), x.es.Search.WithIndex(x.index), x.es.Search.WithBody(bytes.NewReader(b)))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		if res.StatusCode == http.StatusNotFound {
			return []application.TaskHit{}, nil
		}
		return nil, fmt.Errorf("search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string  `json:"_id"`
				Score  float64 `json:"_score"`
				Source struct {
					Title     string `json:"title"`
					ListID    string `json:"list_id"`
					Completed bool   `json:"completed"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]application.TaskHit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, application.TaskHit{
			ID:        h.ID,
			Title:     h.Source.Title,
			ListID:    h.Source.ListID,
			Completed: h.Source.Completed,
			Score:     h.Score,
		})
	}
	return out, nil
}

var _ application.TaskIndexer = (*TaskIndex)(nil)

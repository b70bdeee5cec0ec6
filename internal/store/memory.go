package store

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// MemoryHit is one ranked retrieval result.
type MemoryHit struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata"`
}

// AddMemory stores a text record for later keyword retrieval and returns
// its id.
func (s *Store) AddMemory(sessionID, text string, metadata map[string]string) (string, error) {
	id := uuid.NewString()
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return "", err
	}
	_, err = s.DB.Exec(
		`INSERT INTO memories (id, session_id, content, metadata_json) VALUES (?, ?, ?, ?)`,
		id, sessionID, text, string(metaJSON),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// SearchMemory ranks the session's records by how many query terms they
// contain, recency breaking ties. Keyword containment stands in for the
// external vector store; the contract is the same: ranked top-k hits.
func (s *Store) SearchMemory(sessionID, query string, topK int) ([]MemoryHit, error) {
	if topK <= 0 {
		topK = 5
	}

	rows, err := s.DB.Query(
		`SELECT id, content, metadata_json FROM memories WHERE session_id = ? ORDER BY created_at DESC`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	terms := strings.Fields(strings.ToLower(query))

	type scored struct {
		hit   MemoryHit
		score int
		order int
	}
	var candidates []scored

	order := 0
	for rows.Next() {
		var id, content, metaJSON string
		if err := rows.Scan(&id, &content, &metaJSON); err != nil {
			return nil, err
		}

		score := 0
		lower := strings.ToLower(content)
		for _, term := range terms {
			if strings.Contains(lower, term) {
				score++
			}
		}
		if score == 0 {
			order++
			continue
		}

		var metadata map[string]string
		if err := json.Unmarshal([]byte(metaJSON), &metadata); err != nil {
			metadata = map[string]string{}
		}
		candidates = append(candidates, scored{
			hit:   MemoryHit{ID: id, Text: content, Metadata: metadata},
			score: score,
			order: order,
		})
		order++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].order < candidates[j].order
	})

	if len(candidates) > topK {
		candidates = candidates[:topK]
	}
	hits := make([]MemoryHit, 0, len(candidates))
	for _, c := range candidates {
		hits = append(hits, c.hit)
	}
	return hits, nil
}

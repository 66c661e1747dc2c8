// Package model defines the core memory data types.
package model

import (
	"strconv"
	"time"
)

// Type enumerates the kinds of memory a MemoryItem can represent.
type Type string

const (
	TypeFact       Type = "fact"
	TypeDecision   Type = "decision"
	TypePreference Type = "preference"
	TypeEvent      Type = "event"
	TypeGoal       Type = "goal"
	TypeTodo       Type = "todo"
)

// ValidTypes are the allowed memory types.
var ValidTypes = map[Type]bool{
	TypeFact:       true,
	TypeDecision:   true,
	TypePreference: true,
	TypeEvent:      true,
	TypeGoal:       true,
	TypeTodo:       true,
}

// Scope enumerates the retrieval-filter tag carried by every item.
type Scope string

const (
	ScopeGlobal    Scope = "global"
	ScopeWorkspace Scope = "workspace"
	ScopeUser      Scope = "user"
)

// ValidScopes are the allowed scopes.
var ValidScopes = map[Scope]bool{
	ScopeGlobal:    true,
	ScopeWorkspace: true,
	ScopeUser:      true,
}

// Status enumerates the lifecycle states of a MemoryItem.
type Status string

const (
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
	StatusDeleted  Status = "deleted"
)

// MemoryItem is a durable unit of memory.
type MemoryItem struct {
	ID            string    `json:"id"`
	Type          Type      `json:"type"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Summary       string    `json:"summary,omitempty"`
	Source        string    `json:"source,omitempty"`
	Scope         Scope     `json:"scope"`
	Workspace     string    `json:"workspace"`
	Tags          []string  `json:"tags,omitempty"`
	Importance    float64   `json:"importance"`
	Status        Status    `json:"status"`
	SupersedesID  string    `json:"supersedesId,omitempty"`
	ContentHash   string    `json:"contentHash"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ContentChunk is a contiguous sub-span of an item's content.
type ContentChunk struct {
	ID         string     `json:"id"`
	MemoryID   string     `json:"memoryId"`
	Seq        int        `json:"seq"`
	Pos        int        `json:"pos"`
	TokenCount int        `json:"tokenCount"`
	ChunkText  string     `json:"chunkText"`
	CreatedAt  time.Time  `json:"createdAt"`
	DeletedAt  *time.Time `json:"deletedAt,omitempty"`
}

// ChunkEmbedding tracks that a chunk has been embedded.
type ChunkEmbedding struct {
	ChunkID    string    `json:"chunkId"`
	EmbeddedAt time.Time `json:"embeddedAt"`
	Model      string    `json:"model"`
}

// ChunkID deterministically derives a chunk id from its owning memory and sequence.
func ChunkID(memoryID string, seq int) string {
	return memoryID + "_" + strconv.Itoa(seq)
}
